package repositories

import (
	"context"
	"time"

	"tourwise/backoffice/internal/models/gorm"

	gormlib "gorm.io/gorm"
)

// TourRepo handles tours and their owned child collections
type TourRepo struct {
	db *gormlib.DB
}

// NewTourRepo creates a new tour repository
func NewTourRepo(db *gormlib.DB) *TourRepo {
	return &TourRepo{db: db}
}

// FindByNaturalKey looks a tour up by (provider, provider_identifier, season).
// Returns nil when no row exists.
func (r *TourRepo) FindByNaturalKey(ctx context.Context, provider, providerIdentifier, season string) (*gorm.Tour, error) {
	var tour gorm.Tour
	err := r.db.WithContext(ctx).
		Where("provider = ? AND provider_identifier = ? AND season = ?", provider, providerIdentifier, season).
		First(&tour).Error

	if err != nil {
		if err == gormlib.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &tour, nil
}

// Create inserts a new tour row
func (r *TourRepo) Create(ctx context.Context, tour *gorm.Tour) error {
	return r.db.WithContext(ctx).Create(tour).Error
}

// Save persists all mutable fields of an existing tour row
func (r *TourRepo) Save(ctx context.Context, tour *gorm.Tour) error {
	return r.db.WithContext(ctx).Save(tour).Error
}

// ReplaceItineraryDays deletes the tour's itinerary days and inserts the
// fresh set atomically. The provider catalog is the single source of truth
// for child collections on every sync.
func (r *TourRepo) ReplaceItineraryDays(ctx context.Context, tourID string, days []gorm.ItineraryDay) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gormlib.DB) error {
		if err := tx.Where("tour_id = ?", tourID).Delete(&gorm.ItineraryDay{}).Error; err != nil {
			return err
		}
		if len(days) == 0 {
			return nil
		}
		return tx.Create(&days).Error
	})
}

// ReplaceHotels replaces the tour's hotel rows wholesale
func (r *TourRepo) ReplaceHotels(ctx context.Context, tourID string, hotels []gorm.Hotel) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gormlib.DB) error {
		if err := tx.Where("tour_id = ?", tourID).Delete(&gorm.Hotel{}).Error; err != nil {
			return err
		}
		if len(hotels) == 0 {
			return nil
		}
		return tx.Create(&hotels).Error
	})
}

// ReplaceMedia replaces the tour's media rows wholesale
func (r *TourRepo) ReplaceMedia(ctx context.Context, tourID string, media []gorm.TourMedia) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gormlib.DB) error {
		if err := tx.Where("tour_id = ?", tourID).Delete(&gorm.TourMedia{}).Error; err != nil {
			return err
		}
		if len(media) == 0 {
			return nil
		}
		return tx.Create(&media).Error
	})
}

// ReplaceInclusions replaces the tour's inclusion rows wholesale
func (r *TourRepo) ReplaceInclusions(ctx context.Context, tourID string, inclusions []gorm.Inclusion) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gormlib.DB) error {
		if err := tx.Where("tour_id = ?", tourID).Delete(&gorm.Inclusion{}).Error; err != nil {
			return err
		}
		if len(inclusions) == 0 {
			return nil
		}
		return tx.Create(&inclusions).Error
	})
}

// MarkStaleInactive soft-deletes tours of an operator that were not observed
// by the run that started at `before`. Returns the number of rows affected.
func (r *TourRepo) MarkStaleInactive(ctx context.Context, operatorID string, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&gorm.Tour{}).
		Where("operator_id = ? AND is_active = ? AND last_seen_at < ?", operatorID, true, before).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": time.Now(),
		})
	return res.RowsAffected, res.Error
}

// ExistingMediaURLs returns which of the given URLs are already stored for
// the tour, so batch imports can skip them without a network fetch.
func (r *TourRepo) ExistingMediaURLs(ctx context.Context, tourID string, urls []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	if len(urls) == 0 {
		return existing, nil
	}

	var found []string
	err := r.db.WithContext(ctx).
		Model(&gorm.TourMedia{}).
		Where("tour_id = ? AND url IN ?", tourID, urls).
		Pluck("url", &found).Error
	if err != nil {
		return nil, err
	}

	for _, u := range found {
		existing[u] = true
	}
	return existing, nil
}

// AddMedia appends a single media row (used by the batch importer)
func (r *TourRepo) AddMedia(ctx context.Context, media *gorm.TourMedia) error {
	return r.db.WithContext(ctx).Create(media).Error
}

// CountActiveByOperator returns the number of active tours for an operator
func (r *TourRepo) CountActiveByOperator(ctx context.Context, operatorID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&gorm.Tour{}).
		Where("operator_id = ? AND is_active = ?", operatorID, true).
		Count(&count).Error
	return count, err
}
