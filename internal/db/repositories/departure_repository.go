package repositories

import (
	"context"
	"time"

	"tourwise/backoffice/internal/models/gorm"

	gormlib "gorm.io/gorm"
)

// DepartureRepo handles departures and their cabin pricing children
type DepartureRepo struct {
	db *gormlib.DB
}

// NewDepartureRepo creates a new departure repository
func NewDepartureRepo(db *gormlib.DB) *DepartureRepo {
	return &DepartureRepo{db: db}
}

// FindByNaturalKey looks a departure up by
// (tour_id, departure_code, season, land_start_date-or-null). A nil
// landStartDate matches only rows where the column is NULL.
func (r *DepartureRepo) FindByNaturalKey(ctx context.Context, tourID, departureCode, season string, landStartDate *time.Time) (*gorm.Departure, error) {
	q := r.db.WithContext(ctx).
		Where("tour_id = ? AND departure_code = ? AND season = ?", tourID, departureCode, season)

	if landStartDate == nil {
		q = q.Where("land_start_date IS NULL")
	} else {
		q = q.Where("land_start_date = ?", *landStartDate)
	}

	var dep gorm.Departure
	if err := q.First(&dep).Error; err != nil {
		if err == gormlib.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &dep, nil
}

// Create inserts a new departure row
func (r *DepartureRepo) Create(ctx context.Context, dep *gorm.Departure) error {
	return r.db.WithContext(ctx).Create(dep).Error
}

// Save persists all mutable fields of an existing departure row
func (r *DepartureRepo) Save(ctx context.Context, dep *gorm.Departure) error {
	return r.db.WithContext(ctx).Save(dep).Error
}

// ReplaceCabinPricings deletes and reinserts the departure's cabin pricing
// rows atomically; cabin pricing is never partially merged.
func (r *DepartureRepo) ReplaceCabinPricings(ctx context.Context, departureID string, rows []gorm.CabinPricing) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gormlib.DB) error {
		if err := tx.Where("departure_id = ?", departureID).Delete(&gorm.CabinPricing{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

// MarkStaleInactiveForOperator soft-deletes departures of the operator's
// tours that were not observed by the run that started at `before`. Joined
// through tours since departures carry no operator reference of their own.
func (r *DepartureRepo) MarkStaleInactiveForOperator(ctx context.Context, operatorID string, before time.Time) (int64, error) {
	sub := r.db.Model(&gorm.Tour{}).
		Select("id").
		Where("operator_id = ?", operatorID)

	res := r.db.WithContext(ctx).
		Model(&gorm.Departure{}).
		Where("tour_id IN (?) AND is_active = ? AND last_seen_at < ?", sub, true, before).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": time.Now(),
		})
	return res.RowsAffected, res.Error
}
