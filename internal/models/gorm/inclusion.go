package gorm

import (
	"time"

	"github.com/google/uuid"
	gormlib "gorm.io/gorm"
)

// InclusionCategory is the closed set of inclusion types we store. Provider
// content categories outside this set are skipped, not guessed.
type InclusionCategory string

const (
	InclusionMeal          InclusionCategory = "MEAL"
	InclusionTransfer      InclusionCategory = "TRANSFER"
	InclusionActivity      InclusionCategory = "ACTIVITY"
	InclusionFlight        InclusionCategory = "FLIGHT"
	InclusionAccommodation InclusionCategory = "ACCOMMODATION"
	InclusionGuide         InclusionCategory = "GUIDE"
)

var providerContentCategories = map[string]InclusionCategory{
	"MEALS":         InclusionMeal,
	"MEAL":          InclusionMeal,
	"TRANSFERS":     InclusionTransfer,
	"TRANSPORT":     InclusionTransfer,
	"ACTIVITIES":    InclusionActivity,
	"SIGHTSEEING":   InclusionActivity,
	"FLIGHTS":       InclusionFlight,
	"AIR":           InclusionFlight,
	"ACCOMMODATION": InclusionAccommodation,
	"HOTELS":        InclusionAccommodation,
	"GUIDES":        InclusionGuide,
	"TOUR_DIRECTOR": InclusionGuide,
}

// MapContentCategory maps a provider content category code to an
// InclusionCategory. The second return is false for unmapped codes, which
// callers must skip.
func MapContentCategory(code string) (InclusionCategory, bool) {
	cat, ok := providerContentCategories[code]
	return cat, ok
}

// Inclusion is a "what's included" line item of a tour
type Inclusion struct {
	ID          string            `gorm:"column:id;primaryKey;type:uuid"`
	TourID      string            `gorm:"column:tour_id;type:uuid;not null;index"`
	Category    InclusionCategory `gorm:"column:category;type:varchar(20);not null"`
	Description string            `gorm:"column:description;type:text"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
}

// TableName specifies the table name for GORM
func (Inclusion) TableName() string {
	return "inclusions"
}

func (i *Inclusion) BeforeCreate(tx *gormlib.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
