package gorm

import (
	"time"

	"github.com/google/uuid"
	gormlib "gorm.io/gorm"
)

// The child collections below follow the replace-don't-merge ownership rule:
// each sync of a tour deletes the full set for that tour and reinserts the
// freshly fetched rows.

// ItineraryDay is one day of a tour's day-by-day itinerary
type ItineraryDay struct {
	ID          string    `gorm:"column:id;primaryKey;type:uuid"`
	TourID      string    `gorm:"column:tour_id;type:uuid;not null;index"`
	DayNumber   int       `gorm:"column:day_number;not null"`
	Title       string    `gorm:"column:title;type:varchar(300)"`
	PlaceName   string    `gorm:"column:place_name;type:varchar(100)"`
	Description string    `gorm:"column:description;type:text"`
	Lat         *float64  `gorm:"column:lat;type:numeric(10,6)"`
	Lng         *float64  `gorm:"column:lng;type:numeric(10,6)"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName specifies the table name for GORM
func (ItineraryDay) TableName() string {
	return "itinerary_days"
}

func (d *ItineraryDay) BeforeCreate(tx *gormlib.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// Hotel is an accommodation referenced by a tour
type Hotel struct {
	ID        string    `gorm:"column:id;primaryKey;type:uuid"`
	TourID    string    `gorm:"column:tour_id;type:uuid;not null;index"`
	Name      string    `gorm:"column:name;type:varchar(200)"`
	City      string    `gorm:"column:city;type:varchar(100)"`
	Nights    int       `gorm:"column:nights"`
	Stars     *int      `gorm:"column:stars"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName specifies the table name for GORM
func (Hotel) TableName() string {
	return "hotels"
}

func (h *Hotel) BeforeCreate(tx *gormlib.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}

// TourMedia is an image or video attached to a tour. FromProvider is false
// when the URL was synthesized from the provider's stable CDN convention.
type TourMedia struct {
	ID           string    `gorm:"column:id;primaryKey;type:uuid"`
	TourID       string    `gorm:"column:tour_id;type:uuid;not null;index"`
	URL          string    `gorm:"column:url;type:varchar(500);not null"`
	Kind         string    `gorm:"column:kind;type:varchar(20)"`
	Position     int       `gorm:"column:position"`
	FromProvider bool      `gorm:"column:from_provider;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName specifies the table name for GORM
func (TourMedia) TableName() string {
	return "tour_media"
}

func (m *TourMedia) BeforeCreate(tx *gormlib.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
