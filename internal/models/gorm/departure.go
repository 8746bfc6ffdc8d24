package gorm

import (
	"time"

	"github.com/google/uuid"
	gormlib "gorm.io/gorm"
)

// Departure represents a dated departure of a tour.
// Natural key: (tour_id, departure_code, season, land_start_date-or-null).
// Owned exclusively by its Tour.
type Departure struct {
	ID            string     `gorm:"column:id;primaryKey;type:uuid"`
	TourID        string     `gorm:"column:tour_id;type:uuid;not null;index"`
	DepartureCode string     `gorm:"column:departure_code;type:varchar(50);not null"`
	Season        string     `gorm:"column:season;type:varchar(20);not null"`
	LandStartDate *time.Time `gorm:"column:land_start_date"`
	StartDate     time.Time  `gorm:"column:start_date"`
	EndDate       time.Time  `gorm:"column:end_date"`
	Status        string     `gorm:"column:status;type:varchar(20)"`
	Guaranteed    bool       `gorm:"column:guaranteed;default:false"`
	ShipName      string     `gorm:"column:ship_name;type:varchar(100)"`
	StartCity     string     `gorm:"column:start_city;type:varchar(100)"`
	EndCity       string     `gorm:"column:end_city;type:varchar(100)"`
	StartLat      *float64   `gorm:"column:start_lat;type:numeric(10,6)"`
	StartLng      *float64   `gorm:"column:start_lng;type:numeric(10,6)"`
	// Minimum cabin price in integer cents; nil when the departure has no
	// cabin pricing rows. Never a sentinel value.
	BasePriceCents *int64    `gorm:"column:base_price_cents"`
	Currency       string    `gorm:"column:currency;type:varchar(3)"`
	IsActive       bool      `gorm:"column:is_active;default:true"`
	LastSeenAt     time.Time `gorm:"column:last_seen_at"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`

	// Relationships
	Tour          Tour           `gorm:"foreignKey:TourID"`
	CabinPricings []CabinPricing `gorm:"foreignKey:DepartureID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for GORM
func (Departure) TableName() string {
	return "departures"
}

func (d *Departure) BeforeCreate(tx *gormlib.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

// CabinPricing is a fully-owned child of Departure; replaced wholesale on
// every sync of its parent, never merged.
type CabinPricing struct {
	ID          string    `gorm:"column:id;primaryKey;type:uuid"`
	DepartureID string    `gorm:"column:departure_id;type:uuid;not null;index"`
	Category    string    `gorm:"column:category;type:varchar(50)"`
	CabinName   string    `gorm:"column:cabin_name;type:varchar(100)"`
	Occupancy   string    `gorm:"column:occupancy;type:varchar(20)"`
	PriceCents  int64     `gorm:"column:price_cents;not null"`
	Currency    string    `gorm:"column:currency;type:varchar(3)"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName specifies the table name for GORM
func (CabinPricing) TableName() string {
	return "cabin_pricings"
}

func (c *CabinPricing) BeforeCreate(tx *gormlib.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
