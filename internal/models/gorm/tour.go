package gorm

import (
	"time"

	"github.com/google/uuid"
	gormlib "gorm.io/gorm"
)

// Tour represents a tour product synced from an operator catalog.
// Natural key: (provider, provider_identifier, season).
type Tour struct {
	ID                 string    `gorm:"column:id;primaryKey;type:uuid"`
	OperatorID         string    `gorm:"column:operator_id;type:uuid;not null;index"`
	Provider           string    `gorm:"column:provider;type:varchar(50);not null;uniqueIndex:idx_tours_natural_key"`
	ProviderIdentifier string    `gorm:"column:provider_identifier;type:varchar(100);not null;uniqueIndex:idx_tours_natural_key"`
	Season             string    `gorm:"column:season;type:varchar(20);not null;uniqueIndex:idx_tours_natural_key"`
	Name               string    `gorm:"column:name;type:varchar(300)"`
	Days               int       `gorm:"column:days"`
	Nights             int       `gorm:"column:nights"`
	Description        string    `gorm:"column:description;type:text"`
	Overview           string    `gorm:"column:overview;type:text"`
	StartCity          string    `gorm:"column:start_city;type:varchar(100)"`
	EndCity            string    `gorm:"column:end_city;type:varchar(100)"`
	StartLat           *float64  `gorm:"column:start_lat;type:numeric(10,6)"`
	StartLng           *float64  `gorm:"column:start_lng;type:numeric(10,6)"`
	EndLat             *float64  `gorm:"column:end_lat;type:numeric(10,6)"`
	EndLng             *float64  `gorm:"column:end_lng;type:numeric(10,6)"`
	IsActive           bool      `gorm:"column:is_active;default:true"`
	LastSeenAt         time.Time `gorm:"column:last_seen_at"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime"`

	// Relationships
	Operator      Operator       `gorm:"foreignKey:OperatorID"`
	Departures    []Departure    `gorm:"foreignKey:TourID;constraint:OnDelete:CASCADE"`
	ItineraryDays []ItineraryDay `gorm:"foreignKey:TourID;constraint:OnDelete:CASCADE"`
	Hotels        []Hotel        `gorm:"foreignKey:TourID;constraint:OnDelete:CASCADE"`
	Media         []TourMedia    `gorm:"foreignKey:TourID;constraint:OnDelete:CASCADE"`
	Inclusions    []Inclusion    `gorm:"foreignKey:TourID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for GORM
func (Tour) TableName() string {
	return "tours"
}

func (t *Tour) BeforeCreate(tx *gormlib.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
