package gorm

import (
	"time"

	"github.com/google/uuid"
	gormlib "gorm.io/gorm"
)

// Operator represents a tour operator whose catalog we ingest
type Operator struct {
	ID        string    `gorm:"column:id;primaryKey;type:uuid"`
	Code      string    `gorm:"column:code;type:varchar(50);not null;uniqueIndex"`
	Name      string    `gorm:"column:name;type:varchar(200)"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`

	// Relationships
	Tours []Tour `gorm:"foreignKey:OperatorID"`
}

// TableName specifies the table name for GORM
func (Operator) TableName() string {
	return "operators"
}

func (o *Operator) BeforeCreate(tx *gormlib.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
