package repositories

import (
	"context"
	"fmt"
	"strings"

	"tourwise/backoffice/internal/models/gorm"

	gormlib "gorm.io/gorm"
)

// OperatorRepo handles operators table operations
type OperatorRepo struct {
	db *gormlib.DB
}

// NewOperatorRepo creates a new operator repository
func NewOperatorRepo(db *gormlib.DB) *OperatorRepo {
	return &OperatorRepo{db: db}
}

// FindOrCreateByCode resolves an operator by code, case-insensitively, so
// casing drift in provider feeds never creates duplicate operator rows.
func (r *OperatorRepo) FindOrCreateByCode(ctx context.Context, code string, name string) (*gorm.Operator, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("operator code is empty")
	}

	var op gorm.Operator
	err := r.db.WithContext(ctx).
		Where("LOWER(code) = LOWER(?)", code).
		First(&op).Error

	if err == nil {
		return &op, nil
	}
	if err != gormlib.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to query operator %s: %w", code, err)
	}

	op = gorm.Operator{Code: code, Name: name}
	if err := r.db.WithContext(ctx).Create(&op).Error; err != nil {
		return nil, fmt.Errorf("failed to create operator %s: %w", code, err)
	}
	return &op, nil
}

// FindByCode returns the operator for a code or nil when absent
func (r *OperatorRepo) FindByCode(ctx context.Context, code string) (*gorm.Operator, error) {
	var op gorm.Operator
	err := r.db.WithContext(ctx).
		Where("LOWER(code) = LOWER(?)", code).
		First(&op).Error

	if err != nil {
		if err == gormlib.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &op, nil
}
