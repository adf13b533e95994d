// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Institute
// model, which this core treats as an externally owned registry: it reads
// id and name to seed the tenant projection and never mutates institutes
// beyond test/ingestion seeding.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oncampus/leadhub-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// GetInstitute fetches an institute by id, or ErrNotFound if missing.
func GetInstitute(ctx context.Context, db *gorm.DB, id string) (*domain.Institute, error) {
	var inst domain.Institute
	if err := db.WithContext(ctx).Where("id = ?", id).First(&inst).Error; err != nil {
		return nil, err
	}
	return &inst, nil
}

// CreateInstitute inserts a new institute with a generated UUID. The upstream
// CRM owns institute lifecycle in production; this helper exists for seeding.
func CreateInstitute(ctx context.Context, db *gorm.DB, name string) (*domain.Institute, error) {
	inst := &domain.Institute{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(inst).Error; err != nil {
		return nil, err
	}
	return inst, nil
}
