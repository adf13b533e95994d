// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the GlobalLead
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a lead is not found, functions return gorm.ErrRecordNotFound
//     (exported in this package as ErrNotFound).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oncampus/leadhub-backend/internal/domain"
)

// CreateLead inserts a new global lead. A UUID is generated when the caller
// leaves ID empty. The score is stored as given; callers that care about
// freshness recompute it through the scorer service.
func CreateLead(ctx context.Context, db *gorm.DB, lead *domain.GlobalLead) error {
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(lead).Error
}

// GetLead fetches a global lead by id, or ErrNotFound if missing.
func GetLead(ctx context.Context, db *gorm.DB, id string) (*domain.GlobalLead, error) {
	var lead domain.GlobalLead
	if err := db.WithContext(ctx).Where("id = ?", id).First(&lead).Error; err != nil {
		return nil, err
	}
	return &lead, nil
}

// UpdateLeadScore persists a recomputed score on the lead. If no row is
// affected (lead missing), it returns ErrNotFound.
func UpdateLeadScore(ctx context.Context, db *gorm.DB, id string, score int) error {
	res := db.WithContext(ctx).
		Model(&domain.GlobalLead{}).
		Where("id = ?", id).
		Update("score", score)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
