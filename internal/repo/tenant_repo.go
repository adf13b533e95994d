// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Tenant
// model: the lazily provisioned allocation profile keyed 1:1 to an Institute.
//
// Functions:
//
//   - GetTenantByInstitute(ctx, db, instituteID) -> *domain.Tenant, error
//     Fetches the tenant projection for an institute, or ErrNotFound.
//
//   - CreateTenant(ctx, db, instituteID, name) -> *domain.Tenant, error
//     Inserts a tenant with marketplace defaults (SOLO plan, ACTIVE status,
//     exclusive claim mode, unrestricted targeting, zero score floor).
//
//   - UpdateTenantName(ctx, db, tenantID, name) -> error
//     Refreshes the mirrored institute name.
//
//   - UpdateTenantSettings(ctx, db, tenantID, updates) -> error
//     Applies a partial targeting-settings update.
//
//   - ListActiveTenantsForScore(ctx, db, score) -> []domain.Tenant, error
//     Returns ACTIVE tenants whose score floor admits the given lead score.
//     City/category predicates are evaluated by the caller because target
//     lists are stored as JSON text.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oncampus/leadhub-backend/internal/domain"
)

// GetTenantByInstitute fetches the tenant projection owned by instituteID.
// Returns ErrNotFound when the institute has no tenant yet.
func GetTenantByInstitute(ctx context.Context, db *gorm.DB, instituteID string) (*domain.Tenant, error) {
	var t domain.Tenant
	if err := db.WithContext(ctx).Where("institute_id = ?", instituteID).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTenant inserts a tenant projection for instituteID with marketplace
// defaults. The unique index on institute_id guarantees at most one
// projection per institute; losing a concurrent create race is not an error,
// the winner's row is returned instead.
func CreateTenant(ctx context.Context, db *gorm.DB, instituteID, name string) (*domain.Tenant, error) {
	t := &domain.Tenant{
		ID:               uuid.NewString(),
		InstituteID:      instituteID,
		Name:             name,
		Plan:             domain.PlanSolo,
		Status:           domain.TenantStatusActive,
		ClaimMode:        domain.ClaimModeExclusive,
		TargetCities:     domain.StringList{},
		TargetCategories: domain.StringList{},
		MinimumScore:     0,
		CreatedAt:        time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		if isUniqueViolation(err) {
			return GetTenantByInstitute(ctx, db, instituteID)
		}
		return nil, err
	}
	return t, nil
}

// UpdateTenantName mirrors the institute's current name onto the tenant.
// If no row is affected, it returns ErrNotFound.
func UpdateTenantName(ctx context.Context, db *gorm.DB, tenantID, name string) error {
	res := db.WithContext(ctx).
		Model(&domain.Tenant{}).
		Where("id = ?", tenantID).
		Update("name", name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateTenantSettings applies a partial update of targeting settings. The
// caller builds the updates map from explicitly provided fields only, so
// omitted settings retain their prior values.
func UpdateTenantSettings(ctx context.Context, db *gorm.DB, tenantID string, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	res := db.WithContext(ctx).
		Model(&domain.Tenant{}).
		Where("id = ?", tenantID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListActiveTenantsForScore returns every ACTIVE tenant whose minimum score
// admits a lead with the given score. Targeting lists are JSON text columns,
// so city/category matching happens in the distribution service.
func ListActiveTenantsForScore(ctx context.Context, db *gorm.DB, score int) ([]domain.Tenant, error) {
	var out []domain.Tenant
	err := db.WithContext(ctx).
		Where("status = ? AND minimum_score <= ?", domain.TenantStatusActive, score).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}
