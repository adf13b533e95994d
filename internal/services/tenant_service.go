// Package services – TenantService
//
// This file implements the tenant registry: lazy provisioning of a tenant
// projection from an Institute record and partial updates of the tenant's
// targeting settings. A missing Institute is an expected condition in both
// paths, so these methods return (nil, nil) rather than an error; callers in
// optional provisioning flows treat nil as "not found" without unwinding.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/oncampus/leadhub-backend/internal/domain"
	"github.com/oncampus/leadhub-backend/internal/repo"
)

// TenantSettingsInput carries a partial settings update. Nil fields are
// omitted and retain their prior value.
type TenantSettingsInput struct {
	TargetCities     *[]string
	TargetCategories *[]string
	MinimumScore     *int
	ClaimMode        *string
}

// TenantService provides tenant provisioning, settings, usage, and audit
// reads. All methods are context-aware and safe for concurrent use.
type TenantService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewTenantService constructs a TenantService.
func NewTenantService(db *gorm.DB) *TenantService {
	return &TenantService{DB: db}
}

// EnsureByInstitute returns the tenant projection for instituteID, creating
// it with marketplace defaults on first access. When the tenant already
// exists, only its name is refreshed to mirror the institute's current name.
// Returns (nil, nil) when the institute does not exist.
func (s *TenantService) EnsureByInstitute(ctx context.Context, instituteID string) (*domain.Tenant, error) {
	inst, err := repo.GetInstitute(ctx, s.DB, instituteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	t, err := repo.GetTenantByInstitute(ctx, s.DB, instituteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repo.CreateTenant(ctx, s.DB, instituteID, inst.Name)
		}
		return nil, err
	}

	// Name is a projection of the institute, not tenant-owned state.
	if t.Name != inst.Name {
		if err := repo.UpdateTenantName(ctx, s.DB, t.ID, inst.Name); err != nil {
			return nil, err
		}
		t.Name = inst.Name
	}
	return t, nil
}

// UpdateSettings applies a partial targeting-settings update, lazily
// provisioning the tenant first. Only explicitly provided fields change.
// Returns (nil, nil) when the institute does not exist.
func (s *TenantService) UpdateSettings(ctx context.Context, instituteID string, in TenantSettingsInput) (*domain.Tenant, error) {
	t, err := s.EnsureByInstitute(ctx, instituteID)
	if err != nil || t == nil {
		return nil, err
	}

	updates := map[string]any{}
	if in.TargetCities != nil {
		updates["target_cities"] = domain.StringList(*in.TargetCities)
		t.TargetCities = domain.StringList(*in.TargetCities)
	}
	if in.TargetCategories != nil {
		updates["target_categories"] = domain.StringList(*in.TargetCategories)
		t.TargetCategories = domain.StringList(*in.TargetCategories)
	}
	if in.MinimumScore != nil {
		updates["minimum_score"] = *in.MinimumScore
		t.MinimumScore = *in.MinimumScore
	}
	if in.ClaimMode != nil {
		updates["claim_mode"] = *in.ClaimMode
		t.ClaimMode = *in.ClaimMode
	}
	if len(updates) == 0 {
		return t, nil
	}

	if err := repo.UpdateTenantSettings(ctx, s.DB, t.ID, updates); err != nil {
		return nil, err
	}
	return t, nil
}

// Usage returns the tenant's usage counter for the given "YYYY-MM" month.
// A month with no claims yields a zero-valued counter rather than an error.
// Returns ErrTenantNotFound when the institute does not exist.
func (s *TenantService) Usage(ctx context.Context, instituteID, month string) (*domain.TenantUsage, error) {
	t, err := s.EnsureByInstitute(ctx, instituteID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTenantNotFound
	}

	u, err := repo.GetTenantUsage(ctx, s.DB, t.ID, month)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &domain.TenantUsage{TenantID: t.ID, Month: month, LeadsClaimed: 0}, nil
		}
		return nil, err
	}
	return u, nil
}

// AuditTrail returns the tenant's newest audit entries, capped at limit.
// Returns ErrTenantNotFound when the institute does not exist.
func (s *TenantService) AuditTrail(ctx context.Context, instituteID string, limit int) ([]domain.AuditLog, error) {
	t, err := s.EnsureByInstitute(ctx, instituteID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTenantNotFound
	}
	if limit <= 0 {
		limit = 50
	}
	return repo.ListAuditLog(ctx, s.DB, t.ID, limit)
}

// UsageMonth formats a timestamp as the "YYYY-MM" UTC usage bucket.
func UsageMonth(t time.Time) string { return t.UTC().Format("2006-01") }
