// Package services – MarketplaceService
//
// This file implements the tenant-facing read path over distributed leads:
// cursor-paginated listing of a tenant's access rows, newest first, with
// conjunctive visibility-status and minimum-fit-score filters. The cursor is
// the access-row id (a monotonic insertion-ordered integer), so the next page
// resolves deterministically even under concurrent inserts.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/oncampus/leadhub-backend/internal/domain"
	"github.com/oncampus/leadhub-backend/internal/repo"
)

// ListLeadsInput carries cursor, limit, and optional filters for one page.
type ListLeadsInput struct {
	// Cursor is the opaque position returned by the previous page; zero
	// starts from the newest row.
	Cursor uint64
	// Limit is the page size; the service clamps it to [1, MaxPageSize].
	Limit int
	// VisibilityStatus, when non-empty, narrows to one visibility state.
	VisibilityStatus string
	// MinFitScore, when set, is an inclusive fit-score floor.
	MinFitScore *int
}

// ListLeadsResult is one page of a tenant's accessible leads. NextCursor is
// nil at the end of the result set.
type ListLeadsResult struct {
	Items      []domain.TenantLeadAccess `json:"items"`
	NextCursor *uint64                   `json:"next_cursor"`
	Limit      int                       `json:"limit"`
}

// MarketplaceService serves a tenant's view over its distributed leads.
type MarketplaceService struct {
	// DB is the GORM handle used for reads.
	DB *gorm.DB
	// Tenants resolves and lazily provisions the requesting tenant.
	Tenants *TenantService

	// DefaultPageSize applies when the caller sends no limit.
	DefaultPageSize int
	// MaxPageSize caps the page size.
	MaxPageSize int
}

// NewMarketplaceService constructs a MarketplaceService with sane paging
// defaults.
func NewMarketplaceService(db *gorm.DB, tenants *TenantService) *MarketplaceService {
	return &MarketplaceService{
		DB:              db,
		Tenants:         tenants,
		DefaultPageSize: 20,
		MaxPageSize:     100,
	}
}

// ListTenantLeads returns one page of the tenant's access rows, each with its
// lead embedded. It fetches limit+1 rows to detect a further page without a
// count query: when more than limit rows come back, the page is trimmed and
// NextCursor is the id of the last included row.
// Returns ErrTenantNotFound when the institute does not exist.
func (s *MarketplaceService) ListTenantLeads(ctx context.Context, instituteID string, in ListLeadsInput) (*ListLeadsResult, error) {
	tenant, err := s.Tenants.EnsureByInstitute(ctx, instituteID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, ErrTenantNotFound
	}

	limit := s.clampLimit(in.Limit)

	rows, err := repo.ListAccessPage(ctx, s.DB, tenant.ID, in.Cursor, limit+1, in.VisibilityStatus, in.MinFitScore)
	if err != nil {
		return nil, err
	}

	res := &ListLeadsResult{Limit: limit}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1].ID
		res.NextCursor = &last
	}
	res.Items = rows
	return res, nil
}

// clampLimit bounds a requested page size to [1, MaxPageSize], applying the
// default when the caller sent nothing.
func (s *MarketplaceService) clampLimit(limit int) int {
	if limit <= 0 {
		limit = s.DefaultPageSize
	}
	if limit <= 0 {
		limit = 20
	}
	if s.MaxPageSize > 0 && limit > s.MaxPageSize {
		limit = s.MaxPageSize
	}
	return limit
}
