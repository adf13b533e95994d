// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// TenantLeadAccess model, the per-tenant visibility/ownership row over one
// global lead.
//
// Two invariants of the access table are enforced here rather than left to
// callers:
//
//   - UpsertAccessForDistribution never touches the visibility status of a
//     CLAIMED or LOCKED row. Re-distribution refreshes the fit score and may
//     reopen a row to AVAILABLE, but only through a compare-and-set whose
//     WHERE clause excludes those two states.
//   - MarkAccessClaimed and LockSiblingAccess are the only writers that move
//     rows out of AVAILABLE; both are called exclusively from the claim
//     engine's transaction.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/oncampus/leadhub-backend/internal/domain"
)

// GetAccess fetches the access row for (tenantID, leadID), or ErrNotFound.
func GetAccess(ctx context.Context, db *gorm.DB, tenantID, leadID string) (*domain.TenantLeadAccess, error) {
	var a domain.TenantLeadAccess
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND lead_id = ?", tenantID, leadID).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// UpsertAccessForDistribution creates or refreshes one tenant's access row
// during lead distribution.
//
// On create the row starts AVAILABLE with the given fit score. On update the
// fit score is always refreshed; the visibility status flips to AVAILABLE
// only when the row is not CLAIMED or LOCKED and the lead's score clears the
// tenant's floor (eligible == true).
//
// Both guards live in the SQL itself, not in a read-then-write in Go: the
// status flip is a compare-and-set keyed on (tenant_id, lead_id) with a
// NOT IN ('CLAIMED','LOCKED') predicate, so a claim committing mid-run can
// never be downgraded. A lost create race against a concurrent distribution
// run is tolerated by falling back to the update path.
func UpsertAccessForDistribution(ctx context.Context, db *gorm.DB, tenantID, leadID string, fitScore int, eligible bool) error {
	res := db.WithContext(ctx).
		Model(&domain.TenantLeadAccess{}).
		Where("tenant_id = ? AND lead_id = ?", tenantID, leadID).
		Update("fit_score", fitScore)
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		a := &domain.TenantLeadAccess{
			TenantID:         tenantID,
			LeadID:           leadID,
			VisibilityStatus: domain.AccessAvailable,
			FitScore:         fitScore,
			CreatedAt:        time.Now().UTC(),
		}
		err := db.WithContext(ctx).Create(a).Error
		if err == nil {
			return nil
		}
		if !isUniqueViolation(err) {
			return err
		}
		// Another writer inserted the row first; refresh its fit score.
		if err := db.WithContext(ctx).
			Model(&domain.TenantLeadAccess{}).
			Where("tenant_id = ? AND lead_id = ?", tenantID, leadID).
			Update("fit_score", fitScore).Error; err != nil {
			return err
		}
	}

	if !eligible {
		return nil
	}
	return db.WithContext(ctx).
		Model(&domain.TenantLeadAccess{}).
		Where("tenant_id = ? AND lead_id = ? AND visibility_status NOT IN ?",
			tenantID, leadID, []string{domain.AccessClaimed, domain.AccessLocked}).
		Update("visibility_status", domain.AccessAvailable).Error
}

// MarkAccessClaimed transitions one AVAILABLE row to CLAIMED with the given
// timestamp. The status predicate in the WHERE clause makes the transition a
// compare-and-set: if a concurrent transaction claimed or locked the row
// first, zero rows are affected and ErrNotFound is returned.
func MarkAccessClaimed(ctx context.Context, db *gorm.DB, accessID uint64, claimedAt time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.TenantLeadAccess{}).
		Where("id = ? AND visibility_status = ?", accessID, domain.AccessAvailable).
		Updates(map[string]any{
			"visibility_status": domain.AccessClaimed,
			"claimed_at":        claimedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// LockSiblingAccess locks out every other tenant's AVAILABLE row for the same
// lead. Rows already CLAIMED or LOCKED are untouched: a claim never un-claims
// another tenant. Returns the number of rows locked.
func LockSiblingAccess(ctx context.Context, db *gorm.DB, leadID, claimingTenantID string) (int64, error) {
	res := db.WithContext(ctx).
		Model(&domain.TenantLeadAccess{}).
		Where("lead_id = ? AND tenant_id <> ? AND visibility_status = ?",
			leadID, claimingTenantID, domain.AccessAvailable).
		Update("visibility_status", domain.AccessLocked)
	return res.RowsAffected, res.Error
}

// CountClaimedAccess returns the live number of CLAIMED rows a tenant holds.
// The claim ceiling check uses this count rather than the usage counter so a
// stale counter can never grant extra claims.
func CountClaimedAccess(ctx context.Context, db *gorm.DB, tenantID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.TenantLeadAccess{}).
		Where("tenant_id = ? AND visibility_status = ?", tenantID, domain.AccessClaimed).
		Count(&total).Error
	return total, err
}

// ListAccessPage returns up to limit access rows for a tenant, newest first
// (descending row id, an insertion-recency proxy). A non-zero cursor
// restricts the page to rows with id below the cursor, which keeps pages
// deterministic under concurrent inserts. Optional filters are conjunctive:
// status narrows by visibility status, minFitScore is an inclusive floor.
// The associated lead is preloaded on every row.
func ListAccessPage(ctx context.Context, db *gorm.DB, tenantID string, cursor uint64, limit int, status string, minFitScore *int) ([]domain.TenantLeadAccess, error) {
	q := db.WithContext(ctx).
		Preload("Lead").
		Where("tenant_id = ?", tenantID)
	if cursor > 0 {
		q = q.Where("id < ?", cursor)
	}
	if status != "" {
		q = q.Where("visibility_status = ?", status)
	}
	if minFitScore != nil {
		q = q.Where("fit_score >= ?", *minFitScore)
	}

	var out []domain.TenantLeadAccess
	err := q.Order("id desc").Limit(limit).Find(&out).Error
	return out, err
}
