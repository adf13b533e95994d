// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the append-only side effects of a
// successful claim: the immutable LeadClaim record, the monthly TenantUsage
// counter, and the AuditLog trail. All three writers are designed to run
// inside the claim engine's transaction.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oncampus/leadhub-backend/internal/domain"
)

// CreateLeadClaim appends the immutable claim record. claimMode is the mode
// in effect at claim time, which may differ from the tenant's current setting.
func CreateLeadClaim(ctx context.Context, db *gorm.DB, tenantID, leadID string, accessID uint64, claimMode string) (*domain.LeadClaim, error) {
	lc := &domain.LeadClaim{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		LeadID:    leadID,
		AccessID:  accessID,
		ClaimMode: claimMode,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(lc).Error; err != nil {
		return nil, err
	}
	return lc, nil
}

// IncrementTenantUsage upserts the (tenantID, month) usage row, adding one
// claimed lead. Month is the "YYYY-MM" UTC bucket. A missing row is created
// at one; an existing row is incremented with a relative update so concurrent
// transactions cannot lose counts.
func IncrementTenantUsage(ctx context.Context, db *gorm.DB, tenantID, month string) error {
	res := db.WithContext(ctx).
		Model(&domain.TenantUsage{}).
		Where("tenant_id = ? AND month = ?", tenantID, month).
		Update("leads_claimed", gorm.Expr("leads_claimed + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	u := &domain.TenantUsage{
		ID:           uuid.NewString(),
		TenantID:     tenantID,
		Month:        month,
		LeadsClaimed: 1,
		CreatedAt:    time.Now().UTC(),
	}
	err := db.WithContext(ctx).Create(u).Error
	if err != nil && isUniqueViolation(err) {
		// Lost the insert race; fall back to the increment.
		return db.WithContext(ctx).
			Model(&domain.TenantUsage{}).
			Where("tenant_id = ? AND month = ?", tenantID, month).
			Update("leads_claimed", gorm.Expr("leads_claimed + 1")).Error
	}
	return err
}

// GetTenantUsage returns the usage row for (tenantID, month), or ErrNotFound
// when the tenant claimed nothing that month.
func GetTenantUsage(ctx context.Context, db *gorm.DB, tenantID, month string) (*domain.TenantUsage, error) {
	var u domain.TenantUsage
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND month = ?", tenantID, month).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateAuditLog appends one audit entry. Entries are write-once; there is no
// update or delete path in this package.
func CreateAuditLog(ctx context.Context, db *gorm.DB, tenantID, actorType, action, resourceID string, metadata domain.JSONMap) (*domain.AuditLog, error) {
	entry := &domain.AuditLog{
		ID:         uuid.NewString(),
		TenantID:   tenantID,
		ActorType:  actorType,
		Action:     action,
		ResourceID: resourceID,
		Metadata:   metadata,
		CreatedAt:  time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// ListAuditLog returns a tenant's newest audit entries, capped at limit.
func ListAuditLog(ctx context.Context, db *gorm.DB, tenantID string, limit int) ([]domain.AuditLog, error) {
	var out []domain.AuditLog
	err := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// isUniqueViolation detects unique-constraint failures across drivers that
// may not map to gorm.ErrDuplicatedKey. glebarez/sqlite in particular often
// reports plain-text errors.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return containsFold(msg, "unique constraint") || containsFold(msg, "duplicate key")
}
