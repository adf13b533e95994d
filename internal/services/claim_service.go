// Package services – ClaimService
//
// This file implements the claim engine, the concurrency-sensitive core of
// the marketplace. A claim transactionally marks one tenant's access row
// CLAIMED, locks out competing tenants' AVAILABLE rows for the same lead
// (unless shared mode is in effect), appends the immutable LeadClaim record,
// bumps the monthly usage counter, and writes an audit entry. All of that is
// one atomic unit of work: the transaction isolation of the backing store is
// the sole correctness mechanism, and the engine adds no locking of its own.
//
// Invariant: under FIRST_CLAIM_EXCLUSIVE, at most one access row across all
// tenants may ever be CLAIMED for a given lead. Under MULTI_TENANT_SHARED,
// any number of tenants may independently claim the same lead.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/oncampus/leadhub-backend/internal/domain"
	"github.com/oncampus/leadhub-backend/internal/repo"
)

// Internal transaction outcomes, mapped to caller-facing results after the
// transaction commits.
type claimOutcome int

const (
	outcomeClaimed claimOutcome = iota
	outcomeAlreadyClaimed
	outcomeLocked
	outcomeMissingAccess
)

// DefaultClaimCeilingPerSeat bounds how many leads one plan seat may hold in
// CLAIMED state. The ceiling is a coarse abuse guard tied to seat count, not
// a billing limit, so it is configurable rather than a hard business fact.
const DefaultClaimCeilingPerSeat = 200

// ClaimInput is the request to claim one lead.
type ClaimInput struct {
	// LeadID identifies the global lead being claimed.
	LeadID string
	// LockMode optionally overrides the tenant's configured claim mode for
	// this claim only. Empty means "use the tenant's setting".
	LockMode string
	// IdempotencyKey, when non-empty, is recorded inside the claim
	// transaction so replayed requests can be recognized.
	IdempotencyKey string
}

// ClaimResult is the caller-facing outcome of a successful claim call.
// AlreadyClaimed is true when the same tenant re-claims a lead it owns:
// a safe no-op, not an error.
type ClaimResult struct {
	Claimed        bool                     `json:"claimed"`
	AlreadyClaimed bool                     `json:"already_claimed"`
	Mode           string                   `json:"mode"`
	Access         *domain.TenantLeadAccess `json:"access"`
}

// ClaimService arbitrates lead ownership across tenants.
type ClaimService struct {
	// DB is the GORM handle; the claim body runs in one DB.Transaction.
	DB *gorm.DB
	// Tenants resolves and lazily provisions the claiming tenant.
	Tenants *TenantService
	// CeilingPerSeat scales the per-tenant claim ceiling; <=0 falls back to
	// DefaultClaimCeilingPerSeat.
	CeilingPerSeat int
	// IdempotencyTTL bounds how long a recorded Idempotency-Key stays valid.
	IdempotencyTTL time.Duration
}

// NewClaimService constructs a ClaimService with default ceiling and TTL.
func NewClaimService(db *gorm.DB, tenants *TenantService) *ClaimService {
	return &ClaimService{
		DB:             db,
		Tenants:        tenants,
		CeilingPerSeat: DefaultClaimCeilingPerSeat,
		IdempotencyTTL: 24 * time.Hour,
	}
}

// ceiling returns the tenant's claim ceiling: plan seats × per-seat factor.
func (s *ClaimService) ceiling(plan string) int64 {
	per := s.CeilingPerSeat
	if per <= 0 {
		per = DefaultClaimCeilingPerSeat
	}
	return int64(domain.PlanUserLimit(plan) * per)
}

// ClaimLead claims leadID on behalf of the tenant owned by instituteID.
//
// Preconditions (checked before the transaction):
//  1. The institute must exist (tenant is lazily provisioned), else
//     ErrTenantNotFound.
//  2. The tenant must be ACTIVE, else ErrTenantInactive.
//  3. The tenant's live CLAIMED count must be below its plan ceiling, else
//     ErrClaimLimitExceeded. The ceiling is checked regardless of the target
//     lead's state.
//
// Transactional body: load the access row for (tenant, lead) and branch on
// its state. AVAILABLE rows are claimed; the effective mode (explicit
// LockMode or the tenant's setting) decides whether sibling AVAILABLE rows
// are locked out. Sibling rows already CLAIMED or LOCKED are untouched; a
// claim never un-claims another tenant. The LeadClaim, TenantUsage, and
// AuditLog writes commit atomically with the status changes, so no partial
// state is ever observable.
//
// Error mapping: a never-distributed lead yields ErrLeadNotAssigned; a lead
// exclusively claimed by a sibling yields ErrLeadLocked. A re-claim by the
// owning tenant succeeds with AlreadyClaimed=true and performs no writes.
func (s *ClaimService) ClaimLead(ctx context.Context, instituteID string, in ClaimInput) (*ClaimResult, error) {
	tr := otel.Tracer("services/ClaimService")
	ctx, span := tr.Start(ctx, "ClaimLead",
		trace.WithAttributes(
			attribute.String("lead.id", in.LeadID),
			attribute.String("institute.id", instituteID),
		),
	)
	defer span.End()

	tenant, err := s.Tenants.EnsureByInstitute(ctx, instituteID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		claimAttempts.WithLabelValues("rejected").Inc()
		return nil, ErrTenantNotFound
	}
	if tenant.Status != domain.TenantStatusActive {
		claimAttempts.WithLabelValues("rejected").Inc()
		return nil, ErrTenantInactive
	}

	claimed, err := repo.CountClaimedAccess(ctx, s.DB, tenant.ID)
	if err != nil {
		return nil, err
	}
	if claimed >= s.ceiling(tenant.Plan) {
		claimAttempts.WithLabelValues("rejected").Inc()
		return nil, ErrClaimLimitExceeded
	}

	var (
		outcome claimOutcome
		access  *domain.TenantLeadAccess
		mode    string
	)

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := repo.GetAccess(ctx, tx, tenant.ID, in.LeadID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				outcome = outcomeMissingAccess
				return nil
			}
			return err
		}

		switch row.VisibilityStatus {
		case domain.AccessLocked:
			outcome = outcomeLocked
			return nil
		case domain.AccessClaimed:
			outcome = outcomeAlreadyClaimed
			access = row
			mode = effectiveMode(in.LockMode, tenant.ClaimMode)
			return nil
		}

		now := time.Now().UTC()
		if err := repo.MarkAccessClaimed(ctx, tx, row.ID, now); err != nil {
			return err
		}
		row.VisibilityStatus = domain.AccessClaimed
		row.ClaimedAt = &now

		mode = effectiveMode(in.LockMode, tenant.ClaimMode)
		if mode != domain.ClaimModeShared {
			if _, err := repo.LockSiblingAccess(ctx, tx, in.LeadID, tenant.ID); err != nil {
				return err
			}
		}

		if _, err := repo.CreateLeadClaim(ctx, tx, tenant.ID, in.LeadID, row.ID, mode); err != nil {
			return err
		}
		if err := repo.IncrementTenantUsage(ctx, tx, tenant.ID, UsageMonth(now)); err != nil {
			return err
		}
		if _, err := repo.CreateAuditLog(ctx, tx, tenant.ID, domain.ActorUser, domain.ActionLeadClaimed,
			in.LeadID, domain.JSONMap{"claimMode": mode}); err != nil {
			return err
		}

		if in.IdempotencyKey != "" {
			if _, err := repo.CreateIdempotency(ctx, tx, tenant.ID, in.LeadID, in.IdempotencyKey,
				"CLAIMED", 200, s.idempotencyTTL()); err != nil && !errors.Is(err, repo.ErrDuplicate) {
				return err
			}
		}

		outcome = outcomeClaimed
		access = row
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch outcome {
	case outcomeMissingAccess:
		claimAttempts.WithLabelValues("missing_access").Inc()
		return nil, ErrLeadNotAssigned
	case outcomeLocked:
		claimAttempts.WithLabelValues("locked").Inc()
		return nil, ErrLeadLocked
	case outcomeAlreadyClaimed:
		claimAttempts.WithLabelValues("already_claimed").Inc()
		span.SetAttributes(attribute.Bool("claim.replay", true))
		return &ClaimResult{Claimed: true, AlreadyClaimed: true, Mode: mode, Access: access}, nil
	default:
		claimAttempts.WithLabelValues("claimed").Inc()
		span.SetAttributes(attribute.String("claim.mode", mode))
		return &ClaimResult{Claimed: true, AlreadyClaimed: false, Mode: mode, Access: access}, nil
	}
}

func (s *ClaimService) idempotencyTTL() time.Duration {
	if s.IdempotencyTTL <= 0 {
		return 24 * time.Hour
	}
	return s.IdempotencyTTL
}

// effectiveMode resolves the claim mode for one claim: the explicit override
// wins, otherwise the tenant's configured mode applies.
func effectiveMode(override, tenantMode string) string {
	if override != "" {
		return override
	}
	return tenantMode
}
