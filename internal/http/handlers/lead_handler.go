// Lead HTTP handlers.
//
// This file exposes the operational endpoints for global leads:
//   - POST /leads/{id}/score       (recompute the completeness score)
//   - POST /leads/{id}/distribute  (fan the lead out to eligible tenants)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/oncampus/leadhub-backend/internal/domain"
	"github.com/oncampus/leadhub-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// LeadService defines the lead scoring and distribution operations consumed
// by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type LeadService interface {
	// RecalculateScore recomputes and persists the lead's completeness score.
	RecalculateScore(ctx context.Context, leadID string) (*domain.GlobalLead, error)
	// DistributeLead evaluates all active tenants against the lead and
	// returns the number of tenants the lead was made visible to.
	DistributeLead(ctx context.Context, leadID string) (int, error)
}

// TenantService defines the tenant registry operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type TenantService interface {
	// EnsureByInstitute resolves the tenant for an institute, provisioning a
	// default tenant on first contact. A nil tenant with nil error means the
	// institute itself does not exist.
	EnsureByInstitute(ctx context.Context, instituteID string) (*domain.Tenant, error)
	// UpdateSettings applies a partial settings update and returns the
	// updated tenant.
	UpdateSettings(ctx context.Context, instituteID string, in services.TenantSettingsInput) (*domain.Tenant, error)
	// Usage returns the tenant's usage counters for a month ("YYYY-MM").
	Usage(ctx context.Context, instituteID, month string) (*domain.TenantUsage, error)
	// AuditTrail returns the tenant's most recent audit entries.
	AuditTrail(ctx context.Context, instituteID string, limit int) ([]domain.AuditLog, error)
}

// ClaimService defines the transactional claim operation consumed by HTTP
// handlers.
type ClaimService interface {
	// ClaimLead attempts to claim one lead on behalf of the institute's
	// tenant and reports the outcome.
	ClaimLead(ctx context.Context, instituteID string, in services.ClaimInput) (*services.ClaimResult, error)
}

// MarketplaceService defines the tenant-facing lead listing consumed by HTTP
// handlers.
type MarketplaceService interface {
	// ListTenantLeads returns one cursor page of the tenant's visible leads.
	ListTenantLeads(ctx context.Context, instituteID string, in services.ListLeadsInput) (*services.ListLeadsResult, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for leads and the tenant marketplace.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	leadSvc   LeadService
	tenantSvc TenantService
	claimSvc  ClaimService
	marketSvc MarketplaceService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(leadSvc LeadService, tenantSvc TenantService, claimSvc ClaimService, marketSvc MarketplaceService) *Handlers {
	return &Handlers{leadSvc: leadSvc, tenantSvc: tenantSvc, claimSvc: claimSvc, marketSvc: marketSvc}
}

// instituteID extracts the authenticated institute id from Gin context (set by
// upstream middleware). If absent, it falls back to the "X-Institute-ID"
// header (tests use it), and finally to "demo-institute". It never touches
// c.Request if it's nil.
func instituteID(c *gin.Context) string {
	if v, ok := c.Get("instituteID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-Institute-ID")); h != "" {
			return h
		}
	}
	return "demo-institute"
}

//
// DTOs
//

// DistributeLeadResponse reports the fan-out result for one lead.
type DistributeLeadResponse struct {
	// LeadID is the lead that was distributed.
	LeadID string `json:"lead_id" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
	// Distributed is the number of tenants the lead matched.
	Distributed int `json:"distributed" example:"3"`
}

//
// Handlers
//

// ScoreLead godoc
// @ID          scoreLead
// @Summary     Recompute a lead's score
// @Description Recomputes the completeness score from the lead's current fields and persists it.
// @Tags        Leads
// @Produce     json
//
// @Param       id  path  string  true  "Lead ID (UUID)"  format(uuid) example(141add05-4415-4938-b5a1-17e0d3171aff)
//
// @Success     200  {object}  domain.GlobalLead
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Lead not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /leads/{id}/score [post]
func (h *Handlers) ScoreLead(c *gin.Context) {
	leadID := c.Param("id")
	if _, err := uuid.Parse(leadID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "lead id must be a UUID")
		return
	}

	lead, err := h.leadSvc.RecalculateScore(c.Request.Context(), leadID)
	if err != nil {
		switch err {
		case services.ErrLeadNotFound:
			fail(c, http.StatusNotFound, ErrCodeLeadNotFound, "lead not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeScoreFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, lead)
}

// DistributeLead godoc
// @ID          distributeLead
// @Summary     Distribute a lead to eligible tenants
// @Description Evaluates every active tenant's targeting rules against the lead and
// @Description upserts per-tenant visibility rows. Re-distribution is safe: claimed and
// @Description locked rows are never downgraded.
// @Tags        Leads
// @Produce     json
//
// @Param       id  path  string  true  "Lead ID (UUID)"  format(uuid) example(141add05-4415-4938-b5a1-17e0d3171aff)
//
// @Success     200  {object}  handlers.DistributeLeadResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Lead not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /leads/{id}/distribute [post]
func (h *Handlers) DistributeLead(c *gin.Context) {
	leadID := c.Param("id")
	if _, err := uuid.Parse(leadID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "lead id must be a UUID")
		return
	}

	n, err := h.leadSvc.DistributeLead(c.Request.Context(), leadID)
	if err != nil {
		switch err {
		case services.ErrLeadNotFound:
			fail(c, http.StatusNotFound, ErrCodeLeadNotFound, "lead not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeDistributeFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, DistributeLeadResponse{LeadID: leadID, Distributed: n})
}
