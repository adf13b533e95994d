// Marketplace HTTP handlers.
//
// This file exposes the tenant-facing REST endpoints:
//   - GET  /marketplace/leads            (cursor-paginated lead listing)
//   - POST /marketplace/leads/{id}/claim (transactional claim)
//   - GET  /marketplace/settings         (current tenant settings)
//   - PUT  /marketplace/settings         (partial settings update)
//   - GET  /marketplace/usage            (monthly usage counters)
//   - GET  /marketplace/audit            (recent audit entries)
//
// All routes are scoped to the calling institute's tenant. The tenant is
// resolved (and lazily provisioned) by the service layer; handlers only carry
// the institute identity through.
//
// Idempotency:
// If the client supplies an Idempotency-Key header on a claim and a previous
// successful claim exists for (tenant, lead, key), the engine recognizes the
// replay and the repeated claim is a safe no-op.
package handlers

import (
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/oncampus/leadhub-backend/internal/domain"
	"github.com/oncampus/leadhub-backend/internal/http/middleware"
	"github.com/oncampus/leadhub-backend/internal/services"
	"github.com/oncampus/leadhub-backend/internal/utils"
)

//
// DTOs
//

// ClaimLeadRequest is the optional JSON payload for claiming a lead.
type ClaimLeadRequest struct {
	// LockMode optionally overrides the tenant's configured claim mode for
	// this claim only.
	LockMode string `json:"lock_mode" binding:"omitempty,oneof=FIRST_CLAIM_EXCLUSIVE MULTI_TENANT_SHARED" example:"FIRST_CLAIM_EXCLUSIVE"`
}

// UpdateSettingsRequest is the JSON payload for a partial tenant settings
// update. Nil fields are left unchanged; an empty list clears the filter.
type UpdateSettingsRequest struct {
	TargetCities     *[]string `json:"target_cities"`
	TargetCategories *[]string `json:"target_categories"`
	MinimumScore     *int      `json:"minimum_score" binding:"omitempty,min=0,max=100"`
	ClaimMode        *string   `json:"claim_mode" binding:"omitempty,oneof=FIRST_CLAIM_EXCLUSIVE MULTI_TENANT_SHARED"`
}

// AuditTrailResponse wraps the tenant's recent audit entries.
type AuditTrailResponse struct {
	Entries []domain.AuditLog `json:"entries"`
}

// monthRE validates the "YYYY-MM" month query parameter.
var monthRE = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// visibilityStatuses enumerates the filterable visibility states.
var visibilityStatuses = map[string]bool{
	domain.AccessAvailable: true,
	domain.AccessLocked:    true,
	domain.AccessClaimed:   true,
}

//
// Handlers
//

// ListLeads godoc
// @ID          listLeads
// @Summary     List the tenant's visible leads
// @Description Returns one cursor page of the calling tenant's lead access rows, newest
// @Description first, each with the lead embedded. Pass the returned next_cursor to fetch
// @Description the following page; a null next_cursor means the end of the result set.
// @Tags        Marketplace
// @Produce     json
//
// @Param       X-Institute-ID    header  string  false "Institute ID (demo header)"  example(inst-123)
// @Param       cursor            query   string  false "Cursor from the previous page"  example(1042)
// @Param       limit             query   int     false "Page size"  minimum(1) maximum(100) default(20)
// @Param       visibility_status query   string  false "Filter by visibility state"  Enums(AVAILABLE, LOCKED, CLAIMED)
// @Param       min_fit_score     query   int     false "Inclusive fit-score floor"  minimum(0) maximum(100)
//
// @Success     200  {object}  services.ListLeadsResult
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Tenant not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /marketplace/leads [get]
func (h *Handlers) ListLeads(c *gin.Context) {
	status := c.Query("visibility_status")
	if status != "" && !visibilityStatuses[status] {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "visibility_status must be AVAILABLE, LOCKED, or CLAIMED")
		return
	}

	in := services.ListLeadsInput{
		Cursor:           utils.ParseCursor(c.Query("cursor")),
		Limit:            utils.AtoiDefault(c.Query("limit"), 0),
		VisibilityStatus: status,
		MinFitScore:      utils.AtoiPtr(c.Query("min_fit_score")),
	}

	page, err := h.marketSvc.ListTenantLeads(c.Request.Context(), instituteID(c), in)
	if err != nil {
		switch err {
		case services.ErrTenantNotFound:
			fail(c, http.StatusNotFound, ErrCodeTenantNotFound, "tenant not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, page)
}

// ClaimLead godoc
// @ID          claimLead
// @Summary     Claim a lead
// @Description Atomically claims a lead for the calling tenant. Under FIRST_CLAIM_EXCLUSIVE
// @Description the winning claim locks the lead out for every other tenant it was
// @Description distributed to; under MULTI_TENANT_SHARED other tenants keep access.
// @Description Re-claiming a lead the tenant already owns is a safe no-op.
// @Tags        Marketplace
// @Accept      json
// @Produce     json
//
// @Param       X-Institute-ID   header  string  false "Institute ID (demo header)"  example(inst-123)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       id               path    string  true  "Lead ID (UUID)"  format(uuid)
// @Param       body             body    handlers.ClaimLeadRequest  false  "Optional claim options"
//
// @Success     200  {object}  services.ClaimResult
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse  "Tenant suspended"
// @Failure     404  {object}  handlers.ErrorResponse  "Lead not visible to tenant"
// @Failure     409  {object}  handlers.ErrorResponse  "Lead locked or claim ceiling reached"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /marketplace/leads/{id}/claim [post]
func (h *Handlers) ClaimLead(c *gin.Context) {
	leadID := c.Param("id")
	if _, err := uuid.Parse(leadID); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "lead id must be a UUID")
		return
	}

	var req ClaimLeadRequest
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "lock_mode must be FIRST_CLAIM_EXCLUSIVE or MULTI_TENANT_SHARED")
			return
		}
	}

	idemKey, _ := middleware.GetIdempotencyKey(c)
	if middleware.IsReplay(c) {
		c.Header("Idempotency-Replayed", "true")
	}

	res, err := h.claimSvc.ClaimLead(c.Request.Context(), instituteID(c), services.ClaimInput{
		LeadID:         leadID,
		LockMode:       req.LockMode,
		IdempotencyKey: idemKey,
	})
	if err != nil {
		switch err {
		case services.ErrTenantNotFound:
			fail(c, http.StatusNotFound, ErrCodeTenantNotFound, "tenant not found")
		case services.ErrTenantInactive:
			fail(c, http.StatusForbidden, ErrCodeTenantInactive, "tenant is suspended")
		case services.ErrClaimLimitExceeded:
			fail(c, http.StatusConflict, ErrCodeClaimLimitExceeded, "claim ceiling reached for current plan")
		case services.ErrLeadNotAssigned:
			fail(c, http.StatusNotFound, ErrCodeLeadNotAssigned, "lead is not available for this tenant")
		case services.ErrLeadLocked:
			fail(c, http.StatusConflict, ErrCodeLeadLocked, "lead is locked for this tenant")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeClaimFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, res)
}

// GetSettings godoc
// @ID          getSettings
// @Summary     Get tenant settings
// @Description Returns the calling tenant's targeting and claim settings, provisioning a
// @Description default tenant on first contact.
// @Tags        Marketplace
// @Produce     json
//
// @Param       X-Institute-ID  header  string  false "Institute ID (demo header)"  example(inst-123)
//
// @Success     200  {object}  domain.Tenant
// @Failure     404  {object}  handlers.ErrorResponse  "Institute not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /marketplace/settings [get]
func (h *Handlers) GetSettings(c *gin.Context) {
	t, err := h.tenantSvc.EnsureByInstitute(c.Request.Context(), instituteID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	if t == nil {
		fail(c, http.StatusNotFound, ErrCodeTenantNotFound, "tenant not found")
		return
	}
	ok(c, http.StatusOK, t)
}

// UpdateSettings godoc
// @ID          updateSettings
// @Summary     Update tenant settings
// @Description Applies a partial update to the calling tenant's targeting and claim
// @Description settings. Omitted fields are left unchanged; an empty list clears a filter.
// @Tags        Marketplace
// @Accept      json
// @Produce     json
//
// @Param       X-Institute-ID  header  string  false "Institute ID (demo header)"  example(inst-123)
// @Param       body            body    handlers.UpdateSettingsRequest  true  "Partial settings update"
//
// @Success     200  {object}  domain.Tenant
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Tenant not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /marketplace/settings [put]
func (h *Handlers) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	t, err := h.tenantSvc.UpdateSettings(c.Request.Context(), instituteID(c), services.TenantSettingsInput{
		TargetCities:     req.TargetCities,
		TargetCategories: req.TargetCategories,
		MinimumScore:     req.MinimumScore,
		ClaimMode:        req.ClaimMode,
	})
	if err != nil {
		switch err {
		case services.ErrTenantNotFound:
			fail(c, http.StatusNotFound, ErrCodeTenantNotFound, "tenant not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeUpdateFailed, err.Error())
		}
		return
	}
	if t == nil {
		fail(c, http.StatusNotFound, ErrCodeTenantNotFound, "tenant not found")
		return
	}
	ok(c, http.StatusOK, t)
}

// GetUsage godoc
// @ID          getUsage
// @Summary     Get monthly usage
// @Description Returns the calling tenant's claim counters for a billing month. Defaults
// @Description to the current UTC month; months with no activity return zero counters.
// @Tags        Marketplace
// @Produce     json
//
// @Param       X-Institute-ID  header  string  false "Institute ID (demo header)"  example(inst-123)
// @Param       month           query   string  false "Billing month (YYYY-MM, UTC)"  example(2026-09)
//
// @Success     200  {object}  domain.TenantUsage
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Tenant not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /marketplace/usage [get]
func (h *Handlers) GetUsage(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		month = services.UsageMonth(time.Now())
	} else if !monthRE.MatchString(month) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "month must be YYYY-MM")
		return
	}

	u, err := h.tenantSvc.Usage(c.Request.Context(), instituteID(c), month)
	if err != nil {
		switch err {
		case services.ErrTenantNotFound:
			fail(c, http.StatusNotFound, ErrCodeTenantNotFound, "tenant not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, u)
}

// GetAuditTrail godoc
// @ID          getAuditTrail
// @Summary     Get recent audit entries
// @Description Returns the calling tenant's most recent audit entries, newest first.
// @Tags        Marketplace
// @Produce     json
//
// @Param       X-Institute-ID  header  string  false "Institute ID (demo header)"  example(inst-123)
// @Param       limit           query   int     false "Maximum entries to return"  minimum(1) maximum(200) default(50)
//
// @Success     200  {object}  handlers.AuditTrailResponse
// @Failure     404  {object}  handlers.ErrorResponse  "Tenant not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /marketplace/audit [get]
func (h *Handlers) GetAuditTrail(c *gin.Context) {
	limit := utils.AtoiDefault(c.Query("limit"), 50)
	if limit < 1 {
		limit = 1
	}
	if limit > 200 {
		limit = 200
	}

	entries, err := h.tenantSvc.AuditTrail(c.Request.Context(), instituteID(c), limit)
	if err != nil {
		switch err {
		case services.ErrTenantNotFound:
			fail(c, http.StatusNotFound, ErrCodeTenantNotFound, "tenant not found")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, AuditTrailResponse{Entries: entries})
}
