// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// This file centralizes symbolic error code constants that are mapped to HTTP responses
// (via the `fail()` helper in this package). These codes provide clients with a stable,
// machine-readable error taxonomy that supplements human-readable messages.
//
// Conventions:
//   - Codes are lowercase, snake_case, and domain-agnostic unless explicitly noted.
//   - Generic codes (e.g., bad_request, conflict) mirror common HTTP status
//     semantics to aid interoperability.
//   - Domain-specific codes (e.g., lead_locked, claim_limit_exceeded) are reserved
//     for claim-engine outcomes that cannot be conveyed by status alone.
//   - All error responses must include both an HTTP status and one of these codes.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "lead_locked",
//	  "message": "lead is locked for this tenant"
//	}
package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeLeadNotFound       = "lead_not_found"
	ErrCodeTenantNotFound     = "tenant_not_found"
	ErrCodeTenantInactive     = "tenant_inactive"
	ErrCodeLeadNotAssigned    = "lead_not_assigned"
	ErrCodeLeadLocked         = "lead_locked"
	ErrCodeClaimLimitExceeded = "claim_limit_exceeded"
	ErrCodeScoreFailed        = "score_failed"
	ErrCodeDistributeFailed   = "distribute_failed"
	ErrCodeClaimFailed        = "claim_failed"
	ErrCodeListFailed         = "list_failed"
	ErrCodeUpdateFailed       = "update_failed"
	ErrCodeMethodNotAllowed   = "method_not_allowed"
)
