// Package services defines the business logic of the lead marketplace:
// scoring, distribution, tenant provisioning, claiming, and the tenant-facing
// lead listing. This file centralizes common service-level error values so
// that they can be consistently returned by service methods and checked by
// callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes is performed at the
// handler layer.
package services

import "errors"

var (
	// ErrLeadNotFound indicates that the requested global lead does not exist.
	ErrLeadNotFound = errors.New("global lead not found")

	// ErrTenantNotFound indicates that the institute has no tenant projection
	// (the institute itself does not exist).
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrTenantInactive is returned when a suspended tenant attempts to claim.
	ErrTenantInactive = errors.New("tenant is not active")

	// ErrClaimLimitExceeded is returned when a tenant's live CLAIMED count has
	// reached the ceiling allowed by its plan.
	ErrClaimLimitExceeded = errors.New("claim limit exceeded for current plan")

	// ErrLeadNotAssigned indicates the lead was never distributed to the
	// claiming tenant.
	ErrLeadNotAssigned = errors.New("lead is not available for this tenant")

	// ErrLeadLocked indicates another tenant already claimed the lead
	// exclusively.
	ErrLeadLocked = errors.New("lead is locked for this tenant")
)
