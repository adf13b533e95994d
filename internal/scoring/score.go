// Package scoring contains the pure scoring functions of the lead
// marketplace: the presence-weighted lead score and the per-tenant fit
// margin. Both are deterministic and free of I/O so they can be unit-tested
// exhaustively; persistence lives in the service layer.
package scoring

import "strings"

// Presence weights for the lead score. These are fixed design constants of
// the heuristic, not configuration: a phone number is the strongest signal a
// prospect can be reached, verification adds trust, the remaining fields add
// smaller increments. The weights sum to MaxScore.
const (
	WeightPhone    = 40
	WeightWebsite  = 20
	WeightEmail    = 10
	WeightAddress  = 10
	WeightVerified = 20

	// MaxScore is the ceiling of both the lead score and the fit score.
	MaxScore = 100
)

// FitOffset re-centers the fit margin so that a lead scoring exactly at a
// tenant's minimum reads as 50% fit rather than 0.
const FitOffset = 50

// Score computes the presence-weighted score of a lead's contact surface.
// Field content is irrelevant; only non-blank presence counts.
func Score(phone, website, email, address string, verified bool) int {
	s := 0
	if present(phone) {
		s += WeightPhone
	}
	if present(website) {
		s += WeightWebsite
	}
	if present(email) {
		s += WeightEmail
	}
	if present(address) {
		s += WeightAddress
	}
	if verified {
		s += WeightVerified
	}
	return s
}

// FitScore computes the relative-margin fit of a lead for a tenant: how far
// the lead's score exceeds the tenant's own floor, re-centered around
// FitOffset and clamped to [0, MaxScore].
func FitScore(leadScore, minimumScore int) int {
	return Clamp(0, MaxScore, leadScore-minimumScore+FitOffset)
}

// Clamp bounds v to the inclusive range [lo, hi].
func Clamp(lo, hi, v int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// present reports whether a contact field carries a non-blank value.
func present(s string) bool { return strings.TrimSpace(s) != "" }
