// Package services – LeadService
//
// This file implements the scorer and the distribution engine. Scoring is an
// explicit, callable operation (never an implicit side effect of unrelated
// writes): callers that need a fresh score invoke RecalculateScore before
// DistributeLead. Distribution fans a scored lead out to every ACTIVE tenant
// whose targeting predicates admit it, creating or refreshing one access row
// per matching tenant.
//
// Observability: both public methods are OpenTelemetry-instrumented; spans
// carry the lead identifier and, for distribution, the match count.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/oncampus/leadhub-backend/internal/domain"
	"github.com/oncampus/leadhub-backend/internal/repo"
	"github.com/oncampus/leadhub-backend/internal/scoring"
)

// LeadService owns score recomputation and distribution of global leads.
type LeadService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewLeadService constructs a LeadService.
func NewLeadService(db *gorm.DB) *LeadService {
	return &LeadService{DB: db}
}

// RecalculateScore recomputes and persists the presence-weighted score of a
// lead, returning the updated record. Idempotent for identical inputs.
// Returns ErrLeadNotFound when the lead does not exist.
func (s *LeadService) RecalculateScore(ctx context.Context, leadID string) (*domain.GlobalLead, error) {
	tr := otel.Tracer("services/LeadService")
	ctx, span := tr.Start(ctx, "RecalculateScore",
		trace.WithAttributes(attribute.String("lead.id", leadID)),
	)
	defer span.End()

	lead, err := repo.GetLead(ctx, s.DB, leadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}

	score := scoring.Score(lead.Phone, lead.Website, lead.Email, lead.Address, lead.Verified)
	if err := repo.UpdateLeadScore(ctx, s.DB, lead.ID, score); err != nil {
		return nil, err
	}
	lead.Score = score
	span.SetAttributes(attribute.Int("lead.score", score))
	return lead, nil
}

// DistributeLead fans the lead out to every eligible tenant and returns the
// number of tenants matched. Upserts on existing access rows still count; the
// result is "tenants considered eligible", not "rows created".
//
// Eligibility, all conjunctive:
//   - tenant.Status == ACTIVE
//   - tenant.MinimumScore <= lead.Score
//   - tenant.TargetCities empty OR contains lead.City
//   - tenant.TargetCategories empty OR contains lead.Category
//
// Distribution never moves a row out of AVAILABLE: CLAIMED and LOCKED rows
// keep their status and only have the fit score refreshed.
func (s *LeadService) DistributeLead(ctx context.Context, leadID string) (int, error) {
	tr := otel.Tracer("services/LeadService")
	ctx, span := tr.Start(ctx, "DistributeLead",
		trace.WithAttributes(attribute.String("lead.id", leadID)),
	)
	defer span.End()

	lead, err := repo.GetLead(ctx, s.DB, leadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrLeadNotFound
		}
		return 0, err
	}

	candidates, err := repo.ListActiveTenantsForScore(ctx, s.DB, lead.Score)
	if err != nil {
		return 0, err
	}

	matched := 0
	for _, t := range candidates {
		if !scoring.MatchesTarget(t.TargetCities, lead.City) {
			continue
		}
		if !scoring.MatchesTarget(t.TargetCategories, lead.Category) {
			continue
		}

		fit := scoring.FitScore(lead.Score, t.MinimumScore)
		eligible := lead.Score >= t.MinimumScore
		if err := repo.UpsertAccessForDistribution(ctx, s.DB, t.ID, lead.ID, fit, eligible); err != nil {
			return matched, err
		}
		matched++
		leadsDistributed.Inc()
	}

	span.SetAttributes(attribute.Int("lead.distributed", matched))
	return matched, nil
}
