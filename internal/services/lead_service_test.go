package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/oncampus/leadhub-backend/internal/domain"
	"github.com/oncampus/leadhub-backend/internal/repo"
	"github.com/oncampus/leadhub-backend/internal/scoring"
)

func seedLead(t *testing.T, db *gorm.DB, lead *domain.GlobalLead) *domain.GlobalLead {
	t.Helper()
	if err := repo.CreateLead(context.Background(), db, lead); err != nil {
		t.Fatalf("seed lead: %v", err)
	}
	return lead
}

// provisionTenant creates an institute-backed tenant and applies settings.
func provisionTenant(t *testing.T, db *gorm.DB, name string, in TenantSettingsInput) *domain.Tenant {
	t.Helper()
	inst := seedInstitute(t, db, name)
	svc := NewTenantService(db)
	ten, err := svc.UpdateSettings(context.Background(), inst.ID, in)
	if err != nil {
		t.Fatalf("provision tenant %s: %v", name, err)
	}
	return ten
}

func TestLead_RecalculateScore(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeadService(db)

	lead := seedLead(t, db, &domain.GlobalLead{
		Phone:    "+91 98765",
		Email:    "a@b.c",
		Verified: true,
	})

	got, err := svc.RecalculateScore(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("RecalculateScore: %v", err)
	}
	// phone 40 + email 10 + verified 20
	if got.Score != 70 {
		t.Fatalf("score = %d, want 70", got.Score)
	}

	reloaded, err := repo.GetLead(context.Background(), db, lead.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Score != 70 {
		t.Fatalf("persisted score = %d, want 70", reloaded.Score)
	}

	// Idempotent for identical inputs.
	again, err := svc.RecalculateScore(context.Background(), lead.ID)
	if err != nil || again.Score != 70 {
		t.Fatalf("second recalculation: score=%d err=%v", again.Score, err)
	}
}

func TestLead_RecalculateScore_NotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeadService(db)

	_, err := svc.RecalculateScore(context.Background(), "missing")
	if !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("expected ErrLeadNotFound, got %v", err)
	}
}

func TestLead_DistributeLead_TargetingAndFloor(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeadService(db)

	// Lead in Pune, category NEET, score 70.
	lead := seedLead(t, db, &domain.GlobalLead{
		Phone: "123", City: "Pune", Category: "NEET", Score: 70,
	})

	cities := []string{"Pune"}
	cats := []string{"NEET"}
	lowFloor := 50
	highFloor := 80

	a := provisionTenant(t, db, "A", TenantSettingsInput{
		TargetCities: &cities, TargetCategories: &cats, MinimumScore: &lowFloor,
	})
	b := provisionTenant(t, db, "B", TenantSettingsInput{MinimumScore: &highFloor})

	mumbai := []string{"Mumbai"}
	c := provisionTenant(t, db, "C", TenantSettingsInput{TargetCities: &mumbai})

	n, err := svc.DistributeLead(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("DistributeLead: %v", err)
	}
	// Only A matches: B's floor is above 70, C targets another city.
	if n != 1 {
		t.Fatalf("distributed = %d, want 1", n)
	}

	access, err := repo.GetAccess(context.Background(), db, a.ID, lead.ID)
	if err != nil {
		t.Fatalf("access for A: %v", err)
	}
	if access.VisibilityStatus != domain.AccessAvailable {
		t.Fatalf("status = %s, want AVAILABLE", access.VisibilityStatus)
	}
	// fit = 70 - 50 + 50 = 70
	if access.FitScore != 70 {
		t.Fatalf("fit score = %d, want 70", access.FitScore)
	}

	if _, err := repo.GetAccess(context.Background(), db, b.ID, lead.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected no access row for B, got %v", err)
	}
	if _, err := repo.GetAccess(context.Background(), db, c.ID, lead.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected no access row for C, got %v", err)
	}
}

func TestLead_DistributeLead_SuspendedTenantExcluded(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeadService(db)

	lead := seedLead(t, db, &domain.GlobalLead{Phone: "123", Score: 70})
	ten := provisionTenant(t, db, "A", TenantSettingsInput{})

	if err := db.Model(&domain.Tenant{}).Where("id = ?", ten.ID).
		Update("status", domain.TenantStatusSuspended).Error; err != nil {
		t.Fatalf("suspend: %v", err)
	}

	n, err := svc.DistributeLead(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("DistributeLead: %v", err)
	}
	if n != 0 {
		t.Fatalf("distributed = %d, want 0", n)
	}
}

func TestLead_DistributeLead_EmptyLeadCityNeedsUnrestrictedTenant(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeadService(db)

	// No city on the lead.
	lead := seedLead(t, db, &domain.GlobalLead{Phone: "123", Score: 70})

	cities := []string{"Pune"}
	restricted := provisionTenant(t, db, "Restricted", TenantSettingsInput{TargetCities: &cities})
	open := provisionTenant(t, db, "Open", TenantSettingsInput{})

	n, err := svc.DistributeLead(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("DistributeLead: %v", err)
	}
	if n != 1 {
		t.Fatalf("distributed = %d, want 1 (only the unrestricted tenant)", n)
	}
	if _, err := repo.GetAccess(context.Background(), db, restricted.ID, lead.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("city-restricted tenant must not match a city-less lead")
	}
	if _, err := repo.GetAccess(context.Background(), db, open.ID, lead.ID); err != nil {
		t.Fatalf("unrestricted tenant should match: %v", err)
	}
}

func TestLead_DistributeLead_RedistributionNeverDowngrades(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeadService(db)

	lead := seedLead(t, db, &domain.GlobalLead{Phone: "123", Score: 70})
	ten := provisionTenant(t, db, "A", TenantSettingsInput{})

	if n, err := svc.DistributeLead(context.Background(), lead.ID); err != nil || n != 1 {
		t.Fatalf("first distribution: n=%d err=%v", n, err)
	}

	// Tenant claims the lead.
	row, err := repo.GetAccess(context.Background(), db, ten.ID, lead.ID)
	if err != nil {
		t.Fatalf("access: %v", err)
	}
	if err := repo.MarkAccessClaimed(context.Background(), db, row.ID, time.Now().UTC()); err != nil {
		t.Fatalf("claim: %v", err)
	}

	// Re-distribution must not reopen the claimed row.
	if n, err := svc.DistributeLead(context.Background(), lead.ID); err != nil || n != 1 {
		t.Fatalf("second distribution: n=%d err=%v", n, err)
	}
	got, _ := repo.GetAccess(context.Background(), db, ten.ID, lead.ID)
	if got.VisibilityStatus != domain.AccessClaimed {
		t.Fatalf("claimed row downgraded to %s", got.VisibilityStatus)
	}
}

func TestLead_DistributeLead_NotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeadService(db)

	_, err := svc.DistributeLead(context.Background(), "missing")
	if !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("expected ErrLeadNotFound, got %v", err)
	}
}

func TestLead_DistributeLead_ClaimCommitsMidRun(t *testing.T) {
	db, raced := newTestDBPair(t)

	lead := seedLead(t, db, &domain.GlobalLead{Phone: "123", Score: 70})
	ten := provisionTenant(t, db, "A", TenantSettingsInput{})
	if err := repo.UpsertAccessForDistribution(context.Background(), db, ten.ID, lead.ID, 1, true); err != nil {
		t.Fatalf("seed access: %v", err)
	}

	// The tenant's claim commits while redistribution is mid-write on the
	// same access row. Rehearses the full claim engine, not a bare status
	// update, so sibling locking and audit writes land too.
	claims := newClaimService(db)
	var (
		once     sync.Once
		claimRes *ClaimResult
		claimErr error
	)
	err := raced.Callback().Update().Before("gorm:update").Register("claim_mid_distribution", func(tx *gorm.DB) {
		once.Do(func() {
			claimRes, claimErr = claims.ClaimLead(context.Background(), ten.InstituteID, ClaimInput{LeadID: lead.ID})
		})
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	if n, err := NewLeadService(raced).DistributeLead(context.Background(), lead.ID); err != nil || n != 1 {
		t.Fatalf("distribution: n=%d err=%v", n, err)
	}
	if claimErr != nil {
		t.Fatalf("concurrent claim: %v", claimErr)
	}
	if claimRes == nil || !claimRes.Claimed || claimRes.AlreadyClaimed {
		t.Fatalf("unexpected claim result: %+v", claimRes)
	}

	got, err := repo.GetAccess(context.Background(), db, ten.ID, lead.ID)
	if err != nil {
		t.Fatalf("reload access: %v", err)
	}
	if got.VisibilityStatus != domain.AccessClaimed {
		t.Fatalf("claimed row downgraded to %s", got.VisibilityStatus)
	}
	if want := scoring.FitScore(lead.Score, ten.MinimumScore); got.FitScore != want {
		t.Fatalf("fit score = %d, want %d refreshed by redistribution", got.FitScore, want)
	}

	var claimRows int64
	if err := db.Model(&domain.LeadClaim{}).Where("lead_id = ?", lead.ID).Count(&claimRows).Error; err != nil {
		t.Fatalf("count lead claims: %v", err)
	}
	if claimRows != 1 {
		t.Fatalf("lead claim records = %d, want 1", claimRows)
	}
}
