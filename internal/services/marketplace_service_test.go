package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/oncampus/leadhub-backend/internal/domain"
	"github.com/oncampus/leadhub-backend/internal/repo"
)

// seedAccessRows distributes n fresh leads to the tenant and returns the
// access-row ids in insertion order.
func seedAccessRows(t *testing.T, db *gorm.DB, tenant *domain.Tenant, n int) []uint64 {
	t.Helper()
	ids := make([]uint64, 0, n)
	for i := 0; i < n; i++ {
		lead := seedLead(t, db, &domain.GlobalLead{Phone: "123", Score: 70})
		if err := repo.UpsertAccessForDistribution(context.Background(), db, tenant.ID, lead.ID, 70, true); err != nil {
			t.Fatalf("distribute: %v", err)
		}
		row, err := repo.GetAccess(context.Background(), db, tenant.ID, lead.ID)
		if err != nil {
			t.Fatalf("access: %v", err)
		}
		ids = append(ids, row.ID)
	}
	return ids
}

func TestMarketplace_ListTenantLeads_Pagination(t *testing.T) {
	db := newTestDB(t)
	svc := NewMarketplaceService(db, NewTenantService(db))

	a := provisionTenant(t, db, "A", TenantSettingsInput{})
	ids := seedAccessRows(t, db, a, 5)

	// First page, newest first.
	page, err := svc.ListTenantLeads(context.Background(), a.InstituteID, ListLeadsInput{Limit: 2})
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("page 1 size = %d, want 2", len(page.Items))
	}
	if page.Items[0].ID != ids[4] || page.Items[1].ID != ids[3] {
		t.Fatalf("page 1 order = %d,%d, want %d,%d", page.Items[0].ID, page.Items[1].ID, ids[4], ids[3])
	}
	if page.NextCursor == nil || *page.NextCursor != ids[3] {
		t.Fatalf("page 1 cursor = %v, want %d", page.NextCursor, ids[3])
	}
	if page.Items[0].Lead.ID == "" {
		t.Fatal("lead not preloaded")
	}

	// Second page resumes below the cursor.
	page, err = svc.ListTenantLeads(context.Background(), a.InstituteID, ListLeadsInput{Cursor: *page.NextCursor, Limit: 2})
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if page.Items[0].ID != ids[2] || page.Items[1].ID != ids[1] {
		t.Fatalf("page 2 order = %d,%d", page.Items[0].ID, page.Items[1].ID)
	}
	if page.NextCursor == nil {
		t.Fatal("page 2 cursor missing")
	}

	// Final page is short and carries no cursor.
	page, err = svc.ListTenantLeads(context.Background(), a.InstituteID, ListLeadsInput{Cursor: *page.NextCursor, Limit: 2})
	if err != nil {
		t.Fatalf("page 3: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != ids[0] {
		t.Fatalf("page 3 = %+v", page.Items)
	}
	if page.NextCursor != nil {
		t.Fatalf("page 3 cursor = %d, want nil", *page.NextCursor)
	}
}

func TestMarketplace_ListTenantLeads_ExactBoundary(t *testing.T) {
	db := newTestDB(t)
	svc := NewMarketplaceService(db, NewTenantService(db))

	a := provisionTenant(t, db, "A", TenantSettingsInput{})
	seedAccessRows(t, db, a, 3)

	// A full page with nothing behind it ends the result set.
	page, err := svc.ListTenantLeads(context.Background(), a.InstituteID, ListLeadsInput{Limit: 3})
	if err != nil {
		t.Fatalf("ListTenantLeads: %v", err)
	}
	if len(page.Items) != 3 {
		t.Fatalf("size = %d, want 3", len(page.Items))
	}
	if page.NextCursor != nil {
		t.Fatalf("cursor = %d, want nil", *page.NextCursor)
	}
}

func TestMarketplace_ListTenantLeads_Filters(t *testing.T) {
	db := newTestDB(t)
	svc := NewMarketplaceService(db, NewTenantService(db))

	a := provisionTenant(t, db, "A", TenantSettingsInput{})

	low := seedLead(t, db, &domain.GlobalLead{Phone: "123", Score: 40})
	high := seedLead(t, db, &domain.GlobalLead{Phone: "456", Score: 90})
	if err := repo.UpsertAccessForDistribution(context.Background(), db, a.ID, low.ID, 40, true); err != nil {
		t.Fatalf("distribute low: %v", err)
	}
	if err := repo.UpsertAccessForDistribution(context.Background(), db, a.ID, high.ID, 90, true); err != nil {
		t.Fatalf("distribute high: %v", err)
	}

	minFit := 60
	page, err := svc.ListTenantLeads(context.Background(), a.InstituteID, ListLeadsInput{MinFitScore: &minFit})
	if err != nil {
		t.Fatalf("min fit filter: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].LeadID != high.ID {
		t.Fatalf("min fit filter returned %+v", page.Items)
	}

	// Claim the high-fit lead and filter by status.
	row, _ := repo.GetAccess(context.Background(), db, a.ID, high.ID)
	claimSvc := newClaimService(db)
	if _, err := claimSvc.ClaimLead(context.Background(), a.InstituteID, ClaimInput{LeadID: high.ID}); err != nil {
		t.Fatalf("claim: %v", err)
	}

	page, err = svc.ListTenantLeads(context.Background(), a.InstituteID, ListLeadsInput{VisibilityStatus: domain.AccessClaimed})
	if err != nil {
		t.Fatalf("status filter: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != row.ID {
		t.Fatalf("status filter returned %+v", page.Items)
	}
}

func TestMarketplace_ClampLimit(t *testing.T) {
	svc := &MarketplaceService{DefaultPageSize: 20, MaxPageSize: 100}

	if got := svc.clampLimit(0); got != 20 {
		t.Fatalf("clampLimit(0) = %d, want 20", got)
	}
	if got := svc.clampLimit(-3); got != 20 {
		t.Fatalf("clampLimit(-3) = %d, want 20", got)
	}
	if got := svc.clampLimit(500); got != 100 {
		t.Fatalf("clampLimit(500) = %d, want 100", got)
	}
	if got := svc.clampLimit(7); got != 7 {
		t.Fatalf("clampLimit(7) = %d, want 7", got)
	}
}

func TestMarketplace_ListTenantLeads_TenantNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewMarketplaceService(db, NewTenantService(db))

	_, err := svc.ListTenantLeads(context.Background(), "missing", ListLeadsInput{})
	if !errors.Is(err, ErrTenantNotFound) {
		t.Fatalf("expected ErrTenantNotFound, got %v", err)
	}
}
