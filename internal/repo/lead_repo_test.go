package repo

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/oncampus/leadhub-backend/internal/domain"
)

func TestCreateLead_GeneratesID(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	lead := &domain.GlobalLead{Phone: "123", City: "Pune"}
	if err := CreateLead(ctx, db, lead); err != nil {
		t.Fatalf("CreateLead: %v", err)
	}
	if lead.ID == "" {
		t.Fatalf("expected generated id")
	}

	got, err := GetLead(ctx, db, lead.ID)
	if err != nil {
		t.Fatalf("GetLead: %v", err)
	}
	if got.Phone != "123" || got.City != "Pune" {
		t.Fatalf("unexpected lead: %+v", got)
	}
}

func TestCreateLead_KeepsExplicitID(t *testing.T) {
	db := newTestDB(t)

	lead := &domain.GlobalLead{ID: "11111111-1111-1111-1111-111111111111"}
	if err := CreateLead(context.Background(), db, lead); err != nil {
		t.Fatalf("CreateLead: %v", err)
	}
	if lead.ID != "11111111-1111-1111-1111-111111111111" {
		t.Fatalf("explicit id overwritten: %s", lead.ID)
	}
}

func TestGetLead_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := GetLead(context.Background(), db, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateLeadScore(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	lead := &domain.GlobalLead{Phone: "123"}
	if err := CreateLead(ctx, db, lead); err != nil {
		t.Fatalf("seed lead: %v", err)
	}

	if err := UpdateLeadScore(ctx, db, lead.ID, 70); err != nil {
		t.Fatalf("UpdateLeadScore: %v", err)
	}
	got, err := GetLead(ctx, db, lead.ID)
	if err != nil {
		t.Fatalf("GetLead: %v", err)
	}
	if got.Score != 70 {
		t.Fatalf("score = %d, want 70", got.Score)
	}

	// Missing lead maps zero affected rows to not found.
	if err := UpdateLeadScore(ctx, db, "missing", 10); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}
