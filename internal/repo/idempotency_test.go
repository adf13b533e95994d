package repo

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestIdempotency_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	rec, err := CreateIdempotency(ctx, db, "t1", "l1", "k1", "CLAIMED", 200, time.Hour)
	if err != nil {
		t.Fatalf("CreateIdempotency: %v", err)
	}
	if rec.ID == "" || rec.Outcome != "CLAIMED" || rec.Status != 200 {
		t.Fatalf("unexpected record: %+v", rec)
	}

	got, err := GetIdempotency(ctx, db, "t1", "l1", "k1", now)
	if err != nil {
		t.Fatalf("GetIdempotency: %v", err)
	}
	if got.ID != rec.ID {
		t.Fatalf("record mismatch: %s vs %s", got.ID, rec.ID)
	}
}

func TestIdempotency_Duplicate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := CreateIdempotency(ctx, db, "t1", "l1", "k1", "CLAIMED", 200, time.Hour); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := CreateIdempotency(ctx, db, "t1", "l1", "k1", "CLAIMED", 200, time.Hour)
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	// A different key on the same (tenant, lead) is a distinct record.
	if _, err := CreateIdempotency(ctx, db, "t1", "l1", "k2", "CLAIMED", 200, time.Hour); err != nil {
		t.Fatalf("different key: %v", err)
	}
	// A different tenant reusing the key is fine too.
	if _, err := CreateIdempotency(ctx, db, "t2", "l1", "k1", "CLAIMED", 200, time.Hour); err != nil {
		t.Fatalf("different tenant: %v", err)
	}
}

func TestIdempotency_Expiry(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := CreateIdempotency(ctx, db, "t1", "l1", "k1", "CLAIMED", 200, time.Minute); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Within the TTL the record is visible.
	if _, err := GetIdempotency(ctx, db, "t1", "l1", "k1", time.Now().UTC()); err != nil {
		t.Fatalf("get within TTL: %v", err)
	}

	// After expiry it is treated as absent.
	later := time.Now().UTC().Add(2 * time.Minute)
	_, err := GetIdempotency(ctx, db, "t1", "l1", "k1", later)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after expiry, got %v", err)
	}
}

func TestIdempotency_EmptyLeadID(t *testing.T) {
	db := newTestDB(t)
	_, err := GetIdempotency(context.Background(), db, "t1", "  ", "k1", time.Now().UTC())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for blank lead id, got %v", err)
	}
}

func Test_containsFold(t *testing.T) {
	if !containsFold("UNIQUE Constraint Failed", "unique constraint") {
		t.Fatalf("case-insensitive match failed")
	}
	if containsFold("something else", "unique") {
		t.Fatalf("false positive")
	}
}
