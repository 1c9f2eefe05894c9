package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iho/gobooks/internal/domain"
)

func TestDraftStoreSaveAndGet(t *testing.T) {
	client, mr := newTestRedisClient(t)

	store := NewDraftStore(client)
	ctx := context.Background()

	lines := domain.NewEntryLineSet()
	lines.UpdateLine(1, domain.FieldAccountID, "cash")
	lines.UpdateLine(1, domain.FieldDebit, "12.345")
	lines.UpdateLine(2, domain.FieldAccountID, "revenue")
	lines.UpdateLine(2, domain.FieldCredit, "12.35")
	lines.AddLine()

	draft := &domain.Draft{
		ID: "draft-1",
		Document: domain.TransactionDocument{
			Kind:        domain.KindJournal,
			Description: "Accrual",
			Lines:       lines,
		},
	}

	if err := store.Save(ctx, draft, time.Hour); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := store.Get(ctx, "draft-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if got.Document.Kind != domain.KindJournal || got.Document.Description != "Accrual" {
		t.Fatalf("unexpected header: %+v", got.Document)
	}
	if got.Document.Lines.Len() != 3 {
		t.Fatalf("expected 3 lines, got %d", got.Document.Lines.Len())
	}
	line, _ := got.Document.Lines.Line(1)
	if line.Debit.Text() != "12.345" {
		t.Fatalf("expected raw entry text to survive, got %s", line.Debit.Text())
	}
	if !got.Document.Lines.Balance().IsBalanced {
		t.Fatalf("expected restored draft to stay balanced")
	}

	if ttl := mr.TTL("draft:draft-1"); ttl != time.Hour {
		t.Fatalf("expected ttl of one hour, got %v", ttl)
	}
}

func TestDraftStoreExpiry(t *testing.T) {
	client, mr := newTestRedisClient(t)

	store := NewDraftStore(client)
	ctx := context.Background()

	draft := &domain.Draft{ID: "short", Document: domain.TransactionDocument{Lines: domain.NewEntryLineSet()}}
	if err := store.Save(ctx, draft, time.Minute); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := store.Get(ctx, "short"); !errors.Is(err, domain.ErrDraftNotFound) {
		t.Fatalf("expected ErrDraftNotFound after expiry, got %v", err)
	}
}

func TestDraftStoreDelete(t *testing.T) {
	client, _ := newTestRedisClient(t)

	store := NewDraftStore(client)
	ctx := context.Background()

	draft := &domain.Draft{ID: "gone", Document: domain.TransactionDocument{Lines: domain.NewEntryLineSet()}}
	if err := store.Save(ctx, draft, time.Minute); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.Delete(ctx, "gone"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := store.Get(ctx, "gone"); !errors.Is(err, domain.ErrDraftNotFound) {
		t.Fatalf("expected ErrDraftNotFound, got %v", err)
	}
}

func TestDraftStoreSubmitLock(t *testing.T) {
	client, mr := newTestRedisClient(t)

	store := NewDraftStore(client)
	ctx := context.Background()

	ok, err := store.AcquireSubmit(ctx, "d1", 30*time.Second)
	if err != nil || !ok {
		t.Fatalf("expected first acquire to succeed, got ok=%v err=%v", ok, err)
	}

	ok, err = store.AcquireSubmit(ctx, "d1", 30*time.Second)
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	if ok {
		t.Fatalf("expected second acquire to fail while in flight")
	}

	if err := store.ReleaseSubmit(ctx, "d1"); err != nil {
		t.Fatalf("release failed: %v", err)
	}

	ok, err = store.AcquireSubmit(ctx, "d1", 30*time.Second)
	if err != nil || !ok {
		t.Fatalf("expected acquire after release to succeed, got ok=%v err=%v", ok, err)
	}

	mr.FastForward(time.Minute)
	ok, err = store.AcquireSubmit(ctx, "d1", 30*time.Second)
	if err != nil || !ok {
		t.Fatalf("expected stale lock to expire, got ok=%v err=%v", ok, err)
	}
}

func TestDraftStoreSubmitInFlight(t *testing.T) {
	client, mr := newTestRedisClient(t)

	store := NewDraftStore(client)
	ctx := context.Background()

	inFlight, err := store.SubmitInFlight(ctx, "d1")
	if err != nil || inFlight {
		t.Fatalf("expected no submission in flight, got %v err=%v", inFlight, err)
	}

	if _, err := store.AcquireSubmit(ctx, "d1", 30*time.Second); err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	inFlight, err = store.SubmitInFlight(ctx, "d1")
	if err != nil || !inFlight {
		t.Fatalf("expected submission in flight, got %v err=%v", inFlight, err)
	}

	mr.FastForward(time.Minute)
	inFlight, err = store.SubmitInFlight(ctx, "d1")
	if err != nil || inFlight {
		t.Fatalf("expected expired flag to clear, got %v err=%v", inFlight, err)
	}

	mr.Close()
	if _, err := store.SubmitInFlight(ctx, "d1"); err == nil {
		t.Fatalf("expected error when redis is down")
	}
}
