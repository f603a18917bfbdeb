package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/roach88/shelf/internal/catalog"
	"github.com/roach88/shelf/internal/ledger"
)

func TestSlot_ReadWrite(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	slot := s.Slot(ledger.DefaultKey)

	if slot.Key() != ledger.DefaultKey {
		t.Errorf("Key() = %q, want %q", slot.Key(), ledger.DefaultKey)
	}

	if _, err := slot.Read(ctx); !errors.Is(err, ledger.ErrSlotEmpty) {
		t.Errorf("Read() on fresh slot error = %v, want ErrSlotEmpty", err)
	}

	if err := slot.Write(ctx, []byte(`[]`)); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	got, err := slot.Read(ctx)
	if err != nil {
		t.Fatalf("Read() failed: %v", err)
	}
	if string(got) != `[]` {
		t.Errorf("Read() = %q, want []", got)
	}
}

func TestSlot_LedgerSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.db")
	ctx := context.Background()

	s1, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	l1, err := ledger.Open(ctx, s1.Slot(ledger.DefaultKey))
	if err != nil {
		t.Fatalf("ledger.Open() failed: %v", err)
	}
	p := catalog.Product{ID: 42, Title: "Mug", Price: decimal.RequireFromString("7.25"), Thumbnail: "mug.png"}
	if err := l1.Add(ctx, p); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	if err := l1.Add(ctx, p); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	s1.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s2.Close()
	l2, err := ledger.Open(ctx, s2.Slot(ledger.DefaultKey))
	if err != nil {
		t.Fatalf("ledger.Open() after reopen failed: %v", err)
	}

	line, ok := l2.Line(42)
	if !ok {
		t.Fatal("line 42 missing after reopen")
	}
	if line.Qty != 2 {
		t.Errorf("qty = %d, want 2", line.Qty)
	}
	if got := catalog.FormatPrice(l2.TotalPrice()); got != "14.50" {
		t.Errorf("total = %s, want 14.50", got)
	}
}

func TestSlot_WriteAfterCloseFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "closed.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	slot := s.Slot("cart")
	s.Close()

	if err := slot.Write(context.Background(), []byte(`[]`)); err == nil {
		t.Error("expected error writing to closed store")
	}
}
