package store

import (
	"context"
	"testing"
)

func TestPut_FirstWriteIsRevisionOne(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rev, err := s.Put(ctx, "cart", []byte(`[]`))
	if err != nil {
		t.Fatalf("Put() failed: %v", err)
	}
	if rev != 1 {
		t.Errorf("revision = %d, want 1", rev)
	}
}

func TestPut_OverwriteIncrementsRevision(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for i, want := range []int64{1, 2, 3} {
		rev, err := s.Put(ctx, "cart", []byte{byte(i)})
		if err != nil {
			t.Fatalf("Put() %d failed: %v", i, err)
		}
		if rev != want {
			t.Errorf("Put() %d revision = %d, want %d", i, rev, want)
		}
	}

	value, rev, err := s.Get(ctx, "cart")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if rev != 3 {
		t.Errorf("Get() revision = %d, want 3", rev)
	}
	if len(value) != 1 || value[0] != 2 {
		t.Errorf("Get() value = %v, want [2]", value)
	}
}

func TestPut_KeysAreIndependent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if _, err := s.Put(ctx, "a", []byte("1")); err != nil {
		t.Fatalf("Put(a) failed: %v", err)
	}
	rev, err := s.Put(ctx, "b", []byte("2"))
	if err != nil {
		t.Fatalf("Put(b) failed: %v", err)
	}
	if rev != 1 {
		t.Errorf("revision for new key b = %d, want 1", rev)
	}
}

func TestPut_EmptyKeyRejected(t *testing.T) {
	s := createTestStore(t)

	if _, err := s.Put(context.Background(), "", []byte("x")); err == nil {
		t.Error("expected error for empty key")
	}
}

func TestPut_NilValueStoredAsEmpty(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if _, err := s.Put(ctx, "k", nil); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}
	value, _, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if value == nil || len(value) != 0 {
		t.Errorf("value = %#v, want empty non-nil slice", value)
	}
}

func TestPut_CanceledContext(t *testing.T) {
	s := createTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Put(ctx, "k", []byte("x")); err == nil {
		t.Error("expected error for canceled context")
	}
}
