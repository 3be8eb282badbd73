package archive

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), "envelopes.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestPutAndGet(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()

	rec := Record{
		ID:          "doc-1",
		CreatedAt:   time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
		Digest:      "abc123",
		ProviderRef: "env-123",
		Payload:     `{"version":"1.0"}`,
	}
	if err := a.Put(ctx, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := a.Get(ctx, "doc-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("envelope not found")
	}
	if got.ID != rec.ID || got.Digest != rec.Digest ||
		got.ProviderRef != rec.ProviderRef || got.Payload != rec.Payload {
		t.Errorf("got %+v, want %+v", got, rec)
	}
	if !got.CreatedAt.Equal(rec.CreatedAt) {
		t.Errorf("createdAt = %v, want %v", got.CreatedAt, rec.CreatedAt)
	}
}

func TestGetMissing(t *testing.T) {
	a := openTestArchive(t)
	_, ok, err := a.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("found a record that was never stored")
	}
}

func TestPutRejectsDuplicates(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()

	rec := Record{ID: "doc-1", Digest: "d", ProviderRef: "r", Payload: "{}"}
	if err := a.Put(ctx, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := a.Put(ctx, rec); !errors.Is(err, ErrDuplicateEnvelope) {
		t.Errorf("err = %v, want ErrDuplicateEnvelope", err)
	}
}

func TestPutFillsCreatedAt(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()

	if err := a.Put(ctx, Record{ID: "doc-1", Digest: "d", ProviderRef: "r", Payload: "{}"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := a.Get(ctx, "doc-1")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got.CreatedAt.IsZero() {
		t.Error("createdAt not defaulted")
	}
}

func TestListNewestFirst(t *testing.T) {
	a := openTestArchive(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"doc-a", "doc-b", "doc-c"} {
		rec := Record{
			ID:        id,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			Digest:    "d", ProviderRef: "r", Payload: "{}",
		}
		if err := a.Put(ctx, rec); err != nil {
			t.Fatalf("Put %s: %v", id, err)
		}
	}

	records, err := a.List(ctx, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len = %d, want 2", len(records))
	}
	if records[0].ID != "doc-c" || records[1].ID != "doc-b" {
		t.Errorf("order = %s, %s; want doc-c, doc-b", records[0].ID, records[1].ID)
	}
}
