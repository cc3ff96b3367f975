package memory

import (
	"context"
	"errors"
	"testing"

	"lightcurve-lab/internal/domain"
	"lightcurve-lab/internal/storage"
)

func ptr[T any](v T) *T {
	return &v
}

func TestStarStore_InsertAndGet(t *testing.T) {
	store := NewStarStore()
	ctx := context.Background()

	rec := &storage.StarRecord{
		Origin:     "ogle",
		Identifier: "LMC_SC1_1",
		Name:       "OGLE LMC_SC1 1",
		RA:         ptr(83.5),
		Dec:        ptr(-69.1),
		VMag:       ptr(17.2),
		Class:      "cepheid",
		LCPath:     "lc/LMC_SC1_1.dat",
	}
	if err := store.Insert(ctx, rec); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.Get(ctx, "ogle", "LMC_SC1_1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Class != "cepheid" || *got.VMag != 17.2 {
		t.Errorf("record mismatch: %+v", got)
	}
	if got.CreatedAt == 0 {
		t.Errorf("CreatedAt not set")
	}

	star := got.ToStar()
	if star.Name() != "OGLE LMC_SC1 1" || star.Coo == nil || star.More[storage.KeyVMag] != 17.2 {
		t.Errorf("ToStar mismatch: %+v", star)
	}
}

func TestStarStore_DuplicateKey(t *testing.T) {
	store := NewStarStore()
	ctx := context.Background()

	rec := &storage.StarRecord{Origin: "ogle", Identifier: "a"}
	if err := store.Insert(ctx, rec); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := store.Insert(ctx, rec); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}

	// Bulk insert is atomic
	err := store.InsertBulk(ctx, []*storage.StarRecord{
		{Origin: "ogle", Identifier: "b"},
		{Origin: "ogle", Identifier: "b"},
	})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
	if _, err := store.Get(ctx, "ogle", "b"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("failed batch must not insert, got %v", err)
	}
}

func TestStarStore_NotFound(t *testing.T) {
	store := NewStarStore()

	_, err := store.Get(context.Background(), "ogle", "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("storage.ErrNotFound must match domain.ErrNotFound")
	}
}

func TestStarStore_InvalidInput(t *testing.T) {
	store := NewStarStore()
	ctx := context.Background()

	tests := []struct {
		name string
		rec  *storage.StarRecord
	}{
		{"nil", nil},
		{"missing identifier", &storage.StarRecord{Origin: "ogle"}},
		{"ra without dec", &storage.StarRecord{Origin: "ogle", Identifier: "a", RA: ptr(10.0)}},
		{"dec out of range", &storage.StarRecord{Origin: "ogle", Identifier: "a", RA: ptr(10.0), Dec: ptr(95.0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.Insert(ctx, tt.rec); !errors.Is(err, storage.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestStarStore_Query(t *testing.T) {
	store := NewStarStore()
	ctx := context.Background()

	records := []*storage.StarRecord{
		{Origin: "macho", Identifier: "1.3449.27", Class: "lpv", RA: ptr(80.0), Dec: ptr(-70.0)},
		{Origin: "ogle", Identifier: "b", Class: "cepheid", RA: ptr(80.0), Dec: ptr(-70.0005)},
		{Origin: "ogle", Identifier: "a", Class: "cepheid", RA: ptr(120.0), Dec: ptr(10.0)},
		{Origin: "ogle", Identifier: "c", Class: "lpv"},
	}
	if err := store.InsertBulk(ctx, records); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	tests := []struct {
		name  string
		query storage.StarQuery
		want  []string
	}{
		{"all sorted", storage.StarQuery{}, []string{"1.3449.27", "a", "b", "c"}},
		{"origin", storage.StarQuery{Origin: "ogle"}, []string{"a", "b", "c"}},
		{"class", storage.StarQuery{Class: "lpv"}, []string{"1.3449.27", "c"}},
		{"limit", storage.StarQuery{Origin: "ogle", Limit: 2}, []string{"a", "b"}},
		// 0.0005 deg = 1.8 arcsec
		{"cone", storage.StarQuery{RA: ptr(80.0), Dec: ptr(-70.0), Delta: 2}, []string{"1.3449.27", "b"}},
		{"narrow cone", storage.StarQuery{RA: ptr(80.0), Dec: ptr(-70.0), Delta: 1}, []string{"1.3449.27"}},
		{"no match", storage.StarQuery{Origin: "asas"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Query(ctx, tt.query)
			if err != nil {
				t.Fatalf("Query failed: %v", err)
			}
			if got == nil {
				t.Fatalf("Query must return an empty slice, not nil")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Query() returned %d records, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].Identifier != id {
					t.Errorf("record %d = %s, want %s", i, got[i].Identifier, id)
				}
			}
		})
	}

	if _, err := store.Query(ctx, storage.StarQuery{RA: ptr(80.0), Dec: ptr(-70.0)}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("cone without delta: expected ErrInvalidInput, got %v", err)
	}
}
