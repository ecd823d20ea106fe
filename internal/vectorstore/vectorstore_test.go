package vectorstore

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"ragpipe/internal/domain"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	x, err := New(4)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	err = x.Add(
		[][]float64{
			{1, 0, 0, 0},
			{0, 1, 0, 0},
			{0, 0, 1, 0},
		},
		[]string{"doc zero", "doc one", "doc two"},
		[]domain.Metadata{{"index": 0}, {"index": 1}, {"index": 2}},
	)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	return x
}

func TestIndex_SearchOrdering(t *testing.T) {
	x := newTestIndex(t)

	results, err := x.Search([]float64{1, 0.1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].ID != 0 {
		t.Errorf("nearest id = %d, want 0", results[0].ID)
	}
	if results[0].Distance > results[1].Distance {
		t.Errorf("distances not ascending: %v then %v", results[0].Distance, results[1].Distance)
	}
	for _, r := range results {
		want := 1 / (1 + r.Distance)
		if math.Abs(r.Score-want) > 1e-12 {
			t.Errorf("id %d: score %v, want %v", r.ID, r.Score, want)
		}
	}
	if results[0].Document != "doc zero" {
		t.Errorf("nearest document = %q", results[0].Document)
	}
}

func TestIndex_KExceedsCount(t *testing.T) {
	x := newTestIndex(t)
	results, err := x.Search([]float64{0, 0, 0, 1}, 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want all 3", len(results))
	}
}

func TestIndex_EmptySearch(t *testing.T) {
	x, err := New(4)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	results, err := x.Search([]float64{1, 0, 0, 0}, 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty result, got %d", len(results))
	}
}

func TestIndex_DimensionMismatch(t *testing.T) {
	x := newTestIndex(t)
	err := x.Add([][]float64{{1, 2}}, []string{"short"}, nil)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
	// A failed Add must not corrupt existing state.
	if x.Size() != 3 {
		t.Errorf("size = %d after failed Add, want 3", x.Size())
	}

	if _, err := x.Search([]float64{1, 2}, 1); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch for query, got %v", err)
	}
}

func TestIndex_ParallelArraysInvariant(t *testing.T) {
	x, err := New(2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	check := func() {
		t.Helper()
		if len(x.documents) != len(x.metadata) || len(x.documents) != x.Size() {
			t.Fatalf("invariant broken: %d documents, %d metadata, size %d",
				len(x.documents), len(x.metadata), x.Size())
		}
	}
	check()
	// Metadata defaults to an empty record when omitted.
	if err := x.Add([][]float64{{1, 1}, {2, 2}}, []string{"a", "b"}, nil); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	check()
	if x.metadata[0] == nil || len(x.metadata[0]) != 0 {
		t.Errorf("missing metadata did not default to empty record: %v", x.metadata[0])
	}
	if err := x.Add([][]float64{{3, 3}}, []string{"c"}, []domain.Metadata{{"k": "v"}}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	check()
	x.Clear()
	check()
	if x.Size() != 0 {
		t.Errorf("size = %d after Clear, want 0", x.Size())
	}
	if err := x.Add([][]float64{{9, 9}}, []string{"d"}, nil); err != nil {
		t.Fatalf("Add after Clear failed: %v", err)
	}
	results, err := x.Search([]float64{9, 9}, 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if results[0].ID != 0 {
		t.Errorf("id assignment did not restart at zero: got %d", results[0].ID)
	}
}

func TestSnapshot_RoundTrip(t *testing.T) {
	x := newTestIndex(t)
	dir := t.TempDir()

	if err := x.Save(dir); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Size() != x.Size() || loaded.Dimension() != x.Dimension() {
		t.Fatalf("loaded index size=%d dim=%d, want size=%d dim=%d",
			loaded.Size(), loaded.Dimension(), x.Size(), x.Dimension())
	}

	query := []float64{0.2, 0.9, 0.1, 0}
	before, err := x.Search(query, 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	after, err := loaded.Search(query, 3)
	if err != nil {
		t.Fatalf("Search on loaded index failed: %v", err)
	}
	if len(before) != len(after) {
		t.Fatalf("result counts differ: %d vs %d", len(before), len(after))
	}
	for i := range before {
		if before[i].ID != after[i].ID || before[i].Distance != after[i].Distance ||
			before[i].Document != after[i].Document {
			t.Errorf("result %d differs after round trip: %+v vs %+v", i, before[i], after[i])
		}
	}
}

func TestSnapshotExists(t *testing.T) {
	dir := t.TempDir()
	if SnapshotExists(dir) {
		t.Error("empty directory reported as a snapshot")
	}
	x := newTestIndex(t)
	if err := x.Save(dir); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !SnapshotExists(dir) {
		t.Error("saved snapshot not detected")
	}
	if err := os.Remove(filepath.Join(dir, "documents.json")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if SnapshotExists(dir) {
		t.Error("snapshot with a missing side table reported as complete")
	}
}

func TestSnapshot_MissingArtifact(t *testing.T) {
	x := newTestIndex(t)
	dir := t.TempDir()
	if err := x.Save(dir); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := os.Remove(filepath.Join(dir, "index.bin")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("expected error when binary index is missing")
	}
}

func TestSnapshot_DimensionDisagreement(t *testing.T) {
	x := newTestIndex(t)
	dir := t.TempDir()
	if err := x.Save(dir); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	// Rewrite the side table with a different dimension.
	side := filepath.Join(dir, "documents.json")
	if err := os.WriteFile(side, []byte(`{"documents":["doc zero","doc one","doc two"],"metadata":[{},{},{}],"dimension":8}`), 0o644); err != nil {
		t.Fatalf("write side table: %v", err)
	}
	_, err := Load(dir)
	if !errors.Is(err, ErrCorruptSnapshot) {
		t.Fatalf("expected ErrCorruptSnapshot, got %v", err)
	}
}

func TestSnapshot_TruncatedBinary(t *testing.T) {
	x := newTestIndex(t)
	dir := t.TempDir()
	if err := x.Save(dir); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	bin := filepath.Join(dir, "index.bin")
	data, err := os.ReadFile(bin)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := os.WriteFile(bin, data[:len(data)-5], 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err = Load(dir)
	if !errors.Is(err, ErrCorruptSnapshot) {
		t.Fatalf("expected ErrCorruptSnapshot, got %v", err)
	}
}
