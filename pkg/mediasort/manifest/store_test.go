package manifest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mediasort/mediasort/pkg/mediasort/classify"
)

func testEntry(t *testing.T, sortedPath string) Entry {
	t.Helper()
	now := time.Now().UTC()
	return Entry{
		ID:            uuid.NewString(),
		FileName:      filepath.Base(sortedPath),
		OriginalPath:  filepath.Join("/drop", filepath.Base(sortedPath)),
		SortedPath:    sortedPath,
		FileSize:      1024,
		ProcessedDate: now,
		FileDate:      now,
		MediaType:     classify.Videos,
		Origin:        OriginDrop,
	}
}

func TestStore_LoadMissing(t *testing.T) {
	t.Parallel()

	s := NewStore(filepath.Join(t.TempDir(), "manifest.json"))
	entries, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Load on missing file = %d entries, want 0", len(entries))
	}
}

func TestStore_LoadCorrupt(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "manifest.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewStore(path).Load(); err == nil {
		t.Fatal("Load of corrupt manifest succeeded, want error")
	}
}

func TestStore_AppendAndLoad(t *testing.T) {
	t.Parallel()

	s := NewStore(filepath.Join(t.TempDir(), "manifest.json"))

	first := testEntry(t, "/archive/videos/2024-03-15/a.mp4")
	second := testEntry(t, "/archive/videos/2024-03-15/b.mp4")

	if err := s.Append(first); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := s.Append(second); err != nil {
		t.Fatalf("Append: %v", err)
	}

	entries, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Load = %d entries, want 2", len(entries))
	}
	if entries[0].ID != first.ID || entries[1].ID != second.ID {
		t.Error("entries loaded out of append order")
	}
}

func TestStore_Clear(t *testing.T) {
	t.Parallel()

	s := NewStore(filepath.Join(t.TempDir(), "manifest.json"))
	if err := s.Append(testEntry(t, "/archive/videos/2024-03-15/a.mp4")); err != nil {
		t.Fatal(err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	entries, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("Load after Clear = %d entries, want 0", len(entries))
	}
}

func TestStore_Reconcile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	archiveRoot := filepath.Join(dir, "archive")
	shard := filepath.Join(archiveRoot, "videos", "2024-03-15")
	if err := os.MkdirAll(shard, 0o755); err != nil {
		t.Fatal(err)
	}

	kept := filepath.Join(shard, "kept.mp4")
	gone := filepath.Join(shard, "gone.mp4")
	if err := os.WriteFile(kept, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(filepath.Join(dir, "manifest.json"))
	if err := s.Append(testEntry(t, kept), testEntry(t, gone)); err != nil {
		t.Fatal(err)
	}

	now := time.Date(2024, time.April, 1, 12, 0, 0, 0, time.UTC)
	result, err := s.Reconcile(archiveRoot, now)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if result.NewlyRemoved != 1 || !result.Changed {
		t.Errorf("Reconcile result = %+v, want 1 newly removed", result)
	}

	entries, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if entries[0].Removed {
		t.Error("entry with surviving file marked removed")
	}
	if !entries[1].Removed {
		t.Fatal("entry with missing file not marked removed")
	}
	if entries[1].RemovedDate == nil || !entries[1].RemovedDate.Equal(now) {
		t.Errorf("RemovedDate = %v, want %v", entries[1].RemovedDate, now)
	}
}

func TestStore_ReconcileIdempotent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	archiveRoot := filepath.Join(dir, "archive")

	s := NewStore(filepath.Join(dir, "manifest.json"))
	if err := s.Append(testEntry(t, filepath.Join(archiveRoot, "videos", "2024-03-15", "gone.mp4"))); err != nil {
		t.Fatal(err)
	}

	first := time.Date(2024, time.April, 1, 12, 0, 0, 0, time.UTC)
	if _, err := s.Reconcile(archiveRoot, first); err != nil {
		t.Fatal(err)
	}

	// A second pass must not touch the manifest or the removal stamp.
	result, err := s.Reconcile(archiveRoot, first.Add(24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if result.NewlyRemoved != 0 || result.Changed {
		t.Errorf("second Reconcile = %+v, want no changes", result)
	}

	entries, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !entries[0].RemovedDate.Equal(first) {
		t.Errorf("RemovedDate = %v, want original stamp %v", entries[0].RemovedDate, first)
	}
}

func TestStore_ReconcileReappearedFileStaysRemoved(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	archiveRoot := filepath.Join(dir, "archive")
	shard := filepath.Join(archiveRoot, "videos", "2024-03-15")
	path := filepath.Join(shard, "clip.mp4")

	s := NewStore(filepath.Join(dir, "manifest.json"))
	if err := s.Append(testEntry(t, path)); err != nil {
		t.Fatal(err)
	}

	now := time.Now().UTC()
	if _, err := s.Reconcile(archiveRoot, now); err != nil {
		t.Fatal(err)
	}

	// File comes back after the entry was marked removed.
	if err := os.MkdirAll(shard, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Reconcile(archiveRoot, now.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	entries, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !entries[0].Removed {
		t.Error("removed flag cleared by reappearing file")
	}
}
