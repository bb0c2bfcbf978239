package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediasort/mediasort/pkg/mediasort/archive"
	"github.com/mediasort/mediasort/pkg/mediasort/ingest"
	"github.com/mediasort/mediasort/pkg/mediasort/manifest"
	"github.com/mediasort/mediasort/pkg/mediasort/metadata"
	"github.com/mediasort/mediasort/pkg/mediasort/progress"
)

func testWatcher(t *testing.T) (*Watcher, *manifest.Store) {
	t.Helper()
	dir := t.TempDir()
	store := manifest.NewStore(filepath.Join(dir, "manifest.json"))

	w := &Watcher{
		Dir: filepath.Join(dir, "drop"),
		Pipeline: &ingest.Pipeline{
			Store:     store,
			Allocator: &archive.Allocator{Root: filepath.Join(dir, "archive")},
			Extractor: &metadata.Extractor{FFProbePath: filepath.Join(dir, "no-ffprobe")},
			Tracker:   progress.NewTracker(),
			Log:       log.New(os.Stderr),
		},
		Log:           log.New(os.Stderr),
		StabilityWait: 50 * time.Millisecond,
	}
	return w, store
}

func waitForEntries(t *testing.T, store *manifest.Store, want int) []manifest.Entry {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		entries, err := store.Load()
		require.NoError(t, err)
		if len(entries) >= want {
			return entries
		}
		time.Sleep(25 * time.Millisecond)
	}
	t.Fatalf("manifest never reached %d entries", want)
	return nil
}

func TestWatcher_IngestsNewFile(t *testing.T) {
	w, store := testWatcher(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher a moment to arm before dropping the file.
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(w.Dir, "clip.mp4"), []byte("payload"), 0o644))

	entries := waitForEntries(t, store, 1)
	assert.Equal(t, "clip.mp4", entries[0].FileName)
	assert.Equal(t, manifest.OriginWatch, entries[0].Origin)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestWatcher_ReportsProgressForWatchedFiles(t *testing.T) {
	w, store := testWatcher(t)

	updates, unsubscribe := w.Pipeline.Tracker.Subscribe()
	defer unsubscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(w.Dir, "clip.mp4"), []byte("payload"), 0o644))
	waitForEntries(t, store, 1)

	// Somewhere in the stream there must be an active snapshot naming
	// the file, with the run start stamped.
	sawFile := false
	deadline := time.After(5 * time.Second)
	for !sawFile {
		select {
		case s := <-updates:
			if s.Active && s.CurrentFile == "clip.mp4" {
				assert.False(t, s.StartedAt.IsZero())
				sawFile = true
			}
		case <-deadline:
			t.Fatal("no progress snapshot named the watched file")
		}
	}

	cancel()
	<-done
}

func TestWatcher_StartupPassUsesScanOrigin(t *testing.T) {
	w, store := testWatcher(t)

	require.NoError(t, os.MkdirAll(w.Dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(w.Dir, "old.mp4"), []byte("x"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	entries := waitForEntries(t, store, 1)
	assert.Equal(t, manifest.OriginScan, entries[0].Origin)

	cancel()
	<-done
}

func TestWatcher_IgnoresDotfilesAndUnsupported(t *testing.T) {
	w, store := testWatcher(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(w.Dir, ".hidden.mp4"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(w.Dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(w.Dir, "real.mp4"), []byte("x"), 0o644))

	entries := waitForEntries(t, store, 1)
	assert.Len(t, entries, 1)
	assert.Equal(t, "real.mp4", entries[0].FileName)

	cancel()
	<-done
}

func TestIgnored(t *testing.T) {
	t.Parallel()

	assert.True(t, ignored("/drop/.hidden.mp4"))
	assert.True(t, ignored("/drop/.staging/clip.mp4"))
	assert.True(t, ignored("/drop/clip.mp4~"))
	assert.False(t, ignored("/drop/clip.mp4"))
	assert.False(t, ignored("/drop/sub/clip.mp4"))
}
