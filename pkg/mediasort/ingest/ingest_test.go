package ingest

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediasort/mediasort/pkg/mediasort/archive"
	"github.com/mediasort/mediasort/pkg/mediasort/classify"
	"github.com/mediasort/mediasort/pkg/mediasort/manifest"
	"github.com/mediasort/mediasort/pkg/mediasort/metadata"
	"github.com/mediasort/mediasort/pkg/mediasort/progress"
)

func testPipeline(t *testing.T) (*Pipeline, string) {
	t.Helper()
	dir := t.TempDir()
	archiveRoot := filepath.Join(dir, "archive")

	p := &Pipeline{
		Store:     manifest.NewStore(filepath.Join(dir, "manifest.json")),
		Allocator: &archive.Allocator{Root: archiveRoot},
		Extractor: &metadata.Extractor{FFProbePath: filepath.Join(dir, "no-ffprobe")},
		Tracker:   progress.NewTracker(),
		Log:       log.New(os.Stderr),
	}
	return p, archiveRoot
}

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte{0xAB}, size), 0o644))
}

func TestProcessFile_ArchivesAndRecords(t *testing.T) {
	p, archiveRoot := testPipeline(t)
	dir := t.TempDir()

	src := filepath.Join(dir, "clip.mp4")
	writeFile(t, src, 10*1024*1024)
	modTime := time.Date(2024, time.March, 15, 9, 0, 0, 0, time.Local)
	require.NoError(t, os.Chtimes(src, modTime, modTime))

	entry, err := p.ProcessFile(context.Background(), src, manifest.OriginDrop, "")
	require.NoError(t, err)

	wantDst := filepath.Join(archiveRoot, "videos", "2024-03-15", "clip.mp4")
	assert.Equal(t, wantDst, entry.SortedPath)
	assert.Equal(t, classify.Videos, entry.MediaType)
	assert.Equal(t, int64(10*1024*1024), entry.FileSize)
	assert.Equal(t, manifest.OriginDrop, entry.Origin)

	// A direct drop records the file's own path as its drop path.
	assert.Equal(t, src, entry.OriginalDropPath)

	// ffprobe is unavailable in tests, so metadata downgrades to nil
	// and the file is archived anyway.
	assert.Nil(t, entry.Metadata)

	info, err := os.Stat(wantDst)
	require.NoError(t, err)
	assert.Equal(t, int64(10*1024*1024), info.Size())

	// The source must survive.
	_, err = os.Stat(src)
	assert.NoError(t, err)

	entries, err := p.Store.Load()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry.ID, entries[0].ID)
}

func TestProcessFile_Unsupported(t *testing.T) {
	p, _ := testPipeline(t)
	dir := t.TempDir()

	src := filepath.Join(dir, "notes.txt")
	writeFile(t, src, 16)

	_, err := p.ProcessFile(context.Background(), src, manifest.OriginDrop, "")
	assert.ErrorIs(t, err, classify.ErrUnsupported)

	entries, err := p.Store.Load()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestProcessItems_FolderRecursion(t *testing.T) {
	p, _ := testPipeline(t)
	drop := t.TempDir()

	writeFile(t, filepath.Join(drop, "a.mp4"), 64)
	writeFile(t, filepath.Join(drop, "nested", "deeper", "b.jpg"), 64)
	writeFile(t, filepath.Join(drop, "nested", "c.mp3"), 64)
	writeFile(t, filepath.Join(drop, "skip.txt"), 64)

	res, err := p.ProcessItems(context.Background(), []string{drop}, manifest.OriginDrop)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Processed)
	assert.Zero(t, res.Failed)

	entries, err := p.Store.Load()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for _, e := range entries {
		assert.Equal(t, drop, e.OriginalDropPath, "drop path should be the top-level folder")
	}
}

func TestProcessItems_ContinuesPastFailures(t *testing.T) {
	p, _ := testPipeline(t)
	drop := t.TempDir()

	writeFile(t, filepath.Join(drop, "good.mp4"), 64)
	bad := filepath.Join(drop, "bad.mp4")
	writeFile(t, bad, 64)

	res, err := p.ProcessItems(context.Background(), []string{drop, bad}, manifest.OriginDrop)
	require.NoError(t, err)

	// bad.mp4 appears twice (once via the folder, once directly) and
	// both copies succeed; failure continuation is covered below via
	// a vanished file.
	assert.Equal(t, 3, res.Processed)

	vanishing := filepath.Join(t.TempDir(), "gone.mp4")
	writeFile(t, vanishing, 64)
	require.NoError(t, os.Remove(vanishing))

	_, err = p.ProcessFile(context.Background(), vanishing, manifest.OriginDrop, "")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, classify.ErrUnsupported))
}

func TestProcessItems_ProgressReachesCompletion(t *testing.T) {
	p, _ := testPipeline(t)
	drop := t.TempDir()
	writeFile(t, filepath.Join(drop, "a.mp4"), 64)
	writeFile(t, filepath.Join(drop, "b.mp4"), 64)

	_, err := p.ProcessItems(context.Background(), []string{drop}, manifest.OriginDrop)
	require.NoError(t, err)

	final := p.Tracker.State()
	assert.False(t, final.Active)
	assert.Equal(t, "done", final.Stage)
	assert.Equal(t, 2, final.FilesDone)
	assert.Equal(t, 2, final.FilesTotal)
	assert.InDelta(t, 100.0, final.Percent, 0.001)
}

func TestProcessItems_Cancellation(t *testing.T) {
	p, _ := testPipeline(t)
	drop := t.TempDir()
	writeFile(t, filepath.Join(drop, "a.mp4"), 64)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.ProcessItems(ctx, []string{drop}, manifest.OriginDrop)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCountMediaFiles(t *testing.T) {
	drop := t.TempDir()
	writeFile(t, filepath.Join(drop, "a.mp4"), 1)
	writeFile(t, filepath.Join(drop, "sub", "b.jpg"), 1)
	writeFile(t, filepath.Join(drop, "sub", "notes.txt"), 1)

	n, err := CountMediaFiles(drop)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
