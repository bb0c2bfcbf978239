// Package watcher monitors the drop folder and feeds new files into
// the ingestion pipeline once they stop growing.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/mediasort/mediasort/pkg/mediasort/classify"
	"github.com/mediasort/mediasort/pkg/mediasort/ingest"
	"github.com/mediasort/mediasort/pkg/mediasort/manifest"
	"github.com/mediasort/mediasort/pkg/mediasort/progress"
)

// defaultStabilityWait is how long a file must stay the same size
// before it is considered fully written.
const defaultStabilityWait = 2 * time.Second

// Watcher monitors one drop directory tree.
type Watcher struct {
	Dir           string
	Pipeline      *ingest.Pipeline
	Log           *log.Logger
	StabilityWait time.Duration

	mu      sync.Mutex
	pending map[string]struct{}
}

// Run watches the drop directory until the context is canceled. Files
// already present at startup are ingested first with a scan origin,
// followed by a manifest reconciliation, so the catalog reflects
// reality before live events flow.
func (w *Watcher) Run(ctx context.Context) error {
	if w.StabilityWait <= 0 {
		w.StabilityWait = defaultStabilityWait
	}
	w.pending = make(map[string]struct{})

	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return fmt.Errorf("create drop directory %s: %w", w.Dir, err)
	}
	for _, mediaType := range classify.AllTypes() {
		if err := os.MkdirAll(w.Pipeline.Allocator.TypeDir(mediaType), 0o755); err != nil {
			return fmt.Errorf("create archive directory: %w", err)
		}
	}

	if err := w.startupPass(ctx); err != nil {
		return err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer fw.Close()

	if err := addRecursive(fw, w.Dir); err != nil {
		return err
	}
	w.Log.Info("watching drop folder", "dir", w.Dir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, fw, event)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.Log.Error("watch error", "err", err)
		}
	}
}

// startupPass ingests files that landed while the watcher was down,
// then reconciles the manifest against the archive tree.
func (w *Watcher) startupPass(ctx context.Context) error {
	n, err := ingest.CountMediaFiles(w.Dir)
	if err != nil {
		return err
	}
	if n > 0 {
		w.Log.Info("ingesting files found at startup", "count", n)
		if _, err := w.Pipeline.ProcessItems(ctx, []string{w.Dir}, manifest.OriginScan); err != nil {
			return err
		}
	}

	result, err := w.Pipeline.Store.Reconcile(w.Pipeline.Allocator.Root, time.Now().UTC())
	if err != nil {
		return err
	}
	if result.NewlyRemoved > 0 {
		w.Log.Info("reconciled manifest", "removed", result.NewlyRemoved)
	}
	return nil
}

func (w *Watcher) handleEvent(ctx context.Context, fw *fsnotify.Watcher, event fsnotify.Event) {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
		return
	}
	if ignored(event.Name) {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return
	}

	if info.IsDir() {
		if err := addRecursive(fw, event.Name); err != nil {
			w.Log.Error("failed to watch new folder", "dir", event.Name, "err", err)
		}
		return
	}

	if !classify.Eligible(event.Name) {
		return
	}

	// Each file gets one settle goroutine, re-armed by later writes
	// through the size check rather than by spawning again.
	w.mu.Lock()
	if _, already := w.pending[event.Name]; already {
		w.mu.Unlock()
		return
	}
	w.pending[event.Name] = struct{}{}
	w.mu.Unlock()

	go w.settleAndIngest(ctx, event.Name)
}

// settleAndIngest waits for the file's size to hold steady for the
// stability window, then runs it through the pipeline.
func (w *Watcher) settleAndIngest(ctx context.Context, path string) {
	defer func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
	}()

	lastSize := int64(-1)
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(w.StabilityWait):
		}

		info, err := os.Stat(path)
		if err != nil {
			// Removed before it settled.
			return
		}
		if info.Size() == lastSize {
			break
		}
		lastSize = info.Size()
	}

	w.Pipeline.Tracker.Update(progress.Patch{
		Active:      progress.Bool(true),
		Stage:       progress.String("processing"),
		CurrentFile: progress.String(filepath.Base(path)),
	})

	if _, err := w.Pipeline.ProcessFile(ctx, path, manifest.OriginWatch, w.Dir); err != nil {
		w.Log.Error("failed to ingest watched file", "file", path, "err", err)
	}

	w.Pipeline.Tracker.Update(progress.Patch{
		Active: progress.Bool(false),
		Stage:  progress.String("done"),
	})
}

// ignored filters out dotfiles and editor temp files anywhere in the
// path.
func ignored(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return strings.HasSuffix(path, "~")
}

// addRecursive watches dir and every directory beneath it. fsnotify
// watches are not recursive on their own.
func addRecursive(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if ignored(path) && path != dir {
				return filepath.SkipDir
			}
			if err := fw.Add(path); err != nil {
				return fmt.Errorf("watch %s: %w", path, err)
			}
		}
		return nil
	})
}
