// Package ingest runs the pipeline that turns dropped files into
// archived, cataloged media: classify, extract metadata, allocate a
// date shard, copy, record. Sources are never deleted.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/mediasort/mediasort/pkg/mediasort/archive"
	"github.com/mediasort/mediasort/pkg/mediasort/classify"
	"github.com/mediasort/mediasort/pkg/mediasort/manifest"
	"github.com/mediasort/mediasort/pkg/mediasort/metadata"
	"github.com/mediasort/mediasort/pkg/mediasort/progress"
)

// Pipeline wires the ingestion stages together.
type Pipeline struct {
	Store     *manifest.Store
	Allocator *archive.Allocator
	Extractor *metadata.Extractor
	Tracker   *progress.Tracker
	Log       *log.Logger
}

// Result summarizes one ingestion run.
type Result struct {
	Processed int
	Skipped   int
	Failed    int
}

// ProcessFile ingests a single file. Unsupported types return
// classify.ErrUnsupported. Metadata extraction failures are logged and
// downgraded; copy and manifest failures abort the file.
func (p *Pipeline) ProcessFile(ctx context.Context, path string, origin manifest.Origin, dropPath string) (*manifest.Entry, error) {
	mediaType, err := classify.Detect(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	// A file dropped on its own is its own drop path.
	if dropPath == "" {
		dropPath = path
	}

	media := p.extract(ctx, path, mediaType)

	dst, err := p.Allocator.DestPath(mediaType, info.ModTime(), filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if err := archive.Copy(path, dst); err != nil {
		return nil, err
	}

	entry := manifest.Entry{
		ID:               uuid.NewString(),
		FileName:         filepath.Base(path),
		OriginalPath:     path,
		OriginalDropPath: dropPath,
		SortedPath:       dst,
		FileSize:         info.Size(),
		ProcessedDate:    time.Now().UTC(),
		FileDate:         info.ModTime().UTC(),
		MediaType:        mediaType,
		Origin:           origin,
		Metadata:         media,
	}

	if err := p.Store.Append(entry); err != nil {
		return nil, err
	}

	p.Log.Info("archived file",
		"file", entry.FileName,
		"type", mediaType,
		"dest", dst,
		"size", entry.FileSize)
	return &entry, nil
}

// extract runs the type-appropriate metadata extractor. Failures are
// never fatal: the file is archived without metadata.
func (p *Pipeline) extract(ctx context.Context, path string, mediaType classify.MediaType) *metadata.Media {
	switch mediaType {
	case classify.Videos:
		m, err := p.Extractor.ExtractVideo(ctx, path)
		if err != nil {
			p.Log.Warn("metadata extraction failed", "file", path, "err", err)
			return nil
		}
		return &metadata.Media{VideoAudio: m}

	case classify.Audio:
		m, err := p.Extractor.ExtractAudio(ctx, path)
		if err != nil {
			p.Log.Warn("metadata extraction failed", "file", path, "err", err)
			return nil
		}
		return &metadata.Media{VideoAudio: m}

	case classify.Images:
		m, err := p.Extractor.ExtractImage(path)
		if err != nil {
			p.Log.Warn("metadata extraction failed", "file", path, "err", err)
			return nil
		}
		return &metadata.Media{Image: m}
	}
	return nil
}

// ProcessItems ingests a mixed list of files and directories, driving
// the progress tracker across the whole batch. Individual failures are
// counted and skipped; the batch keeps going.
func (p *Pipeline) ProcessItems(ctx context.Context, paths []string, origin manifest.Origin) (Result, error) {
	p.Tracker.Update(progress.Patch{
		Active: progress.Bool(true),
		Stage:  progress.String("counting"),
	})
	defer p.Tracker.Update(progress.Patch{
		Active: progress.Bool(false),
		Stage:  progress.String("done"),
	})

	var res Result
	var files []item
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return Result{}, fmt.Errorf("stat %s: %w", path, err)
		}
		switch {
		case info.IsDir():
			found, err := collectFolder(path)
			if err != nil {
				return Result{}, err
			}
			files = append(files, found...)
		case classify.Eligible(path):
			files = append(files, item{path: path})
		default:
			res.Skipped++
		}
	}

	p.Tracker.Update(progress.Patch{
		Stage:      progress.String("processing"),
		FilesTotal: progress.Int(len(files)),
	})

	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		p.Tracker.Update(progress.Patch{
			CurrentFile: progress.String(filepath.Base(f.path)),
			FilesDone:   progress.Int(i),
		})

		_, err := p.ProcessFile(ctx, f.path, origin, f.dropPath)
		switch {
		case err == nil:
			res.Processed++
		case errors.Is(err, classify.ErrUnsupported):
			res.Skipped++
		default:
			res.Failed++
			p.Log.Error("failed to ingest file", "file", f.path, "err", err)
			p.Tracker.Update(progress.Patch{Errors: progress.Int(res.Failed)})
		}
	}

	p.Tracker.Update(progress.Patch{FilesDone: progress.Int(len(files))})
	return res, nil
}

// item is one file queued for ingestion, remembering the top-level
// folder it arrived in, if any.
type item struct {
	path     string
	dropPath string
}

// collectFolder gathers every eligible file under root. Traversal is
// an iterative worklist so arbitrarily deep trees cannot exhaust the
// stack, and ordering stays deterministic.
func collectFolder(root string) ([]item, error) {
	var files []item
	dirs := []string{root}

	for len(dirs) > 0 {
		dir := dirs[0]
		dirs = dirs[1:]

		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("read folder %s: %w", dir, err)
		}
		for _, e := range entries {
			path := filepath.Join(dir, e.Name())
			if e.IsDir() {
				dirs = append(dirs, path)
				continue
			}
			if classify.Eligible(path) {
				files = append(files, item{path: path, dropPath: root})
			}
		}
	}
	return files, nil
}

// CountMediaFiles reports how many eligible files live under root.
func CountMediaFiles(root string) (int, error) {
	files, err := collectFolder(root)
	if err != nil {
		return 0, err
	}
	return len(files), nil
}
