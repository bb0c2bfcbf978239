package manifest

import (
	"time"

	"github.com/mediasort/mediasort/pkg/mediasort/classify"
	"github.com/mediasort/mediasort/pkg/mediasort/metadata"
)

// Origin records how a file entered the archive.
type Origin string

const (
	// OriginDrop marks files ingested by an explicit command invocation.
	OriginDrop Origin = "drop"

	// OriginWatch marks files picked up live by the watcher.
	OriginWatch Origin = "watch"

	// OriginScan marks files found already present during a startup or
	// bulk scan. Their import time says little about when they were
	// actually created, which matters for history grouping.
	OriginScan Origin = "scan"
)

// Entry is one archived file's manifest record. Entries are append-only;
// removal of the archived copy is recorded as a soft delete, never by
// dropping the entry.
type Entry struct {
	ID               string             `json:"id"`
	FileName         string             `json:"fileName"`
	OriginalPath     string             `json:"originalPath"`
	OriginalDropPath string             `json:"originalDropPath,omitempty"`
	SortedPath       string             `json:"sortedPath"`
	FileSize         int64              `json:"fileSize"`
	ProcessedDate    time.Time          `json:"processedDate"`
	FileDate         time.Time          `json:"fileDate"`
	MediaType        classify.MediaType `json:"mediaType"`
	Origin           Origin             `json:"origin"`
	Metadata         *metadata.Media    `json:"metadata,omitempty"`

	// Removed is set once the archived copy is observed missing.
	// It is monotonic: a reappearing file never clears it.
	Removed     bool       `json:"removed,omitempty"`
	RemovedDate *time.Time `json:"removedDate,omitempty"`
}
