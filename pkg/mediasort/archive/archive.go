// Package archive lays files out in the date-sharded archive tree and
// performs the copy into it. Sources are never modified or removed;
// the archive only ever gains files.
package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mediasort/mediasort/pkg/mediasort/classify"
)

// dateShardLayout is the per-day directory name under each type root.
const dateShardLayout = "2006-01-02"

// Allocator computes destination paths inside the archive tree. The
// layout is <root>/<media type>/<YYYY-MM-DD>/<file name>, where the
// date shard comes from the source file's modification time in the
// local zone.
type Allocator struct {
	Root string
}

// DestPath returns the archive path for a file of the given type and
// modification time, creating the shard directory if needed.
func (a *Allocator) DestPath(mediaType classify.MediaType, modTime time.Time, name string) (string, error) {
	dir := filepath.Join(a.Root, string(mediaType), modTime.Format(dateShardLayout))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create archive shard %s: %w", dir, err)
	}
	return filepath.Join(dir, name), nil
}

// TypeDir returns the root directory for one media type. It is not
// created; reconciliation treats a missing type directory as empty.
func (a *Allocator) TypeDir(mediaType classify.MediaType) string {
	return filepath.Join(a.Root, string(mediaType))
}

// Copy copies src to dst, overwriting any existing file at dst. The
// source is left untouched in all cases, including failure. A partial
// destination left behind by a failed copy is overwritten on retry.
func Copy(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dst, err)
	}
	return nil
}
