package metadata

import (
	"context"
	"os"
	"strconv"

	"github.com/dhowden/tag"
)

// fillAudioTags reads ID3/Vorbis/MP4 tags straight from the file and
// fills any tag fields the probe left empty. ffprobe exposes most of
// these, but some encoders write tags it does not surface.
func fillAudioTags(path string, m *VideoAudio) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		return
	}

	if m.Tags.Title == "" {
		m.Tags.Title = meta.Title()
	}
	if m.Tags.Artist == "" {
		m.Tags.Artist = meta.Artist()
	}
	if m.Tags.Album == "" {
		m.Tags.Album = meta.Album()
	}
	if m.Tags.Genre == "" {
		m.Tags.Genre = meta.Genre()
	}
	if m.Tags.Comment == "" {
		m.Tags.Comment = meta.Comment()
	}
	if m.Tags.Date == "" {
		if year := meta.Year(); year != 0 {
			m.Tags.Date = strconv.Itoa(year)
		}
	}
}

// ExtractAudio probes an audio file and enriches the result with tags
// read directly from the container. When the probe itself fails, a
// tags-only record is still better than nothing, so the direct read
// serves as a fallback before giving up.
func (e *Extractor) ExtractAudio(ctx context.Context, path string) (*VideoAudio, error) {
	m, err := e.ExtractVideo(ctx, path)
	if err != nil {
		fallback := &VideoAudio{}
		fillAudioTags(path, fallback)
		if fallback.Tags != (DeviceTags{}) {
			return fallback, nil
		}
		return nil, err
	}
	fillAudioTags(path, m)
	return m, nil
}
