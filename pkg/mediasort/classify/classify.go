// Package classify maps file extensions to media-type categories.
// Classification is purely extension-based; no content sniffing is done.
package classify

import (
	"errors"
	"path/filepath"
	"strings"
)

// MediaType is the category a media file is archived under. The string
// values double as the destination folder names.
type MediaType string

const (
	Videos MediaType = "videos"
	Images MediaType = "images"
	Audio  MediaType = "audio"
)

// ErrUnsupported indicates the file extension is not a recognized media type.
var ErrUnsupported = errors.New("unsupported file type")

var videoExts = map[string]bool{
	".mp4": true, ".mov": true, ".avi": true, ".mkv": true, ".mxf": true,
}

var audioExts = map[string]bool{
	".mp3": true, ".wav": true, ".aac": true, ".flac": true,
}

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".bmp": true, ".webp": true, ".tiff": true, ".arw": true,
}

// Detect returns the media type for a path based on its extension.
// The lookup is case-insensitive. Unrecognized extensions return
// ErrUnsupported.
func Detect(path string) (MediaType, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case videoExts[ext]:
		return Videos, nil
	case audioExts[ext]:
		return Audio, nil
	case imageExts[ext]:
		return Images, nil
	default:
		return "", ErrUnsupported
	}
}

// Eligible reports whether the path has a recognized media extension.
// Bulk operations use this for the pre-processing count pass.
func Eligible(path string) bool {
	_, err := Detect(path)
	return err == nil
}

// AllTypes lists every media-type category, in destination-folder order.
func AllTypes() []MediaType {
	return []MediaType{Videos, Images, Audio}
}
