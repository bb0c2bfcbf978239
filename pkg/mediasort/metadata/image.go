package metadata

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// ErrNoEXIF indicates the image carries no EXIF block. Like probe
// failures, this downgrades to "no metadata" rather than failing the
// ingestion of the file.
var ErrNoEXIF = errors.New("no exif data")

// exifDateLayout is the timestamp layout mandated by the EXIF standard.
// EXIF timestamps carry no zone, so they are interpreted in the local
// zone of the machine doing the extraction.
const exifDateLayout = "2006:01:02 15:04:05"

// ExtractImage reads the EXIF block of an image file and returns its
// normalized metadata. Individual malformed tags are skipped; only a
// missing or undecodable EXIF block is an error.
func (e *Extractor) ExtractImage(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNoEXIF, path, err)
	}

	img := &Image{
		Make:     exifString(x, exif.Make),
		Model:    exifString(x, exif.Model),
		Software: exifString(x, exif.Software),

		DateTimeOriginal:  exifString(x, exif.DateTimeOriginal),
		DateTimeDigitized: exifString(x, exif.DateTimeDigitized),
		DateTime:          exifString(x, exif.DateTime),

		ISO:          exifInt(x, exif.ISOSpeedRatings),
		FNumber:      exifRat(x, exif.FNumber),
		ExposureTime: exifString(x, exif.ExposureTime),
		FocalLength:  exifRat(x, exif.FocalLength),
		WhiteBalance: exifInt(x, exif.WhiteBalance),
		Flash:        exifInt(x, exif.Flash),

		Orientation: exifInt(x, exif.Orientation),
		Width:       exifInt(x, exif.PixelXDimension),
		Height:      exifInt(x, exif.PixelYDimension),
		ColorSpace:  exifInt(x, exif.ColorSpace),

		Artist:      exifString(x, exif.Artist),
		Copyright:   exifString(x, exif.Copyright),
		Description: exifString(x, exif.ImageDescription),
	}

	img.DateTimeOriginalUTC = exifDateUTC(img.DateTimeOriginal)
	img.DateTimeDigitizedUTC = exifDateUTC(img.DateTimeDigitized)
	img.DateTimeUTC = exifDateUTC(img.DateTime)

	if lat, long, err := x.LatLong(); err == nil {
		img.GPSLatitude = &lat
		img.GPSLongitude = &long
	}
	if alt := exifRat(x, exif.GPSAltitude); alt != 0 {
		img.GPSAltitude = &alt
	}

	return img, nil
}

// exifDateUTC converts an EXIF timestamp string to UTC. A value that
// does not parse yields nil, never an error.
func exifDateUTC(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.ParseInLocation(exifDateLayout, s, time.Local)
	if err != nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}

func exifString(x *exif.Exif, field exif.FieldName) string {
	tag, err := x.Get(field)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return tag.String()
	}
	return s
}

func exifInt(x *exif.Exif, field exif.FieldName) int {
	tag, err := x.Get(field)
	if err != nil {
		return 0
	}
	v, err := tag.Int(0)
	if err != nil {
		return 0
	}
	return v
}

func exifRat(x *exif.Exif, field exif.FieldName) float64 {
	tag, err := x.Get(field)
	if err != nil {
		return 0
	}
	num, den, err := tag.Rat2(0)
	if err != nil || den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
