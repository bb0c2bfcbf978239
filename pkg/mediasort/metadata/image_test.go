package metadata

import (
	"testing"
	"time"
)

func TestExifDateUTC(t *testing.T) {
	t.Parallel()

	got := exifDateUTC("2024:03:15 14:30:00")
	if got == nil {
		t.Fatal("exifDateUTC returned nil for a valid timestamp")
	}
	want := time.Date(2024, time.March, 15, 14, 30, 0, 0, time.Local).UTC()
	if !got.Equal(want) {
		t.Errorf("exifDateUTC = %v, want %v", got, want)
	}
	if got.Location() != time.UTC {
		t.Errorf("exifDateUTC location = %v, want UTC", got.Location())
	}
}

func TestExifDateUTC_Invalid(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "2024-03-15 14:30:00", "not a date"} {
		if got := exifDateUTC(in); got != nil {
			t.Errorf("exifDateUTC(%q) = %v, want nil", in, got)
		}
	}
}
