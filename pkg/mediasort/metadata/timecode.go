package metadata

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// defaultFrameRate is assumed when a frame rate is absent or unparsable.
const defaultFrameRate = 30.0

// parseFrameRate parses a frame rate expressed either as a plain number
// ("29.97") or a rational ("30000/1001"). Absent or unparsable values
// fall back to defaultFrameRate.
func parseFrameRate(s string) float64 {
	if s == "" {
		return defaultFrameRate
	}

	if num, den, ok := strings.Cut(s, "/"); ok {
		n, errN := strconv.ParseFloat(num, 64)
		d, errD := strconv.ParseFloat(den, 64)
		if errN != nil || errD != nil || d == 0 {
			return defaultFrameRate
		}
		return n / d
	}

	rate, err := strconv.ParseFloat(s, 64)
	if err != nil || rate <= 0 {
		return defaultFrameRate
	}
	return rate
}

// EndTimecode derives the end timecode from a start timecode string
// (HH:MM:SS:FF or HH:MM:SS.mmm), a duration in seconds and a frame rate
// string. The start timecode is converted to a frame count, the duration
// in frames is added, and the total is converted back to HH:MM:SS:FF.
// An empty string is returned when the start timecode cannot be parsed.
//
// The frame field of the start timecode is ignored: the start is rounded
// to whole frames from its HH:MM:SS portion, matching the long-standing
// behavior of the archive.
func EndTimecode(start string, durationSeconds float64, frameRate string) string {
	rate := parseFrameRate(frameRate)

	if !strings.Contains(start, ":") {
		return ""
	}
	parts := strings.Split(start, ":")
	if len(parts) < 3 {
		return ""
	}

	hours := leadingInt(parts[0])
	minutes := leadingInt(parts[1])
	seconds := leadingFloat(parts[2])

	startSeconds := float64(hours)*3600 + float64(minutes)*60 + seconds
	startFrames := math.Round(startSeconds * rate)
	durationFrames := math.Round(durationSeconds * rate)
	endFrames := startFrames + durationFrames

	endSeconds := endFrames / rate
	endHours := int(endSeconds / 3600)
	endMinutes := int(math.Mod(endSeconds, 3600) / 60)
	remainder := math.Mod(endSeconds, 60)
	endFrame := int(math.Round((remainder - math.Floor(remainder)) * rate))
	endWhole := int(remainder)

	return fmt.Sprintf("%02d:%02d:%02d:%02d", endHours, endMinutes, endWhole, endFrame)
}

// leadingInt parses the leading decimal digits of s, returning 0 when
// none are present. Drop-frame timecodes use ";" as the final separator,
// so a field like "00;02" must still parse as 0.
func leadingInt(s string) int {
	return int(leadingFloat(s))
}

// leadingFloat parses the leading numeric portion of s, returning 0 when
// none is present.
func leadingFloat(s string) float64 {
	end := 0
	seenDot := false
	for end < len(s) {
		c := s[end]
		if c >= '0' && c <= '9' {
			end++
			continue
		}
		if c == '.' && !seenDot {
			seenDot = true
			end++
			continue
		}
		break
	}
	if end == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return v
}
