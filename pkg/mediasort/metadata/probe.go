package metadata

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	ffprobe "gopkg.in/vansante/go-ffprobe.v2"
)

// ErrProbe indicates the external probe tool failed or returned
// unparsable output. Ingestion treats this as "no metadata" and
// continues with the copy.
var ErrProbe = errors.New("probe failed")

// startTimecodeTags lists the format-tag names checked, in order, for
// the primary start timecode. Cameras and wrappers disagree on where
// they put it.
var startTimecodeTags = []string{
	"timecode",
	"time_code",
	"tc",
	"start_timecode",
	"TIMECODE",
	"creation_time_timecode",
	"material_package_timecode",
}

// Extractor produces normalized metadata records for media files.
type Extractor struct {
	// FFProbePath overrides the ffprobe binary location. Empty means
	// the binary is resolved from PATH.
	FFProbePath string
}

// ExtractVideo probes a video or audio file and returns its normalized
// metadata. A probe failure returns an error wrapping ErrProbe.
func (e *Extractor) ExtractVideo(ctx context.Context, path string) (*VideoAudio, error) {
	if e.FFProbePath != "" {
		ffprobe.SetFFProbeBinPath(e.FFProbePath)
	}

	data, err := ffprobe.ProbeURL(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrProbe, path, err)
	}
	if data == nil || data.Format == nil {
		return nil, fmt.Errorf("%w: %s: empty probe output", ErrProbe, path)
	}

	return mapProbeData(data), nil
}

// mapProbeData converts raw ffprobe output into a VideoAudio record,
// computing the derived quality label and end timecode.
func mapProbeData(data *ffprobe.ProbeData) *VideoAudio {
	format := data.Format

	m := &VideoAudio{
		Duration:       format.DurationSeconds,
		BitRate:        parseInt64(format.BitRate),
		FormatName:     format.FormatName,
		FormatLongName: format.FormatLongName,
		StartTime:      format.StartTimeSeconds,
		CreationTime:   tagString(format.TagList, "creation_time"),
		StreamCount:    len(data.Streams),
	}

	if m.CreationTime != "" {
		if t, err := parseFlexibleTime(m.CreationTime); err == nil {
			utc := t.UTC()
			m.CreationTimeUTC = &utc
		}
	}

	videoStream := data.FirstVideoStream()
	audioStream := data.FirstAudioStream()

	if videoStream != nil {
		m.Video = &VideoStream{
			Codec:         videoStream.CodecName,
			CodecLongName: videoStream.CodecLongName,
			Width:         videoStream.Width,
			Height:        videoStream.Height,
			AspectRatio:   videoStream.DisplayAspectRatio,
			FrameRate:     videoStream.RFrameRate,
			AvgFrameRate:  videoStream.AvgFrameRate,
			PixelFormat:   videoStream.PixFmt,
			ColorSpace:    videoStream.ColorSpace,
			ColorRange:    videoStream.ColorRange,
			BitRate:       parseInt64(videoStream.BitRate),
			Quality:       QualityLabel(videoStream.Width, videoStream.Height),
		}
	}

	if audioStream != nil {
		m.Audio = &AudioStream{
			Codec:         audioStream.CodecName,
			CodecLongName: audioStream.CodecLongName,
			SampleRate:    int(parseInt64(audioStream.SampleRate)),
			Channels:      audioStream.Channels,
			ChannelLayout: audioStream.ChannelLayout,
			BitRate:       parseInt64(audioStream.BitRate),
			BitsPerSample: audioStream.BitsPerSample,
		}
	}

	for _, s := range data.Streams {
		m.Streams = append(m.Streams, StreamSummary{
			Index:     s.Index,
			CodecType: s.CodecType,
			CodecName: s.CodecName,
			Duration:  leadingFloat(s.Duration),
		})
	}

	m.Timecode = mapTimecode(data, videoStream)
	m.Tags = mapDeviceTags(format.TagList)

	return m
}

// mapTimecode assembles the timecode block from format tags, stream tags
// and any dedicated timecode track.
func mapTimecode(data *ffprobe.ProbeData, videoStream *ffprobe.Stream) Timecode {
	format := data.Format

	tc := Timecode{
		Start:    tagString(format.TagList, startTimecodeTags...),
		Duration: format.DurationSeconds,
		Alt:      tagString(format.TagList, "alt_timecode"),
		Source:   tagString(format.TagList, "source_timecode"),
		Creation: tagString(format.TagList, "creation_time_timecode"),
	}

	// Some containers carry the timecode on a stream instead of the
	// format block.
	if tc.Start == "" {
		for _, s := range data.Streams {
			if v := tagString(s.TagList, "timecode"); v != "" {
				tc.Start = v
				break
			}
		}
	}

	if videoStream != nil {
		tc.FrameRate = videoStream.RFrameRate
		if tc.FrameRate == "" {
			tc.FrameRate = videoStream.AvgFrameRate
		}
	}

	// Drop-frame timecodes use ";" as the frame separator.
	tc.DropFrame = tagString(format.TagList, "drop_frame", "drop_frame_flag") != "" ||
		strings.Contains(tc.Start, ";")

	for _, s := range data.Streams {
		if s.CodecType != "data" {
			continue
		}
		if s.CodecName == "smpte_timecode" || s.CodecName == "timecode" ||
			tagString(s.TagList, "timecode") != "" {
			tc.TrackCodec = s.CodecName
			break
		}
	}

	for key, value := range format.TagList {
		lower := strings.ToLower(key)
		if strings.Contains(lower, "timecode") || strings.Contains(lower, "time_code") {
			if tc.AllFields == nil {
				tc.AllFields = make(map[string]string)
			}
			tc.AllFields[key] = fmt.Sprint(value)
		}
	}

	if tc.Start != "" && tc.Duration > 0 {
		tc.End = EndTimecode(tc.Start, tc.Duration, tc.FrameRate)
	}

	return tc
}

// mapDeviceTags pulls the camera/device fields out of the format tags.
func mapDeviceTags(tags ffprobe.Tags) DeviceTags {
	return DeviceTags{
		Title:   tagString(tags, "title"),
		Artist:  tagString(tags, "artist"),
		Album:   tagString(tags, "album"),
		Date:    tagString(tags, "date"),
		Genre:   tagString(tags, "genre"),
		Comment: tagString(tags, "comment"),

		Make:     tagString(tags, "make"),
		Model:    tagString(tags, "model"),
		Software: tagString(tags, "software"),
		Encoder:  tagString(tags, "encoder"),

		ProductName:    tagString(tags, "product_name"),
		ProductVersion: tagString(tags, "product_version"),
		ProductUID:     tagString(tags, "product_uid"),

		// On professional cameras the modification_date tag records
		// when the clip was shot, not when the file was last touched.
		RecordedDate: tagString(tags, "modification_date"),

		MaterialPackageUMID: tagString(tags, "material_package_umid"),
		PackageUID:          tagString(tags, "package_uid"),

		Reel:  tagString(tags, "reel"),
		Scene: tagString(tags, "scene"),
		Take:  tagString(tags, "take"),
		Angle: tagString(tags, "angle", "camera_angle"),

		Location:       tagString(tags, "location"),
		GPSCoordinates: tagString(tags, "com.apple.quicktime.location.ISO6709"),

		Copyright:   tagString(tags, "copyright"),
		Description: tagString(tags, "description"),
		Keywords:    tagString(tags, "keywords"),
	}
}

// tagString returns the first non-empty string value among the named
// tags, or "" when none is set.
func tagString(tags ffprobe.Tags, keys ...string) string {
	for _, key := range keys {
		if v, err := tags.GetString(key); err == nil && v != "" {
			return v
		}
	}
	return ""
}

// parseInt64 parses a decimal string, returning 0 on failure. ffprobe
// reports bit rates and sample rates as strings.
func parseInt64(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// timeLayouts are the timestamp layouts observed in creation_time tags.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseFlexibleTime parses a timestamp in any of the layouts cameras
// commonly write.
func parseFlexibleTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
