// Package metadata extracts normalized metadata from media files.
// Video and audio files are probed with ffprobe; images are read via
// their embedded EXIF tags. Extraction failures are never fatal to
// ingestion: callers downgrade to a nil record and carry on.
package metadata

import "time"

// Media is the tagged union persisted in a manifest entry. Exactly one
// of the two records is set, matching the entry's media type.
type Media struct {
	VideoAudio *VideoAudio `json:"videoAudio,omitempty"`
	Image      *Image      `json:"image,omitempty"`
}

// VideoAudio holds normalized probe output for video and audio files.
type VideoAudio struct {
	// Duration is the container duration in seconds.
	Duration float64 `json:"duration,omitempty"`

	// BitRate is the overall bit rate in bits per second.
	BitRate int64 `json:"bitRate,omitempty"`

	// FormatName is the short container format name (e.g. "mov,mp4,m4a").
	FormatName string `json:"formatName,omitempty"`

	// FormatLongName is the descriptive container format name.
	FormatLongName string `json:"formatLongName,omitempty"`

	// StartTime is the container start offset in seconds.
	StartTime float64 `json:"startTime,omitempty"`

	// CreationTime is the raw creation_time format tag, if present.
	CreationTime string `json:"creationTime,omitempty"`

	// CreationTimeUTC is CreationTime normalized to UTC, when parsable.
	CreationTimeUTC *time.Time `json:"creationTimeUTC,omitempty"`

	// Timecode carries the professional-video timecode block.
	Timecode Timecode `json:"timecode"`

	// Video describes the first video stream, if any.
	Video *VideoStream `json:"video,omitempty"`

	// Audio describes the first audio stream, if any.
	Audio *AudioStream `json:"audio,omitempty"`

	// Tags holds camera/device format tags.
	Tags DeviceTags `json:"tags"`

	// StreamCount is the total number of streams in the container.
	StreamCount int `json:"streamCount,omitempty"`

	// Streams summarizes every stream for display purposes.
	Streams []StreamSummary `json:"streams,omitempty"`
}

// Timecode holds start/end timecode information and its provenance.
// End is derived from Start, Duration and FrameRate; it is empty when
// any of those could not be parsed.
type Timecode struct {
	Start      string            `json:"start,omitempty"`
	End        string            `json:"end,omitempty"`
	Duration   float64           `json:"duration,omitempty"`
	FrameRate  string            `json:"frameRate,omitempty"`
	DropFrame  bool              `json:"dropFrame,omitempty"`
	Alt        string            `json:"alt,omitempty"`
	Source     string            `json:"source,omitempty"`
	Creation   string            `json:"creation,omitempty"`
	TrackCodec string            `json:"trackCodec,omitempty"`
	AllFields  map[string]string `json:"allFields,omitempty"`
}

// VideoStream describes a single video stream.
type VideoStream struct {
	Codec         string `json:"codec,omitempty"`
	CodecLongName string `json:"codecLongName,omitempty"`
	Width         int    `json:"width,omitempty"`
	Height        int    `json:"height,omitempty"`
	AspectRatio   string `json:"aspectRatio,omitempty"`
	FrameRate     string `json:"frameRate,omitempty"`
	AvgFrameRate  string `json:"avgFrameRate,omitempty"`
	PixelFormat   string `json:"pixelFormat,omitempty"`
	ColorSpace    string `json:"colorSpace,omitempty"`
	ColorRange    string `json:"colorRange,omitempty"`
	BitRate       int64  `json:"bitRate,omitempty"`

	// Quality is the resolution-quality label derived from Width/Height.
	Quality string `json:"quality,omitempty"`
}

// AudioStream describes a single audio stream.
type AudioStream struct {
	Codec         string `json:"codec,omitempty"`
	CodecLongName string `json:"codecLongName,omitempty"`
	SampleRate    int    `json:"sampleRate,omitempty"`
	Channels      int    `json:"channels,omitempty"`
	ChannelLayout string `json:"channelLayout,omitempty"`
	BitRate       int64  `json:"bitRate,omitempty"`
	BitsPerSample int    `json:"bitsPerSample,omitempty"`
}

// DeviceTags holds camera and device-specific format tags. All fields
// are optional free text straight from the container.
type DeviceTags struct {
	Title   string `json:"title,omitempty"`
	Artist  string `json:"artist,omitempty"`
	Album   string `json:"album,omitempty"`
	Date    string `json:"date,omitempty"`
	Genre   string `json:"genre,omitempty"`
	Comment string `json:"comment,omitempty"`

	Make     string `json:"make,omitempty"`
	Model    string `json:"model,omitempty"`
	Software string `json:"software,omitempty"`
	Encoder  string `json:"encoder,omitempty"`

	ProductName    string `json:"productName,omitempty"`
	ProductVersion string `json:"productVersion,omitempty"`
	ProductUID     string `json:"productUID,omitempty"`

	// RecordedDate is the camera's modification_date tag, which on
	// professional cameras records when the clip was actually shot.
	RecordedDate string `json:"recordedDate,omitempty"`

	MaterialPackageUMID string `json:"materialPackageUMID,omitempty"`
	PackageUID          string `json:"packageUID,omitempty"`

	Reel  string `json:"reel,omitempty"`
	Scene string `json:"scene,omitempty"`
	Take  string `json:"take,omitempty"`
	Angle string `json:"angle,omitempty"`

	Location       string `json:"location,omitempty"`
	GPSCoordinates string `json:"gpsCoordinates,omitempty"`

	Copyright   string `json:"copyright,omitempty"`
	Description string `json:"description,omitempty"`
	Keywords    string `json:"keywords,omitempty"`
}

// StreamSummary is a one-line description of a container stream.
type StreamSummary struct {
	Index     int     `json:"index"`
	CodecType string  `json:"codecType,omitempty"`
	CodecName string  `json:"codecName,omitempty"`
	Duration  float64 `json:"duration,omitempty"`
}

// Image holds normalized EXIF metadata for image files. Each of the
// three date fields has a best-effort UTC-normalized twin; a failed
// conversion nulls only that twin.
type Image struct {
	Make     string `json:"make,omitempty"`
	Model    string `json:"model,omitempty"`
	Software string `json:"software,omitempty"`

	DateTimeOriginal     string     `json:"dateTimeOriginal,omitempty"`
	DateTimeOriginalUTC  *time.Time `json:"dateTimeOriginalUTC,omitempty"`
	DateTimeDigitized    string     `json:"dateTimeDigitized,omitempty"`
	DateTimeDigitizedUTC *time.Time `json:"dateTimeDigitizedUTC,omitempty"`
	DateTime             string     `json:"dateTime,omitempty"`
	DateTimeUTC          *time.Time `json:"dateTimeUTC,omitempty"`

	ISO          int     `json:"iso,omitempty"`
	FNumber      float64 `json:"fNumber,omitempty"`
	ExposureTime string  `json:"exposureTime,omitempty"`
	FocalLength  float64 `json:"focalLength,omitempty"`
	WhiteBalance int     `json:"whiteBalance,omitempty"`
	Flash        int     `json:"flash,omitempty"`

	Orientation int `json:"orientation,omitempty"`
	Width       int `json:"imageWidth,omitempty"`
	Height      int `json:"imageHeight,omitempty"`
	ColorSpace  int `json:"colorSpace,omitempty"`

	GPSLatitude  *float64 `json:"gpsLatitude,omitempty"`
	GPSLongitude *float64 `json:"gpsLongitude,omitempty"`
	GPSAltitude  *float64 `json:"gpsAltitude,omitempty"`

	Artist      string `json:"artist,omitempty"`
	Copyright   string `json:"copyright,omitempty"`
	Description string `json:"imageDescription,omitempty"`
}
