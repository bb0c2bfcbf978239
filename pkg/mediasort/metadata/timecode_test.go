package metadata

import "testing"

func TestEndTimecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		start     string
		duration  float64
		frameRate string
		want      string
	}{
		{
			name:      "ninety seconds at 30fps",
			start:     "01:00:00:00",
			duration:  90,
			frameRate: "30",
			want:      "01:01:30:00",
		},
		{
			name:      "rational frame rate",
			start:     "00:00:00:00",
			duration:  1,
			frameRate: "30000/1001",
			want:      "00:00:01:00",
		},
		{
			name:      "fractional seconds carry into frames",
			start:     "00:00:00:00",
			duration:  1.5,
			frameRate: "30",
			want:      "00:00:01:15",
		},
		{
			name:      "hour rollover",
			start:     "00:59:30:00",
			duration:  45,
			frameRate: "25",
			want:      "01:00:15:00",
		},
		{
			name:      "missing frame rate defaults to 30",
			start:     "02:00:00:00",
			duration:  60,
			frameRate: "",
			want:      "02:01:00:00",
		},
		{
			// 30s at 29.97 is 899 whole frames, landing a hair short
			// of the second boundary: 29 whole seconds and a
			// fractional remainder that rounds to frame 30.
			name:      "drop frame separator in frames field",
			start:     "01:00:00;00",
			duration:  30,
			frameRate: "29.97",
			want:      "01:00:29:30",
		},
		{
			name:      "unparsable start",
			start:     "not a timecode",
			duration:  30,
			frameRate: "30",
			want:      "",
		},
		{
			name:      "too few fields",
			start:     "01:00",
			duration:  30,
			frameRate: "30",
			want:      "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := EndTimecode(tt.start, tt.duration, tt.frameRate)
			if got != tt.want {
				t.Errorf("EndTimecode(%q, %v, %q) = %q, want %q",
					tt.start, tt.duration, tt.frameRate, got, tt.want)
			}
		})
	}
}

func TestParseFrameRate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want float64
	}{
		{"25", 25},
		{"29.97", 29.97},
		{"30000/1001", 30000.0 / 1001.0},
		{"", 30},
		{"bogus", 30},
		{"30/0", 30},
	}

	for _, tt := range tests {
		if got := parseFrameRate(tt.in); got != tt.want {
			t.Errorf("parseFrameRate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLeadingFloat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want float64
	}{
		{"15", 15},
		{"07.5", 7.5},
		{"00;02", 0},
		{"12drop", 12},
		{"", 0},
		{";00", 0},
	}

	for _, tt := range tests {
		if got := leadingFloat(tt.in); got != tt.want {
			t.Errorf("leadingFloat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
