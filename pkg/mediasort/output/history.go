// Package output renders views for the terminal.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/mediasort/mediasort/pkg/mediasort/history"
	"github.com/mediasort/mediasort/pkg/mediasort/manifest"
	"github.com/mediasort/mediasort/pkg/mediasort/metadata"
	"github.com/mediasort/mediasort/pkg/mediasort/types"
)

// RenderHistory writes the grouped timeline to w.
func RenderHistory(w io.Writer, groups []history.Group) {
	if len(groups) == 0 {
		fmt.Fprintln(w, detailStyle.Render("No files in the archive yet."))
		return
	}

	for _, g := range groups {
		fmt.Fprintln(w, headerStyle.Render(g.Label))
		for _, e := range g.Entries {
			renderEntry(w, e)
		}
		fmt.Fprintln(w)
	}

	stats := history.Summarize(groups)
	fmt.Fprintln(w, statStyle.Render(fmt.Sprintf(
		"%d files across %d days, %s total",
		stats.Files, stats.Days, types.FormatBytes(stats.Bytes))))
}

// RenderRemoved writes the soft-deleted view to w.
func RenderRemoved(w io.Writer, groups []history.Group) {
	if len(groups) == 0 {
		fmt.Fprintln(w, detailStyle.Render("Nothing has been removed from the archive."))
		return
	}

	for _, g := range groups {
		fmt.Fprintln(w, headerStyle.Render(g.Label))
		for _, e := range g.Entries {
			name := removedStyle.Render(e.FileName)
			fmt.Fprintf(w, "  %s  %s\n", name,
				detailStyle.Render(fmt.Sprintf("(%s, was %s)",
					types.FormatBytes(e.FileSize), e.SortedPath)))
		}
		fmt.Fprintln(w)
	}

	stats := history.Summarize(groups)
	fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf(
		"%d removed files, %s reclaimed", stats.Files, types.FormatBytes(stats.Bytes))))
}

func renderEntry(w io.Writer, e manifest.Entry) {
	fmt.Fprintf(w, "  %s  %s\n",
		fileStyle.Render(e.FileName),
		detailStyle.Render(fmt.Sprintf("(%s, %s)", e.MediaType, types.FormatBytes(e.FileSize))))

	for _, line := range detailLines(e) {
		fmt.Fprintf(w, "      %s\n", detailStyle.Render(line))
	}
}

// detailLines builds the indented metadata lines for one entry. Only
// fields that are actually present render.
func detailLines(e manifest.Entry) []string {
	if e.Metadata == nil {
		return nil
	}

	var lines []string

	if va := e.Metadata.VideoAudio; va != nil {
		if va.Duration > 0 {
			lines = append(lines, "Duration: "+types.FormatDuration(va.Duration))
		}
		if v := va.Video; v != nil && v.Width > 0 {
			lines = append(lines, fmt.Sprintf("Resolution: %dx%d (%s)", v.Width, v.Height, v.Quality))
		}
		if tc := va.Timecode; tc.Start != "" {
			line := "Timecode: " + tc.Start
			if tc.End != "" {
				line += " - " + tc.End
			}
			if tc.FrameRate != "" {
				line += " @ " + tc.FrameRate
			}
			lines = append(lines, line)
		}
		if va.Tags.RecordedDate != "" {
			lines = append(lines, "Recorded: "+va.Tags.RecordedDate)
		}
		if va.Tags.ProductName != "" {
			product := va.Tags.ProductName
			if va.Tags.ProductVersion != "" {
				product += " " + va.Tags.ProductVersion
			}
			lines = append(lines, "Camera: "+product)
		} else if va.Tags.Model != "" {
			lines = append(lines, "Camera: "+strings.TrimSpace(va.Tags.Make+" "+va.Tags.Model))
		}
		if slate := slateLine(va.Tags); slate != "" {
			lines = append(lines, slate)
		}
		if va.BitRate > 0 {
			lines = append(lines, fmt.Sprintf("Bit rate: %s/s", humanize.Bytes(uint64(va.BitRate/8))))
		}
	}

	if img := e.Metadata.Image; img != nil {
		if img.Width > 0 {
			lines = append(lines, fmt.Sprintf("Dimensions: %dx%d", img.Width, img.Height))
		}
		if img.Model != "" {
			lines = append(lines, "Camera: "+strings.TrimSpace(img.Make+" "+img.Model))
		}
		if img.DateTimeOriginal != "" {
			lines = append(lines, "Taken: "+img.DateTimeOriginal)
		}
		if img.ISO > 0 {
			exposure := fmt.Sprintf("ISO %d", img.ISO)
			if img.FNumber > 0 {
				exposure += fmt.Sprintf(", f/%.1f", img.FNumber)
			}
			if img.ExposureTime != "" {
				exposure += ", " + img.ExposureTime + "s"
			}
			lines = append(lines, exposure)
		}
	}

	return lines
}

// slateLine joins the production slate fields that are present.
func slateLine(tags metadata.DeviceTags) string {
	var parts []string
	if tags.Reel != "" {
		parts = append(parts, "Reel "+tags.Reel)
	}
	if tags.Scene != "" {
		parts = append(parts, "Scene "+tags.Scene)
	}
	if tags.Take != "" {
		parts = append(parts, "Take "+tags.Take)
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, ", ")
}
