// Package history reconstructs a day-by-day import timeline from the
// manifest. Entries are bucketed by local calendar day, newest first,
// with human-readable headers for recent days.
package history

import (
	"sort"
	"strings"
	"time"

	"github.com/mediasort/mediasort/pkg/mediasort/classify"
	"github.com/mediasort/mediasort/pkg/mediasort/manifest"
)

// scanAgeThreshold and scanCreationThreshold decide when a scanned
// file is treated as pre-existing footage rather than a fresh import.
// A file found by a bulk scan, imported over an hour ago, whose own
// date is more than a day old, almost certainly predates the archive;
// grouping it under its import day would pile old footage onto one
// misleading day.
const (
	scanAgeThreshold      = time.Hour
	scanCreationThreshold = 24 * time.Hour
)

// Group is one calendar day's worth of entries, newest first.
type Group struct {
	// Day is midnight of the group's calendar day in the builder's zone.
	Day time.Time

	// Label is the rendered header, e.g. "TODAY - Friday, March 15, 2024".
	Label string

	Entries []manifest.Entry
}

// Builder reconstructs timeline views. Now and Location are injected
// so views are reproducible in tests regardless of host zone.
type Builder struct {
	Now      time.Time
	Location *time.Location
}

// NewBuilder returns a builder anchored at the current time in the
// local zone.
func NewBuilder() *Builder {
	return &Builder{Now: time.Now(), Location: time.Local}
}

// Live groups the entries that are still present in the archive,
// optionally filtered to one media type (empty means all types).
func (b *Builder) Live(entries []manifest.Entry, mediaType classify.MediaType) []Group {
	var kept []manifest.Entry
	for _, e := range entries {
		if e.Removed {
			continue
		}
		if mediaType != "" && e.MediaType != mediaType {
			continue
		}
		kept = append(kept, e)
	}
	return b.group(kept, b.groupTime)
}

// Removed groups soft-deleted entries by the day their archived copy
// was observed missing.
func (b *Builder) Removed(entries []manifest.Entry) []Group {
	var removed []manifest.Entry
	for _, e := range entries {
		if e.Removed && e.RemovedDate != nil {
			removed = append(removed, e)
		}
	}
	return b.group(removed, func(e manifest.Entry) time.Time {
		return *e.RemovedDate
	})
}

// groupTime picks the timestamp an entry is bucketed under. Fresh
// imports group under their processed date. Files found by a bulk scan
// group under their own file date once the import is old enough to
// tell the two apart.
func (b *Builder) groupTime(e manifest.Entry) time.Time {
	if e.Origin == manifest.OriginScan &&
		b.Now.Sub(e.ProcessedDate) > scanAgeThreshold &&
		b.Now.Sub(e.FileDate) > scanCreationThreshold {
		return e.FileDate
	}
	return e.ProcessedDate
}

func (b *Builder) group(entries []manifest.Entry, at func(manifest.Entry) time.Time) []Group {
	loc := b.Location
	if loc == nil {
		loc = time.Local
	}

	buckets := make(map[time.Time][]manifest.Entry)
	for _, e := range entries {
		local := at(e).In(loc)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		buckets[day] = append(buckets[day], e)
	}

	groups := make([]Group, 0, len(buckets))
	for day, bucket := range buckets {
		sort.SliceStable(bucket, func(i, j int) bool {
			return at(bucket[i]).After(at(bucket[j]))
		})
		groups = append(groups, Group{
			Day:     day,
			Label:   b.label(day, loc),
			Entries: bucket,
		})
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Day.After(groups[j].Day)
	})
	return groups
}

// label renders a group header. Today and yesterday are called out,
// the trailing week keeps its weekday name, anything older is a plain
// date.
func (b *Builder) label(day time.Time, loc *time.Location) string {
	now := b.Now.In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	switch {
	case day.Equal(today):
		return "TODAY - " + day.Format("Monday, January 2, 2006")
	case day.Equal(today.AddDate(0, 0, -1)):
		return "YESTERDAY - " + day.Format("Monday, January 2, 2006")
	case day.After(today.AddDate(0, 0, -7)):
		return day.Format("Monday, January 2, 2006")
	default:
		return day.Format("January 2, 2006")
	}
}

// Stats summarizes one view for the footer line.
type Stats struct {
	Files int
	Days  int
	Bytes int64
}

// Summarize totals a set of groups.
func Summarize(groups []Group) Stats {
	var s Stats
	s.Days = len(groups)
	for _, g := range groups {
		s.Files += len(g.Entries)
		for _, e := range g.Entries {
			s.Bytes += e.FileSize
		}
	}
	return s
}

// ParseType validates a media-type filter argument. Empty input means
// no filter.
func ParseType(s string) (classify.MediaType, bool) {
	if s == "" {
		return "", true
	}
	for _, t := range classify.AllTypes() {
		if strings.EqualFold(s, string(t)) {
			return t, true
		}
	}
	return "", false
}
