package chapters

import (
	"sort"

	"ytcs/internal/services"
	"ytcs/internal/textutil"
)

// RawChapter is a platform-supplied chapter entry before normalization.
type RawChapter struct {
	Title     string
	StartTime float64
	EndTime   *float64
}

// Source is the platform metadata consumed by the resolver tiers.
type Source struct {
	Chapters    []RawChapter
	Duration    float64
	Description string
	Uploader    string
}

// FromMetadata normalizes platform chapters into a contiguous sequence.
// Entries are sorted by start. Duplicate starts keep the first entry and
// entries at or beyond the duration are dropped. Empty titles become "Track N".
func FromMetadata(raw []RawChapter, duration float64) ([]Chapter, error) {
	sorted := append([]RawChapter(nil), raw...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].StartTime < sorted[j].StartTime })

	entries := make([]entry, 0, len(sorted))
	var lastEnd *float64
	for _, rc := range sorted {
		if rc.StartTime < 0 {
			continue
		}
		if duration > 0 && rc.StartTime >= duration {
			continue
		}
		if n := len(entries); n > 0 && entries[n-1].start == rc.StartTime {
			continue
		}
		title := textutil.CleanTrackTitle(rc.Title, placeholderTitle(len(entries)+1))
		entries = append(entries, entry{start: rc.StartTime, title: title})
		lastEnd = rc.EndTime
	}
	if len(entries) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "chapters", "read metadata", "no platform chapters", nil)
	}

	chapters := link(entries, duration)
	if duration <= 0 && lastEnd != nil {
		last := &chapters[len(chapters)-1]
		if *lastEnd > last.StartTime {
			last.EndTime = Seconds(*lastEnd)
		}
	}
	return chapters, nil
}
