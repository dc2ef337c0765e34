package chapters

import (
	"fmt"
	"math"

	"ytcs/internal/services"
)

// Chapter is one titled interval of the source audio. EndTime is nil only for
// the last chapter of a sequence whose total duration is unknown.
type Chapter struct {
	StartTime float64
	EndTime   *float64
	Title     string
}

// Seconds returns a pointer to v, for populating EndTime.
func Seconds(v float64) *float64 {
	return &v
}

// End returns the end time and whether it is set.
func (c Chapter) End() (float64, bool) {
	if c.EndTime == nil {
		return 0, false
	}
	return *c.EndTime, true
}

// Duration returns the chapter length, or 0 when the end is unknown.
func (c Chapter) Duration() float64 {
	end, ok := c.End()
	if !ok {
		return 0
	}
	return end - c.StartTime
}

func (c Chapter) String() string {
	end := "?"
	if v, ok := c.End(); ok {
		end = FormatTimestamp(v)
	}
	return fmt.Sprintf("%s-%s %s", FormatTimestamp(c.StartTime), end, c.Title)
}

// Clone deep-copies a sequence so EndTime pointers are not shared.
func Clone(chapters []Chapter) []Chapter {
	if chapters == nil {
		return nil
	}
	out := make([]Chapter, len(chapters))
	for i, ch := range chapters {
		out[i] = ch
		if ch.EndTime != nil {
			out[i].EndTime = Seconds(*ch.EndTime)
		}
	}
	return out
}

// Validate checks the sequence invariants: the first chapter starts at 0,
// every chapter ends where the next begins, and every closed chapter has a
// positive length. Only the last chapter may have an open end.
func Validate(chapters []Chapter) error {
	if len(chapters) == 0 {
		return services.Wrap(services.ErrValidation, "chapters", "validate", "empty sequence", nil)
	}
	if chapters[0].StartTime != 0 {
		return services.Wrap(services.ErrValidation, "chapters", "validate",
			fmt.Sprintf("first chapter starts at %s", FormatTimestamp(chapters[0].StartTime)), nil)
	}
	for i, ch := range chapters {
		end, ok := ch.End()
		last := i == len(chapters)-1
		if !ok {
			if last {
				continue
			}
			return services.Wrap(services.ErrValidation, "chapters", "validate",
				fmt.Sprintf("chapter %d has no end", i+1), nil)
		}
		if end <= ch.StartTime {
			return services.Wrap(services.ErrValidation, "chapters", "validate",
				fmt.Sprintf("chapter %d %q has non-positive length", i+1, ch.Title), nil)
		}
		if !last && end != chapters[i+1].StartTime {
			return services.Wrap(services.ErrValidation, "chapters", "validate",
				fmt.Sprintf("chapter %d ends at %v but chapter %d starts at %v", i+1, end, i+2, chapters[i+1].StartTime), nil)
		}
	}
	return nil
}

// WholeFile returns the degenerate single-chapter sequence spanning the file.
func WholeFile(duration float64) []Chapter {
	ch := Chapter{StartTime: 0, Title: placeholderTitle(1)}
	if duration > 0 && !math.IsInf(duration, 0) {
		ch.EndTime = Seconds(duration)
	}
	return []Chapter{ch}
}

type entry struct {
	start float64
	title string
}

// link turns sorted entries into a contiguous sequence. The first start is
// forced to 0 and the last chapter ends at duration when it is known.
func link(entries []entry, duration float64) []Chapter {
	out := make([]Chapter, len(entries))
	for i, e := range entries {
		out[i] = Chapter{StartTime: e.start, Title: e.title}
		if i > 0 {
			out[i-1].EndTime = Seconds(e.start)
		}
	}
	if len(out) > 0 {
		out[0].StartTime = 0
		if duration > 0 {
			out[len(out)-1].EndTime = Seconds(duration)
		}
	}
	return out
}

func placeholderTitle(n int) string {
	return fmt.Sprintf("Track %d", n)
}
