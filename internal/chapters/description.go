package chapters

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"ytcs/internal/services"
	"ytcs/internal/textutil"
)

// minDescriptionEntries is the number of timestamped lines a pattern family
// needs before it counts as a chapter list. One timestamp is more likely a
// duration mention than a tracklist.
const minDescriptionEntries = 2

const timestampExpr = `(?:\d{1,2}:)?\d{1,3}:\d{2}`

type lineMatcher func(line string) (stamp, title string, ok bool)

type patternFamily struct {
	name     string
	matchers []lineMatcher
}

func regexMatcher(re *regexp.Regexp, stampGroup, titleGroup int) lineMatcher {
	return func(line string) (string, string, bool) {
		m := re.FindStringSubmatch(line)
		if m == nil {
			return "", "", false
		}
		return m[stampGroup], m[titleGroup], true
	}
}

var (
	// "1 - Intro (0:00)", "2) Main Theme (3:45)", "3. Outro [7:10]"
	numberedLinePattern = regexp.MustCompile(`^\s*\d+\s*[-–—.)]\s*(.+?)\s*[(\[](` + timestampExpr + `)[)\]]\s*$`)
	// "[00:03:45] Main Theme", "(3:45) - Main Theme"
	bracketedLinePattern = regexp.MustCompile(`^\s*[\[(](` + timestampExpr + `)[\])]\s*(?:[-–—:|]\s*)?(.+?)\s*$`)
	// "00:03:45 - Main Theme", "3:45 Main Theme"
	plainLinePattern = regexp.MustCompile(`^\s*(` + timestampExpr + `)(?:\s*[-–—:|]\s*|\s+)(.+?)\s*$`)
	// "Main Theme - 3:45"
	trailingLinePattern = regexp.MustCompile(`^\s*(.+?)\s*[-–—|]\s*(` + timestampExpr + `)\s*$`)
)

// descriptionFamilies lists pattern families in priority order.
var descriptionFamilies = []patternFamily{
	{name: "numbered", matchers: []lineMatcher{regexMatcher(numberedLinePattern, 2, 1)}},
	{name: "bracketed", matchers: []lineMatcher{regexMatcher(bracketedLinePattern, 1, 2)}},
	{name: "plain", matchers: []lineMatcher{
		regexMatcher(plainLinePattern, 1, 2),
		regexMatcher(trailingLinePattern, 2, 1),
	}},
}

// FromDescription extracts a chapter list from free-text video descriptions.
// The first pattern family that yields at least two timestamped lines decides
// the result. The extraction is rejected with services.ErrNotFound when any
// timestamp reaches the video duration or two lines share a timestamp. The
// first chapter always starts at 0 and the last ends at duration when known.
func FromDescription(description string, duration float64) ([]Chapter, error) {
	chapters, _, err := extractDescription(description, duration)
	return chapters, err
}

func extractDescription(description string, duration float64) ([]Chapter, string, error) {
	lines := strings.Split(strings.ReplaceAll(description, "\r\n", "\n"), "\n")
	for _, family := range descriptionFamilies {
		entries := family.collect(lines)
		if len(entries) < minDescriptionEntries {
			continue
		}
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].start < entries[j].start })
		for i, e := range entries {
			if duration > 0 && e.start >= duration {
				return nil, family.name, notFound(fmt.Sprintf("%s timestamp %s is beyond the %s duration",
					family.name, FormatTimestamp(e.start), FormatTimestamp(duration)))
			}
			if i > 0 && e.start == entries[i-1].start {
				return nil, family.name, notFound(fmt.Sprintf("%s timestamp %s appears twice",
					family.name, FormatTimestamp(e.start)))
			}
		}
		return link(entries, duration), family.name, nil
	}
	return nil, "", notFound(fmt.Sprintf("need at least %d timestamped lines", minDescriptionEntries))
}

func (f patternFamily) collect(lines []string) []entry {
	var entries []entry
	for _, line := range lines {
		for _, match := range f.matchers {
			stamp, rawTitle, ok := match(line)
			if !ok {
				continue
			}
			if e, ok := newDescriptionEntry(stamp, rawTitle); ok {
				entries = append(entries, e)
			}
			break
		}
	}
	return entries
}

func newDescriptionEntry(stamp, rawTitle string) (entry, bool) {
	start, ok := ParseTimestamp(stamp)
	if !ok {
		return entry{}, false
	}
	rawTitle = strings.TrimSpace(rawTitle)
	if utf8.RuneCountInString(rawTitle) < 2 {
		return entry{}, false
	}
	title := textutil.CleanTrackTitle(rawTitle, "")
	if utf8.RuneCountInString(title) < 2 {
		return entry{}, false
	}
	return entry{start: start, title: title}, true
}

func notFound(message string) error {
	return services.Wrap(services.ErrNotFound, "chapters", "parse description", message, nil)
}
