package preflight

import (
	"strings"

	"ytcs/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
	// Marker classifies a failed check for exit-code mapping.
	Marker error
}

// CheckOutputDir verifies dir is writable and, when it is, that its
// filesystem has MinFreeBytes available.
func CheckOutputDir(dir string) []Result {
	access := CheckDirectoryAccess("Output directory", dir)
	if !access.Passed {
		return []Result{access}
	}
	return []Result{access, CheckFreeSpace("Free space", dir, MinFreeBytes)}
}

// Err folds failed results into one error tagged with the first failure's
// marker, or returns nil when every check passed.
func Err(results []Result) error {
	var (
		marker  error
		details []string
	)
	for _, r := range results {
		if r.Passed {
			continue
		}
		if marker == nil {
			marker = r.Marker
		}
		details = append(details, r.Name+": "+r.Detail)
	}
	if len(details) == 0 {
		return nil
	}
	if marker == nil {
		marker = services.ErrValidation
	}
	return services.Wrap(marker, "preflight", "checks", strings.Join(details, "; "), nil)
}
