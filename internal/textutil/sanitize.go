package textutil

import "strings"

// fileNameReplacer replaces filesystem-unsafe characters in path segments.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
	"\x00", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a file or
// directory name. Slashes, backslashes, colons, and asterisks become dashes;
// other unsafe characters are removed. Leading dots are dropped so the result
// never names a hidden file or a relative path component.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	name = collapseSpaces(fileNameReplacer.Replace(name))
	return strings.TrimSpace(strings.TrimLeft(name, "."))
}
