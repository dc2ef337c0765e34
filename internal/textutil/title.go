package textutil

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UnknownArtist is returned by ParseArtistAlbum when the title has no separator.
const UnknownArtist = "Unknown Artist"

var (
	fullAlbumPattern            = regexp.MustCompile(`(?i)\s*[\[(]full\s+album[\])].*$`)
	fullAlbumUnbracketedPattern = regexp.MustCompile(`(?i)\s*-\s*full\s+album\s*$`)
	bracketGroupPattern         = regexp.MustCompile(`\[.*?\]|\(.*?\)`)
	whitespacePattern           = regexp.MustCompile(`\s+`)
	trackPrefixPattern          = regexp.MustCompile(`^\s*(?:(?i:track)\s+\d+\s*[-–—.:)]?|\d+\s*[-–—.:)])\s+`)
)

var (
	upperCaser = cases.Upper(language.Und)
	lowerCaser = cases.Lower(language.Und)
)

// titleUnsafeReplacer maps filesystem-unsafe characters in track titles to underscores.
var titleUnsafeReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
)

// CleanTrackTitle turns a raw chapter title into a track title. Leading
// numbering ("Track 5:", "01.", "3 -", "2)") is removed, filesystem-unsafe
// characters become underscores and whitespace is collapsed. When nothing
// remains, placeholder is returned.
func CleanTrackTitle(raw, placeholder string) string {
	title := trackPrefixPattern.ReplaceAllString(raw, "")
	title = titleUnsafeReplacer.Replace(title)
	title = collapseSpaces(title)
	if title == "" {
		return placeholder
	}
	return title
}

// CleanFolderName normalizes a raw video title into a folder-friendly name:
// "MARIGOLD - Oblivion Gate [Full Album] (70s Rock)" becomes
// "Marigold - Oblivion Gate".
func CleanFolderName(name string) string {
	cleaned := fullAlbumPattern.ReplaceAllString(name, "")
	cleaned = bracketGroupPattern.ReplaceAllString(cleaned, "")
	cleaned = strings.NewReplacer("_", "-", "|", "-", "/", "-").Replace(cleaned)
	cleaned = fullAlbumUnbracketedPattern.ReplaceAllString(cleaned, "")

	words := strings.Fields(cleaned)
	for i, word := range words {
		words[i] = capitalizeWord(word)
	}
	cleaned = strings.Join(words, " ")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.Trim(cleaned, "-")
	return strings.TrimSpace(cleaned)
}

// ParseArtistAlbum splits a video title into artist and album. The first
// " - " wins; " | " is only consulted when no dash separator exists. Emoji and
// other unicode separators are never split points. Titles without a separator
// yield UnknownArtist and the cleaned title as album.
func ParseArtistAlbum(title string) (artist, album string) {
	cleaned := fullAlbumPattern.ReplaceAllString(title, "")
	cleaned = bracketGroupPattern.ReplaceAllString(cleaned, "")

	for _, sep := range []string{" - ", " | "} {
		if left, right, ok := strings.Cut(cleaned, sep); ok {
			// Only the first two segments count: "A - B - C" is artist A, album B.
			if extra := strings.Index(right, sep); extra >= 0 {
				right = right[:extra]
			}
			artist = CleanFolderName(strings.TrimSpace(left))
			album = CleanFolderName(strings.TrimSpace(right))
			if artist != "" && album != "" {
				return artist, album
			}
		}
	}
	return UnknownArtist, CleanFolderName(strings.TrimSpace(cleaned))
}

func capitalizeWord(word string) string {
	for i := range word {
		if i == 0 {
			continue
		}
		return upperCaser.String(word[:i]) + lowerCaser.String(word[i:])
	}
	return upperCaser.String(word)
}

func collapseSpaces(value string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(value, " "))
}
