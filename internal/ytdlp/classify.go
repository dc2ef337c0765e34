package ytdlp

import (
	"strings"
)

// Class groups yt-dlp failures by what the user can do about them.
type Class string

const (
	ClassAuth          Class = "auth"
	ClassAgeRestricted Class = "age_restricted"
	ClassGeoRestricted Class = "geo_restricted"
	ClassUnavailable   Class = "unavailable"
	ClassNetwork       Class = "network"
	ClassInvalidURL    Class = "invalid_url"
	ClassOutdated      Class = "outdated"
	ClassUnknown       Class = "unknown"
)

const (
	maxCleanedMessage = 200
	unknownFailure    = "yt-dlp failed with an unknown error"
)

// Classification is a user-facing reading of raw yt-dlp error output.
type Classification struct {
	Class   Class
	Message string
	Hint    string
}

type rule struct {
	class    Class
	keywords []string
	message  string
	hint     string
}

// Order matters: the first rule with a matching keyword wins.
var rules = []rule{
	{
		class:    ClassAuth,
		keywords: []string{"members-only", "this video is only available", "join this channel", "private video", "sign in to confirm"},
		message:  "This video requires authentication (member-only or private content)",
		hint:     "The video cannot be downloaded anonymously. Check that it is public.",
	},
	{
		class:    ClassAgeRestricted,
		keywords: []string{"age-restricted", "age restricted"},
		message:  "This video is age-restricted",
		hint:     "Age-restricted videos require a signed-in, age-verified account.",
	},
	{
		class:    ClassGeoRestricted,
		keywords: []string{"not available in your country", "geo-restricted", "blocked in your country"},
		message:  "This video is not available in your country (geo-restricted)",
		hint:     "You may need to use a VPN or proxy to access this content.",
	},
	{
		class:    ClassUnavailable,
		keywords: []string{"video unavailable", "has been removed", "this video is no longer available"},
		message:  "This video is no longer available (deleted or made private)",
	},
	{
		class:    ClassOutdated,
		keywords: []string{"older than 90 days", "please update", "nsig extraction failed"},
		message:  "yt-dlp is out of date",
		hint:     "Update yt-dlp (for example: pip install -U yt-dlp) and try again.",
	},
	{
		class:    ClassNetwork,
		keywords: []string{"unable to download", "http error", "connection", "timeout", "timed out", "deadline exceeded"},
		message:  "Network error while downloading",
		hint:     "Check your internet connection and try again.",
	},
	{
		class:    ClassInvalidURL,
		keywords: []string{"invalid url", "unsupported url", "is not a valid url"},
		message:  "Invalid or unsupported video URL",
		hint:     "Make sure you are using a valid video URL.",
	},
}

// Classify maps raw yt-dlp stderr to a class, a message, and an optional hint.
// Output that matches no rule yields ClassUnknown with a cleaned message.
func Classify(raw string) Classification {
	lower := strings.ToLower(raw)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return Classification{Class: r.class, Message: r.message, Hint: r.hint}
			}
		}
	}
	return Classification{Class: ClassUnknown, Message: cleanMessage(raw)}
}

// cleanMessage keeps the first three relevant lines without yt-dlp prefixes.
// ERROR lines are preferred when present since the captured tail usually
// starts with progress chatter.
func cleanMessage(raw string) string {
	var all, errs []string
	for line := range strings.SplitSeq(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		all = append(all, line)
		if strings.Contains(line, "ERROR:") {
			errs = append(errs, line)
		}
	}
	lines := all
	if len(errs) > 0 {
		lines = errs
	}
	if len(lines) > 3 {
		lines = lines[:3]
	}

	cleaned := strings.Join(lines, " ")
	for _, prefix := range []string{"ERROR:", "[youtube]", "[download]"} {
		cleaned = strings.ReplaceAll(cleaned, prefix, "")
	}
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if runes := []rune(cleaned); len(runes) > maxCleanedMessage {
		cleaned = string(runes[:maxCleanedMessage-3]) + "..."
	}
	if cleaned == "" {
		return unknownFailure
	}
	return cleaned
}

// String renders the classification for terminal output.
func (c Classification) String() string {
	if c.Hint == "" {
		return c.Message
	}
	return c.Message + " (" + c.Hint + ")"
}
