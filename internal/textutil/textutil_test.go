package textutil

import "testing"

func TestCleanTrackTitle(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		placeholder string
		want        string
	}{
		{"dash prefix", "1 - Song Name", "Track 1", "Song Name"},
		{"track prefix", "Track 5: Another Song", "Track 5", "Another Song"},
		{"dotted prefix", "01. Opening", "Track 1", "Opening"},
		{"paren prefix", "2) Second", "Track 2", "Second"},
		{"unsafe characters", "Invalid/Characters:Here", "Track 1", "Invalid_Characters_Here"},
		{"collapses whitespace", "  Main    Theme  ", "Track 2", "Main Theme"},
		{"empty falls back", "   ", "Track 3", "Track 3"},
		{"number only kept", "1999", "Track 1", "1999"},
		{"number in title kept", "7 Seconds", "Track 4", "7 Seconds"},
		{"leading count kept", "50 Ways to Leave Your Lover", "Track 2", "50 Ways to Leave Your Lover"},
		{"track word without separator", "Track 3 Overture", "Track 3", "Overture"},
		{"track word with dash", "Track 3 - Overture", "Track 3", "Overture"},
		{"emoji kept", "Sunrise 🌅 Intro", "Track 1", "Sunrise 🌅 Intro"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanTrackTitle(tt.raw, tt.placeholder); got != tt.want {
				t.Fatalf("CleanTrackTitle(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCleanFolderName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"MARIGOLD - Oblivion Gate [Full Album] (70s Psychedelic Blues Acid Rock)", "Marigold - Oblivion Gate"},
		{"Artist_Name - Album_Title [2024]", "Artist-name - Album-title"},
		{"test_album (bonus tracks) [remastered]", "Test-album"},
		{"PURPLE DREAMS - WANDERING SHADOWS (FULL ALBUM) | 70s Progressive/Psychedelic Rock", "Purple Dreams - Wandering Shadows"},
		{"Chronomancer | MAGNUM OPUS | FULL ALBUM (Progressive Rock)", "Chronomancer - Magnum Opus"},
		{"Artist Name - Album Name - Full Album", "Artist Name - Album Name"},
		{"- stray -", "Stray"},
	}
	for _, tt := range tests {
		if got := CleanFolderName(tt.in); got != tt.want {
			t.Errorf("CleanFolderName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseArtistAlbum(t *testing.T) {
	tests := []struct {
		title      string
		wantArtist string
		wantAlbum  string
	}{
		{"Pink Floyd - Dark Side [1973]", "Pink Floyd", "Dark Side"},
		{"Chronomancer | Magnum Opus", "Chronomancer", "Magnum Opus"},
		{"Band - Album | Live", "Band", "Album - Live"},
		{"Band - Album - Extra", "Band", "Album"},
		{"Just A Title (FULL ALBUM)", UnknownArtist, "Just A Title"},
		{"Artist 🎵 Album", UnknownArtist, "Artist 🎵 Album"},
	}
	for _, tt := range tests {
		artist, album := ParseArtistAlbum(tt.title)
		if artist != tt.wantArtist || album != tt.wantAlbum {
			t.Errorf("ParseArtistAlbum(%q) = (%q, %q), want (%q, %q)", tt.title, artist, album, tt.wantArtist, tt.wantAlbum)
		}
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"AC/DC - Back: In Black", "AC-DC - Back- In Black"},
		{"What? <Live>", "What Live"},
		{"..hidden", "hidden"},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := SanitizeFileName(tt.in); got != tt.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExpandTemplate(t *testing.T) {
	fields := TrackFields{Number: 3, Title: "Outro", Artist: "Band", Album: "Record"}
	tests := []struct {
		format string
		want   string
	}{
		{"%n - %t", "03 - Outro"},
		{"%a - %A", "Band - Record"},
		{"%t (%a)", "Outro (Band)"},
		{"100%% %t", "100% Outro"},
		{"%x %t %", "%x Outro %"},
		{"%a/%t", "Band-Outro"},
	}
	for _, tt := range tests {
		if got := ExpandTemplate(tt.format, fields); got != tt.want {
			t.Errorf("ExpandTemplate(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{90, "1m 30s"},
		{3661, "1h 01m 01s"},
		{45.9, "0m 45s"},
		{-4, "0m 00s"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.seconds); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestPlural(t *testing.T) {
	if got := Plural(1, "track", "tracks"); got != "track" {
		t.Fatalf("Plural(1) = %q", got)
	}
	if got := Plural(0, "track", "tracks"); got != "tracks" {
		t.Fatalf("Plural(0) = %q", got)
	}
}
