package recognizer

import (
	"testing"

	"reelsort/internal/media"
)

func TestParseMovieRelease(t *testing.T) {
	parsed := Parse("The.Matrix.1999.1080p.BluRay.x264.DTS-FGT.mkv")

	if parsed.Title != "The Matrix" {
		t.Fatalf("title = %q, want %q", parsed.Title, "The Matrix")
	}
	if parsed.Year != 1999 {
		t.Fatalf("year = %d, want 1999", parsed.Year)
	}
	if parsed.Quality != "1080p" {
		t.Fatalf("quality = %q, want 1080p", parsed.Quality)
	}
	if parsed.Source != "BluRay" {
		t.Fatalf("source = %q, want BluRay", parsed.Source)
	}
	if parsed.Codec != "AVC" {
		t.Fatalf("codec = %q, want AVC", parsed.Codec)
	}
	if parsed.Audio != "DTS" {
		t.Fatalf("audio = %q, want DTS", parsed.Audio)
	}
	if parsed.ReleaseGroup != "FGT" {
		t.Fatalf("release group = %q, want FGT", parsed.ReleaseGroup)
	}
	if parsed.HasEpisode() {
		t.Fatal("movie release should not carry an episode")
	}
}

func TestParseEpisodeMarkers(t *testing.T) {
	cases := []struct {
		name       string
		filename   string
		season     int
		episode    int
		endEpisode int
	}{
		{"standard", "Breaking.Bad.S05E14.720p.HDTV.x264.mkv", 5, 14, 0},
		{"cross notation", "Breaking Bad 5x14 HDTV.mkv", 5, 14, 0},
		{"multi episode", "Show.S01E01-E03.1080p.WEB-DL.mkv", 1, 1, 3},
		{"lowercase", "show.s02e07.webrip.mkv", 2, 7, 0},
		{"season only", "Dark Season 2 Complete 1080p.mkv", 2, 0, 0},
		{"episode only", "Chernobyl E03.mkv", 0, 3, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			parsed := Parse(tc.filename)
			if parsed.Season != tc.season || parsed.Episode != tc.episode || parsed.EndEpisode != tc.endEpisode {
				t.Fatalf("parsed %s: season=%d episode=%d end=%d, want %d/%d/%d",
					tc.filename, parsed.Season, parsed.Episode, parsed.EndEpisode,
					tc.season, tc.episode, tc.endEpisode)
			}
		})
	}
}

func TestParseEpisodeOnlyRejectsHugeNumbers(t *testing.T) {
	parsed := Parse("One Piece E1024.mkv")
	if parsed.Episode != 0 {
		t.Fatalf("episode = %d, want 0 for value above the cap", parsed.Episode)
	}
}

func TestParseTitleStopsAtYear(t *testing.T) {
	parsed := Parse("Blade.Runner.2049.2017.2160p.WEB-DL.mkv")
	// The grammar cannot tell a title year from a release year; the first
	// match terminates the title, which is the documented tradeoff.
	if parsed.Year != 2049 {
		t.Fatalf("year = %d, want first year match 2049", parsed.Year)
	}
	if parsed.Title != "Blade Runner" {
		t.Fatalf("title = %q, want %q", parsed.Title, "Blade Runner")
	}
}

func TestParseSeriesTitleStopsAtEpisodeMarker(t *testing.T) {
	parsed := Parse("The.Expanse.S03E06.1080p.AMZN.WEB-DL.DDP5.1.H.264-NTb.mkv")
	if parsed.Title != "The Expanse" {
		t.Fatalf("title = %q, want %q", parsed.Title, "The Expanse")
	}
	if parsed.Season != 3 || parsed.Episode != 6 {
		t.Fatalf("season/episode = %d/%d, want 3/6", parsed.Season, parsed.Episode)
	}
}

func TestParseBracketedGroup(t *testing.T) {
	parsed := Parse("[SubsPlease] Frieren - 01 (1080p).mkv")
	if parsed.Quality != "1080p" {
		t.Fatalf("quality = %q, want 1080p", parsed.Quality)
	}
	if parsed.Title == "" {
		t.Fatal("expected a non-empty title after stripping brackets")
	}
}

func TestParseVersionTags(t *testing.T) {
	parsed := Parse("Aliens.1986.Extended.1080p.BluRay.mkv")
	if parsed.Version != "Extended" {
		t.Fatalf("version = %q, want Extended", parsed.Version)
	}
}

func TestAmbiguous(t *testing.T) {
	cases := []struct {
		name   string
		parsed media.ParsedName
		hint   media.Type
		want   bool
	}{
		{"empty title", media.ParsedName{}, media.TypeMovie, true},
		{"movie without year", media.ParsedName{Title: "Heat"}, media.TypeMovie, true},
		{"movie with year", media.ParsedName{Title: "Heat", Year: 1995}, media.TypeMovie, false},
		{"series without episode", media.ParsedName{Title: "Dark", Season: 2}, media.TypeTV, true},
		{"series with episode", media.ParsedName{Title: "Dark", Season: 2, Episode: 1}, media.TypeTV, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Ambiguous(tc.parsed, tc.hint); got != tc.want {
				t.Fatalf("Ambiguous = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTrimExtensionKeepsDottedTitles(t *testing.T) {
	if got := trimExtension("Mr. Robot S01E01"); got != "Mr. Robot S01E01" {
		// The trailing token is not a plausible extension.
		t.Fatalf("trimExtension = %q, want input unchanged", got)
	}
	if got := trimExtension("movie.mkv"); got != "movie" {
		t.Fatalf("trimExtension = %q, want %q", got, "movie")
	}
}
