package naming

import (
	"errors"
	"strings"
	"testing"

	"reelsort/internal/media"
	"reelsort/internal/services"
)

func movieInfo() *media.MediaInfo {
	return &media.MediaInfo{
		MediaType: media.TypeMovie,
		Title:     "The Matrix",
		Year:      1999,
		TMDBID:    603,
		Quality:   "1080p",
		Source:    "BluRay",
	}
}

func episodeInfo() *media.MediaInfo {
	return &media.MediaInfo{
		MediaType: media.TypeTV,
		Title:     "Breaking Bad",
		Year:      2008,
		TMDBID:    1396,
		Season:    5,
		Episode:   14,
	}
}

func srcFile(name string) media.FileInfo {
	return media.NewFileInfo("/downloads/"+name, 1<<30, false)
}

func TestRenderMovieTemplate(t *testing.T) {
	got, err := Render("Movies/{title} ({year})/{title} ({year}) [{quality}].{ext}",
		movieInfo(), srcFile("the.matrix.mkv"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "Movies/The Matrix (1999)/The Matrix (1999) [1080p].mkv"
	if got != want {
		t.Fatalf("rendered %q, want %q", got, want)
	}
}

func TestRenderEpisodeZeroPadding(t *testing.T) {
	got, err := Render("TV/{title}/Season {season:02d}/{title} S{season:02d}E{episode:02d}.{ext}",
		episodeInfo(), srcFile("bb.mkv"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "TV/Breaking Bad/Season 05/Breaking Bad S05E14.mkv"
	if got != want {
		t.Fatalf("rendered %q, want %q", got, want)
	}
}

func TestRenderPaddingNeverTruncates(t *testing.T) {
	info := episodeInfo()
	info.Episode = 114
	got, err := Render("E{episode:02d}.{ext}", info, srcFile("x.mkv"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "E114.mkv" {
		t.Fatalf("rendered %q, want E114.mkv", got)
	}
}

func TestRenderMissingRequiredToken(t *testing.T) {
	// A movie has no season; a template that demands one must fail loudly.
	_, err := Render("TV/{title}/S{season:02d}E{episode:02d}.{ext}", movieInfo(), srcFile("x.mkv"))
	if !errors.Is(err, services.ErrRender) {
		t.Fatalf("err = %v, want render marker", err)
	}
	if err == nil || !strings.Contains(err.Error(), "{season}") {
		t.Fatalf("error should name the missing token: %v", err)
	}
}

func TestRenderOptionalTokenFoldsAway(t *testing.T) {
	info := movieInfo()
	info.Quality = ""

	got, err := Render("Movies/{title} ({year}) [{quality}].{ext}", info, srcFile("x.mkv"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "Movies/The Matrix (1999).mkv" {
		t.Fatalf("rendered %q, empty optional token should leave no residue", got)
	}
}

func TestRenderCollapsesDoubledSeparators(t *testing.T) {
	info := movieInfo()
	info.Quality = ""
	info.Source = ""

	got, err := Render("Movies/{title}.{quality}.{source}.{ext}", info, srcFile("x.mkv"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "Movies/The Matrix.mkv" {
		t.Fatalf("rendered %q, want %q", got, "Movies/The Matrix.mkv")
	}
}

func TestRenderUnknownToken(t *testing.T) {
	_, err := Render("Movies/{titel}.{ext}", movieInfo(), srcFile("x.mkv"))
	if !errors.Is(err, services.ErrRender) {
		t.Fatalf("err = %v, want render marker", err)
	}
}

func TestRenderSanitizesTitleCharacters(t *testing.T) {
	info := movieInfo()
	info.Title = `Mission: Impossible / Fallout?`

	got, err := Render("Movies/{title} ({year}).{ext}", info, srcFile("x.mkv"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "Movies/Mission： Impossible ／ Fallout？ (1999).mkv"
	if got != want {
		t.Fatalf("rendered %q, want %q", got, want)
	}
	if strings.ContainsAny(got, `:?\*<>|"`) {
		t.Fatalf("unsafe characters leaked into %q", got)
	}
}

func TestRenderStripsControlCharacters(t *testing.T) {
	info := movieInfo()
	info.Title = "The\x00 Matrix\n\tReloaded\x07"

	got, err := Render("Movies/{title} ({year}).{ext}", info, srcFile("x.mkv"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "Movies/The Matrix Reloaded (1999).mkv"
	if got != want {
		t.Fatalf("rendered %q, want %q", got, want)
	}
}

func TestRenderRejectsTraversal(t *testing.T) {
	_, err := Render("../{title}.{ext}", movieInfo(), srcFile("x.mkv"))
	if !errors.Is(err, services.ErrRender) {
		t.Fatalf("err = %v, want render marker for traversal", err)
	}
}

func TestRenderDeterministic(t *testing.T) {
	template := "Movies/{title} ({year})/{title}.{ext}"
	first, err := Render(template, movieInfo(), srcFile("x.mkv"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	second, err := Render(template, movieInfo(), srcFile("x.mkv"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if first != second {
		t.Fatalf("renders differ: %q vs %q", first, second)
	}
}

func TestValidateTemplate(t *testing.T) {
	cases := []struct {
		name     string
		template string
		ok       bool
	}{
		{"movie", "Movies/{title} ({year})/{title}.{ext}", true},
		{"episode", "TV/{title}/S{season:02d}E{episode:02d}.{ext}", true},
		{"optional tags", "Movies/{title} [{quality}][{source}].{ext}", true},
		{"unknown token", "Movies/{foo}.{ext}", false},
		{"spec on string token", "Movies/{title:02d}.{ext}", false},
		{"empty", "   ", false},
		{"traversal", "../escape/{title}.{ext}", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateTemplate(tc.template)
			if tc.ok && err != nil {
				t.Fatalf("ValidateTemplate(%q): %v", tc.template, err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("ValidateTemplate(%q) accepted an invalid template", tc.template)
			}
		})
	}
}
