package recognizer

import (
	"testing"

	"reelsort/internal/media"
)

func TestScoreExactTitleAndYearIsHigh(t *testing.T) {
	parsed := media.ParsedName{Title: "The Matrix", Year: 1999}
	candidate := media.MediaCandidate{Title: "The Matrix", Year: 1999}

	score := scoreCandidate(parsed, candidate, 1)
	if Classify(score) != media.ConfidenceHigh {
		t.Fatalf("score %.2f classified %s, want high", score, Classify(score))
	}
}

func TestScoreYearOffByOne(t *testing.T) {
	parsed := media.ParsedName{Title: "The Matrix", Year: 2000}
	candidate := media.MediaCandidate{Title: "The Matrix", Year: 1999}

	exact := scoreCandidate(media.ParsedName{Title: "The Matrix", Year: 1999}, candidate, 2)
	offByOne := scoreCandidate(parsed, candidate, 2)
	if offByOne >= exact {
		t.Fatalf("off-by-one score %.2f should be below exact-year score %.2f", offByOne, exact)
	}
	if offByOne != exact-yearExactBonus+yearOffByOneBonus {
		t.Fatalf("off-by-one score %.2f, want %.2f", offByOne, exact-yearExactBonus+yearOffByOneBonus)
	}
}

func TestScoreUsesOriginalTitle(t *testing.T) {
	parsed := media.ParsedName{Title: "Le Fabuleux Destin D'Amelie Poulain"}
	candidate := media.MediaCandidate{
		Title:         "Amelie",
		OriginalTitle: "Le Fabuleux Destin d'Amelie Poulain",
	}

	score := scoreCandidate(parsed, candidate, 1)
	localizedOnly := scoreCandidate(parsed, media.MediaCandidate{Title: "Amelie"}, 1)
	if score <= localizedOnly {
		t.Fatalf("original-title score %.2f should beat localized-only %.2f", score, localizedOnly)
	}
}

func TestClassifyThresholds(t *testing.T) {
	cases := []struct {
		score float64
		want  media.Confidence
	}{
		{5.0, media.ConfidenceHigh},
		{6.5, media.ConfidenceHigh},
		{4.99, media.ConfidenceMedium},
		{3.0, media.ConfidenceMedium},
		{2.99, media.ConfidenceLow},
		{0, media.ConfidenceLow},
	}
	for _, tc := range cases {
		if got := Classify(tc.score); got != tc.want {
			t.Fatalf("Classify(%.2f) = %s, want %s", tc.score, got, tc.want)
		}
	}
}

func TestSelectBestCandidatePrefersTitleAndYear(t *testing.T) {
	parsed := media.ParsedName{Title: "Dune", Year: 2021}
	candidates := []media.MediaCandidate{
		{TMDBID: 841, Title: "Dune", Year: 1984, Popularity: 40},
		{TMDBID: 438631, Title: "Dune", Year: 2021, Popularity: 90},
		{TMDBID: 9999, Title: "Dune Drifter", Year: 2020, Popularity: 5},
	}

	best, score := selectBestCandidate(parsed, candidates)
	if best == nil || best.TMDBID != 438631 {
		t.Fatalf("best = %+v, want the 2021 release", best)
	}
	if Classify(score) != media.ConfidenceHigh {
		t.Fatalf("score %.2f classified %s, want high", score, Classify(score))
	}
}

func TestSelectBestCandidateBreaksTiesByPopularity(t *testing.T) {
	parsed := media.ParsedName{Title: "Hamlet"}
	candidates := []media.MediaCandidate{
		{TMDBID: 1, Title: "Hamlet", Popularity: 3},
		{TMDBID: 2, Title: "Hamlet", Popularity: 12},
	}

	best, _ := selectBestCandidate(parsed, candidates)
	if best.TMDBID != 2 {
		t.Fatalf("best TMDB id = %d, want the more popular 2", best.TMDBID)
	}
}

func TestSelectBestCandidateEmpty(t *testing.T) {
	best, score := selectBestCandidate(media.ParsedName{Title: "x"}, nil)
	if best != nil || score != 0 {
		t.Fatalf("expected nil candidate for empty slice, got %+v score %.2f", best, score)
	}
}

func TestTitleSimilarityTiers(t *testing.T) {
	exact := titleSimilarity("Heat", "Heat")
	normalized := titleSimilarity("Spider Man", "Spider-Man")
	contains := titleSimilarity("Matrix", "The Matrix")
	unrelated := titleSimilarity("Heat", "Frozen")

	if exact != titleExact {
		t.Fatalf("exact similarity = %.2f, want %.2f", exact, titleExact)
	}
	if normalized != titleNormalized {
		t.Fatalf("normalized similarity = %.2f, want %.2f", normalized, titleNormalized)
	}
	if contains != titleContains {
		t.Fatalf("contains similarity = %.2f, want %.2f", contains, titleContains)
	}
	if unrelated != 0 {
		t.Fatalf("unrelated similarity = %.2f, want 0", unrelated)
	}
}
