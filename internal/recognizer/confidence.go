package recognizer

import (
	"regexp"
	"strings"

	"reelsort/internal/media"
)

// Scoring constants. Changing any of these changes which candidate wins and
// which confidence tier a match lands in, so they live in one place.
const (
	titleWeight = 3.0

	titleExact      = 1.0
	titleNormalized = 0.95
	titleContains   = 0.7

	yearExactBonus    = 2.0
	yearOffByOneBonus = 1.0

	episodeParsedBonus   = 1.0
	singleCandidateBonus = 0.5

	highThreshold   = 5.0
	mediumThreshold = 3.0
)

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9 ]+`)

// scoreCandidate rates how well a TMDB candidate explains the parsed
// filename. Higher is better.
func scoreCandidate(parsed media.ParsedName, candidate media.MediaCandidate, total int) float64 {
	score := titleWeight * titleSimilarity(parsed.Title, candidate.Title, candidate.OriginalTitle)

	if parsed.Year != 0 && candidate.Year != 0 {
		diff := parsed.Year - candidate.Year
		if diff < 0 {
			diff = -diff
		}
		switch diff {
		case 0:
			score += yearExactBonus
		case 1:
			score += yearOffByOneBonus
		}
	}

	if parsed.HasEpisode() {
		score += episodeParsedBonus
	}
	if total == 1 {
		score += singleCandidateBonus
	}
	return score
}

// titleSimilarity compares the parsed title against both the localized and
// the original candidate title and keeps the better of the two.
func titleSimilarity(parsed string, titles ...string) float64 {
	normParsed := normalizeTitle(parsed)
	if normParsed == "" {
		return 0
	}
	best := 0.0
	for _, title := range titles {
		normTitle := normalizeTitle(title)
		if normTitle == "" {
			continue
		}
		var sim float64
		switch {
		case strings.EqualFold(parsed, title):
			sim = titleExact
		case normParsed == normTitle:
			sim = titleNormalized
		case strings.Contains(normTitle, normParsed) || strings.Contains(normParsed, normTitle):
			sim = titleContains
		default:
			sim = titleContains * tokenOverlap(normParsed, normTitle)
		}
		if sim > best {
			best = sim
		}
	}
	return best
}

// tokenOverlap is the fraction of parsed-title tokens present in the
// candidate title. A coarse measure, but it only decides ties below the
// contains tier.
func tokenOverlap(a, b string) float64 {
	aTokens := strings.Fields(a)
	if len(aTokens) == 0 {
		return 0
	}
	bSet := make(map[string]struct{})
	for _, tok := range strings.Fields(b) {
		bSet[tok] = struct{}{}
	}
	matched := 0
	for _, tok := range aTokens {
		if _, ok := bSet[tok]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(aTokens))
}

func normalizeTitle(s string) string {
	s = strings.ToLower(s)
	s = nonAlnumRe.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// selectBestCandidate picks the highest-scoring candidate, with TMDB
// popularity as the final tiebreak. Returns nil when candidates is empty.
func selectBestCandidate(parsed media.ParsedName, candidates []media.MediaCandidate) (*media.MediaCandidate, float64) {
	if len(candidates) == 0 {
		return nil, 0
	}
	bestIdx := 0
	bestScore := scoreCandidate(parsed, candidates[0], len(candidates))
	for i := 1; i < len(candidates); i++ {
		score := scoreCandidate(parsed, candidates[i], len(candidates))
		if score > bestScore || (score == bestScore && candidates[i].Popularity > candidates[bestIdx].Popularity) {
			bestIdx = i
			bestScore = score
		}
	}
	return &candidates[bestIdx], bestScore
}

// Classify maps a match score onto the confidence tier used everywhere
// downstream.
func Classify(score float64) media.Confidence {
	switch {
	case score >= highThreshold:
		return media.ConfidenceHigh
	case score >= mediumThreshold:
		return media.ConfidenceMedium
	default:
		return media.ConfidenceLow
	}
}
