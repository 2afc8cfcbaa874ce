package recognizer

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"reelsort/internal/media"
)

// tagPattern pairs a filename regex with the canonical tag it represents.
// First match wins within each table.
type tagPattern struct {
	re    *regexp.Regexp
	value string
}

var qualityPatterns = []tagPattern{
	{regexp.MustCompile(`(?i)\b(2160p?i?|4k|uhd)\b`), "2160p"},
	{regexp.MustCompile(`(?i)\b1080p?i?\b`), "1080p"},
	{regexp.MustCompile(`(?i)\b720p?i?\b`), "720p"},
	{regexp.MustCompile(`(?i)\b576p?i?\b`), "576p"},
	{regexp.MustCompile(`(?i)\b480p?i?\b`), "480p"},
}

var sourcePatterns = []tagPattern{
	{regexp.MustCompile(`(?i)\b(web-?dl)\b`), "WEB-DL"},
	{regexp.MustCompile(`(?i)\bwebrip\b`), "WEBRip"},
	{regexp.MustCompile(`(?i)\b(blu-?ray|bdrip|brrip)\b`), "BluRay"},
	{regexp.MustCompile(`(?i)\bhdtv\b`), "HDTV"},
	{regexp.MustCompile(`(?i)\b(dvdrip|dvd)\b`), "DVDRip"},
	{regexp.MustCompile(`(?i)\bremux\b`), "Remux"},
}

var codecPatterns = []tagPattern{
	{regexp.MustCompile(`(?i)\b(hevc|[hx]\.?265)\b`), "HEVC"},
	{regexp.MustCompile(`(?i)\b(avc|[hx]\.?264)\b`), "AVC"},
	{regexp.MustCompile(`(?i)\bvp9\b`), "VP9"},
	{regexp.MustCompile(`(?i)\bav1\b`), "AV1"},
}

var audioPatterns = []tagPattern{
	{regexp.MustCompile(`(?i)\batmos\b`), "Atmos"},
	{regexp.MustCompile(`(?i)\btruehd\b`), "TrueHD"},
	{regexp.MustCompile(`(?i)\bdts-?hd(\s*ma)?\b`), "DTS-HD MA"},
	{regexp.MustCompile(`(?i)\bdts\b`), "DTS"},
	{regexp.MustCompile(`(?i)\bdd[p+]?\s?5\.1\b`), "DD+5.1"},
	{regexp.MustCompile(`(?i)\baac\b`), "AAC"},
	{regexp.MustCompile(`(?i)\bflac\b`), "FLAC"},
}

var versionPatterns = []tagPattern{
	{regexp.MustCompile(`(?i)\bdirector'?s\.?\s?cut\b`), "Director's Cut"},
	{regexp.MustCompile(`(?i)\bextended\b`), "Extended"},
	{regexp.MustCompile(`(?i)\bunrated\b`), "Unrated"},
	{regexp.MustCompile(`(?i)\bimax\b`), "IMAX"},
	{regexp.MustCompile(`(?i)\bremastered\b`), "Remastered"},
	{regexp.MustCompile(`(?i)\bproper\b`), "PROPER"},
	{regexp.MustCompile(`(?i)\brepack\b`), "REPACK"},
}

var (
	yearRe = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)

	multiEpisodeRe  = regexp.MustCompile(`(?i)\bs(\d{1,2})\.?e(\d{1,3})-e?(\d{1,3})\b`)
	seasonEpisodeRe = regexp.MustCompile(`(?i)\bs(\d{1,2})\.?\s?ep?(\d{1,3})\b`)
	crossEpisodeRe  = regexp.MustCompile(`\b(\d{1,2})x(\d{1,3})\b`)
	seasonOnlyRe    = regexp.MustCompile(`(?i)\bs(?:eason\s*)?(\d{1,2})\b`)
	episodeOnlyRe   = regexp.MustCompile(`(?i)\bep?\.?\s?(\d{1,3})\b`)

	releaseGroupRe   = regexp.MustCompile(`-([A-Za-z0-9]+)$`)
	bracketedGroupRe = regexp.MustCompile(`\[([A-Za-z0-9]+)\]$`)

	bracketedTagRe = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)|\{[^}]*\}`)
	separatorRe    = regexp.MustCompile(`[._]+`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
	seasonTailRe   = regexp.MustCompile(`(?i)\bs\d{1,2}\.?\s?e?p?\d*.*$`)
)

// stripForTitle removes everything the tag tables recognize plus size
// annotations so the remaining text is the title guess.
var stripForTitle = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:2160|1440|1080|720|576|480|360|240)p?i?\b`),
	regexp.MustCompile(`(?i)\b4k\b|\buhd\b`),
	regexp.MustCompile(`(?i)\b(?:hevc|avc|[hx]\.?26[45]|vp9|av1)\b`),
	regexp.MustCompile(`(?i)\b(?:web-?dl|webrip|blu-?ray|bdrip|brrip|hdtv|dvdrip|remux)\b`),
	regexp.MustCompile(`(?i)\b(?:aac|ac3|dts(?:-?hd)?(?:\s*ma)?|flac|truehd|atmos|dd[p+]?[\d.]*|eac3)\b`),
	regexp.MustCompile(`(?i)\b(?:extended|unrated|imax|remastered|proper|repack)\b`),
	regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?\s*(?:gb|mb)\b`),
}

var titleCaser = cases.Title(language.Und)

// Parse reads everything the filename grammar can extract without consulting
// any collaborator. It is deterministic and safe to call concurrently.
func Parse(filename string) media.ParsedName {
	parsed := media.ParsedName{}
	name := trimExtension(filename)

	parsed.Quality = firstTag(qualityPatterns, name)
	parsed.Source = firstTag(sourcePatterns, name)
	parsed.Codec = firstTag(codecPatterns, name)
	parsed.Audio = firstTag(audioPatterns, name)
	parsed.Version = firstTag(versionPatterns, name)

	if m := yearRe.FindStringSubmatch(name); m != nil {
		parsed.Year, _ = strconv.Atoi(m[1])
	}

	if m := releaseGroupRe.FindStringSubmatch(name); m != nil {
		parsed.ReleaseGroup = m[1]
	} else if m := bracketedGroupRe.FindStringSubmatch(name); m != nil {
		parsed.ReleaseGroup = m[1]
	}

	parsed.Season, parsed.Episode, parsed.EndEpisode = parseEpisodes(name)
	parsed.Title = parseTitle(name)

	return parsed
}

// Ambiguous reports whether the parse alone is too weak to search with and
// the LLM collaborator should be consulted. A missing title is always
// ambiguous; for series a missing episode number is too, since season packs
// and specials routinely defeat the grammar.
func Ambiguous(parsed media.ParsedName, hint media.Type) bool {
	if strings.TrimSpace(parsed.Title) == "" {
		return true
	}
	if hint == media.TypeTV && !parsed.HasEpisode() {
		return true
	}
	if hint == media.TypeMovie && parsed.Year == 0 {
		return true
	}
	return false
}

func parseEpisodes(name string) (season, episode, endEpisode int) {
	if m := multiEpisodeRe.FindStringSubmatch(name); m != nil {
		season = atoi(m[1])
		episode = atoi(m[2])
		endEpisode = atoi(m[3])
		if endEpisode <= episode {
			endEpisode = 0
		}
		return season, episode, endEpisode
	}
	if m := seasonEpisodeRe.FindStringSubmatch(name); m != nil {
		return atoi(m[1]), atoi(m[2]), 0
	}
	if m := crossEpisodeRe.FindStringSubmatch(name); m != nil {
		return atoi(m[1]), atoi(m[2]), 0
	}

	// Season or episode alone. Season-only markers ("Season 2") are common on
	// directory names; bare E## markers on specials.
	if m := seasonOnlyRe.FindStringSubmatch(name); m != nil {
		season = atoi(m[1])
	}
	if m := episodeOnlyRe.FindStringSubmatch(name); m != nil {
		// Reject year-like values the episode pattern can shadow.
		if v := atoi(m[1]); v >= 1 && v <= 300 {
			episode = v
		}
	}
	return season, episode, 0
}

func parseTitle(name string) string {
	cleaned := bracketedTagRe.ReplaceAllString(name, " ")
	cleaned = seasonTailRe.ReplaceAllString(cleaned, " ")
	for _, re := range stripForTitle {
		cleaned = re.ReplaceAllString(cleaned, " ")
	}
	// The year terminates the title in almost every release name.
	if loc := yearRe.FindStringIndex(cleaned); loc != nil {
		cleaned = cleaned[:loc[0]]
	}
	cleaned = releaseGroupRe.ReplaceAllString(cleaned, " ")
	cleaned = separatorRe.ReplaceAllString(cleaned, " ")
	cleaned = strings.ReplaceAll(cleaned, "-", " ")
	cleaned = whitespaceRe.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return ""
	}
	return titleCaser.String(strings.ToLower(cleaned))
}

// CleanQuery produces the TMDB search string for a filename when neither the
// parser nor the LLM produced a usable title.
func CleanQuery(filename string) string {
	return parseTitle(trimExtension(filename))
}

func trimExtension(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx <= 0 {
		return filename
	}
	ext := filename[idx+1:]
	if len(ext) >= 2 && len(ext) <= 4 && isAlpha(ext) {
		return filename[:idx]
	}
	return filename
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return len(s) > 0
}

func firstTag(patterns []tagPattern, name string) string {
	for _, p := range patterns {
		if p.re.MatchString(name) {
			return p.value
		}
	}
	return ""
}

func atoi(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}
