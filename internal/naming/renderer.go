package naming

import (
	"fmt"
	"regexp"
	"strings"

	"reelsort/internal/media"
	"reelsort/internal/services"
)

// tokenRe matches a template token like {title} or {season:02d}. Only
// numeric tokens accept a format specifier.
var tokenRe = regexp.MustCompile(`\{([a-z_]+)(?::(0?\d+)d)?\}`)

// Tokens that must produce a value when the template names them. A movie
// template naming {season} against a movie is a template bug, not something
// to paper over.
var requiredTokens = map[string]bool{
	"title":   true,
	"year":    true,
	"tmdb_id": true,
	"season":  true,
	"episode": true,
	"ext":     true,
}

var optionalTokens = map[string]bool{
	"original_title": true,
	"end_episode":    true,
	"quality":        true,
	"source":         true,
	"codec":          true,
	"audio":          true,
	"version":        true,
}

var numericTokens = map[string]bool{
	"year":        true,
	"tmdb_id":     true,
	"season":      true,
	"episode":     true,
	"end_episode": true,
}

// Render expands a naming template against recognized media info and the
// source file, returning a storage-relative target path with forward-slash
// separators. Rendering is pure: same inputs, same path.
func Render(template string, info *media.MediaInfo, file media.FileInfo) (string, error) {
	if info == nil {
		return "", renderErr(template, "no media info to render with")
	}
	if strings.TrimSpace(template) == "" {
		return "", renderErr(template, "template is empty")
	}

	var problems []string
	rendered := tokenRe.ReplaceAllStringFunc(template, func(match string) string {
		groups := tokenRe.FindStringSubmatch(match)
		name, spec := groups[1], groups[2]

		value, present, err := tokenValue(name, spec, info, file)
		if err != nil {
			problems = append(problems, err.Error())
			return ""
		}
		if !present {
			if requiredTokens[name] {
				problems = append(problems, fmt.Sprintf("required token {%s} has no value", name))
			}
			return ""
		}
		return value
	})
	if stray := strings.IndexAny(rendered, "{}"); stray >= 0 {
		problems = append(problems, "unbalanced braces in template")
	}
	if len(problems) > 0 {
		return "", renderErr(template, strings.Join(problems, "; "))
	}

	cleaned, err := cleanPath(rendered)
	if err != nil {
		return "", renderErr(template, err.Error())
	}
	return cleaned, nil
}

// ValidateTemplate probe-renders the template against fully populated media
// info so unknown tokens and malformed specifiers surface at rule-creation
// time.
func ValidateTemplate(template string) error {
	probe := &media.MediaInfo{
		MediaType:     media.TypeTV,
		Title:         "Title",
		OriginalTitle: "Original Title",
		Year:          2000,
		TMDBID:        1,
		Season:        1,
		Episode:       1,
		EndEpisode:    2,
		Quality:       "1080p",
		Source:        "WEB-DL",
		Codec:         "HEVC",
		Audio:         "AAC",
		Version:       "Extended",
	}
	file := media.NewFileInfo("/probe/probe.mkv", 0, false)
	_, err := Render(template, probe, file)
	return err
}

func tokenValue(name, spec string, info *media.MediaInfo, file media.FileInfo) (string, bool, error) {
	if !requiredTokens[name] && !optionalTokens[name] {
		return "", false, fmt.Errorf("unknown token {%s}", name)
	}
	if spec != "" && !numericTokens[name] {
		return "", false, fmt.Errorf("token {%s} does not accept a format specifier", name)
	}

	if numericTokens[name] {
		var value int64
		switch name {
		case "year":
			value = int64(info.Year)
		case "tmdb_id":
			value = info.TMDBID
		case "season":
			value = int64(info.Season)
		case "episode":
			value = int64(info.Episode)
		case "end_episode":
			value = int64(info.EndEpisode)
		}
		if value == 0 {
			return "", false, nil
		}
		return formatNumber(value, spec), true, nil
	}

	var value string
	switch name {
	case "title":
		value = info.Title
	case "original_title":
		value = info.OriginalTitle
	case "quality":
		value = info.Quality
	case "source":
		value = info.Source
	case "codec":
		value = info.Codec
	case "audio":
		value = info.Audio
	case "version":
		value = info.Version
	case "ext":
		value = file.Extension
	}
	if strings.TrimSpace(value) == "" {
		return "", false, nil
	}
	return sanitizeComponent(value), true, nil
}

// formatNumber zero-pads to the requested width. Values wider than the pad
// are never truncated.
func formatNumber(value int64, spec string) string {
	if spec == "" {
		return fmt.Sprintf("%d", value)
	}
	width := 0
	for _, r := range strings.TrimPrefix(spec, "0") {
		width = width*10 + int(r-'0')
	}
	if strings.HasPrefix(spec, "0") {
		return fmt.Sprintf("%0*d", width, value)
	}
	return fmt.Sprintf("%*d", width, value)
}

func renderErr(template, message string) error {
	return services.Wrap(services.ErrRender, "naming", "render",
		fmt.Sprintf("template %q: %s", template, message), nil)
}
