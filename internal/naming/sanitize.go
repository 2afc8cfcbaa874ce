package naming

import (
	"errors"
	"regexp"
	"strings"
)

// Characters that are unsafe in file names on at least one supported
// backend, replaced with their full-width lookalikes so titles keep their
// punctuation.
var componentReplacer = strings.NewReplacer(
	":", "：",
	"/", "／",
	"\\", "＼",
	"?", "？",
	"*", "＊",
	"<", "＜",
	">", "＞",
	"|", "｜",
	`"`, "＂",
)

var (
	multiSpaceRe  = regexp.MustCompile(`\s+`)
	multiDotRe    = regexp.MustCompile(`\.{2,}`)
	emptyPairRe   = regexp.MustCompile(`\(\s*\)|\[\s*\]|\{\s*\}`)
	danglingSepRe = regexp.MustCompile(`(\s-\s*)+$`)
)

// sanitizeComponent makes a single token value safe to embed in a path
// element. Separators inside values are content, not structure; control
// characters have no printable stand-in and are dropped.
func sanitizeComponent(value string) string {
	value = strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			return ' '
		case r < 0x20 || r == 0x7f:
			return -1
		}
		return r
	}, value)
	value = componentReplacer.Replace(value)
	value = multiSpaceRe.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}

// cleanPath normalizes a rendered template into its final relative form:
// empty elements collapse, folded optional tokens leave no doubled
// separators behind, and traversal elements are rejected outright.
// cleanPath is idempotent.
func cleanPath(rendered string) (string, error) {
	elements := strings.Split(rendered, "/")
	cleaned := make([]string, 0, len(elements))
	for _, element := range elements {
		if strings.TrimSpace(element) == ".." {
			return "", errors.New("path traversal element")
		}
		element = cleanElement(element)
		if element == "" || element == "." {
			continue
		}
		cleaned = append(cleaned, element)
	}
	if len(cleaned) == 0 {
		return "", errors.New("rendered path is empty")
	}
	return strings.Join(cleaned, "/"), nil
}

func cleanElement(element string) string {
	element = emptyPairRe.ReplaceAllString(element, " ")
	element = multiSpaceRe.ReplaceAllString(element, " ")
	element = strings.ReplaceAll(element, " .", ".")
	element = multiDotRe.ReplaceAllString(element, ".")
	element = danglingSepRe.ReplaceAllString(element, "")
	element = strings.Trim(element, " .")
	element = strings.TrimRight(element, "-")
	return strings.TrimSpace(element)
}
