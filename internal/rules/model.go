package rules

import (
	"fmt"
	"path"
	"strings"
	"time"

	"reelsort/internal/media"
	"reelsort/internal/services"
)

// Condition fields a rule may test. Genre, country, language and network
// read recognized metadata; keyword reads the original filename.
const (
	FieldGenre    = "genre"
	FieldCountry  = "country"
	FieldLanguage = "language"
	FieldKeyword  = "keyword"
	FieldNetwork  = "network"
)

// Condition operators.
const (
	OpEquals   = "equals"
	OpContains = "contains"
	OpIn       = "in"
	OpMatches  = "matches"
)

var validFields = map[string]bool{
	FieldGenre:    true,
	FieldCountry:  true,
	FieldLanguage: true,
	FieldKeyword:  true,
	FieldNetwork:  true,
}

var validOperators = map[string]bool{
	OpEquals:   true,
	OpContains: true,
	OpIn:       true,
	OpMatches:  true,
}

// Condition is a single field test. All comparisons are case-insensitive.
// Value carries the operand for equals/contains/matches; Values carries the
// operand list for in.
type Condition struct {
	Field    string   `json:"field"`
	Operator string   `json:"operator"`
	Value    string   `json:"value,omitempty"`
	Values   []string `json:"values,omitempty"`
}

// Rule routes recognized files to a library path. A rule applies when its
// media and storage filters accept the item and every condition holds; a
// rule with no conditions is a catch-all.
type Rule struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Priority    int         `json:"priority"`
	Enabled     bool        `json:"enabled"`
	MediaType   string      `json:"media_type"`
	StorageType string      `json:"storage_type"`
	Conditions  []Condition `json:"conditions"`
	Template    string      `json:"template"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// TemplateValidator probe-renders a naming template so invalid templates are
// rejected at rule creation rather than at transfer time.
type TemplateValidator func(template string) error

// Validate checks the rule's shape. A nil validateTemplate skips the
// template probe.
func (r Rule) Validate(validateTemplate TemplateValidator) error {
	var problems []string

	if strings.TrimSpace(r.Name) == "" {
		problems = append(problems, "name is required")
	}
	if strings.TrimSpace(r.Template) == "" {
		problems = append(problems, "template is required")
	}
	if r.Priority < 0 {
		problems = append(problems, "priority must not be negative")
	}
	switch strings.ToLower(strings.TrimSpace(r.MediaType)) {
	case "", "all", string(media.TypeMovie), string(media.TypeTV):
	default:
		problems = append(problems, fmt.Sprintf("unknown media type %q", r.MediaType))
	}
	storage := strings.ToLower(strings.TrimSpace(r.StorageType))
	if storage != "" && storage != "all" {
		if _, ok := media.ParseStorageType(storage); !ok {
			problems = append(problems, fmt.Sprintf("unknown storage type %q", r.StorageType))
		}
	}

	for i, cond := range r.Conditions {
		if !validFields[strings.ToLower(cond.Field)] {
			problems = append(problems, fmt.Sprintf("condition %d: unknown field %q", i+1, cond.Field))
		}
		op := strings.ToLower(cond.Operator)
		if !validOperators[op] {
			problems = append(problems, fmt.Sprintf("condition %d: unknown operator %q", i+1, cond.Operator))
			continue
		}
		if op == OpIn {
			if len(cond.Values) == 0 {
				problems = append(problems, fmt.Sprintf("condition %d: operator in requires a value list", i+1))
			}
		} else if strings.TrimSpace(cond.Value) == "" {
			problems = append(problems, fmt.Sprintf("condition %d: operator %s requires a value", i+1, op))
		}
		if op == OpMatches {
			if _, err := path.Match(strings.ToLower(cond.Value), ""); err != nil {
				problems = append(problems, fmt.Sprintf("condition %d: invalid match pattern %q", i+1, cond.Value))
			}
		}
	}

	if validateTemplate != nil && strings.TrimSpace(r.Template) != "" {
		if err := validateTemplate(r.Template); err != nil {
			problems = append(problems, fmt.Sprintf("template: %v", err))
		}
	}

	if len(problems) > 0 {
		return services.Wrap(services.ErrValidation, "rules", "validate",
			"invalid rule: "+strings.Join(problems, "; "), nil)
	}
	return nil
}

// AppliesTo reports whether the rule's media and storage filters accept an
// item. Empty or "all" filters accept everything.
func (r Rule) AppliesTo(mediaType media.Type, storageType media.StorageType) bool {
	mt := strings.ToLower(strings.TrimSpace(r.MediaType))
	if mt != "" && mt != "all" && mt != string(mediaType) {
		return false
	}
	st := strings.ToLower(strings.TrimSpace(r.StorageType))
	if st != "" && st != "all" && st != string(storageType) {
		return false
	}
	return true
}
