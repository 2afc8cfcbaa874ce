package rules

import (
	"path"
	"sort"
	"strings"

	"reelsort/internal/media"
)

// Snapshot is an immutable, evaluation-ordered view of the enabled rules.
// Matching a whole batch against one snapshot keeps the batch internally
// consistent even if rules change mid-run.
type Snapshot struct {
	rules []Rule
}

// NewSnapshot copies the given rules, drops disabled ones, and fixes the
// evaluation order: ascending priority, then rule ID for stability.
func NewSnapshot(rules []Rule) Snapshot {
	ordered := make([]Rule, 0, len(rules))
	for _, rule := range rules {
		if rule.Enabled {
			ordered = append(ordered, rule)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority < ordered[j].Priority
		}
		return ordered[i].ID < ordered[j].ID
	})
	return Snapshot{rules: ordered}
}

// Rules returns the rules in evaluation order. Callers must not mutate the
// returned slice.
func (s Snapshot) Rules() []Rule { return s.rules }

// Len reports how many enabled rules the snapshot holds.
func (s Snapshot) Len() int { return len(s.rules) }

// Match walks the rules in evaluation order and returns the first one whose
// filters and conditions all accept the item. The second return is false
// when no rule matched.
func (s Snapshot) Match(info *media.MediaInfo, file media.FileInfo, storageType media.StorageType) (Rule, bool) {
	if info == nil {
		return Rule{}, false
	}
	for _, rule := range s.rules {
		if !rule.AppliesTo(info.MediaType, storageType) {
			continue
		}
		if conditionsHold(rule.Conditions, info, file) {
			return rule, true
		}
	}
	return Rule{}, false
}

func conditionsHold(conditions []Condition, info *media.MediaInfo, file media.FileInfo) bool {
	for _, cond := range conditions {
		if !evaluate(cond, info, file) {
			return false
		}
	}
	return true
}

// evaluate tests one condition. A field the item simply does not have, such
// as genres on a result with no candidate metadata, never matches.
func evaluate(cond Condition, info *media.MediaInfo, file media.FileInfo) bool {
	values := fieldValues(cond.Field, info, file)
	if len(values) == 0 {
		return false
	}
	op := strings.ToLower(cond.Operator)
	for _, value := range values {
		if applyOperator(op, value, cond) {
			return true
		}
	}
	return false
}

func fieldValues(field string, info *media.MediaInfo, file media.FileInfo) []string {
	switch strings.ToLower(field) {
	case FieldKeyword:
		return []string{file.Name}
	case FieldGenre:
		if info.Candidate != nil {
			return info.Candidate.Genres
		}
	case FieldCountry:
		if info.Candidate != nil {
			return info.Candidate.Countries
		}
	case FieldLanguage:
		if info.Candidate != nil && info.Candidate.Language != "" {
			return []string{info.Candidate.Language}
		}
	case FieldNetwork:
		if info.Candidate != nil {
			return info.Candidate.Networks
		}
	}
	return nil
}

func applyOperator(op, value string, cond Condition) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	switch op {
	case OpEquals:
		return value == strings.ToLower(strings.TrimSpace(cond.Value))
	case OpContains:
		return strings.Contains(value, strings.ToLower(strings.TrimSpace(cond.Value)))
	case OpIn:
		for _, candidate := range cond.Values {
			if value == strings.ToLower(strings.TrimSpace(candidate)) {
				return true
			}
		}
		return false
	case OpMatches:
		pattern := strings.ToLower(strings.TrimSpace(cond.Value))
		if ok, err := path.Match(pattern, value); err == nil {
			if ok {
				return true
			}
			// A glob that contains metacharacters but did not match is a
			// definitive miss; a plain pattern falls back to substring.
			if strings.ContainsAny(pattern, "*?[") {
				return false
			}
		}
		return strings.Contains(value, pattern)
	default:
		return false
	}
}
