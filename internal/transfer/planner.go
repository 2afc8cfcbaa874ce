package transfer

import (
	"fmt"

	"reelsort/internal/media"
	"reelsort/internal/naming"
	"reelsort/internal/rules"
)

// Plan annotates recognition results with the rule each item matched and
// the target path its template renders to. The input snapshot is evaluated
// as-is, so a whole batch sees one consistent rule set. Plan performs no
// I/O and never mutates its inputs.
func Plan(snapshot rules.Snapshot, results []media.RecognitionResult, storageType media.StorageType) []media.RecognitionResult {
	planned := make([]media.RecognitionResult, len(results))
	for i, result := range results {
		planned[i] = planOne(snapshot, result, storageType)
	}
	return planned
}

func planOne(snapshot rules.Snapshot, result media.RecognitionResult, storageType media.StorageType) media.RecognitionResult {
	if !result.Recognized() {
		return result
	}
	rule, ok := snapshot.Match(result.Media, result.File, storageType)
	if !ok {
		// No rule claimed the item. That is a normal outcome the report
		// surfaces; it is not a failure.
		return result
	}
	return applyRule(rule, result)
}

// applyRule renders a rule's template for one recognized item.
func applyRule(rule rules.Rule, result media.RecognitionResult) media.RecognitionResult {
	result.MatchedRuleID = rule.ID
	result.MatchedRuleName = rule.Name
	target, err := naming.Render(rule.Template, result.Media, result.File)
	if err != nil {
		result.TargetPath = ""
		result.FailureReason = fmt.Sprintf("render failed for rule %s: %v", rule.Name, err)
		return result
	}
	result.TargetPath = target
	result.FailureReason = ""
	return result
}
