package transfer

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"reelsort/internal/media"
	"reelsort/internal/rules"
)

type fakeRuleSource struct {
	rules []rules.Rule
}

func (f *fakeRuleSource) Snapshot(context.Context) (rules.Snapshot, error) {
	return rules.NewSnapshot(f.rules), nil
}

func (f *fakeRuleSource) Get(_ context.Context, id string) (*rules.Rule, error) {
	for i := range f.rules {
		if f.rules[i].ID == id {
			return &f.rules[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", rules.ErrRuleNotFound, id)
}

type fakeAdapter struct {
	moves   map[string]string
	failFor map[string]bool
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{moves: make(map[string]string), failFor: make(map[string]bool)}
}

func (f *fakeAdapter) Type() media.StorageType { return media.StorageLocal }

func (f *fakeAdapter) Browse(context.Context, string) ([]media.FileInfo, error) {
	return nil, nil
}

func (f *fakeAdapter) Move(_ context.Context, src, relTarget string) (string, error) {
	if f.failFor[src] {
		return "", fmt.Errorf("disk full")
	}
	final := "/library/" + relTarget
	f.moves[src] = final
	return final, nil
}

func movieRule(id string, priority int, template string) rules.Rule {
	return rules.Rule{
		ID: id, Name: "rule-" + id, Priority: priority, Enabled: true,
		MediaType: "all", StorageType: "all", Template: template,
	}
}

func recognized(name string, confidence media.Confidence) media.RecognitionResult {
	return media.RecognitionResult{
		File:       media.NewFileInfo("/downloads/"+name, 1<<30, false),
		Confidence: confidence,
		Media: &media.MediaInfo{
			MediaType: media.TypeMovie,
			Title:     "The Matrix",
			Year:      1999,
			TMDBID:    603,
		},
	}
}

func unrecognized(name string) media.RecognitionResult {
	return media.RecognitionResult{
		File:          media.NewFileInfo("/downloads/"+name, 1<<30, false),
		Confidence:    media.ConfidenceLow,
		FailureReason: "no candidates",
	}
}

func TestPlanAnnotatesMatchesAndTargets(t *testing.T) {
	snapshot := rules.NewSnapshot([]rules.Rule{
		movieRule("a", 5, "Movies/{title} ({year})/{title}.{ext}"),
	})
	results := []media.RecognitionResult{
		recognized("matrix.mkv", media.ConfidenceHigh),
		unrecognized("junk.mkv"),
	}

	planned := Plan(snapshot, results, media.StorageLocal)
	if planned[0].MatchedRuleID != "a" {
		t.Fatalf("matched rule = %q, want a", planned[0].MatchedRuleID)
	}
	if planned[0].TargetPath != "Movies/The Matrix (1999)/The Matrix.mkv" {
		t.Fatalf("target = %q", planned[0].TargetPath)
	}
	if planned[1].MatchedRuleID != "" || planned[1].TargetPath != "" {
		t.Fatalf("unrecognized item gained a match: %+v", planned[1])
	}
	// Inputs must not be mutated.
	if results[0].MatchedRuleID != "" {
		t.Fatal("Plan mutated its input")
	}
}

func TestPlanRenderFailureDegradesItem(t *testing.T) {
	// The rule demands a season for a movie result.
	snapshot := rules.NewSnapshot([]rules.Rule{
		movieRule("a", 5, "TV/{title}/S{season:02d}E{episode:02d}.{ext}"),
	})

	planned := Plan(snapshot, []media.RecognitionResult{recognized("matrix.mkv", media.ConfidenceHigh)}, media.StorageLocal)
	item := planned[0]
	if item.TargetPath != "" {
		t.Fatalf("render failure should leave no target, got %q", item.TargetPath)
	}
	if !strings.Contains(item.FailureReason, "render failed") {
		t.Fatalf("failure reason = %q", item.FailureReason)
	}
}

func TestBuildReportTallies(t *testing.T) {
	snapshot := rules.NewSnapshot([]rules.Rule{
		movieRule("a", 5, "Movies/{title}.{ext}"),
	})
	planned := Plan(snapshot, []media.RecognitionResult{
		recognized("a.mkv", media.ConfidenceHigh),
		recognized("b.mkv", media.ConfidenceMedium),
		recognized("c.mkv", media.ConfidenceHigh),
		unrecognized("d.mkv"),
	}, media.StorageLocal)

	report := BuildReport(planned, false)
	if report.TotalItems != 4 || report.Recognized != 3 {
		t.Fatalf("totals wrong: %+v", report)
	}
	if report.HighConfidence != 2 || report.MediumConfidence != 1 || report.LowConfidence != 1 {
		t.Fatalf("confidence tallies wrong: %+v", report)
	}
	if report.Matched != 3 || report.Unmatched != 0 {
		t.Fatalf("match tallies wrong: %+v", report)
	}
	if len(report.Items) != 4 {
		t.Fatalf("report carries %d items, want all 4", len(report.Items))
	}
}

func TestBuildReportUnmatched(t *testing.T) {
	report := BuildReport(Plan(rules.NewSnapshot(nil), []media.RecognitionResult{
		recognized("a.mkv", media.ConfidenceHigh),
	}, media.StorageLocal), true)
	if report.Matched != 0 || report.Unmatched != 1 {
		t.Fatalf("unmatched item not counted: %+v", report)
	}
	if !report.Incomplete {
		t.Fatal("incomplete flag lost")
	}
}

func TestExecuteMovesAndSkips(t *testing.T) {
	source := &fakeRuleSource{rules: []rules.Rule{
		movieRule("a", 5, "Movies/{title} ({year}).{ext}"),
	}}
	adapter := newFakeAdapter()
	executor, err := NewExecutor(source, adapter, nil)
	if err != nil {
		t.Fatalf("NewExecutor: %v", err)
	}

	results := []media.RecognitionResult{
		recognized("high.mkv", media.ConfidenceHigh),
		recognized("low.mkv", media.ConfidenceLow),
		unrecognized("junk.mkv"),
	}
	outcomes, err := executor.Execute(context.Background(), results, Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(outcomes) != 3 {
		t.Fatalf("got %d outcomes, want one per item", len(outcomes))
	}
	if outcomes[0].Status != StatusMoved || outcomes[0].FinalPath == "" {
		t.Fatalf("high-confidence item: %+v", outcomes[0])
	}
	if outcomes[1].Status != StatusSkipped || outcomes[1].Reason != "low confidence" {
		t.Fatalf("low-confidence item: %+v", outcomes[1])
	}
	if outcomes[2].Status != StatusSkipped || outcomes[2].Reason != "not recognized" {
		t.Fatalf("unrecognized item: %+v", outcomes[2])
	}
}

func TestExecuteIncludeLow(t *testing.T) {
	source := &fakeRuleSource{rules: []rules.Rule{
		movieRule("a", 5, "Movies/{title}.{ext}"),
	}}
	adapter := newFakeAdapter()
	executor, _ := NewExecutor(source, adapter, nil)

	outcomes, err := executor.Execute(context.Background(),
		[]media.RecognitionResult{recognized("low.mkv", media.ConfidenceLow)},
		Options{IncludeLow: true})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if outcomes[0].Status != StatusMoved {
		t.Fatalf("low-confidence item not moved with IncludeLow: %+v", outcomes[0])
	}
}

func TestExecuteFailureDoesNotBlockOthers(t *testing.T) {
	source := &fakeRuleSource{rules: []rules.Rule{
		movieRule("a", 5, "Movies/{title} ({year}).{ext}"),
	}}
	adapter := newFakeAdapter()
	adapter.failFor["/downloads/first.mkv"] = true
	executor, _ := NewExecutor(source, adapter, nil)

	outcomes, err := executor.Execute(context.Background(), []media.RecognitionResult{
		recognized("first.mkv", media.ConfidenceHigh),
		recognized("second.mkv", media.ConfidenceHigh),
	}, Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if outcomes[0].Status != StatusFailed {
		t.Fatalf("first item should fail: %+v", outcomes[0])
	}
	if outcomes[1].Status != StatusMoved {
		t.Fatalf("second item should still move: %+v", outcomes[1])
	}
}

func TestExecuteReRendersFromCurrentRules(t *testing.T) {
	source := &fakeRuleSource{rules: []rules.Rule{
		movieRule("a", 5, "Old/{title}.{ext}"),
	}}
	adapter := newFakeAdapter()
	executor, _ := NewExecutor(source, adapter, nil)

	// Preview against the old rule, then edit the rule before executing.
	results := []media.RecognitionResult{recognized("matrix.mkv", media.ConfidenceHigh)}
	snapshot, _ := source.Snapshot(context.Background())
	preview := Plan(snapshot, results, media.StorageLocal)
	if preview[0].TargetPath != "Old/The Matrix.mkv" {
		t.Fatalf("preview target = %q", preview[0].TargetPath)
	}

	source.rules[0].Template = "New/{title} ({year}).{ext}"

	outcomes, err := executor.Execute(context.Background(), results, Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if outcomes[0].TargetPath != "New/The Matrix (1999).mkv" {
		t.Fatalf("execute used stale target %q", outcomes[0].TargetPath)
	}
}

func TestExecuteGlobalRuleOverride(t *testing.T) {
	source := &fakeRuleSource{rules: []rules.Rule{
		movieRule("normal", 5, "Movies/{title}.{ext}"),
		movieRule("override", 90, "Archive/{title} ({year}).{ext}"),
	}}
	adapter := newFakeAdapter()
	executor, _ := NewExecutor(source, adapter, nil)

	outcomes, err := executor.Execute(context.Background(),
		[]media.RecognitionResult{recognized("matrix.mkv", media.ConfidenceHigh)},
		Options{OverrideRuleID: "override"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if outcomes[0].TargetPath != "Archive/The Matrix (1999).mkv" {
		t.Fatalf("override not applied: %+v", outcomes[0])
	}
	if outcomes[0].RuleName != "rule-override" {
		t.Fatalf("outcome rule = %q", outcomes[0].RuleName)
	}
}

func TestExecuteUnknownOverrideRule(t *testing.T) {
	source := &fakeRuleSource{}
	executor, _ := NewExecutor(source, newFakeAdapter(), nil)

	_, err := executor.Execute(context.Background(),
		[]media.RecognitionResult{recognized("x.mkv", media.ConfidenceHigh)},
		Options{OverrideRuleID: "missing"})
	if err == nil {
		t.Fatal("expected an error for an unknown override rule")
	}
}
