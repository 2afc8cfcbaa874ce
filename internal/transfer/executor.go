package transfer

import (
	"context"
	"fmt"
	"log/slog"

	"reelsort/internal/logging"
	"reelsort/internal/media"
	"reelsort/internal/rules"
	"reelsort/internal/storage"
)

// Status classifies what happened to one item during execution.
type Status string

const (
	StatusMoved   Status = "moved"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Outcome records the per-item result of a transfer. One Outcome exists per
// input item regardless of what happened to the others.
type Outcome struct {
	File       media.FileInfo `json:"file_info"`
	RuleName   string         `json:"rule_name,omitempty"`
	TargetPath string         `json:"target_path,omitempty"`
	FinalPath  string         `json:"final_path,omitempty"`
	Status     Status         `json:"status"`
	Reason     string         `json:"reason,omitempty"`
}

// Options tunes a transfer run.
type Options struct {
	// OverrideRuleID forces every recognized item through one rule's
	// template instead of normal matching.
	OverrideRuleID string

	// IncludeLow also transfers low-confidence items that matched a rule.
	// Off by default; low confidence usually means the identification is
	// wrong.
	IncludeLow bool
}

// RuleSource supplies the rules a transfer run evaluates against.
type RuleSource interface {
	Snapshot(ctx context.Context) (rules.Snapshot, error)
	Get(ctx context.Context, id string) (*rules.Rule, error)
}

// Executor moves recognized files into the library. Rules are re-read and
// targets re-rendered at execution time, so edits made after a dry run take
// effect without re-recognizing.
type Executor struct {
	source  RuleSource
	adapter storage.Adapter
	logger  *slog.Logger
}

// NewExecutor wires an executor to a rule source and a storage adapter.
func NewExecutor(source RuleSource, adapter storage.Adapter, logger *slog.Logger) (*Executor, error) {
	if source == nil {
		return nil, fmt.Errorf("executor requires a rule source")
	}
	if adapter == nil {
		return nil, fmt.Errorf("executor requires a storage adapter")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Executor{
		source:  source,
		adapter: adapter,
		logger:  logging.NewComponentLogger(logger, "transfer"),
	}, nil
}

// Execute moves each transferable item and returns one outcome per input.
// A failing item never stops the rest; cancellation stops scheduling and
// marks the remaining items skipped.
func (e *Executor) Execute(ctx context.Context, results []media.RecognitionResult, opts Options) ([]Outcome, error) {
	planned, err := e.replan(ctx, results, opts)
	if err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, len(planned))
	for i, item := range planned {
		if ctxErr := ctx.Err(); ctxErr != nil {
			outcomes[i] = Outcome{File: item.File, Status: StatusSkipped, Reason: "cancelled"}
			continue
		}
		outcomes[i] = e.executeOne(ctx, item, opts)
	}

	moved, failed := 0, 0
	for _, outcome := range outcomes {
		switch outcome.Status {
		case StatusMoved:
			moved++
		case StatusFailed:
			failed++
		}
	}
	e.logger.Info("transfer finished",
		logging.Int("items", len(outcomes)),
		logging.Int("moved", moved),
		logging.Int("failed", failed))
	return outcomes, nil
}

// replan re-snapshots the rules and re-renders every target so execution
// reflects the rules as they are now, not as they were at preview time.
func (e *Executor) replan(ctx context.Context, results []media.RecognitionResult, opts Options) ([]media.RecognitionResult, error) {
	if opts.OverrideRuleID != "" {
		override, err := e.source.Get(ctx, opts.OverrideRuleID)
		if err != nil {
			return nil, fmt.Errorf("load override rule: %w", err)
		}
		planned := make([]media.RecognitionResult, len(results))
		for i, result := range results {
			if result.Recognized() {
				planned[i] = applyRule(*override, result)
			} else {
				planned[i] = result
			}
		}
		return planned, nil
	}

	snapshot, err := e.source.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot rules: %w", err)
	}
	return Plan(snapshot, results, e.adapter.Type()), nil
}

func (e *Executor) executeOne(ctx context.Context, item media.RecognitionResult, opts Options) Outcome {
	outcome := Outcome{File: item.File, RuleName: item.MatchedRuleName, TargetPath: item.TargetPath}

	switch {
	case !item.Recognized():
		outcome.Status = StatusSkipped
		outcome.Reason = "not recognized"
		return outcome
	case item.FailureReason != "":
		outcome.Status = StatusFailed
		outcome.Reason = item.FailureReason
		return outcome
	case item.MatchedRuleID == "":
		outcome.Status = StatusSkipped
		outcome.Reason = "no rule matched"
		return outcome
	case item.Confidence == media.ConfidenceLow && !opts.IncludeLow:
		outcome.Status = StatusSkipped
		outcome.Reason = "low confidence"
		return outcome
	}

	final, err := e.adapter.Move(ctx, item.File.Path, item.TargetPath)
	if err != nil {
		e.logger.Warn("move failed",
			logging.String("file", item.File.Name),
			logging.Error(err))
		outcome.Status = StatusFailed
		outcome.Reason = err.Error()
		return outcome
	}
	outcome.Status = StatusMoved
	outcome.FinalPath = final
	return outcome
}
