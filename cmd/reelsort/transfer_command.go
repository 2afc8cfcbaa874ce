package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reelsort/internal/transfer"
)

func newTransferCommand(ctx *commandContext) *cobra.Command {
	var (
		mediaTypeFlag string
		dryRun        bool
		includeLow    bool
		overrideRule  string
	)

	cmd := &cobra.Command{
		Use:   "transfer <path>...",
		Short: "Recognize files and move them into the library",
		Long: `Recognize the given files, match them against the transfer rules, and
move them into the library. With --dry-run nothing is moved; the command
prints the exact target paths a real run would produce.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hint, err := parseMediaTypeFlag(mediaTypeFlag)
			if err != nil {
				return err
			}
			adapter, err := ctx.localAdapter()
			if err != nil {
				return err
			}
			files, err := collectFiles(cmd.Context(), adapter, args)
			if err != nil {
				return err
			}
			rec, err := ctx.newRecognizer()
			if err != nil {
				return err
			}
			store, err := ctx.openRuleStore()
			if err != nil {
				return err
			}
			defer store.Close()

			results, recErr := rec.Recognize(cmd.Context(), files, hint)
			incomplete := recErr != nil

			if dryRun {
				snapshot, err := store.Snapshot(cmd.Context())
				if err != nil {
					return err
				}
				planned := transfer.Plan(snapshot, results, adapter.Type())
				report := transfer.BuildReport(planned, incomplete)
				if ctx.jsonOutput() {
					return writeJSON(cmd, report)
				}
				printDryRunReport(cmd, report)
				return nil
			}

			executor, err := transfer.NewExecutor(store, adapter, ctx.ensureLogger())
			if err != nil {
				return err
			}
			outcomes, err := executor.Execute(cmd.Context(), results, transfer.Options{
				OverrideRuleID: overrideRule,
				IncludeLow:     includeLow,
			})
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, outcomes)
			}
			printOutcomesTable(cmd, outcomes)
			return nil
		},
	}

	cmd.Flags().StringVarP(&mediaTypeFlag, "type", "t", "", "Media type hint: movie or tv")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview target paths without moving anything")
	cmd.Flags().BoolVar(&includeLow, "include-low", false, "Also transfer low-confidence matches")
	cmd.Flags().StringVar(&overrideRule, "rule", "", "Route every item through this rule id instead of matching")
	return cmd
}

func printDryRunReport(cmd *cobra.Command, report transfer.DryRunReport) {
	out := cmd.OutOrStdout()

	rows := make([][]string, 0, len(report.Items))
	for _, item := range report.Items {
		target := item.TargetPath
		if target == "" {
			switch {
			case item.FailureReason != "":
				target = "! " + truncate(item.FailureReason, 60)
			case item.Recognized():
				target = "(no rule matched)"
			default:
				target = "(not recognized)"
			}
		}
		rows = append(rows, []string{
			truncate(item.File.Name, 40),
			string(item.Confidence),
			truncate(item.MatchedRuleName, 20),
			target,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"File", "Confidence", "Rule", "Target"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
	))

	fmt.Fprintf(out, "%d items: %d recognized (%d high, %d medium, %d low), %d matched, %d unmatched\n",
		report.TotalItems, report.Recognized,
		report.HighConfidence, report.MediumConfidence, report.LowConfidence,
		report.Matched, report.Unmatched)
	if report.Incomplete {
		fmt.Fprintln(out, "warning: recognition was interrupted; this preview is incomplete")
	}
}

func printOutcomesTable(cmd *cobra.Command, outcomes []transfer.Outcome) {
	rows := make([][]string, 0, len(outcomes))
	moved := 0
	for _, outcome := range outcomes {
		detail := outcome.FinalPath
		if outcome.Status != transfer.StatusMoved {
			detail = outcome.Reason
		} else {
			moved++
		}
		rows = append(rows, []string{
			truncate(outcome.File.Name, 40),
			string(outcome.Status),
			truncate(detail, 70),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"File", "Status", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft},
	))
	fmt.Fprintf(cmd.OutOrStdout(), "moved %d of %d items\n", moved, len(outcomes))
}
