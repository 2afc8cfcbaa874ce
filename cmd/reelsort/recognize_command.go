package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"reelsort/internal/media"
)

func newRecognizeCommand(ctx *commandContext) *cobra.Command {
	var mediaTypeFlag string

	cmd := &cobra.Command{
		Use:   "recognize <path>...",
		Short: "Identify media files without moving anything",
		Args:  cobra.MinimumNArgs(1),
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

			results, err := rec.Recognize(cmd.Context(), files, hint)
			if err != nil && len(results) == 0 {
				return err
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, results)
			}
			printResultsTable(cmd, results)
			return err
		},
	}

	cmd.Flags().StringVarP(&mediaTypeFlag, "type", "t", "", "Media type hint: movie or tv")
	return cmd
}

func printResultsTable(cmd *cobra.Command, results []media.RecognitionResult) {
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		rows = append(rows, []string{
			truncate(res.File.Name, 48),
			humanize.IBytes(uint64(res.File.Size)),
			resultTitle(res),
			string(res.Confidence),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"File", "Size", "Identified As", "Confidence"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft},
	))
}

func resultTitle(res media.RecognitionResult) string {
	if !res.Recognized() {
		return "? " + truncate(res.FailureReason, 40)
	}
	title := res.Media.Title
	if res.Media.Year > 0 {
		title = fmt.Sprintf("%s (%d)", title, res.Media.Year)
	}
	if res.Media.Episode > 0 {
		title = fmt.Sprintf("%s S%02dE%02d", title, res.Media.Season, res.Media.Episode)
	}
	return title
}
