package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"reelsort/internal/media"
)

func newIdentifyCommand(ctx *commandContext) *cobra.Command {
	var (
		tmdbID        int64
		searchTerm    string
		mediaTypeFlag string
	)

	cmd := &cobra.Command{
		Use:   "identify <file>",
		Short: "Manually correct the identification of a single file",
		Long: `Override recognition for one file, either with an explicit TMDB id or a
fresh search term. The corrected result is printed; run transfer afterwards
to move the file under the corrected identity.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if tmdbID == 0 && searchTerm == "" {
				return fmt.Errorf("provide --tmdb-id or --search")
			}
			hint, err := parseMediaTypeFlag(mediaTypeFlag)
			if err != nil {
				return err
			}

			abs, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			info, err := os.Stat(abs)
			if err != nil {
				return fmt.Errorf("stat %q: %w", args[0], err)
			}
			file := media.NewFileInfo(abs, info.Size(), info.IsDir())

			rec, err := ctx.newRecognizer()
			if err != nil {
				return err
			}
			result, err := rec.ReIdentify(cmd.Context(), file, tmdbID, searchTerm, hint)
			if err != nil {
				return err
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, result)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "File:        %s\n", result.File.Name)
			fmt.Fprintf(out, "Identified:  %s\n", resultTitle(result))
			fmt.Fprintf(out, "Confidence:  %s\n", result.Confidence)
			fmt.Fprintf(out, "Override:    %s\n", yesNo(result.UserOverride))
			if result.Media != nil {
				fmt.Fprintf(out, "TMDB id:     %d\n", result.Media.TMDBID)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&tmdbID, "tmdb-id", 0, "Exact TMDB id to assign")
	cmd.Flags().StringVar(&searchTerm, "search", "", "Search term to identify with")
	cmd.Flags().StringVarP(&mediaTypeFlag, "type", "t", "", "Media type hint: movie or tv")
	return cmd
}
