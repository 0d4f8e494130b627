package cli

import (
	"github.com/spf13/cobra"

	"github.com/mgpai22/recut/internal/subtitle"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "extract [subtitle_file]",
		Short: "Extract captions from a SubRip file",
		Long: `Parse a SubRip (.srt) file into captions.

Start times are rounded up and end times down to whole seconds, markup tags are
removed, and blocks that end less than 10 seconds after the previous caption
started are merged into it. Malformed blocks are skipped with a warning.

On a terminal the captions are shown as a table; when piped they are written as
subtitle text in the configured output format.

Examples:
  recut extract movie.srt
  recut extract movie.srt --json
  recut extract movie.srt -o movie.vtt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			captions, warnings, err := subtitle.ReadCaptions(args[0])
			if err != nil {
				return err
			}
			for _, w := range warnings {
				ctx.logger.Warnw("skipped subtitle block",
					"file", args[0],
					"line", w.Line,
					"reason", w.Message,
				)
			}
			ctx.logger.Infow("Extracted captions",
				"file", args[0],
				"captions", len(captions),
				"warnings", len(warnings),
			)
			return ctx.emitCaptions(cmd.OutOrStdout(), captions, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Write captions as JSON")
	return cmd
}
