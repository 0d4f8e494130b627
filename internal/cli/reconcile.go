package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgpai22/recut/internal/caption"
	"github.com/mgpai22/recut/internal/edit"
	"github.com/mgpai22/recut/internal/subtitle"
)

func newReconcileCommand(ctx *commandContext) *cobra.Command {
	var (
		cuts   []string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "reconcile [subtitle_file]",
		Short: "Re-time captions after cutting ranges out of the video",
		Long: `Re-time the captions of a SubRip file for a video with the given ranges
removed. Captions overlapping a removed range are dropped; the rest move
earlier by the total length removed before them.

Examples:
  recut reconcile movie.srt --cut 10-20 --cut 45-50
  recut reconcile movie.srt --cut 00:01:00,000-00:02:00,000 -o movie_cut.srt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(cuts) == 0 {
				return fmt.Errorf("at least one --cut range is required")
			}
			removed, err := edit.ParseRanges(cuts)
			if err != nil {
				return err
			}

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

			reconciled := caption.Reconcile(captions, removed)
			ctx.logger.Infow("Reconciled captions",
				"captions", len(captions),
				"kept", len(reconciled),
				"dropped", len(captions)-len(reconciled),
			)

			return ctx.emitCaptions(cmd.OutOrStdout(), reconciled, asJSON)
		},
	}

	cmd.Flags().
		StringArrayVar(&cuts, "cut", nil, "Removed range start-end (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Write captions as JSON")
	return cmd
}
