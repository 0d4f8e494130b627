package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mgpai22/recut/internal/api"
	"github.com/mgpai22/recut/internal/caption"
	"github.com/mgpai22/recut/internal/edit"
)

func newCombineCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "combine [range...]",
		Short: "Merge overlapping time ranges",
		Long: `Combine time ranges into a sorted list of non-overlapping ranges.
Ranges that overlap or touch are merged.

A range is written start-end where each side is plain seconds (4.5) or a
timecode (00:00:04,500).

Examples:
  recut combine 0-3 2-5 7-8
  recut combine 00:01:00,000-00:01:30,000 75-120 --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ranges, err := edit.ParseRanges(args)
			if err != nil {
				return err
			}

			combined := caption.CombineRanges(ranges)
			ctx.logger.Debugw("combined ranges", "in", len(ranges), "out", len(combined))

			out := cmd.OutOrStdout()
			switch {
			case asJSON:
				return writeJSON(out, api.CombineResponse{Ranges: api.RangesToJSON(combined)})
			case isTerminal(out):
				_, err := fmt.Fprintln(out, rangeTable(combined))
				return err
			default:
				for _, r := range combined {
					fmt.Fprintf(out, "%s-%s\n",
						trimSeconds(r.Start), trimSeconds(r.End))
				}
				return nil
			}
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Write ranges as JSON")
	return cmd
}
