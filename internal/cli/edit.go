package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgpai22/recut/internal/caption"
	"github.com/mgpai22/recut/internal/edit"
	"github.com/mgpai22/recut/internal/subtitle"
	"github.com/mgpai22/recut/internal/video"
)

func newTrimCommand(ctx *commandContext) *cobra.Command {
	var (
		start, end string
		subsPath   string
	)

	cmd := &cobra.Command{
		Use:   "trim [video_file]",
		Short: "Keep only a window of a video",
		Long: `Trim a video to the window between --start and --end, removing
everything before and after it. When --subs is given the captions are
re-timed to match and written next to the output video.

Examples:
  recut trim talk.mp4 --start 12.5 --end 300
  recut trim talk.mp4 --start 00:00:12,500 --subs talk.srt -o talk_short.mp4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keepStart := time.Duration(0)
			if start != "" {
				parsed, err := edit.ParseTime(start)
				if err != nil {
					return err
				}
				keepStart = parsed
			}

			return ctx.runEdit(cmd, args[0], subsPath, func(total time.Duration) (edit.Plan, error) {
				keepEnd := total
				if end != "" {
					parsed, err := edit.ParseTime(end)
					if err != nil {
						return edit.Plan{}, err
					}
					keepEnd = min(parsed, total)
				}
				if keepEnd <= keepStart {
					return edit.Plan{}, fmt.Errorf("%w: end %s is not after start %s",
						edit.ErrInvalidRange, keepEnd, keepStart)
				}
				return edit.NewTrimPlan(keepStart, keepEnd, total), nil
			})
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "Start of the kept window (seconds or timecode)")
	cmd.Flags().StringVar(&end, "end", "", "End of the kept window (seconds or timecode, default: end of video)")
	cmd.Flags().StringVar(&subsPath, "subs", "", "SubRip file to re-time alongside the video")
	return cmd
}

func newCutCommand(ctx *commandContext) *cobra.Command {
	var (
		cuts     []string
		subsPath string
	)

	cmd := &cobra.Command{
		Use:   "cut [video_file]",
		Short: "Remove time ranges from a video",
		Long: `Cut the given ranges out of a video and join what is left without
re-encoding. When --subs is given the captions are re-timed to match and
written next to the output video.

Examples:
  recut cut talk.mp4 --cut 10-20 --cut 45-50
  recut cut talk.mp4 --cut 00:01:00,000-00:02:00,000 --subs talk.srt -o talk_cut.mp4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(cuts) == 0 {
				return fmt.Errorf("at least one --cut range is required")
			}
			removed, err := edit.ParseRanges(cuts)
			if err != nil {
				return err
			}
			return ctx.runEdit(cmd, args[0], subsPath, func(total time.Duration) (edit.Plan, error) {
				return edit.NewCutPlan(removed, total), nil
			})
		},
	}

	cmd.Flags().
		StringArrayVar(&cuts, "cut", nil, "Removed range start-end (repeatable)")
	cmd.Flags().StringVar(&subsPath, "subs", "", "SubRip file to re-time alongside the video")
	return cmd
}

// runEdit probes the video, builds and validates the plan, cuts the video and
// re-times the optional subtitle file.
func (c *commandContext) runEdit(
	cmd *cobra.Command,
	videoPath, subsPath string,
	buildPlan func(total time.Duration) (edit.Plan, error),
) error {
	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", videoPath)
	}
	if !video.IsVideoFile(videoPath) {
		return fmt.Errorf("unsupported file type: %s (expected a video file)", filepath.Ext(videoPath))
	}

	var captions []caption.Caption
	if subsPath != "" {
		loaded, warnings, err := subtitle.ReadCaptions(subsPath)
		if err != nil {
			return err
		}
		for _, w := range warnings {
			c.logger.Warnw("skipped subtitle block",
				"file", subsPath,
				"line", w.Line,
				"reason", w.Message,
			)
		}
		captions = loaded
	}

	outputPath := c.output
	if outputPath == "" {
		outputPath = defaultVideoOutput(videoPath)
	}

	processor := video.NewProcessor("", c.logger.Named("video"))

	info, err := processor.Probe(cmd.Context(), videoPath)
	if err != nil {
		return fmt.Errorf("failed to probe video: %w", err)
	}

	plan, err := buildPlan(info.Duration)
	if err != nil {
		return err
	}
	if err := plan.Validate(); err != nil {
		return err
	}

	c.logger.Infow("Cutting video",
		"input", videoPath,
		"output", outputPath,
		"duration", info.Duration.String(),
		"removed", plan.RemovedDuration().String(),
		"segments", len(plan.Keep()),
	)

	opts := video.CutOptions{Concurrency: c.cfg.FFmpeg.Concurrency}
	if err := processor.Cut(cmd.Context(), videoPath, outputPath, plan.Keep(), opts); err != nil {
		return fmt.Errorf("cut failed: %w", err)
	}

	out := cmd.OutOrStdout()
	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(out, "Video written: %s\n", absOutput)
	fmt.Fprintf(out, "  Duration: %s (removed %s)\n",
		plan.ResultDuration().String(), plan.RemovedDuration().String())

	if subsPath == "" {
		return nil
	}

	format, err := subtitle.ParseFormat(c.cfg.Output.Format)
	if err != nil {
		return err
	}
	retimed := plan.Apply(captions)
	subsOutput := strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) +
		subtitle.ExtensionForFormat(format)
	if err := writeSubtitleFile(subsOutput, format, retimed); err != nil {
		return err
	}

	absSubs, _ := filepath.Abs(subsOutput)
	fmt.Fprintf(out, "Subtitles written: %s\n", absSubs)
	fmt.Fprintf(out, "  Entries: %d (dropped %d)\n", len(retimed), len(captions)-len(retimed))
	return nil
}

// input.mp4 -> input_recut.mp4
func defaultVideoOutput(videoPath string) string {
	ext := filepath.Ext(videoPath)
	return strings.TrimSuffix(videoPath, ext) + "_recut" + ext
}
