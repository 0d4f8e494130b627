package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mgpai22/recut/internal/config"
	ffmpegbin "github.com/mgpai22/recut/internal/ffmpeg"
	"github.com/mgpai22/recut/internal/logging"
)

// set at build time with -ldflags "-X github.com/mgpai22/recut/internal/cli.Version=..."
var Version = "dev"

// state shared by every command of one invocation
type commandContext struct {
	configFlag string
	verbose    bool
	output     string

	cfg        *config.Config
	configPath string
	logger     *logging.Logger
}

func (c *commandContext) load() error {
	cfg, resolved, exists, err := config.Load(c.configFlag)
	if err != nil {
		return err
	}

	opts := logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format}
	if c.verbose {
		opts.Level = "debug"
	}
	logger, err := logging.New(opts)
	if err != nil {
		return err
	}

	ffmpegbin.Configure(ffmpegbin.BinaryPaths{
		FFmpeg:  cfg.FFmpeg.FFmpegPath,
		FFprobe: cfg.FFmpeg.FFprobePath,
	})

	c.cfg = cfg
	c.configPath = resolved
	c.logger = logger
	logger.Debugw("configuration loaded", "path", resolved, "exists", exists)
	return nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for current := cmd; current != nil; current = current.Parent() {
		if current.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:   "recut",
		Short: "Keep subtitles in sync with cut videos",
		Long: `Recut parses SubRip subtitles, removes time ranges from a video timeline
and re-times the remaining captions so they stay in sync with the edited video.

Captions that overlap a removed range are dropped; later captions move earlier
by the total length removed before them.`,
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			return ctx.load()
		},
	}

	rootCmd.PersistentFlags().
		StringVar(&ctx.configFlag, "config", "", "Configuration file path")
	rootCmd.PersistentFlags().
		BoolVarP(&ctx.verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVarP(&ctx.output, "output", "o", "", "Output file path")

	rootCmd.AddCommand(newExtractCommand(ctx))
	rootCmd.AddCommand(newCombineCommand(ctx))
	rootCmd.AddCommand(newReconcileCommand(ctx))
	rootCmd.AddCommand(newTrimCommand(ctx))
	rootCmd.AddCommand(newCutCommand(ctx))
	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}

// Execute runs the CLI; SIGINT and SIGTERM cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return newRootCommand().ExecuteContext(ctx)
}
