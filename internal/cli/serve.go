package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgpai22/recut/internal/api"
	"github.com/mgpai22/recut/internal/subtitle"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the caption API over HTTP",
		Long: `Start an HTTP server exposing caption extraction, range combination,
reconciliation and subtitle export as JSON endpoints.

Examples:
  recut serve
  recut serve --bind 0.0.0.0:7650`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.cfg.Server
			if bind != "" {
				cfg.Bind = bind
			}

			format, err := subtitle.ParseFormat(ctx.cfg.Output.Format)
			if err != nil {
				return err
			}

			server := api.NewServer(api.ServerConfig{
				Bind:          cfg.Bind,
				MaxBodyBytes:  cfg.MaxBodyBytes,
				ReadTimeout:   cfg.ReadTimeout(),
				WriteTimeout:  cfg.WriteTimeout(),
				DefaultFormat: format,
				Logger:        ctx.logger.Named("api"),
				StartTime:     time.Now(),
				Version:       Version,
			})

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start()
			}()

			fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s\n", server.Addr())

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("http server: %w", err)
				}
				return nil
			case <-cmd.Context().Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("shutdown: %w", err)
			}
			return <-errCh
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (default from config)")
	return cmd
}
