package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/captionmate/captionmate/internal/api"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: `Start the HTTP API server.

Endpoints:
  GET  /api/v1/health   - health and configuration summary
  POST /api/v1/scan     - list videos and subtitles in a directory
  POST /api/v1/match    - match subtitles to videos
  POST /api/v1/rename   - match and execute the rename plan

Examples:
  captionmate serve
  captionmate serve --addr :9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Serve.Addr = addr
			}

			log := newLogger(cfg)
			defer log.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fmt.Printf("Starting captionmate API server on %s\n", cfg.Serve.Addr)
			server := api.NewServer(cfg, version, log)
			return server.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "address to listen on (default from config, :8687)")

	return cmd
}
