package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/captionmate/captionmate/internal/matcher"
	"github.com/captionmate/captionmate/internal/scanner"
	"github.com/captionmate/captionmate/internal/service"
	"github.com/captionmate/captionmate/internal/ui"
	"github.com/captionmate/captionmate/internal/watcher"
)

func newWatchCmd() *cobra.Command {
	var (
		mode      string
		threshold float64
		force     bool
		settle    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <path>...",
		Short: "Watch local directories and match new subtitles automatically",
		Long: `Monitor one or more local directories. When new video or subtitle
files appear and the directory settles, a match pass runs over it and
renames what it can.

Only local paths can be watched; for NAS libraries run 'captionmate
match' periodically instead.

Examples:
  captionmate watch ~/Downloads
  captionmate watch /srv/media/incoming --settle 30s --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(args, mode, threshold, force, settle)
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "", "matching mode: regex or ai (default from config)")
	cmd.Flags().Float64VarP(&threshold, "threshold", "t", 0, "similarity acceptance threshold (default from config)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing target files")
	cmd.Flags().DurationVar(&settle, "settle", 5*time.Second, "wait this long after the last change before matching")

	return cmd
}

func runWatch(paths []string, mode string, threshold float64, force bool, settle time.Duration) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	defer log.Close()

	svc, err := service.New(cfg, scanner.LocalSource{}, service.LocalRenamer{}, service.Options{
		Mode:      matcher.Mode(mode),
		Threshold: threshold,
	}, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler := watcher.HandlerFunc(func(dir string) error {
		report, err := svc.Match(ctx, dir)
		if err != nil {
			return err
		}
		if len(report.Plan) == 0 {
			return nil
		}
		if dryRun {
			ui.InfoMsg("%s: %d rename(s) planned (dry run)", dir, len(report.Plan))
			return nil
		}
		summary := svc.Execute(report.Plan, force)
		ui.InfoMsg("%s: %d renamed, %d skipped, %d error(s)",
			dir, summary.Renamed, summary.Skipped, summary.Errors)
		return nil
	})

	w, err := watcher.NewWatcher(handler, log,
		watcher.WithSettleDelay(settle),
		watcher.WithVideoExtensions(cfg.Scanning.VideoExtensions))
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Watch(paths); err != nil {
		return err
	}

	fmt.Println("Watching for changes. Press Ctrl+C to stop.")

	errCh := make(chan error, 1)
	go func() { errCh <- w.Start() }()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}
