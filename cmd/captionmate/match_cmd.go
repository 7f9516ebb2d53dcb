package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/captionmate/captionmate/internal/matcher"
	"github.com/captionmate/captionmate/internal/service"
	"github.com/captionmate/captionmate/internal/ui"
)

func newMatchCmd() *cobra.Command {
	var (
		mode        string
		threshold   float64
		force       bool
		local       bool
		interactive bool
		showAll     bool
	)

	cmd := &cobra.Command{
		Use:   "match <path>",
		Short: "Match subtitles to videos and rename them",
		Long: `Scan a directory, pair each video with its best subtitle, and rename
the subtitles to "<video>.<language>.<ext>".

Paths are NAS share paths by default ("/Media/Movies"); use --local for
a local directory. Nothing is renamed under --dry-run; existing targets
are skipped unless --force is given.

Examples:
  captionmate match /Media/Movies --dry-run
  captionmate match /Media/TV --mode ai --threshold 0.7
  captionmate match ~/Downloads --local --interactive`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd.Context(), args[0], matchOptions{
				mode:        mode,
				threshold:   threshold,
				force:       force,
				local:       local,
				interactive: interactive,
				showAll:     showAll,
			})
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "", "matching mode: regex or ai (default from config)")
	cmd.Flags().Float64VarP(&threshold, "threshold", "t", 0, "similarity acceptance threshold (default from config)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing target files")
	cmd.Flags().BoolVarP(&local, "local", "l", false, "operate on a local directory instead of the NAS")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "review the rename plan before executing")
	cmd.Flags().BoolVar(&showAll, "all", false, "also list videos without a match")

	return cmd
}

type matchOptions struct {
	mode        string
	threshold   float64
	force       bool
	local       bool
	interactive bool
	showAll     bool
}

func runMatch(ctx context.Context, path string, opts matchOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	defer log.Close()

	tgt, err := openTarget(ctx, cfg, opts.local, log)
	if err != nil {
		return err
	}
	defer tgt.close()

	svc, err := service.New(cfg, tgt.source, tgt.renamer, service.Options{
		Mode:      matcher.Mode(opts.mode),
		Threshold: opts.threshold,
	}, log)
	if err != nil {
		return err
	}

	spin := ui.NewSpinner("Matching subtitles")
	spin.Start()
	report, err := svc.Match(ctx, path)
	spin.Stop()
	if err != nil {
		return err
	}

	printMatchReport(report, opts.showAll)

	plan := report.Plan
	if len(plan) == 0 {
		fmt.Println()
		ui.InfoMsg("nothing to rename")
		return nil
	}

	if dryRun {
		fmt.Println()
		ui.InfoMsg("dry run: %d rename(s) planned, none executed", len(plan))
		return nil
	}

	if opts.interactive {
		selected, confirmed, err := reviewPlan(plan)
		if err != nil {
			return err
		}
		if !confirmed {
			ui.WarningMsg("cancelled, no files renamed")
			return nil
		}
		plan = selected
	}

	summary := svc.Execute(plan, opts.force)
	printRenameSummary(summary)

	if summary.Errors > 0 {
		return fmt.Errorf("%d rename(s) failed", summary.Errors)
	}
	return nil
}
