package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/captionmate/captionmate/internal/analyzer"
	"github.com/captionmate/captionmate/internal/scanner"
	"github.com/captionmate/captionmate/internal/ui"
)

func newScanCmd() *cobra.Command {
	var (
		local   bool
		analyze bool
	)

	cmd := &cobra.Command{
		Use:   "scan <path>",
		Short: "List the videos and subtitles in a directory",
		Long: `Walk a directory and report every video and subtitle file found,
with the detected subtitle languages.

With --analyze (local directories only) each video is probed with
ffprobe for duration, resolution, and codec.

Examples:
  captionmate scan /Media/Movies
  captionmate scan ~/Downloads --local --analyze`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd.Context(), args[0], local, analyze)
		},
	}

	cmd.Flags().BoolVarP(&local, "local", "l", false, "operate on a local directory instead of the NAS")
	cmd.Flags().BoolVar(&analyze, "analyze", false, "probe videos with ffprobe (requires --local)")

	return cmd
}

func runScan(ctx context.Context, path string, local, analyze bool) error {
	if analyze && !local {
		return fmt.Errorf("--analyze requires --local (ffprobe cannot read SMB paths)")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	defer log.Close()

	tgt, err := openTarget(ctx, cfg, local, log)
	if err != nil {
		return err
	}
	defer tgt.close()

	scan, err := scanner.New(tgt.source, cfg.Scanning, cfg.Subtitles, log).Scan(path)
	if err != nil {
		return err
	}

	if analyze && len(scan.Videos) > 0 {
		probe := analyzer.New("", log)
		bar := ui.NewProgressBar(len(scan.Videos), "Probing")
		for i := range scan.Videos {
			probe.Enrich(ctx, &scan.Videos[i])
			bar.Increment()
		}
	}

	ui.Section(fmt.Sprintf("videos (%d)", len(scan.Videos)))
	if len(scan.Videos) == 0 {
		fmt.Println("none")
	} else {
		table := ui.NewTable("FILENAME", "SIZE", "DURATION", "RESOLUTION", "CODEC")
		for _, v := range scan.Videos {
			table.AddRow(ui.Video(v.Filename), v.SizeHuman(), v.DurationHuman(), v.Resolution(), v.Codec)
		}
		table.Render()
	}

	ui.Section(fmt.Sprintf("subtitles (%d)", len(scan.Subtitles)))
	if len(scan.Subtitles) == 0 {
		fmt.Println("none")
	} else {
		table := ui.NewTable("FILENAME", "LANGUAGE", "FORMAT", "SIZE")
		for _, s := range scan.Subtitles {
			table.AddRow(ui.Subtitle(s.Filename), s.Language, s.Format, s.SizeHuman())
		}
		table.Render()
	}

	if scan.Skipped > 0 {
		fmt.Println()
		fmt.Println(ui.Dim(fmt.Sprintf("%d other file(s) ignored", scan.Skipped)))
	}

	return nil
}
