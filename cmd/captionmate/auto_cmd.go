package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/captionmate/captionmate/internal/media"
	"github.com/captionmate/captionmate/internal/scanner"
	"github.com/captionmate/captionmate/internal/ui"
)

func newAutoCmd() *cobra.Command {
	var (
		outputDir string
		local     bool
	)

	cmd := &cobra.Command{
		Use:   "auto <path>",
		Short: "Scan a directory and download subtitles for every video",
		Long: `One-shot mode: scan the directory and download subtitles for each
video in the configured languages. Videos that already have subtitles
are skipped when scanning.skip_existing is enabled.

Examples:
  captionmate auto /Media/Movies
  captionmate auto ~/Downloads --local --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runBulkDownload(cmd.Context(), args[0], bulkOptions{
				outputDir:    outputDir,
				local:        local,
				skipExisting: cfg.Scanning.SkipExisting,
			})
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "directory for downloaded subtitles (default: next to each video)")
	cmd.Flags().BoolVarP(&local, "local", "l", false, "operate on a local directory instead of the NAS")

	return cmd
}

// bulkOptions selects how a directory-wide download pass runs.
type bulkOptions struct {
	languages    []string
	outputDir    string
	local        bool
	skipExisting bool
}

// runBulkDownload drives 'subtitles batch' and 'auto': scan, filter,
// then download per video.
func runBulkDownload(ctx context.Context, dir string, opts bulkOptions) error {
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

	dl, err := openDownloader(ctx, cfg, tgt.saver, log)
	if err != nil {
		return err
	}

	scan, err := scanner.New(tgt.source, cfg.Scanning, cfg.Subtitles, log).Scan(dir)
	if err != nil {
		return err
	}
	if len(scan.Videos) == 0 {
		ui.WarningMsg("no video files found in %s", dir)
		return nil
	}
	ui.InfoMsg("found %d video file(s)", len(scan.Videos))

	videos := scan.Videos
	if opts.skipExisting {
		var needed []media.VideoFile
		for _, video := range videos {
			if !dl.HasSubtitle(video) {
				needed = append(needed, video)
			}
		}
		ui.InfoMsg("%d already have subtitles, %d need them", len(videos)-len(needed), len(needed))
		videos = needed
	}
	if len(videos) == 0 {
		ui.SuccessMsg("all videos already have subtitles")
		return nil
	}

	if dryRun {
		ui.Section(fmt.Sprintf("would process (%d)", len(videos)))
		table := ui.NewTable("FILENAME", "SIZE")
		var total int64
		for _, video := range videos {
			table.AddRow(ui.Video(video.Filename), video.SizeHuman())
			total += video.Size
		}
		table.Render()
		fmt.Println()
		fmt.Println(ui.Dim(fmt.Sprintf("total video size: %s", ui.FormatBytes(total))))
		return nil
	}

	var succeeded, failed, notFound int
	bar := ui.NewProgressBar(len(videos), "Downloading")
	for _, video := range videos {
		outcomes, err := dl.DownloadForVideo(ctx, video, opts.languages, opts.outputDir)
		bar.Increment()
		switch {
		case err != nil:
			failed++
			ui.ErrorMsg("%s: %v", video.Filename, err)
		case len(outcomes) == 0:
			notFound++
			fmt.Println(ui.Dim(fmt.Sprintf("no subtitles found for %s", video.Filename)))
		default:
			succeeded++
			langs := make([]string, len(outcomes))
			for i, outcome := range outcomes {
				langs[i] = outcome.Language
			}
			ui.SuccessMsg("%s (%s)", video.Filename, strings.Join(langs, ", "))
		}
	}

	ui.Section("summary")
	ui.SuccessMsg("downloaded: %d/%d", succeeded, len(videos))
	if notFound > 0 {
		ui.WarningMsg("no subtitles found: %d/%d", notFound, len(videos))
	}
	if failed > 0 {
		ui.ErrorMsg("failed: %d/%d", failed, len(videos))
		return fmt.Errorf("%d download(s) failed", failed)
	}
	return nil
}
