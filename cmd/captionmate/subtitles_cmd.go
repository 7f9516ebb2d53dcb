package main

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/captionmate/captionmate/internal/config"
	"github.com/captionmate/captionmate/internal/logging"
	"github.com/captionmate/captionmate/internal/media"
	"github.com/captionmate/captionmate/internal/service"
	"github.com/captionmate/captionmate/internal/ui"
)

func newSubtitlesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subtitles",
		Short: "Search and download subtitles from OpenSubtitles",
		Long: `Commands talking to the OpenSubtitles provider. They require an API
key (captionmate config set opensubtitles.api_key <key>).

Examples:
  captionmate subtitles search "movie 2023"
  captionmate subtitles download /Media/Movies/Movie.2023.mkv
  captionmate subtitles batch /Media/Movies --skip-existing`,
	}

	cmd.AddCommand(newSubtitlesSearchCmd())
	cmd.AddCommand(newSubtitlesDownloadCmd())
	cmd.AddCommand(newSubtitlesBatchCmd())

	return cmd
}

// openDownloader builds an authenticated provider session over the
// target's saver.
func openDownloader(ctx context.Context, cfg *config.Config, saver service.Saver, log *logging.Logger) (*service.Downloader, error) {
	client, err := service.OpenSubtitlesFromConfig(cfg.OpenSubtitles)
	if err != nil {
		return nil, err
	}
	dl := service.NewDownloader(cfg, client, saver, log)
	if err := dl.Login(ctx); err != nil {
		return nil, err
	}
	return dl, nil
}

// languageFlags canonicalizes --language values; empty means the
// configured list.
func languageFlags(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		out = append(out, media.CanonicalLanguage(value))
	}
	return out
}

func newSubtitlesSearchCmd() *cobra.Command {
	var (
		languages []string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search for subtitles by movie or show name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubtitlesSearch(cmd.Context(), args[0], languageFlags(languages), limit)
		},
	}

	cmd.Flags().StringSliceVar(&languages, "language", nil, "language codes to search (default from config)")
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of results")

	return cmd
}

func runSubtitlesSearch(ctx context.Context, query string, languages []string, limit int) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	defer log.Close()

	dl, err := openDownloader(ctx, cfg, service.LocalSaver{}, log)
	if err != nil {
		return err
	}

	spin := ui.NewSpinner(fmt.Sprintf("Searching for %q", query))
	spin.Start()
	results, err := dl.Search(ctx, query, languages)
	spin.Stop()
	if err != nil {
		return err
	}

	if len(results) == 0 {
		ui.WarningMsg("no subtitles found for %q", query)
		return nil
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	ui.Section(fmt.Sprintf("subtitles (%d)", len(results)))
	table := ui.NewTable("LANGUAGE", "FILENAME", "DOWNLOADS", "RATING", "SIZE", "RELEASE")
	for _, s := range results {
		table.AddRow(s.Language, ui.Subtitle(s.FileName),
			fmt.Sprintf("%d", s.Downloads), fmt.Sprintf("%.1f", s.Rating),
			s.SizeHuman(), s.Release)
	}
	table.Render()

	return nil
}

func newSubtitlesDownloadCmd() *cobra.Command {
	var (
		languages []string
		outputDir string
		local     bool
	)

	cmd := &cobra.Command{
		Use:   "download <video path>",
		Short: "Download subtitles for one video file",
		Long: `Find and download the best subtitle for a video, one per configured
language, named by the subtitle naming pattern and stored next to the
video unless --output-dir is given.

Examples:
  captionmate subtitles download /Media/Movies/Movie.2023.mkv
  captionmate subtitles download ~/Downloads/Movie.2023.mkv --local --language en`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubtitlesDownload(cmd.Context(), args[0], languageFlags(languages), outputDir, local)
		},
	}

	cmd.Flags().StringSliceVar(&languages, "language", nil, "language codes to download (default from config)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "directory for downloaded subtitles (default: next to the video)")
	cmd.Flags().BoolVarP(&local, "local", "l", false, "the video path is local instead of on the NAS")

	return cmd
}

func runSubtitlesDownload(ctx context.Context, videoPath string, languages []string, outputDir string, local bool) error {
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

	video, err := statVideo(tgt, videoPath, local)
	if err != nil {
		return err
	}

	dl, err := openDownloader(ctx, cfg, tgt.saver, log)
	if err != nil {
		return err
	}

	if dryRun {
		return previewDownload(ctx, dl, video, languages)
	}

	spin := ui.NewSpinner("Downloading subtitles")
	spin.Start()
	outcomes, err := dl.DownloadForVideo(ctx, video, languages, outputDir)
	spin.Stop()
	if err != nil {
		return err
	}

	if len(outcomes) == 0 {
		ui.WarningMsg("no subtitles found for %s", video.Filename)
		return nil
	}
	for _, outcome := range outcomes {
		ui.SuccessMsg("downloaded %s: %s", outcome.Language, ui.Path(outcome.Path))
	}
	return nil
}

// previewDownload lists what DownloadForVideo would fetch.
func previewDownload(ctx context.Context, dl *service.Downloader, video media.VideoFile, languages []string) error {
	candidates, err := dl.SearchForVideo(ctx, video, languages)
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		ui.WarningMsg("no subtitles found for %s", video.Filename)
		return nil
	}

	langs := languages
	if len(langs) == 0 {
		langs = dl.Languages()
	}

	ui.Section("would download")
	table := ui.NewTable("LANGUAGE", "FILENAME", "DOWNLOADS", "SIZE")
	for _, lang := range langs {
		if best, ok := dl.BestForLanguage(candidates, lang); ok {
			table.AddRow(lang, ui.Subtitle(best.FileName), fmt.Sprintf("%d", best.Downloads), best.SizeHuman())
		}
	}
	if table.Len() == 0 {
		ui.WarningMsg("no candidates for the requested languages")
		return nil
	}
	table.Render()
	return nil
}

// statVideo resolves the filename and size of a video path on the
// chosen target.
func statVideo(tgt *target, videoPath string, local bool) (media.VideoFile, error) {
	if local {
		info, err := os.Stat(videoPath)
		if err != nil {
			return media.VideoFile{}, fmt.Errorf("video file not found: %s", videoPath)
		}
		return media.VideoFile{
			Filename: filepath.Base(videoPath),
			Path:     videoPath,
			Size:     info.Size(),
		}, nil
	}

	name := path.Base(videoPath)
	entries, err := tgt.source.ListDirectory(path.Dir(videoPath))
	if err != nil {
		return media.VideoFile{}, err
	}
	for _, entry := range entries {
		if entry.Name == name && !entry.IsDir {
			return media.VideoFile{Filename: entry.Name, Path: entry.Path, Size: entry.Size}, nil
		}
	}
	return media.VideoFile{}, fmt.Errorf("video file not found: %s", videoPath)
}

func newSubtitlesBatchCmd() *cobra.Command {
	var (
		languages    []string
		outputDir    string
		local        bool
		skipExisting bool
	)

	cmd := &cobra.Command{
		Use:   "batch <path>",
		Short: "Download subtitles for every video in a directory",
		Long: `Scan a directory and download subtitles for each video found.

With --skip-existing, videos that already have a subtitle next to them
are left alone.

Examples:
  captionmate subtitles batch /Media/Movies --skip-existing
  captionmate subtitles batch ~/Downloads --local --language en`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBulkDownload(cmd.Context(), args[0], bulkOptions{
				languages:    languageFlags(languages),
				outputDir:    outputDir,
				local:        local,
				skipExisting: skipExisting,
			})
		},
	}

	cmd.Flags().StringSliceVar(&languages, "language", nil, "language codes to download (default from config)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "directory for downloaded subtitles (default: next to each video)")
	cmd.Flags().BoolVarP(&local, "local", "l", false, "operate on a local directory instead of the NAS")
	cmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "skip videos that already have subtitles")

	return cmd
}
