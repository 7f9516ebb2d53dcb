package service

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/captionmate/captionmate/internal/config"
	"github.com/captionmate/captionmate/internal/logging"
	"github.com/captionmate/captionmate/internal/matcher"
	"github.com/captionmate/captionmate/internal/media"
	"github.com/captionmate/captionmate/internal/nas"
	"github.com/captionmate/captionmate/internal/opensubtitles"
)

// Saver writes downloaded subtitle payloads and answers existence
// checks. Implementations exist for the local filesystem and the NAS.
type Saver interface {
	Save(path string, data []byte, overwrite bool) error
	Exists(path string) bool
}

// LocalSaver writes files on the local filesystem.
type LocalSaver struct{}

// Save implements Saver.
func (LocalSaver) Save(p string, data []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(p); err == nil {
			return fmt.Errorf("file already exists: %s", p)
		}
	}
	if dir := filepath.Dir(p); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(p, data, 0o644)
}

// Exists implements Saver.
func (LocalSaver) Exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// NASSaver writes files over SMB.
type NASSaver struct {
	Client *nas.Client
}

// Save implements Saver.
func (s NASSaver) Save(p string, data []byte, overwrite bool) error {
	return s.Client.WriteFile(p, data, overwrite)
}

// Exists implements Saver.
func (s NASSaver) Exists(p string) bool {
	return s.Client.PathExists(p)
}

// DownloadOutcome records one subtitle fetched for a video.
type DownloadOutcome struct {
	Language string                 `json:"language"`
	Path     string                 `json:"path"`
	Subtitle opensubtitles.Subtitle `json:"subtitle"`
}

// Downloader fetches subtitles from OpenSubtitles and stores them next
// to their videos using the configured naming pattern.
type Downloader struct {
	cfg   *config.Config
	api   *opensubtitles.Client
	saver Saver
	log   *logging.Logger
}

// NewDownloader wires a provider client to a Saver.
func NewDownloader(cfg *config.Config, api *opensubtitles.Client, saver Saver, log *logging.Logger) *Downloader {
	if log == nil {
		log = logging.Nop()
	}
	return &Downloader{cfg: cfg, api: api, saver: saver, log: log}
}

// Login authenticates the provider session when credentials are
// configured.
func (d *Downloader) Login(ctx context.Context) error {
	return d.api.Login(ctx)
}

// OpenSubtitlesFromConfig builds a provider client from the config
// section.
func OpenSubtitlesFromConfig(cfg config.OpenSubtitlesConfig) (*opensubtitles.Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no OpenSubtitles API key configured (set opensubtitles.api_key)")
	}
	return opensubtitles.New(opensubtitles.Config{
		APIKey:    cfg.APIKey,
		UserAgent: cfg.UserAgent,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
}

// Languages returns the configured subtitle languages.
func (d *Downloader) Languages() []string {
	return d.cfg.Subtitles.Languages
}

// Search runs a free-text provider query.
func (d *Downloader) Search(ctx context.Context, query string, languages []string) ([]opensubtitles.Subtitle, error) {
	return d.api.Search(ctx, opensubtitles.SearchRequest{
		Query:     query,
		Languages: d.languagesOrDefault(languages),
	})
}

// SearchForVideo looks up candidates for one video, exact release hash
// first when the video file is readable locally, then a normalized-title
// query. Candidates arrive best first.
func (d *Downloader) SearchForVideo(ctx context.Context, video media.VideoFile, languages []string) ([]opensubtitles.Subtitle, error) {
	langs := d.languagesOrDefault(languages)

	if hash, err := opensubtitles.FileHash(video.Path); err == nil {
		results, err := d.api.Search(ctx, opensubtitles.SearchRequest{
			MovieHash:     hash,
			MovieByteSize: video.Size,
			Languages:     langs,
		})
		if err != nil {
			return nil, err
		}
		if len(results) > 0 {
			return results, nil
		}
	}

	title := matcher.NormalizeFilename(video.Filename)
	if title == "" {
		return nil, nil
	}
	return d.api.Search(ctx, opensubtitles.SearchRequest{
		Query:     title,
		Languages: langs,
	})
}

// BestForLanguage picks the top candidate for a language, preferring the
// configured subtitle formats over whatever else the provider returned.
func (d *Downloader) BestForLanguage(candidates []opensubtitles.Subtitle, lang string) (opensubtitles.Subtitle, bool) {
	var fallback opensubtitles.Subtitle
	found := false
	for _, candidate := range candidates {
		if !strings.EqualFold(candidate.Language, lang) {
			continue
		}
		if d.preferredFormat(candidate.FileName) {
			return candidate, true
		}
		if !found {
			fallback = candidate
			found = true
		}
	}
	return fallback, found
}

// DownloadForVideo fetches the best candidate for each requested
// language and writes it next to the video, or into outputDir when set.
// An empty result with nil error means no candidates were found;
// per-language failures are logged and do not stop the remaining
// languages.
func (d *Downloader) DownloadForVideo(ctx context.Context, video media.VideoFile, languages []string, outputDir string) ([]DownloadOutcome, error) {
	langs := d.languagesOrDefault(languages)

	candidates, err := d.SearchForVideo(ctx, video, langs)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	var outcomes []DownloadOutcome
	var lastErr error
	for _, lang := range langs {
		best, ok := d.BestForLanguage(candidates, lang)
		if !ok {
			continue
		}

		payload, err := d.api.Download(ctx, best.FileID)
		if err != nil {
			lastErr = err
			d.log.Error("downloader", "subtitle download failed", err,
				logging.F("video", video.Filename), logging.F("language", lang))
			continue
		}

		name := matcher.FormatSubtitleName(
			d.cfg.Subtitles.NamingPattern, video.Filename, lang, subtitleExt(best.FileName, payload.FileName))
		target := siblingPath(video.Path, name)
		if outputDir != "" {
			target = joinDir(outputDir, name)
		}

		if err := d.saver.Save(target, payload.Data, true); err != nil {
			lastErr = err
			d.log.Error("downloader", "subtitle save failed", err,
				logging.F("target", target))
			continue
		}

		outcomes = append(outcomes, DownloadOutcome{Language: lang, Path: target, Subtitle: best})
		d.log.Info("downloader", "subtitle downloaded",
			logging.F("video", video.Filename),
			logging.F("language", lang),
			logging.F("target", target))
	}

	if len(outcomes) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return outcomes, nil
}

// HasSubtitle reports whether any configured language already has a
// subtitle sitting next to the video, under the common naming shapes.
func (d *Downloader) HasSubtitle(video media.VideoFile) bool {
	stem := video.Stem()
	for _, lang := range d.cfg.Subtitles.Languages {
		for _, format := range d.cfg.Subtitles.Formats {
			names := []string{
				fmt.Sprintf("%s.%s.%s", stem, lang, format),
				fmt.Sprintf("%s.%s", stem, format),
				fmt.Sprintf("%s-%s.%s", stem, lang, format),
			}
			for _, name := range names {
				if d.saver.Exists(siblingPath(video.Path, name)) {
					return true
				}
			}
		}
	}
	return false
}

func (d *Downloader) languagesOrDefault(languages []string) []string {
	if len(languages) > 0 {
		return languages
	}
	return d.cfg.Subtitles.Languages
}

func (d *Downloader) preferredFormat(name string) bool {
	lower := strings.ToLower(name)
	for _, format := range d.cfg.Subtitles.Formats {
		if strings.HasSuffix(lower, "."+strings.ToLower(format)) {
			return true
		}
	}
	return false
}

// subtitleExt derives the downloaded subtitle's extension from the
// candidate or payload filename, defaulting to srt.
func subtitleExt(names ...string) string {
	for _, name := range names {
		if ext := strings.TrimPrefix(filepath.Ext(name), "."); ext != "" {
			return ext
		}
	}
	return "srt"
}

// joinDir appends name to dir, preserving the path flavor the same way
// siblingPath does.
func joinDir(dir, name string) string {
	if strings.ContainsRune(dir, '/') {
		return path.Join(dir, name)
	}
	return filepath.Join(dir, name)
}
