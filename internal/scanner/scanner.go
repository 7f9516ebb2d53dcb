// Package scanner walks directories and classifies their contents into
// video and subtitle files.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/captionmate/captionmate/internal/config"
	"github.com/captionmate/captionmate/internal/logging"
	"github.com/captionmate/captionmate/internal/media"
	"github.com/captionmate/captionmate/internal/nas"
)

// Source lists directory entries. Both the local filesystem and the NAS
// client satisfy it.
type Source interface {
	ListDirectory(path string) ([]nas.FileEntry, error)
}

// LocalSource lists directories on the local filesystem.
type LocalSource struct{}

// ListDirectory implements Source via os.ReadDir.
func (LocalSource) ListDirectory(path string) ([]nas.FileEntry, error) {
	dirEntries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", path, err)
	}

	entries := make([]nas.FileEntry, 0, len(dirEntries))
	for _, de := range dirEntries {
		entry := nas.FileEntry{
			Name:  de.Name(),
			Path:  filepath.Join(path, de.Name()),
			IsDir: de.IsDir(),
		}
		if info, infoErr := de.Info(); infoErr == nil {
			entry.Size = info.Size()
			entry.ModifiedTime = info.ModTime()
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// NASSource adapts the NAS client to the Source interface.
type NASSource struct {
	Client *nas.Client
}

// ListDirectory implements Source.
func (s NASSource) ListDirectory(path string) ([]nas.FileEntry, error) {
	return s.Client.ListDirectory(path, "")
}

// Result holds the classified files found under a scan root.
type Result struct {
	Root      string               `json:"root"`
	Videos    []media.VideoFile    `json:"videos"`
	Subtitles []media.SubtitleFile `json:"subtitles"`
	Skipped   int                  `json:"skipped"`
}

// Scanner walks a Source and classifies files by extension. Subtitle
// languages are detected from the filename, falling back to the first
// configured language.
type Scanner struct {
	source    Source
	videoExts []string
	fallback  string
	recursive bool
	log       *logging.Logger
}

// New creates a Scanner over the given source.
func New(source Source, scanning config.ScanningConfig, subtitles config.SubtitlesConfig, log *logging.Logger) *Scanner {
	if log == nil {
		log = logging.Nop()
	}
	exts := scanning.VideoExtensions
	if len(exts) == 0 {
		exts = media.DefaultVideoExtensions
	}
	return &Scanner{
		source:    source,
		videoExts: exts,
		fallback:  subtitles.DefaultLanguage(),
		recursive: scanning.Recursive,
		log:       log,
	}
}

// Scan walks root and returns the classified files, sorted by filename.
func (s *Scanner) Scan(root string) (*Result, error) {
	result := &Result{
		Root:      root,
		Videos:    []media.VideoFile{},
		Subtitles: []media.SubtitleFile{},
	}

	if err := s.walk(root, result); err != nil {
		return nil, err
	}

	sort.Slice(result.Videos, func(i, j int) bool {
		return strings.ToLower(result.Videos[i].Filename) < strings.ToLower(result.Videos[j].Filename)
	})
	sort.Slice(result.Subtitles, func(i, j int) bool {
		return strings.ToLower(result.Subtitles[i].Filename) < strings.ToLower(result.Subtitles[j].Filename)
	})

	s.log.Info("scanner", "scan complete",
		logging.F("root", root),
		logging.F("videos", len(result.Videos)),
		logging.F("subtitles", len(result.Subtitles)),
		logging.F("skipped", result.Skipped))

	return result, nil
}

func (s *Scanner) walk(dir string, result *Result) error {
	entries, err := s.source.ListDirectory(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if strings.HasPrefix(entry.Name, ".") {
			continue
		}
		if entry.IsDir {
			if s.recursive {
				if walkErr := s.walk(entry.Path, result); walkErr != nil {
					s.log.Warn("scanner", "skipping unreadable directory",
						logging.F("path", entry.Path), logging.F("error", walkErr))
				}
			}
			continue
		}

		switch {
		case media.IsVideoFile(entry.Name, s.videoExts):
			result.Videos = append(result.Videos, media.VideoFile{
				Filename:     entry.Name,
				Path:         entry.Path,
				Size:         entry.Size,
				ModifiedTime: entry.ModifiedTime,
			})
		case media.IsSubtitleFile(entry.Name):
			result.Subtitles = append(result.Subtitles, media.SubtitleFile{
				Filename: entry.Name,
				Path:     entry.Path,
				Language: media.DetectLanguage(entry.Name, s.fallback),
				Format:   strings.TrimPrefix(strings.ToLower(filepath.Ext(entry.Name)), "."),
				Size:     entry.Size,
			})
		default:
			result.Skipped++
		}
	}

	return nil
}
