// Package media defines the file descriptors shared by the scanner,
// matcher, and rename service.
package media

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// SubtitleExtensions is the fixed set of recognized subtitle file extensions.
var SubtitleExtensions = map[string]bool{
	".srt": true, ".ass": true, ".ssa": true, ".vtt": true, ".sub": true,
}

// DefaultVideoExtensions is the default video extension set; the scanning
// config may override it.
var DefaultVideoExtensions = []string{
	".mp4", ".mkv", ".avi", ".mov", ".wmv", ".m4v", ".flv", ".webm",
}

// VideoFile represents a video file with its metadata. The matcher only
// reads Filename, Path, and Size; the probe fields are filled by the
// analyzer when available.
type VideoFile struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`

	// Probe metadata (optional, zero when ffprobe is unavailable)
	Duration float64 `json:"duration,omitempty"`
	Width    int     `json:"width,omitempty"`
	Height   int     `json:"height,omitempty"`
	Codec    string  `json:"codec,omitempty"`
	Bitrate  int64   `json:"bitrate,omitempty"`
	FPS      float64 `json:"fps,omitempty"`

	ModifiedTime time.Time `json:"modified_time,omitempty"`
}

// Stem returns the filename without its extension.
func (v VideoFile) Stem() string {
	return strings.TrimSuffix(v.Filename, filepath.Ext(v.Filename))
}

// SizeHuman returns the file size in human readable form.
func (v VideoFile) SizeHuman() string {
	return FormatSize(v.Size)
}

// DurationHuman formats the probed duration as HH:MM:SS, or MM:SS when
// under an hour.
func (v VideoFile) DurationHuman() string {
	if v.Duration <= 0 {
		return "Unknown"
	}
	total := int(v.Duration)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// Resolution returns "WxH" when probe data is present.
func (v VideoFile) Resolution() string {
	if v.Width > 0 && v.Height > 0 {
		return fmt.Sprintf("%dx%d", v.Width, v.Height)
	}
	return "Unknown"
}

// SubtitleFile represents a subtitle file. Language is assigned during
// scanning via filename-pattern detection; the matcher treats it as given.
type SubtitleFile struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Language string `json:"language"`
	Format   string `json:"format"` // extension without dot: srt, ass, vtt...
	Size     int64  `json:"size"`
}

// SizeHuman returns the file size in human readable form.
func (s SubtitleFile) SizeHuman() string {
	return FormatSize(s.Size)
}

// IsVideoFile reports whether name carries one of the given video
// extensions (case-insensitive).
func IsVideoFile(name string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// IsSubtitleFile reports whether name carries a recognized subtitle
// extension.
func IsSubtitleFile(name string) bool {
	return SubtitleExtensions[strings.ToLower(filepath.Ext(name))]
}

// FormatSize renders a byte count as a human readable string.
func FormatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
