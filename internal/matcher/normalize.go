// Package matcher pairs subtitle files with video files using filename
// similarity, with an optional AI-assisted mode for names that heuristics
// cannot relate.
package matcher

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// Bracketed and parenthesized tag spans: [1080p], (2023), [BluRay].
	// Non-greedy, no nesting support; unbalanced brackets leave residue.
	bracketTagPattern = regexp.MustCompile(`\[.*?\]`)
	parenTagPattern   = regexp.MustCompile(`\(.*?\)`)

	// Release/codec/quality tokens appearing as dot- or dash-delimited
	// segments.
	releaseTagPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\.(?:HDTV|WEB-DL|BluRay|BDRip|DVDRip|WEBRip|REMUX)`),
		regexp.MustCompile(`(?i)\.(?:x264|h264|x265|h265|HEVC|AVC)`),
		regexp.MustCompile(`(?i)\.(?:AAC|DTS|AC3|MP3|FLAC)`),
		regexp.MustCompile(`(?i)\.(?:1080p|720p|480p|4K|UHD)`),
		regexp.MustCompile(`(?i)-(?:RARBG|YTS|ETRG|FGT|SPARKS|DIMENSION|GROUP)`),
	}

	// Runs of dots and whitespace collapse to a single space.
	separatorRunPattern = regexp.MustCompile(`[.\s]+`)
)

// NormalizeFilename reduces a filename to a canonical lowercase title used
// only for comparison: extension dropped, bracketed tags removed, release
// tokens stripped, separators collapsed. Idempotent; always returns a
// string, possibly empty.
func NormalizeFilename(filename string) string {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))

	name = bracketTagPattern.ReplaceAllString(name, "")
	name = parenTagPattern.ReplaceAllString(name, "")

	for _, re := range releaseTagPatterns {
		name = re.ReplaceAllString(name, "")
	}

	name = separatorRunPattern.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)

	return strings.ToLower(name)
}
