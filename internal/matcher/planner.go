package matcher

import (
	"path/filepath"
	"strings"

	"github.com/captionmate/captionmate/internal/media"
)

// RenameOperation is a planned (not yet executed) subtitle rename. The
// engine never performs the rename; the caller decides skip/overwrite
// policy and executes over whatever transport it uses.
type RenameOperation struct {
	Subtitle    media.SubtitleFile `json:"subtitle"`
	TargetVideo media.VideoFile    `json:"target_video"`
	OldName     string             `json:"old_name"`
	NewName     string             `json:"new_name"`
	Confidence  float64            `json:"confidence"`
}

// NeedsRename reports whether the planned name differs from the current
// one.
func (op RenameOperation) NeedsRename() bool {
	return op.OldName != op.NewName
}

// DefaultNamingPattern is the subtitle naming template used when the
// configuration does not override it. Placeholders: {filename} is the
// video stem, {lang} the language code, {ext} the subtitle extension.
const DefaultNamingPattern = "{filename}.{lang}.{ext}"

// SubtitleFilename builds the target subtitle name for a video:
// "<video stem>.<language>.<extension>".
func SubtitleFilename(videoFilename, language, subtitleExt string) string {
	return FormatSubtitleName(DefaultNamingPattern, videoFilename, language, subtitleExt)
}

// FormatSubtitleName renders a naming pattern for a video. Unknown
// placeholders pass through untouched.
func FormatSubtitleName(pattern, videoFilename, language, subtitleExt string) string {
	if pattern == "" {
		pattern = DefaultNamingPattern
	}
	stem := strings.TrimSuffix(videoFilename, filepath.Ext(videoFilename))

	replacer := strings.NewReplacer(
		"{filename}", stem,
		"{lang}", language,
		"{ext}", subtitleExt,
	)
	return replacer.Replace(pattern)
}

// PlanRenames turns successful matches into rename operations using the
// given naming pattern (empty means DefaultNamingPattern). Results
// without an attached subtitle are silently excluded. No collision
// detection is performed: two subtitles matched to the same video and
// language produce the same target name, and the execution layer owns the
// skip-or-overwrite decision.
func PlanRenames(results []MatchResult, pattern string) []RenameOperation {
	var operations []RenameOperation

	for _, result := range results {
		if !result.HasMatch() {
			continue
		}

		subtitle := *result.MatchedSubtitle
		ext := strings.TrimPrefix(filepath.Ext(subtitle.Filename), ".")
		newName := FormatSubtitleName(pattern, result.Video.Filename, subtitle.Language, ext)

		operations = append(operations, RenameOperation{
			Subtitle:    subtitle,
			TargetVideo: result.Video,
			OldName:     subtitle.Filename,
			NewName:     newName,
			Confidence:  result.Score,
		})
	}

	return operations
}
