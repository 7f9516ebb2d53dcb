package matcher

import (
	"context"
	"fmt"
	"sort"

	"github.com/captionmate/captionmate/internal/llm"
	"github.com/captionmate/captionmate/internal/media"
)

// MatchMethod describes how a match was derived, independent of whether it
// met the acceptance threshold.
type MatchMethod string

const (
	MethodNone       MatchMethod = "none"
	MethodExact      MatchMethod = "exact"
	MethodNormalized MatchMethod = "normalized"
	MethodFuzzy      MatchMethod = "fuzzy"
	MethodAISemantic MatchMethod = "ai_semantic"
)

// Mode selects the matching strategy.
type Mode string

const (
	// ModeRegex matches on filename similarity alone.
	ModeRegex Mode = "regex"
	// ModeAI delegates whole-directory matching to a language model. A
	// failed call degrades to no matches, never to regex.
	ModeAI Mode = "ai"
)

// exactScoreFloor is the fixed score at or above which a match counts as
// exact, regardless of the caller's acceptance threshold.
const exactScoreFloor = 0.95

// prefilterFloor is the coarse pruning cutoff applied before per-video
// scoring. It is not the acceptance gate.
const prefilterFloor = 0.1

// MatchCandidate pairs a subtitle with its similarity score for one video.
type MatchCandidate struct {
	Subtitle media.SubtitleFile `json:"subtitle"`
	Score    float64            `json:"score"`
}

// MatchResult is the outcome of matching one video against the available
// subtitles. MatchedSubtitle is nil unless the score met the acceptance
// threshold (or the AI explicitly named the subtitle). Never mutated after
// creation.
type MatchResult struct {
	Video           media.VideoFile     `json:"video"`
	MatchedSubtitle *media.SubtitleFile `json:"matched_subtitle,omitempty"`
	Score           float64             `json:"score"`
	Candidates      []MatchCandidate    `json:"candidates,omitempty"`
	Method          MatchMethod         `json:"method"`
}

// HasMatch reports whether a subtitle was attached.
func (r MatchResult) HasMatch() bool {
	return r.MatchedSubtitle != nil
}

// ConfidenceLevel buckets the score for display.
func (r MatchResult) ConfidenceLevel() string {
	switch {
	case r.Score >= 0.95:
		return "high"
	case r.Score >= 0.8:
		return "medium"
	default:
		return "low"
	}
}

// Config holds the construction-time settings of a Matcher.
type Config struct {
	// Threshold is the acceptance threshold in [0, 1]; matches scoring
	// below it are reported but not attached.
	Threshold float64
	// Mode selects deterministic or AI matching.
	Mode Mode
	// Provider supplies the model call for ModeAI. Ignored in ModeRegex.
	Provider llm.Provider
}

// Matcher pairs subtitles with videos. Threshold and mode are fixed at
// construction; instances are safe to reuse sequentially. Deterministic
// matching is pure and CPU-only.
type Matcher struct {
	threshold float64
	mode      Mode
	provider  llm.Provider
}

// NewMatcher validates cfg and constructs a Matcher. ModeAI requires a
// provider.
func NewMatcher(cfg Config) (*Matcher, error) {
	if cfg.Threshold < 0 || cfg.Threshold > 1 {
		return nil, fmt.Errorf("similarity threshold must be between 0 and 1")
	}
	switch cfg.Mode {
	case ModeRegex:
	case ModeAI:
		if cfg.Provider == nil {
			return nil, fmt.Errorf("ai mode requires an LLM provider")
		}
	case "":
		cfg.Mode = ModeRegex
	default:
		return nil, fmt.Errorf("unknown matching mode %q", cfg.Mode)
	}

	return &Matcher{
		threshold: cfg.Threshold,
		mode:      cfg.Mode,
		provider:  cfg.Provider,
	}, nil
}

// Threshold returns the configured acceptance threshold.
func (m *Matcher) Threshold() float64 { return m.threshold }

// Mode returns the configured matching mode.
func (m *Matcher) Mode() Mode { return m.mode }

// Match runs directory-level matching in the configured mode. The context
// only matters for ModeAI, which performs one blocking model call.
func (m *Matcher) Match(ctx context.Context, videos []media.VideoFile, subtitles []media.SubtitleFile) []MatchResult {
	if m.mode == ModeAI {
		return m.MatchDirectoryAI(ctx, videos, subtitles)
	}
	return m.MatchDirectory(videos, subtitles)
}

// MatchDirectory matches every video against the subtitle list
// independently. There is no subtitle-exclusivity constraint: two videos
// may claim the same subtitle as their best match.
func (m *Matcher) MatchDirectory(videos []media.VideoFile, subtitles []media.SubtitleFile) []MatchResult {
	results := make([]MatchResult, 0, len(videos))

	for _, video := range videos {
		var candidates []media.SubtitleFile
		for _, sub := range subtitles {
			if Similarity(video.Filename, sub.Filename) > prefilterFloor {
				candidates = append(candidates, sub)
			}
		}
		results = append(results, m.FindBestMatch(video, candidates))
	}

	return results
}

// FindBestMatch scores every candidate subtitle against the video and
// classifies the winner. The subtitle is only attached when its score
// reaches the acceptance threshold; a "fuzzy" classification is
// diagnostics-only and never attaches.
func (m *Matcher) FindBestMatch(video media.VideoFile, subtitles []media.SubtitleFile) MatchResult {
	if len(subtitles) == 0 {
		return MatchResult{
			Video:  video,
			Score:  0.0,
			Method: MethodNone,
		}
	}

	candidates := make([]MatchCandidate, 0, len(subtitles))
	for _, sub := range subtitles {
		candidates = append(candidates, MatchCandidate{
			Subtitle: sub,
			Score:    Similarity(video.Filename, sub.Filename),
		})
	}

	// Stable sort keeps equal-scored candidates in input order so results
	// are deterministic.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	best := candidates[0]

	method := MethodNone
	switch {
	case best.Score >= exactScoreFloor:
		method = MethodExact
	case best.Score >= m.threshold:
		method = MethodNormalized
	case best.Score > 0.0:
		method = MethodFuzzy
	}

	var matched *media.SubtitleFile
	if best.Score >= m.threshold {
		sub := best.Subtitle
		matched = &sub
	}

	return MatchResult{
		Video:           video,
		MatchedSubtitle: matched,
		Score:           best.Score,
		Candidates:      candidates,
		Method:          method,
	}
}
