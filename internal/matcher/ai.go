package matcher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/captionmate/captionmate/internal/llm"
	"github.com/captionmate/captionmate/internal/media"
)

// aiMatchConfidence is the fixed score assigned to every AI-derived match.
// The model is not asked for a graded confidence.
const aiMatchConfidence = 0.95

// MatchDirectoryAI delegates whole-directory matching to the configured
// model in a single call. Both filename lists are sent once; there are no
// retries and no chunking, so a directory large enough to exceed the model
// context is an accepted limitation.
//
// A transport error, timeout, or unparseable response degrades to all-none
// results for the whole directory. Callers wanting resilience wrap this
// call themselves.
func (m *Matcher) MatchDirectoryAI(ctx context.Context, videos []media.VideoFile, subtitles []media.SubtitleFile) []MatchResult {
	if len(videos) == 0 || len(subtitles) == 0 {
		return []MatchResult{}
	}

	videoNames := make([]string, len(videos))
	for i, v := range videos {
		videoNames[i] = v.Filename
	}
	subtitleNames := make([]string, len(subtitles))
	for i, s := range subtitles {
		subtitleNames[i] = s.Filename
	}

	prompt := buildMatchPrompt(videoNames, subtitleNames)

	var aiMatches map[string]*string
	completion, err := m.provider.Complete(ctx, prompt, llm.CompletionOptions{Temperature: 0})
	if err != nil {
		// Unreachable model and garbage response look the same to the
		// caller: zero matches.
		aiMatches = parseMatchResponse("", videoNames)
	} else {
		aiMatches = parseMatchResponse(completion.Text, videoNames)
	}

	return m.resolveAIMatches(videos, subtitles, aiMatches)
}

// resolveAIMatches converts the parsed name mapping into MatchResults. A
// video mapped to a filename absent from the actual subtitle list is
// treated as unmatched, not an error.
func (m *Matcher) resolveAIMatches(videos []media.VideoFile, subtitles []media.SubtitleFile, aiMatches map[string]*string) []MatchResult {
	subtitleByName := make(map[string]media.SubtitleFile, len(subtitles))
	for _, s := range subtitles {
		subtitleByName[s.Filename] = s
	}

	// Every resolvable subtitle the model named anywhere is echoed into
	// each result's candidate list at the fixed confidence. Collected in
	// video order, not map order, so identical inputs produce identical
	// candidate lists.
	var candidates []MatchCandidate
	for _, video := range videos {
		name := aiMatches[video.Filename]
		if name == nil {
			continue
		}
		if sub, found := subtitleByName[*name]; found {
			candidates = append(candidates, MatchCandidate{Subtitle: sub, Score: aiMatchConfidence})
		}
	}

	results := make([]MatchResult, 0, len(videos))
	for _, video := range videos {
		result := MatchResult{
			Video:      video,
			Score:      0.0,
			Candidates: candidates,
			Method:     MethodNone,
		}

		if name := aiMatches[video.Filename]; name != nil {
			if sub, found := subtitleByName[*name]; found {
				matched := sub
				result.MatchedSubtitle = &matched
				result.Score = aiMatchConfidence
				result.Method = MethodAISemantic
			}
		}

		results = append(results, result)
	}

	return results
}

// buildMatchPrompt renders the single batch-matching prompt. The model is
// instructed to answer with nothing but a JSON object mapping every video
// filename to a subtitle filename or null, and to prefer null over a weak
// guess.
func buildMatchPrompt(videoNames, subtitleNames []string) string {
	videoList, _ := json.MarshalIndent(videoNames, "", "  ")
	subtitleList, _ := json.MarshalIndent(subtitleNames, "", "  ")

	var b strings.Builder
	b.WriteString("Match video files to subtitle files based on semantic similarity.\n\n")
	fmt.Fprintf(&b, "Video files:\n%s\n\n", videoList)
	fmt.Fprintf(&b, "Subtitle files:\n%s\n\n", subtitleList)
	b.WriteString(`For each video file, find the best matching subtitle file (if any).
Output ONLY a JSON object with this exact format:
{
  "video1.mp4": "subtitle1.srt",
  "video2.mkv": "subtitle2.ass",
  "video3.avi": null
}

Rules:
- Match based on title, season/episode numbers, release info
- If no good match exists, use null
- Be conservative - only match when confident
- Output must be valid JSON only
`)
	return b.String()
}
