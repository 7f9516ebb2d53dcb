package matcher

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/captionmate/captionmate/internal/llm"
	"github.com/captionmate/captionmate/internal/media"
)

// stubProvider returns a canned completion, or an error, and records the
// prompt it was given.
type stubProvider struct {
	response string
	err      error
	prompt   string
}

func (s *stubProvider) Name() string                   { return "stub" }
func (s *stubProvider) Ping(_ context.Context) error   { return nil }
func (s *stubProvider) Complete(_ context.Context, prompt string, _ llm.CompletionOptions) (*llm.Completion, error) {
	s.prompt = prompt
	if s.err != nil {
		return nil, s.err
	}
	return &llm.Completion{Text: s.response, Model: "stub-model"}, nil
}

func newAIMatcher(t *testing.T, provider llm.Provider) *Matcher {
	t.Helper()
	m, err := NewMatcher(Config{Threshold: 0.8, Mode: ModeAI, Provider: provider})
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}
	return m
}

func TestMatchDirectoryAI_Success(t *testing.T) {
	stub := &stubProvider{response: `{"Show.S01E01.mkv": "episode.one.chs.srt", "Show.S01E02.mkv": null}`}
	m := newAIMatcher(t, stub)

	videos := []media.VideoFile{video("Show.S01E01.mkv"), video("Show.S01E02.mkv")}
	subs := []media.SubtitleFile{subtitle("episode.one.chs.srt", "zh-cn")}

	results := m.Match(context.Background(), videos, subs)

	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}

	first := results[0]
	if first.Method != MethodAISemantic {
		t.Errorf("method = %q, want %q", first.Method, MethodAISemantic)
	}
	if first.Score != 0.95 {
		t.Errorf("score = %v, want the fixed 0.95", first.Score)
	}
	if !first.HasMatch() || first.MatchedSubtitle.Filename != "episode.one.chs.srt" {
		t.Errorf("matched %+v", first.MatchedSubtitle)
	}

	second := results[1]
	if second.HasMatch() || second.Method != MethodNone || second.Score != 0 {
		t.Errorf("null-mapped video should be unmatched, got %+v", second)
	}

	// Both filename lists went out in one prompt.
	for _, name := range []string{"Show.S01E01.mkv", "Show.S01E02.mkv", "episode.one.chs.srt"} {
		if !strings.Contains(stub.prompt, name) {
			t.Errorf("prompt missing %q", name)
		}
	}
}

func TestMatchDirectoryAI_ProviderErrorDegradesToNone(t *testing.T) {
	m := newAIMatcher(t, &stubProvider{err: errors.New("connection refused")})

	videos := []media.VideoFile{video("Show.S01E01.mkv")}
	subs := []media.SubtitleFile{subtitle("Show.S01E01.srt", "en")}

	results := m.MatchDirectoryAI(context.Background(), videos, subs)

	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if results[0].HasMatch() || results[0].Method != MethodNone {
		t.Errorf("transport failure must degrade to none, got %+v", results[0])
	}
}

func TestMatchDirectoryAI_GarbageResponseDegradesToNone(t *testing.T) {
	m := newAIMatcher(t, &stubProvider{response: "I am sorry, I cannot help with that."})

	videos := []media.VideoFile{video("Show.S01E01.mkv")}
	subs := []media.SubtitleFile{subtitle("Show.S01E01.srt", "en")}

	results := m.MatchDirectoryAI(context.Background(), videos, subs)

	if len(results) != 1 || results[0].HasMatch() {
		t.Errorf("garbage response must degrade to none, got %+v", results)
	}
}

func TestMatchDirectoryAI_UnresolvableSubtitleName(t *testing.T) {
	stub := &stubProvider{response: `{"Show.S01E01.mkv": "hallucinated.srt"}`}
	m := newAIMatcher(t, stub)

	videos := []media.VideoFile{video("Show.S01E01.mkv")}
	subs := []media.SubtitleFile{subtitle("Show.S01E01.srt", "en")}

	results := m.MatchDirectoryAI(context.Background(), videos, subs)

	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if results[0].HasMatch() || results[0].Method != MethodNone {
		t.Errorf("unresolvable name must be a no-match, got %+v", results[0])
	}
}

func TestMatchDirectoryAI_MarkdownWrappedResponse(t *testing.T) {
	stub := &stubProvider{response: "Here you go:\n```json\n{\"Show.S01E01.mkv\": \"Show.S01E01.srt\"}\n```"}
	m := newAIMatcher(t, stub)

	videos := []media.VideoFile{video("Show.S01E01.mkv")}
	subs := []media.SubtitleFile{subtitle("Show.S01E01.srt", "en")}

	results := m.MatchDirectoryAI(context.Background(), videos, subs)

	if len(results) != 1 || !results[0].HasMatch() {
		t.Fatalf("markdown-wrapped JSON should still match, got %+v", results)
	}
	if results[0].Method != MethodAISemantic {
		t.Errorf("method = %q, want %q", results[0].Method, MethodAISemantic)
	}
}

func TestMatchDirectoryAI_CandidateOrderIsStable(t *testing.T) {
	stub := &stubProvider{response: `{
		"a.mkv": "a.srt", "b.mkv": "b.srt", "c.mkv": "c.srt",
		"d.mkv": "d.srt", "e.mkv": "e.srt", "f.mkv": "f.srt"
	}`}
	m := newAIMatcher(t, stub)

	var videos []media.VideoFile
	var subs []media.SubtitleFile
	for _, stem := range []string{"a", "b", "c", "d", "e", "f"} {
		videos = append(videos, video(stem+".mkv"))
		subs = append(subs, subtitle(stem+".srt", "en"))
	}

	want := []string{"a.srt", "b.srt", "c.srt", "d.srt", "e.srt", "f.srt"}
	for run := 0; run < 2; run++ {
		results := m.MatchDirectoryAI(context.Background(), videos, subs)
		if len(results) != len(videos) {
			t.Fatalf("run %d: results = %d, want %d", run, len(results), len(videos))
		}
		for _, result := range results {
			if len(result.Candidates) != len(want) {
				t.Fatalf("run %d: candidates = %d, want %d", run, len(result.Candidates), len(want))
			}
			for i, candidate := range result.Candidates {
				if candidate.Subtitle.Filename != want[i] {
					t.Fatalf("run %d: candidate[%d] = %q, want %q",
						run, i, candidate.Subtitle.Filename, want[i])
				}
			}
		}
	}
}

func TestMatchDirectoryAI_EmptyInputs(t *testing.T) {
	m := newAIMatcher(t, &stubProvider{response: "{}"})

	if got := m.MatchDirectoryAI(context.Background(), nil, nil); len(got) != 0 {
		t.Errorf("empty inputs should produce empty results, got %d", len(got))
	}
	if got := m.MatchDirectoryAI(context.Background(), []media.VideoFile{video("a.mkv")}, nil); len(got) != 0 {
		t.Errorf("missing subtitles should produce empty results, got %d", len(got))
	}
}
