package matcher

import "testing"

func TestNormalizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{
			name:     "release tags and group stripped",
			filename: "Show.S01E01.1080p.BluRay.x264-GROUP.mkv",
			want:     "show s01e01",
		},
		{
			name:     "plain episode name",
			filename: "Show.S01E01.srt",
			want:     "show s01e01",
		},
		{
			name:     "bracketed tags removed",
			filename: "Movie [1080p] [BluRay].mkv",
			want:     "movie",
		},
		{
			name:     "parenthesized year removed",
			filename: "Movie (2023).mp4",
			want:     "movie",
		},
		{
			name:     "known release group suffix removed",
			filename: "Movie.2023.1080p.WEB-DL.AAC-RARBG.mp4",
			want:     "movie 2023",
		},
		{
			name:     "dots collapse to spaces",
			filename: "Some...Long....Title.mkv",
			want:     "some long title",
		},
		{
			name:     "unbalanced bracket leaves residue",
			filename: "Movie [1080p.mkv",
			want:     "movie [1080p",
		},
		{
			name:     "empty input",
			filename: "",
			want:     "",
		},
		{
			name:     "only tags",
			filename: "[1080p](2023).mkv",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeFilename(tt.filename)
			if got != tt.want {
				t.Errorf("NormalizeFilename(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}

func TestNormalizeFilename_Idempotent(t *testing.T) {
	inputs := []string{
		"Show.S01E01.1080p.BluRay.x264-GROUP.mkv",
		"Movie (2023) [Directors Cut].mp4",
		"already normalized title",
		"",
		"...only.dots...",
		"中文字幕.S02E05.WEB-DL.srt",
	}

	for _, input := range inputs {
		once := NormalizeFilename(input)
		twice := NormalizeFilename(once)
		if once != twice {
			t.Errorf("normalize not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}
