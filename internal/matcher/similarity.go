package matcher

import "strings"

// Similarity computes a symmetric score in [0, 1] between two raw
// filenames. Both names are normalized internally; callers pass raw
// filenames (normalization is idempotent, so pre-normalized input is
// harmless, just wasted work).
//
// Identical normalized names score exactly 1.0. Otherwise the score is the
// Jaccard overlap of the whitespace-separated token sets; duplicate tokens
// collapse. Empty token sets score 0.0 so two all-punctuation names never
// count as similar.
func Similarity(name1, name2 string) float64 {
	norm1 := NormalizeFilename(name1)
	norm2 := NormalizeFilename(name2)

	if norm1 == norm2 {
		return 1.0
	}

	words1 := tokenSet(norm1)
	words2 := tokenSet(norm2)

	if len(words1) == 0 || len(words2) == 0 {
		return 0.0
	}

	intersection := 0
	for w := range words1 {
		if words2[w] {
			intersection++
		}
	}
	union := len(words1) + len(words2) - intersection

	return float64(intersection) / float64(union)
}

func tokenSet(normalized string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(normalized) {
		set[w] = true
	}
	return set
}
