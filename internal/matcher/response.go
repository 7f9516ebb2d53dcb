package matcher

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fencedBlockPattern = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)\\s*```")
	quotedPairPattern  = regexp.MustCompile(`"([^"]+)"\s*:\s*(?:"([^"]*)"|null)`)
)

// matchMapping is the decoded video-to-subtitle mapping. A nil value means
// the model mapped the video to null (no match). ok is false when no
// strategy could recover a usable object.
type matchMapping struct {
	matches map[string]*string
	ok      bool
}

// parseMatchResponse recovers a video-to-subtitle mapping from unstructured
// model output. It never fails: the returned map always contains exactly
// one entry per expected key, nil for anything the response did not cover,
// and keys the model invented are dropped.
//
// Strategies, first success wins: strict JSON, fenced code block, largest
// brace-delimited substring, then quoted key/value salvage.
func parseMatchResponse(raw string, expectedKeys []string) map[string]*string {
	mapping := decodeMatchObject(raw)

	if !mapping.ok {
		if inner, found := fencedBlockContent(raw); found {
			mapping = decodeMatchObject(inner)
		}
	}

	if !mapping.ok {
		if inner, found := braceSubstring(raw); found {
			mapping = decodeMatchObject(inner)
		}
	}

	if !mapping.ok {
		mapping = salvageQuotedPairs(raw)
	}

	return completeMapping(mapping, expectedKeys)
}

// decodeMatchObject parses s as a JSON object whose values are all strings
// or null. Nested objects, arrays, numbers, and booleans reject the whole
// object.
func decodeMatchObject(s string) matchMapping {
	var generic map[string]json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &generic); err != nil {
		return matchMapping{}
	}

	matches := make(map[string]*string, len(generic))
	for key, value := range generic {
		trimmed := strings.TrimSpace(string(value))
		if trimmed == "null" {
			matches[key] = nil
			continue
		}
		var str string
		if err := json.Unmarshal(value, &str); err != nil {
			return matchMapping{}
		}
		matches[key] = &str
	}

	return matchMapping{matches: matches, ok: true}
}

// fencedBlockContent extracts the interior of the first ``` code block,
// optionally tagged json.
func fencedBlockContent(raw string) (string, bool) {
	m := fencedBlockPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// braceSubstring returns the span from the first '{' through the last '}'.
func braceSubstring(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

// salvageQuotedPairs scans for "key": "value" or "key": null pairs anywhere
// in the text. This recovers something even from chat-style preambles
// wrapping valid-looking pairs.
func salvageQuotedPairs(raw string) matchMapping {
	matches := make(map[string]*string)

	for _, m := range quotedPairPattern.FindAllStringSubmatchIndex(raw, -1) {
		key := raw[m[2]:m[3]]
		if m[4] == -1 {
			matches[key] = nil
			continue
		}
		value := raw[m[4]:m[5]]
		matches[key] = &value
	}

	return matchMapping{matches: matches, ok: true}
}

// completeMapping collapses a possibly-malformed mapping into a total one:
// every expected key present (nil when missing), every unexpected key
// dropped.
func completeMapping(mapping matchMapping, expectedKeys []string) map[string]*string {
	complete := make(map[string]*string, len(expectedKeys))
	for _, key := range expectedKeys {
		if mapping.ok {
			if value, present := mapping.matches[key]; present {
				complete[key] = value
				continue
			}
		}
		complete[key] = nil
	}
	return complete
}
