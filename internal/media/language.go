package media

import (
	"strings"

	"golang.org/x/text/language"
)

// languagePatterns maps language codes to filename tokens commonly used by
// subtitle release groups. Checked in declaration order so the more
// specific traditional-Chinese tokens win over the generic ones.
var languagePatterns = []struct {
	code     string
	patterns []string
}{
	{"zh-tw", []string{".cht.", ".zh-tw.", ".tc.", ".繁体.", ".繁體.", ".traditional."}},
	{"zh-cn", []string{".zh.", ".chi.", ".chs.", ".zh-cn.", ".sc.", ".chinese.", "chinese", ".中文.", ".简体."}},
	{"en", []string{".en.", ".eng.", ".english.", "english"}},
	{"ja", []string{".jp.", ".ja.", ".jpn.", ".japanese.", "japanese"}},
	{"ko", []string{".ko.", ".kor.", ".korean.", "korean"}},
}

// DetectLanguage guesses the subtitle language from filename tokens,
// falling back to the given default when nothing matches. The fallback is
// typically the first configured subtitle language.
func DetectLanguage(filename, fallback string) string {
	name := strings.ToLower(filename)

	for _, entry := range languagePatterns {
		for _, pattern := range entry.patterns {
			if strings.Contains(name, pattern) {
				return entry.code
			}
		}
	}

	return fallback
}

// CanonicalLanguage normalizes an explicit language tag ("zh_CN", "EN")
// into its canonical BCP 47 lowercase form. Unparseable tags are returned
// lowercased rather than rejected, since rename templates only need a
// stable string.
func CanonicalLanguage(tag string) string {
	parsed, err := language.Parse(strings.ReplaceAll(tag, "_", "-"))
	if err != nil {
		return strings.ToLower(tag)
	}
	return strings.ToLower(parsed.String())
}
