package helpers

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const snippetRadius = 80

// minBrandLen guards the bare-brand check: 1-2 character tokens match far too
// many unrelated words even with boundaries.
const minBrandLen = 3

// ExtractMention searches free-form model output for the target's root domain
// or bare brand token and returns a bounded snippet of surrounding context.
// The domain pattern is tried first, then a word-boundary brand pattern when
// the brand token is long enough. Returns "" when neither matches.
func ExtractMention(text, rootDomain, brandName string) string {
	if text == "" {
		return ""
	}

	patterns := make([]*regexp.Regexp, 0, 2)
	if rootDomain != "" {
		patterns = append(patterns, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(rootDomain)))
	}
	if len(brandName) >= minBrandLen {
		patterns = append(patterns, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(brandName)+`\b`))
	}

	for _, re := range patterns {
		loc := re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		return snippetAround(text, loc[0], loc[1])
	}
	return ""
}

// snippetAround clamps [start, end) to at most snippetRadius runes of
// context on each side, adding ellipses where the text was cut. The window
// counts runes, not bytes, so multibyte context never splits mid-rune.
func snippetAround(text string, start, end int) string {
	from := start
	for i := 0; i < snippetRadius && from > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(text[:from])
		from -= size
	}
	to := end
	for i := 0; i < snippetRadius && to < len(text); i++ {
		_, size := utf8.DecodeRuneInString(text[to:])
		to += size
	}

	var b strings.Builder
	if from > 0 {
		b.WriteString("…")
	}
	b.WriteString(text[from:to])
	if to < len(text) {
		b.WriteString("…")
	}
	return b.String()
}
