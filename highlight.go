package boolgo

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// highlight wraps every token of text whose stem is in terms with <em> tags.
// The scan is a single pass over whole tokens, so overlapping or repeated
// query words never produce nested markup.
func (b *Backend) highlight(text string, terms map[string]struct{}) string {
	if len(terms) == 0 {
		return text
	}

	var sb strings.Builder
	last := 0
	for start := 0; start < len(text); {
		r, size := utf8.DecodeRuneInString(text[start:])
		if !isWordRune(r) {
			start += size
			continue
		}

		end := start + size
		for end < len(text) {
			r, size := utf8.DecodeRuneInString(text[end:])
			if !isWordRune(r) {
				break
			}
			end += size
		}

		token := text[start:end]
		if _, ok := terms[b.stem(strings.ToLower(token))]; ok {
			sb.WriteString(text[last:start])
			sb.WriteString("<em>")
			sb.WriteString(token)
			sb.WriteString("</em>")
			last = end
		}
		start = end
	}

	if last == 0 {
		return text
	}
	sb.WriteString(text[last:])
	return sb.String()
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
