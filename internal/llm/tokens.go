package llm

import "unicode"

// EstimateTokens gives a rough local token count for budgeting prompts before
// sending them. CJK code points tokenize close to one token each; everything
// else averages around four characters per token. Provider-reported usage is
// authoritative when a response carries it.
func EstimateTokens(text string) int {
	cjk := 0
	other := 0
	for _, r := range text {
		if isCJK(r) {
			cjk++
		} else {
			other++
		}
	}
	return cjk + (other+3)/4
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) ||
		unicode.Is(unicode.Hangul, r)
}
