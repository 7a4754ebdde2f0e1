package glossary

import "unicode"

// Match is one accepted occurrence of a glossary term in a text buffer.
//
// Start and End are a half-open span over the buffer's code points (runes),
// not bytes: source text is routinely non-Latin script where byte offsets
// diverge from character positions. MatchedAlias is the alias string that
// matched, or empty when the entry's primary term itself matched (the
// original term in source mode, the translation in translated mode).
type Match struct {
	Entry        *Entry `json:"entry"`
	Start        int    `json:"start"`
	End          int    `json:"end"`
	MatchedAlias string `json:"matched_alias,omitempty"`
}

// ScanOptions alters matcher behavior.
type ScanOptions struct {
	// WholeWords requires matches to sit on word boundaries (neighbouring
	// rune is not a letter or digit). Off by default: substring matching is
	// the contract, correct for scripts without word delimiters. Enabling it
	// suppresses Latin-script false positives ("Art" inside "Article") at
	// the cost of suppressing matches inside CJK runs.
	WholeWords bool
}

// Detect scans text against a prebuilt term index and returns the maximal
// non-overlapping match set, sorted by start position.
//
// The scan walks the text left to right one code point at a time. At each
// position not covered by an accepted match, the candidates sharing the
// position's first rune are tried in index order — longest first, ties broken
// by entry order, primary term before alias, then alias order — and the first
// full match wins. The scan then resumes past the match end, so accepted
// spans never overlap and consumed text is never reconsidered.
//
// Detect is a pure function: it never mutates the index or the text, performs
// no I/O, and never fails. Empty text or an empty index yields no matches.
func Detect(text string, idx *TermIndex) []Match {
	return DetectWithOptions(text, idx, ScanOptions{})
}

// DetectWithOptions is Detect with explicit scan options.
func DetectWithOptions(text string, idx *TermIndex, opts ScanOptions) []Match {
	if text == "" || idx == nil || idx.size == 0 {
		return nil
	}

	runes := []rune(text)
	var matches []Match

	pos := 0
	for pos < len(runes) {
		won := false
		for _, c := range idx.candidatesAt(runes[pos]) {
			end := pos + len(c.runes)
			if end > len(runes) || !runesMatchAt(runes, pos, c.runes) {
				continue
			}
			if opts.WholeWords && !onWordBoundary(runes, pos, end) {
				continue
			}
			matches = append(matches, Match{
				Entry:        c.entry,
				Start:        pos,
				End:          end,
				MatchedAlias: c.alias,
			})
			pos = end
			won = true
			break
		}
		if !won {
			pos++
		}
	}

	return matches
}

// DetectTerms scans source-language text, matching original terms and aliases.
func DetectTerms(text string, entries []*Entry) []Match {
	return Detect(text, BuildIndex(entries, SourceTerms))
}

// DetectTranslations scans translated text, matching translation strings only.
func DetectTranslations(text string, entries []*Entry) []Match {
	return Detect(text, BuildIndex(entries, TranslatedTerms))
}

func runesMatchAt(text []rune, pos int, want []rune) bool {
	for i, r := range want {
		if text[pos+i] != r {
			return false
		}
	}
	return true
}

func onWordBoundary(text []rune, start, end int) bool {
	if start > 0 && isWordRune(text[start-1]) {
		return false
	}
	if end < len(text) && isWordRune(text[end]) {
		return false
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
