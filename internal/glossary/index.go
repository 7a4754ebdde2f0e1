package glossary

import (
	"sort"
	"strings"

	"novel-translator/internal/logger"
)

// Mode selects which entry strings a term index matches against.
type Mode int

const (
	// SourceTerms matches the original term and all aliases. Used on the
	// source-language pane.
	SourceTerms Mode = iota
	// TranslatedTerms matches the translation string only. Aliases are
	// source-language forms and never apply to translated text.
	TranslatedTerms
)

// String returns the mode name for logs.
func (m Mode) String() string {
	if m == TranslatedTerms {
		return "translated"
	}
	return "source"
}

// candidate is one matchable string tied back to its owning entry.
// aliasOrd is -1 for the primary term (original term or translation,
// depending on mode) and the alias position otherwise; alias carries the
// matched alias string, empty for the primary term.
type candidate struct {
	entry    *Entry
	runes    []rune
	alias    string
	order    int // position of the entry in the build slice
	aliasOrd int
}

// TermIndex is a derived, immutable lookup structure over the candidate
// strings of a glossary entry list. It is rebuilt whenever the glossary
// changes; holders must treat it as a snapshot valid until the next rebuild.
//
// Matching is case-sensitive, exact code-point comparison. No normalization
// happens here: entries and chapter text are NFC-normalized at the ingestion
// boundary so both sides compare equal.
type TermIndex struct {
	mode    Mode
	buckets map[rune][]candidate
	size    int
}

// BuildIndex builds a term index from entries for the given mode.
//
// Candidates are bucketed by first rune; each bucket is sorted by descending
// rune length, then entry order, then primary term before aliases, then alias
// order. That sort IS the matcher's documented tie-break rule: at any text
// position the first candidate in bucket order that matches wins.
//
// Blank candidate strings are discarded silently; a malformed entry never
// fails the build. Entries are referenced, not copied: treat them as
// immutable snapshots and rebuild after any edit. Cost is linear in the total
// rune count of all candidate strings (plus bucket sorting).
func BuildIndex(entries []*Entry, mode Mode) *TermIndex {
	idx := &TermIndex{
		mode:    mode,
		buckets: make(map[rune][]candidate),
	}

	for order, e := range entries {
		if e == nil {
			continue
		}
		if mode == TranslatedTerms {
			idx.add(e, e.Translation, "", order, -1)
			continue
		}
		idx.add(e, e.OriginalTerm, "", order, -1)
		for i, alias := range e.Aliases {
			idx.add(e, alias, alias, order, i)
		}
	}

	for r := range idx.buckets {
		bucket := idx.buckets[r]
		sort.Slice(bucket, func(i, j int) bool {
			a, b := bucket[i], bucket[j]
			if len(a.runes) != len(b.runes) {
				return len(a.runes) > len(b.runes)
			}
			if a.order != b.order {
				return a.order < b.order
			}
			return a.aliasOrd < b.aliasOrd
		})
	}

	logger.Debug("term index built",
		logger.String("mode", mode.String()),
		logger.Int("entries", len(entries)),
		logger.Int("candidates", idx.size),
		logger.Int("buckets", len(idx.buckets)))

	return idx
}

func (idx *TermIndex) add(e *Entry, text, alias string, order, aliasOrd int) {
	if strings.TrimSpace(text) == "" {
		return
	}
	runes := []rune(text)
	idx.buckets[runes[0]] = append(idx.buckets[runes[0]], candidate{
		entry:    e,
		runes:    runes,
		alias:    alias,
		order:    order,
		aliasOrd: aliasOrd,
	})
	idx.size++
}

// candidatesAt returns the candidates whose first rune is r, ordered by the
// tie-break sort. Callers must not mutate the returned slice.
func (idx *TermIndex) candidatesAt(r rune) []candidate {
	return idx.buckets[r]
}

// Mode returns the mode the index was built for.
func (idx *TermIndex) Mode() Mode {
	return idx.mode
}

// Len returns the number of candidate strings in the index.
func (idx *TermIndex) Len() int {
	return idx.size
}
