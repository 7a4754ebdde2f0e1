package glossary

import (
	"reflect"
	"testing"
)

func TestDetectLongestMatchWins(t *testing.T) {
	entries := []*Entry{
		testEntry("al", "Al", "アル", CategoryCharacter),
		testEntry("alice", "Alice", "アリス", CategoryCharacter),
	}

	matches := Detect("Alice went home", BuildIndex(entries, SourceTerms))
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	m := matches[0]
	if m.Entry.ID != "alice" {
		t.Errorf("matched entry = %q, want alice", m.Entry.ID)
	}
	if m.Start != 0 || m.End != 5 {
		t.Errorf("span = [%d,%d), want [0,5)", m.Start, m.End)
	}
}

func TestDetectAliasEquivalence(t *testing.T) {
	entries := []*Entry{
		testEntry("arthur", "Arthur", "アーサー", CategoryCharacter, "Art"),
	}

	matches := Detect("Art served the king", BuildIndex(entries, SourceTerms))
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	m := matches[0]
	if m.Entry.OriginalTerm != "Arthur" {
		t.Errorf("entry term = %q, want Arthur", m.Entry.OriginalTerm)
	}
	if m.MatchedAlias != "Art" {
		t.Errorf("MatchedAlias = %q, want Art", m.MatchedAlias)
	}
}

func TestDetectPrimaryTermHasEmptyMatchedAlias(t *testing.T) {
	entries := []*Entry{
		testEntry("arthur", "Arthur", "アーサー", CategoryCharacter, "Art"),
	}

	matches := Detect("Arthur served the king", BuildIndex(entries, SourceTerms))
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if matches[0].MatchedAlias != "" {
		t.Errorf("MatchedAlias = %q, want empty for primary term", matches[0].MatchedAlias)
	}
}

func TestDetectEndToEndAnchor(t *testing.T) {
	// The matcher's normative guarantee is span-extraction identity: slicing
	// the text's runes with the returned half-open span yields exactly the
	// matched term.
	entries := []*Entry{
		testEntry("eldoria", "Eldoria", "エルドリア", CategoryPlace),
	}
	text := "Arthur served the great Kingdom of Eldoria."

	matches := Detect(text, BuildIndex(entries, SourceTerms))
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	m := matches[0]
	if m.Start != 35 || m.End != 42 {
		t.Errorf("span = [%d,%d), want [35,42)", m.Start, m.End)
	}
	if got := string([]rune(text)[m.Start:m.End]); got != "Eldoria" {
		t.Errorf("extracted span = %q, want Eldoria", got)
	}
	if m.MatchedAlias != "" {
		t.Errorf("MatchedAlias = %q, want empty", m.MatchedAlias)
	}
}

func TestDetectTranslationsRuneSpans(t *testing.T) {
	// Translated-pane scan over CJK text: spans are rune offsets, where byte
	// offsets would be three times larger.
	entries := []*Entry{
		testEntry("eldoria", "Eldoria", "エルドリア", CategoryPlace),
	}
	text := "アーサーはエルドリア王国に仕えた。"

	matches := DetectTranslations(text, entries)
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	m := matches[0]
	if m.Start != 5 || m.End != 10 {
		t.Errorf("span = [%d,%d), want [5,10)", m.Start, m.End)
	}
	if got := string([]rune(text)[m.Start:m.End]); got != "エルドリア" {
		t.Errorf("extracted span = %q, want エルドリア", got)
	}
}

func TestDetectTranslationsIgnoresAliases(t *testing.T) {
	entries := []*Entry{
		testEntry("arthur", "Arthur", "アーサー", CategoryCharacter, "Art"),
	}

	// "Art" appears but aliases are source-language forms; the translated
	// pane matches the translation string only.
	matches := DetectTranslations("Art and アーサー", entries)
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if matches[0].MatchedAlias != "" {
		t.Errorf("MatchedAlias = %q, want empty", matches[0].MatchedAlias)
	}
}

func TestDetectCrossEntryAliasCollision(t *testing.T) {
	// Two entries share the alias "Ken". Exactly one wins, the earlier entry
	// in build order, and the result never contains overlapping duplicates.
	entries := []*Entry{
		testEntry("first", "Kenji", "ケンジ", CategoryCharacter, "Ken"),
		testEntry("second", "Kenta", "ケンタ", CategoryCharacter, "Ken"),
	}

	matches := Detect("Ken stood up", BuildIndex(entries, SourceTerms))
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if matches[0].Entry.ID != "first" {
		t.Errorf("winner = %q, want first (earlier build order)", matches[0].Entry.ID)
	}
	if matches[0].MatchedAlias != "Ken" {
		t.Errorf("MatchedAlias = %q, want Ken", matches[0].MatchedAlias)
	}
}

func TestDetectTieBreakPrimaryBeforeAlias(t *testing.T) {
	// Equal length, same entry order position decided first; here two entries
	// where one's alias equals the other's primary term. Earlier entry wins
	// regardless of primary/alias status.
	entries := []*Entry{
		testEntry("a", "Rin", "リン", CategoryCharacter),
		testEntry("b", "Rinko", "リンコ", CategoryCharacter, "Rin"),
	}

	matches := Detect("Rin smiled", BuildIndex(entries, SourceTerms))
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if matches[0].Entry.ID != "a" || matches[0].MatchedAlias != "" {
		t.Errorf("winner = %q alias %q, want entry a primary term",
			matches[0].Entry.ID, matches[0].MatchedAlias)
	}
}

func TestDetectNoOverlapConsumesMatchedText(t *testing.T) {
	// Once "Alice" is consumed, the "Al" inside it is never reconsidered, and
	// scanning resumes at the match end.
	entries := []*Entry{
		testEntry("alice", "Alice", "アリス", CategoryCharacter),
		testEntry("lic", "lic", "リク", CategoryOther),
	}

	matches := Detect("Alice", BuildIndex(entries, SourceTerms))
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if matches[0].Entry.ID != "alice" {
		t.Errorf("matched %q, want alice", matches[0].Entry.ID)
	}
}

func TestDetectSubstringSemantics(t *testing.T) {
	// Substring matching is the contract: terms match inside larger words.
	entries := []*Entry{
		testEntry("art", "Art", "アート", CategoryConcept),
	}

	matches := Detect("Article one", BuildIndex(entries, SourceTerms))
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1 (substring match inside Article)", len(matches))
	}
	if matches[0].Start != 0 || matches[0].End != 3 {
		t.Errorf("span = [%d,%d), want [0,3)", matches[0].Start, matches[0].End)
	}
}

func TestDetectWholeWordsOption(t *testing.T) {
	entries := []*Entry{
		testEntry("art", "Art", "アート", CategoryConcept),
	}
	idx := BuildIndex(entries, SourceTerms)

	tests := []struct {
		name    string
		text    string
		matches int
	}{
		{name: "inside larger word suppressed", text: "Article one", matches: 0},
		{name: "standalone word matches", text: "modern Art today", matches: 1},
		{name: "at text start", text: "Art is long", matches: 1},
		{name: "at text end", text: "state of the Art", matches: 1},
		{name: "digit neighbour suppressed", text: "Art3", matches: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectWithOptions(tt.text, idx, ScanOptions{WholeWords: true})
			if len(got) != tt.matches {
				t.Errorf("got %d matches, want %d", len(got), tt.matches)
			}
		})
	}
}

func TestDetectCaseSensitive(t *testing.T) {
	// Matching is case-sensitive exact code-point comparison.
	entries := []*Entry{
		testEntry("alice", "Alice", "アリス", CategoryCharacter),
	}

	if got := Detect("alice went home", BuildIndex(entries, SourceTerms)); len(got) != 0 {
		t.Errorf("got %d matches for lowercased text, want 0", len(got))
	}
}

func TestDetectEmptyInputs(t *testing.T) {
	entries := []*Entry{testEntry("a", "Alice", "アリス", CategoryCharacter)}
	idx := BuildIndex(entries, SourceTerms)
	empty := BuildIndex(nil, SourceTerms)

	if got := Detect("", idx); len(got) != 0 {
		t.Errorf("Detect(empty text) returned %d matches, want 0", len(got))
	}
	if got := Detect("Alice went home", empty); len(got) != 0 {
		t.Errorf("Detect(text, empty index) returned %d matches, want 0", len(got))
	}
	if got := Detect("Alice went home", nil); len(got) != 0 {
		t.Errorf("Detect(text, nil index) returned %d matches, want 0", len(got))
	}
}

func TestDetectIdempotent(t *testing.T) {
	entries := []*Entry{
		testEntry("arthur", "Arthur", "アーサー", CategoryCharacter, "Art"),
		testEntry("eldoria", "Eldoria", "エルドリア", CategoryPlace),
	}
	idx := BuildIndex(entries, SourceTerms)
	text := "Arthur served the great Kingdom of Eldoria. Art remembers."

	first := Detect(text, idx)
	second := Detect(text, idx)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Detect is not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestDetectMultipleOccurrences(t *testing.T) {
	entries := []*Entry{
		testEntry("alice", "Alice", "アリス", CategoryCharacter),
	}

	matches := Detect("Alice saw Alice in the mirror", BuildIndex(entries, SourceTerms))
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].Start != 0 || matches[1].Start != 10 {
		t.Errorf("starts = %d,%d, want 0,10", matches[0].Start, matches[1].Start)
	}
}

func TestProjectHighlights(t *testing.T) {
	entries := []*Entry{
		testEntry("alice", "Alice", "アリス", CategoryCharacter),
		testEntry("eldoria", "Eldoria", "エルドリア", CategoryPlace),
	}
	matches := Detect("Alice of Eldoria", BuildIndex(entries, SourceTerms))

	highlights := ProjectHighlights(matches)
	if len(highlights) != 2 {
		t.Fatalf("got %d highlights, want 2", len(highlights))
	}
	if highlights[0].Style != "glossary-character" {
		t.Errorf("style = %q, want glossary-character", highlights[0].Style)
	}
	if highlights[1].Style != "glossary-place" {
		t.Errorf("style = %q, want glossary-place", highlights[1].Style)
	}
	for i, h := range highlights {
		if h.Start != matches[i].Start || h.End != matches[i].End {
			t.Errorf("highlight %d span [%d,%d) != match span [%d,%d)",
				i, h.Start, h.End, matches[i].Start, matches[i].End)
		}
	}

	if got := ProjectHighlights(nil); got != nil {
		t.Errorf("ProjectHighlights(nil) = %v, want nil", got)
	}
}
