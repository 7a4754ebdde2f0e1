package prompt

import (
	"strings"
	"testing"

	"novel-translator/internal/glossary"
)

func matchEntry(id, term, translation string, category glossary.Category) *glossary.Entry {
	return &glossary.Entry{
		ID:           id,
		OriginalTerm: term,
		Translation:  translation,
		Category:     category,
		IsActive:     true,
	}
}

func TestBuildTranslationPromptPlaceholders(t *testing.T) {
	entries := []*glossary.Entry{matchEntry("e1", "Eldoria", "エルドリア", glossary.CategoryPlace)}
	text := "Arthur served the great Kingdom of Eldoria."
	matches := glossary.DetectTerms(text, entries)

	preset := Preset{
		Name:     "test",
		Template: "From {{SOURCE_LANGUAGE}} to {{TARGET_LANGUAGE}}.\n{{GLOSSARY}}\n---\n{{TEXT}}\n{{UNKNOWN}}",
	}
	got := BuildTranslationPrompt(text, matches, "English", "Japanese", preset, Config{}, "")

	for _, want := range []string{
		"From English to Japanese.",
		"- Eldoria => エルドリア (place)",
		text,
		"{{UNKNOWN}}", // unrecognized placeholders stay verbatim
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q\nprompt:\n%s", want, got)
		}
	}
}

func TestBuildTranslationPromptDeduplicates(t *testing.T) {
	entries := []*glossary.Entry{matchEntry("e1", "Alice", "アリス", glossary.CategoryCharacter)}
	text := "Alice Alice Alice Alice Alice"
	matches := glossary.DetectTerms(text, entries)
	if len(matches) != 5 {
		t.Fatalf("setup: got %d matches, want 5", len(matches))
	}

	got := BuildTranslationPrompt(text, matches, "English", "Japanese", DefaultPreset(), Config{}, "")
	if n := strings.Count(got, "- Alice => アリス"); n != 1 {
		t.Errorf("glossary block contains %d lines for Alice, want 1", n)
	}
}

func TestBuildTranslationPromptEmptyTemplateFallsBack(t *testing.T) {
	got := BuildTranslationPrompt("text", nil, "English", "Japanese", Preset{Name: "blank"}, Config{}, "")
	if !strings.Contains(got, "professional literary translator") {
		t.Error("empty preset template did not fall back to the built-in default")
	}
	if !strings.Contains(got, "(no glossary terms matched)") {
		t.Error("empty match list did not render the placeholder glossary line")
	}
}

func TestBuildTranslationPromptSectionOrder(t *testing.T) {
	preset := Preset{
		Name:              "ex",
		Template:          "MAIN {{TEXT}}",
		ExampleSource:     "Hello",
		ExampleTranslated: "こんにちは",
	}
	cfg := Config{IncludePreviousContext: true, PreviousContextChapterCount: 2}
	got := BuildTranslationPrompt("chapter", nil, "English", "Japanese", preset, cfg, "earlier chapter text")

	ctxPos := strings.Index(got, "PREVIOUS CHAPTERS")
	exPos := strings.Index(got, "EXAMPLE:")
	mainPos := strings.Index(got, "MAIN chapter")
	if ctxPos == -1 || exPos == -1 || mainPos == -1 {
		t.Fatalf("missing section(s): ctx=%d example=%d main=%d\n%s", ctxPos, exPos, mainPos, got)
	}
	if !(ctxPos < exPos && exPos < mainPos) {
		t.Errorf("section order wrong: ctx=%d example=%d main=%d", ctxPos, exPos, mainPos)
	}
}

func TestBuildTranslationPromptContextOmitted(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ctx  string
	}{
		{name: "disabled", cfg: Config{IncludePreviousContext: false}, ctx: "some context"},
		{name: "blank context", cfg: Config{IncludePreviousContext: true}, ctx: "   "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildTranslationPrompt("text", nil, "en", "ja", DefaultPreset(), tt.cfg, tt.ctx)
			if strings.Contains(got, "PREVIOUS CHAPTERS") {
				t.Error("context section emitted when it should be omitted")
			}
		})
	}
}

func TestFormatGlossaryBlock(t *testing.T) {
	withCtx := matchEntry("e1", "Arthur", "アーサー", glossary.CategoryCharacter)
	withCtx.ContextDescription = "the once and future king"
	entries := []*glossary.Entry{
		withCtx,
		matchEntry("e2", "Eldoria", "エルドリア", glossary.CategoryPlace),
	}

	got := FormatGlossaryBlock(entries)
	want := "- Arthur => アーサー (character): the once and future king\n- Eldoria => エルドリア (place)"
	if got != want {
		t.Errorf("FormatGlossaryBlock:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestBuildGlossaryExtractionPrompt(t *testing.T) {
	existing := []*glossary.Entry{matchEntry("e1", "Arthur", "アーサー", glossary.CategoryCharacter)}
	got := BuildGlossaryExtractionPrompt(
		"source body", "translated body", "English", "Japanese",
		existing, []glossary.Category{glossary.CategoryCharacter, glossary.CategoryPlace})

	for _, want := range []string{
		"JSON array",
		"- Arthur",
		"character, place",
		"SOURCE TEXT:\nsource body",
		"TRANSLATED TEXT:\ntranslated body",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("extraction prompt missing %q", want)
		}
	}
}

func TestBuildGlossaryExtractionPromptNoFilter(t *testing.T) {
	got := BuildGlossaryExtractionPrompt("s", "t", "en", "ja", nil, nil)
	if !strings.Contains(got, "Valid categories:") {
		t.Error("expected full category list when no filter given")
	}
	if strings.Contains(got, "already in the glossary") {
		t.Error("existing-terms section emitted for empty glossary")
	}
}

func TestSyncLineCount(t *testing.T) {
	tests := []struct {
		name       string
		translated string
		count      int
		want       string
	}{
		{name: "already equal", translated: "a\nb\nc", count: 3, want: "a\nb\nc"},
		{name: "overflow joins into last line", translated: "a\nb\nc\nd", count: 2, want: "a\nb c d"},
		{name: "overflow skips blank remainder lines", translated: "a\nb\n\nc", count: 2, want: "a\nb c"},
		{name: "underflow pads empty lines", translated: "a", count: 3, want: "a\n\n"},
		{name: "collapse to single line", translated: "a\nb\nc", count: 1, want: "a b c"},
		{name: "zero count", translated: "a\nb", count: 0, want: ""},
		{name: "negative count", translated: "a", count: -1, want: ""},
		{name: "empty input padded", translated: "", count: 2, want: "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SyncLineCount(tt.translated, tt.count); got != tt.want {
				t.Errorf("SyncLineCount(%q, %d) = %q, want %q", tt.translated, tt.count, got, tt.want)
			}
		})
	}
}

func TestConfigClampContextChapters(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{in: -2, want: 1},
		{in: 0, want: 1},
		{in: 1, want: 1},
		{in: 3, want: 3},
		{in: 5, want: 5},
		{in: 9, want: 5},
	}
	for _, tt := range tests {
		cfg := Config{PreviousContextChapterCount: tt.in}
		if got := cfg.ClampContextChapters(); got != tt.want {
			t.Errorf("ClampContextChapters(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
