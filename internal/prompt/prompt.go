package prompt

import (
	"fmt"
	"strings"

	"novel-translator/internal/glossary"
	"novel-translator/internal/logger"
)

// Config is the slice of project settings the assembler consumes. The values
// come from the project configuration; the assembler treats them as opaque
// inputs with the effects documented on each builder.
type Config struct {
	// ForceLineCountSync demands strict line-for-line correspondence between
	// source and translated text. Consumed by the engine via SyncLineCount,
	// not by the builders themselves.
	ForceLineCountSync bool `json:"force_line_count_sync"`
	// IncludePreviousContext prepends a labeled section with translated text
	// from preceding chapters.
	IncludePreviousContext bool `json:"include_previous_context"`
	// PreviousContextChapterCount bounds how many preceding chapters the
	// caller assembles into previousContext. Clamped to 1..5.
	PreviousContextChapterCount int `json:"previous_context_chapter_count"`
}

// ClampContextChapters returns the previous-context chapter count clamped to
// the valid 1..5 range.
func (c Config) ClampContextChapters() int {
	n := c.PreviousContextChapterCount
	if n < 1 {
		return 1
	}
	if n > 5 {
		return 5
	}
	return n
}

// BuildTranslationPrompt renders the final instruction text for translating a
// chapter.
//
// matches must come from scanning the same text; they select which glossary
// entries are relevant — only entries that actually matched are rendered into
// the glossary block, deduplicated by entry ID in order of first appearance.
// The preset template's placeholders {{SOURCE_LANGUAGE}}, {{TARGET_LANGUAGE}},
// {{GLOSSARY}} and {{TEXT}} are substituted; unrecognized placeholders stay
// verbatim. A previous-context section and a worked-example section, when
// enabled and available, are emitted ahead of the main instructions, in that
// order. Missing optional inputs never fail: an empty preset template falls
// back to the built-in default.
func BuildTranslationPrompt(text string, matches []glossary.Match, sourceLang, targetLang string, preset Preset, cfg Config, previousContext string) string {
	template := preset.Template
	if strings.TrimSpace(template) == "" {
		template = defaultTemplate
	}

	matched := dedupeEntries(matches)
	body := renderPlaceholders(template, map[string]string{
		"{{SOURCE_LANGUAGE}}": sourceLang,
		"{{TARGET_LANGUAGE}}": targetLang,
		"{{GLOSSARY}}":        FormatGlossaryBlock(matched),
		"{{TEXT}}":            text,
	})

	var sb strings.Builder
	if cfg.IncludePreviousContext && strings.TrimSpace(previousContext) != "" {
		sb.WriteString("PREVIOUS CHAPTERS (context only, do not translate):\n")
		sb.WriteString(previousContext)
		sb.WriteString("\n\n")
	}
	if preset.ExampleSource != "" && preset.ExampleTranslated != "" {
		sb.WriteString("EXAMPLE:\n")
		sb.WriteString("Source:\n")
		sb.WriteString(preset.ExampleSource)
		sb.WriteString("\nTranslation:\n")
		sb.WriteString(preset.ExampleTranslated)
		sb.WriteString("\n\n")
	}
	sb.WriteString(body)

	logger.Debug("translation prompt built",
		logger.String("preset", preset.Name),
		logger.Int("matchedEntries", len(matched)),
		logger.Int("promptLength", sb.Len()))

	return sb.String()
}

// FormatGlossaryBlock renders one line per entry:
//
//	- <originalTerm> => <translation> (<category>): <context>
//
// with the context suffix only when present. An empty entry list renders a
// fixed placeholder line so the template's GLOSSARY section never ends up
// blank.
func FormatGlossaryBlock(entries []*glossary.Entry) string {
	if len(entries) == 0 {
		return "(no glossary terms matched)"
	}

	var sb strings.Builder
	for i, e := range entries {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "- %s => %s (%s)", e.OriginalTerm, e.Translation, e.Category)
		if e.ContextDescription != "" {
			sb.WriteString(": ")
			sb.WriteString(e.ContextDescription)
		}
	}
	return sb.String()
}

// dedupeEntries collapses matches to their distinct entries, ordered by first
// appearance in the scanned text. A term matched ten times contributes one
// glossary-block line.
func dedupeEntries(matches []glossary.Match) []*glossary.Entry {
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	entries := make([]*glossary.Entry, 0, len(matches))
	for _, m := range matches {
		if m.Entry == nil || seen[m.Entry.ID] {
			continue
		}
		seen[m.Entry.ID] = true
		entries = append(entries, m.Entry)
	}
	return entries
}

// renderPlaceholders substitutes the known placeholders. Replacement values
// are inserted literally; placeholder-like text inside them is not re-scanned.
func renderPlaceholders(template string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, k, v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// BuildGlossaryExtractionPrompt renders the instruction asking the LLM to
// propose NEW glossary entries from a source/translated text pair.
//
// existing entries are listed so the model does not re-propose known terms;
// categories, when non-empty, restricts proposals to those categories. The
// model is told to reply with a bare JSON array (parsed leniently by the llm
// package).
func BuildGlossaryExtractionPrompt(sourceText, translatedText, sourceLang, targetLang string, existing []*glossary.Entry, categories []glossary.Category) string {
	var sb strings.Builder

	sb.WriteString("You are a terminology assistant for a novel translation project.\n")
	fmt.Fprintf(&sb, "Find recurring proper nouns and project-specific terms in the %s source text below and pair each with its %s rendering from the translated text.\n\n", sourceLang, targetLang)

	sb.WriteString("Reply with ONLY a JSON array, no prose and no code fences. Each element:\n")
	sb.WriteString(`{"original_term": "...", "translation": "...", "category": "...", "context_description": "..."}` + "\n\n")

	if len(categories) > 0 {
		names := make([]string, len(categories))
		for i, c := range categories {
			names[i] = string(c)
		}
		fmt.Fprintf(&sb, "Only propose terms in these categories: %s.\n", strings.Join(names, ", "))
	} else {
		names := make([]string, 0, len(glossary.Categories()))
		for _, c := range glossary.Categories() {
			names = append(names, string(c))
		}
		fmt.Fprintf(&sb, "Valid categories: %s.\n", strings.Join(names, ", "))
	}

	if len(existing) > 0 {
		sb.WriteString("\nThese terms are already in the glossary, do NOT propose them again:\n")
		for _, e := range existing {
			fmt.Fprintf(&sb, "- %s\n", e.OriginalTerm)
		}
	}

	sb.WriteString("\nSOURCE TEXT:\n")
	sb.WriteString(sourceText)
	sb.WriteString("\n\nTRANSLATED TEXT:\n")
	sb.WriteString(translatedText)

	return sb.String()
}
