// Package translator orchestrates chapter translation: glossary detection,
// prompt assembly, the LLM call, and line-count reconciliation. It never
// writes to the store; callers persist results.
package translator

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"novel-translator/internal/glossary"
	"novel-translator/internal/llm"
	"novel-translator/internal/logger"
	"novel-translator/internal/project"
	"novel-translator/internal/prompt"
	"novel-translator/internal/store"
	"novel-translator/internal/types"
)

// ProgressCallback is called as chapters finish, with a completed count,
// the total, and a short status message.
type ProgressCallback func(current, total int, message string)

// Settings is the slice of application settings the engine needs.
type Settings interface {
	GetConcurrency() int
	GetPresetsDir() string
}

// ChapterResult is the outcome of translating one chapter. Err is set when
// the chapter failed in a batch run; the other fields are then zero.
type ChapterResult struct {
	ChapterID    string
	Position     int
	Translated   string
	Matches      []glossary.Match
	PromptTokens int
	TotalTokens  int
	Err          error
}

// Engine runs translations against an LLM client.
type Engine struct {
	client   llm.Client
	settings Settings
}

// NewEngine creates a translation engine.
func NewEngine(client llm.Client, settings Settings) *Engine {
	return &Engine{client: client, settings: settings}
}

// BuildPrompt assembles the exact prompt that TranslateChapter would send,
// along with the glossary matches feeding it.
func (e *Engine) BuildPrompt(m *project.Manager, ch *store.Chapter, entries []*glossary.Entry) (string, []glossary.Match, error) {
	p, err := m.Store().Project()
	if err != nil {
		return "", nil, err
	}

	idx := glossary.BuildIndex(entries, glossary.SourceTerms)
	matches := glossary.DetectWithOptions(ch.SourceText, idx,
		glossary.ScanOptions{WholeWords: p.Config.MatchWholeWords})

	var previousContext string
	if p.Config.IncludePreviousContext {
		previousContext, err = m.PreviousContext(ch.Position)
		if err != nil {
			return "", nil, err
		}
	}

	presets := prompt.LoadPresets(e.settings.GetPresetsDir())
	preset := prompt.FindPreset(presets, p.Config.PresetName)

	text := prompt.BuildTranslationPrompt(ch.SourceText, matches,
		p.SourceLang, p.TargetLang, preset, p.Config.PromptConfig(), previousContext)
	return text, matches, nil
}

// TranslateChapter translates one chapter. The returned result carries the
// translated text and the matches whose entries should get a usage bump.
func (e *Engine) TranslateChapter(ctx context.Context, m *project.Manager, ch *store.Chapter, entries []*glossary.Entry) (*ChapterResult, error) {
	promptText, matches, err := e.BuildPrompt(m, ch, entries)
	if err != nil {
		return nil, err
	}

	logger.Info("translating chapter",
		logger.String("title", ch.Title),
		logger.Int("position", ch.Position),
		logger.Int("glossary_matches", len(matches)),
		logger.Int("estimated_tokens", e.client.CountTokens(promptText)))

	res, err := e.client.Translate(ctx, llm.Request{UserPrompt: promptText})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(res.Content) == "" {
		return nil, types.NewAppErrorWithDetails(types.ErrTranslation,
			"model returned an empty translation", ch.Title, nil)
	}

	translated := res.Content
	p, err := m.Store().Project()
	if err != nil {
		return nil, err
	}
	if p.Config.ForceLineCountSync {
		sourceLines := len(strings.Split(ch.SourceText, "\n"))
		translated = prompt.SyncLineCount(translated, sourceLines)
	}

	return &ChapterResult{
		ChapterID:    ch.ID,
		Position:     ch.Position,
		Translated:   translated,
		Matches:      matches,
		PromptTokens: res.PromptTokens,
		TotalTokens:  res.PromptTokens + res.CompletionTokens,
	}, nil
}

// TranslateChapters translates a batch of chapters over a bounded worker
// pool. A failed chapter records its error in its result; the rest continue.
// Results come back in the same order as the input chapters.
func (e *Engine) TranslateChapters(ctx context.Context, m *project.Manager, chapters []*store.Chapter, entries []*glossary.Entry, progress ProgressCallback) []*ChapterResult {
	total := len(chapters)
	results := make([]*ChapterResult, total)
	if total == 0 {
		return results
	}

	concurrency := e.settings.GetConcurrency()
	if concurrency < 1 {
		concurrency = 1
	}

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	completed := 0

	for i, ch := range chapters {
		wg.Add(1)
		go func(idx int, ch *store.Chapter) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			res, err := e.TranslateChapter(ctx, m, ch, entries)
			if err != nil {
				logger.Error("chapter translation failed", err,
					logger.String("title", ch.Title))
				res = &ChapterResult{ChapterID: ch.ID, Position: ch.Position, Err: err}
			}

			mu.Lock()
			results[idx] = res
			completed++
			done := completed
			mu.Unlock()

			if progress != nil {
				progress(done, total, fmt.Sprintf("translated %d/%d chapters", done, total))
			}
		}(i, ch)
	}

	wg.Wait()
	return results
}

// ExtractGlossary proposes new glossary entries from a translated chapter.
// Candidates whose term already exists (case-sensitive exact, the same rule
// matching applies) are dropped.
func (e *Engine) ExtractGlossary(ctx context.Context, m *project.Manager, ch *store.Chapter, existing []*glossary.Entry, categories []glossary.Category) ([]*glossary.Entry, error) {
	if strings.TrimSpace(ch.TranslatedText) == "" {
		return nil, types.NewAppErrorWithDetails(types.ErrExtraction,
			"chapter has no translation to extract from", ch.Title, nil)
	}

	p, err := m.Store().Project()
	if err != nil {
		return nil, err
	}

	promptText := prompt.BuildGlossaryExtractionPrompt(
		ch.SourceText, ch.TranslatedText, p.SourceLang, p.TargetLang, existing, categories)

	proposed, err := e.client.ProposeGlossary(ctx, llm.Request{UserPrompt: promptText})
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(existing))
	for _, entry := range existing {
		known[entry.OriginalTerm] = true
	}

	wanted := make(map[glossary.Category]bool, len(categories))
	for _, c := range categories {
		wanted[c] = true
	}

	var candidates []*glossary.Entry
	for _, pr := range proposed {
		if known[pr.OriginalTerm] {
			continue
		}
		if len(wanted) > 0 && !wanted[pr.Category] {
			continue
		}
		entry := glossary.NewEntry(pr.OriginalTerm, pr.Translation, pr.Category)
		entry.ContextDescription = pr.Context
		candidates = append(candidates, entry)
		known[pr.OriginalTerm] = true
	}

	logger.Info("glossary extraction finished",
		logger.String("chapter", ch.Title),
		logger.Int("proposed", len(proposed)),
		logger.Int("new", len(candidates)))
	return candidates, nil
}
