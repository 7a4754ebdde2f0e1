// Package project glues the store, text decoding, and matching together for
// one open translation project: chapter import, previous-context assembly,
// and glossary mutations that hand back fresh entry lists for index rebuilds.
package project

import (
	"path/filepath"
	"strings"

	"novel-translator/internal/glossary"
	"novel-translator/internal/logger"
	"novel-translator/internal/store"
	"novel-translator/internal/textenc"
)

// Manager is a handle on one open project.
type Manager struct {
	dir string
	st  *store.Store
}

// Create initializes a new project in dir and returns an open manager.
func Create(dir, name, sourceLang, targetLang string) (*Manager, error) {
	st, err := store.Create(dir, name, sourceLang, targetLang)
	if err != nil {
		return nil, err
	}
	return &Manager{dir: dir, st: st}, nil
}

// Open opens an existing project in dir.
func Open(dir string) (*Manager, error) {
	st, err := store.Open(dir)
	if err != nil {
		return nil, err
	}
	return &Manager{dir: dir, st: st}, nil
}

// Close releases the underlying store.
func (m *Manager) Close() error {
	return m.st.Close()
}

// Dir returns the project directory.
func (m *Manager) Dir() string {
	return m.dir
}

// Store exposes the underlying store for read paths the manager does not
// wrap.
func (m *Manager) Store() *store.Store {
	return m.st
}

// ImportChapter reads one text file and stores it verbatim as a new chapter:
// one file is one chapter, no splitting. The file may be UTF-8, UTF-8 BOM,
// UTF-16 or GBK; the title defaults to the file name without extension.
func (m *Manager) ImportChapter(path, title string) (*store.Chapter, error) {
	text, err := textenc.DecodeFile(path)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(title) == "" {
		base := filepath.Base(path)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	ch, err := m.st.AddChapter(title, text)
	if err != nil {
		return nil, err
	}
	logger.Info("chapter imported",
		logger.String("title", ch.Title),
		logger.Int("position", ch.Position),
		logger.Int("runes", len([]rune(ch.SourceText))))
	return ch, nil
}

// PreviousContext assembles the translated text of up to K chapters
// immediately preceding the given chapter position, where K is the project's
// previous-context chapter count clamped to 1..5. Untranslated chapters are
// skipped; chapters appear in reading order, each under a short title label.
// Returns "" when nothing qualifies.
func (m *Manager) PreviousContext(beforePosition int) (string, error) {
	p, err := m.st.Project()
	if err != nil {
		return "", err
	}
	limit := p.Config.PromptConfig().ClampContextChapters()

	chapters, err := m.st.ListChapters()
	if err != nil {
		return "", err
	}

	// Collect the nearest preceding translated chapters, newest first, then
	// emit them back in reading order.
	var picked []*store.Chapter
	for i := len(chapters) - 1; i >= 0 && len(picked) < limit; i-- {
		ch := chapters[i]
		if ch.Position >= beforePosition {
			continue
		}
		if ch.Status != store.ChapterStatusTranslated || strings.TrimSpace(ch.TranslatedText) == "" {
			continue
		}
		picked = append(picked, ch)
	}
	if len(picked) == 0 {
		return "", nil
	}

	var sb strings.Builder
	for i := len(picked) - 1; i >= 0; i-- {
		ch := picked[i]
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString("[" + ch.Title + "]\n")
		sb.WriteString(ch.TranslatedText)
	}
	return sb.String(), nil
}

// AddEntry stores a new glossary entry and returns the fresh active entry
// list. Callers rebuild their term indexes from the returned list; the old
// index is a stale snapshot from this point on.
func (m *Manager) AddEntry(e *glossary.Entry) ([]*glossary.Entry, error) {
	if err := m.st.AddEntry(e); err != nil {
		return nil, err
	}
	return m.st.ListActiveEntries()
}

// UpdateEntry edits an entry and returns the fresh active entry list.
func (m *Manager) UpdateEntry(e *glossary.Entry) ([]*glossary.Entry, error) {
	if err := m.st.UpdateEntry(e); err != nil {
		return nil, err
	}
	return m.st.ListActiveEntries()
}

// RemoveEntry deletes an entry and returns the fresh active entry list.
func (m *Manager) RemoveEntry(id string) ([]*glossary.Entry, error) {
	if err := m.st.DeleteEntry(id); err != nil {
		return nil, err
	}
	return m.st.ListActiveEntries()
}

// AccumulateUsage bumps usage counters for every distinct entry in a match
// list. Usage counts are bookkeeping for the user; they never influence
// matching.
func (m *Manager) AccumulateUsage(matches []glossary.Match) error {
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(matches))
	ids := make([]string, 0, len(matches))
	for _, match := range matches {
		if match.Entry == nil || seen[match.Entry.ID] {
			continue
		}
		seen[match.Entry.ID] = true
		ids = append(ids, match.Entry.ID)
	}
	return m.st.IncrementUsage(ids)
}
