package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/simplifiedchinese"

	"novel-translator/internal/glossary"
	"novel-translator/internal/store"
)

func newTestProject(t *testing.T) *Manager {
	t.Helper()
	m, err := Create(t.TempDir(), "Test Novel", "Chinese", "English")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestImportChapter(t *testing.T) {
	m := newTestProject(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "chapter-01.txt")
	if err := os.WriteFile(path, []byte("风雪山神庙\n林冲走了。"), 0644); err != nil {
		t.Fatal(err)
	}

	ch, err := m.ImportChapter(path, "")
	if err != nil {
		t.Fatalf("ImportChapter: %v", err)
	}
	if ch.Title != "chapter-01" {
		t.Errorf("title = %q, want file stem", ch.Title)
	}
	if !strings.Contains(ch.SourceText, "林冲") {
		t.Errorf("source text = %q", ch.SourceText)
	}

	// Explicit title wins over the file name.
	ch2, err := m.ImportChapter(path, "第十回")
	if err != nil {
		t.Fatalf("ImportChapter: %v", err)
	}
	if ch2.Title != "第十回" || ch2.Position != 2 {
		t.Errorf("chapter = %+v", ch2)
	}
}

func TestImportChapterGBK(t *testing.T) {
	m := newTestProject(t)

	data, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte("中文小说第一章"))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "gbk.txt")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	ch, err := m.ImportChapter(path, "")
	if err != nil {
		t.Fatalf("ImportChapter: %v", err)
	}
	if ch.SourceText != "中文小说第一章" {
		t.Errorf("decoded text = %q", ch.SourceText)
	}
}

func TestImportChapterMissingFile(t *testing.T) {
	m := newTestProject(t)
	if _, err := m.ImportChapter(filepath.Join(t.TempDir(), "nope.txt"), ""); err == nil {
		t.Error("expected error for missing file")
	}
}

func addTranslatedChapter(t *testing.T, m *Manager, title, source, translated string) *store.Chapter {
	t.Helper()
	ch, err := m.Store().AddChapter(title, source)
	if err != nil {
		t.Fatal(err)
	}
	if translated != "" {
		if err := m.Store().SetChapterTranslation(ch.ID, translated); err != nil {
			t.Fatal(err)
		}
	}
	return ch
}

func TestPreviousContext(t *testing.T) {
	m := newTestProject(t)

	addTranslatedChapter(t, m, "ch1", "s1", "translation one")
	addTranslatedChapter(t, m, "ch2", "s2", "") // untranslated, skipped
	addTranslatedChapter(t, m, "ch3", "s3", "translation three")
	target := addTranslatedChapter(t, m, "ch4", "s4", "")

	cfg := store.DefaultProjectConfig()
	cfg.IncludePreviousContext = true
	cfg.PreviousContextChapterCount = 2
	if err := m.Store().UpdateConfig(cfg); err != nil {
		t.Fatal(err)
	}

	ctx, err := m.PreviousContext(target.Position)
	if err != nil {
		t.Fatalf("PreviousContext: %v", err)
	}

	onePos := strings.Index(ctx, "translation one")
	threePos := strings.Index(ctx, "translation three")
	if onePos == -1 || threePos == -1 {
		t.Fatalf("context missing chapters:\n%s", ctx)
	}
	if onePos > threePos {
		t.Error("context chapters not in reading order")
	}
	if !strings.Contains(ctx, "[ch1]") || !strings.Contains(ctx, "[ch3]") {
		t.Errorf("context missing title labels:\n%s", ctx)
	}
	if strings.Contains(ctx, "s2") || strings.Contains(ctx, "ch2") {
		t.Error("untranslated chapter leaked into context")
	}
}

func TestPreviousContextLimit(t *testing.T) {
	m := newTestProject(t)

	for i := 1; i <= 4; i++ {
		addTranslatedChapter(t, m, "ch"+strings.Repeat("i", i), "s", "t"+strings.Repeat("x", i))
	}
	target := addTranslatedChapter(t, m, "target", "s", "")

	cfg := store.DefaultProjectConfig()
	cfg.PreviousContextChapterCount = 1
	if err := m.Store().UpdateConfig(cfg); err != nil {
		t.Fatal(err)
	}

	ctx, err := m.PreviousContext(target.Position)
	if err != nil {
		t.Fatal(err)
	}
	// Only the nearest preceding translated chapter.
	if !strings.Contains(ctx, "txxxx") {
		t.Errorf("context should hold the nearest chapter:\n%s", ctx)
	}
	if strings.Contains(ctx, "txxx\n") || strings.Count(ctx, "[") != 1 {
		t.Errorf("context holds more than one chapter:\n%s", ctx)
	}
}

func TestPreviousContextEmpty(t *testing.T) {
	m := newTestProject(t)
	ch := addTranslatedChapter(t, m, "first", "s", "")

	ctx, err := m.PreviousContext(ch.Position)
	if err != nil {
		t.Fatal(err)
	}
	if ctx != "" {
		t.Errorf("context for the first chapter = %q, want empty", ctx)
	}
}

func TestGlossaryMutationsReturnFreshList(t *testing.T) {
	m := newTestProject(t)

	entries, err := m.AddEntry(glossary.NewEntry("Arthur", "アーサー", glossary.CategoryCharacter))
	if err != nil {
		t.Fatalf("AddEntry: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}

	// The returned list is what a caller rebuilds its index from.
	idx := glossary.BuildIndex(entries, glossary.SourceTerms)
	if got := glossary.Detect("Arthur rode on", idx); len(got) != 1 {
		t.Errorf("index built from returned list found %d matches, want 1", len(got))
	}

	e := entries[0]
	e.Aliases = []string{"Art"}
	entries, err = m.UpdateEntry(e)
	if err != nil {
		t.Fatalf("UpdateEntry: %v", err)
	}
	idx = glossary.BuildIndex(entries, glossary.SourceTerms)
	if got := glossary.Detect("Art rode on", idx); len(got) != 1 {
		t.Errorf("alias added via update not matched, got %d", len(got))
	}

	entries, err = m.RemoveEntry(e.ID)
	if err != nil {
		t.Fatalf("RemoveEntry: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries after removal, want 0", len(entries))
	}
}

func TestAccumulateUsage(t *testing.T) {
	m := newTestProject(t)

	entries, err := m.AddEntry(glossary.NewEntry("Alice", "アリス", glossary.CategoryCharacter))
	if err != nil {
		t.Fatal(err)
	}

	matches := glossary.DetectTerms("Alice met Alice and Alice", entries)
	if len(matches) != 3 {
		t.Fatalf("setup: got %d matches", len(matches))
	}
	if err := m.AccumulateUsage(matches); err != nil {
		t.Fatalf("AccumulateUsage: %v", err)
	}

	// One bump per distinct entry, not per occurrence.
	got, err := m.Store().GetEntry(entries[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.UsageCount != 1 {
		t.Errorf("usage count = %d, want 1", got.UsageCount)
	}
}
