package cli

import (
	"bytes"
	"strings"
	"testing"

	"novel-translator/internal/glossary"
)

func TestVersionCmdExecutes(t *testing.T) {
	original := version
	version = "1.2.3-test"
	defer func() { version = original }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"version"})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(buf.String(), "novel-translator version 1.2.3-test") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestParseMatchMode(t *testing.T) {
	if mode, err := parseMatchMode("source"); err != nil || mode != glossary.SourceTerms {
		t.Errorf("source: mode=%v err=%v", mode, err)
	}
	if mode, err := parseMatchMode("translated"); err != nil || mode != glossary.TranslatedTerms {
		t.Errorf("translated: mode=%v err=%v", mode, err)
	}
	if _, err := parseMatchMode("both"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestParseCategories(t *testing.T) {
	got, err := parseCategories([]string{"character", "place"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != glossary.CategoryCharacter {
		t.Errorf("categories = %v", got)
	}
	if _, err := parseCategories([]string{"villain"}); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestRenderANSI(t *testing.T) {
	entry := &glossary.Entry{
		ID:           "e1",
		OriginalTerm: "エルドリア",
		Translation:  "Eldoria",
		Category:     glossary.CategoryPlace,
	}
	text := "ここはエルドリアです"
	matches := glossary.DetectTerms(text, []*glossary.Entry{entry})
	if len(matches) != 1 {
		t.Fatalf("setup: %d matches", len(matches))
	}

	out := renderANSI(text, glossary.ProjectHighlights(matches))
	if !strings.Contains(out, "\x1b[4;32mエルドリア\x1b[0m") {
		t.Errorf("output missing underlined green span: %q", out)
	}
	if !strings.HasPrefix(out, "ここは") || !strings.HasSuffix(out, "です") {
		t.Errorf("surrounding text damaged: %q", out)
	}
}

func TestRenderANSINoMatches(t *testing.T) {
	if got := renderANSI("plain text", nil); got != "plain text" {
		t.Errorf("renderANSI with no highlights = %q", got)
	}
}

type fakeEntryLister struct {
	entries []*glossary.Entry
}

func (f fakeEntryLister) ListEntries() ([]*glossary.Entry, error) {
	return f.entries, nil
}

func TestResolveEntryID(t *testing.T) {
	lister := fakeEntryLister{entries: []*glossary.Entry{
		{ID: "abcd1234"},
		{ID: "abzz9999"},
	}}

	if id, err := resolveEntryID(lister, "abcd1234"); err != nil || id != "abcd1234" {
		t.Errorf("exact: id=%q err=%v", id, err)
	}
	if id, err := resolveEntryID(lister, "abc"); err != nil || id != "abcd1234" {
		t.Errorf("unique prefix: id=%q err=%v", id, err)
	}
	if _, err := resolveEntryID(lister, "ab"); err == nil {
		t.Error("expected error for ambiguous prefix")
	}
	if _, err := resolveEntryID(lister, "zz"); err == nil {
		t.Error("expected error for unknown ID")
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("abcdefghijkl"); got != "abcdefgh" {
		t.Errorf("shortID = %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID short input = %q", got)
	}
}

func TestMaskKey(t *testing.T) {
	if got := maskKey("sk-1234567890abcdef"); got != "sk-1...cdef" {
		t.Errorf("maskKey = %q", got)
	}
	if got := maskKey("short"); got != "****" {
		t.Errorf("maskKey short = %q", got)
	}
}
