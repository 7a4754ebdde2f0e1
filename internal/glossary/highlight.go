package glossary

// Highlight is a visual style span projected from a match. The rendering
// surface decides what a style name looks like; this layer only fixes the
// ranges, the style key per category, and which entry/alias matched.
type Highlight struct {
	Start        int      `json:"start"`
	End          int      `json:"end"`
	Style        string   `json:"style"`
	Category     Category `json:"category"`
	EntryID      string   `json:"entry_id"`
	Term         string   `json:"term"`
	MatchedAlias string   `json:"matched_alias,omitempty"`
}

// StyleForCategory returns the stable style key for a category.
func StyleForCategory(c Category) string {
	if !c.IsValid() {
		c = CategoryOther
	}
	return "glossary-" + string(c)
}

// ProjectHighlights maps matcher output onto style spans. The ranges keep the
// matcher's guarantees: code-point indexed, non-overlapping, sorted by start.
func ProjectHighlights(matches []Match) []Highlight {
	if len(matches) == 0 {
		return nil
	}
	highlights := make([]Highlight, 0, len(matches))
	for _, m := range matches {
		if m.Entry == nil {
			continue
		}
		highlights = append(highlights, Highlight{
			Start:        m.Start,
			End:          m.End,
			Style:        StyleForCategory(m.Entry.Category),
			Category:     m.Entry.Category,
			EntryID:      m.Entry.ID,
			Term:         m.Entry.OriginalTerm,
			MatchedAlias: m.MatchedAlias,
		})
	}
	return highlights
}
