package llm

import (
	"encoding/json"
	"strings"

	"novel-translator/internal/glossary"
	"novel-translator/internal/logger"
	"novel-translator/internal/types"
)

// ParseProposedEntries parses the glossary extraction response. Models wrap
// JSON in code fences and occasionally emit malformed elements; parsing is
// lenient: fences are stripped, bad elements are skipped with a warning, and
// only an unparseable array fails the whole batch.
func ParseProposedEntries(content string) ([]Proposed, error) {
	raw := extractJSONArray(content)
	if raw == "" {
		return nil, types.NewAppErrorWithDetails(types.ErrExtraction,
			"no JSON array in extraction response", truncate(content, 200), nil)
	}

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elements); err != nil {
		return nil, types.NewAppError(types.ErrExtraction, "invalid extraction JSON", err)
	}

	var proposed []Proposed
	for i, el := range elements {
		var p Proposed
		if err := json.Unmarshal(el, &p); err != nil {
			logger.Warn("skipping malformed extraction element",
				logger.Int("index", i), logger.Err(err))
			continue
		}
		p.OriginalTerm = strings.TrimSpace(p.OriginalTerm)
		p.Translation = strings.TrimSpace(p.Translation)
		if p.OriginalTerm == "" {
			logger.Warn("skipping extraction element with empty term", logger.Int("index", i))
			continue
		}
		if !p.Category.IsValid() {
			p.Category = glossary.CategoryOther
		}
		proposed = append(proposed, p)
	}
	return proposed, nil
}

// extractJSONArray returns the outermost [...] slice of content, tolerating
// markdown code fences and prose around it.
func extractJSONArray(content string) string {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
	}

	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start == -1 || end <= start {
		return ""
	}
	return s[start : end+1]
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
