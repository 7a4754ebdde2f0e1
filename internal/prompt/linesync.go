package prompt

import (
	"strings"

	"novel-translator/internal/logger"
)

// SyncLineCount reconciles translated text to exactly sourceLineCount lines,
// for projects that demand strict line-for-line correspondence.
//
// Overflow keeps the first N-1 translated lines and joins the remainder into
// line N with single spaces; underflow pads trailing empty lines. Content
// order is always preserved. sourceLineCount <= 0 yields the empty string.
func SyncLineCount(translated string, sourceLineCount int) string {
	if sourceLineCount <= 0 {
		return ""
	}

	lines := strings.Split(translated, "\n")
	if len(lines) == sourceLineCount {
		return translated
	}

	logger.Debug("reconciling line count",
		logger.Int("translatedLines", len(lines)),
		logger.Int("sourceLines", sourceLineCount))

	if len(lines) > sourceLineCount {
		head := lines[:sourceLineCount-1]
		tail := lines[sourceLineCount-1:]

		joined := make([]string, 0, len(tail))
		for _, l := range tail {
			if t := strings.TrimSpace(l); t != "" {
				joined = append(joined, t)
			}
		}
		merged := append(append([]string{}, head...), strings.Join(joined, " "))
		return strings.Join(merged, "\n")
	}

	padded := make([]string, sourceLineCount)
	copy(padded, lines)
	return strings.Join(padded, "\n")
}
