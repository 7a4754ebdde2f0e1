package cli

import (
	"encoding/json"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"novel-translator/internal/glossary"
	"novel-translator/internal/project"
	"novel-translator/internal/textenc"
	"novel-translator/internal/types"
	"novel-translator/internal/watch"
)

var (
	matchFile  string
	matchMode  string
	matchJSON  bool
	matchColor bool
	matchWatch bool
)

var matchCmd = &cobra.Command{
	Use:   "match [POSITION]",
	Short: "Scan text for glossary term occurrences",
	Long: `Scan a chapter (by position) or an arbitrary file (--file) against the
project glossary and report every matched span. Spans are code-point offsets,
half-open. --mode source matches original terms and aliases; --mode translated
matches translations in translated text.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := parseMatchMode(matchMode)
		if err != nil {
			return err
		}
		if matchWatch && matchFile == "" {
			return types.NewAppError(types.ErrInvalidInput,
				"--watch requires --file", nil)
		}

		m, err := openProject()
		if err != nil {
			return err
		}
		defer m.Close()

		entries, err := m.Store().ListActiveEntries()
		if err != nil {
			return err
		}
		p, err := m.Store().Project()
		if err != nil {
			return err
		}
		idx := glossary.BuildIndex(entries, mode)
		opts := glossary.ScanOptions{WholeWords: p.Config.MatchWholeWords}

		text, err := matchInput(m, args)
		if err != nil {
			return err
		}

		report := func(text string) {
			matches := glossary.DetectWithOptions(text, idx, opts)
			printMatches(cmd, text, matches)
		}
		report(text)

		if !matchWatch {
			return nil
		}

		w, err := watch.New(matchFile, watch.DefaultDebounce, func(content string) {
			cmd.Printf("--- %s changed ---\n", matchFile)
			report(content)
		})
		if err != nil {
			return err
		}
		defer w.Close()

		cmd.Printf("Watching %s (Ctrl-C to stop)\n", matchFile)
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		return nil
	},
}

func parseMatchMode(s string) (glossary.Mode, error) {
	switch s {
	case "source":
		return glossary.SourceTerms, nil
	case "translated":
		return glossary.TranslatedTerms, nil
	default:
		return glossary.SourceTerms, types.NewAppErrorWithDetails(types.ErrInvalidInput,
			"mode must be 'source' or 'translated'", s, nil)
	}
}

// matchInput picks the text to scan: --file wins, otherwise a chapter
// position argument is required. In translated mode the chapter's translation
// is scanned instead of its source.
func matchInput(m *project.Manager, args []string) (string, error) {
	if matchFile != "" {
		return textenc.DecodeFile(matchFile)
	}
	if len(args) == 0 {
		return "", types.NewAppError(types.ErrInvalidInput,
			"give a chapter position or --file", nil)
	}
	ch, err := chapterByArg(m.Store(), args[0])
	if err != nil {
		return "", err
	}
	if matchMode == "translated" {
		if strings.TrimSpace(ch.TranslatedText) == "" {
			return "", types.NewAppErrorWithDetails(types.ErrTranslation,
				"chapter has no translation to scan", ch.Title, nil)
		}
		return ch.TranslatedText, nil
	}
	return ch.SourceText, nil
}

func printMatches(cmd *cobra.Command, text string, matches []glossary.Match) {
	if matchJSON {
		printMatchesJSON(cmd, text, matches)
		return
	}
	if matchColor {
		cmd.Println(renderANSI(text, glossary.ProjectHighlights(matches)))
	}
	if len(matches) == 0 {
		cmd.Println("No glossary matches.")
		return
	}
	for _, match := range matches {
		label := match.Entry.OriginalTerm
		if match.MatchedAlias != "" {
			label += " (alias " + match.MatchedAlias + ")"
		}
		cmd.Printf("[%d,%d)  %s => %s  %s\n",
			match.Start, match.End, label, match.Entry.Translation, match.Entry.Category)
	}
}

// matchJSONRecord is the JSON shape of one match in --json output.
type matchJSONRecord struct {
	Start        int               `json:"start"`
	End          int               `json:"end"`
	Text         string            `json:"text"`
	EntryID      string            `json:"entry_id"`
	OriginalTerm string            `json:"original_term"`
	Translation  string            `json:"translation"`
	Category     glossary.Category `json:"category"`
	MatchedAlias string            `json:"matched_alias,omitempty"`
}

func printMatchesJSON(cmd *cobra.Command, text string, matches []glossary.Match) {
	runes := []rune(text)
	records := make([]matchJSONRecord, 0, len(matches))
	for _, match := range matches {
		records = append(records, matchJSONRecord{
			Start:        match.Start,
			End:          match.End,
			Text:         string(runes[match.Start:match.End]),
			EntryID:      match.Entry.ID,
			OriginalTerm: match.Entry.OriginalTerm,
			Translation:  match.Entry.Translation,
			Category:     match.Entry.Category,
			MatchedAlias: match.MatchedAlias,
		})
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		cmd.PrintErrf("Error: %v\n", err)
		return
	}
	cmd.Println(string(data))
}

// categoryANSI maps entry categories to ANSI color codes. Matched spans are
// underlined in the category color.
var categoryANSI = map[glossary.Category]string{
	glossary.CategoryCharacter:    "36", // cyan
	glossary.CategoryPlace:        "32", // green
	glossary.CategoryEvent:        "33", // yellow
	glossary.CategoryObject:       "35", // magenta
	glossary.CategoryConcept:      "34", // blue
	glossary.CategoryOrganization: "31", // red
	glossary.CategoryTechnique:    "95", // bright magenta
	glossary.CategoryOther:        "37", // white
}

// renderANSI underlines each highlighted span in its category color.
// Highlights are sorted and non-overlapping, so a single pass suffices.
func renderANSI(text string, highlights []glossary.Highlight) string {
	if len(highlights) == 0 {
		return text
	}
	runes := []rune(text)
	var sb strings.Builder
	prev := 0
	for _, h := range highlights {
		sb.WriteString(string(runes[prev:h.Start]))
		color, ok := categoryANSI[h.Category]
		if !ok {
			color = "37"
		}
		sb.WriteString("\x1b[4;" + color + "m")
		sb.WriteString(string(runes[h.Start:h.End]))
		sb.WriteString("\x1b[0m")
		prev = h.End
	}
	sb.WriteString(string(runes[prev:]))
	return sb.String()
}

func init() {
	matchCmd.Flags().StringVar(&matchFile, "file", "", "scan a file instead of a chapter")
	matchCmd.Flags().StringVar(&matchMode, "mode", "source", "match mode: source or translated")
	matchCmd.Flags().BoolVar(&matchJSON, "json", false, "emit matches as JSON")
	matchCmd.Flags().BoolVar(&matchColor, "color", false, "print the text with matches underlined by category")
	matchCmd.Flags().BoolVar(&matchWatch, "watch", false, "re-scan the --file on every save")
	rootCmd.AddCommand(matchCmd)
}
