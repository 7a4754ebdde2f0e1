package cli

import (
	"github.com/spf13/cobra"

	"novel-translator/internal/store"
	"novel-translator/internal/types"
)

var (
	translateAll         bool
	translateConcurrency int
	translateForce       bool
)

var translateCmd = &cobra.Command{
	Use:   "translate [POSITION...]",
	Short: "Translate chapters with the configured LLM",
	Long: `Translate the given chapters (by position), or every untranslated
chapter with --all. Each chapter's prompt carries the glossary terms matched
in its text, so recurring names stay consistent. Progress goes to stderr;
failed chapters are reported and skipped, the rest continue.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := openProject()
		if err != nil {
			return err
		}
		defer m.Close()

		chapters, err := translateTargets(m.Store(), args)
		if err != nil {
			return err
		}
		if len(chapters) == 0 {
			cmd.Println("Nothing to translate.")
			return nil
		}

		entries, err := m.Store().ListActiveEntries()
		if err != nil {
			return err
		}

		engine := newEngine(translateConcurrency)
		results := engine.TranslateChapters(cmd.Context(), m, chapters, entries,
			func(current, total int, message string) {
				cmd.PrintErrf("%s\n", message)
			})

		translated, failed := 0, 0
		for i, res := range results {
			if res.Err != nil {
				failed++
				cmd.PrintErrf("chapter %d (%s) failed: %v\n",
					chapters[i].Position, chapters[i].Title, res.Err)
				continue
			}
			if err := m.Store().SetChapterTranslation(res.ChapterID, res.Translated); err != nil {
				return err
			}
			if err := m.AccumulateUsage(res.Matches); err != nil {
				return err
			}
			translated++
		}

		cmd.Printf("Translated %d chapters, %d failed.\n", translated, failed)
		if failed > 0 {
			return types.NewAppError(types.ErrTranslation, "some chapters failed to translate", nil)
		}
		return nil
	},
}

// translateTargets resolves which chapters to translate. Positions win over
// --all; --all picks every untranslated chapter unless --force retranslates
// everything.
func translateTargets(st *store.Store, args []string) ([]*store.Chapter, error) {
	if len(args) > 0 {
		chapters := make([]*store.Chapter, 0, len(args))
		for _, arg := range args {
			ch, err := chapterByArg(st, arg)
			if err != nil {
				return nil, err
			}
			chapters = append(chapters, ch)
		}
		return chapters, nil
	}
	if !translateAll {
		return nil, types.NewAppError(types.ErrInvalidInput,
			"give chapter positions or --all", nil)
	}

	all, err := st.ListChapters()
	if err != nil {
		return nil, err
	}
	if translateForce {
		return all, nil
	}
	var pending []*store.Chapter
	for _, ch := range all {
		if ch.Status != store.ChapterStatusTranslated {
			pending = append(pending, ch)
		}
	}
	return pending, nil
}

func init() {
	translateCmd.Flags().BoolVar(&translateAll, "all", false, "translate every untranslated chapter")
	translateCmd.Flags().BoolVar(&translateForce, "force", false, "with --all, retranslate already-translated chapters too")
	translateCmd.Flags().IntVar(&translateConcurrency, "concurrency", 0, "parallel chapter translations (0 = use settings)")
	rootCmd.AddCommand(translateCmd)
}
