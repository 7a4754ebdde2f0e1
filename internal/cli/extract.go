package cli

import (
	"github.com/spf13/cobra"

	"novel-translator/internal/glossary"
	"novel-translator/internal/types"
)

var (
	extractCategories []string
	extractApply      bool
)

var extractCmd = &cobra.Command{
	Use:   "extract POSITION",
	Short: "Propose glossary entries from a translated chapter",
	Long: `Ask the LLM to propose glossary entries from a chapter's source text and
its translation. Terms already in the glossary are dropped. Without --apply
candidates are only printed; with --apply they are inserted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		categories, err := parseCategories(extractCategories)
		if err != nil {
			return err
		}

		m, err := openProject()
		if err != nil {
			return err
		}
		defer m.Close()

		ch, err := chapterByArg(m.Store(), args[0])
		if err != nil {
			return err
		}
		existing, err := m.Store().ListEntries()
		if err != nil {
			return err
		}

		engine := newEngine(0)
		candidates, err := engine.ExtractGlossary(cmd.Context(), m, ch, existing, categories)
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			cmd.Println("No new glossary terms proposed.")
			return nil
		}

		for _, e := range candidates {
			line := e.OriginalTerm + " => " + e.Translation
			if e.ContextDescription != "" {
				line += ": " + e.ContextDescription
			}
			cmd.Printf("  %-12s  %s\n", e.Category, line)
		}

		if !extractApply {
			cmd.Printf("%d candidates. Re-run with --apply to add them.\n", len(candidates))
			return nil
		}
		for _, e := range candidates {
			if _, err := m.AddEntry(e); err != nil {
				return err
			}
		}
		cmd.Printf("Added %d entries.\n", len(candidates))
		return nil
	},
}

func parseCategories(names []string) ([]glossary.Category, error) {
	categories := make([]glossary.Category, 0, len(names))
	for _, name := range names {
		c := glossary.Category(name)
		if !c.IsValid() {
			return nil, types.NewAppErrorWithDetails(types.ErrInvalidInput,
				"unknown category", name, nil)
		}
		categories = append(categories, c)
	}
	return categories, nil
}

func init() {
	extractCmd.Flags().StringSliceVar(&extractCategories, "category", nil,
		"restrict proposals to these categories, repeatable")
	extractCmd.Flags().BoolVar(&extractApply, "apply", false, "insert the proposed entries")
	rootCmd.AddCommand(extractCmd)
}
