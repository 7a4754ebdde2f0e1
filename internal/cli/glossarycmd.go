package cli

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"novel-translator/internal/glossary"
	"novel-translator/internal/types"
)

var (
	glossaryAddCategory string
	glossaryAddAliases  []string
	glossaryAddGender   string
	glossaryAddContext  string
)

var glossaryCmd = &cobra.Command{
	Use:   "glossary",
	Short: "Manage the project glossary",
}

var glossaryAddCmd = &cobra.Command{
	Use:   "add TERM TRANSLATION",
	Short: "Add a glossary entry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := openProject()
		if err != nil {
			return err
		}
		defer m.Close()

		e := glossary.NewEntry(args[0], args[1], glossary.Category(glossaryAddCategory))
		e.Aliases = glossaryAddAliases
		e.Gender = glossary.Gender(glossaryAddGender)
		e.ContextDescription = glossaryAddContext

		entries, err := m.AddEntry(e)
		if err != nil {
			return err
		}
		cmd.Printf("Added %q => %q (%s). Glossary now has %d active entries.\n",
			e.OriginalTerm, e.Translation, e.Category, len(entries))
		return nil
	},
}

var glossaryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List glossary entries in matching tie-break order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		m, err := openProject()
		if err != nil {
			return err
		}
		defer m.Close()

		entries, err := m.Store().ListEntries()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			cmd.Println("Glossary is empty. Add entries with 'glossary add TERM TRANSLATION'.")
			return nil
		}
		for i, e := range entries {
			marker := " "
			if !e.IsActive {
				marker = "-"
			}
			line := e.OriginalTerm + " => " + e.Translation
			if len(e.Aliases) > 0 {
				line += " (aliases: " + strings.Join(e.Aliases, ", ") + ")"
			}
			cmd.Printf("%s %3d  %-12s  %s  [%s]  used %d\n",
				marker, i+1, e.Category, line, shortID(e.ID), e.UsageCount)
		}
		return nil
	},
}

var glossaryRemoveCmd = &cobra.Command{
	Use:   "remove ID",
	Short: "Remove a glossary entry by ID (or ID prefix)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := openProject()
		if err != nil {
			return err
		}
		defer m.Close()

		id, err := resolveEntryID(m.Store(), args[0])
		if err != nil {
			return err
		}
		entries, err := m.RemoveEntry(id)
		if err != nil {
			return err
		}
		cmd.Printf("Removed entry %s. Glossary now has %d active entries.\n",
			shortID(id), len(entries))
		return nil
	},
}

var glossaryExportCmd = &cobra.Command{
	Use:   "export [FILE]",
	Short: "Export the glossary as JSON (stdout when no file is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := openProject()
		if err != nil {
			return err
		}
		defer m.Close()

		entries, err := m.Store().ListEntries()
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return types.NewAppError(types.ErrInternal, "failed to marshal glossary", err)
		}
		if len(args) == 0 {
			cmd.Println(string(data))
			return nil
		}
		if err := os.WriteFile(args[0], data, 0644); err != nil {
			return types.NewAppError(types.ErrStorage, "failed to write glossary file", err)
		}
		cmd.Printf("Exported %d entries to %s\n", len(entries), args[0])
		return nil
	},
}

var glossaryImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import glossary entries from a JSON export",
	Long: `Import entries from a JSON array produced by 'glossary export'. Entries
whose original term already exists are skipped; imported entries get fresh IDs
and append after existing ones, so current tie-break order is preserved.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := openProject()
		if err != nil {
			return err
		}
		defer m.Close()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return types.NewAppError(types.ErrFileNotFound, "failed to read glossary file", err)
		}
		var entries []*glossary.Entry
		if err := json.Unmarshal(data, &entries); err != nil {
			return types.NewAppError(types.ErrInvalidInput, "invalid glossary JSON", err)
		}

		added, skipped := 0, 0
		for _, e := range entries {
			exists, err := m.Store().HasTerm(e.OriginalTerm)
			if err != nil {
				return err
			}
			if exists {
				skipped++
				continue
			}
			fresh := glossary.NewEntry(e.OriginalTerm, e.Translation, e.Category)
			fresh.Aliases = e.Aliases
			fresh.Gender = e.Gender
			fresh.ContextDescription = e.ContextDescription
			fresh.IsActive = e.IsActive
			if _, err := m.AddEntry(fresh); err != nil {
				return err
			}
			added++
		}
		cmd.Printf("Imported %d entries, skipped %d duplicates.\n", added, skipped)
		return nil
	},
}

// resolveEntryID accepts a full entry ID or a unique prefix.
func resolveEntryID(st interface {
	ListEntries() ([]*glossary.Entry, error)
}, arg string) (string, error) {
	entries, err := st.ListEntries()
	if err != nil {
		return "", err
	}
	var found string
	for _, e := range entries {
		if e.ID == arg {
			return e.ID, nil
		}
		if strings.HasPrefix(e.ID, arg) {
			if found != "" {
				return "", types.NewAppErrorWithDetails(types.ErrInvalidInput,
					"entry ID prefix is ambiguous", arg, nil)
			}
			found = e.ID
		}
	}
	if found == "" {
		return "", types.NewAppErrorWithDetails(types.ErrGlossary,
			"no entry with that ID", arg, nil)
	}
	return found, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	glossaryAddCmd.Flags().StringVar(&glossaryAddCategory, "category", "other",
		"entry category (character, place, event, object, concept, organization, technique, other)")
	glossaryAddCmd.Flags().StringSliceVar(&glossaryAddAliases, "alias", nil, "alias, repeatable")
	glossaryAddCmd.Flags().StringVar(&glossaryAddGender, "gender", "", "character gender (male, female, neutral)")
	glossaryAddCmd.Flags().StringVar(&glossaryAddContext, "context", "", "short context description")

	glossaryCmd.AddCommand(glossaryAddCmd)
	glossaryCmd.AddCommand(glossaryListCmd)
	glossaryCmd.AddCommand(glossaryRemoveCmd)
	glossaryCmd.AddCommand(glossaryImportCmd)
	glossaryCmd.AddCommand(glossaryExportCmd)
	rootCmd.AddCommand(glossaryCmd)
}
