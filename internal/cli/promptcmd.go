package cli

import (
	"github.com/spf13/cobra"

	"novel-translator/internal/prompt"
)

var promptExtraction bool

var promptCmd = &cobra.Command{
	Use:   "prompt POSITION",
	Short: "Print the prompt a chapter would be translated with",
	Long: `Render the exact translation prompt for a chapter, including matched
glossary terms and previous-chapter context, without calling the LLM. With
--extraction the glossary extraction prompt is rendered instead (requires a
translated chapter).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := openProject()
		if err != nil {
			return err
		}
		defer m.Close()

		ch, err := chapterByArg(m.Store(), args[0])
		if err != nil {
			return err
		}

		if promptExtraction {
			p, err := m.Store().Project()
			if err != nil {
				return err
			}
			existing, err := m.Store().ListEntries()
			if err != nil {
				return err
			}
			cmd.Println(prompt.BuildGlossaryExtractionPrompt(
				ch.SourceText, ch.TranslatedText, p.SourceLang, p.TargetLang, existing, nil))
			return nil
		}

		entries, err := m.Store().ListActiveEntries()
		if err != nil {
			return err
		}
		text, _, err := newEngine(0).BuildPrompt(m, ch, entries)
		if err != nil {
			return err
		}
		cmd.Println(text)
		return nil
	},
}

func init() {
	promptCmd.Flags().BoolVar(&promptExtraction, "extraction", false, "render the glossary extraction prompt")
	rootCmd.AddCommand(promptCmd)
}
