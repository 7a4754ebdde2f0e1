package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"novel-translator/internal/store"
	"novel-translator/internal/types"
)

var chapterImportTitle string
var chapterShowTranslated bool

var chapterCmd = &cobra.Command{
	Use:   "chapter",
	Short: "Manage project chapters",
}

var chapterImportCmd = &cobra.Command{
	Use:   "import FILE...",
	Short: "Import text files as chapters",
	Long: `Import one chapter per file, appended in argument order. Files may be
UTF-8 (with or without BOM), UTF-16, or GBK; content is stored verbatim, only
transcoded. The chapter title defaults to the file name without extension.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := openProject()
		if err != nil {
			return err
		}
		defer m.Close()

		title := chapterImportTitle
		if title != "" && len(args) > 1 {
			return types.NewAppError(types.ErrInvalidInput,
				"--title only applies when importing a single file", nil)
		}
		for _, path := range args {
			ch, err := m.ImportChapter(path, title)
			if err != nil {
				return err
			}
			cmd.Printf("Imported chapter %d: %s (%d runes)\n",
				ch.Position, ch.Title, len([]rune(ch.SourceText)))
		}
		return nil
	},
}

var chapterListCmd = &cobra.Command{
	Use:   "list",
	Short: "List chapters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		m, err := openProject()
		if err != nil {
			return err
		}
		defer m.Close()

		chapters, err := m.Store().ListChapters()
		if err != nil {
			return err
		}
		if len(chapters) == 0 {
			cmd.Println("No chapters. Import one with 'chapter import FILE'.")
			return nil
		}
		for _, ch := range chapters {
			cmd.Printf("%4d  %-10s  %s\n", ch.Position, ch.Status, ch.Title)
		}
		return nil
	},
}

var chapterShowCmd = &cobra.Command{
	Use:   "show POSITION",
	Short: "Print a chapter's text",
	Args:  cobra.ExactArgs(1),
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
		if chapterShowTranslated {
			if ch.Status != store.ChapterStatusTranslated {
				return types.NewAppErrorWithDetails(types.ErrTranslation,
					"chapter is not translated yet", ch.Title, nil)
			}
			cmd.Println(ch.TranslatedText)
			return nil
		}
		cmd.Println(ch.SourceText)
		return nil
	},
}

func chapterByArg(st *store.Store, arg string) (*store.Chapter, error) {
	pos, err := strconv.Atoi(arg)
	if err != nil {
		return nil, types.NewAppErrorWithDetails(types.ErrInvalidInput,
			"chapter position must be a number", arg, err)
	}
	return st.GetChapterByPosition(pos)
}

func init() {
	chapterImportCmd.Flags().StringVar(&chapterImportTitle, "title", "", "chapter title (single file only)")
	chapterShowCmd.Flags().BoolVar(&chapterShowTranslated, "translated", false, "show the translation instead of the source")
	chapterCmd.AddCommand(chapterImportCmd)
	chapterCmd.AddCommand(chapterListCmd)
	chapterCmd.AddCommand(chapterShowCmd)
	rootCmd.AddCommand(chapterCmd)
}
