package cli

import (
	"github.com/spf13/cobra"

	"novel-translator/internal/project"
)

var (
	initSourceLang string
	initTargetLang string
)

var initCmd = &cobra.Command{
	Use:   "init NAME",
	Short: "Create a new translation project",
	Long: `Create a new translation project in the --project directory (default:
the current directory). The project is a single SQLite file holding chapters,
the glossary, and per-project configuration.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := project.Create(projectDir, args[0], initSourceLang, initTargetLang)
		if err != nil {
			return err
		}
		defer m.Close()

		settingsManager.TouchRecentProject(m.Dir(), args[0])
		cmd.Printf("Created project %q (%s -> %s) in %s\n",
			args[0], initSourceLang, initTargetLang, m.Dir())
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initSourceLang, "source", "Japanese", "source language")
	initCmd.Flags().StringVar(&initTargetLang, "target", "English", "target language")
	rootCmd.AddCommand(initCmd)
}
