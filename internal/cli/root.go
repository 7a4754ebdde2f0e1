// Package cli implements the novel-translator command tree. Commands are
// thin wrappers over the internal packages; all domain logic lives below.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"novel-translator/internal/llm"
	"novel-translator/internal/logger"
	"novel-translator/internal/project"
	"novel-translator/internal/settings"
	"novel-translator/internal/translator"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	projectDir string
	verbose    bool

	settingsManager *settings.Manager
)

var rootCmd = &cobra.Command{
	Use:   "novel-translator",
	Short: "Glossary-aware novel translation from the command line",
	Long: `novel-translator manages translation projects for long-form fiction:
chapters, a glossary of recurring terms, and LLM translation that keeps
terminology consistent across the whole book.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		m, err := settings.NewManager()
		if err != nil {
			return err
		}
		settingsManager = m

		logCfg := logger.DefaultConfig()
		logCfg.LogFilePath = m.GetLogFile()
		if verbose {
			logCfg.Level = logger.LevelDebug
		}
		return logger.Init(logCfg)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&projectDir, "project", ".", "project directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the command tree and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openProject opens the project in --project, recording it in the recent
// list. Callers must Close the returned manager.
func openProject() (*project.Manager, error) {
	m, err := project.Open(projectDir)
	if err != nil {
		return nil, err
	}
	if p, perr := m.Store().Project(); perr == nil {
		settingsManager.TouchRecentProject(m.Dir(), p.Name)
	}
	return m, nil
}

// newEngine builds the translation engine from current settings. A positive
// concurrency overrides the configured value for this invocation.
func newEngine(concurrency int) *translator.Engine {
	s := engineSettings{base: settingsManager, concurrency: concurrency}
	return translator.NewEngine(llm.NewClient(settingsManager), s)
}

type engineSettings struct {
	base        *settings.Manager
	concurrency int
}

func (s engineSettings) GetConcurrency() int {
	if s.concurrency > 0 {
		return s.concurrency
	}
	return s.base.GetConcurrency()
}

func (s engineSettings) GetPresetsDir() string {
	return s.base.GetPresetsDir()
}
