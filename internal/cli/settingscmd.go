package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"novel-translator/internal/types"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	RunE:  runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a setting",
	Long: `Set an application setting and save it.

Keys:
  api-key      OpenAI-compatible API key
  base-url     API base URL
  model        model name
  concurrency  parallel chapter translations
  presets-dir  directory of prompt preset TOML files
  log-file     log file path (empty for console-only)`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	cfg := settingsManager.GetConfig()

	cmd.Println("[API]")
	if settingsManager.HasAPIKey() {
		cmd.Printf("  Key: %s\n", maskKey(settingsManager.GetAPIKey()))
	} else {
		cmd.Println("  Key: (not set)")
	}
	cmd.Printf("  Base URL: %s\n", settingsManager.GetBaseURL())
	cmd.Printf("  Model: %s\n", settingsManager.GetModel())
	cmd.Println()
	cmd.Println("[Translation]")
	cmd.Printf("  Concurrency: %d\n", settingsManager.GetConcurrency())
	cmd.Println()
	cmd.Println("[Paths]")
	cmd.Printf("  Settings file: %s\n", settingsManager.GetFilePath())
	if cfg.PresetsDir != "" {
		cmd.Printf("  Presets dir: %s\n", cfg.PresetsDir)
	}
	if cfg.LogFile != "" {
		cmd.Printf("  Log file: %s\n", cfg.LogFile)
	}

	if recent := settingsManager.GetRecentProjects(); len(recent) > 0 {
		cmd.Println()
		cmd.Println("[Recent projects]")
		for _, rp := range recent {
			cmd.Printf("  %s (%s)\n", rp.Name, rp.Path)
		}
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	cfg := settingsManager.GetConfig()

	switch key {
	case "api-key":
		cfg.OpenAIAPIKey = value
	case "base-url":
		cfg.OpenAIBaseURL = value
	case "model":
		cfg.OpenAIModel = value
	case "concurrency":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return types.NewAppErrorWithDetails(types.ErrInvalidInput,
				"concurrency must be a positive number", value, err)
		}
		cfg.Concurrency = n
	case "presets-dir":
		cfg.PresetsDir = value
	case "log-file":
		cfg.LogFile = value
	default:
		return types.NewAppErrorWithDetails(types.ErrInvalidInput, "unknown setting", key, nil)
	}

	if err := settingsManager.SetConfig(cfg); err != nil {
		return err
	}
	cmd.Printf("Set %s.\n", key)
	return nil
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}
