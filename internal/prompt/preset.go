// Package prompt assembles the instruction text sent to the translation
// backend: a user-editable preset template, the glossary entries that matched
// in the current chapter, optional prior-chapter context, and the chapter text
// itself. All operations here are stateless string transforms.
package prompt

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"novel-translator/internal/logger"
	"novel-translator/internal/types"
)

// Preset is a user-editable prompt template. Presets live as TOML files in a
// presets directory; the built-in default is used when none is selected.
//
// ExampleSource/ExampleTranslated form an optional one-shot demonstration
// pair, included verbatim ahead of the main instructions when both are set.
type Preset struct {
	Name              string `toml:"name"`
	Description       string `toml:"description,omitempty"`
	Template          string `toml:"template"`
	ExampleSource     string `toml:"example_source,omitempty"`
	ExampleTranslated string `toml:"example_translated,omitempty"`
}

// defaultTemplate is the built-in translation template. Placeholders are
// rendered by BuildTranslationPrompt; anything unrecognized stays verbatim.
const defaultTemplate = `You are a professional literary translator. Translate the following novel chapter from {{SOURCE_LANGUAGE}} to {{TARGET_LANGUAGE}}.

RULES:
1. Translate faithfully; preserve tone, register, and paragraph structure.
2. Use the glossary below for every listed term, without exception. These translations keep recurring names consistent across chapters.
3. Do not add explanations, notes, or headings - output only the translated text.
4. Keep the same number of paragraphs as the source.

GLOSSARY:
{{GLOSSARY}}

TEXT TO TRANSLATE:
{{TEXT}}`

// DefaultPreset returns the built-in preset used when no preset is configured
// or the configured one cannot be loaded.
func DefaultPreset() Preset {
	return Preset{
		Name:        "default",
		Description: "Built-in novel translation preset",
		Template:    defaultTemplate,
	}
}

// LoadPreset reads one preset TOML file.
func LoadPreset(path string) (Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, types.NewAppError(types.ErrConfig, "failed to read preset file", err)
	}

	var p Preset
	if err := toml.Unmarshal(data, &p); err != nil {
		return Preset{}, types.NewAppErrorWithDetails(types.ErrConfig, "invalid preset file", path, err)
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if strings.TrimSpace(p.Template) == "" {
		p.Template = defaultTemplate
	}
	return p, nil
}

// LoadPresets reads all *.toml presets in dir, sorted by name, with the
// built-in default prepended. A missing directory yields just the default;
// unreadable files are skipped with a warning rather than failing the load.
func LoadPresets(dir string) []Preset {
	presets := []Preset{DefaultPreset()}
	if dir == "" {
		return presets
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("failed to read presets directory", logger.String("dir", dir), logger.Err(err))
		}
		return presets
	}

	var loaded []Preset
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") {
			continue
		}
		p, err := LoadPreset(filepath.Join(dir, entry.Name()))
		if err != nil {
			logger.Warn("skipping unreadable preset", logger.String("file", entry.Name()), logger.Err(err))
			continue
		}
		loaded = append(loaded, p)
	}
	sort.Slice(loaded, func(i, j int) bool { return loaded[i].Name < loaded[j].Name })

	return append(presets, loaded...)
}

// FindPreset returns the preset with the given name, falling back to the
// built-in default when name is empty or not found.
func FindPreset(presets []Preset, name string) Preset {
	if name != "" {
		for _, p := range presets {
			if p.Name == name {
				return p
			}
		}
		logger.Debug("preset not found, using default", logger.String("name", name))
	}
	return DefaultPreset()
}

// SavePreset writes a preset as TOML.
func SavePreset(dir string, p Preset) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return types.NewAppError(types.ErrConfig, "failed to create presets directory", err)
	}
	data, err := toml.Marshal(p)
	if err != nil {
		return types.NewAppError(types.ErrConfig, "failed to marshal preset", err)
	}
	path := filepath.Join(dir, p.Name+".toml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return types.NewAppError(types.ErrConfig, "failed to write preset file", err)
	}
	return nil
}
