// Package store persists a translation project as a single-file SQLite
// database inside the project directory. It owns the project row, the
// ordered chapter list, and the glossary entries.
//
// All textual fields are NFC-normalized on write so the matcher's exact
// code-point comparison is reliable regardless of how the text arrived.
// Glossary entries keep an explicit position column preserving creation
// order; that order is the matcher's tie-break between same-length
// candidates from different entries.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite" // SQLite driver

	"novel-translator/internal/logger"
	"novel-translator/internal/prompt"
	"novel-translator/internal/types"
)

// DBFileName is the database file name inside a project directory.
const DBFileName = "project.db"

// Chapter status values.
const (
	ChapterStatusDraft      = "draft"
	ChapterStatusTranslated = "translated"
)

// Project is the singleton project row.
type Project struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	SourceLang string        `json:"source_lang"`
	TargetLang string        `json:"target_lang"`
	Config     ProjectConfig `json:"config"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// ProjectConfig holds per-project options, persisted as JSON in the project
// row. The prompt-assembly subset is handed to the prompt package via
// PromptConfig.
type ProjectConfig struct {
	PresetName                  string `json:"preset_name,omitempty"`
	ForceLineCountSync          bool   `json:"force_line_count_sync"`
	IncludePreviousContext      bool   `json:"include_previous_context"`
	PreviousContextChapterCount int    `json:"previous_context_chapter_count"`
	// MatchWholeWords enables the word-boundary scan option. Off by default:
	// substring matching is the contract for CJK source text.
	MatchWholeWords bool `json:"match_whole_words"`
}

// DefaultProjectConfig returns the configuration new projects start with.
func DefaultProjectConfig() ProjectConfig {
	return ProjectConfig{PreviousContextChapterCount: 1}
}

// PromptConfig projects the prompt-assembly options.
func (c ProjectConfig) PromptConfig() prompt.Config {
	return prompt.Config{
		ForceLineCountSync:          c.ForceLineCountSync,
		IncludePreviousContext:      c.IncludePreviousContext,
		PreviousContextChapterCount: c.PreviousContextChapterCount,
	}
}

// Chapter is one chapter of the novel. Position preserves import order.
type Chapter struct {
	ID             string    `json:"id"`
	Position       int       `json:"position"`
	Title          string    `json:"title"`
	SourceText     string    `json:"source_text"`
	TranslatedText string    `json:"translated_text,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Store is a handle on one project database.
type Store struct {
	db   *sql.DB
	path string
}

const schemaV1 = `
CREATE TABLE IF NOT EXISTS project (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	source_lang TEXT NOT NULL,
	target_lang TEXT NOT NULL,
	config TEXT NOT NULL DEFAULT '{}',
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS chapters (
	id TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	title TEXT NOT NULL,
	source_text TEXT NOT NULL DEFAULT '',
	translated_text TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'draft',
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chapters_position ON chapters(position);

CREATE TABLE IF NOT EXISTS glossary_entries (
	id TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	original_term TEXT NOT NULL,
	translation TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL,
	aliases TEXT NOT NULL DEFAULT '[]',
	gender TEXT NOT NULL DEFAULT '',
	context_description TEXT NOT NULL DEFAULT '',
	is_active INTEGER NOT NULL DEFAULT 1,
	usage_count INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_glossary_position ON glossary_entries(position);
`

// migrations maps schema versions to the statements that bring the database
// up to that version. Version 0 is an empty database.
var migrations = []string{schemaV1}

// Create initializes a new project database inside dir. The directory is
// created if needed; an existing database is an error.
func Create(dir, name, sourceLang, targetLang string) (*Store, error) {
	if strings.TrimSpace(name) == "" {
		return nil, types.NewAppError(types.ErrProject, "project name must not be empty", nil)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, types.NewAppError(types.ErrStorage, "failed to create project directory", err)
	}

	dbPath := filepath.Join(dir, DBFileName)
	if _, err := os.Stat(dbPath); err == nil {
		return nil, types.NewAppErrorWithDetails(types.ErrProject, "project already exists", dbPath, nil)
	}

	s, err := open(dbPath)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	cfg, _ := json.Marshal(DefaultProjectConfig())
	_, err = s.db.Exec(
		`INSERT INTO project (id, name, source_lang, target_lang, config, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), norm.NFC.String(strings.TrimSpace(name)),
		strings.TrimSpace(sourceLang), strings.TrimSpace(targetLang),
		string(cfg), now.UnixMilli(), now.UnixMilli())
	if err != nil {
		s.Close()
		return nil, types.NewAppError(types.ErrStorage, "failed to initialize project", err)
	}

	logger.Info("project created",
		logger.String("name", name),
		logger.String("dir", dir))
	return s, nil
}

// Open opens an existing project database in dir.
func Open(dir string) (*Store, error) {
	dbPath := filepath.Join(dir, DBFileName)
	if _, err := os.Stat(dbPath); err != nil {
		return nil, types.NewAppErrorWithDetails(types.ErrProject, "no project found", dir, err)
	}
	return open(dbPath)
}

func open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, types.NewAppError(types.ErrStorage, "failed to open project database", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, types.NewAppError(types.ErrStorage, "failed to enable foreign keys", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at INTEGER NOT NULL
		)`)
	if err != nil {
		return types.NewAppError(types.ErrStorage, "failed to create migrations table", err)
	}

	var current int
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return types.NewAppError(types.ErrStorage, "failed to read schema version", err)
	}

	for v := current; v < len(migrations); v++ {
		if _, err := s.db.Exec(migrations[v]); err != nil {
			return types.NewAppErrorWithDetails(types.ErrStorage,
				"schema migration failed", fmt.Sprintf("version %d", v+1), err)
		}
		if _, err := s.db.Exec(
			`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`,
			v+1, time.Now().UnixMilli()); err != nil {
			return types.NewAppError(types.ErrStorage, "failed to record schema version", err)
		}
		logger.Debug("schema migration applied", logger.Int("version", v+1))
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Project returns the project row.
func (s *Store) Project() (*Project, error) {
	var p Project
	var cfgJSON string
	var createdMs, updatedMs int64
	err := s.db.QueryRow(
		`SELECT id, name, source_lang, target_lang, config, created_at, updated_at FROM project LIMIT 1`,
	).Scan(&p.ID, &p.Name, &p.SourceLang, &p.TargetLang, &cfgJSON, &createdMs, &updatedMs)
	if err != nil {
		return nil, types.NewAppError(types.ErrStorage, "failed to load project", err)
	}

	p.Config = DefaultProjectConfig()
	if err := json.Unmarshal([]byte(cfgJSON), &p.Config); err != nil {
		logger.Warn("invalid project config, using defaults", logger.Err(err))
		p.Config = DefaultProjectConfig()
	}
	p.CreatedAt = time.UnixMilli(createdMs)
	p.UpdatedAt = time.UnixMilli(updatedMs)
	return &p, nil
}

// UpdateConfig replaces the project configuration.
func (s *Store) UpdateConfig(cfg ProjectConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return types.NewAppError(types.ErrInternal, "failed to marshal project config", err)
	}
	_, err = s.db.Exec(`UPDATE project SET config = ?, updated_at = ?`, string(data), time.Now().UnixMilli())
	if err != nil {
		return types.NewAppError(types.ErrStorage, "failed to update project config", err)
	}
	return nil
}
