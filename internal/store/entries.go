package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"novel-translator/internal/glossary"
	"novel-translator/internal/logger"
	"novel-translator/internal/types"
)

// AddEntry validates and inserts a glossary entry at the next position.
// The entry is sanitized in place (trim, NFC, blank aliases dropped) and gets
// an ID and timestamps when missing.
func (s *Store) AddEntry(e *glossary.Entry) error {
	e.Sanitize()
	if err := e.Validate(); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := time.Now()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	var maxPos sql.NullInt64
	if err := s.db.QueryRow(`SELECT MAX(position) FROM glossary_entries`).Scan(&maxPos); err != nil {
		return types.NewAppError(types.ErrStorage, "failed to determine entry position", err)
	}

	aliases, err := json.Marshal(e.Aliases)
	if err != nil {
		return types.NewAppError(types.ErrInternal, "failed to marshal aliases", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO glossary_entries
		 (id, position, original_term, translation, category, aliases, gender,
		  context_description, is_active, usage_count, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, int(maxPos.Int64)+1, e.OriginalTerm, e.Translation, string(e.Category),
		string(aliases), string(e.Gender), e.ContextDescription,
		boolToInt(e.IsActive), e.UsageCount, e.CreatedAt.UnixMilli(), e.UpdatedAt.UnixMilli())
	if err != nil {
		return types.NewAppError(types.ErrStorage, "failed to insert glossary entry", err)
	}

	logger.Debug("glossary entry added",
		logger.String("term", e.OriginalTerm),
		logger.String("category", string(e.Category)))
	return nil
}

// UpdateEntry replaces an existing entry's fields. Position (and with it the
// tie-break order) is preserved.
func (s *Store) UpdateEntry(e *glossary.Entry) error {
	e.Sanitize()
	if err := e.Validate(); err != nil {
		return err
	}
	e.UpdatedAt = time.Now()

	aliases, err := json.Marshal(e.Aliases)
	if err != nil {
		return types.NewAppError(types.ErrInternal, "failed to marshal aliases", err)
	}

	res, err := s.db.Exec(
		`UPDATE glossary_entries SET original_term = ?, translation = ?, category = ?,
		 aliases = ?, gender = ?, context_description = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`,
		e.OriginalTerm, e.Translation, string(e.Category), string(aliases),
		string(e.Gender), e.ContextDescription, boolToInt(e.IsActive),
		e.UpdatedAt.UnixMilli(), e.ID)
	if err != nil {
		return types.NewAppError(types.ErrStorage, "failed to update glossary entry", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.NewAppErrorWithDetails(types.ErrGlossary, "glossary entry not found", e.ID, nil)
	}
	return nil
}

// DeleteEntry removes an entry by ID.
func (s *Store) DeleteEntry(id string) error {
	res, err := s.db.Exec(`DELETE FROM glossary_entries WHERE id = ?`, id)
	if err != nil {
		return types.NewAppError(types.ErrStorage, "failed to delete glossary entry", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.NewAppErrorWithDetails(types.ErrGlossary, "glossary entry not found", id, nil)
	}
	return nil
}

// GetEntry loads one entry by ID.
func (s *Store) GetEntry(id string) (*glossary.Entry, error) {
	row := s.db.QueryRow(selectEntryColumns+` WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NewAppErrorWithDetails(types.ErrGlossary, "glossary entry not found", id, nil)
	}
	return e, err
}

// ListEntries returns all glossary entries in creation (position) order —
// the order term-index tie-breaking is defined over.
func (s *Store) ListEntries() ([]*glossary.Entry, error) {
	return s.listEntries(selectEntryColumns + ` ORDER BY position`)
}

// ListActiveEntries returns active entries in position order. This is what
// index builds should consume; inactive entries stay stored but never match.
func (s *Store) ListActiveEntries() ([]*glossary.Entry, error) {
	return s.listEntries(selectEntryColumns + ` WHERE is_active = 1 ORDER BY position`)
}

func (s *Store) listEntries(query string) ([]*glossary.Entry, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, types.NewAppError(types.ErrStorage, "failed to list glossary entries", err)
	}
	defer rows.Close()

	var entries []*glossary.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrStorage, "failed to list glossary entries", err)
	}
	return entries, nil
}

// IncrementUsage bumps the usage counter of the given entries. Missing IDs
// are ignored; usage counts are bookkeeping, never matching input.
func (s *Store) IncrementUsage(ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return types.NewAppError(types.ErrStorage, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	now := time.Now().UnixMilli()
	for _, id := range ids {
		if _, err := tx.Exec(
			`UPDATE glossary_entries SET usage_count = usage_count + 1, updated_at = ? WHERE id = ?`,
			now, id); err != nil {
			return types.NewAppError(types.ErrStorage, "failed to increment usage count", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return types.NewAppError(types.ErrStorage, "failed to commit usage counts", err)
	}
	return nil
}

// HasTerm reports whether an entry with exactly this original term exists.
// Comparison is case-sensitive, the same rule the matcher applies.
func (s *Store) HasTerm(originalTerm string) (bool, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM glossary_entries WHERE original_term = ?`,
		strings.TrimSpace(originalTerm)).Scan(&n)
	if err != nil {
		return false, types.NewAppError(types.ErrStorage, "failed to query glossary", err)
	}
	return n > 0, nil
}

const selectEntryColumns = `SELECT id, original_term, translation, category, aliases, gender,
	context_description, is_active, usage_count, created_at, updated_at FROM glossary_entries`

func scanEntry(row rowScanner) (*glossary.Entry, error) {
	var e glossary.Entry
	var category, gender, aliasesJSON string
	var isActive int
	var createdMs, updatedMs int64

	err := row.Scan(&e.ID, &e.OriginalTerm, &e.Translation, &category, &aliasesJSON,
		&gender, &e.ContextDescription, &isActive, &e.UsageCount, &createdMs, &updatedMs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, types.NewAppError(types.ErrStorage, "failed to scan glossary entry", err)
	}

	e.Category = glossary.Category(category)
	e.Gender = glossary.Gender(gender)
	e.IsActive = isActive != 0
	e.CreatedAt = time.UnixMilli(createdMs)
	e.UpdatedAt = time.UnixMilli(updatedMs)
	if err := json.Unmarshal([]byte(aliasesJSON), &e.Aliases); err != nil {
		logger.Warn("invalid aliases JSON, dropping aliases",
			logger.String("entry", e.ID), logger.Err(err))
		e.Aliases = nil
	}
	return &e, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
