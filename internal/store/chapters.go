package store

import (
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"novel-translator/internal/types"
)

// AddChapter appends a chapter at the next position. Title and text are
// NFC-normalized; the text is otherwise stored verbatim.
func (s *Store) AddChapter(title, sourceText string) (*Chapter, error) {
	title = norm.NFC.String(strings.TrimSpace(title))
	if title == "" {
		return nil, types.NewAppError(types.ErrProject, "chapter title must not be empty", nil)
	}

	var maxPos sql.NullInt64
	if err := s.db.QueryRow(`SELECT MAX(position) FROM chapters`).Scan(&maxPos); err != nil {
		return nil, types.NewAppError(types.ErrStorage, "failed to determine chapter position", err)
	}

	now := time.Now()
	ch := &Chapter{
		ID:         uuid.NewString(),
		Position:   int(maxPos.Int64) + 1,
		Title:      title,
		SourceText: norm.NFC.String(sourceText),
		Status:     ChapterStatusDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	_, err := s.db.Exec(
		`INSERT INTO chapters (id, position, title, source_text, translated_text, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, '', ?, ?, ?)`,
		ch.ID, ch.Position, ch.Title, ch.SourceText, ch.Status,
		now.UnixMilli(), now.UnixMilli())
	if err != nil {
		return nil, types.NewAppError(types.ErrStorage, "failed to insert chapter", err)
	}
	return ch, nil
}

// GetChapter loads one chapter by ID.
func (s *Store) GetChapter(id string) (*Chapter, error) {
	row := s.db.QueryRow(
		`SELECT id, position, title, source_text, translated_text, status, created_at, updated_at
		 FROM chapters WHERE id = ?`, id)
	ch, err := scanChapter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NewAppErrorWithDetails(types.ErrProject, "chapter not found", id, nil)
	}
	return ch, err
}

// GetChapterByPosition loads one chapter by its 1-based position.
func (s *Store) GetChapterByPosition(position int) (*Chapter, error) {
	row := s.db.QueryRow(
		`SELECT id, position, title, source_text, translated_text, status, created_at, updated_at
		 FROM chapters WHERE position = ?`, position)
	ch, err := scanChapter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NewAppErrorWithDetails(types.ErrProject, "no chapter at position",
			"position "+strconv.Itoa(position), nil)
	}
	return ch, err
}

// ListChapters returns all chapters ordered by position.
func (s *Store) ListChapters() ([]*Chapter, error) {
	rows, err := s.db.Query(
		`SELECT id, position, title, source_text, translated_text, status, created_at, updated_at
		 FROM chapters ORDER BY position`)
	if err != nil {
		return nil, types.NewAppError(types.ErrStorage, "failed to list chapters", err)
	}
	defer rows.Close()

	var chapters []*Chapter
	for rows.Next() {
		ch, err := scanChapter(rows)
		if err != nil {
			return nil, err
		}
		chapters = append(chapters, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrStorage, "failed to list chapters", err)
	}
	return chapters, nil
}

// SetChapterTranslation stores the translated text and marks the chapter
// translated. The text is NFC-normalized so translated-pane matching behaves
// like source-pane matching.
func (s *Store) SetChapterTranslation(id, translated string) error {
	res, err := s.db.Exec(
		`UPDATE chapters SET translated_text = ?, status = ?, updated_at = ? WHERE id = ?`,
		norm.NFC.String(translated), ChapterStatusTranslated, time.Now().UnixMilli(), id)
	if err != nil {
		return types.NewAppError(types.ErrStorage, "failed to store translation", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.NewAppErrorWithDetails(types.ErrProject, "chapter not found", id, nil)
	}
	return nil
}

// DeleteChapter removes a chapter. Positions of later chapters are left
// untouched; ordering only needs to be monotonic, not dense.
func (s *Store) DeleteChapter(id string) error {
	res, err := s.db.Exec(`DELETE FROM chapters WHERE id = ?`, id)
	if err != nil {
		return types.NewAppError(types.ErrStorage, "failed to delete chapter", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.NewAppErrorWithDetails(types.ErrProject, "chapter not found", id, nil)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChapter(row rowScanner) (*Chapter, error) {
	var ch Chapter
	var createdMs, updatedMs int64
	err := row.Scan(&ch.ID, &ch.Position, &ch.Title, &ch.SourceText,
		&ch.TranslatedText, &ch.Status, &createdMs, &updatedMs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, types.NewAppError(types.ErrStorage, "failed to scan chapter", err)
	}
	ch.CreatedAt = time.UnixMilli(createdMs)
	ch.UpdatedAt = time.UnixMilli(updatedMs)
	return &ch, nil
}
