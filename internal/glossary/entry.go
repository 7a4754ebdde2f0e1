// Package glossary implements the glossary matching engine: entry types, the
// term index built from an entry list, and the matcher that scans chapter text
// for non-overlapping term occurrences. Matcher output feeds both text
// highlighting and prompt assembly.
package glossary

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"novel-translator/internal/types"
)

// Category classifies a glossary entry. The set is closed.
type Category string

const (
	CategoryCharacter    Category = "character"
	CategoryPlace        Category = "place"
	CategoryEvent        Category = "event"
	CategoryObject       Category = "object"
	CategoryConcept      Category = "concept"
	CategoryOrganization Category = "organization"
	CategoryTechnique    Category = "technique"
	CategoryOther        Category = "other"
)

// Categories returns all valid categories in display order.
func Categories() []Category {
	return []Category{
		CategoryCharacter,
		CategoryPlace,
		CategoryEvent,
		CategoryObject,
		CategoryConcept,
		CategoryOrganization,
		CategoryTechnique,
		CategoryOther,
	}
}

// IsValid reports whether c is one of the closed category set.
func (c Category) IsValid() bool {
	switch c {
	case CategoryCharacter, CategoryPlace, CategoryEvent, CategoryObject,
		CategoryConcept, CategoryOrganization, CategoryTechnique, CategoryOther:
		return true
	}
	return false
}

// Gender annotates character entries. Empty means unspecified.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderNeutral Gender = "neutral"
)

// Entry is a term the user wants translated consistently.
//
// OriginalTerm and Aliases are matched against source-language text;
// Translation is matched against translated text. IsActive, UsageCount and the
// timestamps are bookkeeping only and are never consulted by the index or the
// matcher.
type Entry struct {
	ID                 string    `json:"id"`
	OriginalTerm       string    `json:"original_term"`
	Translation        string    `json:"translation"`
	Category           Category  `json:"category"`
	Aliases            []string  `json:"aliases,omitempty"`
	Gender             Gender    `json:"gender,omitempty"` // meaningful only for character entries
	ContextDescription string    `json:"context_description,omitempty"`
	IsActive           bool      `json:"is_active"`
	UsageCount         int       `json:"usage_count"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// NewEntry creates an active entry with a fresh ID and timestamps. The fields
// are sanitized; the entry is not validated here (see Validate).
func NewEntry(originalTerm, translation string, category Category) *Entry {
	now := time.Now()
	e := &Entry{
		ID:           uuid.NewString(),
		OriginalTerm: originalTerm,
		Translation:  translation,
		Category:     category,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	e.Sanitize()
	return e
}

// Sanitize trims and NFC-normalizes the textual fields and drops blank
// aliases. Chapter text is NFC-normalized on import as well, so the matcher's
// exact code-point comparison sees both sides in the same form.
func (e *Entry) Sanitize() {
	e.OriginalTerm = cleanTerm(e.OriginalTerm)
	e.Translation = cleanTerm(e.Translation)
	e.ContextDescription = strings.TrimSpace(e.ContextDescription)

	if len(e.Aliases) > 0 {
		aliases := e.Aliases[:0]
		for _, a := range e.Aliases {
			a = cleanTerm(a)
			if a == "" {
				continue
			}
			aliases = append(aliases, a)
		}
		e.Aliases = aliases
	}
}

func cleanTerm(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Validate checks the entry invariants: non-empty original term, a valid
// category, and no blank aliases. Returns an ErrGlossary AppError on the first
// violation.
func (e *Entry) Validate() error {
	if strings.TrimSpace(e.OriginalTerm) == "" {
		return types.NewAppError(types.ErrGlossary, "glossary entry requires a non-empty original term", nil)
	}
	if !e.Category.IsValid() {
		return types.NewAppErrorWithDetails(types.ErrGlossary, "invalid glossary category", string(e.Category), nil)
	}
	for _, a := range e.Aliases {
		if strings.TrimSpace(a) == "" {
			return types.NewAppError(types.ErrGlossary, "glossary aliases must not be blank", nil)
		}
	}
	return nil
}

// Clone returns a deep copy. Entries handed to an index build should be
// treated as immutable snapshots; mutate a clone, then rebuild.
func (e *Entry) Clone() *Entry {
	c := *e
	if e.Aliases != nil {
		c.Aliases = make([]string, len(e.Aliases))
		copy(c.Aliases, e.Aliases)
	}
	return &c
}
