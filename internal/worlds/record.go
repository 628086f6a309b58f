// Package worlds validates the shape of world records carried inside a
// shared folder. The records stay opaque everywhere else: only the raw
// bytes are stored and returned.
package worlds

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// MaxPerFolder bounds how many worlds a single share may carry.
const MaxPerFolder = 1000

var worldIDPattern = regexp.MustCompile(`^(wrld|wld)_[A-Za-z0-9-]+$`)

// Record is the validation view of a world record. Fields not listed here
// are allowed and ignored.
type Record struct {
	ID                  string   `json:"id" validate:"required,worldid"`
	Name                string   `json:"name" validate:"required"`
	ImageURL            string   `json:"imageUrl"`
	AuthorName          string   `json:"authorName"`
	AuthorID            string   `json:"authorId"`
	Capacity            *int     `json:"capacity" validate:"required,gte=0"`
	RecommendedCapacity *int     `json:"recommendedCapacity" validate:"omitempty,gte=0"`
	Favorites           *int     `json:"favorites" validate:"required,gte=0"`
	Visits              *int     `json:"visits" validate:"omitempty,gte=0"`
	Tags                []string `json:"tags"`
	Platform            []string `json:"platform"`
	Description         *string  `json:"description"`
	PublicationDate     *string  `json:"publicationDate"`
	UpdatedAt           *string  `json:"updated_at"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator with the "worldid" and "nonul"
// rules registered. "nonul" rejects strings containing U+0000, which
// Postgres TEXT columns cannot store.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		_ = v.RegisterValidation("worldid", func(fl validator.FieldLevel) bool {
			return worldIDPattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("nonul", func(fl validator.FieldLevel) bool {
			return !strings.ContainsRune(fl.Field().String(), 0)
		})
		validate = v
	})
	return validate
}

// Validate checks a single raw world record. It must be a JSON object whose
// known fields have the right types and satisfy the rules on Record.
func Validate(raw json.RawMessage) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("world record is not an object")
	}

	var r Record
	if err := json.Unmarshal(trimmed, &r); err != nil {
		return fmt.Errorf("world record: %w", err)
	}
	if err := Validator().Struct(r); err != nil {
		return fmt.Errorf("world %q: %w", r.ID, err)
	}
	return nil
}

// ValidateAll checks every record and the folder size limit, reporting the
// first offending index.
func ValidateAll(records []json.RawMessage) error {
	if len(records) > MaxPerFolder {
		return fmt.Errorf("too many worlds: %d > %d", len(records), MaxPerFolder)
	}
	for i, raw := range records {
		if err := Validate(raw); err != nil {
			return fmt.Errorf("worlds[%d]: %w", i, err)
		}
	}
	return nil
}
