// Package notes owns the notes table: its schema, the demo note and the queries run against it.
package notes

import (
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/zetteln/server/o11y"
)

// Schema creates the notes table. It is safe to apply more than once.
//
//go:embed schema.sql
var Schema string

var (
	ErrNotFound = o11y.NewWarning("note not found")
	ErrInvalid  = errors.New("invalid note")
)

type Note struct {
	ID        string    `db:"id"`
	Title     string    `db:"title"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Demo is inserted into an empty notes table when the database is bootstrapped.
var Demo = Note{
	ID:      "demo-1",
	Title:   "Welcome to Zetteln",
	Content: "This is your first note in the zettelkasten system!",
}

const maxIDLen = 36

// Validate checks the columns the caller is responsible for.
func (n Note) Validate() error {
	switch {
	case n.ID == "":
		return fmt.Errorf("%w: id is required", ErrInvalid)
	case len(n.ID) > maxIDLen:
		return fmt.Errorf("%w: id %q is longer than %d", ErrInvalid, n.ID, maxIDLen)
	case n.Title == "":
		return fmt.Errorf("%w: title is required", ErrInvalid)
	}
	return nil
}
