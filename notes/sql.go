package notes

import (
	"context"
	"errors"

	"github.com/zetteln/server/db"
	"github.com/zetteln/server/o11y"
)

// Count returns the number of rows in the notes table.
func Count(ctx context.Context, q db.Querier) (n int, err error) {
	ctx, span := db.Span(ctx, "notes", "count")
	defer o11y.End(span, &err)

	err = q.GetContext(ctx, &n, countSQL)
	if err != nil {
		return 0, err
	}
	span.AddField("count", n)
	return n, nil
}

// language=MySQL
const countSQL = `SELECT COUNT(*) FROM notes`

// Insert adds a note. An existing id is never overwritten, inserting one
// returns db.ErrNop.
func Insert(ctx context.Context, q db.Querier, n Note) (err error) {
	ctx, span := db.Span(ctx, "notes", "insert")
	defer o11y.End(span, &err)
	span.AddField("id", n.ID)

	if err = n.Validate(); err != nil {
		return err
	}

	_, err = q.ExecContext(ctx, insertSQL,
		n.ID,
		n.Title,
		n.Content,
	)
	return err
}

// language=MySQL
const insertSQL = `
INSERT INTO notes (
	id,
	title,
	content
)
VALUES (
	?,
	?,
	?
)`

// ByID returns the note with the given id, or ErrNotFound.
func ByID(ctx context.Context, q db.Querier, id string) (note *Note, err error) {
	ctx, span := db.Span(ctx, "notes", "by_id")
	defer o11y.End(span, &err)
	span.AddField("id", id)

	note = &Note{}
	err = q.GetContext(ctx, note, byIDSQL, id)
	if errors.Is(err, db.ErrNop) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return note, nil
}

// language=MySQL
const byIDSQL = `
SELECT
	id,
	title,
	COALESCE(content, '') AS content,
	created_at,
	updated_at
FROM
	notes
WHERE
	id = ?
LIMIT 1`
