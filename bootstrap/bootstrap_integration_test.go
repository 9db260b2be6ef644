package bootstrap

import (
	"context"
	"testing"

	"golang.org/x/sync/errgroup"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/assert/cmp"

	"github.com/zetteln/server/db"
	"github.com/zetteln/server/notes"
	"github.com/zetteln/server/testing/dbfixture"
	"github.com/zetteln/server/testing/testcontext"
)

func TestRun_Database(t *testing.T) {
	ctx := testcontext.Background()
	con := dbfixture.DefaultConnection()
	fix := dbfixture.Reserve(ctx, t, con)
	opts := Options{Database: fix.DBName}

	t.Run("first run creates and seeds", func(t *testing.T) {
		res, err := Run(ctx, con.Config(""), opts)
		assert.Assert(t, err)
		assert.Check(t, res.ServerVersion != "")
		assert.Check(t, cmp.Equal(res.Count, 0))
		assert.Check(t, res.Seeded)
	})

	t.Run("second run changes nothing", func(t *testing.T) {
		res, err := Run(ctx, con.Config(""), opts)
		assert.Assert(t, err)
		assert.Check(t, cmp.Equal(res.Count, 1))
		assert.Check(t, !res.Seeded)
	})

	t.Run("demo note is stored", func(t *testing.T) {
		sqlDB, err := db.New(ctx, "bootstrap-test", fix.Config)
		assert.Assert(t, err)
		t.Cleanup(func() { assert.Check(t, sqlDB.Close()) })

		note, err := notes.ByID(ctx, db.Wrap(sqlDB), "demo-1")
		assert.Assert(t, err)
		assert.Check(t, cmp.Equal(note.Title, "Welcome to Zetteln"))
		assert.Check(t, cmp.Equal(note.Content, "This is your first note in the zettelkasten system!"))
		assert.Check(t, !note.CreatedAt.IsZero())

		n, err := notes.Count(ctx, db.Wrap(sqlDB))
		assert.Assert(t, err)
		assert.Check(t, cmp.Equal(n, 1))
	})
}

func TestRun_DatabaseConcurrent(t *testing.T) {
	ctx := testcontext.Background()
	con := dbfixture.DefaultConnection()
	fix := dbfixture.Reserve(ctx, t, con)

	const instances = 4
	results := make([]Result, instances)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < instances; i++ {
		i := i
		g.Go(func() (err error) {
			results[i], err = Run(gctx, con.Config(""), Options{Database: fix.DBName})
			return err
		})
	}
	assert.Assert(t, g.Wait())

	seeded := 0
	for _, r := range results {
		if r.Seeded {
			seeded++
		}
	}
	assert.Check(t, cmp.Equal(seeded, 1))

	sqlDB, err := db.New(ctx, "bootstrap-test", fix.Config)
	assert.Assert(t, err)
	t.Cleanup(func() { assert.Check(t, sqlDB.Close()) })

	var n int
	err = db.NewPool(sqlDB).WithConn(context.Background(), func(ctx context.Context, q db.Querier) (err error) {
		n, err = notes.Count(ctx, q)
		return err
	})
	assert.Assert(t, err)
	assert.Check(t, cmp.Equal(n, 1))
}
