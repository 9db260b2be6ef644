package dbfixture

import (
	"testing"

	"gotest.tools/v3/assert"
	"gotest.tools/v3/assert/cmp"

	"github.com/zetteln/server/db"
	"github.com/zetteln/server/testing/testcontext"
)

// language=MySQL
const schema = `
CREATE TABLE test_table (
	id   VARCHAR(36) PRIMARY KEY,
	name VARCHAR(255) NOT NULL
);
CREATE TABLE test_child (
	id        VARCHAR(36) PRIMARY KEY,
	parent_id VARCHAR(36) NOT NULL,
	FOREIGN KEY (parent_id) REFERENCES test_table (id)
);
`

func TestSetupDB_Isolation(t *testing.T) {
	ctx := testcontext.Background()
	fix1 := SetupDB(ctx, t, schema, DefaultConnection())
	fix2 := SetupDB(ctx, t, schema, DefaultConnection())
	assert.Check(t, fix1.DBName != fix2.DBName)

	t.Run("insert data into db1", func(t *testing.T) {
		_, err := db.Wrap(fix1.DB).ExecContext(ctx, `INSERT INTO test_table (id, name) VALUES ('123', 'apple')`)
		assert.Assert(t, err)
	})

	t.Run("check data is in db1", func(t *testing.T) {
		var ids []string
		err := db.Wrap(fix1.DB).SelectContext(ctx, &ids, `SELECT id FROM test_table`)
		assert.Assert(t, err)
		assert.Check(t, cmp.DeepEqual([]string{"123"}, ids))
	})

	t.Run("check data is not in db2", func(t *testing.T) {
		var ids []string
		err := db.Wrap(fix2.DB).SelectContext(ctx, &ids, `SELECT id FROM test_table`)
		assert.Check(t, cmp.ErrorIs(err, db.ErrNop))
	})
}

func TestReset(t *testing.T) {
	ctx := testcontext.Background()
	fix := SetupDB(ctx, t, schema, DefaultConnection())
	q := db.Wrap(fix.DB)

	t.Run("insert related rows", func(t *testing.T) {
		_, err := q.ExecContext(ctx, `INSERT INTO test_table (id, name) VALUES ('123', 'apple')`)
		assert.Assert(t, err)
		_, err = q.ExecContext(ctx, `INSERT INTO test_child (id, parent_id) VALUES ('c1', '123')`)
		assert.Assert(t, err)
	})

	t.Run("reset the DB", func(t *testing.T) {
		assert.Assert(t, fix.Reset(ctx))
	})

	t.Run("check data is not in db", func(t *testing.T) {
		var ids []string
		err := q.SelectContext(ctx, &ids, `SELECT id FROM test_table`)
		assert.Check(t, cmp.ErrorIs(err, db.ErrNop))
	})
}

func TestReserve(t *testing.T) {
	ctx := testcontext.Background()
	fix := Reserve(ctx, t, DefaultConnection())

	assert.Check(t, cmp.Equal(fix.Config.Name, fix.DBName))
	assert.Check(t, fix.DB == nil)
	assert.Check(t, cmp.Regexp(`^[0-9a-f]{6}_testreserve$`, fix.DBName))
}
