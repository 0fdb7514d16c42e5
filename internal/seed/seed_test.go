package seed

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relay-graphql/internal/catalog"
	"relay-graphql/internal/dbexec"
)

func openSQLite(t *testing.T) (*sql.DB, dbexec.QueryExecutor) {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// Each connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	exec := dbexec.NewStandardExecutor(db)
	require.NoError(t, Migrate(context.Background(), exec, DialectSQLite))
	return db, exec
}

func countRows(t *testing.T, db *sql.DB, query string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(query).Scan(&n))
	return n
}

func TestDDL(t *testing.T) {
	for _, dialect := range []string{DialectMySQL, DialectSQLite} {
		stmts, err := DDL(dialect)
		require.NoError(t, err, dialect)
		assert.NotEmpty(t, stmts, dialect)
		for _, stmt := range stmts {
			assert.NotContains(t, stmt, ";")
		}
	}

	_, err := DDL("postgres")
	assert.Error(t, err)
}

func TestMigrateIsIdempotent(t *testing.T) {
	_, exec := openSQLite(t)
	require.NoError(t, Migrate(context.Background(), exec, DialectSQLite))
}

func TestSeed(t *testing.T) {
	db, exec := openSQLite(t)
	seeder := New(exec, catalog.Demo(nil), 7, nil)

	res, err := seeder.Seed(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Existing)
	assert.Equal(t, 10, res.People)
	assert.Equal(t, 10, countRows(t, db, "SELECT COUNT(*) FROM people"))

	posts := countRows(t, db, "SELECT COUNT(*) FROM posts")
	assert.Equal(t, res.Posts, posts)
	assert.GreaterOrEqual(t, posts, 10)
	assert.LessOrEqual(t, posts, 50)

	assert.Equal(t, posts*TagsPerPost, countRows(t, db, "SELECT COUNT(*) FROM post_tag"))
	assert.Equal(t, res.Tags, countRows(t, db, "SELECT COUNT(*) FROM tags"))
	assert.Zero(t, countRows(t, db, "SELECT COUNT(*) FROM tags WHERE name <> LOWER(name)"))
	assert.Zero(t, countRows(t, db, "SELECT COUNT(*) FROM people WHERE age < 18 OR age > 80"))
	assert.Zero(t, countRows(t, db, "SELECT COUNT(*) FROM posts WHERE title NOT LIKE 'Sample post #% by %'"))
	assert.Zero(t, countRows(t, db, `SELECT COUNT(*) FROM (
		SELECT person_id FROM posts GROUP BY person_id HAVING COUNT(*) > 5
	)`))
}

func TestSeedTopsUp(t *testing.T) {
	db, exec := openSQLite(t)
	ctx := context.Background()

	_, err := New(exec, catalog.Demo(nil), 1, nil).Seed(ctx, 4)
	require.NoError(t, err)
	tagsBefore := countRows(t, db, "SELECT COUNT(*) FROM tags")

	// A fresh seeder has no tag cache and must find existing tags.
	res, err := New(exec, catalog.Demo(nil), 1, nil).Seed(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Existing)
	assert.Equal(t, 2, res.People)
	assert.Equal(t, 6, countRows(t, db, "SELECT COUNT(*) FROM people"))
	assert.Equal(t, tagsBefore+res.Tags, countRows(t, db, "SELECT COUNT(*) FROM tags"))

	res, err = New(exec, catalog.Demo(nil), 1, nil).Seed(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 6, res.Existing)
	assert.Zero(t, res.People)
}

func TestSeedIsDeterministic(t *testing.T) {
	names := func() []string {
		db, exec := openSQLite(t)
		_, err := New(exec, catalog.Demo(nil), 42, nil).Seed(context.Background(), 5)
		require.NoError(t, err)

		rows, err := db.Query("SELECT first_name || ' ' || last_name FROM people ORDER BY id")
		require.NoError(t, err)
		defer rows.Close()
		var out []string
		for rows.Next() {
			var s string
			require.NoError(t, rows.Scan(&s))
			out = append(out, s)
		}
		require.NoError(t, rows.Err())
		return out
	}
	assert.Equal(t, names(), names())
}
