package seeder

import (
	"context"
	"database/sql"
	"testing"

	"github.com/Rana718/seedforge/internal/database"
	"github.com/Rana718/seedforge/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func memoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func dataset() types.Dataset {
	return types.Dataset{
		Fields: []string{"id", "full name", "active", "score"},
		Rows: []types.GeneratedRow{
			{"id": int64(1), "full name": "Ada O'Brien", "active": true, "score": 1.5},
			{"id": int64(2), "full name": nil, "active": false, "score": 2.25},
			{"id": int64(3), "full name": "Lin", "active": true, "score": nil},
		},
	}
}

func TestColumnName(t *testing.T) {
	assert.Equal(t, "id", ColumnName("id"))
	assert.Equal(t, "full_name", ColumnName("full name"))
	assert.Equal(t, "createdAt", ColumnName("createdAt"))
	assert.Equal(t, "created_at", ColumnName("Created At"))
}

func TestSeedCreatesAndInserts(t *testing.T) {
	db := memoryDB(t)
	s := NewSeeder(db, "sqlite", zaptest.NewLogger(t))

	res, err := s.Seed(context.Background(), dataset(), SinkConfig{Table: "people", Batch: 2, CreateTable: true})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, 2, res.Batches)
	assert.True(t, res.Created)
	assert.Equal(t, []string{"id", "full_name", "active", "score"}, res.Columns)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM people").Scan(&count))
	assert.Equal(t, 3, count)

	var name string
	require.NoError(t, db.QueryRow("SELECT full_name FROM people WHERE id = 1").Scan(&name))
	assert.Equal(t, "Ada O'Brien", name)
}

func TestSeedTruncates(t *testing.T) {
	db := memoryDB(t)
	s := NewSeeder(db, "sqlite", nil)
	ctx := context.Background()

	_, err := s.Seed(ctx, dataset(), SinkConfig{Table: "people", CreateTable: true})
	require.NoError(t, err)
	_, err = s.Seed(ctx, dataset(), SinkConfig{Table: "people", Truncate: true})
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM people").Scan(&count))
	assert.Equal(t, 3, count)
}

func TestSeedRollsBackOnError(t *testing.T) {
	db := memoryDB(t)
	_, err := db.Exec("CREATE TABLE people (id INTEGER NOT NULL, full_name TEXT, active BOOLEAN, score REAL)")
	require.NoError(t, err)

	ds := dataset()
	ds.Rows[2]["id"] = nil
	_, err = NewSeeder(db, "sqlite", nil).Seed(context.Background(), ds, SinkConfig{Table: "people", Batch: 1})
	require.Error(t, err)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM people").Scan(&count))
	assert.Zero(t, count)
}

func TestSeedRejectsBadIdentifiers(t *testing.T) {
	s := NewSeeder(memoryDB(t), "sqlite", nil)
	_, err := s.Seed(context.Background(), dataset(), SinkConfig{Table: "people; DROP TABLE x"})
	assert.Error(t, err)

	ds := types.Dataset{Fields: []string{"a-b", "a b"}}
	_, err = s.Seed(context.Background(), ds, SinkConfig{Table: "t"})
	assert.Error(t, err)
}

func TestSeedQuotesReservedWords(t *testing.T) {
	db := memoryDB(t)
	ds := types.Dataset{
		Fields: []string{"order", "user", "group"},
		Rows: []types.GeneratedRow{
			{"order": int64(1), "user": "ada", "group": "a"},
			{"order": int64(2), "user": "lin", "group": "b"},
		},
	}

	res, err := NewSeeder(db, "sqlite", nil).Seed(context.Background(), ds, SinkConfig{Table: "select", CreateTable: true, Truncate: true})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Rows)

	var who string
	require.NoError(t, db.QueryRow(`SELECT "user" FROM "select" WHERE "order" = 2`).Scan(&who))
	assert.Equal(t, "lin", who)
}
