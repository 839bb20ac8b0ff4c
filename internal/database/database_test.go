package database

import (
	"context"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, Postgres, Normalize("postgresql"))
	assert.Equal(t, Postgres, Normalize(""))
	assert.Equal(t, MySQL, Normalize("MySQL"))
	assert.Equal(t, SQLite, Normalize("sqlite3"))
}

func TestDriverName(t *testing.T) {
	assert.Equal(t, "pgx", DriverName("postgres"))
	assert.Equal(t, "mysql", DriverName("mysql"))
	assert.Equal(t, "sqlite3", DriverName("sqlite"))
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("sqlite"))
	assert.False(t, Supported("oracle"))
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, sq.Dollar, Placeholder("postgres"))
	assert.Equal(t, sq.Question, Placeholder("sqlite"))
}

func TestOpenSQLiteMemory(t *testing.T) {
	db, err := Open(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	var one int
	require.NoError(t, db.QueryRow("SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)
}

func TestOpenRejectsEmptyURL(t *testing.T) {
	_, err := Open(context.Background(), "sqlite", "")
	assert.Error(t, err)
}

func TestQuoteIdent(t *testing.T) {
	assert.True(t, IsKeyword("ORDER"))
	assert.False(t, IsKeyword("orders"))

	assert.Equal(t, "orders", QuoteIdent("postgres", "orders"))
	assert.Equal(t, `"user"`, QuoteIdent("postgres", "user"))
	assert.Equal(t, `"select"`, QuoteIdent("sqlite", "select"))
	assert.Equal(t, "`order`", QuoteIdent("mysql", "order"))
}
