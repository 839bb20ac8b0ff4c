package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

const (
	Postgres = "postgres"
	MySQL    = "mysql"
	SQLite   = "sqlite"
)

// Normalize maps provider aliases to one of Postgres, MySQL or SQLite.
// Unknown providers fall back to Postgres.
func Normalize(provider string) string {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "mysql", "mariadb":
		return MySQL
	case "sqlite", "sqlite3":
		return SQLite
	default:
		return Postgres
	}
}

// Supported reports whether provider names a known database.
func Supported(provider string) bool {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "postgresql", "postgres", "mysql", "mariadb", "sqlite", "sqlite3":
		return true
	}
	return false
}

func DriverName(provider string) string {
	switch Normalize(provider) {
	case MySQL:
		return "mysql"
	case SQLite:
		return "sqlite3"
	default:
		return "pgx"
	}
}

// Placeholder returns the bind parameter style squirrel should use.
func Placeholder(provider string) sq.PlaceholderFormat {
	if Normalize(provider) == Postgres {
		return sq.Dollar
	}
	return sq.Question
}

// Open connects and pings the database.
func Open(ctx context.Context, provider, url string) (*sql.DB, error) {
	if url == "" {
		return nil, fmt.Errorf("database URL is empty")
	}
	db, err := sql.Open(DriverName(provider), url)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", Normalize(provider), err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", Normalize(provider), err)
	}
	return db, nil
}
