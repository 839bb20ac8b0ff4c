package seeder

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/Rana718/seedforge/internal/database"
	"github.com/Rana718/seedforge/internal/types"
	"github.com/iancoleman/strcase"
	"go.uber.org/zap"
)

// validIdentifier validates SQL identifiers (table/column names) to prevent SQL injection
var validIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

const defaultBatch = 100

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Seeder writes generated datasets into a live database table.
type Seeder struct {
	db       *sql.DB
	provider string
	logger   *zap.Logger
}

func NewSeeder(db *sql.DB, provider string, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{db: db, provider: database.Normalize(provider), logger: logger}
}

func (s *Seeder) quote(name string) string {
	return database.QuoteIdent(s.provider, name)
}

func isValidIdentifier(name string) bool {
	return validIdentifier.MatchString(name)
}

// ColumnName maps a field name to a column name, snake-casing names that
// are not already plain identifiers.
func ColumnName(field string) string {
	if isValidIdentifier(field) {
		return field
	}
	return strcase.ToSnake(field)
}

// Seed inserts every row of ds into cfg.Table in batches.
func (s *Seeder) Seed(ctx context.Context, ds types.Dataset, cfg SinkConfig) (*SinkResult, error) {
	if !isValidIdentifier(cfg.Table) {
		return nil, fmt.Errorf("invalid table name: %q", cfg.Table)
	}
	cols, err := s.columns(ds)
	if err != nil {
		return nil, err
	}

	result := &SinkResult{Table: cfg.Table}
	for _, c := range cols {
		result.Columns = append(result.Columns, c.Name)
	}

	s.logger.Info("seeding table",
		zap.String("table", cfg.Table),
		zap.Int("rows", ds.Len()),
		zap.String("provider", s.provider))

	var runner execer = s.db
	var tx *sql.Tx
	if !cfg.NoTransaction {
		tx, err = s.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to start transaction: %w", err)
		}
		runner = tx
	}

	seedErr := s.write(ctx, runner, ds, cols, cfg, result)

	if tx != nil {
		if seedErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return nil, fmt.Errorf("seed failed and rollback failed: %v (original: %w)", rbErr, seedErr)
			}
			s.logger.Warn("transaction rolled back", zap.Error(seedErr))
			return nil, seedErr
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
	} else if seedErr != nil {
		return nil, seedErr
	}

	s.logger.Info("table seeded",
		zap.String("table", cfg.Table),
		zap.Int("rows", result.Rows),
		zap.Int("batches", result.Batches))
	return result, nil
}

func (s *Seeder) write(ctx context.Context, runner execer, ds types.Dataset, cols []column, cfg SinkConfig, result *SinkResult) error {
	if cfg.CreateTable {
		if err := s.createTable(ctx, runner, cfg.Table, cols); err != nil {
			return err
		}
		result.Created = true
	}
	if cfg.Truncate {
		if err := s.truncate(ctx, runner, cfg.Table); err != nil {
			return err
		}
		result.Truncated = true
	}

	batch := cfg.Batch
	if batch <= 0 {
		batch = defaultBatch
	}
	for start := 0; start < ds.Len(); start += batch {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := min(start+batch, ds.Len())
		if err := s.insertBatch(ctx, runner, cfg.Table, cols, ds.Rows[start:end]); err != nil {
			return fmt.Errorf("failed to insert rows %d-%d: %w", start+1, end, err)
		}
		result.Rows += end - start
		result.Batches++
	}
	return nil
}

func (s *Seeder) columns(ds types.Dataset) ([]column, error) {
	if len(ds.Fields) == 0 {
		return nil, fmt.Errorf("dataset has no fields")
	}
	seen := make(map[string]string, len(ds.Fields))
	cols := make([]column, 0, len(ds.Fields))
	for _, field := range ds.Fields {
		name := ColumnName(field)
		if !isValidIdentifier(name) {
			return nil, fmt.Errorf("invalid column name: %q", field)
		}
		if prev, dup := seen[name]; dup {
			return nil, fmt.Errorf("fields %q and %q map to the same column %q", prev, field, name)
		}
		seen[name] = field
		cols = append(cols, column{Field: field, Name: name, SQLType: s.sqlType(ds.Column(field))})
	}
	return cols, nil
}

// sqlType picks a column type from the first non-null value.
func (s *Seeder) sqlType(values []any) string {
	for _, v := range values {
		switch v.(type) {
		case int64, int:
			if s.provider == database.SQLite {
				return "INTEGER"
			}
			return "BIGINT"
		case float64:
			switch s.provider {
			case database.SQLite:
				return "REAL"
			case database.MySQL:
				return "DOUBLE"
			}
			return "DOUBLE PRECISION"
		case bool:
			return "BOOLEAN"
		case string:
			return "TEXT"
		}
	}
	return "TEXT"
}

func (s *Seeder) createTable(ctx context.Context, runner execer, table string, cols []column) error {
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = s.quote(c.Name) + " " + c.SQLType
	}
	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", s.quote(table), strings.Join(defs, ", "))
	if _, err := runner.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}
	return nil
}

func (s *Seeder) truncate(ctx context.Context, runner execer, table string) error {
	var query string
	switch s.provider {
	case database.Postgres:
		query = fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", s.quote(table))
	case database.MySQL:
		query = fmt.Sprintf("TRUNCATE TABLE %s", s.quote(table))
	default:
		query = fmt.Sprintf("DELETE FROM %s", s.quote(table))
	}
	if _, err := runner.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to truncate %s: %w", table, err)
	}
	return nil
}

func (s *Seeder) insertBatch(ctx context.Context, runner execer, table string, cols []column, rows []types.GeneratedRow) error {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = s.quote(c.Name)
	}
	insert := sq.Insert(s.quote(table)).Columns(names...).PlaceholderFormat(database.Placeholder(s.provider))
	for _, row := range rows {
		values := make([]any, len(cols))
		for i, c := range cols {
			values[i] = row[c.Field]
		}
		insert = insert.Values(values...)
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return err
	}
	_, err = runner.ExecContext(ctx, query, args...)
	return err
}
