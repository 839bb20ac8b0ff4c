package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/Rana718/seedforge/internal/database"
	"github.com/Rana718/seedforge/internal/types"
)

var validTable = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// SQLRepository stores schemas in a single table. Fields are kept as JSON
// text and timestamps as RFC 3339 strings so the same table works on
// postgres, mysql and sqlite.
type SQLRepository struct {
	db    *sql.DB
	table string
	qb    sq.StatementBuilderType
	now   func() time.Time
}

func NewSQLRepository(db *sql.DB, provider, table string) (*SQLRepository, error) {
	if !validTable.MatchString(table) {
		return nil, fmt.Errorf("invalid table name: %s", table)
	}
	return &SQLRepository{
		db:    db,
		table: table,
		qb:    sq.StatementBuilder.PlaceholderFormat(database.Placeholder(provider)),
		now:   time.Now,
	}, nil
}

// EnsureTable creates the schema table when it does not exist.
func (r *SQLRepository) EnsureTable(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  id VARCHAR(64) PRIMARY KEY,
  name VARCHAR(255) NOT NULL,
  fields TEXT NOT NULL,
  created_at VARCHAR(40) NOT NULL,
  updated_at VARCHAR(40) NOT NULL
)`, r.table)
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create table %s: %w", r.table, err)
	}
	return nil
}

func (r *SQLRepository) List(ctx context.Context) ([]types.SavedSchema, error) {
	query, args, err := r.qb.Select("id", "name", "fields", "created_at", "updated_at").
		From(r.table).
		OrderBy("name", "id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}
	defer rows.Close()

	list := []types.SavedSchema{}
	for rows.Next() {
		s, err := scanSchema(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, loaded(*s))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}
	sortSchemas(list)
	return list, nil
}

func (r *SQLRepository) Get(ctx context.Context, id string) (*types.SavedSchema, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	query, args, err := r.qb.Select("id", "name", "fields", "created_at", "updated_at").
		From(r.table).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	s, err := scanSchema(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	out := loaded(*s)
	return &out, nil
}

func (r *SQLRepository) Save(ctx context.Context, s *types.SavedSchema) error {
	if err := prepare(s, r.now()); err != nil {
		return err
	}
	fields, err := json.Marshal(s.Fields)
	if err != nil {
		return fmt.Errorf("failed to encode schema %s: %w", s.Name, err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	exists, err := r.exists(ctx, tx, s.ID)
	if err != nil {
		return err
	}

	var query string
	var args []any
	if exists {
		query, args, err = r.qb.Update(r.table).
			Set("name", s.Name).
			Set("fields", string(fields)).
			Set("updated_at", formatTime(s.UpdatedAt)).
			Where(sq.Eq{"id": s.ID}).
			ToSql()
	} else {
		query, args, err = r.qb.Insert(r.table).
			Columns("id", "name", "fields", "created_at", "updated_at").
			Values(s.ID, s.Name, string(fields), formatTime(s.CreatedAt), formatTime(s.UpdatedAt)).
			ToSql()
	}
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save schema %s: %w", s.Name, err)
	}
	return tx.Commit()
}

func (r *SQLRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	query, args, err := r.qb.Delete(r.table).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete schema %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLRepository) exists(ctx context.Context, tx *sql.Tx, id string) (bool, error) {
	query, args, err := r.qb.Select("COUNT(*)").From(r.table).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return false, err
	}
	var count int
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check schema %s: %w", id, err)
	}
	return count > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSchema(row scanner) (*types.SavedSchema, error) {
	var s types.SavedSchema
	var fields, created, updated string
	if err := row.Scan(&s.ID, &s.Name, &fields, &created, &updated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(fields), &s.Fields); err != nil {
		return nil, fmt.Errorf("failed to decode schema %s: %w", s.ID, err)
	}
	var err error
	if s.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return nil, fmt.Errorf("failed to decode schema %s: %w", s.ID, err)
	}
	if s.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return nil, fmt.Errorf("failed to decode schema %s: %w", s.ID, err)
	}
	return &s, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
