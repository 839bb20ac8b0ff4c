package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Rana718/seedforge/internal/config"
	"github.com/Rana718/seedforge/internal/database"
	"github.com/Rana718/seedforge/internal/registry"
	"github.com/Rana718/seedforge/internal/types"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(name string) *types.SavedSchema {
	return &types.SavedSchema{
		Name: name,
		Fields: types.Schema{
			{ID: "f1", Name: "id", Type: registry.TypeRowNumber},
			{ID: "f2", Name: "country", Type: registry.TypeCustomList, Options: map[string]any{"values": "US, CA"}},
		},
	}
}

func newFileRepo(t *testing.T) SchemaRepository {
	repo, err := NewFileRepository(filepath.Join(t.TempDir(), "schemas"))
	require.NoError(t, err)
	return repo
}

func newSQLRepo(t *testing.T) SchemaRepository {
	ctx := context.Background()
	db, err := database.Open(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	repo, err := NewSQLRepository(db, "sqlite", "saved_schemas")
	require.NoError(t, err)
	require.NoError(t, repo.EnsureTable(ctx))
	return repo
}

func newRedisRepo(t *testing.T) SchemaRepository {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisRepository(client, "test:schemas")
}

func TestRepositories(t *testing.T) {
	impls := map[string]func(*testing.T) SchemaRepository{
		"file":  newFileRepo,
		"sql":   newSQLRepo,
		"redis": newRedisRepo,
	}
	for name, build := range impls {
		t.Run(name, func(t *testing.T) {
			t.Run("save and get", func(t *testing.T) { testSaveAndGet(t, build(t)) })
			t.Run("list sorted", func(t *testing.T) { testList(t, build(t)) })
			t.Run("update keeps created", func(t *testing.T) { testUpdate(t, build(t)) })
			t.Run("delete", func(t *testing.T) { testDelete(t, build(t)) })
			t.Run("rejects", func(t *testing.T) { testRejects(t, build(t)) })
		})
	}
}

func testSaveAndGet(t *testing.T, repo SchemaRepository) {
	ctx := context.Background()
	s := sample(" customers ")
	require.NoError(t, repo.Save(ctx, s))
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, "customers", s.Name)
	assert.False(t, s.CreatedAt.IsZero())

	got, err := repo.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, "customers", got.Name)
	require.Len(t, got.Fields, 2)
	assert.Equal(t, "country", got.Fields[1].Name)
	assert.Equal(t, registry.TypeCustomList, got.Fields[1].Type)
	assert.Equal(t, "US, CA", got.Fields[1].Options["values"])
	assert.WithinDuration(t, s.CreatedAt, got.CreatedAt, time.Millisecond)

	// Loading never reuses stored field ids.
	assert.NotEqual(t, "f1", got.Fields[0].ID)
	assert.NotEqual(t, got.Fields[0].ID, got.Fields[1].ID)
	again, err := repo.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.NotEqual(t, got.Fields[0].ID, again.Fields[0].ID)
}

func testList(t *testing.T, repo SchemaRepository) {
	ctx := context.Background()
	empty, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	for _, name := range []string{"orders", "Accounts", "customers"} {
		require.NoError(t, repo.Save(ctx, sample(name)))
	}
	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "Accounts", list[0].Name)
	assert.Equal(t, "customers", list[1].Name)
	assert.Equal(t, "orders", list[2].Name)
}

func testUpdate(t *testing.T, repo SchemaRepository) {
	ctx := context.Background()
	s := sample("v1")
	require.NoError(t, repo.Save(ctx, s))
	created := s.CreatedAt

	update := sample("v2")
	update.ID = s.ID
	require.NoError(t, repo.Save(ctx, update))

	got, err := repo.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Name)
	assert.WithinDuration(t, created, got.CreatedAt, time.Millisecond)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func testDelete(t *testing.T, repo SchemaRepository) {
	ctx := context.Background()
	s := sample("gone")
	require.NoError(t, repo.Save(ctx, s))
	require.NoError(t, repo.Delete(ctx, s.ID))

	_, err := repo.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, s.ID), ErrNotFound)
}

func testRejects(t *testing.T, repo SchemaRepository) {
	ctx := context.Background()
	assert.Error(t, repo.Save(ctx, &types.SavedSchema{Name: "", Fields: sample("x").Fields}))
	assert.ErrorIs(t, repo.Save(ctx, &types.SavedSchema{Name: "empty"}), types.ErrEmpty)

	bad := sample("bad id")
	bad.ID = "../../etc/passwd"
	assert.Error(t, repo.Save(ctx, bad))

	_, err := repo.Get(ctx, "../secrets")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileRepositoryWritesYAML(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewFileRepository(dir)
	require.NoError(t, err)

	s := sample("people")
	require.NoError(t, repo.Save(context.Background(), s))

	data, err := os.ReadFile(filepath.Join(dir, s.ID+".yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: people")
	assert.Contains(t, string(data), "type: Custom List")
}

func TestNewSQLRepositoryRejectsTable(t *testing.T) {
	_, err := NewSQLRepository(nil, "sqlite", "schemas; DROP TABLE users")
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	cfg := config.DefaultConfig()
	cfg.Storage.Dir = filepath.Join(t.TempDir(), "saved")
	repo, closeFn, err := Open(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &FileRepository{}, repo)
	assert.NoError(t, closeFn())

	mr := miniredis.RunT(t)
	cfg = config.DefaultConfig()
	cfg.Storage.Driver = "redis"
	cfg.Storage.RedisURLEnv = "SEEDFORGE_TEST_REDIS_URL"
	t.Setenv("SEEDFORGE_TEST_REDIS_URL", "redis://"+mr.Addr())
	repo, closeFn, err = Open(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &RedisRepository{}, repo)
	assert.NoError(t, closeFn())

	cfg = config.DefaultConfig()
	cfg.Storage.Driver = "sql"
	cfg.Database.Provider = "sqlite"
	cfg.Database.URLEnv = "SEEDFORGE_TEST_SQL_URL"
	t.Setenv("SEEDFORGE_TEST_SQL_URL", filepath.Join(t.TempDir(), "schemas.db"))
	repo, closeFn, err = Open(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &SQLRepository{}, repo)
	assert.NoError(t, closeFn())

	cfg.Storage.Driver = "mongo"
	_, _, err = Open(ctx, cfg)
	assert.Error(t, err)
}
