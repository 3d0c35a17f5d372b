package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/proposely/internal/db"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	require.NoError(t, client.Ping(context.Background()).Err())
	return client, mr
}

// runKeyValueContract проверяет общее поведение всех драйверов.
func runKeyValueContract(t *testing.T, kv KeyValueStore) {
	ctx := context.Background()

	_, err := kv.Get(ctx, "proposely_token")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Set(ctx, "proposely_token", []byte("tok-1")))
	got, err := kv.Get(ctx, "proposely_token")
	require.NoError(t, err)
	assert.Equal(t, []byte("tok-1"), got)

	require.NoError(t, kv.Set(ctx, "proposely_token", []byte("tok-2")))
	got, err = kv.Get(ctx, "proposely_token")
	require.NoError(t, err)
	assert.Equal(t, []byte("tok-2"), got)

	require.NoError(t, kv.Set(ctx, "proposely_user", []byte(`{"email":"a@b.com"}`)))

	require.NoError(t, kv.Delete(ctx, "proposely_token"))
	_, err = kv.Get(ctx, "proposely_token")
	assert.ErrorIs(t, err, ErrNotFound)

	// Ключи независимы.
	got, err = kv.Get(ctx, "proposely_user")
	require.NoError(t, err)
	assert.JSONEq(t, `{"email":"a@b.com"}`, string(got))

	assert.NoError(t, kv.Delete(ctx, "missing"))
}

func TestMemoryStore(t *testing.T) {
	runKeyValueContract(t, NewMemoryStore())
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryStore()

	value := []byte("abc")
	require.NoError(t, kv.Set(ctx, "k", value))
	value[0] = 'z'

	got, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	got[1] = 'z'

	again, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestFileStore(t *testing.T) {
	kv, err := NewFileStore(filepath.Join(t.TempDir(), "state"))
	require.NoError(t, err)
	runKeyValueContract(t, kv)
}

func TestFileStore_SurvivesReopenAndLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	kv, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, "proposely-storage", []byte(`{"proposals":[]}`)))

	reopened, err := NewFileStore(dir)
	require.NoError(t, err)
	got, err := reopened.Get(ctx, "proposely-storage")
	require.NoError(t, err)
	assert.Equal(t, `{"proposals":[]}`, string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "proposely-storage", entries[0].Name())
}

func TestSanitizeKey(t *testing.T) {
	assert.Equal(t, "proposely_token", sanitizeKey("proposely_token"))
	assert.Equal(t, "_etc_passwd", sanitizeKey("../etc/passwd"))
	assert.Equal(t, "_", sanitizeKey(""))
}

func TestRedisStore(t *testing.T) {
	client, mr := setupTestRedis(t)
	kv := NewRedisStore(client, "")
	runKeyValueContract(t, kv)

	// Ключи хранятся с префиксом.
	require.NoError(t, kv.Set(context.Background(), "draft_proposal", []byte("{}")))
	assert.True(t, mr.Exists(DefaultRedisPrefix+"draft_proposal"))
	assert.False(t, mr.Exists("draft_proposal"))
}

func TestNewRedisClient(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client, err := NewRedisClient(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	client.Close()

	mr.Close()
	_, err = NewRedisClient(context.Background(), mr.Addr(), "", 0)
	assert.Error(t, err)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN не задан, пропускаем интеграционный тест PostgreSQL")
	}

	ctx := context.Background()
	conn, err := db.NewPostgres(ctx, dsn)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, db.RunMigrations(ctx, conn, db.MigrationsFS("")))
	// Повторный запуск не применяет миграции заново.
	require.NoError(t, db.RunMigrations(ctx, conn, db.MigrationsFS("")))

	_, err = conn.ExecContext(ctx, `DELETE FROM client_storage WHERE key IN ('proposely_token', 'proposely_user', 'missing')`)
	require.NoError(t, err)

	runKeyValueContract(t, NewPostgresStore(conn))
}
