package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"invagro-dashboard/internal/database"
	"invagro-dashboard/migrations"
)

func exerciseKV(t *testing.T, kv KV, key string) {
	t.Helper()
	ctx := context.Background()

	if _, err := kv.Get(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing key, got %v", err)
	}

	if err := kv.Set(ctx, key, []byte(`[1]`)); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := kv.Set(ctx, key, []byte(`[1,2]`)); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	got, err := kv.Get(ctx, key)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(got) != `[1,2]` {
		t.Fatalf("expected last write to win, got %s", got)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseKV(t, NewMemoryStore(0), "k")
}

func TestMemoryStore_Quota(t *testing.T) {
	kv := NewMemoryStore(10)
	ctx := context.Background()

	if err := kv.Set(ctx, "k", []byte("12345")); err != nil {
		t.Fatalf("expected value under quota to fit, got %v", err)
	}
	if err := kv.Set(ctx, "k", []byte("123456789")); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}

	got, _ := kv.Get(ctx, "k")
	if string(got) != "12345" {
		t.Fatalf("failed write must keep the previous value, got %q", got)
	}
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	kv := NewMemoryStore(0)
	ctx := context.Background()
	kv.Set(ctx, "k", []byte("abc"))

	got, _ := kv.Get(ctx, "k")
	got[0] = 'z'

	again, _ := kv.Get(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("caller mutation leaked into the store: %q", again)
	}
}

func TestFileStore(t *testing.T) {
	kv, err := NewFileStore(filepath.Join(t.TempDir(), "history"), 0)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	exerciseKV(t, kv, "http://localhost:8080:invagro_chat_history")
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, _ := NewFileStore(dir, 0)
	if err := first.Set(ctx, "k", []byte(`["a"]`)); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	second, _ := NewFileStore(dir, 0)
	got, err := second.Get(ctx, "k")
	if err != nil || string(got) != `["a"]` {
		t.Fatalf("expected value after reopen, got %q (%v)", got, err)
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".tmp" {
			t.Fatalf("temporary file left behind: %s", e.Name())
		}
	}
}

func TestFileStore_Quota(t *testing.T) {
	kv, _ := NewFileStore(t.TempDir(), 4)
	if err := kv.Set(context.Background(), "k", []byte("12345")); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
}

func TestScoped_IsolatesScopes(t *testing.T) {
	shared := NewMemoryStore(0)
	ctx := context.Background()

	a := Scoped(shared, "http://a.example")
	b := Scoped(shared, "http://b.example")

	if err := a.Set(ctx, "k", []byte("from-a")); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if _, err := b.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("scope b must not see scope a, got %v", err)
	}

	raw, err := shared.Get(ctx, "http://a.example:k")
	if err != nil || string(raw) != "from-a" {
		t.Fatalf("expected prefixed key in backend, got %q (%v)", raw, err)
	}
}

func TestScoped_EmptyScopeIsPassThrough(t *testing.T) {
	kv := NewMemoryStore(0)
	if Scoped(kv, "") != KV(kv) {
		t.Fatal("expected empty scope to return the backend unchanged")
	}
}

func TestRedisStore(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set")
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("parse REDIS_URL: %v", err)
	}
	client := redis.NewClient(opt)
	defer client.Close()

	key := "storage_test:" + t.Name()
	client.Del(context.Background(), key)
	defer client.Del(context.Background(), key)

	exerciseKV(t, NewRedisStore(client), key)
}

func TestPostgresStore(t *testing.T) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, migrations.FS); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	key := "storage_test:" + t.Name()
	pool.Exec(ctx, "DELETE FROM chat_kv WHERE key = $1", key)
	defer pool.Exec(ctx, "DELETE FROM chat_kv WHERE key = $1", key)

	exerciseKV(t, NewPostgresStore(pool), key)
}
