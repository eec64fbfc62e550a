package backend

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"notare/internal/config"
)

func testFactory() Factory {
	return NewFactory(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}

	cfg, err := FromAppConfig(&config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db", SeedDemo: true})
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "x.db" || !cfg.SeedDemo {
		t.Errorf("FromAppConfig() = %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite with path", Config{Type: SQLiteBackend, SQLiteDBPath: "a.db"}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"unknown", Config{Type: "csv"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMemoryBackend(t *testing.T) {
	ctx := context.Background()

	res, err := testFactory().CreateBackend(ctx, Config{Type: MemoryBackend, SeedDemo: true})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	defer res.Cleanup()

	if !res.Seeded || len(res.ChatHistory) != 5 {
		t.Errorf("seeded = %v, chat history = %d", res.Seeded, len(res.ChatHistory))
	}
	tasks, err := res.Store.ListTasks(ctx)
	if err != nil || len(tasks) != 5 {
		t.Fatalf("ListTasks() = %d tasks, err %v", len(tasks), err)
	}
	if res.Ping != nil {
		t.Error("memory backend should not expose a ping")
	}

	res, err = testFactory().CreateBackend(ctx, Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	if tasks, _ := res.Store.ListTasks(ctx); len(tasks) != 0 || res.Seeded {
		t.Errorf("unseeded store holds %d tasks", len(tasks))
	}
}

func TestSQLiteBackendSeedsOnce(t *testing.T) {
	ctx := context.Background()
	cfg := Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "notare.db"),
		SeedDemo:     true,
	}

	first, err := testFactory().CreateBackend(ctx, cfg)
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	if !first.Seeded {
		t.Fatal("empty database should be seeded")
	}
	if err := first.Ping(ctx); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
	if err := first.Cleanup(); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}

	second, err := testFactory().CreateBackend(ctx, cfg)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer second.Cleanup()
	if second.Seeded {
		t.Error("populated database must not be seeded again")
	}
	moods, err := second.Store.ListMoods(ctx)
	if err != nil || len(moods) != 5 {
		t.Errorf("ListMoods() = %d, err %v", len(moods), err)
	}
}

func TestMissingSeedFile(t *testing.T) {
	_, err := testFactory().CreateBackend(context.Background(), Config{
		Type:     MemoryBackend,
		SeedFile: filepath.Join(t.TempDir(), "missing.yaml"),
	})
	if err == nil {
		t.Fatal("expected error for a missing seed file")
	}
}
