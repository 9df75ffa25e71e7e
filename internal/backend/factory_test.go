package backend

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"virtum/internal/config"
	"virtum/internal/ledger/memory"
	"virtum/internal/storage"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
	_, err := FromAppConfig(&config.Config{DataBackend: "postgres"})
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if !strings.Contains(err.Error(), "[sqlite memory]") {
		t.Errorf("error should list the valid backends: %v", err)
	}

	cfg, err := FromAppConfig(&config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db"})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "x.db" {
		t.Errorf("unexpected backend config: %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"sqlite with path", Config{Type: SQLiteBackend, SQLiteDBPath: "a.db"}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"memory", Config{Type: MemoryBackend}, false},
		{"unknown", Config{Type: "postgres"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(nil)

	res, err := f.CreateBackend(ctx, Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("memory backend: %v", err)
	}
	if _, ok := res.Store.(*memory.Store); !ok || res.Cleanup != nil {
		t.Errorf("unexpected memory backend result: %T", res.Store)
	}

	path := filepath.Join(t.TempDir(), "virtum.db")
	res, err = f.CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: path})
	if err != nil {
		t.Fatalf("sqlite backend: %v", err)
	}
	if _, ok := res.Store.(*storage.SQLiteRepository); !ok {
		t.Errorf("unexpected sqlite backend store: %T", res.Store)
	}
	if err := res.Cleanup(); err != nil {
		t.Errorf("cleanup: %v", err)
	}

	if _, err := f.CreateBackend(ctx, Config{Type: "postgres"}); err == nil {
		t.Error("expected error for unknown backend type")
	}
}
