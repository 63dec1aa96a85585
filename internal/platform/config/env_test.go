package config

import (
	"log/slog"
	"strings"
	"testing"
)

type envTestConfig struct {
	Limit int `env:"EXTFRAME_TEST_LIMIT" envDefault:"12"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Limit != 12 {
		t.Fatalf("expected default 12, got %d", cfg.Limit)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("EXTFRAME_TEST_LIMIT", "lots")
	err := ParseEnv(&cfg)
	if err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env error, got %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Blob.Driver != "fs" || cfg.Blob.FSRoot != "./savedata" {
		t.Fatalf("unexpected blob defaults %+v", cfg.Blob)
	}
	if cfg.Blob.S3.Region != "us-east-1" || cfg.Catalog.Driver != "memory" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Codepage != "windows-1252" || cfg.Namespace != "extframe" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadNestedPrefixes(t *testing.T) {
	t.Setenv("EXTFRAME_BLOB_DRIVER", " S3 ")
	t.Setenv("EXTFRAME_BLOB_S3_BUCKET", "saves")
	t.Setenv("EXTFRAME_BLOB_S3_PATH_STYLE", "true")
	t.Setenv("EXTFRAME_CATALOG_DRIVER", "sqlite")
	t.Setenv("EXTFRAME_CATALOG_DSN", "file:saves.db")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Blob.Driver != "s3" || cfg.Blob.S3.Bucket != "saves" || !cfg.Blob.S3.PathStyle {
		t.Fatalf("unexpected blob config %+v", cfg.Blob)
	}
	if cfg.Catalog.Driver != "sqlite" || cfg.Catalog.DSN != "file:saves.db" {
		t.Fatalf("unexpected catalog config %+v", cfg.Catalog)
	}
}

func TestLoadRejectsBadBool(t *testing.T) {
	t.Setenv("EXTFRAME_BLOB_S3_PATH_STYLE", "maybe")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSlogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		" WARN": slog.LevelWarn,
		"error": slog.LevelError,
		"loud":  slog.LevelInfo,
		"":      slog.LevelInfo,
	}
	for in, want := range cases {
		if got := (Config{LogLevel: in}).SlogLevel(); got != want {
			t.Fatalf("%q: expected %v, got %v", in, want, got)
		}
	}
}
