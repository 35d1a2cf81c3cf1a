package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("TAMING_MODEL", "")
	t.Setenv("TAMING_MOCK", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model != "gemini-3-pro-preview" {
		t.Fatalf("model = %q", cfg.Model)
	}
	if cfg.TimeoutSeconds != 120 || cfg.MaxRetries != 2 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.DataDir != ".taming" {
		t.Fatalf("data dir = %q", cfg.DataDir)
	}
}

func TestLoadFileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"api_key":"file-key","model":"gemini-2.5-flash","timeout_seconds":30,"mock":true,"data_dir":"/tmp/taming-data"}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIKey != "file-key" || cfg.Model != "gemini-2.5-flash" {
		t.Fatalf("file values not loaded: %+v", cfg)
	}
	if cfg.Timeout() != 30*time.Second {
		t.Fatalf("timeout = %v", cfg.Timeout())
	}
	if !cfg.Mock {
		t.Fatal("mock flag not loaded")
	}
	if got := cfg.SnapshotPath(); got != filepath.Join("/tmp/taming-data", "state.db") {
		t.Fatalf("snapshot path = %q", got)
	}
}

func TestLoadRejectsInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("invalid JSON must fail loudly, not fall back to defaults")
	}
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"api_key":"file-key","model":"file-model","mock":false}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("TAMING_MODEL", "env-model")
	t.Setenv("TAMING_MOCK", "1")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIKey != "env-key" {
		t.Fatalf("api key = %q", cfg.APIKey)
	}
	if cfg.Model != "env-model" {
		t.Fatalf("model = %q", cfg.Model)
	}
	if !cfg.Mock {
		t.Fatal("TAMING_MOCK=1 not honored")
	}
}

func TestEnvMockOverrideParsesBooleans(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	t.Setenv("TAMING_MOCK", "garbage")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mock {
		t.Fatal("unparseable TAMING_MOCK must be ignored")
	}

	t.Setenv("TAMING_MOCK", "false")
	cfg, err = Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mock {
		t.Fatal("TAMING_MOCK=false must disable mock")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := Default()
	cfg.APIKey = "saved-key"
	cfg.Mock = true
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.APIKey != "saved-key" || !got.Mock {
		t.Fatalf("round trip lost values: %+v", got)
	}
}
