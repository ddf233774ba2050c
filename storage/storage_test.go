package storage

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Version != 1 {
		t.Errorf("expected version 1, got %d", config.Version)
	}
	if config.Poll.IntervalMs != 16 {
		t.Errorf("expected poll interval 16, got %d", config.Poll.IntervalMs)
	}
	if config.Screenshot.Scale != 1 {
		t.Errorf("expected screenshot scale 1, got %d", config.Screenshot.Scale)
	}
	if config.Web.Listen != "" {
		t.Errorf("expected web frontend disabled, got %q", config.Web.Listen)
	}
	if errs := ValidateConfig(config); len(errs) != 0 {
		t.Errorf("default config should validate, got %v", errs)
	}
}

func TestGetBaseDirXDG(t *testing.T) {
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		t.Skip("XDG_DATA_HOME only applies on Unix-like systems")
	}
	dataHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)
	Init("gbbridge-test")

	dir, err := GetBaseDir()
	if err != nil {
		t.Fatalf("GetBaseDir failed: %v", err)
	}
	if want := filepath.Join(dataHome, "gbbridge-test"); dir != want {
		t.Errorf("GetBaseDir = %q, want %q", dir, want)
	}

	if err := EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	shots, err := GetScreenshotDir()
	if err != nil {
		t.Fatal(err)
	}
	if info, err := os.Stat(shots); err != nil || !info.IsDir() {
		t.Errorf("screenshot dir not created: %v", err)
	}

	if err := CreateConfigIfMissing(); err != nil {
		t.Fatalf("CreateConfigIfMissing failed: %v", err)
	}
	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Poll.IntervalMs != 16 {
		t.Errorf("expected default interval, got %d", config.Poll.IntervalMs)
	}
}

func TestGetBaseDirUninitialized(t *testing.T) {
	Init("")
	if _, err := GetBaseDir(); err == nil {
		t.Error("expected error before Init")
	}
}

func TestAtomicWriteJSON(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "test.json")

	data := struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}{
		Name:  "test",
		Value: 42,
	}

	if err := AtomicWriteJSON(path, data); err != nil {
		t.Fatalf("AtomicWriteJSON failed: %v", err)
	}

	var result struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}
	if err := ReadJSON(path, &result); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}

	if result.Name != data.Name || result.Value != data.Value {
		t.Errorf("data mismatch: expected %+v, got %+v", data, result)
	}

	entries, err := os.ReadDir(tempDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temp file was not cleaned up: %d entries", len(entries))
	}
}

func TestAtomicWriteJSONInvalidDir(t *testing.T) {
	tempDir := t.TempDir()
	blocker := filepath.Join(tempDir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := AtomicWriteJSON(filepath.Join(blocker, "sub", "test.json"), 1); err == nil {
		t.Error("expected error when parent is a file")
	}
}

func TestReadJSONInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	var v map[string]any
	if err := ReadJSON(path, &v); err == nil {
		t.Error("expected parse error")
	}
}

func TestReadJSONNonexistentFile(t *testing.T) {
	var v map[string]any
	err := ReadJSON(filepath.Join(t.TempDir(), "missing.json"), &v)
	if !os.IsNotExist(err) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
