package config_test

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/thomasrohde/golox/pkg/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// isolate points the user config lookup at an empty home directory.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	return home
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	cfg, err := config.Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := config.Default()
	if *cfg != *want {
		t.Errorf("got %+v, want defaults %+v", cfg, want)
	}
	if cfg.Path != "" {
		t.Errorf("defaults should have no path, got %q", cfg.Path)
	}
}

func TestLoadProjectFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, config.ProjectFile), "prompt: \"lox> \"\ntrace: true\n")

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Prompt != "lox> " || !cfg.Trace {
		t.Errorf("project settings not applied: %+v", cfg)
	}
	// Omitted keys keep their defaults.
	if !cfg.Pretty || !cfg.EchoExpressions || cfg.LogLevel != "warn" {
		t.Errorf("defaults lost: %+v", cfg)
	}
	if cfg.Path != filepath.Join(dir, config.ProjectFile) {
		t.Errorf("got path %q", cfg.Path)
	}
}

func TestLoadUserFile(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".config", "lox", "config.yaml"), "log_level: debug\n")

	cfg, err := config.Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("user settings not applied: %+v", cfg)
	}
}

func TestProjectOverridesUser(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".config", "lox", "config.yaml"), "prompt: user\n")
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, config.ProjectFile), "prompt: project\n")

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Prompt != "project" {
		t.Errorf("got prompt %q, want project", cfg.Prompt)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, config.ProjectFile), "promt: typo\n")

	_, err := config.Load(dir)
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "promt") {
		t.Errorf("error should name the key: %v", err)
	}
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, config.ProjectFile), "log_level: loud\n")

	if _, err := config.Load(dir); err == nil {
		t.Fatal("expected error for invalid log_level")
	}
}

func TestLoadEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.ProjectFile)
	writeFile(t, path, "")

	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Prompt != config.Default().Prompt {
		t.Errorf("got %+v", cfg)
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := config.LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
	}

	for _, tt := range tests {
		cfg := config.Default()
		cfg.LogLevel = tt.in
		got, err := cfg.Level()
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.Prompt = ">> "
	cfg.Trace = true

	var buf bytes.Buffer
	if err := cfg.Encode(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if strings.Contains(buf.String(), "path") {
		t.Errorf("Path should not be encoded:\n%s", buf.String())
	}

	path := filepath.Join(t.TempDir(), "cfg.yaml")
	writeFile(t, path, buf.String())
	back, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	back.Path = ""
	if *back != *cfg {
		t.Errorf("got %+v, want %+v", back, cfg)
	}
}
