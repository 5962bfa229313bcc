package runtime

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sergev/glox/lang"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "glox.yml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
prompt: "lox> "
continuation_prompt: "...> "
history_file: ""
strict_init: true
max_call_depth: 64
print_ast: true
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Prompt != "lox> " || cfg.ContinuationPrompt != "...> " {
		t.Fatalf("unexpected prompts %q %q", cfg.Prompt, cfg.ContinuationPrompt)
	}
	if cfg.HistoryFile != "" {
		t.Fatalf("empty history_file should disable history, got %q", cfg.HistoryFile)
	}
	if !cfg.StrictInit || !cfg.PrintAST || cfg.MaxCallDepth != 64 {
		t.Fatalf("unexpected flags %+v", cfg)
	}
	if opts := cfg.Options(); !opts.StrictInit || opts.MaxCallDepth != 64 {
		t.Fatalf("unexpected options %+v", opts)
	}
	if !filepath.IsAbs(cfg.Path) {
		t.Fatalf("Path should be absolute, got %q", cfg.Path)
	}
}

func TestLoadConfigKeepsDefaultsForAbsentKeys(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "strict_init: true\n"))
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	def := DefaultConfig()
	if cfg.Prompt != def.Prompt || cfg.ContinuationPrompt != def.ContinuationPrompt {
		t.Fatalf("prompts should keep defaults, got %q %q", cfg.Prompt, cfg.ContinuationPrompt)
	}
	if cfg.HistoryFile != def.HistoryFile {
		t.Fatalf("history file should keep default, got %q", cfg.HistoryFile)
	}
	if cfg.MaxCallDepth != lang.DefaultMaxCallDepth {
		t.Fatalf("max call depth should keep default, got %d", cfg.MaxCallDepth)
	}
}

func TestLoadConfigEmptyFile(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("empty config should be accepted: %v", err)
	}
	if cfg.Prompt != "> " {
		t.Fatalf("unexpected prompt %q", cfg.Prompt)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "promt: \"> \"\n"))
	if err == nil || !strings.Contains(err.Error(), "promt") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "max_call_depth: 0\nprompt: \"a\\nb\"\n"))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Issues) != 2 {
		t.Fatalf("expected 2 issues, got %v", verr.Issues)
	}
	if !strings.Contains(err.Error(), "max_call_depth must be positive") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "none.yml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadDefaultConfigUsesEnv(t *testing.T) {
	path := writeConfig(t, "prompt: \"env> \"\n")
	t.Setenv(ConfigEnv, path)
	cfg, err := LoadDefaultConfig()
	if err != nil {
		t.Fatalf("LoadDefaultConfig returned error: %v", err)
	}
	if cfg.Prompt != "env> " {
		t.Fatalf("expected prompt from env config, got %q", cfg.Prompt)
	}

	t.Setenv(ConfigEnv, filepath.Join(t.TempDir(), "missing.yml"))
	if _, err := LoadDefaultConfig(); err == nil {
		t.Fatalf("explicitly named config must exist")
	}
}

func TestLoadDefaultConfigWithoutFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv(ConfigEnv, "")
	t.Setenv("HOME", home)
	cfg, err := LoadDefaultConfig()
	if err != nil {
		t.Fatalf("LoadDefaultConfig returned error: %v", err)
	}
	if cfg.Path != "" {
		t.Fatalf("defaults should have no path, got %q", cfg.Path)
	}
	if cfg.HistoryFile != filepath.Join(home, ".glox_history") {
		t.Fatalf("unexpected history file %q", cfg.HistoryFile)
	}
}

func TestHistoryFileExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	cfg, err := LoadConfig(writeConfig(t, "history_file: ~/lox/history\n"))
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.HistoryFile != filepath.Join(home, "lox", "history") {
		t.Fatalf("unexpected history file %q", cfg.HistoryFile)
	}
}
