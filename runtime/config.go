package runtime

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sergev/glox/lang"
)

// ConfigEnv names the environment variable that overrides the config path.
const ConfigEnv = "GLOX_CONFIG"

// Config holds user settings for the interpreter and the REPL.
type Config struct {
	// Path is the file the settings were read from, empty for defaults.
	Path string

	Prompt             string
	ContinuationPrompt string

	// HistoryFile is where REPL history is kept; empty disables history.
	HistoryFile string

	StrictInit   bool
	MaxCallDepth int
	PrintAST     bool
}

type configFile struct {
	Prompt             *string `yaml:"prompt"`
	ContinuationPrompt *string `yaml:"continuation_prompt"`
	HistoryFile        *string `yaml:"history_file"`
	StrictInit         bool    `yaml:"strict_init"`
	MaxCallDepth       *int    `yaml:"max_call_depth"`
	PrintAST           bool    `yaml:"print_ast"`
}

// ValidationError aggregates config validation failures.
type ValidationError struct {
	Path   string
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "config %s validation failed:", e.Path)
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Prompt:             "> ",
		ContinuationPrompt: ". ",
		HistoryFile:        defaultHistoryFile(),
		MaxCallDepth:       lang.DefaultMaxCallDepth,
	}
}

func defaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".glox_history")
}

// Options converts the settings that tune the interpreter.
func (c *Config) Options() lang.Options {
	return lang.Options{
		StrictInit:   c.StrictInit,
		MaxCallDepth: c.MaxCallDepth,
	}
}

// LoadDefaultConfig reads the file named by $GLOX_CONFIG, or ~/.glox.yml
// when the variable is unset. A missing ~/.glox.yml yields the defaults; a
// missing file named explicitly is an error.
func LoadDefaultConfig() (*Config, error) {
	if path := strings.TrimSpace(os.Getenv(ConfigEnv)); path != "" {
		return LoadConfig(path)
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return DefaultConfig(), nil
	}
	cfg, err := LoadConfig(filepath.Join(home, ".glox.yml"))
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

// LoadConfig parses a YAML config file. Unknown keys are rejected; keys that
// are absent keep their defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw configFile
	if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse %s: %w", absPath, err)
	}

	cfg := raw.toConfig(absPath)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (raw configFile) toConfig(path string) *Config {
	cfg := DefaultConfig()
	cfg.Path = path
	if raw.Prompt != nil {
		cfg.Prompt = *raw.Prompt
	}
	if raw.ContinuationPrompt != nil {
		cfg.ContinuationPrompt = *raw.ContinuationPrompt
	}
	if raw.HistoryFile != nil {
		cfg.HistoryFile = expandHome(strings.TrimSpace(*raw.HistoryFile))
	}
	if raw.MaxCallDepth != nil {
		cfg.MaxCallDepth = *raw.MaxCallDepth
	}
	cfg.StrictInit = raw.StrictInit
	cfg.PrintAST = raw.PrintAST
	return cfg
}

func (c *Config) validate() error {
	errs := ValidationError{Path: c.Path}
	if c.MaxCallDepth <= 0 {
		errs.Issues = append(errs.Issues, fmt.Sprintf("max_call_depth must be positive, got %d", c.MaxCallDepth))
	}
	if strings.ContainsAny(c.Prompt, "\n\r") {
		errs.Issues = append(errs.Issues, "prompt must be a single line")
	}
	if strings.ContainsAny(c.ContinuationPrompt, "\n\r") {
		errs.Issues = append(errs.Issues, "continuation_prompt must be a single line")
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
}
