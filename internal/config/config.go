// Package config loads and validates tokentop settings from the settings
// file, environment variables, and command-line flags, in that order of
// increasing precedence.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
)

const (
	MinRefreshSeconds = 2
	MaxRefreshSeconds = 300

	MinTokenBudget = 1_000
	MaxTokenBudget = 100_000_000
)

type Config struct {
	// RefreshSeconds is the base poll interval. The accumulator may back off
	// beyond it but never polls faster.
	RefreshSeconds int `json:"refresh_seconds"`

	// TokenBudget is the soft ceiling the dashboard measures usage against.
	TokenBudget int64 `json:"token_budget"`

	// PricePerKInput / PricePerKOutput are USD per 1K tokens.
	PricePerKInput  float64 `json:"price_per_k_input"`
	PricePerKOutput float64 `json:"price_per_k_output"`

	// ProjectsDir overrides the Claude Code projects root. Empty means
	// ~/.claude/projects.
	ProjectsDir string `json:"projects_dir,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		RefreshSeconds:  5,
		TokenBudget:     500_000,
		PricePerKInput:  0.003,
		PricePerKOutput: 0.015,
	}
}

func ConfigDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "tokentop")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "tokentop")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "settings.json")
}

// HistoryPath is where the poll-snapshot database lives.
func HistoryPath() string {
	return filepath.Join(ConfigDir(), "history.db")
}

func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the settings file at path, falling back to defaults when the
// file does not exist, then applies environment overrides. The result is not
// yet validated; callers run Validate after applying flag overrides.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config %s: %w", path, err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TOKENTOP_REFRESH_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RefreshSeconds = n
		}
	}
	if v := os.Getenv("TOKENTOP_TOKEN_BUDGET"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.TokenBudget = n
		}
	}
	if v := os.Getenv("TOKENTOP_PRICE_IN"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.PricePerKInput = f
		}
	}
	if v := os.Getenv("TOKENTOP_PRICE_OUT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.PricePerKOutput = f
		}
	}
	if v := os.Getenv("CLAUDE_PROJECTS_DIR"); v != "" {
		cfg.ProjectsDir = v
	}
}

// Validate enforces the configuration ranges. Violations are fatal at startup
// and never reach the polling loop.
func (c Config) Validate() error {
	if c.RefreshSeconds < MinRefreshSeconds || c.RefreshSeconds > MaxRefreshSeconds {
		return fmt.Errorf("refresh interval must be between %d and %d seconds, got %d",
			MinRefreshSeconds, MaxRefreshSeconds, c.RefreshSeconds)
	}
	if c.TokenBudget < MinTokenBudget || c.TokenBudget > MaxTokenBudget {
		return fmt.Errorf("token budget must be between %d and %d, got %d",
			MinTokenBudget, MaxTokenBudget, c.TokenBudget)
	}
	if c.PricePerKInput < 0 {
		return fmt.Errorf("input price must be non-negative, got %v", c.PricePerKInput)
	}
	if c.PricePerKOutput < 0 {
		return fmt.Errorf("output price must be non-negative, got %v", c.PricePerKOutput)
	}
	if c.ProjectsDir != "" {
		if info, err := os.Stat(c.ProjectsDir); err != nil || !info.IsDir() {
			return fmt.Errorf("projects dir %s is not a directory", c.ProjectsDir)
		}
	}
	return nil
}

func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

func SaveTo(path string, cfg Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
