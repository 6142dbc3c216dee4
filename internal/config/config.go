// Package config loads process configuration: defaults, then an optional
// YAML file, then environment overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/bodul/wordsearch/internal/book"
	"github.com/bodul/wordsearch/internal/puzzle"
)

// Config is the whole process configuration.
type Config struct {
	App    AppConfig       `json:"app" yaml:"app"`
	Puzzle puzzle.Settings `json:"puzzle" yaml:"puzzle"`
	Book   book.Options    `json:"book" yaml:"book"`
	AI     AIConfig        `json:"ai" yaml:"ai"`
}

// AppConfig holds server, storage and logging settings.
type AppConfig struct {
	Port          string `json:"port" yaml:"port"`
	DataDir       string `json:"data_dir" yaml:"data_dir"`
	ProfanityFile string `json:"profanity_file" yaml:"profanity_file"`
	LogLevel      string `json:"log_level" yaml:"log_level"`
	LogFormat     string `json:"log_format" yaml:"log_format"`
	// WatchProfanity reloads the blocklist when the file changes on disk.
	WatchProfanity bool `json:"watch_profanity" yaml:"watch_profanity"`
	// RateLimit is the number of expensive requests allowed per client per minute.
	RateLimit int `json:"rate_limit" yaml:"rate_limit"`
}

// AIConfig selects the Vertex AI project used for drafting word lists.
// An empty ProjectID disables drafting.
type AIConfig struct {
	ProjectID string `json:"project_id" yaml:"project_id"`
	Region    string `json:"region" yaml:"region"`
	Model     string `json:"model" yaml:"model"`
}

func Default() Config {
	return Config{
		App: AppConfig{
			Port:           "8080",
			DataDir:        "data",
			ProfanityFile:  filepath.Join("data", "profanity.txt"),
			LogLevel:       "info",
			LogFormat:      "text",
			WatchProfanity: true,
			RateLimit:      10,
		},
		Puzzle: puzzle.DefaultSettings(),
		Book:   book.DefaultOptions(),
		AI: AIConfig{
			Region: "europe-west1",
			Model:  "gemini-2.5-flash",
		},
	}
}

// Load merges defaults, the file at path (if any) and the environment, then
// validates. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}
	if err := loadEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): YAML error: %v, JSON error: %w", err, jsonErr)
		}
	}
	return nil
}

func loadEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		cfg.App.Port = v
	}
	if v := os.Getenv("WORDSEARCH_PORT"); v != "" {
		cfg.App.Port = v
	}
	if v := os.Getenv("WORDSEARCH_DATA_DIR"); v != "" {
		cfg.App.DataDir = v
	}
	if v := os.Getenv("WORDSEARCH_PROFANITY_FILE"); v != "" {
		cfg.App.ProfanityFile = v
	}
	if v := os.Getenv("WORDSEARCH_LOG_LEVEL"); v != "" {
		cfg.App.LogLevel = v
	}
	if v := os.Getenv("GCP_PROJECT_ID"); v != "" {
		cfg.AI.ProjectID = v
	}
	if v := os.Getenv("GCP_REGION"); v != "" {
		cfg.AI.Region = v
	}
	if v := os.Getenv("WORDSEARCH_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("WORDSEARCH_SEED: %w", err)
		}
		cfg.Book.Seed = seed
	}
	return nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if c.App.Port == "" {
		return fmt.Errorf("app.port is required")
	}
	if c.App.DataDir == "" {
		return fmt.Errorf("app.data_dir is required")
	}
	switch c.App.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("app.log_format must be text or json, got %q", c.App.LogFormat)
	}
	if _, err := ParseLevel(c.App.LogLevel); err != nil {
		return err
	}
	if c.App.RateLimit < 0 {
		return fmt.Errorf("app.rate_limit must not be negative")
	}
	if err := c.Puzzle.Validate(); err != nil {
		return err
	}
	return c.Book.Validate(c.Puzzle)
}
