package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Embeddings selects the embedding model used to build new indexes.
type Embeddings struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url,omitempty"`
}

// Columns are the dataset columns folded into each record's search text. Empty lists
// mean the built-in English/Spanish column sets.
type Columns struct {
	EN []string `yaml:"en,omitempty"`
	ES []string `yaml:"es,omitempty"`
}

// Server configures `biobot serve`.
type Server struct {
	Addr           string        `yaml:"addr"`
	CORSOrigin     string        `yaml:"cors_origin"`
	RateLimit      float64       `yaml:"rate_limit"`
	RateBurst      int           `yaml:"rate_burst"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	ServiceName    string        `yaml:"service_name"`
}

// Build configures `biobot index`.
type Build struct {
	BatchSize   int           `yaml:"batch_size"`
	Workers     int           `yaml:"workers"`
	MetaFormat  string        `yaml:"meta_format"`
	LockTimeout time.Duration `yaml:"lock_timeout"`
}

// Config is the in-memory representation of ~/.biobot/biobot.yaml.
type Config struct {
	DataPath   string     `yaml:"data_path"`
	IndexDir   string     `yaml:"index_dir"`
	Embeddings Embeddings `yaml:"embeddings"`
	Columns    Columns    `yaml:"columns,omitempty"`
	Server     Server     `yaml:"server"`
	Build      Build      `yaml:"build"`
}

// BiobotDir returns the absolute path to ~/.biobot/.
func BiobotDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".biobot"), nil
}

// ConfigPath returns the absolute path to ~/.biobot/biobot.yaml.
func ConfigPath() (string, error) {
	dir, err := BiobotDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "biobot.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// DefaultConfig returns the configuration used when no biobot.yaml exists.
func DefaultConfig() *Config {
	return &Config{
		DataPath: filepath.Join("data", "translated_biopesticides.csv"),
		IndexDir: "index",
		Embeddings: Embeddings{
			Provider: "ollama",
			Model:    "paraphrase-multilingual",
		},
		Server: Server{
			Addr:           ":8000",
			CORSOrigin:     "*",
			RateLimit:      10,
			RateBurst:      20,
			RequestTimeout: 30 * time.Second,
			ServiceName:    "biobot",
		},
		Build: Build{
			BatchSize:   32,
			Workers:     4,
			MetaFormat:  "jsonl",
			LockTimeout: 30 * time.Second,
		},
	}
}

// Load reads path (or ~/.biobot/biobot.yaml when path is empty), fills unset fields
// from DefaultConfig and applies environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}

	cfg.fillDefaults(DefaultConfig())
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	// Expand ~ in paths at load time.
	if cfg.DataPath, err = ExpandPath(cfg.DataPath); err != nil {
		return nil, err
	}
	if cfg.IndexDir, err = ExpandPath(cfg.IndexDir); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) fillDefaults(d *Config) {
	setStr := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	setStr(&c.DataPath, d.DataPath)
	setStr(&c.IndexDir, d.IndexDir)
	setStr(&c.Embeddings.Provider, d.Embeddings.Provider)
	setStr(&c.Embeddings.Model, d.Embeddings.Model)
	setStr(&c.Server.Addr, d.Server.Addr)
	setStr(&c.Server.CORSOrigin, d.Server.CORSOrigin)
	setStr(&c.Server.ServiceName, d.Server.ServiceName)
	setStr(&c.Build.MetaFormat, d.Build.MetaFormat)
	if c.Server.RateLimit == 0 {
		c.Server.RateLimit = d.Server.RateLimit
	}
	if c.Server.RateBurst == 0 {
		c.Server.RateBurst = d.Server.RateBurst
	}
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = d.Server.RequestTimeout
	}
	if c.Build.BatchSize == 0 {
		c.Build.BatchSize = d.Build.BatchSize
	}
	if c.Build.Workers == 0 {
		c.Build.Workers = d.Build.Workers
	}
	if c.Build.LockTimeout == 0 {
		c.Build.LockTimeout = d.Build.LockTimeout
	}
}

// applyEnv overrides file values with environment/dotenv values.
func (c *Config) applyEnv() error {
	for _, kv := range []struct {
		dst  *string
		keys []string
	}{
		{&c.DataPath, []string{"BIOBOT_DATA_PATH", "DATA_PATH"}},
		{&c.IndexDir, []string{"BIOBOT_INDEX_DIR", "INDEX_DIR", "OUT_DIR"}},
	} {
		v, err := FirstConfigValue(kv.keys...)
		if err != nil {
			return err
		}
		if v != "" {
			*kv.dst = v
		}
	}

	port, err := GetConfigValue("PORT")
	if err != nil {
		return err
	}
	if port != "" {
		if _, err := strconv.Atoi(port); err != nil {
			return fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		c.Server.Addr = ":" + port
	}
	return nil
}

// Save marshals cfg and writes it to path (or ~/.biobot/biobot.yaml when empty).
func Save(cfg *Config, path string) error {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}
