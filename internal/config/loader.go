package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tailscale/hujson"
	"mvdan.cc/sh/v3/shell"
)

var envTemplateRe = regexp.MustCompile(`\$\{\{\s*\.Env\.(\w+)\s*\}\}`)

// Load reads a JSONC config file, expands ${{ .Env.VAR }} templates, strips
// comments and trailing commas, unmarshals it into Config, and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// LoadOrDefault is Load, except that a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = &Config{}
		applyDefaults(cfg)
		return cfg, nil
	}
	return cfg, err
}

// Parse decodes JSONC config bytes.
func Parse(data []byte) (*Config, error) {
	// Expand environment variable templates (before standardizing, since templates are in strings)
	expanded := expandEnvTemplates(string(data))

	std, err := hujson.Standardize([]byte(expanded))
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(std, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := expandPaths(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// expandEnvTemplates replaces ${{ .Env.VAR }} with the env var value.
func expandEnvTemplates(s string) string {
	return envTemplateRe.ReplaceAllStringFunc(s, func(match string) string {
		parts := envTemplateRe.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		return os.Getenv(parts[1])
	})
}

// expandPaths applies shell-style $VAR / ${VAR} expansion and a leading ~/
// to every path-valued setting.
func expandPaths(cfg *Config) error {
	fields := []struct {
		name string
		v    *string
	}{
		{"storage.path", &cfg.Storage.Path},
		{"events.log_dir", &cfg.Events.LogDir},
		{"backup.dir", &cfg.Backup.Dir},
		{"seed_file", &cfg.SeedFile},
	}
	for _, f := range fields {
		if *f.v == "" {
			continue
		}
		v, err := shell.Expand(*f.v, nil)
		if err != nil {
			return fmt.Errorf("expand %s: %w", f.name, err)
		}
		if rest, ok := strings.CutPrefix(v, "~/"); ok {
			if home, err := os.UserHomeDir(); err == nil {
				v = filepath.Join(home, rest)
			}
		}
		*f.v = v
	}
	return nil
}

// applyDefaults fills in zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.Gateway.Host == "" {
		cfg.Gateway.Host = "127.0.0.1"
	}
	if cfg.Gateway.Port == 0 {
		cfg.Gateway.Port = 18421
	}
	if cfg.Gateway.ShutdownTimeout == 0 {
		cfg.Gateway.ShutdownTimeout = Duration(5 * time.Second)
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "dir"
	}
	if cfg.Storage.Path == "" {
		switch cfg.Storage.Driver {
		case "sqlite":
			cfg.Storage.Path = filepath.Join(TaskboardPath(), "taskboard.db")
		case "dir":
			cfg.Storage.Path = filepath.Join(TaskboardPath(), "data")
		}
	}
	if cfg.Events.BufferSize == 0 {
		cfg.Events.BufferSize = 1024
	}
	if cfg.Events.LogDir == "" {
		cfg.Events.LogDir = filepath.Join(TaskboardPath(), "logs")
	}
	if cfg.Events.RetentionDays == 0 {
		cfg.Events.RetentionDays = 30
	}
	if cfg.Events.PruneSchedule == "" {
		cfg.Events.PruneSchedule = "30 3 * * *"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Backup.Dir == "" {
		cfg.Backup.Dir = filepath.Join(TaskboardPath(), "backups")
	}
	if cfg.Backup.Keep == 0 {
		cfg.Backup.Keep = 7
	}
}
