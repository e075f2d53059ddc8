package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures everything the flix tool needs to reach the service and
// run exports.
type Config struct {
	Hostname        string
	Username        string
	Password        string
	DataDir         string
	PollSeconds     int
	IncludeDialogue bool
}

const (
	defaultConfigPath  = "~/.config/flix/config.toml"
	defaultDataDir     = "~/.local/share/flix"
	defaultHostname    = "127.0.0.1:8080"
	defaultPollSeconds = 1

	// passwordEnv overrides the config file password so credentials can stay
	// out of on-disk config entirely.
	passwordEnv = "FLIX_PASSWORD"
)

// Load locates and parses the flix config, falling back to defaults when the
// file is missing. Credentials are not validated here; commands that need
// them call RequireCredentials.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{Hostname: defaultHostname, PollSeconds: defaultPollSeconds}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.DataDir = mustExpand(defaultDataDir)
			cfg.applyEnv()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		Hostname        string `toml:"hostname"`
		Username        string `toml:"username"`
		Password        string `toml:"password"`
		DataDir         string `toml:"data_dir"`
		PollSeconds     int    `toml:"poll_seconds"`
		IncludeDialogue bool   `toml:"include_dialogue"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.Hostname = strings.TrimSpace(raw.Hostname)
	if cfg.Hostname == "" {
		cfg.Hostname = defaultHostname
	}
	cfg.Username = strings.TrimSpace(raw.Username)
	cfg.Password = raw.Password

	cfg.DataDir = strings.TrimSpace(raw.DataDir)
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir
	}
	cfg.DataDir = mustExpand(cfg.DataDir)

	cfg.PollSeconds = raw.PollSeconds
	if cfg.PollSeconds <= 0 {
		cfg.PollSeconds = defaultPollSeconds
	}
	cfg.IncludeDialogue = raw.IncludeDialogue

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if password := os.Getenv(passwordEnv); password != "" {
		c.Password = password
	}
}

// RequireCredentials fails when the config carries no usable login.
func (c Config) RequireCredentials() error {
	if strings.TrimSpace(c.Username) == "" {
		return fmt.Errorf("no username configured (set username in %s)", defaultConfigPath)
	}
	if c.Password == "" {
		return fmt.Errorf("no password configured (set password in %s or %s)", defaultConfigPath, passwordEnv)
	}
	return nil
}

// HistoryDBPath returns the path of the local export history database.
func (c Config) HistoryDBPath() string {
	return filepath.Join(c.DataDir, "history.db")
}

// LogPath returns the path of the tool's log file.
func (c Config) LogPath() string {
	return filepath.Join(c.DataDir, "flix.log")
}

// EnsureDataDir creates the data directory when missing.
func (c Config) EnsureDataDir() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("data_dir is empty")
	}
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
