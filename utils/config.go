package utils

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Reader settings
type ReaderConfig struct {
	VerticalPadding   int `toml:"vertical_padding"`
	HorizontalPadding int `toml:"horizontal_padding"`
}

// Log settings
type LogConfig struct {
	Level string `toml:"level"` // "debug", "info", "warn", "error" or "off"
	File  string `toml:"file"`  // empty means <config dir>/folio.log
}

// Root config
type Config struct {
	Reader ReaderConfig `toml:"reader"`
	Log    LogConfig    `toml:"log"`
}

// DefaultConfig returns the settings used when no config file exists.
func DefaultConfig() Config {
	return Config{
		Reader: ReaderConfig{VerticalPadding: 1, HorizontalPadding: 2},
		Log:    LogConfig{Level: "off"},
	}
}

// ConfigDir returns the application config directory, creating it if needed.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".config", "folio")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// expandPath replaces a leading "~" with the user home dir.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// LoadConfig reads a TOML config file. A missing file yields the defaults;
// only a present-but-broken file is an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		dir, err := ConfigDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, "config.toml")
	}

	data, err := os.ReadFile(expandPath(path))
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Reader.VerticalPadding < 0 {
		cfg.Reader.VerticalPadding = 0
	}
	if cfg.Reader.HorizontalPadding < 0 {
		cfg.Reader.HorizontalPadding = 0
	}
	cfg.Log.File = expandPath(cfg.Log.File)
	return cfg, nil
}
