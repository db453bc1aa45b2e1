package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/logdeck/internal/logline"
)

// SourceStdin selects standard input as the line source.
const SourceStdin = "stdin"

// Config holds the resolved logdeck settings.
type Config struct {
	MaxLines     int
	LogLevel     string
	LogFile      string
	Listen       string
	Source       string
	AcceptLevels []logline.Level
}

const (
	defaultConfigPath = "~/.config/logdeck/config.toml"
	defaultLogFile    = "~/.local/state/logdeck/logdeck.log"
	defaultListen     = "127.0.0.1:9191"
	defaultLogLevel   = "info"
	defaultMaxLines   = 1000
)

// Defaults returns the configuration used when no file exists.
func Defaults() Config {
	return Config{
		MaxLines: defaultMaxLines,
		LogLevel: defaultLogLevel,
		LogFile:  mustExpand(defaultLogFile),
		Listen:   defaultListen,
		Source:   SourceStdin,
	}
}

// Load locates and parses the logdeck config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Defaults()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
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
		MaxLines     *int     `toml:"max_lines"`
		LogLevel     string   `toml:"log_level"`
		LogFile      string   `toml:"log_file"`
		Listen       string   `toml:"listen"`
		Source       string   `toml:"source"`
		AcceptLevels []string `toml:"accept_levels"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if raw.MaxLines != nil {
		if *raw.MaxLines < 0 {
			return Config{}, fmt.Errorf("parse config: max_lines must be positive, got %d", *raw.MaxLines)
		}
		if *raw.MaxLines > 0 {
			cfg.MaxLines = *raw.MaxLines
		}
	}

	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.Listen); v != "" {
		cfg.Listen = v
	}
	if v := strings.TrimSpace(raw.Source); v != "" {
		cfg.Source = v
		if v != SourceStdin {
			cfg.Source = mustExpand(v)
		}
	}

	levels, err := ParseLevels(raw.AcceptLevels)
	if err != nil {
		return Config{}, fmt.Errorf("parse config: accept_levels: %w", err)
	}
	cfg.AcceptLevels = levels

	return cfg, nil
}

// ParseLevels converts level names to members of the closed level set.
func ParseLevels(names []string) ([]logline.Level, error) {
	if len(names) == 0 {
		return nil, nil
	}
	levels := make([]logline.Level, 0, len(names))
	for _, name := range names {
		level, ok := logline.ParseLevel(name)
		if !ok {
			return nil, fmt.Errorf("unknown level %q", name)
		}
		levels = append(levels, level)
	}
	return levels, nil
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
