package app

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// NewLogger returns the process logger. Output goes to stdout so the CLI can keep stderr
// for its own diagnostics.
func NewLogger(cfg *Config) *slog.Logger {
	return newLogger(cfg, os.Stdout)
}

func newLogger(cfg *Config, w io.Writer) *slog.Logger {
	level, err := cfg.logLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{
		AddSource:   true,
		Level:       level,
		ReplaceAttr: shortSource,
	}
	if cfg != nil && cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// logLevel resolves LOG_LEVEL. Blank means debug outside production and info in it.
func (c *Config) logLevel() (slog.Level, error) {
	raw := ""
	if c != nil {
		raw = strings.TrimSpace(c.LogLevel)
	}
	if raw == "" {
		if c != nil && !c.IsProduction() {
			return slog.LevelDebug, nil
		}
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}

// shortSource trims the source attribute to dir/file.go so lines stay readable.
func shortSource(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.SourceKey {
		return a
	}
	src, ok := a.Value.Any().(*slog.Source)
	if !ok || src == nil {
		return a
	}
	src.File = filepath.Join(filepath.Base(filepath.Dir(src.File)), filepath.Base(src.File))
	return a
}
