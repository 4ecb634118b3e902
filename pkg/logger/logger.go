package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
	slogsentry "github.com/samber/slog-sentry/v2"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Proton-105/lanxat-bot/pkg/config"
)

// Logger is a slog.Logger whose level can be changed at runtime.
type Logger struct {
	*slog.Logger
	level *slog.LevelVar
	file  io.Closer
}

// New builds the application logger: JSON or text output on stdout, an optional
// rotated log file, masking of credentials and, when Sentry is enabled,
// error records forwarded to Sentry.
func New(cfg config.Config) (*Logger, error) {
	level := new(slog.LevelVar)
	if err := setLevel(level, cfg.Logger.Level); err != nil {
		return nil, err
	}

	var (
		out  io.Writer = os.Stdout
		file io.Closer
	)
	if cfg.Logger.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.Logger.File,
			MaxSize:    cfg.Logger.MaxSizeMB,
			MaxBackups: cfg.Logger.MaxBackups,
			MaxAge:     cfg.Logger.MaxAgeDays,
			Compress:   true,
		}
		out = io.MultiWriter(os.Stdout, rotator)
		file = rotator
	}

	handler := newFormatHandler(out, cfg.Logger.Format, level)
	if cfg.Sentry.Enabled {
		sentryHandler := slogsentry.Option{Level: slog.LevelError, AddSource: true}.NewSentryHandler()
		handler = slogmulti.Fanout(handler, sentryHandler)
	}

	base := slog.New(NewMaskingHandler(handler)).With(
		slog.String("service", "lanxat-bot"),
		slog.String("env", cfg.AppEnv),
	)

	return &Logger{Logger: base, level: level, file: file}, nil
}

// SetLevel changes the minimum level of every handler built by New.
func (l *Logger) SetLevel(name string) error {
	return setLevel(l.level, name)
}

func (l *Logger) Level() slog.Level {
	return l.level.Level()
}

// Close flushes and closes the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

func newFormatHandler(w io.Writer, format string, level slog.Leveler) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "text") {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

func setLevel(level *slog.LevelVar, name string) error {
	if name == "" {
		level.Set(slog.LevelInfo)
		return nil
	}

	var parsed slog.Level
	if err := parsed.UnmarshalText([]byte(name)); err != nil {
		return fmt.Errorf("parse log level %q: %w", name, err)
	}

	level.Set(parsed)
	return nil
}
