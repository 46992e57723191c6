package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"

	applogging "github.com/andrescamacho/outpost-go/internal/application/logging"
	"github.com/andrescamacho/outpost-go/internal/infrastructure/config"
)

// CharmLogger implements the application Logger port on charmbracelet/log
type CharmLogger struct {
	logger *charmlog.Logger
	closer io.Closer
}

var _ applogging.Logger = (*CharmLogger)(nil)

// NewLogger builds a logger from the logging section of the configuration
func NewLogger(cfg config.LoggingConfig) (*CharmLogger, error) {
	var (
		out    io.Writer
		closer io.Closer
	)
	switch cfg.Output {
	case "", "stderr":
		out = os.Stderr
	case "stdout":
		out = os.Stdout
	case "file":
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out, closer = f, f
	default:
		return nil, fmt.Errorf("unsupported log output: %s", cfg.Output)
	}

	logger := NewWriterLogger(out, cfg)
	logger.closer = closer
	return logger, nil
}

// NewWriterLogger logs to w. Used directly by tests.
func NewWriterLogger(w io.Writer, cfg config.LoggingConfig) *CharmLogger {
	level, err := charmlog.ParseLevel(cfg.Level)
	if err != nil {
		level = charmlog.InfoLevel
	}

	formatter := charmlog.TextFormatter
	switch cfg.Format {
	case "json":
		formatter = charmlog.JSONFormatter
	case "logfmt":
		formatter = charmlog.LogfmtFormatter
	}

	return &CharmLogger{
		logger: charmlog.NewWithOptions(w, charmlog.Options{
			Level:           level,
			Formatter:       formatter,
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			ReportCaller:    cfg.IncludeCaller,
			Prefix:          cfg.Prefix,
		}),
	}
}

// Log writes one entry. Metadata keys are emitted in sorted order.
func (l *CharmLogger) Log(level, message string, metadata map[string]interface{}) {
	keyvals := make([]interface{}, 0, len(metadata)*2)
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		keyvals = append(keyvals, k, metadata[k])
	}

	switch strings.ToUpper(level) {
	case "DEBUG":
		l.logger.Debug(message, keyvals...)
	case "WARNING", "WARN":
		l.logger.Warn(message, keyvals...)
	case "ERROR":
		l.logger.Error(message, keyvals...)
	default:
		l.logger.Info(message, keyvals...)
	}
}

// With returns a logger that adds keyvals to every entry
func (l *CharmLogger) With(keyvals ...interface{}) *CharmLogger {
	return &CharmLogger{logger: l.logger.With(keyvals...)}
}

// Close releases the log file, if any
func (l *CharmLogger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
