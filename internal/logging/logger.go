// Package logging wraps logrus with a component-tagged, file-or-stdout
// sink driven by the logger configuration block.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Config holds the logger settings.
type Config struct {
	LogsDirectoryPath             string `yaml:"logs_directory_path" env:"PALISADE_LOGS_DIRECTORY_PATH"`
	ComponentName                 string `yaml:"component_name" env:"PALISADE_LOG_COMPONENT_NAME"`
	QueueSizeBytes                int    `yaml:"queue_size_bytes" env:"PALISADE_LOG_QUEUE_SIZE_BYTES"`
	MaxLogFileSizeBytes           int64  `yaml:"max_log_file_size_bytes" env:"PALISADE_LOG_MAX_FILE_SIZE_BYTES"`
	MaxNumberFilesForSession      int    `yaml:"max_number_files_for_session" env:"PALISADE_LOG_MAX_FILES_PER_SESSION"`
	FlushFrequencyMs              int    `yaml:"flush_frequency_ms" env:"PALISADE_LOG_FLUSH_FREQUENCY_MS"`
	LogFilePrefix                 string `yaml:"log_file_prefix" env:"PALISADE_LOG_FILE_PREFIX"`
	LoggingSessionDirectoryPrefix string `yaml:"logging_session_directory_prefix" env:"PALISADE_LOG_SESSION_DIR_PREFIX"`
}

// Logger is a thin, component-tagged wrapper around a *logrus.Entry.
type Logger struct {
	entry *logrus.Entry
}

// New builds a Logger from cfg. When LogsDirectoryPath is set, output is
// additionally written to a session log file under it; otherwise logs go to
// stdout only.
func New(cfg Config) (*Logger, error) {
	base := logrus.New()
	base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	var out io.Writer = os.Stdout
	if cfg.LogsDirectoryPath != "" {
		dir := filepath.Join(cfg.LogsDirectoryPath, cfg.LoggingSessionDirectoryPrefix)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("logging: create session directory %q: %w", dir, err)
		}
		prefix := cfg.LogFilePrefix
		if prefix == "" {
			prefix = "palisade"
		}
		f, err := os.OpenFile(filepath.Join(dir, prefix+".log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("logging: open log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, f)
	}
	base.SetOutput(out)

	component := cfg.ComponentName
	if component == "" {
		component = "palisade"
	}
	return &Logger{entry: base.WithField("component", component)}, nil
}

// NewDefault returns a stdout-only logger tagged with component, for call
// sites that have not loaded a full Config (e.g. early startup, tests).
func NewDefault(component string) *Logger {
	base := logrus.New()
	base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return &Logger{entry: base.WithField("component", component)}
}

// NewNop returns a logger that discards everything, for tests that don't
// care about log output.
func NewNop() *Logger {
	base := logrus.New()
	base.SetOutput(io.Discard)
	return &Logger{entry: base.WithField("component", "nop")}
}

// WithField returns a derived Logger carrying an additional structured field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

func (l *Logger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }
func (l *Logger) Fatalf(format string, args ...interface{}) { l.entry.Fatalf(format, args...) }
