// Package logger configures the process-wide logrus logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/azenia/website/internal/config"
	"github.com/azenia/website/internal/metrics"
)

// ErrorTypeField tags error entries so they are counted per subsystem.
const ErrorTypeField = "error_type"

const (
	ErrorTypeDB      = "db"
	ErrorTypeEmail   = "email"
	ErrorTypeStorage = "storage"
	ErrorTypeAuth    = "auth"
	ErrorTypeRender  = "render"
)

var logFile *os.File

type prometheusHook struct{}

func (h *prometheusHook) Fire(entry *log.Entry) error {
	errorType, ok := entry.Data[ErrorTypeField].(string)
	if !ok {
		errorType = "unknown"
	}
	metrics.ErrorsCounter.WithLabelValues(errorType).Inc()
	return nil
}

func (h *prometheusHook) Levels() []log.Level {
	return []log.Level{
		log.ErrorLevel,
		log.FatalLevel,
		log.PanicLevel,
	}
}

// Setup applies cfg to the standard logrus logger.
func Setup(cfg config.LoggerConfig) error {
	var out io.Writer = os.Stdout
	if cfg.OutputFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.OutputFile), 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		logFile = f
		out = io.MultiWriter(os.Stdout, f)
	}

	log.SetOutput(out)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000 -0700",
	})
	log.AddHook(&prometheusHook{})

	switch cfg.LogLevel {
	case config.LevelDebug:
		log.SetLevel(log.DebugLevel)
	case config.LevelWarning:
		log.SetLevel(log.WarnLevel)
	case config.LevelError:
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
	return nil
}

// Cleanup closes the log file, if any.
func Cleanup() {
	if logFile != nil {
		_ = logFile.Close()
	}
}
