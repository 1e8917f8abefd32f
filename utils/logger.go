package utils

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

// init initializes the global logger configuration when the package is imported.
func init() {
	//set log formatter to JSON with ISO 8601 timestamps
	log.SetFormatter(&log.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05Z07:00",
	})

	// Output to stderr, stdout belongs to the console
	log.SetOutput(os.Stderr)

	// Set default log level
	log.SetLevel(log.InfoLevel)
}

// ConfigureLogger applies level ("debug", "info", ...) and format ("json" or "text")
func ConfigureLogger(level, format string, out io.Writer) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	switch format {
	case "", "json":
		log.SetFormatter(&log.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05Z07:00"})
	case "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02T15:04:05Z07:00"})
	default:
		return fmt.Errorf("log format %q: want json or text", format)
	}

	if out != nil {
		log.SetOutput(out)
	}
	log.SetLevel(lvl)
	return nil
}

// Debug logs a message at debug level with optional fields
func Debug(message string, fields map[string]any) {
	log.WithFields(fields).Debug(message)
}

// Info logs a message at info level with optional fields
func Info(message string, fields map[string]any) {
	log.WithFields(fields).Info(message)
}

// Warn logs a message at warning level with optional fields
func Warn(message string, fields map[string]any) {
	log.WithFields(fields).Warn(message)
}

// Error logs a message at error level with optional fields
func Error(message string, fields map[string]any) {
	log.WithFields(fields).Error(message)
}

// Fatal logs a message at fatal level and exits the application
func Fatal(message string, fields map[string]any) {
	log.WithFields(fields).Fatal(message)
}
