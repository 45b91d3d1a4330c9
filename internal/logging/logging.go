// Package logging builds the arbor logger shared by the binaries.
package logging

import (
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"

	"github.com/bighogz/tradie/internal/config"
)

// Console returns a console-only logger at the default level.
func Console() arbor.ILogger {
	return arbor.NewLogger().WithConsoleWriter(consoleWriter())
}

// New builds a logger from the logging settings. Unknown outputs are ignored;
// when none remain the logger writes to the console.
func New(cfg config.LoggingConfig) arbor.ILogger {
	logger := arbor.NewLogger()

	hasFile, hasConsole := false, false
	for _, output := range cfg.Output {
		switch output {
		case "file":
			hasFile = true
		case "console", "stdout":
			hasConsole = true
		}
	}

	fileAdded := false
	if hasFile && cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err == nil {
			fileAdded = true
			logger = logger.WithFileWriter(models.WriterConfiguration{
				Type:       models.LogWriterTypeFile,
				FileName:   cfg.File,
				TimeFormat: "15:04:05",
				MaxSize:    100 * 1024 * 1024,
				MaxBackups: 3,
				TextOutput: true,
			})
		}
	}
	if hasConsole || !fileAdded {
		logger = logger.WithConsoleWriter(consoleWriter())
	}

	if cfg.Level != "" {
		logger = logger.WithLevelFromString(cfg.Level)
	}
	return logger
}

func consoleWriter() models.WriterConfiguration {
	return models.WriterConfiguration{
		Type:       models.LogWriterTypeConsole,
		TimeFormat: "15:04:05",
		TextOutput: true,
	}
}
