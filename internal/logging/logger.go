// ABOUTME: Process-wide logrus setup with optional lumberjack file rotation.
// ABOUTME: Logs go to stderr so stdout stays clean for CLI output and MCP stdio.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Params configures Setup.
type Params struct {
	Level string
	// File, when set, receives logs through a rotating writer.
	File string
	// Mirror also copies file logs to stderr.
	Mirror bool
	JSON   bool
}

// Setup configures the standard logrus logger. The returned closer flushes
// and closes the log file, if any.
func Setup(params Params) io.Closer {
	if params.JSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	logrus.SetLevel(GetLevel(params.Level))

	if params.File == "" {
		logrus.SetOutput(os.Stderr)
		return nopCloser{}
	}

	if !strings.HasSuffix(params.File, ".log") {
		params.File += ".log"
	}

	rotating := &lumberjack.Logger{
		Filename:   params.File,
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		LocalTime:  false,
		Compress:   true,
	}

	if params.Mirror {
		logrus.SetOutput(io.MultiWriter(os.Stderr, rotating))
	} else {
		logrus.SetOutput(rotating)
	}
	return rotating
}

// GetLevel parses a level name. Unknown names fall back to info.
func GetLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	default:
		return logrus.InfoLevel
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
