package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var Logger *logrus.Logger

// Init configures the process logger. An empty level falls back to LOG_LEVEL
// and then to info. format "json" selects the JSON formatter, anything else
// the text formatter.
func Init(level, format string) *logrus.Logger {
	return InitWithOutput(level, format, os.Stderr)
}

func InitWithOutput(level, format string, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)

	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	if level == "" {
		level = "info"
	}
	if lvl, err := logrus.ParseLevel(strings.ToLower(level)); err == nil {
		log.SetLevel(lvl)
	} else {
		log.SetLevel(logrus.InfoLevel)
		log.WithField("invalid_level", level).Warn("Invalid log level, using INFO")
	}

	if format == "" {
		format = os.Getenv("LOG_FORMAT")
	}
	if strings.ToLower(format) == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	Logger = log
	return log
}

// Get returns the process logger, creating an info level one if needed.
func Get() *logrus.Logger {
	if Logger == nil {
		return Init("info", "text")
	}
	return Logger
}

// WithSimulation scopes log lines to one season simulation.
func WithSimulation(runID, strategy string, season int) *logrus.Entry {
	return Get().WithFields(logrus.Fields{
		"run_id":   runID,
		"strategy": strategy,
		"season":   season,
	})
}

// WithBatch scopes log lines to a batch of simulations.
func WithBatch(batchID string, season int) *logrus.Entry {
	return Get().WithFields(logrus.Fields{
		"batch_id": batchID,
		"season":   season,
	})
}

// WithHTTPContext scopes log lines to one HTTP request.
func WithHTTPContext(method, path, clientIP string) *logrus.Entry {
	return Get().WithFields(logrus.Fields{
		"http_method": method,
		"http_path":   path,
		"client_ip":   clientIP,
	})
}
