// Package logger sets up the logrus logger for each environment.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/balkashynov/taskflow/internal/config"
)

// New returns a logger writing to w, configured for env.
// Unknown environments get the prod setup.
func New(env string, w io.Writer) *logrus.Entry {
	var log = logrus.New()
	log.SetOutput(w)

	switch env {
	case config.EnvLocal:
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
		log.SetLevel(logrus.DebugLevel)
	case config.EnvDev:
		log.SetFormatter(&logrus.TextFormatter{
			DisableColors: true,
			FullTimestamp: true,
		})
		log.SetLevel(logrus.InfoLevel)
	default:
		log.SetFormatter(&logrus.TextFormatter{
			DisableColors: true,
			FullTimestamp: true,
		})
		log.SetLevel(logrus.WarnLevel)
	}

	return logrus.NewEntry(log)
}

// Setup builds the logger for cfg. The local environment logs to stderr,
// everything else appends to the log file in the config directory.
// The returned closer releases the log file.
func Setup(cfg *config.Config) (*logrus.Entry, io.Closer, error) {
	if cfg.Env == config.EnvLocal {
		return New(cfg.Env, os.Stderr), io.NopCloser(nil), nil
	}

	if err := cfg.EnsureDir(); err != nil {
		return nil, nil, err
	}
	logFile, err := os.OpenFile(cfg.LogPath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}
	return New(cfg.Env, logFile), logFile, nil
}
