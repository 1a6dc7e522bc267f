// Package config reads the process environment that standin consults when a
// caller does not inject a backend or logger explicitly.
package config

import (
	"os"
	"strings"
	"sync"

	"github.com/lthibault/log"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix scopes every environment key, e.g. STANDIN_BACKEND.
const EnvPrefix = "STANDIN"

// Backend names understood by the spy selector.
const (
	BackendTestify = "testify"
	BackendGomock  = "gomock"
)

// Config is a snapshot of the environment.
type Config struct {
	// Backend names the spy backend; testify unless STANDIN_BACKEND says otherwise.
	Backend string

	// LogLevel controls the verbosity of the default logger.
	LogLevel string

	// LogFormat selects the logrus formatter, "text" or "json".
	LogFormat string
}

var (
	once     sync.Once
	snapshot Config
	logger   log.Logger
)

// Load reads the environment through viper. Each call re-reads it.
func Load() Config {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetDefault("backend", BackendTestify)
	v.SetDefault("loglvl", "warn")
	v.SetDefault("logfmt", "text")
	v.AutomaticEnv()

	return Config{
		Backend:   normalize(v.GetString("backend")),
		LogLevel:  normalize(v.GetString("loglvl")),
		LogFormat: normalize(v.GetString("logfmt")),
	}
}

// Default returns the configuration loaded on first use, along with the
// logger built from it. Neither is refreshed for the life of the process.
func Default() (Config, log.Logger) {
	once.Do(func() {
		snapshot = Load()
		logger = snapshot.Logger()
	})

	return snapshot, logger
}

// GomockRunner reports whether the environment asks for the gomock backend.
func (c Config) GomockRunner() bool {
	return c.Backend == BackendGomock
}

// Logger builds a logger writing to stderr at the configured level and format.
func (c Config) Logger() log.Logger {
	return log.New(
		withLevel(c.LogLevel),
		withFormat(c.LogFormat),
		log.WithWriter(os.Stderr))
}

func withLevel(name string) log.Option {
	var level = log.WarnLevel

	switch name {
	case "trace", "t":
		level = log.TraceLevel
	case "debug", "d":
		level = log.DebugLevel
	case "info", "i":
		level = log.InfoLevel
	case "error", "err", "e":
		level = log.ErrorLevel
	case "fatal", "f":
		level = log.FatalLevel
	}

	return log.WithLevel(level)
}

func withFormat(name string) log.Option {
	if name == "json" {
		return log.WithFormatter(&logrus.JSONFormatter{})
	}

	return log.WithFormatter(new(logrus.TextFormatter))
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
