package config

import (
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/idw-coder/quizterm/internal/api"
	"github.com/idw-coder/quizterm/internal/localstore"
)

// Config holds the client settings.
type Config struct {
	APIBaseURL string
	DBPath     string
	LogPath    string
	LogLevel   string
}

// Load reads settings from an optional .env file in the working
// directory and from QUIZTERM_* environment variables, with sensible
// defaults for everything.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.SetEnvPrefix("QUIZTERM")
	v.AutomaticEnv()

	// The config file is optional; env vars and defaults cover everything.
	_ = v.ReadInConfig()

	v.SetDefault("API_URL", api.DefaultBaseURL)
	v.SetDefault("LOG_LEVEL", "info")

	dbPath := v.GetString("DB")
	if dbPath == "" {
		p, err := localstore.DefaultDBPath()
		if err != nil {
			return nil, err
		}
		dbPath = p
	}

	logPath := v.GetString("LOG")
	if logPath == "" {
		logPath = filepath.Join(filepath.Dir(dbPath), "quizterm.log")
	}

	return &Config{
		APIBaseURL: v.GetString("API_URL"),
		DBPath:     dbPath,
		LogPath:    logPath,
		LogLevel:   v.GetString("LOG_LEVEL"),
	}, nil
}
