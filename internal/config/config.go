// Package config loads environment configuration and initializes logging for
// binaries embedding the tabletalk library.
package config

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Config holds application configuration. Values come from environment
// variables with the prefix "TABLETALK". Example: TABLETALK_CHAT_API_URL.
type Config struct {
	ChatAPIURL  string `envconfig:"CHAT_API_URL"  default:"http://localhost:8080"`
	ChatAPIKey  string `envconfig:"CHAT_API_KEY"`
	FactsAPIURL string `envconfig:"FACTS_API_URL" default:"http://localhost:8081"`
	FactsAPIKey string `envconfig:"FACTS_API_KEY"`
	DataPath    string `envconfig:"DATA_PATH"     default:"tabletalk.db"`
	Locale      string `envconfig:"LOCALE"        default:"en-US"`
	LogLevel    string `envconfig:"LOG_LEVEL"     default:"info"`
}

// Load populates Config from environment variables (prefix TABLETALK).
func Load() (*Config, error) {
	var c Config
	if err := envconfig.Process("TABLETALK", &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Init initializes logging from the loaded configuration.
func (c *Config) Init() {
	InitLogger()
	SetLogLevelFromString(c.LogLevel)

	log.Info().
		Str("chat_api_url", c.ChatAPIURL).
		Str("facts_api_url", c.FactsAPIURL).
		Str("data_path", c.DataPath).
		Str("log_level", c.LogLevel).
		Msg("Application configuration loaded")
}
