package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Slack      SlackConfig
	Completion CompletionConfig
	Store      StoreConfig
	Log        LogConfig
}

type ServerConfig struct {
	Port int
}

type SlackConfig struct {
	BotToken      string
	SigningSecret string
}

type CompletionConfig struct {
	APIKey string
	URL    string
	Model  string
}

// StoreConfig selects the preference backend. Both empty disables
// persistence.
type StoreConfig struct {
	RedisURL   string
	SQLitePath string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 8000,
		},
		Completion: CompletionConfig{
			URL:   "https://api.x.ai/v1/chat/completions",
			Model: "grok-2-1212",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from, in increasing priority: built-in defaults,
// the YAML config file, a .env file in the working directory, and the
// process environment. Secrets are only read from the environment or .env.
func Load() (Config, error) {
	return loadWith(newFileBackend(configFilePath()), ".env")
}

func loadWith(b ConfigBackend, dotenvPath string) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	dotenv := map[string]string{}
	if dotenvPath != "" {
		vals, err := godotenv.Read(dotenvPath)
		switch {
		case err == nil:
			dotenv = vals
		case errors.Is(err, fs.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("reading %s: %w", dotenvPath, err)
		}
	}

	applyEnvOverrides(&cfg, func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	})

	return cfg, nil
}

// ValidateServer reports the settings the webhook server cannot run without.
func (c Config) ValidateServer() error {
	var missing []string
	if c.Slack.SigningSecret == "" {
		missing = append(missing, "SLACK_SIGNING_SECRET")
	}
	if c.Slack.BotToken == "" {
		missing = append(missing, "SLACK_BOT_TOKEN")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	return nil
}
