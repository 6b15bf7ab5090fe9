package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

var specs = []keySpec{
	{
		key: "server.port", typ: kInt, env: "PORT",
		apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
		extract: func(cfg Config) any { return cfg.Server.Port },
	},
	{
		key: "slack.bot_token", typ: kString, env: "SLACK_BOT_TOKEN",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Slack.BotToken = v.(string) },
		extract: func(cfg Config) any { return cfg.Slack.BotToken },
	},
	{
		key: "slack.signing_secret", typ: kString, env: "SLACK_SIGNING_SECRET",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Slack.SigningSecret = v.(string) },
		extract: func(cfg Config) any { return cfg.Slack.SigningSecret },
	},
	{
		key: "grok.api_key", typ: kString, env: "GROK_API_KEY",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Completion.APIKey = v.(string) },
		extract: func(cfg Config) any { return cfg.Completion.APIKey },
	},
	{
		key: "grok.api_url", typ: kString, env: "GROK_API_URL",
		apply:   func(cfg *Config, v any) { cfg.Completion.URL = v.(string) },
		extract: func(cfg Config) any { return cfg.Completion.URL },
	},
	{
		key: "grok.model", typ: kString, env: "GROK_MODEL",
		apply:   func(cfg *Config, v any) { cfg.Completion.Model = v.(string) },
		extract: func(cfg Config) any { return cfg.Completion.Model },
	},
	{
		// URLs may embed a password.
		key: "store.redis_url", typ: kString, env: "REDIS_URL",
		secret:  true,
		apply:   func(cfg *Config, v any) { cfg.Store.RedisURL = v.(string) },
		extract: func(cfg Config) any { return cfg.Store.RedisURL },
	},
	{
		key: "store.sqlite_path", typ: kString, env: "GROKVIBE_PREFERENCES_DB",
		apply:   func(cfg *Config, v any) { cfg.Store.SQLitePath = v.(string) },
		extract: func(cfg Config) any { return cfg.Store.SQLitePath },
	},
	{
		key: "log.level", typ: kString, env: "LOG_LEVEL",
		apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
		extract: func(cfg Config) any { return cfg.Log.Level },
	},
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config, lookup func(string) string) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := lookup(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
