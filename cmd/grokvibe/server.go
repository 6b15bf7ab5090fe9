package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kalambet/grokvibe/internal/api"
	"github.com/kalambet/grokvibe/internal/completion"
	"github.com/kalambet/grokvibe/internal/config"
	"github.com/kalambet/grokvibe/internal/dispatch"
	"github.com/kalambet/grokvibe/internal/mention"
	"github.com/kalambet/grokvibe/internal/preference"
	"github.com/kalambet/grokvibe/internal/slackapp"
)

const (
	serviceName     = "GrokVibe"
	shutdownTimeout = 5 * time.Second
	// Long enough for one completion call plus the reply post.
	drainTimeout = 15 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Slack events webhook server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServer(ctx)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show grokvibe status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus(cmd.Context())
	},
}

func runServer(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(cfg.Log.Level)

	if err := cfg.ValidateServer(); err != nil {
		return err
	}
	if cfg.Completion.APIKey == "" {
		log.Warn().Msg("GROK_API_KEY is not set, replies will echo the original text")
	}

	backend, err := preference.Open(cfg.Store.RedisURL, cfg.Store.SQLitePath)
	if err != nil {
		return fmt.Errorf("opening preference store: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.Warn().Err(err).Msg("closing preference store")
		}
	}()
	prefs := preference.NewStore(backend)
	if prefs.Backend() == "none" {
		log.Warn().Msg("no preference store configured, default vibes will not persist")
	}

	completer := completion.NewClient(cfg.Completion.APIKey, cfg.Completion.URL, cfg.Completion.Model)
	poster := slackapp.NewPoster(cfg.Slack.BotToken)
	mentions := mention.NewHandler(prefs, completer, poster)
	dispatcher := dispatch.New(ctx)

	router := api.NewRouter(api.Deps{
		ServiceName: serviceName,
		Verifier:    slackapp.NewVerifier(cfg.Slack.SigningSecret),
		Mentions:    mentions,
		Dispatcher:  dispatcher,
		Logger:      log.Logger,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", addr).
			Str("version", version).
			Str("model", cfg.Completion.Model).
			Str("preferences", prefs.Backend()).
			Msg("grokvibe listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}

	drainCtx, cancelDrain := context.WithTimeout(context.Background(), drainTimeout)
	defer cancelDrain()
	if err := dispatcher.Wait(drainCtx); err != nil {
		log.Warn().Err(err).Msg("in-flight mentions abandoned")
	}
	return nil
}

func showStatus(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		printError("config error: %v", err)
		return nil
	}

	url := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port)
	client := &http.Client{Timeout: 2 * time.Second}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			printStatus("Server", "running on port %d", cfg.Server.Port)
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	printStatus("Model", "%s", cfg.Completion.Model)
	printStatus("Completion URL", "%s", cfg.Completion.URL)
	printStatus("Preferences", "%s", preferenceBackendLabel(cfg.Store))
	printStatus("Signing secret", "%s", presence(cfg.Slack.SigningSecret))
	printStatus("Bot token", "%s", presence(cfg.Slack.BotToken))
	printStatus("Grok API key", "%s", presence(cfg.Completion.APIKey))
	printStatus("Config file", "%s", config.FilePath())
	return nil
}

func preferenceBackendLabel(s config.StoreConfig) string {
	switch {
	case s.RedisURL != "":
		return "redis"
	case s.SQLitePath != "":
		return "sqlite (" + s.SQLitePath + ")"
	default:
		return "none"
	}
}

func presence(secret string) string {
	if secret == "" {
		return "missing"
	}
	return "set"
}

// openPreferences opens the configured backend for one-off CLI use.
func openPreferences(cfg config.Config) (*preference.Store, func(), error) {
	backend, err := preference.Open(cfg.Store.RedisURL, cfg.Store.SQLitePath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening preference store: %w", err)
	}
	closeFn := func() {
		if err := backend.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing preference store: %v\n", err)
		}
	}
	return preference.NewStore(backend), closeFn, nil
}
