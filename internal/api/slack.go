package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/kalambet/grokvibe/internal/dispatch"
	"github.com/kalambet/grokvibe/internal/slackapp"
)

// MentionHandler processes one app_mention event.
type MentionHandler interface {
	Handle(ctx context.Context, ev slackapp.Event) error
}

// Dispatcher runs a task in the background without waiting for it.
type Dispatcher interface {
	Go(name string, task dispatch.Task) string
}

// Deps holds dependencies for the HTTP surface.
type Deps struct {
	ServiceName string
	Verifier    SignatureVerifier
	Mentions    MentionHandler
	Dispatcher  Dispatcher
	Logger      zerolog.Logger
}

// NewRouter returns the service's HTTP handler: liveness, health and the
// Slack Events API endpoint.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(hlog.NewHandler(deps.Logger))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		hlog.FromRequest(r).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Dur("elapsed", d).
			Msg("request")
	}))
	r.Use(middleware.Recoverer)

	r.Get("/", handleRoot(deps.ServiceName))
	r.Get("/health", handleHealth)
	r.With(SlackSignature(deps.Verifier)).Post("/slack/events", handleSlackEvents(deps))

	return r
}

func handleRoot(service string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": service + " is running"})
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSlackEvents answers the URL verification handshake and acknowledges
// events immediately; app_mention events are handled in the background.
func handleSlackEvents(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			httpError(w, http.StatusBadRequest, "reading request body: %v", err)
			return
		}

		var env slackapp.Envelope
		if err := json.Unmarshal(body, &env); err != nil {
			httpError(w, http.StatusBadRequest, "invalid request body: %v", err)
			return
		}

		if env.Type == slackapp.TypeURLVerification {
			challenge := env.Challenge
			if len(challenge) == 0 {
				challenge = json.RawMessage("null")
			}
			writeJSON(w, http.StatusOK, map[string]json.RawMessage{"challenge": challenge})
			return
		}

		if env.EventType() == slackapp.EventAppMention {
			ev := *env.Event
			id := deps.Dispatcher.Go(slackapp.EventAppMention, func(ctx context.Context) error {
				return deps.Mentions.Handle(ctx, ev)
			})
			hlog.FromRequest(r).Debug().
				Str("event_id", id).
				Str("slack_event_id", env.EventID).
				Str("channel", ev.Channel).
				Msg("app_mention queued")
		}

		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, format string, args ...any) {
	writeJSON(w, code, map[string]string{"detail": fmt.Sprintf(format, args...)})
}
