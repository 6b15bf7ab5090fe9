package mention

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kalambet/grokvibe/internal/slackapp"
	"github.com/kalambet/grokvibe/internal/vibe"
)

const (
	confirmFormat  = "Default vibe set to *%s*"
	fallbackSuffix = "\n\n_[Translation unavailable - showing original]_"
)

// Preferences reads and writes per-user default vibes.
type Preferences interface {
	Vibe(ctx context.Context, userID string) vibe.Vibe
	SetVibe(ctx context.Context, userID string, v vibe.Vibe) bool
}

// Completer turns a prompt into generated text. ok is false when no text
// is available.
type Completer interface {
	Complete(ctx context.Context, prompt string) (text string, ok bool)
}

// Replier posts a threaded reply.
type Replier interface {
	PostReply(ctx context.Context, channel, threadTS, text string) error
}

// Handler turns one app_mention event into exactly one reply.
type Handler struct {
	prefs     Preferences
	completer Completer
	replier   Replier
	logger    zerolog.Logger
}

// NewHandler creates a Handler with the given collaborators.
func NewHandler(prefs Preferences, completer Completer, replier Replier) *Handler {
	return &Handler{
		prefs:     prefs,
		completer: completer,
		replier:   replier,
		logger:    log.Logger.With().Str("component", "mention").Logger(),
	}
}

// Handle processes ev. Preference and completion failures are absorbed; the
// only error returned is a failure to post the reply.
func (h *Handler) Handle(ctx context.Context, ev slackapp.Event) error {
	logger := h.loggerFor(ctx).With().Str("user", ev.User).Str("channel", ev.Channel).Logger()

	reply := h.Reply(ctx, ev.User, ev.Text)

	if err := h.replier.PostReply(ctx, ev.Channel, ev.ThreadAnchor(), reply); err != nil {
		logger.Error().Err(err).Msg("posting reply")
		return err
	}
	logger.Debug().Msg("reply posted")
	return nil
}

// Reply computes the reply text for a mention from userID without posting
// it. It makes at most one completion call.
func (h *Handler) Reply(ctx context.Context, userID, text string) string {
	logger := h.loggerFor(ctx)

	var (
		input   string
		v       vibe.Vibe
		reverse bool
	)
	switch cmd := Parse(text).(type) {
	case SetDefaultVibe:
		if !h.prefs.SetVibe(ctx, userID, cmd.Vibe) {
			logger.Warn().Str("user", userID).Str("vibe", string(cmd.Vibe)).Msg("default vibe not persisted")
		}
		return fmt.Sprintf(confirmFormat, cmd.Vibe)
	case OneShotTranslate:
		input, v, reverse = cmd.Text, vibe.Resolve(cmd.Vibe), cmd.Reverse
	case PlainTranslate:
		input, v, reverse = cmd.Text, h.prefs.Vibe(ctx, userID), cmd.Reverse
	}

	logger.Debug().Str("user", userID).Str("vibe", string(v)).Bool("reverse", reverse).Msg("translating")

	prompt := vibe.BuildPrompt(input, v, reverse)
	translated, ok := h.completer.Complete(ctx, prompt)
	if !ok {
		return input + fallbackSuffix
	}
	return translated
}

func (h *Handler) loggerFor(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &h.logger
}
