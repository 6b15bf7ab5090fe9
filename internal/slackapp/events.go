package slackapp

import "encoding/json"

// Envelope and inner event types handled by the service.
const (
	TypeURLVerification = "url_verification"
	EventAppMention     = "app_mention"
)

// Envelope is the outer Events API payload. Only the fields the service
// reads are modelled.
type Envelope struct {
	Type      string          `json:"type"`
	Challenge json.RawMessage `json:"challenge,omitempty"`
	EventID   string          `json:"event_id,omitempty"`
	Event     *Event          `json:"event,omitempty"`
}

// Event is an inner event. For app_mention, Text begins with the bot's
// mention token, e.g. "<@U123> hello".
type Event struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	User     string `json:"user"`
	Channel  string `json:"channel"`
	TS       string `json:"ts"`
	ThreadTS string `json:"thread_ts,omitempty"`
}

// ThreadAnchor returns the timestamp a reply should be threaded under: the
// existing thread if there is one, otherwise the event itself.
func (e Event) ThreadAnchor() string {
	if e.ThreadTS != "" {
		return e.ThreadTS
	}
	return e.TS
}

// EventType returns the inner event type, or "" when the envelope has none.
func (e Envelope) EventType() string {
	if e.Event == nil {
		return ""
	}
	return e.Event.Type
}
