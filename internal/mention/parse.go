package mention

import (
	"strings"
	"unicode"

	"github.com/kalambet/grokvibe/internal/vibe"
)

const (
	reverseMarker    = ">>"
	setDefaultPrefix = "/vibe set "
	oneShotPrefix    = "/vibe "
)

// Command is the structured form of a mention's text. It is one of
// SetDefaultVibe, OneShotTranslate or PlainTranslate.
type Command interface {
	command()
}

// SetDefaultVibe persists Vibe as the sender's default.
type SetDefaultVibe struct {
	Vibe vibe.Vibe
}

// OneShotTranslate rewrites Text using Vibe for this message only. Vibe is
// lower-cased but not validated.
type OneShotTranslate struct {
	Vibe    string
	Text    string
	Reverse bool
}

// PlainTranslate rewrites Text using the sender's default vibe.
type PlainTranslate struct {
	Text    string
	Reverse bool
}

func (SetDefaultVibe) command()   {}
func (OneShotTranslate) command() {}
func (PlainTranslate) command()   {}

// rule inspects text and returns a command, or false to defer to the next rule.
type rule func(text string, reverse bool) (Command, bool)

var rules = []rule{
	setDefaultRule,
	oneShotRule,
}

// Parse turns raw mention text into a Command. The leading mention token
// (everything up to the first '>') is discarded, then a leading ">>" marks a
// reverse rewrite, then the rules are tried in order.
func Parse(raw string) Command {
	text := stripMention(raw)

	reverse := false
	if strings.HasPrefix(text, reverseMarker) {
		reverse = true
		text = strings.TrimSpace(text[len(reverseMarker):])
	}

	for _, r := range rules {
		if cmd, ok := r(text, reverse); ok {
			return cmd
		}
	}
	return PlainTranslate{Text: text, Reverse: reverse}
}

func stripMention(raw string) string {
	if i := strings.IndexByte(raw, '>'); i >= 0 {
		raw = raw[i+1:]
	}
	return strings.TrimSpace(raw)
}

// setDefaultRule matches "/vibe set <vibe>". The last token names the vibe;
// an unknown vibe does not match so the message is translated instead.
func setDefaultRule(text string, _ bool) (Command, bool) {
	if !strings.HasPrefix(text, setDefaultPrefix) {
		return nil, false
	}
	fields := strings.Fields(text)
	v, ok := vibe.Parse(fields[len(fields)-1])
	if !ok {
		return nil, false
	}
	return SetDefaultVibe{Vibe: v}, true
}

// oneShotRule matches "/vibe <vibe> <text...>".
func oneShotRule(text string, reverse bool) (Command, bool) {
	if !strings.HasPrefix(text, oneShotPrefix) {
		return nil, false
	}
	parts := splitN(text, 3)
	if len(parts) < 3 {
		return nil, false
	}
	return OneShotTranslate{
		Vibe:    strings.ToLower(parts[1]),
		Text:    parts[2],
		Reverse: reverse,
	}, true
}

// splitN splits s on runs of whitespace into at most n parts. The last part
// holds the remainder with its inner whitespace intact.
func splitN(s string, n int) []string {
	var parts []string
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	for s != "" {
		if len(parts) == n-1 {
			parts = append(parts, s)
			break
		}
		end := strings.IndexFunc(s, unicode.IsSpace)
		if end < 0 {
			parts = append(parts, s)
			break
		}
		parts = append(parts, s[:end])
		s = strings.TrimLeftFunc(s[end:], unicode.IsSpace)
	}
	return parts
}
