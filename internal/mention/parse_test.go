package mention

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kalambet/grokvibe/internal/vibe"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Command
	}{
		{"plain", "<@U1> hello team this code is broken",
			PlainTranslate{Text: "hello team this code is broken"}},
		{"no mention token", "  just text  ",
			PlainTranslate{Text: "just text"}},
		{"empty after mention", "<@U1>   ",
			PlainTranslate{Text: ""}},
		{"reverse", "<@U1> >> make this blunt",
			PlainTranslate{Text: "make this blunt", Reverse: true}},
		{"reverse no space", "<@U1> >>make this blunt",
			PlainTranslate{Text: "make this blunt", Reverse: true}},
		{"set default", "<@U1> /vibe set nerdy",
			SetDefaultVibe{Vibe: vibe.Nerdy}},
		{"set default mixed case", "<@U1> /vibe set UK_Slang",
			SetDefaultVibe{Vibe: vibe.UKSlang}},
		{"set default uses last token", "<@U1> /vibe set please cyberpunk",
			SetDefaultVibe{Vibe: vibe.Cyberpunk}},
		{"set default reverse still sets", "<@U1> >> /vibe set pro",
			SetDefaultVibe{Vibe: vibe.Pro}},
		{"set invalid falls through to one-shot split", "<@U1> /vibe set bogus",
			OneShotTranslate{Vibe: "set", Text: "bogus"}},
		{"set prefix is case sensitive", "<@U1> /Vibe set nerdy",
			PlainTranslate{Text: "/Vibe set nerdy"}},
		{"one-shot", "<@U1> /vibe cyberpunk fix this",
			OneShotTranslate{Vibe: "cyberpunk", Text: "fix this"}},
		{"one-shot lower-cases vibe", "<@U1> /vibe NERDY fix  this   mess",
			OneShotTranslate{Vibe: "nerdy", Text: "fix  this   mess"}},
		{"one-shot unknown vibe kept", "<@U1> /vibe shouty fix this",
			OneShotTranslate{Vibe: "shouty", Text: "fix this"}},
		{"one-shot reverse", "<@U1> >> /vibe cyberpunk fix this",
			OneShotTranslate{Vibe: "cyberpunk", Text: "fix this", Reverse: true}},
		{"one-shot too few parts", "<@U1> /vibe cyberpunk",
			PlainTranslate{Text: "/vibe cyberpunk"}},
		{"bare vibe command", "<@U1> /vibe",
			PlainTranslate{Text: "/vibe"}},
		{"later angle brackets kept", "<@U1> a > b",
			PlainTranslate{Text: "a > b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.in))
		})
	}
}

func TestSplitN(t *testing.T) {
	assert.Equal(t, []string{"/vibe", "a", "b  c"}, splitN("/vibe a b  c", 3))
	assert.Equal(t, []string{"/vibe", "a"}, splitN("/vibe   a", 3))
	assert.Equal(t, []string{"x"}, splitN("  x", 3))
	assert.Empty(t, splitN("   ", 3))
	assert.Equal(t, []string{"a", "b\tc d"}, splitN("a\n b\tc d", 2))
}
