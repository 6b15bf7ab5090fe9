package vibe

import "strings"

// Vibe identifies a writing-style template applied to a completion prompt.
type Vibe string

const (
	Pro        Vibe = "pro"
	Nerdy      Vibe = "nerdy"
	Cyberpunk  Vibe = "cyberpunk"
	UKSlang    Vibe = "uk_slang"
	Unfiltered Vibe = "unfiltered"
)

// Default is used whenever no valid vibe is available.
const Default = Pro

var all = []Vibe{Pro, Nerdy, Cyberpunk, UKSlang, Unfiltered}

// All returns the fixed set of vibes in display order.
func All() []Vibe {
	out := make([]Vibe, len(all))
	copy(out, all)
	return out
}

// Names returns the vibe identifiers joined with ", ", for help and error
// text.
func Names() string {
	names := make([]string, len(all))
	for i, v := range all {
		names[i] = string(v)
	}
	return strings.Join(names, ", ")
}

// Parse lower-cases s and reports whether it names a known vibe.
func Parse(s string) (Vibe, bool) {
	v := Vibe(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range all {
		if v == known {
			return v, true
		}
	}
	return "", false
}

// Resolve is like Parse but never fails: unknown input yields Default.
func Resolve(s string) Vibe {
	if v, ok := Parse(s); ok {
		return v
	}
	return Default
}

// Valid reports whether v is a member of the fixed set.
func (v Vibe) Valid() bool {
	for _, known := range all {
		if v == known {
			return true
		}
	}
	return false
}

func (v Vibe) String() string { return string(v) }
