package vibe

import "fmt"

var templates = map[Vibe]string{
	Pro: `Translate this to professional, concise business English. Keep it direct and actionable.

Message: %s

Professional version:`,

	Nerdy: `Remix this with sci-fi/tech humor. Keep it clear but fun. Think Star Trek or general nerd culture.

Message: %s

Nerdy version:`,

	Cyberpunk: `Transform this to cyberpunk style: gritty, neon-lit, street slang. Think Neuromancer or Blade Runner.

Message: %s

Cyberpunk version:`,

	UKSlang: `Rewrite in cheeky British pub slang. Use 'proper', 'mate', 'bollocks', etc. Keep it work-appropriate.

Message: %s

British version:`,

	Unfiltered: `Keep the raw, honest voice. Be direct and clear, drop corporate speak.

Message: %s

Unfiltered version:`,
}

const reverseTemplate = `Translate this formal message back to raw, unfiltered language. Be direct, drop the polish.

Message: %s

Raw version:`

// BuildPrompt embeds text into the template for v. When reverse is set the
// vibe is ignored and the reverse template is used. Unknown vibes use the
// Pro template. text is inserted verbatim.
func BuildPrompt(text string, v Vibe, reverse bool) string {
	if reverse {
		return fmt.Sprintf(reverseTemplate, text)
	}
	tmpl, ok := templates[v]
	if !ok {
		tmpl = templates[Default]
	}
	return fmt.Sprintf(tmpl, text)
}
