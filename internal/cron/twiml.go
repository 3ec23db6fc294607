package cron

import "strings"

// xmlEscaper replaces the five XML metacharacters with their named
// entities. The greeting is user-influenced text embedded into a markup
// payload, so escaping here is a correctness and safety requirement.
var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// EscapeXML escapes text for safe interpolation into a markup payload
func EscapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

// BuildVoiceResponse builds the telephony voice-response document: a spoken
// greeting followed by a speech-gathering directive
func BuildVoiceResponse(greeting string) string {
	escaped := EscapeXML(greeting)
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString(`<Response>`)
	b.WriteString(`<Say voice="alice">`)
	b.WriteString(escaped)
	b.WriteString(`</Say>`)
	b.WriteString(`<Gather input="speech" timeout="5">`)
	b.WriteString(`<Say voice="alice">Say a command, or hang up to snooze.</Say>`)
	b.WriteString(`</Gather>`)
	b.WriteString(`</Response>`)
	return b.String()
}
