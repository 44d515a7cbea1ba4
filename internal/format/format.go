// Package format turns raw assistant text into its display form.
//
// Everything here is a pure, total function over arbitrary strings. The only
// markup FormatProse and Display.HTML can emit is <li>, </li>, <br />, <pre>
// and </pre>; every other markup character in the input is escaped.
package format

import (
	"html"
	"regexp"
	"strings"
)

// Fence marks a code block in model output
const Fence = "```"

// Markup emitted by FormatProse and Display.HTML
const (
	ItemOpen  = "<li>"
	ItemClose = "</li>"
	LineBreak = "<br />"
	PreOpen   = "<pre>"
	PreClose  = "</pre>"
)

var (
	controlSymbols = strings.NewReplacer("*", "", "`", "")
	listItem       = regexp.MustCompile(`^[ \t]*\d+\.[ \t]+(.+)$`)
)

// StripControlSymbols removes every '*' and '`'
func StripControlSymbols(text string) string {
	return controlSymbols.Replace(text)
}

// IsCodeLike reports whether text contains a code fence. Call it on the raw,
// unstripped text.
func IsCodeLike(text string) bool {
	return strings.Contains(text, Fence)
}

// Line is one line of prose
type Line struct {
	Text string
	// Item is set for "<n>. text" lines; Text then holds only the text.
	Item bool
}

// ProseLines splits text into lines and marks numbered list items. Item
// numbers are dropped and lines keep their order.
func ProseLines(text string) []Line {
	raw := strings.Split(text, "\n")
	lines := make([]Line, len(raw))
	for i, l := range raw {
		if m := listItem.FindStringSubmatch(l); m != nil {
			lines[i] = Line{Text: m[1], Item: true}
			continue
		}
		lines[i] = Line{Text: l}
	}
	return lines
}

// FormatProse escapes text, wraps numbered list lines in <li></li> and turns
// every newline into <br />.
func FormatProse(text string) string {
	lines := ProseLines(text)

	var b strings.Builder
	b.Grow(len(text) + len(lines)*len(LineBreak))
	for i, l := range lines {
		if i > 0 {
			b.WriteString(LineBreak)
		}
		if l.Item {
			b.WriteString(ItemOpen)
			b.WriteString(html.EscapeString(l.Text))
			b.WriteString(ItemClose)
			continue
		}
		b.WriteString(html.EscapeString(l.Text))
	}
	return b.String()
}

// Display is the presentation form of one message
type Display struct {
	// Code selects a monospace block instead of prose.
	Code bool
	// Text is stripped of fences and control symbols.
	Text string
}

// Format computes the display form of raw message content
func Format(raw string) Display {
	if IsCodeLike(raw) {
		return Display{
			Code: true,
			Text: StripControlSymbols(strings.ReplaceAll(raw, Fence, "")),
		}
	}
	return Display{Text: StripControlSymbols(raw)}
}

// HTML returns the markup for d
func (d Display) HTML() string {
	if d.Code {
		return PreOpen + html.EscapeString(d.Text) + PreClose
	}
	return FormatProse(d.Text)
}

// Plain returns d as plain text, numbered items shown as bullets
func (d Display) Plain() string {
	if d.Code {
		return d.Text
	}
	lines := ProseLines(d.Text)
	out := make([]string, len(lines))
	for i, l := range lines {
		if l.Item {
			out[i] = "• " + l.Text
			continue
		}
		out[i] = l.Text
	}
	return strings.Join(out, "\n")
}
