package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/zaril/internal/format"
	"github.com/diogo/zaril/internal/models"
)

const bullet = "• "

// Code renders text as a code block. If glamour cannot render it, the block
// is drawn with the palette's code color instead.
func Code(text string, opts Options) (string, error) {
	opts = opts.normalized()

	renderer, err := globalPool.get(opts)
	if err != nil {
		return codeFallback(text, opts), err
	}
	defer globalPool.put(opts, renderer)

	out, err := renderer.Render(format.Fence + "\n" + strings.TrimRight(text, "\n") + "\n" + format.Fence + "\n")
	if err != nil {
		return codeFallback(text, opts), err
	}
	return strings.Trim(out, "\n"), nil
}

func codeFallback(text string, opts Options) string {
	p := PaletteOrDefault(opts.Theme)
	return lipgloss.NewStyle().
		Foreground(p.Code).
		Background(p.Surface).
		Padding(0, 1).
		Render(strings.TrimRight(text, "\n"))
}

// Prose renders prose wrapped to opts.Width. Numbered items become bullets
// with a hanging indent.
func Prose(text string, opts Options) string {
	opts = opts.normalized()
	p := PaletteOrDefault(opts.Theme)

	textStyle := lipgloss.NewStyle().Foreground(p.Text)
	bulletStyle := lipgloss.NewStyle().Foreground(p.Primary)
	itemWidth := opts.Width - lipgloss.Width(bullet)
	if itemWidth < 1 {
		itemWidth = 1
	}

	lines := format.ProseLines(text)
	out := make([]string, len(lines))
	for i, l := range lines {
		if l.Item {
			out[i] = lipgloss.JoinHorizontal(lipgloss.Top,
				bulletStyle.Render(bullet),
				textStyle.Width(itemWidth).Render(l.Text),
			)
			continue
		}
		if l.Text == "" {
			continue
		}
		out[i] = textStyle.Width(opts.Width).Render(l.Text)
	}
	return strings.Join(out, "\n")
}

// Display renders a post-processed message body
func Display(d format.Display, opts Options) (string, error) {
	if d.Code {
		return Code(d.Text, opts)
	}
	return Prose(d.Text, opts), nil
}

// Message renders the body of m
func Message(m models.Message, opts Options) (string, error) {
	return Display(format.Format(m.Content), opts)
}
