// Package render draws formatted chat messages for terminal output.
package render

// Options configures message rendering
type Options struct {
	// Width is the wrap width of a message body (default: 80)
	Width int

	// CodeStyle is the glamour style used for code blocks: a built-in style
	// name such as "dark" or "light", or a path to a JSON style file
	CodeStyle string

	// Theme is the TUI palette name
	Theme string
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{
		Width:     80,
		CodeStyle: "dark",
		Theme:     DefaultThemeName,
	}
}

// WithWidth returns Options with the specified width.
func (o Options) WithWidth(width int) Options {
	o.Width = width
	return o
}

// WithCodeStyle returns Options with the specified code block style.
func (o Options) WithCodeStyle(style string) Options {
	o.CodeStyle = style
	return o
}

// WithTheme returns Options with the specified palette.
func (o Options) WithTheme(name string) Options {
	o.Theme = name
	return o
}

// normalized fills zero values with defaults
func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.CodeStyle == "" {
		o.CodeStyle = d.CodeStyle
	}
	if o.Theme == "" {
		o.Theme = d.Theme
	}
	return o
}
