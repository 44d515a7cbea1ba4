package render

import (
	"os"

	"github.com/diogo/zaril/internal/config"
)

// OptionsFromConfig builds render options from the user configuration.
// GLAMOUR_STYLE takes precedence over the configured code style.
func OptionsFromConfig(cfg config.Config) Options {
	opts := DefaultOptions()

	if cfg.CodeStyle != "" {
		opts.CodeStyle = cfg.CodeStyle
	}
	if cfg.TUITheme != "" {
		opts.Theme = cfg.TUITheme
	}

	if style := os.Getenv("GLAMOUR_STYLE"); style != "" {
		opts.CodeStyle = style
	}

	return opts
}
