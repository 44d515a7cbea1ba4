package render

import (
	"testing"

	"github.com/diogo/zaril/internal/config"
)

func TestOptionsFromConfig(t *testing.T) {
	t.Setenv("GLAMOUR_STYLE", "")

	cfg := config.DefaultConfig()
	cfg.CodeStyle = "light"
	cfg.TUITheme = "classic"

	opts := OptionsFromConfig(cfg)
	if opts.CodeStyle != "light" || opts.Theme != "classic" {
		t.Errorf("unexpected options %+v", opts)
	}

	empty := OptionsFromConfig(config.Config{})
	if empty != DefaultOptions() {
		t.Errorf("empty config should give defaults, got %+v", empty)
	}
}

func TestOptionsFromConfigEnvOverride(t *testing.T) {
	t.Setenv("GLAMOUR_STYLE", "dracula")

	opts := OptionsFromConfig(config.DefaultConfig())
	if opts.CodeStyle != "dracula" {
		t.Errorf("expected GLAMOUR_STYLE to win, got %q", opts.CodeStyle)
	}
}
