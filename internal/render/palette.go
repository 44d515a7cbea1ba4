package render

import (
	"github.com/charmbracelet/lipgloss"
)

// DefaultThemeName is the palette used when none is configured
const DefaultThemeName = "tokyonight"

// Palette is the color scheme of the terminal interface
type Palette struct {
	Name        string
	Description string

	Surface lipgloss.Color
	Border  lipgloss.Color

	Primary   lipgloss.Color // assistant label, accents
	Secondary lipgloss.Color // user label
	Code      lipgloss.Color // code block fallback foreground
	Warning   lipgloss.Color
	Error     lipgloss.Color

	Text    lipgloss.Color
	TextDim lipgloss.Color
}

var (
	// TokyoNightPalette is the default dark palette
	TokyoNightPalette = Palette{
		Name:        "tokyonight",
		Description: "Tokyo Night, dark with blue accents",

		Surface: lipgloss.Color("#24283b"),
		Border:  lipgloss.Color("#414868"),

		Primary:   lipgloss.Color("#7aa2f7"),
		Secondary: lipgloss.Color("#9ece6a"),
		Code:      lipgloss.Color("#9ece6a"),
		Warning:   lipgloss.Color("#e0af68"),
		Error:     lipgloss.Color("#f7768e"),

		Text:    lipgloss.Color("#c0caf5"),
		TextDim: lipgloss.Color("#565f89"),
	}

	// CatppuccinPalette is based on Catppuccin Mocha
	CatppuccinPalette = Palette{
		Name:        "catppuccin",
		Description: "Catppuccin Mocha, warm pastels",

		Surface: lipgloss.Color("#313244"),
		Border:  lipgloss.Color("#45475a"),

		Primary:   lipgloss.Color("#89b4fa"),
		Secondary: lipgloss.Color("#a6e3a1"),
		Code:      lipgloss.Color("#a6e3a1"),
		Warning:   lipgloss.Color("#f9e2af"),
		Error:     lipgloss.Color("#f38ba8"),

		Text:    lipgloss.Color("#cdd6f4"),
		TextDim: lipgloss.Color("#6c7086"),
	}

	// ClassicPalette mirrors the web page: gray panels and green code
	ClassicPalette = Palette{
		Name:        "classic",
		Description: "Gray panels, green monospace code",

		Surface: lipgloss.Color("#1f2937"),
		Border:  lipgloss.Color("#4b5563"),

		Primary:   lipgloss.Color("#3b82f6"),
		Secondary: lipgloss.Color("#e5e7eb"),
		Code:      lipgloss.Color("#4ade80"),
		Warning:   lipgloss.Color("#facc15"),
		Error:     lipgloss.Color("#ef4444"),

		Text:    lipgloss.Color("#f3f4f6"),
		TextDim: lipgloss.Color("#9ca3af"),
	}
)

// Palettes returns every built-in palette
func Palettes() []Palette {
	return []Palette{TokyoNightPalette, CatppuccinPalette, ClassicPalette}
}

// PaletteByName returns a palette by name
func PaletteByName(name string) (Palette, bool) {
	for _, p := range Palettes() {
		if p.Name == name {
			return p, true
		}
	}
	return Palette{}, false
}

// PaletteOrDefault returns the named palette, falling back to the default
func PaletteOrDefault(name string) Palette {
	if p, ok := PaletteByName(name); ok {
		return p
	}
	return TokyoNightPalette
}

// PaletteNames returns the built-in palette names
func PaletteNames() []string {
	palettes := Palettes()
	names := make([]string, len(palettes))
	for i, p := range palettes {
		names[i] = p.Name
	}
	return names
}
