// Package present renders pipeline output as lipgloss cards on a terminal.
package present

import "github.com/charmbracelet/lipgloss"

// Palette is the color scheme for one theme.
type Palette struct {
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Accent     lipgloss.Color
	Favorite   lipgloss.Color
	Error      lipgloss.Color
	IsDark     bool
}

// LightPalette is the default theme.
func LightPalette() Palette {
	return Palette{
		Foreground: lipgloss.Color("#101F38"),
		Muted:      lipgloss.Color("#6b7280"),
		Border:     lipgloss.Color("#dce0e5"),
		Accent:     lipgloss.Color("#3b4cca"),
		Favorite:   lipgloss.Color("#e3350d"),
		Error:      lipgloss.Color("#e53935"),
	}
}

// DarkPalette is used when the dark mode preference is set.
func DarkPalette() Palette {
	return Palette{
		Foreground: lipgloss.Color("#f2f2f2"),
		Muted:      lipgloss.Color("#9ca3af"),
		Border:     lipgloss.Color("#2a3850"),
		Accent:     lipgloss.Color("#ffcb05"),
		Favorite:   lipgloss.Color("#ff6b6b"),
		Error:      lipgloss.Color("#ff5252"),
		IsDark:     true,
	}
}

// PaletteFor picks the palette for the stored preference.
func PaletteFor(dark bool) Palette {
	if dark {
		return DarkPalette()
	}
	return LightPalette()
}

// typeColors follow the usual per-type badge colors.
var typeColors = map[string]lipgloss.Color{
	"normal":   lipgloss.Color("#A8A77A"),
	"fire":     lipgloss.Color("#EE8130"),
	"water":    lipgloss.Color("#6390F0"),
	"electric": lipgloss.Color("#F7D02C"),
	"grass":    lipgloss.Color("#7AC74C"),
	"ice":      lipgloss.Color("#96D9D6"),
	"fighting": lipgloss.Color("#C22E28"),
	"poison":   lipgloss.Color("#A33EA1"),
	"ground":   lipgloss.Color("#E2BF65"),
	"flying":   lipgloss.Color("#A98FF3"),
	"psychic":  lipgloss.Color("#F95587"),
	"bug":      lipgloss.Color("#A6B91A"),
	"rock":     lipgloss.Color("#B6A136"),
	"ghost":    lipgloss.Color("#735797"),
	"dragon":   lipgloss.Color("#6F35FC"),
	"dark":     lipgloss.Color("#705746"),
	"steel":    lipgloss.Color("#B7B7CE"),
	"fairy":    lipgloss.Color("#D685AD"),
}

func typeColor(name string, p Palette) lipgloss.Color {
	if c, ok := typeColors[name]; ok {
		return c
	}
	return p.Muted
}
