package viz

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Theme defines the colour scheme of the live view. FieldLow and FieldHigh are
// the two ends of the background noise palette.
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	FieldLow  string
	FieldHigh string
}

var (
	ThemeNight = Theme{
		Name:      "night",
		Primary:   lipgloss.Color("#00ffff"),
		Accent:    lipgloss.Color("#ff00ff"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#666688"),
		Success:   lipgloss.Color("#00ff88"),
		Warning:   lipgloss.Color("#ffaa00"),
		FieldLow:  "#05050f",
		FieldHigh: "#291447",
	}

	ThemeOcean = Theme{
		Name:      "ocean",
		Primary:   lipgloss.Color("#00a8cc"),
		Accent:    lipgloss.Color("#ffd700"),
		Text:      lipgloss.Color("#e0f0ff"),
		Muted:     lipgloss.Color("#4488aa"),
		Success:   lipgloss.Color("#00ff88"),
		Warning:   lipgloss.Color("#ffcc00"),
		FieldLow:  "#000d1a",
		FieldHigh: "#003a5c",
	}

	ThemeSunset = Theme{
		Name:      "sunset",
		Primary:   lipgloss.Color("#ff6b6b"),
		Accent:    lipgloss.Color("#ff9ff3"),
		Text:      lipgloss.Color("#fff5f5"),
		Muted:     lipgloss.Color("#8b6b8c"),
		Success:   lipgloss.Color("#5fd068"),
		Warning:   lipgloss.Color("#ffc048"),
		FieldLow:  "#1a0d1b",
		FieldHigh: "#4d2233",
	}

	Themes = []Theme{ThemeNight, ThemeOcean, ThemeSunset}
)

// GetTheme returns a theme by name, falling back to night.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeNight
}

// Next returns the theme after t in Themes.
func (t Theme) Next() Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

// FieldColor maps a background field value in [0, 1] to a hex colour.
func (t Theme) FieldColor(v float64) string {
	lo, err := colorful.Hex(t.FieldLow)
	if err != nil {
		return t.FieldLow
	}
	hi, err := colorful.Hex(t.FieldHigh)
	if err != nil {
		return t.FieldLow
	}
	return lo.BlendLab(hi, v).Clamped().Hex()
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
