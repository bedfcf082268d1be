package viz

import "github.com/charmbracelet/lipgloss"

// Theme colours the live view's bodies and chrome.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Dynamic lipgloss.Color
	Burst   lipgloss.Color
	Trail   lipgloss.Color
	Flash   lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
}

var (
	ThemeNebula = Theme{
		Name:    "nebula",
		Primary: lipgloss.Color("#ffff96"),
		Dynamic: lipgloss.Color("#0096ff"),
		Burst:   lipgloss.Color("#ffd27f"),
		Trail:   lipgloss.Color("#1f4f7f"),
		Flash:   lipgloss.Color("#ffffff"),
		Text:    lipgloss.Color("#e0f0ff"),
		Muted:   lipgloss.Color("#4488aa"),
	}

	ThemeRetro = Theme{
		Name:    "retro",
		Primary: lipgloss.Color("#88ff88"),
		Dynamic: lipgloss.Color("#00cc00"),
		Burst:   lipgloss.Color("#ffff00"),
		Trail:   lipgloss.Color("#005500"),
		Flash:   lipgloss.Color("#ccffcc"),
		Text:    lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#005500"),
	}

	ThemeMinimal = Theme{
		Name:    "minimal",
		Primary: lipgloss.Color("#ffffff"),
		Dynamic: lipgloss.Color("#cccccc"),
		Burst:   lipgloss.Color("#0088ff"),
		Trail:   lipgloss.Color("#555555"),
		Flash:   lipgloss.Color("#0088ff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#888888"),
	}

	// Default theme
	CurrentTheme = ThemeNebula

	Themes = []Theme{
		ThemeNebula,
		ThemeRetro,
		ThemeMinimal,
	}
)

// GetTheme returns a theme by name
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeNebula
}

// SetTheme changes the current theme
func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme returns the theme after current, wrapping around.
func NextTheme(current Theme) Theme {
	for i, t := range Themes {
		if t.Name == current.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

// ThemeNames returns list of available theme names
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
