package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shelf/internal/product"
)

// Theme defines colors for the UI.
type Theme struct {
	Name string

	// Base colors
	Background string // Outermost background
	Surface    string // Main content panels
	SurfaceAlt string // Secondary surfaces
	FocusBg    string // Focus/active states

	SelectionBg   string
	SelectionText string

	Border      string
	BorderFocus string

	// Text colors
	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	// StockColors maps product.StockStatus values to badge colors.
	StockColors map[string]string
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Surface: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)),

		Text: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Text)),

		MutedText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),

		FaintText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Faint)),

		AccentText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)),

		SuccessText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)).
			Bold(true),

		WarningText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)),

		DangerText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Danger)).
			Bold(true),

		InfoText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Info)),

		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),

		Logo: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)).
			Bold(true),

		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SelectionBg)).
			Foreground(lipgloss.Color(t.SelectionText)),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Border)).
			Padding(0, 1),

		stockColors: t.StockColors,
		background:  t.Background,
		muted:       t.Muted,
	}
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Surface lipgloss.Style

	// Text
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	// Components
	Header   lipgloss.Style
	Logo     lipgloss.Style
	Selected lipgloss.Style
	Panel    lipgloss.Style

	stockColors map[string]string
	background  string
	muted       string
}

// StockStyle returns the badge style for a product.StockStatus value.
func (s Styles) StockStyle(status string) lipgloss.Style {
	color := s.stockColors[status]
	if color == "" {
		color = s.muted
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.background)).
		Background(lipgloss.Color(color)).
		Padding(0, 1)
}

// WithBackground returns a copy of Styles whose text styles carry bgColor
// instead of inheriting the terminal background.
func (s Styles) WithBackground(bgColor string) Styles {
	bg := lipgloss.Color(bgColor)
	out := s
	out.Surface = s.Surface.Background(bg)
	out.Text = s.Text.Background(bg)
	out.MutedText = s.MutedText.Background(bg)
	out.FaintText = s.FaintText.Background(bg)
	out.AccentText = s.AccentText.Background(bg)
	out.SuccessText = s.SuccessText.Background(bg)
	out.WarningText = s.WarningText.Background(bg)
	out.DangerText = s.DangerText.Background(bg)
	out.InfoText = s.InfoText.Background(bg)
	out.Header = s.Header.Background(bg)
	out.Logo = s.Logo.Background(bg)
	return out
}

var themes = map[string]Theme{
	"Dracula":  draculaTheme(),
	"Nightfox": nightfoxTheme(),
	"Slate":    slateTheme(),
}

var themeOrder = []string{"Dracula", "Nightfox", "Slate"}

// GetTheme returns a theme by name, falling back to Dracula.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return draculaTheme()
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return append([]string(nil), themeOrder...)
}

func draculaTheme() Theme {
	// Dracula palette: https://draculatheme.com/spec
	return Theme{
		Name: "Dracula",

		Background: "#191A21", // BGDarker
		Surface:    "#282A36", // Background
		SurfaceAlt: "#21222C", // BGDark
		FocusBg:    "#343746", // BGLight

		SelectionBg:   "#44475A", // Selection
		SelectionText: "#F8F8F2", // Foreground

		Border:      "#44475A",
		BorderFocus: "#BD93F9", // Purple

		Text:    "#F8F8F2",
		Muted:   "#6272A4", // Comment
		Faint:   "#44475A",
		Accent:  "#BD93F9", // Purple
		Success: "#50FA7B", // Green
		Warning: "#FFB86C", // Orange
		Danger:  "#FF5555", // Red
		Info:    "#8BE9FD", // Cyan

		StockColors: map[string]string{
			product.InStock:    "#50FA7B",
			product.LowStock:   "#FFB86C",
			product.OutOfStock: "#FF5555",
		},
	}
}

func nightfoxTheme() Theme {
	// Nightfox palette: https://github.com/EdenEast/nightfox.nvim
	return Theme{
		Name: "Nightfox",

		Background: "#131a24", // bg0
		Surface:    "#192330", // bg1
		SurfaceAlt: "#212e3f", // bg2
		FocusBg:    "#29394f", // bg3

		SelectionBg:   "#2b3b51", // sel0
		SelectionText: "#cdcecf", // fg1

		Border:      "#39506d", // bg4
		BorderFocus: "#719cd6", // blue

		Text:    "#cdcecf",
		Muted:   "#738091", // comment
		Faint:   "#71839b", // fg3
		Accent:  "#719cd6",
		Success: "#81b29a",
		Warning: "#dbc074",
		Danger:  "#c94f6d",
		Info:    "#63cdcf",

		StockColors: map[string]string{
			product.InStock:    "#81b29a",
			product.LowStock:   "#dbc074",
			product.OutOfStock: "#c94f6d",
		},
	}
}

func slateTheme() Theme {
	// Tailwind CSS Slate/Sky palette: https://tailwindcss.com/docs/colors
	return Theme{
		Name: "Slate",

		Background: "#020617", // slate-950
		Surface:    "#0f172a", // slate-900
		SurfaceAlt: "#1e293b", // slate-800
		FocusBg:    "#283548",

		SelectionBg:   "#0284c7", // sky-600
		SelectionText: "#f8fafc", // slate-50

		Border:      "#334155", // slate-700
		BorderFocus: "#38bdf8", // sky-400

		Text:    "#f1f5f9",
		Muted:   "#94a3b8",
		Faint:   "#64748b",
		Accent:  "#38bdf8",
		Success: "#22c55e",
		Warning: "#f59e0b",
		Danger:  "#ef4444",
		Info:    "#06b6d4",

		StockColors: map[string]string{
			product.InStock:    "#16a34a",
			product.LowStock:   "#ea580c",
			product.OutOfStock: "#dc2626",
		},
	}
}
