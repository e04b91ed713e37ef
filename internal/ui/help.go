package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type helpSection struct {
	title string
	items []helpItem
}

type helpItem struct {
	key  string
	desc string
}

var helpSections = []helpSection{
	{
		title: "Navigation",
		items: []helpItem{
			{"1-4/tab", "Catalog/Cart/Wishlist/Activity"},
			{"esc", "Return to catalog"},
			{"j/k", "Move up/down"},
			{"g/G", "Go to top/bottom"},
		},
	},
	{
		title: "Catalog",
		items: []helpItem{
			{"c/C", "Next/prev category"},
			{"s", "Cycle sort"},
			{"/", "Search titles"},
			{"n/p", "Next/prev page"},
			{"a", "Add to cart"},
			{"w", "Toggle wishlist"},
			{"enter", "Product details"},
			{"r", "Reload"},
			{"N/E/D", "New/edit/delete product"},
			{"R", "Revert local edits"},
			{"U", "Undo last delete"},
		},
	},
	{
		title: "Cart",
		items: []helpItem{
			{"+/-", "Change quantity"},
			{"x/X", "Remove/clear"},
		},
	},
	{
		title: "General",
		items: []helpItem{
			{"L/O", "Sign in/out"},
			{"T", "Cycle theme"},
			{"?", "Toggle help"},
			{"q/ctrl+c", "Quit"},
		},
	},
}

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Warning)).
		Width(12)

	for i, section := range helpSections {
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")
		for _, item := range section.items {
			b.WriteString(keyStyle.Render(item.key))
			b.WriteString(styles.Text.Render(item.desc))
			b.WriteString("\n")
		}
		if i < len(helpSections)-1 {
			b.WriteString("\n")
		}
	}

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(48)

	return m.place(modal.Render(b.String()))
}
