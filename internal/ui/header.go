package ui

import (
	"fmt"
	"strings"

	"github.com/five82/shelf/internal/cart"
	"github.com/five82/shelf/internal/product"
)

// renderHeader renders the logo, view tabs and the session/cart summary.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)

	segments := []string{bg.Render("shelf", styles.Logo)}

	for i, v := range viewOrder {
		label := fmt.Sprintf("%d %s", i+1, v)
		if v == m.currentView {
			segments = append(segments, bg.Render(label, styles.AccentText.Bold(true)))
		} else {
			segments = append(segments, bg.Render(label, styles.MutedText))
		}
	}

	user := "guest"
	if u, ok := m.session.CurrentUser(); ok {
		user = u.DisplayName()
	}
	segments = append(segments, bg.Render(user, styles.InfoText))

	if m.cart != nil {
		segments = append(segments, bg.Render(
			fmt.Sprintf("cart %d · %s", m.cart.Count(), cart.FormatMoney(m.cart.Total())), styles.Text))
	}
	if m.wishlist != nil {
		segments = append(segments, bg.Render(fmt.Sprintf("♥ %d", m.wishlist.Len()), styles.Text))
	}

	if status := m.connectionStatus(styles, bg); status != "" {
		segments = append(segments, status)
	}

	return styles.Header.Width(m.width).Render(strings.Join(segments, sep))
}

func (m Model) connectionStatus(styles Styles, bg BgStyle) string {
	switch {
	case m.loading:
		return bg.Render("loading", styles.WarningText)
	case m.snapshot.IsOffline():
		return bg.Render("offline", styles.DangerText)
	case m.snapshot.LastError != nil:
		return bg.Render("retrying", styles.WarningText)
	case !m.snapshot.LastUpdated.IsZero():
		return bg.Render("updated "+m.snapshot.LastUpdated.Local().Format("15:04:05"), styles.FaintText)
	default:
		return ""
	}
}

// renderCommandBar shows the keys that work in the current view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewCart:
		commands = []cmd{
			{"j/k", "Navigate"},
			{"+/-", "Quantity"},
			{"x", "Remove"},
			{"X", "Clear"},
		}
	case ViewWishlist:
		commands = []cmd{
			{"j/k", "Navigate"},
			{"a", "Add to cart"},
			{"x", "Remove"},
		}
	case ViewActivity:
		commands = []cmd{
			{"j/k", "Scroll"},
			{"esc", "Catalog"},
		}
	default:
		category := m.query.Category
		if category == "" || category == product.AllCategories {
			category = "All"
		} else {
			category = product.NormalizeCategory(category).Name
		}
		commands = []cmd{
			{"c", truncate(category, 18)},
			{"s", m.query.Sort.Label()},
			{"/", "Search"},
			{"a", "Cart"},
			{"w", "Wishlist"},
			{"n/p", "Page"},
			{"enter", "Details"},
		}
		if m.session.UserID() != 0 {
			commands = append(commands, cmd{"N/E/D/R", "New/Edit/Delete/Revert"})
		}
	}

	if m.session.UserID() == 0 {
		commands = append(commands, cmd{"L", "Sign in"})
	} else {
		commands = append(commands, cmd{"O", "Sign out"})
	}
	commands = append(commands, cmd{"?", "More"})

	colon := bg.Sep(":")
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, bg.Spaces(2)))
}

// truncate shortens s to max runes with a trailing ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
