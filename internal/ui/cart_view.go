package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/shelf/internal/cart"
)

// handleCartKey processes keyboard input for the cart view.
func (m Model) handleCartKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := m.cart.Entries()
	if len(entries) == 0 {
		return m, nil
	}
	m.cartRow = clamp(m.cartRow, len(entries))
	entry := entries[m.cartRow]

	var err error
	switch msg.String() {
	case "j", "down":
		if m.cartRow < len(entries)-1 {
			m.cartRow++
		}
	case "k", "up":
		if m.cartRow > 0 {
			m.cartRow--
		}
	case "+", "=":
		err = m.cart.SetQuantity(entry.Product.ID, entry.Quantity+1)
	case "-":
		err = m.cart.SetQuantity(entry.Product.ID, entry.Quantity-1)
	case "x", "delete":
		err = m.cart.Remove(entry.Product.ID)
		if err == nil {
			m.setFlash(fmt.Sprintf("Removed %s.", entry.Product.Title), false)
		}
	case "X":
		err = m.cart.Clear()
		if err == nil {
			m.setFlash("Cart cleared.", false)
		}
	}
	if err != nil {
		m.setFlash("Cart is still loading.", true)
	}
	m.cartRow = clamp(m.cartRow, len(m.cart.Entries()))
	return m, nil
}

// handleWishlistKey processes keyboard input for the wishlist view.
func (m Model) handleWishlistKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.wishlist.Items()
	if len(items) == 0 {
		return m, nil
	}
	m.wishRow = clamp(m.wishRow, len(items))
	item := items[m.wishRow]

	var err error
	switch msg.String() {
	case "j", "down":
		if m.wishRow < len(items)-1 {
			m.wishRow++
		}
	case "k", "up":
		if m.wishRow > 0 {
			m.wishRow--
		}
	case "a":
		err = m.cart.Add(item)
		if err == nil {
			m.setFlash(fmt.Sprintf("Added %s to cart.", item.Title), false)
		}
	case "x", "delete":
		err = m.wishlist.Remove(item.ID)
	case "X":
		err = m.wishlist.Clear()
	}
	if err != nil {
		m.setFlash("Still loading saved data.", true)
	}
	m.wishRow = clamp(m.wishRow, m.wishlist.Len())
	return m, nil
}

// renderCart renders cart lines and the total.
func (m Model) renderCart() string {
	styles := m.theme.Styles()
	entries := m.cart.Entries()

	var b strings.Builder
	if len(entries) == 0 {
		b.WriteString(styles.MutedText.Render("Your cart is empty. Press a on a product to add it."))
		b.WriteString("\n")
		if m.flash != "" {
			b.WriteString(m.renderFlash(styles) + "\n")
		}
		return b.String()
	}

	titleWidth := max(m.width-40, 16)
	b.WriteString(styles.FaintText.Render(fmt.Sprintf("  %-*s %5s %10s %11s", titleWidth, "ITEM", "QTY", "PRICE", "SUBTOTAL")))
	b.WriteString("\n")
	for i, e := range entries {
		line := fmt.Sprintf("  %-*s %5d %10s %11s",
			titleWidth, truncate(e.Product.Title, titleWidth),
			e.Quantity,
			formatPrice(e.Product.Price),
			cart.FormatMoney(e.Subtotal()),
		)
		if i == m.cartRow {
			b.WriteString(styles.Selected.Render(line))
		} else {
			b.WriteString(styles.Text.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.Text.Bold(true).Render(fmt.Sprintf("  %d items  total %s", m.cart.Count(), cart.FormatMoney(m.cart.Total()))))
	b.WriteString("\n")
	if m.flash != "" {
		b.WriteString(m.renderFlash(styles) + "\n")
	}
	return b.String()
}

// renderWishlist renders saved products.
func (m Model) renderWishlist() string {
	styles := m.theme.Styles()
	items := m.wishlist.Items()

	var b strings.Builder
	if len(items) == 0 {
		b.WriteString(styles.MutedText.Render("Nothing saved yet. Press w on a product to save it."))
		b.WriteString("\n")
		return b.String()
	}

	titleWidth := max(m.width-32, 16)
	for i, p := range items {
		line := fmt.Sprintf("  %-*s %10s  %s", titleWidth, truncate(p.Title, titleWidth), formatPrice(p.Price), truncate(p.Category, 14))
		if i == m.wishRow {
			b.WriteString(styles.Selected.Render(line))
		} else {
			b.WriteString(styles.Text.Render(line))
		}
		b.WriteString("\n")
	}
	if m.flash != "" {
		b.WriteString("\n" + m.renderFlash(styles) + "\n")
	}
	return b.String()
}
