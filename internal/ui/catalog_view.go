package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/five82/shelf/internal/cart"
	"github.com/five82/shelf/internal/catalog"
	"github.com/five82/shelf/internal/dummyjson"
	"github.com/five82/shelf/internal/product"
	"github.com/five82/shelf/internal/products"
)

// page returns the visible catalog page: the merged view, searched
// locally, then paginated.
func (m Model) page() catalog.Page {
	return catalog.Paginate(catalog.Search(m.snapshot.Products, m.query.Search), m.query.Page, m.query.PageSize)
}

func (m Model) selectedProduct() (product.Product, bool) {
	items := m.page().Items
	if m.selectedRow < 0 || m.selectedRow >= len(items) {
		return product.Product{}, false
	}
	return items[m.selectedRow], true
}

// handleCatalogKey processes keyboard input for the catalog view.
func (m Model) handleCatalogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	page := m.page()

	switch msg.String() {
	case "j", "down":
		if m.selectedRow < len(page.Items)-1 {
			m.selectedRow++
		}
	case "k", "up":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "g", "home":
		m.selectedRow = 0
	case "G", "end":
		m.selectedRow = max(len(page.Items)-1, 0)
	case "n", "right":
		if page.HasNext() {
			return m.reload(m.query.WithPage(page.Number + 1))
		}
	case "p", "left":
		if page.HasPrev() {
			return m.reload(m.query.WithPage(page.Number - 1))
		}
	case "c":
		return m.reload(m.query.WithCategory(nextCategory(m.snapshot.Categories, m.query.Category, 1)))
	case "C":
		return m.reload(m.query.WithCategory(nextCategory(m.snapshot.Categories, m.query.Category, -1)))
	case "s":
		next := nextSort(m.query.Sort)
		m.prefs.Sort = string(next)
		m.savePrefs()
		return m.reload(m.query.WithSort(next))
	case "r":
		m.loading = true
		return m, loadCatalogCmd(m.ctx, m.catalog, m.query)
	case "/":
		m.overlay = overlaySearch
		m.search.SetValue(m.query.Search)
		m.search.CursorEnd()
		cmd := m.search.Focus()
		return m, cmd
	case "enter":
		p, ok := m.selectedProduct()
		if !ok {
			return m, nil
		}
		m.detail = &p
		m.overlay = overlayDetail
		return m, fetchDetailCmd(m.ctx, m.catalog, p.ID)
	case "a":
		p, ok := m.selectedProduct()
		if !ok {
			return m, nil
		}
		if err := m.cart.Add(p); err != nil {
			m.setFlash("Cart is still loading.", true)
			return m, nil
		}
		m.setFlash(fmt.Sprintf("Added %s to cart.", p.Title), false)
	case "w":
		p, ok := m.selectedProduct()
		if !ok {
			return m, nil
		}
		added, err := m.wishlist.Toggle(p)
		if err != nil {
			m.setFlash("Wishlist is still loading.", true)
			return m, nil
		}
		if added {
			m.setFlash(fmt.Sprintf("Saved %s to wishlist.", p.Title), false)
		} else {
			m.setFlash(fmt.Sprintf("Removed %s from wishlist.", p.Title), false)
		}
	case "N":
		if m.session.UserID() == 0 {
			m.setFlash("Sign in (L) to add products.", true)
			return m, nil
		}
		m.editor = newEditorForm()
		m.overlay = overlayEditor
		cmd := m.editor.focusCmd()
		return m, cmd
	case "E":
		p, ok := m.selectedProduct()
		if !ok {
			return m, nil
		}
		if m.session.UserID() == 0 {
			m.setFlash("Sign in (L) to edit products.", true)
			return m, nil
		}
		m.editor = editProductForm(p)
		m.overlay = overlayEditor
		cmd := m.editor.focusCmd()
		return m, cmd
	case "R":
		p, ok := m.selectedProduct()
		if !ok {
			return m, nil
		}
		gw, ctx := m.products, m.ctx
		return m, crudCmd("revert", func() products.Result { return gw.Revert(ctx, p.ID) })
	case "U":
		if m.lastDeleted == "" {
			return m, nil
		}
		gw, ctx, id := m.products, m.ctx, m.lastDeleted
		return m, crudCmd("restore", func() products.Result { return gw.Restore(ctx, id) })
	case "D":
		p, ok := m.selectedProduct()
		if !ok {
			return m, nil
		}
		gw, ctx := m.products, m.ctx
		return m, crudCmd("delete", func() products.Result { return gw.Delete(ctx, p.ID) })
	}
	return m, nil
}

// handleSearchKey edits the search text. Search runs locally on every
// keystroke; enter keeps the text and esc clears it.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.overlay = overlayNone
		m.search.Blur()
		return m, nil
	case "esc":
		m.overlay = overlayNone
		m.search.Blur()
		m.search.SetValue("")
		m.query = m.query.WithSearch("")
		m.selectedRow = 0
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.query = m.query.WithSearch(m.search.Value())
	m.selectedRow = clamp(m.selectedRow, len(m.page().Items))
	return m, cmd
}

func nextCategory(categories []product.Category, current string, step int) string {
	slugs := make([]string, 0, len(categories)+1)
	slugs = append(slugs, product.AllCategories)
	for _, c := range categories {
		slugs = append(slugs, c.Slug)
	}
	n := len(slugs)
	for i, s := range slugs {
		if s == current {
			return slugs[((i+step)%n+n)%n]
		}
	}
	return product.AllCategories
}

func nextSort(current catalog.Sort) catalog.Sort {
	presets := catalog.SortPresets
	for i, s := range presets {
		if s == current {
			return presets[(i+1)%len(presets)]
		}
	}
	return catalog.SortDefault
}

func detailError(err error) string {
	var apiErr *dummyjson.APIError
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return "Product not found."
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	default:
		return catalog.MsgUnreachable
	}
}

func formatPrice(v float64) string {
	return cart.FormatMoney(decimal.NewFromFloat(v))
}

// renderCatalog renders the product table for the current page.
func (m Model) renderCatalog() string {
	styles := m.theme.Styles()
	page := m.page()

	var b strings.Builder
	if len(page.Items) == 0 {
		switch {
		case m.loading || !m.snapshot.HasCatalog:
			b.WriteString(styles.MutedText.Render("Loading products..."))
		case m.query.Search != "":
			b.WriteString(styles.MutedText.Render(fmt.Sprintf("No products match %q.", m.query.Search)))
		default:
			b.WriteString(styles.MutedText.Render("No products in this category."))
		}
		b.WriteString("\n")
		return b.String()
	}

	titleWidth := max(m.width-52, 16)
	header := fmt.Sprintf("  %-*s %10s %6s %-14s %s", titleWidth, "TITLE", "PRICE", "RATING", "CATEGORY", "STOCK")
	b.WriteString(styles.FaintText.Render(header))
	b.WriteString("\n")

	for i, p := range page.Items {
		mark := " "
		if m.wishlist != nil && m.wishlist.Contains(p.ID) {
			mark = "♥"
		}
		if p.ID.IsLocal() {
			mark = "*"
		}
		line := fmt.Sprintf("%s %-*s %10s %6.1f %-14s ",
			mark,
			titleWidth, truncate(p.Title, titleWidth),
			formatPrice(p.Price),
			p.Rating,
			truncate(p.Category, 14),
		)
		if i == m.selectedRow {
			b.WriteString(styles.Selected.Render(line))
		} else {
			b.WriteString(styles.Text.Render(line))
		}
		b.WriteString(styles.StockStyle(p.StockStatus()).Render(stockLabel(p.StockStatus())))
		b.WriteString("\n")
	}

	footer := fmt.Sprintf("page %d/%d  %d products", page.Number, page.TotalPages, page.TotalItems)
	if m.query.Search != "" && m.overlay != overlaySearch {
		footer += fmt.Sprintf("  search %q", m.query.Search)
	}
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render(footer))
	b.WriteString("\n")
	if m.flash != "" {
		b.WriteString(m.renderFlash(styles))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderFlash(styles Styles) string {
	if m.flashErr {
		return styles.DangerText.Render(m.flash)
	}
	return styles.SuccessText.Render(m.flash)
}

func stockLabel(status string) string {
	switch status {
	case product.InStock:
		return "in stock"
	case product.LowStock:
		return "low stock"
	default:
		return "sold out"
	}
}

// renderDetail renders the selected product as a centered panel.
func (m Model) renderDetail() string {
	styles := m.theme.Styles()
	if m.detail == nil {
		return m.place(styles.MutedText.Render("Loading product..."))
	}
	p := *m.detail

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(p.Title))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 40)))
	b.WriteString("\n\n")

	price := styles.AccentText.Render(formatPrice(p.Price))
	if p.DiscountPercentage > 0 {
		price += " " + styles.MutedText.Strikethrough(true).Render(formatPrice(p.OriginalPrice()))
		price += " " + styles.SuccessText.Render(fmt.Sprintf("-%.0f%%", p.DiscountPercentage))
	}
	b.WriteString(price)
	b.WriteString("  ")
	b.WriteString(styles.StockStyle(p.StockStatus()).Render(fmt.Sprintf("%s (%d)", stockLabel(p.StockStatus()), p.Stock)))
	b.WriteString("\n\n")

	rows := [][2]string{
		{"Category", p.Category},
		{"Brand", p.Brand},
		{"Rating", fmt.Sprintf("%.1f", p.Rating)},
		{"SKU", p.SKU},
		{"Warranty", p.WarrantyInformation},
		{"Shipping", p.ShippingInformation},
		{"Returns", p.ReturnPolicy},
		{"Tags", strings.Join(p.Tags, ", ")},
		{"In cart", fmt.Sprintf("%d", m.cart.Quantity(p.ID))},
	}
	if p.ID.IsLocal() && !p.CreatedAt.IsZero() {
		rows = append(rows, [2]string{"Created", p.CreatedAt.Local().Format("2006-01-02 15:04")})
	}
	label := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Muted)).Width(10)
	for _, r := range rows {
		if strings.TrimSpace(r[1]) == "" {
			continue
		}
		b.WriteString(label.Render(r[0]))
		b.WriteString(styles.Text.Render(r[1]))
		b.WriteString("\n")
	}
	if p.Description != "" {
		b.WriteString("\n")
		b.WriteString(styles.Text.Width(56).Render(p.Description))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("esc to close"))

	return m.place(styles.Panel.BorderForeground(lipgloss.Color(m.theme.BorderFocus)).Width(62).Render(b.String()))
}
