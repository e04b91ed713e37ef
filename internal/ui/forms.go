package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/shelf/internal/dummyjson"
	"github.com/five82/shelf/internal/product"
	"github.com/five82/shelf/internal/products"
	"github.com/five82/shelf/internal/session"
)

// form is a vertical list of text inputs with one focused field.
type form struct {
	labels []string
	inputs []textinput.Model
	focus  int
	err    string
	busy   bool
}

func newForm(labels ...string) form {
	f := form{labels: labels, inputs: make([]textinput.Model, len(labels))}
	for i := range f.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 120
		in.Width = 36
		f.inputs[i] = in
	}
	return f
}

func (f *form) focusCmd() tea.Cmd {
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
	return f.inputs[f.focus].Focus()
}

func (f *form) move(step int) tea.Cmd {
	n := len(f.inputs)
	f.focus = ((f.focus+step)%n + n) % n
	return f.focusCmd()
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f form) value(i int) string {
	return strings.TrimSpace(f.inputs[i].Value())
}

func (f form) render(title string, t Theme) string {
	styles := t.Styles()
	label := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)).Width(12)

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(title))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")
	for i, in := range f.inputs {
		l := label
		if i == f.focus {
			l = l.Foreground(lipgloss.Color(t.Accent))
		}
		b.WriteString(l.Render(f.labels[i]))
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	switch {
	case f.busy:
		b.WriteString(styles.MutedText.Render("Working..."))
	case f.err != "":
		b.WriteString(styles.DangerText.Render(f.err))
	default:
		b.WriteString(styles.FaintText.Render("tab next  enter submit  esc cancel"))
	}
	return styles.Panel.BorderForeground(lipgloss.Color(t.BorderFocus)).Width(56).Render(b.String())
}

// Login form

type loginForm struct {
	form
}

const (
	loginUsername = iota
	loginPassword
)

func newLoginForm() loginForm {
	f := loginForm{form: newForm("Username", "Password")}
	f.inputs[loginPassword].EchoMode = textinput.EchoPassword
	f.inputs[loginPassword].EchoCharacter = '•'
	return f
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.login.busy {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.overlay = overlayNone
		return m, nil
	case "tab", "down":
		cmd := m.login.move(1)
		return m, cmd
	case "shift+tab", "up":
		cmd := m.login.move(-1)
		return m, cmd
	case "enter":
		if m.login.focus == loginUsername {
			cmd := m.login.move(1)
			return m, cmd
		}
		m.login.busy = true
		m.login.err = ""
		return m, loginCmd(m.ctx, m.session, m.login.value(loginUsername), m.login.inputs[loginPassword].Value())
	}
	cmd := m.login.update(msg)
	return m, cmd
}

func (m Model) handleLoginResult(res session.LoginResult) (tea.Model, tea.Cmd) {
	m.login.busy = false
	if !res.Success {
		m.login.err = res.Message
		return m, nil
	}
	m.overlay = overlayNone
	// Owned local products become visible once signed in.
	m.catalog.Remerge()
	m.publishMerged()
	m.setFlash("Signed in as "+res.User.DisplayName()+".", false)
	return m, fetchSnapshotCmd(m.store)
}

func (m Model) renderLogin() string {
	panel := m.login.render("Sign in", m.theme)
	if hint := knownUsersHint(m.session.KnownUsers(), 3); hint != "" {
		panel = lipgloss.JoinVertical(lipgloss.Left, panel,
			m.theme.Styles().FaintText.Render(" "+hint))
	}
	return m.place(panel)
}

// knownUsersHint lists up to limit usernames from the cached user directory.
func knownUsersHint(users []dummyjson.User, limit int) string {
	names := make([]string, 0, limit)
	for _, u := range users {
		if len(names) == limit {
			break
		}
		if name := strings.TrimSpace(u.Username); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return ""
	}
	return "Known users: " + strings.Join(names, ", ")
}

// Product editor

type editorForm struct {
	form
	id       product.ID // empty when creating
	original product.Product
}

const (
	editTitle = iota
	editPrice
	editCategory
	editStock
	editDescription
)

func newEditorForm() editorForm {
	return editorForm{form: newForm("Title", "Price", "Category", "Stock", "Description")}
}

func editProductForm(p product.Product) editorForm {
	f := newEditorForm()
	f.id = p.ID
	f.original = p
	f.inputs[editTitle].SetValue(p.Title)
	f.inputs[editPrice].SetValue(strconv.FormatFloat(p.Price, 'f', -1, 64))
	f.inputs[editCategory].SetValue(p.Category)
	f.inputs[editStock].SetValue(strconv.Itoa(p.Stock))
	f.inputs[editDescription].SetValue(p.Description)
	return f
}

// fields parses the inputs into a product. Empty numeric fields are zero.
func (f editorForm) fields() (product.Product, string) {
	p := product.Product{
		Title:       f.value(editTitle),
		Category:    f.value(editCategory),
		Description: f.value(editDescription),
	}
	if p.Title == "" {
		return p, "Title is required."
	}
	if v := f.value(editPrice); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil || price < 0 {
			return p, "Price must be a positive number."
		}
		p.Price = price
	}
	if v := f.value(editStock); v != "" {
		stock, err := strconv.Atoi(v)
		if err != nil || stock < 0 {
			return p, "Stock must be a whole number."
		}
		p.Stock = stock
	}
	return p, ""
}

// patch holds only the fields that differ from the product being edited.
func (f editorForm) patch(p product.Product) product.Patch {
	var pt product.Patch
	o := f.original
	if p.Title != o.Title {
		pt.Title = product.String(p.Title)
	}
	if p.Price != o.Price {
		pt.Price = product.Float(p.Price)
	}
	if p.Category != o.Category {
		pt.Category = product.String(p.Category)
	}
	if p.Stock != o.Stock {
		pt.Stock = product.Int(p.Stock)
	}
	if p.Description != o.Description {
		pt.Description = product.String(p.Description)
	}
	return pt
}

func (m Model) handleEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editor.busy {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.overlay = overlayNone
		return m, nil
	case "tab", "down":
		cmd := m.editor.move(1)
		return m, cmd
	case "shift+tab", "up":
		cmd := m.editor.move(-1)
		return m, cmd
	case "enter":
		p, problem := m.editor.fields()
		if problem != "" {
			m.editor.err = problem
			return m, nil
		}
		m.editor.busy = true
		m.editor.err = ""
		gw, ctx := m.products, m.ctx
		if m.editor.id == "" {
			return m, crudCmd("create", func() products.Result { return gw.Create(ctx, p) })
		}
		id, patch := m.editor.id, m.editor.patch(p)
		return m, crudCmd("update", func() products.Result { return gw.Update(ctx, id, patch) })
	}
	cmd := m.editor.update(msg)
	return m, cmd
}

func (m Model) handleCrudResult(msg crudMsg) (tea.Model, tea.Cmd) {
	m.editor.busy = false
	if !msg.result.Success {
		if m.overlay == overlayEditor {
			m.editor.err = msg.result.Message
		} else {
			m.setFlash(msg.result.Message, true)
		}
		return m, nil
	}
	m.overlay = overlayNone
	m.publishMerged()
	switch msg.action {
	case "create":
		m.query = m.query.WithPage(1)
		m.selectedRow = 0
		m.setFlash("Created "+msg.result.Product.Title+".", false)
	case "update":
		m.setFlash("Saved "+msg.result.Product.Title+".", false)
	case "delete":
		if id := msg.result.Product.ID; id != "" && !id.IsLocal() {
			m.lastDeleted = id
			m.setFlash("Deleted. Press U to undo.", false)
		} else {
			m.setFlash("Deleted.", false)
		}
	case "revert":
		m.setFlash("Reverted "+msg.result.Product.Title+".", false)
	case "restore":
		m.lastDeleted = ""
		m.setFlash("Restored "+msg.result.Product.Title+".", false)
	}
	return m, fetchSnapshotCmd(m.store)
}

func (m Model) renderEditor() string {
	title := "New product"
	if m.editor.id != "" {
		title = "Edit " + truncate(m.editor.original.Title, 40)
	}
	return m.place(m.editor.render(title, m.theme))
}

// place centers content over the whole screen.
func (m Model) place(content string) string {
	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		content,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}
