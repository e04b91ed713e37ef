package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/shelf/internal/cart"
	"github.com/five82/shelf/internal/catalog"
	"github.com/five82/shelf/internal/prefs"
	"github.com/five82/shelf/internal/product"
	"github.com/five82/shelf/internal/products"
	"github.com/five82/shelf/internal/session"
	"github.com/five82/shelf/internal/state"
	"github.com/five82/shelf/internal/wishlist"
)

// View represents the current active view.
type View int

const (
	ViewCatalog View = iota
	ViewCart
	ViewWishlist
	ViewActivity
)

var viewOrder = []View{ViewCatalog, ViewCart, ViewWishlist, ViewActivity}

func (v View) String() string {
	switch v {
	case ViewCart:
		return "Cart"
	case ViewWishlist:
		return "Wishlist"
	case ViewActivity:
		return "Activity"
	default:
		return "Catalog"
	}
}

// overlay is a modal drawn over the current view.
type overlay int

const (
	overlayNone overlay = iota
	overlayHelp
	overlaySearch
	overlayLogin
	overlayEditor
	overlayDetail
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	State     *state.Store
	Catalog   *catalog.Reconciler
	Session   *session.Manager
	Cart      *cart.Ledger
	Wishlist  *wishlist.Set
	Products  *products.Gateway
	LogPath   string
	PollTick  time.Duration
	Query     catalog.Query
	Prefs     prefs.Prefs
	PrefsPath string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	store     *state.Store
	catalog   *catalog.Reconciler
	session   *session.Manager
	cart      *cart.Ledger
	wishlist  *wishlist.Set
	products  *products.Gateway
	logPath   string
	prefs     prefs.Prefs
	prefsPath string
	pollTick  time.Duration

	// UI state
	theme       Theme
	currentView View
	overlay     overlay
	width       int
	height      int
	ready       bool

	// Data state
	snapshot state.Snapshot
	query    catalog.Query
	loading  bool

	// Cursor per list view
	selectedRow int
	cartRow     int
	wishRow     int

	flash    string
	flashErr bool

	search      textinput.Model
	login       loginForm
	editor      editorForm
	detail      *product.Product
	lastDeleted product.ID // remote id that U restores

	activity      viewport.Model
	activityLines []string
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = time.Second
	}

	userPrefs := opts.Prefs
	if userPrefs.Theme == "" {
		userPrefs = prefs.Defaults()
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	query := opts.Query
	if query.Page == 0 {
		query = catalog.NewQuery(userPrefs.PageSize).WithSort(catalog.ParseSort(userPrefs.Sort))
	}

	search := textinput.New()
	search.Placeholder = "search titles"
	search.Prompt = "/ "
	search.CharLimit = 80

	return Model{
		ctx:         ctx,
		store:       opts.State,
		catalog:     opts.Catalog,
		session:     opts.Session,
		cart:        opts.Cart,
		wishlist:    opts.Wishlist,
		products:    opts.Products,
		logPath:     opts.LogPath,
		prefs:       userPrefs,
		prefsPath:   prefsPath,
		pollTick:    pollTick,
		theme:       GetTheme(userPrefs.Theme),
		currentView: ViewCatalog,
		query:       query,
		search:      search,
		login:       newLoginForm(),
		editor:      newEditorForm(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.activity = viewport.New(msg.Width, m.contentHeight())
		}
		m.activity.Width = msg.Width
		m.activity.Height = m.contentHeight()
		m.ready = true
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.clampCursors()
		return m, nil

	case catalogLoadedMsg:
		return m.handleCatalogLoaded(msg)

	case detailMsg:
		if msg.err != nil {
			m.overlay = overlayNone
			m.setFlash(detailError(msg.err), true)
			return m, nil
		}
		p := msg.product
		m.detail = &p
		return m, nil

	case loginMsg:
		return m.handleLoginResult(session.LoginResult(msg))

	case crudMsg:
		return m.handleCrudResult(msg)

	case activityMsg:
		if msg.err != nil {
			m.activityLines = []string{"unable to read log: " + msg.err.Error()}
		} else {
			m.activityLines = msg.lines
		}
		follow := m.activity.AtBottom() || m.activity.TotalLineCount() == 0
		m.activity.SetContent(strings.Join(m.activityLines, "\n"))
		if follow {
			m.activity.GotoBottom()
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	switch m.overlay {
	case overlayHelp:
		return m.renderHelp()
	case overlayLogin:
		return m.renderLogin()
	case overlayEditor:
		return m.renderEditor()
	case overlayDetail:
		return m.renderDetail()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	return b.String()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.overlay {
	case overlayHelp:
		// Any key closes help
		m.overlay = overlayNone
		return m, nil
	case overlaySearch:
		return m.handleSearchKey(msg)
	case overlayLogin:
		return m.handleLoginKey(msg)
	case overlayEditor:
		return m.handleEditorKey(msg)
	case overlayDetail:
		if msg.String() == "esc" || msg.String() == "enter" || msg.String() == "q" {
			m.overlay = overlayNone
			m.detail = nil
		}
		return m, nil
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "?":
		m.overlay = overlayHelp
		return m, nil

	case "T":
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		return m, nil

	case "tab":
		return m.switchView(nextView(m.currentView, 1))
	case "shift+tab":
		return m.switchView(nextView(m.currentView, -1))
	case "1":
		return m.switchView(ViewCatalog)
	case "2":
		return m.switchView(ViewCart)
	case "3":
		return m.switchView(ViewWishlist)
	case "4":
		return m.switchView(ViewActivity)

	case "L":
		if m.session.UserID() != 0 {
			m.setFlash("Already signed in. Press O to sign out.", false)
			return m, nil
		}
		m.login = newLoginForm()
		m.overlay = overlayLogin
		cmd := m.login.focusCmd()
		return m, cmd

	case "O":
		if m.session.UserID() == 0 {
			return m, nil
		}
		m.session.Logout()
		m.catalog.Remerge()
		m.publishMerged()
		m.setFlash("Signed out.", false)
		return m, fetchSnapshotCmd(m.store)

	case "esc":
		m.currentView = ViewCatalog
		m.flash = ""
		return m, nil
	}

	switch m.currentView {
	case ViewCatalog:
		return m.handleCatalogKey(msg)
	case ViewCart:
		return m.handleCartKey(msg)
	case ViewWishlist:
		return m.handleWishlistKey(msg)
	case ViewActivity:
		var cmd tea.Cmd
		m.activity, cmd = m.activity.Update(msg)
		return m, cmd
	}

	return m, nil
}

func nextView(current View, step int) View {
	for i, v := range viewOrder {
		if v == current {
			n := len(viewOrder)
			return viewOrder[((i+step)%n+n)%n]
		}
	}
	return ViewCatalog
}

func (m Model) switchView(v View) (tea.Model, tea.Cmd) {
	m.currentView = v
	if v == ViewActivity {
		return m, readActivityCmd(m.logPath)
	}
	return m, nil
}

// handleTick processes the polling tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.currentView == ViewActivity && m.overlay == overlayNone {
		cmds = append(cmds, readActivityCmd(m.logPath))
	}
	cmds = append(cmds, tickCmd(m.pollTick))
	return m, tea.Batch(cmds...)
}

func (m Model) handleCatalogLoaded(msg catalogLoadedMsg) (tea.Model, tea.Cmd) {
	res := msg.result
	m.loading = false
	if res.Stale {
		// A newer load owns the view. Ask again if it was not for ours.
		if !m.query.SameRemote(m.catalog.Query()) {
			m.loading = true
			return m, loadCatalogCmd(m.ctx, m.catalog, m.query)
		}
		return m, fetchSnapshotCmd(m.store)
	}
	if !res.Success {
		m.store.Update(nil, nil, errors.New(res.Message))
		m.setFlash(res.Message, true)
		return m, fetchSnapshotCmd(m.store)
	}
	m.store.Update(m.catalog.Products(), nil, nil)
	m.flash = ""
	return m, fetchSnapshotCmd(m.store)
}

// reload asks the reconciler for q when it changes the remote request.
// Search and page changes are resolved locally.
func (m Model) reload(q catalog.Query) (tea.Model, tea.Cmd) {
	remote := !q.SameRemote(m.query)
	m.query = q
	m.selectedRow = 0
	if !remote {
		return m, nil
	}
	m.loading = true
	return m, loadCatalogCmd(m.ctx, m.catalog, q)
}

// publishMerged pushes the reconciler's merged view into the shared store
// without counting as a refresh.
func (m Model) publishMerged() {
	if m.store != nil {
		m.store.Replace(m.catalog.Products())
	}
}

func (m *Model) setFlash(text string, isErr bool) {
	m.flash = text
	m.flashErr = isErr
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.setFlash("Could not save preferences: "+err.Error(), true)
	}
}

func (m *Model) clampCursors() {
	page := m.page()
	m.selectedRow = clamp(m.selectedRow, len(page.Items))
	if m.cart != nil {
		m.cartRow = clamp(m.cartRow, len(m.cart.Entries()))
	}
	if m.wishlist != nil {
		m.wishRow = clamp(m.wishRow, m.wishlist.Len())
	}
}

func clamp(row, n int) int {
	if n == 0 || row < 0 {
		return 0
	}
	if row >= n {
		return n - 1
	}
	return row
}

// contentHeight is the space left under the two header lines.
func (m Model) contentHeight() int {
	return max(m.height-2, 1)
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewCart:
		return m.renderCart()
	case ViewWishlist:
		return m.renderWishlist()
	case ViewActivity:
		return m.activity.View()
	default:
		if m.overlay == overlaySearch {
			return m.search.View() + "\n" + m.renderCatalog()
		}
		return m.renderCatalog()
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
