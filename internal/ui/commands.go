package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/shelf/internal/catalog"
	"github.com/five82/shelf/internal/logtail"
	"github.com/five82/shelf/internal/product"
	"github.com/five82/shelf/internal/products"
	"github.com/five82/shelf/internal/session"
	"github.com/five82/shelf/internal/state"
)

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type catalogLoadedMsg struct {
	query  catalog.Query
	result catalog.LoadResult
}

type detailMsg struct {
	product product.Product
	err     error
}

type loginMsg session.LoginResult

type crudMsg struct {
	action string
	result products.Result
}

type activityMsg struct {
	lines []string
	err   error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func loadCatalogCmd(ctx context.Context, r *catalog.Reconciler, q catalog.Query) tea.Cmd {
	return func() tea.Msg {
		return catalogLoadedMsg{query: q, result: r.Load(ctx, q)}
	}
}

func fetchDetailCmd(ctx context.Context, r *catalog.Reconciler, id product.ID) tea.Cmd {
	return func() tea.Msg {
		p, err := r.Product(ctx, id)
		return detailMsg{product: p, err: err}
	}
}

func loginCmd(ctx context.Context, m *session.Manager, username, password string) tea.Cmd {
	return func() tea.Msg {
		return loginMsg(m.Login(ctx, username, password))
	}
}

func crudCmd(action string, fn func() products.Result) tea.Cmd {
	return func() tea.Msg {
		return crudMsg{action: action, result: fn()}
	}
}

const activityLines = 200

func readActivityCmd(path string) tea.Cmd {
	return func() tea.Msg {
		lines, err := logtail.Read(path, activityLines)
		if err != nil {
			return activityMsg{err: err}
		}
		entries := logtail.ParseLines(lines)
		out := make([]string, len(entries))
		for i, e := range entries {
			out[i] = e.Format()
		}
		return activityMsg{lines: out}
	}
}
