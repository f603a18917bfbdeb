// Package tui is the interactive catalog browser.
//
// The model owns no catalog state of its own. It reads everything from the
// session on each render and turns key presses into session calls. Fetch
// completions arrive as StateMsg, sent by the orchestrator's notify hook;
// they only trigger a re-render.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/roach88/shelf/internal/catalog"
	"github.com/roach88/shelf/internal/fetch"
	"github.com/roach88/shelf/internal/ledger"
	"github.com/roach88/shelf/internal/session"
)

// StateMsg carries a committed orchestrator state into the program.
type StateMsg struct {
	State fetch.State
}

// Model is the Bubble Tea model for the browser.
type Model struct {
	ctx  context.Context
	sess *session.Session
	keys keyMap

	search    textinput.Model
	searching bool
	spinner   spinner.Model
	help      help.Model

	cursor     int
	cartCursor int
	summary    *ledger.Summary

	width  int
	height int
}

// NewModel creates a browser over sess. The session must already be
// started.
func NewModel(ctx context.Context, sess *session.Session) Model {
	ti := textinput.New()
	ti.Placeholder = "search title or category"
	ti.Prompt = "/ "
	ti.CharLimit = 64

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:     ctx,
		sess:    sess,
		keys:    defaultKeyMap(),
		search:  ti,
		spinner: sp,
		help:    help.New(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case StateMsg:
		m.clampCursor()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch {
		case m.searching:
			return m.updateSearch(msg)
		case m.sess.Inputs().CartOpen:
			return m.updateCart(msg)
		default:
			return m.updateBrowse(msg)
		}
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.sess.SetSearch("")
		m.clampCursor()
		return m, nil
	case tea.KeyEnter:
		m.searching = false
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.sess.SetSearch(m.search.Value())
	m.clampCursor()
	return m, cmd
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit
	case key.Matches(msg, k.Search):
		m.searching = true
		return m, m.search.Focus()
	case key.Matches(msg, k.NextCat):
		m.sess.NextCategory()
	case key.Matches(msg, k.PrevCat):
		m.sess.PrevCategory()
	case key.Matches(msg, k.Limit):
		m.sess.CycleLimit()
	case key.Matches(msg, k.Skip):
		m.sess.CycleSkip()
	case key.Matches(msg, k.SortBy):
		m.sess.CycleSortBy()
	case key.Matches(msg, k.Order):
		m.sess.ToggleOrder()
	case key.Matches(msg, k.Refresh):
		m.sess.Refresh()
	case key.Matches(msg, k.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, k.Down):
		if m.cursor < len(m.sess.Visible())-1 {
			m.cursor++
		}
	case key.Matches(msg, k.Add):
		if p, ok := m.selected(); ok {
			m.sess.AddToCart(m.ctx, p)
		}
	case key.Matches(msg, k.Cart):
		m.summary = nil
		m.cartCursor = 0
		m.sess.ToggleCart()
	case key.Matches(msg, k.Dismiss):
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.sess.SetSearch("")
		}
	}
	m.clampCursor()
	return m, nil
}

func (m Model) updateCart(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	lines := m.sess.Cart()

	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit
	case key.Matches(msg, k.Dismiss), key.Matches(msg, k.Cart):
		m.sess.CloseCart()
		m.summary = nil
	case key.Matches(msg, k.Up):
		if m.cartCursor > 0 {
			m.cartCursor--
		}
	case key.Matches(msg, k.Down):
		if m.cartCursor < len(lines)-1 {
			m.cartCursor++
		}
	case key.Matches(msg, k.Inc):
		if m.cartCursor < len(lines) {
			m.sess.ChangeQty(m.ctx, lines[m.cartCursor].ID, 1)
		}
	case key.Matches(msg, k.Dec):
		if m.cartCursor < len(lines) {
			m.sess.ChangeQty(m.ctx, lines[m.cartCursor].ID, -1)
		}
	case key.Matches(msg, k.Remove):
		if m.cartCursor < len(lines) {
			m.sess.RemoveFromCart(m.ctx, lines[m.cartCursor].ID)
		}
	case key.Matches(msg, k.Clear):
		m.sess.ClearCart(m.ctx)
	case key.Matches(msg, k.Checkout):
		s := m.sess.Checkout()
		m.summary = &s
	}

	if n := len(m.sess.Cart()); m.cartCursor >= n {
		m.cartCursor = max(0, n-1)
	}
	return m, nil
}

// selected returns the product under the cursor.
func (m Model) selected() (catalog.Product, bool) {
	visible := m.sess.Visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return catalog.Product{}, false
	}
	return visible[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.sess.Visible())
	if m.cursor >= n {
		m.cursor = max(0, n-1)
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("shelf"))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  cart: %d", m.sess.CartItems())))
	b.WriteString("\n")
	b.WriteString(m.controlsView())
	b.WriteString("\n")

	if m.searching || m.search.Value() != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.sess.Inputs().CartOpen {
		b.WriteString(m.cartView())
		b.WriteString("\n")
		b.WriteString(m.help.View(cartHelp{m.keys}))
		return b.String()
	}

	b.WriteString(m.listView())
	b.WriteString("\n")
	b.WriteString(m.help.View(browseHelp{m.keys}))
	return b.String()
}

func (m Model) controlsView() string {
	in := m.sess.Inputs()
	field := func(name, value string) string {
		return controlStyle.Render(name+": ") + valueStyle.Render(value)
	}
	return strings.Join([]string{
		field("category", in.Category),
		field("limit", fmt.Sprint(in.Limit)),
		field("skip", fmt.Sprint(in.Skip)),
		field("sort", string(in.SortBy)+" "+string(in.Order)),
	}, "  ")
}

func (m Model) listView() string {
	var b strings.Builder
	st := m.sess.State()

	switch st.Status {
	case fetch.Loading:
		b.WriteString(m.spinner.View() + " Loading…\n")
	case fetch.Failure:
		b.WriteString(errorStyle.Render(st.Err()) + "\n")
	}

	visible := m.sess.Visible()
	if len(visible) == 0 && st.Status == fetch.Success {
		b.WriteString(mutedStyle.Render("No products found.") + "\n")
		return b.String()
	}

	for i, p := range visible {
		line := fmt.Sprintf("%-40s %s  %s", truncate(p.Title, 40),
			priceStyle.Render(fmt.Sprintf("%10s", catalog.FormatPrice(p.Price))),
			mutedStyle.Render(p.Category))
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> ") + line + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}
	return b.String()
}

func (m Model) cartView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Cart") + "\n")

	lines := m.sess.Cart()
	if len(lines) == 0 {
		b.WriteString(mutedStyle.Render("Your cart is empty.") + "\n")
	}
	for i, l := range lines {
		row := fmt.Sprintf("%-32s %8s x %-3d %10s", truncate(l.Title, 32),
			catalog.FormatPrice(l.Price), l.Qty, catalog.FormatPrice(l.Subtotal()))
		if i == m.cartCursor {
			b.WriteString(selectedStyle.Render("> ") + row + "\n")
		} else {
			b.WriteString("  " + row + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Items: %d  Total: %s\n", m.sess.CartItems(), catalog.FormatPrice(m.sess.CartTotal())))

	if m.summary != nil {
		b.WriteString(valueStyle.Render(fmt.Sprintf("Checkout: %d items, total %s",
			m.summary.Items, catalog.FormatPrice(m.summary.Total))) + "\n")
	}
	return cartStyle.Render(b.String())
}

// truncate shortens s to at most n runes, marking the cut with "…".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
