package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// keyMap is every binding the browser reacts to. Cart bindings only apply
// while the cart is open.
type keyMap struct {
	Search   key.Binding
	NextCat  key.Binding
	PrevCat  key.Binding
	Limit    key.Binding
	Skip     key.Binding
	SortBy   key.Binding
	Order    key.Binding
	Up       key.Binding
	Down     key.Binding
	Add      key.Binding
	Cart     key.Binding
	Dismiss  key.Binding
	Inc      key.Binding
	Dec      key.Binding
	Remove   key.Binding
	Clear    key.Binding
	Checkout key.Binding
	Refresh  key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		NextCat:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c/C", "category")),
		PrevCat:  key.NewBinding(key.WithKeys("C")),
		Limit:    key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "limit")),
		Skip:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "skip")),
		SortBy:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "sort")),
		Order:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "order")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Add:      key.NewBinding(key.WithKeys("a", "enter"), key.WithHelp("a", "add")),
		Cart:     key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "cart")),
		Dismiss:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Inc:      key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "qty")),
		Dec:      key.NewBinding(key.WithKeys("-")),
		Remove:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove")),
		Clear:    key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "clear")),
		Checkout: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "checkout")),
		Refresh:  key.NewBinding(key.WithKeys("f5", "ctrl+r"), key.WithHelp("F5", "refresh")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// browseHelp is the help.KeyMap shown under the product list.
type browseHelp struct{ k keyMap }

func (h browseHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.Search, h.k.NextCat, h.k.Limit, h.k.Skip, h.k.SortBy, h.k.Order, h.k.Add, h.k.Cart, h.k.Refresh, h.k.Quit}
}

func (h browseHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{h.ShortHelp(), {h.k.Up, h.k.Down, h.k.Dismiss}}
}

// cartHelp is the help.KeyMap shown while the cart is open.
type cartHelp struct{ k keyMap }

func (h cartHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.Up, h.k.Down, h.k.Inc, h.k.Remove, h.k.Clear, h.k.Checkout, h.k.Dismiss, h.k.Quit}
}

func (h cartHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{h.ShortHelp()}
}
