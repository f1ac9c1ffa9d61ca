package model

import (
	"fmt"
	"regexp"
	"unicode"
	"unicode/utf8"
)

var colorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// MaxOrder is the highest display order the legacy app accepts.
const MaxOrder = 9999

// DefaultColor is assigned to entities created without an explicit color.
const DefaultColor = "#000000"

// OrderCounter issues display orders for accounts constructed without an
// explicit one. It is shared state owned by whoever builds a collection
// (the reader creates a fresh one per import) so construction stays
// deterministic and test-isolated.
type OrderCounter struct {
	highest int
}

func NewOrderCounter() *OrderCounter { return &OrderCounter{} }

// Next returns the next free order and claims it.
func (c *OrderCounter) Next() int {
	c.highest++
	return c.highest
}

// Observe advances the counter past an explicitly supplied order.
func (c *OrderCounter) Observe(order int) {
	if order > c.highest {
		c.highest = order
	}
}

func (c *OrderCounter) Highest() int { return c.highest }

// Account is a ledger account of the legacy store.
type Account struct {
	mwid  int
	name  string
	order int
	color string

	// Visible mirrors the inverse of the store's closed flag.
	Visible bool
	// Legacy marks a placeholder synthesized for a dangling reference;
	// legacy accounts are never written back.
	Legacy bool
}

// AccountParams carries the constructor arguments for NewAccount.
// A zero Order requests auto-assignment from the counter; an empty Color
// defaults to DefaultColor.
type AccountParams struct {
	MWID   int
	Name   string
	Order  int
	Color  string
	Hidden bool
	Legacy bool
}

// NewAccount validates and builds an Account. The counter is required:
// it either issues the order or records the explicit one.
func NewAccount(p AccountParams, orders *OrderCounter) (*Account, error) {
	a := &Account{
		mwid:    p.MWID,
		Visible: !p.Hidden,
		Legacy:  p.Legacy,
	}
	if err := a.SetName(p.Name); err != nil {
		return nil, err
	}
	color := p.Color
	if color == "" {
		color = DefaultColor
	}
	if err := a.SetColor(color); err != nil {
		return nil, err
	}
	if p.Order == 0 {
		a.order = orders.Next()
	} else {
		if err := a.SetOrder(p.Order); err != nil {
			return nil, err
		}
		orders.Observe(p.Order)
	}
	return a, nil
}

func (a *Account) MWID() int     { return a.mwid }
func (a *Account) Name() string  { return a.name }
func (a *Account) Order() int    { return a.order }
func (a *Account) Color() string { return a.color }

// SetMWID assigns the store identity after a first insert. The identity
// is immutable once assigned.
func (a *Account) SetMWID(id int) error {
	if a.mwid != PendingID {
		return invalid("account", "mwid", "already assigned (%d)", a.mwid)
	}
	if id <= 0 {
		return invalid("account", "mwid", "must be positive, got %d", id)
	}
	a.mwid = id
	return nil
}

// SetName requires a capitalized name without whitespace.
func (a *Account) SetName(name string) error {
	if name == "" {
		return invalid("account", "name", "empty")
	}
	for _, r := range name {
		if unicode.IsSpace(r) {
			return invalid("account", "name", "contains whitespace: %q", name)
		}
	}
	first, _ := utf8.DecodeRuneInString(name)
	if !unicode.IsUpper(first) {
		return invalid("account", "name", "first letter must be capitalized: %q", name)
	}
	a.name = name
	return nil
}

func (a *Account) SetOrder(order int) error {
	if order < 1 || order > MaxOrder {
		return invalid("account", "order", "out of range [1, %d]: %d", MaxOrder, order)
	}
	a.order = order
	return nil
}

func (a *Account) SetColor(color string) error {
	if !colorRe.MatchString(color) {
		return invalid("account", "color", "want #RRGGBB, got %q", color)
	}
	a.color = color
	return nil
}

func (a *Account) DisplayName() string { return "@" + a.name }
func (a *Account) PartyName() string   { return a.name }
func (a *Account) sealedParty()        {}

// SameParty: accounts compare by name; never equal to a counterpart.
func (a *Account) SameParty(o Party) bool {
	b, ok := o.(*Account)
	return ok && a.name == b.name
}

// SortsBefore: accounts order by display order and come before every
// counterpart.
func (a *Account) SortsBefore(o Party) bool {
	if b, ok := o.(*Account); ok {
		return a.order < b.order
	}
	return true
}

func (a *Account) String() string {
	s := fmt.Sprintf("Account[%04d](%q, %q, %d, %t)", a.mwid, a.name, a.color, a.order, a.Visible)
	if a.Legacy {
		s = "Legacy" + s
	}
	return s
}

// Record is the generic flat projection, used by reports and tests.
func (a *Account) Record() Record {
	return Record{
		"mwid":    a.mwid,
		"name":    a.name,
		"order":   a.order,
		"color":   a.color,
		"visible": a.Visible,
		"legacy":  a.Legacy,
	}
}

// LegacyRecord is the store column projection. The initial balance and
// minimum limit columns are not interpreted by the model; they round-trip
// with zero defaults on insert.
func (a *Account) LegacyRecord() Record {
	closed := 0
	if !a.Visible {
		closed = 1
	}
	return Record{
		"acc_id":           a.mwid,
		"acc_name":         a.name,
		"acc_order":        a.order,
		"acc_color":        a.color,
		"acc_is_closed":    closed,
		"acc_init_balance": 0.0,
		"acc_min_limit":    0.0,
	}
}
