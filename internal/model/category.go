package model

import (
	"fmt"
	"regexp"
	"strings"
)

var categoryNameRe = regexp.MustCompile(`^[A-Za-z]\d{2}\. .+$`)

// MaxIconID bounds the legacy app's icon identifier range.
const MaxIconID = 999

// Category is a labeled classification for entries.
//
// The store id is positive for transaction categories and negative for
// transfer categories; the sign is the discriminator. Transfer categories
// are persisted as bracketed note rows, transaction categories as rows of
// the category table.
type Category struct {
	mwid   int
	name   string // full "X99. Title" form
	ctype  Type
	color  string
	iconID int

	Legacy bool
}

// CategoryParams carries the constructor arguments for NewCategory.
// An empty Color defaults to DefaultColor.
type CategoryParams struct {
	MWID   int
	Name   string
	Type   Type
	Color  string
	IconID int
	Legacy bool
}

// NewCategory validates and builds a Category. The type is fixed for the
// lifetime of the category. A Transfer type forces the id negative
// regardless of the sign of the input.
func NewCategory(p CategoryParams) (*Category, error) {
	c := &Category{
		mwid:   p.MWID,
		ctype:  p.Type,
		Legacy: p.Legacy,
	}
	if p.Type < Expense || p.Type > Income {
		return nil, invalid("category", "type", "unknown type %d", int(p.Type))
	}
	if p.Type == Transfer {
		c.mwid = -abs(p.MWID)
	}
	if err := c.SetName(p.Name); err != nil {
		return nil, err
	}
	color := p.Color
	if color == "" {
		color = DefaultColor
	}
	if err := c.SetColor(color); err != nil {
		return nil, err
	}
	if err := c.SetIconID(p.IconID); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Category) MWID() int     { return c.mwid }
func (c *Category) Name() string  { return c.name }
func (c *Category) Type() Type    { return c.ctype }
func (c *Category) Color() string { return c.color }
func (c *Category) IconID() int   { return c.iconID }

// Code is the fixed-width prefix, e.g. "B20".
func (c *Category) Code() string {
	code, _, _ := strings.Cut(c.name, ".")
	return code
}

// Title is the free-text part after the code, e.g. "Supermercados".
func (c *Category) Title() string {
	_, title, _ := strings.Cut(c.name, ". ")
	return title
}

// SetMWID assigns the store identity after a first insert. Transfer
// categories keep the negative sign convention.
func (c *Category) SetMWID(id int) error {
	if c.mwid != PendingID {
		return invalid("category", "mwid", "already assigned (%d)", c.mwid)
	}
	if id == 0 {
		return invalid("category", "mwid", "must be non-zero")
	}
	if c.ctype == Transfer {
		c.mwid = -abs(id)
	} else {
		c.mwid = abs(id)
	}
	return nil
}

// SetName requires the full "X99. Title" form.
func (c *Category) SetName(name string) error {
	if !categoryNameRe.MatchString(name) {
		return invalid("category", "name", `want "X99. Title" form, got %q`, name)
	}
	c.name = name
	return nil
}

// SetCode replaces the code, re-validating the reconstructed name.
func (c *Category) SetCode(code string) error {
	return c.SetName(fmt.Sprintf("%s. %s", code, c.Title()))
}

// SetTitle replaces the title, re-validating the reconstructed name.
func (c *Category) SetTitle(title string) error {
	return c.SetName(fmt.Sprintf("%s. %s", c.Code(), title))
}

func (c *Category) SetColor(color string) error {
	if !colorRe.MatchString(color) {
		return invalid("category", "color", "want #RRGGBB, got %q", color)
	}
	c.color = color
	return nil
}

func (c *Category) SetIconID(id int) error {
	if id < 0 || id > MaxIconID {
		return invalid("category", "icon", "out of range [0, %d]: %d", MaxIconID, id)
	}
	c.iconID = id
	return nil
}

func (c *Category) DisplayName() string { return c.name }

// Same reports name equality.
func (c *Category) Same(o *Category) bool { return c.name == o.name }

// SortsBefore orders categories lexicographically by full name.
func (c *Category) SortsBefore(o *Category) bool { return c.name < o.name }

func (c *Category) String() string {
	s := fmt.Sprintf("Category[%04d](%q, %s, %q, %d)", c.mwid, c.name, c.ctype, c.color, c.iconID)
	if c.Legacy {
		s = "Legacy" + s
	}
	return s
}

func (c *Category) Record() Record {
	return Record{
		"mwid":   c.mwid,
		"name":   c.name,
		"code":   c.Code(),
		"title":  c.Title(),
		"type":   int(c.ctype),
		"color":  c.color,
		"icon":   c.iconID,
		"legacy": c.Legacy,
	}
}

// LegacyRecord projects transfer categories as bracketed neutral note
// rows and transaction categories as category table rows.
func (c *Category) LegacyRecord() Record {
	if c.ctype == Transfer {
		return Record{
			"notey_id":         abs(c.mwid),
			"note_text":        "[" + c.name + "]",
			"note_payee_payer": -1,
		}
	}
	isInc := 0
	if c.ctype == Income {
		isInc = 1
	}
	return Record{
		"category_id":     c.mwid,
		"category_name":   c.name,
		"category_is_inc": isInc,
		"category_icon":   c.iconID,
		"category_color":  c.color,
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
