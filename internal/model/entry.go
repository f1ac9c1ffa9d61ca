package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/mwxkit/mwx/internal/daterange"
	"github.com/mwxkit/mwx/internal/money"
)

// Entry is a single financial event: an income, an expense, or a transfer
// between two accounts.
//
// The store id is positive for transactions and negative for transfers.
// The type is fixed at construction; every mutation re-validates the
// type-alignment constraints so an entry can never hold an inconsistent
// source, target or category.
type Entry struct {
	mwid     int
	amount   money.Money
	date     time.Time
	etype    Type
	source   Party
	target   Party
	category *Category
	item     string
	details  string

	Bill bool
}

// EntryParams carries the constructor arguments for NewEntry. An empty
// Item defaults to the category title.
type EntryParams struct {
	MWID     int
	Amount   money.Money
	Date     time.Time
	Type     Type
	Source   Party
	Target   Party
	Category *Category
	Item     string
	Details  string
	Bill     bool
}

// NewEntry validates and builds an Entry. Transfers require two distinct
// accounts, expenses an account source and counterpart target, incomes
// the mirror image; the category type must match the entry type. The
// amount is stored positive, rounded to cents: direction is carried by
// the type and the source/target roles, never by the sign.
func NewEntry(p EntryParams) (*Entry, error) {
	if p.Type < Expense || p.Type > Income {
		return nil, invalid("entry", "type", "unknown type %d", int(p.Type))
	}
	e := &Entry{
		mwid:  p.MWID,
		etype: p.Type,
		Bill:  p.Bill,
	}
	if p.Type == Transfer {
		e.mwid = -abs(p.MWID)
	}
	if err := e.SetSource(p.Source); err != nil {
		return nil, err
	}
	if err := e.SetTarget(p.Target); err != nil {
		return nil, err
	}
	if err := e.SetCategory(p.Category); err != nil {
		return nil, err
	}
	e.SetAmount(p.Amount)
	e.SetDate(p.Date)
	e.SetItem(p.Item)
	e.SetDetails(p.Details)
	return e, nil
}

func (e *Entry) MWID() int           { return e.mwid }
func (e *Entry) Amount() money.Money { return e.amount }
func (e *Entry) Date() time.Time     { return e.date }
func (e *Entry) Type() Type          { return e.etype }
func (e *Entry) Source() Party       { return e.source }
func (e *Entry) Target() Party       { return e.target }
func (e *Entry) Category() *Category { return e.category }
func (e *Entry) Details() string     { return e.details }

// Item returns the free-text concept, falling back to the category title.
func (e *Entry) Item() string {
	if e.item == "" && e.category != nil {
		return e.category.Title()
	}
	return e.item
}

// SetMWID assigns the store identity after a first insert; transfers keep
// the negative sign convention.
func (e *Entry) SetMWID(id int) error {
	if e.mwid != PendingID {
		return invalid("entry", "mwid", "already assigned (%d)", e.mwid)
	}
	if id == 0 {
		return invalid("entry", "mwid", "must be non-zero")
	}
	if e.etype == Transfer {
		e.mwid = -abs(id)
	} else {
		e.mwid = abs(id)
	}
	return nil
}

// SetAmount stores the absolute amount rounded to cents.
func (e *Entry) SetAmount(m money.Money) {
	e.amount = m.Abs()
}

// SetDate truncates to day granularity, the store's resolution.
func (e *Entry) SetDate(t time.Time) {
	e.date = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SetSource enforces the type alignment: transfers and expenses flow out
// of an account, incomes come from a counterpart. The source must stay
// distinct from the target.
func (e *Entry) SetSource(p Party) error {
	if err := e.checkParty("source", p, e.etype != Income); err != nil {
		return err
	}
	if e.target != nil && p.SameParty(e.target) {
		return invalid("entry", "source", "source and target are both %s", p.DisplayName())
	}
	e.source = p
	return nil
}

// SetTarget enforces the mirror constraint of SetSource.
func (e *Entry) SetTarget(p Party) error {
	if err := e.checkParty("target", p, e.etype != Expense); err != nil {
		return err
	}
	if e.source != nil && p.SameParty(e.source) {
		return invalid("entry", "target", "source and target are both %s", p.DisplayName())
	}
	e.target = p
	return nil
}

func (e *Entry) checkParty(field string, p Party, wantAccount bool) error {
	if p == nil {
		return invalid("entry", field, "missing")
	}
	_, isAccount := p.(*Account)
	if wantAccount && !isAccount {
		return invalid("entry", field, "%s entry must have an account as %s", e.etype, field)
	}
	if !wantAccount && isAccount {
		return invalid("entry", field, "%s entry must have a counterpart as %s", e.etype, field)
	}
	return nil
}

// SetCategory requires the category type to match the entry type.
func (e *Entry) SetCategory(c *Category) error {
	if c == nil {
		return invalid("entry", "category", "missing")
	}
	if c.Type() != e.etype {
		return invalid("entry", "category", "%s entry cannot have %s category %q", e.etype, c.Type(), c.Name())
	}
	e.category = c
	return nil
}

func (e *Entry) SetItem(item string)       { e.item = strings.TrimSpace(item) }
func (e *Entry) SetDetails(details string) { e.details = strings.TrimSpace(details) }

// Flow reports the direction of the entry relative to the given party:
// +1 receiving, -1 sending, 0 uninvolved.
func (e *Entry) Flow(p Party) int {
	return e.FlowWhere(func(q Party) bool { return q.SameParty(p) })
}

// FlowWhere is Flow with a caller-supplied party matcher, used by the
// query layer to resolve parties by name or store id.
func (e *Entry) FlowWhere(matches func(Party) bool) int {
	switch {
	case matches(e.target):
		return 1
	case matches(e.source):
		return -1
	}
	return 0
}

// Involves reports whether the party is either side of the entry.
func (e *Entry) Involves(p Party) bool {
	return e.source.SameParty(p) || e.target.SameParty(p)
}

// DisplayName is the item, the closest thing an entry has to a name.
func (e *Entry) DisplayName() string { return e.Item() }

// SortsBefore orders entries chronologically, then by store id.
func (e *Entry) SortsBefore(o *Entry) bool {
	if !e.date.Equal(o.date) {
		return e.date.Before(o.date)
	}
	return abs(e.mwid) < abs(o.mwid)
}

func (e *Entry) String() string {
	return fmt.Sprintf("Entry[%04d](%s %s %s --> %s [%s] %q)",
		e.mwid, e.amount, e.date.Format("2006-01-02"),
		e.source.DisplayName(), e.target.DisplayName(), e.category.Code(), e.Item())
}

// Record is the generic flat projection; referenced entities recurse into
// their own records.
func (e *Entry) Record() Record {
	return Record{
		"mwid":     e.mwid,
		"amount":   e.amount,
		"date":     e.date,
		"type":     int(e.etype),
		"source":   e.source.Record(),
		"target":   e.target.Record(),
		"category": e.category.Record(),
		"item":     e.Item(),
		"details":  e.details,
		"bill":     e.Bill,
	}
}

// LegacyRecord projects transfers onto the transfer table columns and
// transactions onto the transaction table columns. The note column joins
// item and details with a newline; transfer notes carry the bracketed
// category name as their first line.
func (e *Entry) LegacyRecord() Record {
	if e.etype == Transfer {
		note := "[" + e.category.Name() + "]\n" + e.Item()
		if e.details != "" {
			note += "\n" + e.details
		}
		return Record{
			"trans_id":      abs(e.mwid),
			"trans_amount":  e.amount.Float64(),
			"trans_date":    daterange.FormatStoreDate(e.date),
			"trans_from_id": e.source.MWID(),
			"trans_to_id":   e.target.MWID(),
			"trans_note":    note,
		}
	}

	isDebit := 0
	accountID := e.source.MWID()
	payee := e.target.PartyName()
	if e.etype == Income {
		isDebit = 1
		accountID = e.target.MWID()
		payee = e.source.PartyName()
	}
	note := e.Item()
	if e.details != "" {
		note += "\n" + e.details
	}
	isBill := 0
	if e.Bill {
		isBill = 1
	}
	return Record{
		"exp_id":         e.mwid,
		"exp_amount":     e.amount.Float64(),
		"exp_date":       daterange.FormatStoreDate(e.date),
		"exp_is_debit":   isDebit,
		"exp_acc_id":     accountID,
		"exp_payee_name": payee,
		"exp_cat":        e.category.MWID(),
		"exp_is_paid":    1,
		"exp_is_bill":    isBill,
		"exp_note":       note,
	}
}
