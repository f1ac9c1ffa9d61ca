package model

import "fmt"

// Counterpart is the non-account party of an income or expense. It exists
// only in memory: the store keeps counterpart names inline on transaction
// rows, so a counterpart has no identity of its own and serializes to an
// empty legacy record.
type Counterpart struct {
	name string
}

func NewCounterpart(name string) *Counterpart {
	return &Counterpart{name: name}
}

func (c *Counterpart) MWID() int           { return PendingID }
func (c *Counterpart) Name() string        { return c.name }
func (c *Counterpart) DisplayName() string { return c.name }
func (c *Counterpart) PartyName() string   { return c.name }
func (c *Counterpart) sealedParty()        {}

// SameParty: counterparts compare by name; never equal to an account.
func (c *Counterpart) SameParty(o Party) bool {
	d, ok := o.(*Counterpart)
	return ok && c.name == d.name
}

// SortsBefore: counterparts order by name and come after every account.
func (c *Counterpart) SortsBefore(o Party) bool {
	if d, ok := o.(*Counterpart); ok {
		return c.name < d.name
	}
	return false
}

func (c *Counterpart) String() string {
	return fmt.Sprintf("Counterpart(%q)", c.name)
}

func (c *Counterpart) Record() Record {
	return Record{"name": c.name}
}

// LegacyRecord is empty: counterparts are never persisted as rows.
func (c *Counterpart) LegacyRecord() Record {
	return Record{}
}
