// Package model defines the wallet entities: Account, Counterpart,
// Category and Entry, with the validation invariants of the legacy
// MyWallet backup format.
package model

import "fmt"

// PendingID marks an entity that has not been persisted yet. The store
// writer assigns a real id on first insert.
const PendingID = 0

// Type identifies the direction of an entry or category.
type Type int

const (
	Expense  Type = -1
	Transfer Type = 0
	Income   Type = 1
)

func (t Type) String() string {
	switch t {
	case Expense:
		return "Expense"
	case Transfer:
		return "Transfer"
	case Income:
		return "Income"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Entity is any wallet entity.
type Entity interface {
	// MWID is the identity the entity has in the legacy store;
	// PendingID if it has none yet.
	MWID() int
	// DisplayName is the short human-facing projection used by queries
	// and reports: "@Name" for accounts, the bare name for counterparts,
	// the full "X99. Title" name for categories, the item for entries.
	DisplayName() string
	// Record is the generic flat projection of the entity.
	Record() Record
	// LegacyRecord projects the entity onto its legacy store columns.
	LegacyRecord() Record
}

// Record is a flat key-value projection of an entity, in either the
// generic or the legacy store column naming.
type Record map[string]any

// ValidationError reports an invalid field value at construction or
// mutation time. Entities are never left in an invalid state.
type ValidationError struct {
	Entity string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s.%s: %s", e.Entity, e.Field, e.Reason)
}

func invalid(entity, field, format string, args ...any) error {
	return &ValidationError{Entity: entity, Field: field, Reason: fmt.Sprintf(format, args...)}
}
