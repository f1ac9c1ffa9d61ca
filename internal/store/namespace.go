package store

import (
	"sort"

	"github.com/mwxkit/mwx/internal/model"
)

// Namespace is the fully resolved entity graph of one backup database:
// four collections kept in their natural order.
type Namespace struct {
	Accounts     []*model.Account
	Counterparts []*model.Counterpart
	Categories   []*model.Category
	Entries      []*model.Entry
}

// Sort restores the natural ordering of every collection: accounts by
// display order, counterparts and categories by name, entries by date
// then id.
func (ns *Namespace) Sort() {
	sort.SliceStable(ns.Accounts, func(i, j int) bool {
		return ns.Accounts[i].SortsBefore(ns.Accounts[j])
	})
	sort.SliceStable(ns.Counterparts, func(i, j int) bool {
		return ns.Counterparts[i].SortsBefore(ns.Counterparts[j])
	})
	sort.SliceStable(ns.Categories, func(i, j int) bool {
		return ns.Categories[i].SortsBefore(ns.Categories[j])
	})
	sort.SliceStable(ns.Entries, func(i, j int) bool {
		return ns.Entries[i].SortsBefore(ns.Entries[j])
	})
}

// AccountByID resolves an account by store id; nil if absent.
func (ns *Namespace) AccountByID(id int) *model.Account {
	for _, a := range ns.Accounts {
		if a.MWID() == id {
			return a
		}
	}
	return nil
}

// AccountByName resolves an account by name; nil if absent.
func (ns *Namespace) AccountByName(name string) *model.Account {
	for _, a := range ns.Accounts {
		if a.Name() == name {
			return a
		}
	}
	return nil
}

// CategoryByID resolves a category by signed store id; nil if absent.
func (ns *Namespace) CategoryByID(id int) *model.Category {
	for _, c := range ns.Categories {
		if c.MWID() == id {
			return c
		}
	}
	return nil
}

// CategoryByName resolves a category by its full "X99. Title" name;
// nil if absent.
func (ns *Namespace) CategoryByName(name string) *model.Category {
	for _, c := range ns.Categories {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// CategoryByCode resolves a category by its three-character code;
// nil if absent.
func (ns *Namespace) CategoryByCode(code string) *model.Category {
	for _, c := range ns.Categories {
		if c.Code() == code {
			return c
		}
	}
	return nil
}

// CounterpartByName resolves a counterpart by name; nil if absent.
func (ns *Namespace) CounterpartByName(name string) *model.Counterpart {
	for _, c := range ns.Counterparts {
		if c.Name() == name {
			return c
		}
	}
	return nil
}
