package wallet

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/mwxkit/mwx/internal/daterange"
	"github.com/mwxkit/mwx/internal/model"
	"github.com/mwxkit/mwx/internal/money"
)

// Kind narrows a query to one entity collection.
type Kind int

const (
	KindAny Kind = iota
	KindAccount
	KindCounterpart
	KindCategory
	KindEntry
)

// Ref names an entity for a query filter: by instance, by store id or by
// name. Name resolution tries, in order, the exact name, the display
// name, and for categories the code and title.
type Ref struct {
	entity model.Entity
	id     int
	byID   bool
	name   string
}

func ByID(id int) Ref             { return Ref{id: id, byID: true} }
func ByName(name string) Ref      { return Ref{name: name} }
func ByEntity(e model.Entity) Ref { return Ref{entity: e} }

func (r Ref) String() string {
	switch {
	case r.entity != nil:
		return r.entity.DisplayName()
	case r.byID:
		return fmt.Sprintf("#%d", r.id)
	default:
		return r.name
	}
}

// matchParty reports whether the reference names the given party.
func (r Ref) matchParty(p model.Party) bool {
	switch {
	case r.entity != nil:
		ref, ok := r.entity.(model.Party)
		return ok && p.SameParty(ref)
	case r.byID:
		return p.MWID() == r.id
	default:
		return p.PartyName() == strings.TrimPrefix(r.name, "@") || p.DisplayName() == r.name
	}
}

// matchCategory reports whether the reference names the given category.
func (r Ref) matchCategory(c *model.Category) bool {
	switch {
	case r.entity != nil:
		ref, ok := r.entity.(*model.Category)
		return ok && c.Same(ref)
	case r.byID:
		return c.MWID() == r.id
	default:
		return c.Code() == r.name || c.Name() == r.name || c.Title() == r.name
	}
}

// alt is one alternative of a filter dimension. Party-bearing filters
// expose the matched-party predicate so a Flow filter in the same
// combination can orient itself.
type alt struct {
	match func(model.Entity) bool
	party func(model.Party) bool
}

// dimension is a filter with its alternatives; multi-valued filters fan
// out the query once per alternative.
type dimension struct {
	name string
	alts []alt
}

type query struct {
	kind Kind
	dims []dimension

	flow     int
	hasParty bool

	year, month, day          int
	yearSet, monthSet, daySet bool

	err error
}

// Option configures one Find call.
type Option func(*query)

func (q *query) fail(err error) {
	if q.err == nil {
		q.err = err
	}
}

func (q *query) add(name string, alts ...alt) {
	q.dims = append(q.dims, dimension{name: name, alts: alts})
}

// Entity narrows the candidate set to one collection.
func Entity(k Kind) Option {
	return func(q *query) { q.kind = k }
}

// Type keeps only entries (and categories) of the given types.
func Type(types ...model.Type) Option {
	return func(q *query) {
		alts := make([]alt, len(types))
		for i, t := range types {
			alts[i] = alt{match: func(e model.Entity) bool {
				switch v := e.(type) {
				case *model.Entry:
					return v.Type() == t
				case *model.Category:
					return v.Type() == t
				}
				return false
			}}
		}
		q.add("type", alts...)
	}
}

// AmountBetween keeps entries with min <= amount < max.
func AmountBetween(min, max money.Money) Option {
	return amountFilter(func(m money.Money) bool {
		return min.Cmp(m) <= 0 && m.Less(max)
	})
}

// AmountAtLeast keeps entries with amount >= min.
func AmountAtLeast(min money.Money) Option {
	return amountFilter(func(m money.Money) bool { return min.Cmp(m) <= 0 })
}

// AmountBelow keeps entries with amount < max.
func AmountBelow(max money.Money) Option {
	return amountFilter(func(m money.Money) bool { return m.Less(max) })
}

func amountFilter(ok func(money.Money) bool) Option {
	return func(q *query) {
		q.add("amount", alt{match: func(e model.Entity) bool {
			v, is := e.(*model.Entry)
			return is && ok(v.Amount())
		}})
	}
}

// Date keeps entries inside the covering range of any of the given fuzzy
// specs ("2024", "2024-06", "2024-06-15"). Multiple specs fan out.
func Date(specs ...string) Option {
	return func(q *query) {
		alts := make([]alt, 0, len(specs))
		for _, spec := range specs {
			r, err := daterange.Parse(spec)
			if err != nil {
				q.fail(err)
				return
			}
			alts = append(alts, dateAlt(r))
		}
		q.add("date", alts...)
	}
}

// DateBetween keeps entries in the explicit [from, to) span; empty specs
// leave that side open.
func DateBetween(from, to string) Option {
	return func(q *query) {
		r, err := daterange.Span(from, to)
		if err != nil {
			q.fail(err)
			return
		}
		q.add("date", dateAlt(r))
	}
}

// DateIn keeps entries inside an already resolved range.
func DateIn(r daterange.Range) Option {
	return func(q *query) { q.add("date", dateAlt(r)) }
}

func dateAlt(r daterange.Range) alt {
	return alt{match: func(e model.Entity) bool {
		v, is := e.(*model.Entry)
		return is && r.Contains(v.Date())
	}}
}

// Year, Month and Day combine into a single wildcard date filter:
// Year(2024) with Day(15) keeps the 15th of every month of 2024.
func Year(y int) Option {
	return func(q *query) { q.year, q.yearSet = y, true }
}

func Month(m int) Option {
	return func(q *query) { q.month, q.monthSet = m, true }
}

func Day(d int) Option {
	return func(q *query) { q.day, q.daySet = d, true }
}

// Source keeps entries whose source matches any of the references.
func Source(refs ...Ref) Option { return sideFilter("source", refs, pickSource) }

// Target keeps entries whose target matches any of the references.
func Target(refs ...Ref) Option { return sideFilter("target", refs, pickTarget) }

func pickSource(e *model.Entry) model.Party { return e.Source() }
func pickTarget(e *model.Entry) model.Party { return e.Target() }

func sideFilter(name string, refs []Ref, side func(*model.Entry) model.Party) Option {
	return func(q *query) {
		q.hasParty = true
		alts := make([]alt, len(refs))
		for i, r := range refs {
			party := r.matchParty
			alts[i] = alt{
				party: party,
				match: func(e model.Entity) bool {
					v, is := e.(*model.Entry)
					return is && party(side(v))
				},
			}
		}
		q.add(name, alts...)
	}
}

// Account keeps entries with the referenced account on either side.
func Account(refs ...Ref) Option { return partyFilter("account", refs, isAccount) }

// Counterpart keeps entries with the referenced counterpart on either side.
func Counterpart(refs ...Ref) Option { return partyFilter("counterpart", refs, isCounterpart) }

func isAccount(p model.Party) bool     { _, ok := p.(*model.Account); return ok }
func isCounterpart(p model.Party) bool { _, ok := p.(*model.Counterpart); return ok }

func partyFilter(name string, refs []Ref, kindOK func(model.Party) bool) Option {
	return func(q *query) {
		q.hasParty = true
		alts := make([]alt, len(refs))
		for i, r := range refs {
			party := func(p model.Party) bool { return kindOK(p) && r.matchParty(p) }
			alts[i] = alt{
				party: party,
				match: func(e model.Entity) bool {
					v, is := e.(*model.Entry)
					return is && v.FlowWhere(party) != 0
				},
			}
		}
		q.add(name, alts...)
	}
}

// Category keeps entries whose category matches any of the references.
func Category(refs ...Ref) Option {
	return func(q *query) {
		alts := make([]alt, len(refs))
		for i, r := range refs {
			alts[i] = alt{match: func(e model.Entity) bool {
				v, is := e.(*model.Entry)
				return is && r.matchCategory(v.Category())
			}}
		}
		q.add("category", alts...)
	}
}

// Flow keeps entries where the party named by the Account, Source or
// Target filter of the same call is receiving (+1) or sending (-1).
func Flow(direction int) Option {
	return func(q *query) {
		if direction != 1 && direction != -1 {
			q.fail(fmt.Errorf("wallet: flow must be +1 or -1, got %d", direction))
			return
		}
		q.flow = direction
	}
}

// Item keeps entries whose item matches any of the patterns:
// case-insensitive substring, or exact after a leading "!".
func Item(patterns ...string) Option {
	return textFilter("item", patterns, (*model.Entry).Item)
}

// Details keeps entries whose details match any of the patterns, with
// Item's pattern syntax.
func Details(patterns ...string) Option {
	return textFilter("details", patterns, (*model.Entry).Details)
}

func textFilter(name string, patterns []string, get func(*model.Entry) string) Option {
	return func(q *query) {
		alts := make([]alt, len(patterns))
		for i, p := range patterns {
			match := textMatcher(p)
			alts[i] = alt{match: func(e model.Entity) bool {
				v, is := e.(*model.Entry)
				return is && match(get(v))
			}}
		}
		q.add(name, alts...)
	}
}

func textMatcher(pattern string) func(string) bool {
	if exact, ok := strings.CutPrefix(pattern, "!"); ok {
		return func(s string) bool { return s == exact }
	}
	want := strings.ToLower(pattern)
	return func(s string) bool { return strings.Contains(strings.ToLower(s), want) }
}

// Where keeps entities satisfying an arbitrary predicate.
func Where(pred func(model.Entity) bool) Option {
	return func(q *query) {
		q.add("where", alt{match: pred})
	}
}

// Find runs one query over the wallet's collections and returns every
// entity matching all filters. Filters given several values fan the
// query out over the Cartesian product of the value lists, concatenating
// the per-combination results without deduplication.
func (w *Wallet) Find(opts ...Option) ([]model.Entity, error) {
	q := &query{}
	for _, opt := range opts {
		opt(q)
	}
	if q.err != nil {
		return nil, q.err
	}
	if q.yearSet || q.monthSet || q.daySet {
		r, err := daterange.Of(q.year, q.month, q.day)
		if err != nil {
			return nil, err
		}
		q.add("date", dateAlt(r))
	}
	if q.flow != 0 && !q.hasParty {
		return nil, fmt.Errorf("wallet: flow filter needs an account, source or target filter")
	}

	candidates := w.candidates(q.kind)
	var out []model.Entity
	for _, combo := range combinations(q.dims) {
		party := comboParty(combo)
	scan:
		for _, e := range candidates {
			for _, a := range combo {
				if !a.match(e) {
					continue scan
				}
			}
			if q.flow != 0 {
				v, is := e.(*model.Entry)
				if !is || v.FlowWhere(party) != q.flow {
					continue
				}
			}
			out = append(out, e)
		}
	}
	return out, nil
}

// FindEntries is Find narrowed to entries, with typed results.
func (w *Wallet) FindEntries(opts ...Option) ([]*model.Entry, error) {
	found, err := w.Find(append(opts, Entity(KindEntry))...)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Entry, len(found))
	for i, e := range found {
		out[i] = e.(*model.Entry)
	}
	return out, nil
}

func (w *Wallet) candidates(k Kind) []model.Entity {
	var out []model.Entity
	if k == KindAny || k == KindAccount {
		for _, a := range w.Accounts {
			out = append(out, a)
		}
	}
	if k == KindAny || k == KindCounterpart {
		for _, c := range w.Counterparts {
			out = append(out, c)
		}
	}
	if k == KindAny || k == KindCategory {
		for _, c := range w.Categories {
			out = append(out, c)
		}
	}
	if k == KindAny || k == KindEntry {
		for _, e := range w.Entries {
			out = append(out, e)
		}
	}
	return out
}

// combinations expands the Cartesian product of every dimension's
// alternatives. With no multi-valued dimension the product is a single
// combination.
func combinations(dims []dimension) [][]alt {
	combos := [][]alt{nil}
	for _, d := range dims {
		next := make([][]alt, 0, len(combos)*len(d.alts))
		for _, c := range combos {
			for _, a := range d.alts {
				combo := make([]alt, len(c), len(c)+1)
				copy(combo, c)
				next = append(next, append(combo, a))
			}
		}
		combos = next
	}
	return combos
}

// comboParty returns the party predicate a Flow filter orients against:
// the last party-bearing alternative of the combination.
func comboParty(combo []alt) func(model.Party) bool {
	for i := len(combo) - 1; i >= 0; i-- {
		if combo[i].party != nil {
			return combo[i].party
		}
	}
	return func(model.Party) bool { return false }
}

// Attr keeps entities whose named attribute equals the given value.
// Entities of a kind without that attribute never match. Unknown
// attribute names are a construction error, with a spelling suggestion
// when a known name is close.
func Attr(name string, value any) Option {
	return func(q *query) {
		accessor, ok := attrAccessors[name]
		if !ok {
			q.fail(unknownAttrError(name))
			return
		}
		q.add("attr:"+name, alt{match: func(e model.Entity) bool {
			got, has := accessor(e)
			return has && got == value
		}})
	}
}

var attrAccessors = map[string]func(model.Entity) (any, bool){
	"mwid": func(e model.Entity) (any, bool) { return e.MWID(), true },
	"name": func(e model.Entity) (any, bool) {
		switch v := e.(type) {
		case *model.Account:
			return v.Name(), true
		case *model.Counterpart:
			return v.Name(), true
		case *model.Category:
			return v.Name(), true
		}
		return nil, false
	},
	"code": func(e model.Entity) (any, bool) {
		v, ok := e.(*model.Category)
		if !ok {
			return nil, false
		}
		return v.Code(), true
	},
	"title": func(e model.Entity) (any, bool) {
		v, ok := e.(*model.Category)
		if !ok {
			return nil, false
		}
		return v.Title(), true
	},
	"color": func(e model.Entity) (any, bool) {
		switch v := e.(type) {
		case *model.Account:
			return v.Color(), true
		case *model.Category:
			return v.Color(), true
		}
		return nil, false
	},
	"order": func(e model.Entity) (any, bool) {
		v, ok := e.(*model.Account)
		if !ok {
			return nil, false
		}
		return v.Order(), true
	},
	"icon": func(e model.Entity) (any, bool) {
		v, ok := e.(*model.Category)
		if !ok {
			return nil, false
		}
		return v.IconID(), true
	},
	"type": func(e model.Entity) (any, bool) {
		switch v := e.(type) {
		case *model.Category:
			return v.Type(), true
		case *model.Entry:
			return v.Type(), true
		}
		return nil, false
	},
	"item": func(e model.Entity) (any, bool) {
		v, ok := e.(*model.Entry)
		if !ok {
			return nil, false
		}
		return v.Item(), true
	},
	"details": func(e model.Entity) (any, bool) {
		v, ok := e.(*model.Entry)
		if !ok {
			return nil, false
		}
		return v.Details(), true
	},
	"bill": func(e model.Entity) (any, bool) {
		v, ok := e.(*model.Entry)
		if !ok {
			return nil, false
		}
		return v.Bill, true
	},
	"visible": func(e model.Entity) (any, bool) {
		v, ok := e.(*model.Account)
		if !ok {
			return nil, false
		}
		return v.Visible, true
	},
	"legacy": func(e model.Entity) (any, bool) {
		switch v := e.(type) {
		case *model.Account:
			return v.Legacy, true
		case *model.Category:
			return v.Legacy, true
		}
		return nil, false
	},
}

func unknownAttrError(name string) error {
	best, bestDist := "", len(name)+1
	for known := range attrAccessors {
		if d := levenshtein.ComputeDistance(name, known); d < bestDist {
			best, bestDist = known, d
		}
	}
	if best != "" && bestDist <= 3 {
		return fmt.Errorf("wallet: unknown attribute %q (did you mean %q?)", name, best)
	}
	return fmt.Errorf("wallet: unknown attribute %q", name)
}
