package model

// Party is one side of an entry: either an *Account or a *Counterpart.
// The two cases carry their own identity and display-name projection;
// entry validation dispatches on the concrete case per entry type.
type Party interface {
	Entity

	// PartyName is the bare name, without display decoration.
	PartyName() string
	// SameParty reports identity within the variant: accounts compare
	// equal only to accounts with the same name, counterparts only to
	// counterparts with the same name.
	SameParty(Party) bool
	// SortsBefore orders parties for combined listings: accounts by
	// display order, then all counterparts by name.
	SortsBefore(Party) bool

	sealedParty()
}
