package wallet

import (
	"github.com/mwxkit/mwx/internal/daterange"
	"github.com/mwxkit/mwx/internal/model"
	"github.com/mwxkit/mwx/internal/money"
)

// Sum totals the signed movement of an account over a period: each
// matching entry contributes amount x flow, +1 when the account receives
// and -1 when it sends. An empty dateSpec covers everything. Extra
// filters narrow the entry set further.
func (w *Wallet) Sum(account Ref, dateSpec string, opts ...Option) (money.Money, error) {
	rng := daterange.New(daterange.Min(), daterange.Max())
	if dateSpec != "" {
		r, err := daterange.Parse(dateSpec)
		if err != nil {
			return money.Money{}, err
		}
		rng = r
	}
	return w.sumRange(account, rng, opts)
}

// Budget totals everything strictly before the period named by dateSpec:
// the balance the account entered that period with.
func (w *Wallet) Budget(account Ref, dateSpec string) (money.Money, error) {
	r, err := daterange.Parse(dateSpec)
	if err != nil {
		return money.Money{}, err
	}
	return w.sumRange(account, daterange.New(daterange.Min(), r.Start()), nil)
}

func (w *Wallet) sumRange(account Ref, rng daterange.Range, opts []Option) (money.Money, error) {
	entries, err := w.FindEntries(append(opts, Account(account), DateIn(rng))...)
	if err != nil {
		return money.Money{}, err
	}
	matches := func(p model.Party) bool { return isAccount(p) && account.matchParty(p) }
	var total money.Money
	for _, e := range entries {
		total = total.Add(e.Amount().MulInt(e.FlowWhere(matches)))
	}
	return total, nil
}
