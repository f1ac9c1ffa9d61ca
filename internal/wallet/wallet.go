// Package wallet is the user-facing surface of the toolkit: it wraps the
// entity graph of one backup database with query, aggregation and
// round-trip persistence operations.
package wallet

import (
	"context"
	"errors"

	"github.com/mwxkit/mwx/internal/model"
	"github.com/mwxkit/mwx/internal/store"
)

// ErrMissingPath reports a write with nowhere to go: no explicit target,
// no earlier write and no source file to use as template.
var ErrMissingPath = errors.New("wallet: no store path to write to")

// Wallet is the working set of one backup database: the four entity
// collections plus the paths of the files it came from and went to.
type Wallet struct {
	*store.Namespace

	// SourcePath is the file the wallet was read from; empty for a
	// wallet built in memory.
	SourcePath string
	// TargetPath is the file the last write produced.
	TargetPath string
}

// New returns an empty in-memory wallet.
func New() *Wallet {
	return &Wallet{Namespace: &store.Namespace{}}
}

// Read loads a wallet from a backup database.
func Read(ctx context.Context, path string) (*Wallet, error) {
	ns, err := store.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	return &Wallet{Namespace: ns, SourcePath: path}, nil
}

// Write persists the wallet into a new backup file, using the last
// written file (or the source file) as template. Subsequent writes build
// on the previous one.
func (w *Wallet) Write(ctx context.Context, opts store.WriteOptions) (*store.WriteReport, error) {
	template := w.TargetPath
	if template == "" {
		template = w.SourcePath
	}
	if template == "" {
		return nil, ErrMissingPath
	}
	report, err := store.Write(ctx, w.Namespace, template, opts)
	if err != nil {
		return nil, err
	}
	w.TargetPath = report.Path
	return report, nil
}

// Incomes lists the entries of Income type, in natural order.
func (w *Wallet) Incomes() []*model.Entry { return w.entriesOf(model.Income) }

// Expenses lists the entries of Expense type, in natural order.
func (w *Wallet) Expenses() []*model.Entry { return w.entriesOf(model.Expense) }

// Transfers lists the entries of Transfer type, in natural order.
func (w *Wallet) Transfers() []*model.Entry { return w.entriesOf(model.Transfer) }

func (w *Wallet) entriesOf(t model.Type) []*model.Entry {
	var out []*model.Entry
	for _, e := range w.Entries {
		if e.Type() == t {
			out = append(out, e)
		}
	}
	return out
}

// Rows projects the entries into flat records for exporters and reports:
// date, item, signed amount, account, counterpart and category fields.
// With duplicateTransfers each transfer yields two rows, one per account
// side, so per-account groupings see both movements.
func (w *Wallet) Rows(duplicateTransfers bool) []model.Record {
	var rows []model.Record
	for _, e := range w.Entries {
		if e.Type() == model.Transfer && duplicateTransfers {
			rows = append(rows,
				transferRow(e, e.Source()),
				transferRow(e, e.Target()))
			continue
		}
		account, other := e.Source(), e.Target()
		if e.Type() == model.Income {
			account, other = other, account
		}
		rows = append(rows, model.Record{
			"date":     e.Date(),
			"item":     e.Item(),
			"details":  e.Details(),
			"amount":   e.Amount().MulInt(e.Flow(account)),
			"account":  account.DisplayName(),
			"party":    other.DisplayName(),
			"category": e.Category().Code(),
			"type":     e.Type().String(),
		})
	}
	return rows
}

func transferRow(e *model.Entry, side model.Party) model.Record {
	other := e.Target()
	if side.SameParty(other) {
		other = e.Source()
	}
	return model.Record{
		"date":     e.Date(),
		"item":     e.Item(),
		"details":  e.Details(),
		"amount":   e.Amount().MulInt(e.Flow(side)),
		"account":  side.DisplayName(),
		"party":    other.DisplayName(),
		"category": e.Category().Code(),
		"type":     e.Type().String(),
	}
}
