package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/mwxkit/mwx/internal/daterange"
	"github.com/mwxkit/mwx/internal/model"
	"github.com/mwxkit/mwx/internal/money"
)

// note_payee_payer values in tbl_notes.
const (
	notePayee   = 0
	notePayer   = 1
	noteNeutral = -1
)

// Read loads a backup database and reconstructs the full entity graph.
// Dangling account and category references are resolved into synthetic
// placeholders flagged Legacy; unpaid transactions are excluded.
// Malformed rows fail the whole import.
func Read(ctx context.Context, path string) (*Namespace, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	imp := &importer{
		path:         path,
		orders:       model.NewOrderCounter(),
		ns:           &Namespace{},
		counterparts: map[string]*model.Counterpart{},
	}
	steps := []func(context.Context, *sql.DB) error{
		imp.readAccounts,
		imp.readCategories,
		imp.readTransferCategories,
		imp.readTransactions,
		imp.readTransfers,
	}
	for _, step := range steps {
		if err := step(ctx, db); err != nil {
			return nil, err
		}
	}
	imp.ns.Sort()
	return imp.ns, nil
}

// importer carries the half-built graph through the import steps, so
// the reference resolvers can synthesize placeholders into it.
type importer struct {
	path         string
	orders       *model.OrderCounter
	ns           *Namespace
	counterparts map[string]*model.Counterpart
}

func (imp *importer) readAccounts(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx, `SELECT acc_id, acc_name, acc_order, acc_color, acc_is_closed FROM tbl_account`)
	if err != nil {
		return formatErr(imp.path, "tbl_account", "%v", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id, order, closed int
			name, color       string
		)
		if err := rows.Scan(&id, &name, &order, &color, &closed); err != nil {
			return formatErr(imp.path, "tbl_account", "%v", err)
		}
		a, err := model.NewAccount(model.AccountParams{
			MWID:   id,
			Name:   name,
			Order:  order,
			Color:  color,
			Hidden: closed != 0,
		}, imp.orders)
		if err != nil {
			return err
		}
		imp.ns.Accounts = append(imp.ns.Accounts, a)
	}
	return rows.Err()
}

func (imp *importer) readCategories(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx, `SELECT category_id, category_name, category_is_inc, category_icon, category_color FROM tbl_cat`)
	if err != nil {
		return formatErr(imp.path, "tbl_cat", "%v", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id, isInc, icon int
			name, color     string
		)
		if err := rows.Scan(&id, &name, &isInc, &icon, &color); err != nil {
			return formatErr(imp.path, "tbl_cat", "%v", err)
		}
		ctype := model.Expense
		if isInc != 0 {
			ctype = model.Income
		}
		c, err := model.NewCategory(model.CategoryParams{
			MWID:   id,
			Name:   name,
			Type:   ctype,
			Color:  color,
			IconID: icon,
		})
		if err != nil {
			return err
		}
		imp.ns.Categories = append(imp.ns.Categories, c)
	}
	return rows.Err()
}

// readTransferCategories scans tbl_notes for neutral rows with bracketed
// text: those are transfer categories in disguise. Other note rows are
// free-text payee/payer notes and stay untouched.
func (imp *importer) readTransferCategories(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx, `SELECT notey_id, note_text, note_payee_payer FROM tbl_notes`)
	if err != nil {
		return formatErr(imp.path, "tbl_notes", "%v", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id, flag int
			text     string
		)
		if err := rows.Scan(&id, &text, &flag); err != nil {
			return formatErr(imp.path, "tbl_notes", "%v", err)
		}
		name, ok := bracketed(text)
		if flag != noteNeutral || !ok {
			continue
		}
		c, err := model.NewCategory(model.CategoryParams{
			MWID: id,
			Name: name,
			Type: model.Transfer,
		})
		if err != nil {
			return err
		}
		imp.ns.Categories = append(imp.ns.Categories, c)
	}
	return rows.Err()
}

func (imp *importer) readTransactions(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx, `SELECT exp_id, exp_amount, exp_date, exp_is_debit, exp_acc_id, exp_payee_name, exp_cat, exp_is_paid, exp_is_bill, exp_note FROM tbl_trans`)
	if err != nil {
		return formatErr(imp.path, "tbl_trans", "%v", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id, isDebit, accID, catID, isPaid, isBill int
			amount                                    float64
			date, payee, note                         string
		)
		if err := rows.Scan(&id, &amount, &date, &isDebit, &accID, &payee, &catID, &isPaid, &isBill, &note); err != nil {
			return formatErr(imp.path, "tbl_trans", "%v", err)
		}
		if isPaid == 0 {
			continue
		}
		etype := model.Expense
		if isDebit != 0 {
			etype = model.Income
		}
		when, err := daterange.ParseStoreDate(date)
		if err != nil {
			return formatErr(imp.path, "tbl_trans", "row %d: bad date %q", id, date)
		}
		account, err := imp.account(accID)
		if err != nil {
			return formatErr(imp.path, "tbl_trans", "row %d: %v", id, err)
		}
		category, err := imp.categoryByID(catID, etype)
		if err != nil {
			return formatErr(imp.path, "tbl_trans", "row %d: %v", id, err)
		}
		counterpart := imp.counterpart(payee)
		source, target := model.Party(account), model.Party(counterpart)
		if etype == model.Income {
			source, target = target, source
		}
		item, details := itemize(note)
		e, err := model.NewEntry(model.EntryParams{
			MWID:     id,
			Amount:   money.FromFloat(amount),
			Date:     when,
			Type:     etype,
			Source:   source,
			Target:   target,
			Category: category,
			Item:     item,
			Details:  details,
			Bill:     isBill != 0,
		})
		if err != nil {
			return fmt.Errorf("tbl_trans row %d: %w", id, err)
		}
		imp.ns.Entries = append(imp.ns.Entries, e)
	}
	return rows.Err()
}

func (imp *importer) readTransfers(ctx context.Context, db *sql.DB) error {
	rows, err := db.QueryContext(ctx, `SELECT trans_id, trans_amount, trans_date, trans_from_id, trans_to_id, trans_note FROM tbl_transfer`)
	if err != nil {
		return formatErr(imp.path, "tbl_transfer", "%v", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id, fromID, toID int
			amount           float64
			date, note       string
		)
		if err := rows.Scan(&id, &amount, &date, &fromID, &toID, &note); err != nil {
			return formatErr(imp.path, "tbl_transfer", "%v", err)
		}
		when, err := daterange.ParseStoreDate(date)
		if err != nil {
			return formatErr(imp.path, "tbl_transfer", "row %d: bad date %q", id, date)
		}
		head, rest := itemize(note)
		catName, ok := bracketed(head)
		if !ok {
			return formatErr(imp.path, "tbl_transfer", "row %d: note %q lacks the bracketed category prefix", id, head)
		}
		from, err := imp.account(fromID)
		if err != nil {
			return formatErr(imp.path, "tbl_transfer", "row %d: %v", id, err)
		}
		to, err := imp.account(toID)
		if err != nil {
			return formatErr(imp.path, "tbl_transfer", "row %d: %v", id, err)
		}
		category, err := imp.categoryByName(catName)
		if err != nil {
			return formatErr(imp.path, "tbl_transfer", "row %d: %v", id, err)
		}
		item, details := itemize(rest)
		e, err := model.NewEntry(model.EntryParams{
			MWID:     id,
			Amount:   money.FromFloat(amount),
			Date:     when,
			Type:     model.Transfer,
			Source:   from,
			Target:   to,
			Category: category,
			Item:     item,
			Details:  details,
		})
		if err != nil {
			return fmt.Errorf("tbl_transfer row %d: %w", id, err)
		}
		imp.ns.Entries = append(imp.ns.Entries, e)
	}
	return rows.Err()
}

// account resolves by store id, synthesizing a Legacy placeholder with a
// deterministic name for ids the accounts table no longer has.
func (imp *importer) account(id int) (*model.Account, error) {
	if a := imp.ns.AccountByID(id); a != nil {
		return a, nil
	}
	a, err := model.NewAccount(model.AccountParams{
		MWID:   id,
		Name:   fmt.Sprintf("LEGACY%02d", id),
		Legacy: true,
	}, imp.orders)
	if err != nil {
		return nil, fmt.Errorf("dangling account id %d: %w", id, err)
	}
	imp.ns.Accounts = append(imp.ns.Accounts, a)
	return a, nil
}

// categoryByID resolves a transaction category, synthesizing a Legacy
// placeholder of the entry's type for dangling ids.
func (imp *importer) categoryByID(id int, etype model.Type) (*model.Category, error) {
	if c := imp.ns.CategoryByID(id); c != nil {
		return c, nil
	}
	c, err := model.NewCategory(model.CategoryParams{
		MWID:   id,
		Name:   fmt.Sprintf("X%02d. LEGACY %d", id, id),
		Type:   etype,
		Legacy: true,
	})
	if err != nil {
		// Ids outside [0, 99] cannot form a valid placeholder code.
		return nil, fmt.Errorf("dangling category id %d: %w", id, err)
	}
	imp.ns.Categories = append(imp.ns.Categories, c)
	return c, nil
}

// categoryByName resolves a transfer category by its full name, the only
// identity a transfer note carries. Unresolvable names share a single
// pending Legacy placeholder.
func (imp *importer) categoryByName(name string) (*model.Category, error) {
	if c := imp.ns.CategoryByName(name); c != nil {
		return c, nil
	}
	const placeholder = "X00. LEGACY"
	if c := imp.ns.CategoryByName(placeholder); c != nil {
		return c, nil
	}
	c, err := model.NewCategory(model.CategoryParams{
		MWID:   model.PendingID,
		Name:   placeholder,
		Type:   model.Transfer,
		Legacy: true,
	})
	if err != nil {
		return nil, err
	}
	imp.ns.Categories = append(imp.ns.Categories, c)
	return c, nil
}

// counterpart dedups by name across the whole import, so the same payee
// name resolves to the same instance.
func (imp *importer) counterpart(name string) *model.Counterpart {
	if c, ok := imp.counterparts[name]; ok {
		return c
	}
	c := model.NewCounterpart(name)
	imp.counterparts[name] = c
	imp.ns.Counterparts = append(imp.ns.Counterparts, c)
	return c
}

// itemize splits a note into its first line and the trimmed remainder.
func itemize(text string) (item, details string) {
	item, details, _ = strings.Cut(text, "\n")
	return strings.TrimSpace(item), strings.TrimSpace(details)
}

// bracketed strips a "[...]" wrapper, reporting whether one was present.
func bracketed(s string) (string, bool) {
	if len(s) < 2 || !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return "", false
	}
	return s[1 : len(s)-1], true
}
