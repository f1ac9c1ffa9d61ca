package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mwxkit/mwx/internal/model"
	"github.com/mwxkit/mwx/internal/money"
)

// seedStore creates a backup database with two accounts, two transaction
// categories, one transfer category, a free-text note, two paid and one
// unpaid transaction, and one transfer.
func seedStore(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wallet.sqlite")
	require.NoError(t, Init(path))

	db, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	stmts := []struct {
		sql  string
		args []any
	}{
		{`INSERT INTO tbl_account(acc_id, acc_name, acc_order, acc_color, acc_is_closed) VALUES(?, ?, ?, ?, ?)`,
			[]any{1, "Cash", 1, "#112233", 0}},
		{`INSERT INTO tbl_account(acc_id, acc_name, acc_order, acc_color, acc_is_closed) VALUES(?, ?, ?, ?, ?)`,
			[]any{2, "Bank", 2, "#445566", 0}},
		{`INSERT INTO tbl_cat(category_id, category_name, category_is_inc, category_icon, category_color) VALUES(?, ?, ?, ?, ?)`,
			[]any{11, "E01. Groceries", 0, 5, "#aabbcc"}},
		{`INSERT INTO tbl_cat(category_id, category_name, category_is_inc, category_icon, category_color) VALUES(?, ?, ?, ?, ?)`,
			[]any{21, "I01. Salary", 1, 7, "#ddeeff"}},
		{`INSERT INTO tbl_notes(notey_id, note_text, note_payee_payer) VALUES(?, ?, ?)`,
			[]any{4, "[T01. Moves]", -1}},
		{`INSERT INTO tbl_notes(notey_id, note_text, note_payee_payer) VALUES(?, ?, ?)`,
			[]any{9, "just a note", 0}},
		{`INSERT INTO tbl_trans(exp_id, exp_amount, exp_date, exp_is_debit, exp_acc_id, exp_payee_name, exp_cat, exp_is_paid, exp_is_bill, exp_note) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			[]any{100, 12.5, "20240315", 0, 1, "Corner shop", 11, 1, 0, "Bread\nrye"}},
		{`INSERT INTO tbl_trans(exp_id, exp_amount, exp_date, exp_is_debit, exp_acc_id, exp_payee_name, exp_cat, exp_is_paid, exp_is_bill, exp_note) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			[]any{101, 2000, "20240301", 1, 2, "Employer", 21, 1, 0, "Salary"}},
		{`INSERT INTO tbl_trans(exp_id, exp_amount, exp_date, exp_is_debit, exp_acc_id, exp_payee_name, exp_cat, exp_is_paid, exp_is_bill, exp_note) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			[]any{102, 5, "20240310", 0, 1, "Kiosk", 11, 0, 0, "unpaid"}},
		{`INSERT INTO tbl_transfer(trans_id, trans_amount, trans_date, trans_from_id, trans_to_id, trans_note) VALUES(?, ?, ?, ?, ?, ?)`,
			[]any{1, 50, "20240316", 1, 2, "[T01. Moves]\nTop up"}},
	}
	for _, s := range stmts {
		_, err := db.Exec(s.sql, s.args...)
		require.NoError(t, err)
	}
	return path
}

func countRows(t *testing.T, path, table string) int {
	t.Helper()
	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestReadGraph(t *testing.T) {
	t.Parallel()

	path := seedStore(t)
	ns, err := Read(context.Background(), path)
	require.NoError(t, err)

	require.Len(t, ns.Accounts, 2)
	require.Len(t, ns.Categories, 3)
	require.Len(t, ns.Counterparts, 2, "unpaid rows contribute no counterpart")
	require.Len(t, ns.Entries, 3, "unpaid transactions are excluded")

	moves := ns.CategoryByCode("T01")
	require.NotNil(t, moves)
	require.Equal(t, -4, moves.MWID(), "transfer categories carry a negated note id")
	require.Equal(t, model.Transfer, moves.Type())

	var transfer *model.Entry
	for _, e := range ns.Entries {
		if e.Type() == model.Transfer {
			transfer = e
		}
	}
	require.NotNil(t, transfer)
	require.Equal(t, -1, transfer.MWID())
	require.Equal(t, "Top up", transfer.Item())
	require.Same(t, ns.AccountByName("Cash"), transfer.Source())
	require.Same(t, ns.AccountByName("Bank"), transfer.Target())
	require.Same(t, moves, transfer.Category())

	expense := ns.Entries[1] // entries sort by date: 0301, 0315, 0316
	require.Equal(t, 100, expense.MWID())
	require.Equal(t, "Bread", expense.Item())
	require.Equal(t, "rye", expense.Details())
	require.Equal(t, "12.50", expense.Amount().String())
	require.Same(t, ns.CounterpartByName("Corner shop"), expense.Target())
}

func TestReadDedupsCounterparts(t *testing.T) {
	t.Parallel()

	path := seedStore(t)
	db, err := Open(path)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO tbl_trans(exp_id, exp_amount, exp_date, exp_is_debit, exp_acc_id, exp_payee_name, exp_cat, exp_is_paid, exp_is_bill, exp_note) VALUES(103, 3, '20240320', 0, 1, 'Corner shop', 11, 1, 0, 'Milk')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	ns, err := Read(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, ns.Counterparts, 2, "same payee name resolves to one instance")

	var shopEntries []*model.Entry
	for _, e := range ns.Entries {
		if e.Involves(ns.CounterpartByName("Corner shop")) {
			shopEntries = append(shopEntries, e)
		}
	}
	require.Len(t, shopEntries, 2)
	require.Same(t, shopEntries[0].Target(), shopEntries[1].Target())
}

func TestReadSynthesizesLegacyPlaceholders(t *testing.T) {
	t.Parallel()

	path := seedStore(t)
	db, err := Open(path)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO tbl_trans(exp_id, exp_amount, exp_date, exp_is_debit, exp_acc_id, exp_payee_name, exp_cat, exp_is_paid, exp_is_bill, exp_note) VALUES(104, 9, '20240321', 0, 7, 'Ghost', 99, 1, 0, 'Dangling')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	ns, err := Read(context.Background(), path)
	require.NoError(t, err)

	ghost := ns.AccountByID(7)
	require.NotNil(t, ghost)
	require.True(t, ghost.Legacy)
	require.Equal(t, "LEGACY07", ghost.Name())

	cat := ns.CategoryByID(99)
	require.NotNil(t, cat)
	require.True(t, cat.Legacy)
	require.Equal(t, "X99. LEGACY 99", cat.Name())
	require.Equal(t, model.Expense, cat.Type())
}

func TestReadRejectsUnplaceableCategoryID(t *testing.T) {
	t.Parallel()

	path := seedStore(t)
	db, err := Open(path)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO tbl_trans(exp_id, exp_amount, exp_date, exp_is_debit, exp_acc_id, exp_payee_name, exp_cat, exp_is_paid, exp_is_bill, exp_note) VALUES(106, 4, '20240322', 0, 1, 'Shop', 123, 1, 0, 'Dangling wide')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = Read(context.Background(), path)
	var ferr *FormatError
	require.ErrorAs(t, err, &ferr, "category ids past 99 cannot form a placeholder code")
	require.Equal(t, "tbl_trans", ferr.Table)
	require.Contains(t, err.Error(), "123")
}

func TestReadRejectsBadDate(t *testing.T) {
	t.Parallel()

	path := seedStore(t)
	db, err := Open(path)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO tbl_trans(exp_id, exp_amount, exp_date, exp_is_debit, exp_acc_id, exp_payee_name, exp_cat, exp_is_paid, exp_is_bill, exp_note) VALUES(105, 9, 'yesterday', 0, 1, 'Shop', 11, 1, 0, '')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = Read(context.Background(), path)
	var ferr *FormatError
	require.ErrorAs(t, err, &ferr)
	require.Equal(t, "tbl_trans", ferr.Table)
}

func TestReadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Read(context.Background(), filepath.Join(t.TempDir(), "nope.sqlite"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteRoundTrip(t *testing.T) {
	t.Parallel()

	path := seedStore(t)
	ctx := context.Background()
	ns, err := Read(ctx, path)
	require.NoError(t, err)

	target := filepath.Join(t.TempDir(), "copy.sqlite")
	report, err := Write(ctx, ns, path, WriteOptions{Path: target})
	require.NoError(t, err)
	require.Equal(t, target, report.Path)
	require.Empty(t, report.Warnings)
	require.Zero(t, report.Inserted)
	require.Zero(t, report.Deleted)

	again, err := Read(ctx, target)
	require.NoError(t, err)
	require.Len(t, again.Entries, 3)
	for i, e := range ns.Entries {
		require.Equal(t, e.MWID(), again.Entries[i].MWID())
		require.Equal(t, e.Amount().String(), again.Entries[i].Amount().String())
		require.Equal(t, e.Date(), again.Entries[i].Date())
		require.Equal(t, e.Item(), again.Entries[i].Item())
		require.Equal(t, e.Category().Code(), again.Entries[i].Category().Code())
	}

	db, err := Open(target)
	require.NoError(t, err)
	defer db.Close()
	var text string
	require.NoError(t, db.QueryRow(`SELECT note_text FROM tbl_notes WHERE notey_id = 9`).Scan(&text))
	require.Equal(t, "just a note", text, "free-text notes survive the diff untouched")
}

func TestWriteKeepsUnpaidRows(t *testing.T) {
	t.Parallel()

	path := seedStore(t)
	ctx := context.Background()
	ns, err := Read(ctx, path)
	require.NoError(t, err)

	target := filepath.Join(t.TempDir(), "unpaid.sqlite")
	report, err := Write(ctx, ns, path, WriteOptions{Path: target})
	require.NoError(t, err)
	require.Zero(t, report.Deleted)

	db, err := Open(target)
	require.NoError(t, err)
	defer db.Close()
	var paid int
	require.NoError(t, db.QueryRow(`SELECT exp_is_paid FROM tbl_trans WHERE exp_id = 102`).Scan(&paid))
	require.Zero(t, paid, "unpaid rows stay outside the diff")
	require.Equal(t, 3, countRows(t, target, "tbl_trans"))
}

func TestWriteKeepsAccountBalanceColumns(t *testing.T) {
	t.Parallel()

	path := seedStore(t)
	ctx := context.Background()
	db, err := Open(path)
	require.NoError(t, err)
	_, err = db.Exec(`UPDATE tbl_account SET acc_init_balance = 500.5, acc_min_limit = -20 WHERE acc_id = 1`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	ns, err := Read(ctx, path)
	require.NoError(t, err)
	require.NoError(t, ns.AccountByName("Cash").SetColor("#654321"))

	target := filepath.Join(t.TempDir(), "balances.sqlite")
	_, err = Write(ctx, ns, path, WriteOptions{Path: target})
	require.NoError(t, err)

	db, err = Open(target)
	require.NoError(t, err)
	defer db.Close()
	var balance, limit float64
	var color string
	require.NoError(t, db.QueryRow(`SELECT acc_init_balance, acc_min_limit, acc_color FROM tbl_account WHERE acc_id = 1`).Scan(&balance, &limit, &color))
	require.Equal(t, 500.5, balance, "uninterpreted columns keep their stored values")
	require.Equal(t, -20.0, limit)
	require.Equal(t, "#654321", color)
}

func TestWriteInsertAssignsIdentity(t *testing.T) {
	t.Parallel()

	path := seedStore(t)
	ctx := context.Background()
	ns, err := Read(ctx, path)
	require.NoError(t, err)

	cash := ns.AccountByName("Cash")
	groceries := ns.CategoryByCode("E01")
	entry, err := model.NewEntry(model.EntryParams{
		Amount: money.FromFloat(7.77),
		Date:   time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		Type:   model.Expense,
		Source: cash, Target: model.NewCounterpart("Bakery"),
		Category: groceries, Item: "Buns",
	})
	require.NoError(t, err)
	ns.Entries = append(ns.Entries, entry)

	target := filepath.Join(t.TempDir(), "grown.sqlite")
	report, err := Write(ctx, ns, path, WriteOptions{Path: target})
	require.NoError(t, err)
	require.Equal(t, 1, report.Inserted)
	require.Positive(t, entry.MWID(), "the generated id is reflected back")

	again, err := Read(ctx, target)
	require.NoError(t, err)
	require.Len(t, again.Entries, 4)
	found := false
	for _, e := range again.Entries {
		if e.MWID() == entry.MWID() {
			found = true
			require.Equal(t, "Buns", e.Item())
			require.Equal(t, "7.77", e.Amount().String())
		}
	}
	require.True(t, found)
}

func TestWriteDeletionConverges(t *testing.T) {
	t.Parallel()

	path := seedStore(t)
	ctx := context.Background()
	ns, err := Read(ctx, path)
	require.NoError(t, err)

	kept := make([]*model.Entry, 0, len(ns.Entries))
	for _, e := range ns.Entries {
		if e.MWID() != 100 {
			kept = append(kept, e)
		}
	}
	ns.Entries = kept

	target := filepath.Join(t.TempDir(), "pruned.sqlite")
	report, err := Write(ctx, ns, path, WriteOptions{Path: target})
	require.NoError(t, err)
	require.Equal(t, 1, report.Deleted)

	again, err := Read(ctx, target)
	require.NoError(t, err)
	require.Len(t, again.Entries, 2)
	for _, e := range again.Entries {
		require.NotEqual(t, 100, e.MWID())
	}
}

func TestWriteOrphanWarnsAndSkips(t *testing.T) {
	t.Parallel()

	path := seedStore(t)
	ctx := context.Background()
	ns, err := Read(ctx, path)
	require.NoError(t, err)

	orphan, err := model.NewEntry(model.EntryParams{
		MWID:   999,
		Amount: money.FromInt(1),
		Date:   time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC),
		Type:   model.Expense,
		Source: ns.AccountByName("Cash"), Target: model.NewCounterpart("Nobody"),
		Category: ns.CategoryByCode("E01"),
	})
	require.NoError(t, err)
	ns.Entries = append(ns.Entries, orphan)

	before := countRows(t, path, "tbl_trans")
	target := filepath.Join(t.TempDir(), "warned.sqlite")
	report, err := Write(ctx, ns, path, WriteOptions{Path: target})
	require.NoError(t, err)
	require.Len(t, report.Warnings, 1)
	require.Equal(t, RefWarning{Table: "tbl_trans", ID: 999}, report.Warnings[0])
	require.Equal(t, before, countRows(t, target, "tbl_trans"))
}

func TestWriteLegacySkipped(t *testing.T) {
	t.Parallel()

	path := seedStore(t)
	ctx := context.Background()
	db, err := Open(path)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO tbl_trans(exp_id, exp_amount, exp_date, exp_is_debit, exp_acc_id, exp_payee_name, exp_cat, exp_is_paid, exp_is_bill, exp_note) VALUES(104, 9, '20240321', 0, 7, 'Ghost', 99, 1, 0, 'Dangling')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	ns, err := Read(ctx, path)
	require.NoError(t, err)

	target := filepath.Join(t.TempDir(), "legacy.sqlite")
	report, err := Write(ctx, ns, path, WriteOptions{Path: target})
	require.NoError(t, err)
	require.Empty(t, report.Warnings, "legacy placeholders do not count as orphans")
	require.Equal(t, 2, countRows(t, target, "tbl_account"), "placeholders are never written back")
	require.Equal(t, 2, countRows(t, target, "tbl_cat"))
}

func TestWritePathConflict(t *testing.T) {
	t.Parallel()

	path := seedStore(t)
	ctx := context.Background()
	ns, err := Read(ctx, path)
	require.NoError(t, err)

	target := filepath.Join(t.TempDir(), "taken.sqlite")
	require.NoError(t, os.WriteFile(target, []byte("occupied"), 0o644))

	_, err = Write(ctx, ns, path, WriteOptions{Path: target})
	var conflict *PathConflictError
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, target, conflict.Path)

	_, err = Write(ctx, ns, path, WriteOptions{Path: target, Overwrite: true})
	require.NoError(t, err)
	_, err = Read(ctx, target)
	require.NoError(t, err)
}

func TestWritePatternNaming(t *testing.T) {
	t.Parallel()

	path := seedStore(t)
	ctx := context.Background()
	ns, err := Read(ctx, path)
	require.NoError(t, err)

	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	report, err := Write(ctx, ns, path, WriteOptions{Now: func() time.Time { return now }})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(filepath.Dir(path), "MWX_20240506_070809_wallet.sqlite"), report.Path)
}

func TestInitRefusesExisting(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "fresh.sqlite")
	require.NoError(t, Init(path))
	err := Init(path)
	var conflict *PathConflictError
	require.ErrorAs(t, err, &conflict)
}
