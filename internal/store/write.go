package store

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mwxkit/mwx/internal/model"
)

// DefaultNamePattern names written stores after the write time and the
// template's filename stem.
const DefaultNamePattern = "MWX_{now}_{stem}.sqlite"

// WriteOptions controls target naming and conflict policy.
type WriteOptions struct {
	// Path is the explicit target; when empty the target is built from
	// Pattern inside the template's directory.
	Path string
	// Pattern may contain {now} and {stem} placeholders. Defaults to
	// DefaultNamePattern.
	Pattern string
	// Overwrite authorizes replacing an existing target.
	Overwrite bool

	// Now and Logger default to time.Now and slog.Default.
	Now    func() time.Time
	Logger *slog.Logger
}

// WriteReport summarizes one write: the target path, per-operation row
// counts, and the non-fatal referential warnings collected along the way.
type WriteReport struct {
	Path     string
	Inserted int
	Updated  int
	Deleted  int
	Warnings []RefWarning
}

// Write materializes a new backup file: it copies the template store,
// then diffs the in-memory graph against each table of the copy and
// applies inserts, updates and deletions. The template is never touched.
// Inserts assign the generated ids back onto the in-memory entities.
func Write(ctx context.Context, ns *Namespace, templatePath string, opts WriteOptions) (*WriteReport, error) {
	if _, err := os.Stat(templatePath); err != nil {
		return nil, err
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	target := opts.Path
	if target == "" {
		pattern := opts.Pattern
		if pattern == "" {
			pattern = DefaultNamePattern
		}
		target = filepath.Join(filepath.Dir(templatePath), expandPattern(pattern, templatePath, opts.Now()))
	}
	if _, err := os.Stat(target); err == nil && !opts.Overwrite {
		return nil, &PathConflictError{Path: target}
	}

	tmp := filepath.Join(filepath.Dir(target), ".mwx-"+uuid.NewString()+".tmp")
	if err := copyFile(templatePath, tmp); err != nil {
		return nil, err
	}
	defer os.Remove(tmp)

	report := &WriteReport{Path: target}
	if err := syncAll(ctx, ns, tmp, report, opts.Logger); err != nil {
		return nil, err
	}
	if err := os.Rename(tmp, target); err != nil {
		return nil, err
	}
	return report, nil
}

func syncAll(ctx context.Context, ns *Namespace, path string, report *WriteReport, logger *slog.Logger) error {
	db, err := Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	// Accounts and categories first: entry records reference their ids,
	// and item records are built lazily at apply time so freshly
	// assigned ids propagate into dependent rows.
	tables := []struct {
		spec  tableSpec
		items []syncItem
	}{
		{accountTable, accountItems(ns)},
		{categoryTable, categoryItems(ns, false)},
		{noteTable, categoryItems(ns, true)},
		{transactionTable, entryItems(ns, false)},
		{transferTable, entryItems(ns, true)},
	}
	for _, t := range tables {
		err := WithTx(db, func(tx *sql.Tx) error {
			return syncTable(ctx, tx, t.spec, t.items, report, logger)
		})
		if err != nil {
			return fmt.Errorf("sync %s: %w", t.spec.name, err)
		}
	}
	return nil
}

// tableSpec binds a legacy table to its id column and writable columns.
// seenSQL overrides the claimed-id query where only a subset of rows
// belongs to the diff: transfer categories share tbl_notes with plain
// free-text notes, and unpaid transactions are never imported. Rows
// outside the subset are left alone. insertOnly columns get defaults on
// insert and keep their stored values on update.
type tableSpec struct {
	name       string
	idCol      string
	cols       []string
	insertOnly []string
	seenSQL    string
}

var (
	accountTable = tableSpec{
		name:       "tbl_account",
		idCol:      "acc_id",
		cols:       []string{"acc_name", "acc_order", "acc_color", "acc_is_closed"},
		insertOnly: []string{"acc_init_balance", "acc_min_limit"},
	}
	categoryTable = tableSpec{
		name:  "tbl_cat",
		idCol: "category_id",
		cols:  []string{"category_name", "category_is_inc", "category_icon", "category_color"},
	}
	noteTable = tableSpec{
		name:    "tbl_notes",
		idCol:   "notey_id",
		cols:    []string{"note_text", "note_payee_payer"},
		seenSQL: `SELECT notey_id FROM tbl_notes WHERE note_payee_payer = -1 AND note_text LIKE '[%]'`,
	}
	transactionTable = tableSpec{
		name:    "tbl_trans",
		idCol:   "exp_id",
		cols:    []string{"exp_amount", "exp_date", "exp_is_debit", "exp_acc_id", "exp_payee_name", "exp_cat", "exp_is_paid", "exp_is_bill", "exp_note"},
		seenSQL: `SELECT exp_id FROM tbl_trans WHERE exp_is_paid = 1`,
	}
	transferTable = tableSpec{
		name:  "tbl_transfer",
		idCol: "trans_id",
		cols:  []string{"trans_amount", "trans_date", "trans_from_id", "trans_to_id", "trans_note"},
	}
)

// syncItem is one in-memory entity projected onto a table row. The
// record is computed lazily so earlier table syncs can assign referenced
// ids first.
type syncItem struct {
	id      int
	legacy  bool
	pending bool
	record  func() model.Record
	assign  func(id int) error
}

func accountItems(ns *Namespace) []syncItem {
	items := make([]syncItem, 0, len(ns.Accounts))
	for _, a := range ns.Accounts {
		items = append(items, syncItem{
			id:      a.MWID(),
			legacy:  a.Legacy,
			pending: a.MWID() == model.PendingID,
			record:  a.LegacyRecord,
			assign:  a.SetMWID,
		})
	}
	return items
}

func categoryItems(ns *Namespace, transfers bool) []syncItem {
	var items []syncItem
	for _, c := range ns.Categories {
		if (c.Type() == model.Transfer) != transfers {
			continue
		}
		items = append(items, syncItem{
			id:      abs(c.MWID()),
			legacy:  c.Legacy,
			pending: c.MWID() == model.PendingID,
			record:  c.LegacyRecord,
			assign:  c.SetMWID,
		})
	}
	return items
}

func entryItems(ns *Namespace, transfers bool) []syncItem {
	var items []syncItem
	for _, e := range ns.Entries {
		if (e.Type() == model.Transfer) != transfers {
			continue
		}
		items = append(items, syncItem{
			id:      abs(e.MWID()),
			pending: e.MWID() == model.PendingID,
			record:  e.LegacyRecord,
			assign:  e.SetMWID,
		})
	}
	return items
}

func syncTable(ctx context.Context, tx *sql.Tx, spec tableSpec, items []syncItem, report *WriteReport, logger *slog.Logger) error {
	seen, err := claimedIDs(ctx, tx, spec)
	if err != nil {
		return err
	}

	var inserts, updates []syncItem
	for _, it := range items {
		switch {
		case it.legacy:
			// Placeholders are never written back.
		case it.pending:
			inserts = append(inserts, it)
		case seen[it.id]:
			delete(seen, it.id)
			updates = append(updates, it)
		default:
			w := RefWarning{Table: spec.name, ID: it.id}
			report.Warnings = append(report.Warnings, w)
			logger.Warn("orphaned reference", "table", spec.name, "id", it.id)
		}
	}

	insertCols := append(append([]string{}, spec.cols...), spec.insertOnly...)
	insertSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		spec.name, strings.Join(insertCols, ", "), placeholders(len(insertCols)))
	for _, it := range inserts {
		res, err := tx.ExecContext(ctx, insertSQL, columnValues(insertCols, it.record())...)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		if err := it.assign(int(id)); err != nil {
			return err
		}
		report.Inserted++
	}

	sets := make([]string, len(spec.cols))
	for i, col := range spec.cols {
		sets[i] = col + " = ?"
	}
	updateSQL := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
		spec.name, strings.Join(sets, ", "), spec.idCol)
	for _, it := range updates {
		args := append(columnValues(spec.cols, it.record()), it.id)
		if _, err := tx.ExecContext(ctx, updateSQL, args...); err != nil {
			return err
		}
		report.Updated++
	}

	stale := make([]int, 0, len(seen))
	for id := range seen {
		stale = append(stale, id)
	}
	sort.Ints(stale)
	deleteSQL := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", spec.name, spec.idCol)
	for _, id := range stale {
		if _, err := tx.ExecContext(ctx, deleteSQL, id); err != nil {
			return err
		}
		report.Deleted++
	}
	return nil
}

func claimedIDs(ctx context.Context, tx *sql.Tx, spec tableSpec) (map[int]bool, error) {
	query := spec.seenSQL
	if query == "" {
		query = fmt.Sprintf("SELECT %s FROM %s", spec.idCol, spec.name)
	}
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seen := map[int]bool{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		seen[id] = true
	}
	return seen, rows.Err()
}

func columnValues(cols []string, rec model.Record) []any {
	vals := make([]any, len(cols))
	for i, col := range cols {
		vals[i] = rec[col]
	}
	return vals
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func expandPattern(pattern, templatePath string, now time.Time) string {
	stem := strings.TrimSuffix(filepath.Base(templatePath), filepath.Ext(templatePath))
	r := strings.NewReplacer(
		"{now}", now.Format("20060102_150405"),
		"{stem}", stem,
	)
	return r.Replace(pattern)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
