package store

import "fmt"

// FormatError reports a backup file that does not honor the MyWallet
// format contract: a missing table, an unparseable date, or a note
// column without the bracketed category prefix transfers require.
// Imports fail whole rather than skip rows, since a partial graph
// corrupts the write-back diff.
type FormatError struct {
	Path   string
	Table  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: table %s: %s", e.Path, e.Table, e.Reason)
}

func formatErr(path, table, format string, args ...any) error {
	return &FormatError{Path: path, Table: table, Reason: fmt.Sprintf(format, args...)}
}

// PathConflictError reports a write target that already exists without
// overwrite authorization. It is raised before any file is touched.
type PathConflictError struct {
	Path string
}

func (e *PathConflictError) Error() string {
	return fmt.Sprintf("target already exists: %s", e.Path)
}

// RefWarning is a non-fatal reconciliation finding: an in-memory entity
// claims a store id that the target table does not have. The entity is
// skipped and stays unpersisted; the write continues.
type RefWarning struct {
	Table string
	ID    int
}

func (w RefWarning) String() string {
	return fmt.Sprintf("id %d not found in %s, skipped", w.ID, w.Table)
}
