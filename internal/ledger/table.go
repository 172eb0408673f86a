// Package ledger maps shipment records onto a header-addressed table and
// implements the merge and arrival-update operations over it.
//
// The physical table may live in a spreadsheet or a local database. Column
// order and presence vary by deployment, so every operation reads the active
// header row before deciding where a field goes.
package ledger

import "context"

// Snapshot is the full contents of a ledger table at one point in time.
// Rows exclude the header and may be shorter than it when trailing cells are
// empty.
type Snapshot struct {
	Header []string
	Rows   [][]string
}

// CellUpdate addresses a single cell. Row is the zero-based index into
// Snapshot.Rows and Column the zero-based index into Snapshot.Header.
type CellUpdate struct {
	Value  string
	Row    int
	Column int
}

// Table is the append-and-point-update store behind the ledger.
type Table interface {
	// Read returns the header and all data rows.
	Read(ctx context.Context) (Snapshot, error)
	// Append adds rows after the last data row in a single operation.
	Append(ctx context.Context, rows [][]string) error
	// UpdateCells overwrites individual cells.
	UpdateCells(ctx context.Context, updates []CellUpdate) error
	// Init writes header when the table has none and reports whether it did.
	Init(ctx context.Context, header []string) (bool, error)
}
