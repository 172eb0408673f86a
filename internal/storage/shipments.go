package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Veraticus/lng-shipment-tracker/internal/common"
	"github.com/Veraticus/lng-shipment-tracker/internal/ledger"
)

const shipmentIDColumn = "id"

// ShipmentTable exposes the shipments table as a ledger table. Its header is
// the column list after id in table order, and its row order is insertion
// order.
type ShipmentTable struct {
	db *sql.DB
}

var _ ledger.Table = (*ShipmentTable)(nil)

// Shipments returns the ledger table view of the database.
func (s *SQLiteStorage) Shipments() *ShipmentTable {
	return &ShipmentTable{db: s.db}
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func shipmentColumns(ctx context.Context, q queryer) ([]string, error) {
	rows, err := q.QueryContext(ctx, "PRAGMA table_info(shipments)")
	if err != nil {
		return nil, fmt.Errorf("failed to read shipments columns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var columns []string
	for rows.Next() {
		var (
			cid      int
			name     string
			declType string
			notNull  int
			dflt     sql.NullString
			pk       int
		)
		if err := rows.Scan(&cid, &name, &declType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column info: %w", err)
		}
		if name != shipmentIDColumn {
			columns = append(columns, name)
		}
	}
	return columns, rows.Err()
}

func shipmentIDs(ctx context.Context, q queryer) ([]int64, error) {
	rows, err := q.QueryContext(ctx, "SELECT id FROM shipments ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list shipment ids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan shipment id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Read implements ledger.Table.
func (t *ShipmentTable) Read(ctx context.Context) (ledger.Snapshot, error) {
	if err := validateContext(ctx); err != nil {
		return ledger.Snapshot{}, err
	}

	columns, err := shipmentColumns(ctx, t.db)
	if err != nil || len(columns) == 0 {
		return ledger.Snapshot{}, err
	}

	query := fmt.Sprintf("SELECT %s FROM shipments ORDER BY id", quoteColumns(columns))
	rows, err := t.db.QueryContext(ctx, query)
	if err != nil {
		return ledger.Snapshot{}, fmt.Errorf("failed to query shipments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	snap := ledger.Snapshot{Header: columns}
	for rows.Next() {
		cells := make([]sql.NullString, len(columns))
		dest := make([]any, len(columns))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return ledger.Snapshot{}, fmt.Errorf("failed to scan shipment: %w", err)
		}

		row := make([]string, len(columns))
		for i, c := range cells {
			row[i] = c.String
		}
		snap.Rows = append(snap.Rows, row)
	}

	return snap, rows.Err()
}

// Append implements ledger.Table. All rows are inserted in one transaction.
func (t *ShipmentTable) Append(ctx context.Context, rows [][]string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	columns, err := shipmentColumns(ctx, tx)
	if err != nil {
		return err
	}
	if len(columns) == 0 {
		return common.ErrNoHeader
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO shipments (%s) VALUES (%s)", quoteColumns(columns), placeholders))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, row := range rows {
		if len(row) > len(columns) {
			return fmt.Errorf("row %d has %d cells for %d columns", i, len(row), len(columns))
		}
		args := make([]any, len(columns))
		for j := range args {
			args[j] = ""
			if j < len(row) {
				args[j] = row[j]
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert shipment %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// UpdateCells implements ledger.Table. Updates are applied atomically.
func (t *ShipmentTable) UpdateCells(ctx context.Context, updates []ledger.CellUpdate) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(updates) == 0 {
		return nil
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	columns, err := shipmentColumns(ctx, tx)
	if err != nil {
		return err
	}
	ids, err := shipmentIDs(ctx, tx)
	if err != nil {
		return err
	}

	for _, u := range updates {
		if u.Row < 0 || u.Row >= len(ids) || u.Column < 0 || u.Column >= len(columns) {
			return fmt.Errorf("%w: cell (%d, %d)", common.ErrNotFound, u.Row, u.Column)
		}
		query := fmt.Sprintf("UPDATE shipments SET %s = ? WHERE id = ?", quoteIdent(columns[u.Column]))
		if _, err := tx.ExecContext(ctx, query, u.Value, ids[u.Row]); err != nil {
			return fmt.Errorf("failed to update shipment %d: %w", ids[u.Row], err)
		}
	}

	return tx.Commit()
}

// Init implements ledger.Table. The migrated table already has the default
// header; labels it lacks are added as text columns.
func (t *ShipmentTable) Init(ctx context.Context, header []string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}

	existing, err := shipmentColumns(ctx, t.db)
	if err != nil {
		return false, err
	}
	if len(existing) == 0 {
		return false, fmt.Errorf("%w: run migrations first", common.ErrNoHeader)
	}

	have := make(map[string]bool, len(existing))
	for _, c := range existing {
		have[c] = true
	}

	added := false
	for _, label := range header {
		name := ledger.NormalizeLabel(label)
		if have[name] {
			continue
		}
		if err := validateColumn(name); err != nil {
			return added, err
		}
		query := fmt.Sprintf("ALTER TABLE shipments ADD COLUMN %s TEXT NOT NULL DEFAULT ''", quoteIdent(name))
		if _, err := t.db.ExecContext(ctx, query); err != nil {
			return added, fmt.Errorf("failed to add column %s: %w", name, err)
		}
		have[name] = true
		added = true
	}
	return added, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteColumns(columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
	}
	return strings.Join(quoted, ", ")
}
