package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/lng-shipment-tracker/internal/common"
	"github.com/Veraticus/lng-shipment-tracker/internal/model"
)

// View is a decoded snapshot. Records[i] corresponds to physical data row i.
type View struct {
	Schema  Schema
	Records []model.ShipmentRecord
}

// Find returns the index of the first record whose identity key equals key.
func (v View) Find(key model.IdentityKey) (int, bool) {
	for i, r := range v.Records {
		if r.Key() == key {
			return i, true
		}
	}
	return -1, false
}

// Ledger reads and writes shipment records through a Table.
type Ledger struct {
	table  Table
	logger *slog.Logger
}

// New creates a ledger over table.
func New(table Table, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{table: table, logger: logger}
}

// Table returns the underlying table.
func (l *Ledger) Table() Table {
	return l.table
}

// Init writes the default header to an empty table.
func (l *Ledger) Init(ctx context.Context) (bool, error) {
	written, err := l.table.Init(ctx, DefaultHeader())
	if err != nil {
		return false, fmt.Errorf("failed to initialize ledger: %w", err)
	}
	if written {
		l.logger.Info("initialized ledger header", "columns", len(Fields))
	}
	return written, nil
}

// Load reads the table and decodes every row.
func (l *Ledger) Load(ctx context.Context) (View, error) {
	snap, err := l.table.Read(ctx)
	if err != nil {
		return View{}, fmt.Errorf("failed to read ledger: %w", err)
	}

	schema, err := NewSchema(snap.Header)
	if err != nil {
		return View{}, fmt.Errorf("%w: initialize the ledger first", err)
	}

	records := make([]model.ShipmentRecord, len(snap.Rows))
	for i, row := range snap.Rows {
		records[i] = schema.Decode(row)
	}
	return View{Schema: schema, Records: records}, nil
}

// Records returns every shipment in ledger order.
func (l *Ledger) Records(ctx context.Context) ([]model.ShipmentRecord, error) {
	view, err := l.Load(ctx)
	if err != nil {
		return nil, err
	}
	return view.Records, nil
}

// UpdateArrival re-reads the table, finds the first row matching key and
// writes the arrival from signal. A flagged signal also sets the flagged
// column, when the ledger has one, and appends the reason to the notes.
// It reports whether the row was flagged.
func (l *Ledger) UpdateArrival(ctx context.Context, key model.IdentityKey, signal model.ArrivalSignal) (bool, error) {
	arrived, ok := signal.ActualArrival.Get()
	if !signal.HasArrived || !ok {
		return false, fmt.Errorf("arrival signal for %s carries no arrival time", key)
	}

	view, err := l.Load(ctx)
	if err != nil {
		return false, err
	}

	arrivalCol, ok := view.Schema.Column(FieldActualArrival)
	if !ok {
		return false, fmt.Errorf("%w: ledger has no %s column", common.ErrNotFound, FieldActualArrival)
	}

	row, ok := view.Find(key)
	if !ok {
		return false, fmt.Errorf("%w: no ledger row for %s", common.ErrNotFound, key)
	}

	updates := []CellUpdate{{Row: row, Column: arrivalCol, Value: FormatTimestamp(arrived)}}
	flagged := false
	if signal.ShouldFlag {
		if col, ok := view.Schema.Column(FieldFlagged); ok {
			updates = append(updates, CellUpdate{Row: row, Column: col, Value: FlaggedValue})
			flagged = true
		}
		if col, ok := view.Schema.Column(FieldNotes); ok && signal.Reason != "" {
			updates = append(updates, CellUpdate{Row: row, Column: col, Value: appendNote(view.Records[row].Notes, signal.Reason)})
		}
	}

	if err := l.table.UpdateCells(ctx, updates); err != nil {
		return false, fmt.Errorf("failed to write arrival for %s: %w", key, err)
	}
	return flagged, nil
}

func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + "; " + note
}
