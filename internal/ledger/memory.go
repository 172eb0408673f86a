package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/Veraticus/lng-shipment-tracker/internal/common"
)

// MemoryTable is an in-process Table. It backs dry runs and tests.
type MemoryTable struct {
	// AppendErr and UpdateErr, when set, are returned by the next calls.
	AppendErr   error
	UpdateErr   error
	header      []string
	rows        [][]string
	appendCalls int
	updateCalls int
	mu          sync.Mutex
}

// NewMemoryTable creates a table with the given header and rows.
func NewMemoryTable(header []string, rows ...[]string) *MemoryTable {
	return &MemoryTable{
		header: append([]string(nil), header...),
		rows:   copyRows(rows),
	}
}

// NewMemoryTableFrom copies a snapshot, typically of a real table.
func NewMemoryTableFrom(snap Snapshot) *MemoryTable {
	return NewMemoryTable(snap.Header, snap.Rows...)
}

// Read implements Table.
func (m *MemoryTable) Read(_ context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Header: append([]string(nil), m.header...),
		Rows:   copyRows(m.rows),
	}, nil
}

// Append implements Table.
func (m *MemoryTable) Append(_ context.Context, rows [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.appendCalls++
	if m.AppendErr != nil {
		return m.AppendErr
	}
	if len(m.header) == 0 {
		return common.ErrNoHeader
	}
	m.rows = append(m.rows, copyRows(rows)...)
	return nil
}

// UpdateCells implements Table. Rows are padded as needed.
func (m *MemoryTable) UpdateCells(_ context.Context, updates []CellUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.updateCalls++
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	for _, u := range updates {
		if u.Row < 0 || u.Row >= len(m.rows) || u.Column < 0 {
			return fmt.Errorf("%w: cell (%d, %d)", common.ErrNotFound, u.Row, u.Column)
		}
		for len(m.rows[u.Row]) <= u.Column {
			m.rows[u.Row] = append(m.rows[u.Row], "")
		}
		m.rows[u.Row][u.Column] = u.Value
	}
	return nil
}

// Init implements Table.
func (m *MemoryTable) Init(_ context.Context, header []string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.header) > 0 {
		return false, nil
	}
	m.header = append([]string(nil), header...)
	return true, nil
}

// AppendCalls returns how many times Append was called.
func (m *MemoryTable) AppendCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendCalls
}

// UpdateCalls returns how many times UpdateCells was called.
func (m *MemoryTable) UpdateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateCalls
}

func copyRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}
