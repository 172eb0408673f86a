package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/lng-shipment-tracker/internal/common"
	"github.com/Veraticus/lng-shipment-tracker/internal/model"
)

// Field is a logical ledger column.
type Field string

// Logical ledger columns.
const (
	FieldVesselName         Field = "vessel_name"
	FieldIMONumber          Field = "imo_number"
	FieldMMSI               Field = "mmsi"
	FieldCapacityCBM        Field = "capacity_cbm"
	FieldCERReportedPayload Field = "cer_reported_payload"
	FieldDepartureDate      Field = "departure_date"
	FieldDestinationPort    Field = "destination_port"
	FieldDestinationCountry Field = "destination_country"
	FieldEstimatedArrival   Field = "estimated_arrival"
	FieldActualArrival      Field = "actual_arrival"
	FieldNotes              Field = "notes"
	FieldFlagged            Field = "flagged"
)

// Fields lists every logical column in the default layout order.
var Fields = []Field{
	FieldVesselName,
	FieldIMONumber,
	FieldMMSI,
	FieldCapacityCBM,
	FieldCERReportedPayload,
	FieldDepartureDate,
	FieldDestinationPort,
	FieldDestinationCountry,
	FieldEstimatedArrival,
	FieldActualArrival,
	FieldNotes,
	FieldFlagged,
}

// headerAliases accepts the labels older sheets were initialised with.
var headerAliases = map[string]Field{
	"name":        FieldVesselName,
	"vessel":      FieldVesselName,
	"imo":         FieldIMONumber,
	"capacity":    FieldCapacityCBM,
	"destination": FieldDestinationPort,
}

// DefaultHeader is the header written to a new, empty ledger.
func DefaultHeader() []string {
	header := make([]string, len(Fields))
	for i, f := range Fields {
		header[i] = string(f)
	}
	return header
}

// FlaggedValue is written to the flagged column of flagged shipments.
const FlaggedValue = "TRUE"

// Schema maps logical fields to the physical columns of one header row.
type Schema struct {
	columns map[Field]int
	header  []string
}

// NewSchema builds the column mapping for header. When a field appears twice
// the leftmost column wins.
func NewSchema(header []string) (Schema, error) {
	if len(header) == 0 {
		return Schema{}, common.ErrNoHeader
	}

	s := Schema{
		columns: make(map[Field]int, len(header)),
		header:  append([]string(nil), header...),
	}
	for i, label := range header {
		f, ok := fieldForLabel(label)
		if !ok {
			continue
		}
		if _, dup := s.columns[f]; !dup {
			s.columns[f] = i
		}
	}
	return s, nil
}

// NormalizeLabel lowercases a header label and joins its words with underscores.
func NormalizeLabel(label string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	return strings.Join(strings.FieldsFunc(label, func(r rune) bool {
		return r == ' ' || r == '_' || r == '-' || r == '\t'
	}), "_")
}

func fieldForLabel(label string) (Field, bool) {
	norm := NormalizeLabel(label)
	for _, f := range Fields {
		if string(f) == norm {
			return f, true
		}
	}
	f, ok := headerAliases[norm]
	return f, ok
}

// Column returns the physical column index of f.
func (s Schema) Column(f Field) (int, bool) {
	i, ok := s.columns[f]
	return i, ok
}

// Header returns a copy of the header row.
func (s Schema) Header() []string {
	return append([]string(nil), s.header...)
}

// Width is the number of physical columns.
func (s Schema) Width() int {
	return len(s.header)
}

// Encode lays record out in header order. Absent values and columns the
// schema does not know become empty strings.
func (s Schema) Encode(record model.ShipmentRecord) []string {
	row := make([]string, len(s.header))
	for f, i := range s.columns {
		row[i] = encodeField(record, f)
	}
	return row
}

func encodeField(r model.ShipmentRecord, f Field) string {
	switch f {
	case FieldVesselName:
		return r.VesselName
	case FieldIMONumber:
		return r.IMONumber
	case FieldMMSI:
		return r.MMSI
	case FieldCapacityCBM:
		if c, ok := r.CapacityCBM.Get(); ok {
			return strconv.Itoa(c)
		}
	case FieldCERReportedPayload:
		return r.CERReportedPayload
	case FieldDepartureDate:
		if d, ok := r.DepartureDate.Get(); ok {
			return FormatTimestamp(d)
		}
	case FieldDestinationPort:
		return r.DestinationPort
	case FieldDestinationCountry:
		return r.DestinationCountry
	case FieldEstimatedArrival:
		return r.EstimatedArrival
	case FieldActualArrival:
		if a, ok := r.ActualArrival.Get(); ok {
			return FormatTimestamp(a)
		}
	case FieldNotes:
		return r.Notes
	case FieldFlagged:
		if r.Flagged {
			return FlaggedValue
		}
	}
	return ""
}

// Decode reads a row laid out in header order. Cells that do not parse are
// treated as absent.
func (s Schema) Decode(row []string) model.ShipmentRecord {
	cell := func(f Field) string {
		i, ok := s.columns[f]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	return model.ShipmentRecord{
		VesselName:         cell(FieldVesselName),
		IMONumber:          cell(FieldIMONumber),
		MMSI:               cell(FieldMMSI),
		CapacityCBM:        parseCapacity(cell(FieldCapacityCBM)),
		CERReportedPayload: cell(FieldCERReportedPayload),
		DepartureDate:      ParseTimestamp(cell(FieldDepartureDate)),
		DestinationPort:    cell(FieldDestinationPort),
		DestinationCountry: cell(FieldDestinationCountry),
		EstimatedArrival:   cell(FieldEstimatedArrival),
		ActualArrival:      ParseTimestamp(cell(FieldActualArrival)),
		Notes:              cell(FieldNotes),
		Flagged:            parseFlag(cell(FieldFlagged)),
	}
}

// FormatTimestamp renders an instant the way the ledger stores it.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// timestampLayouts covers what we write plus the forms a spreadsheet shows
// after reinterpreting user-entered dates.
var timestampLayouts = []string{
	time.RFC3339,
	time.DateOnly,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"Jan 2, 2006",
}

// ParseTimestamp parses a ledger date cell. Values without a zone are UTC.
func ParseTimestamp(value string) model.Optional[time.Time] {
	value = strings.TrimSpace(value)
	if value == "" {
		return model.None[time.Time]()
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return model.Some(t)
		}
	}
	return model.None[time.Time]()
}

func parseCapacity(value string) model.Optional[int] {
	value = strings.ReplaceAll(value, ",", "")
	if value == "" {
		return model.None[int]()
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return model.None[int]()
	}
	return model.Some(n)
}

func parseFlag(value string) bool {
	switch strings.ToLower(value) {
	case "true", "yes", "y", "1", "x":
		return true
	}
	return false
}

// String describes the mapping for diagnostics.
func (s Schema) String() string {
	parts := make([]string, 0, len(s.columns))
	for _, f := range Fields {
		if i, ok := s.columns[f]; ok {
			parts = append(parts, fmt.Sprintf("%s=%d", f, i))
		}
	}
	return strings.Join(parts, " ")
}
