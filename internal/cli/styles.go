// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/lng-shipment-tracker/internal/ledger"
	"github.com/Veraticus/lng-shipment-tracker/internal/model"
	"github.com/Veraticus/lng-shipment-tracker/internal/tracker"
	"github.com/charmbracelet/lipgloss"
)

var (
	// PrimaryColor is the main theme color (harbour blue).
	PrimaryColor = lipgloss.Color("#3A86FF")
	// SuccessColor indicates successful operations.
	SuccessColor = lipgloss.Color("#4ECDC4") // Teal
	// WarningColor indicates warnings or caution messages.
	WarningColor = lipgloss.Color("#FFE66D") // Yellow
	// ErrorColor indicates errors or failure messages.
	ErrorColor = lipgloss.Color("#FF6B6B") // Red
	// InfoColor indicates informational messages.
	InfoColor = lipgloss.Color("#95E1D3") // Light teal
	// SubtleColor indicates less prominent UI elements.
	SubtleColor = lipgloss.Color("#666666") // Gray

	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	// SuccessStyle formats success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	// WarningStyle formats warning messages.
	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	// ErrorStyle formats error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	// InfoStyle formats informational messages.
	InfoStyle = lipgloss.NewStyle().
			Foreground(InfoColor)

	// SubtleStyle formats less prominent text.
	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// BoxStyle is used for bordered content boxes.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(1, 2)

	// TableHeaderStyle is used for table headers.
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(lipgloss.Color("#333"))

	// TableCellStyle formats table cells with appropriate padding.
	TableCellStyle = lipgloss.NewStyle().
			PaddingRight(2)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	ShipIcon    = "🚢"
	FlagIcon    = "🚩"
)

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle formats a title with the ship icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(ShipIcon + " " + title)
}

// RenderBox renders content in a styled box.
func RenderBox(title, content string) string {
	boxTitle := TitleStyle.
		UnsetMargins().
		Render(title)

	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, boxTitle, content))
}

// RenderSummary renders the outcome of one run.
func RenderSummary(s tracker.Summary) string {
	lines := []string{
		fmt.Sprintf("Departed LNG tankers found: %d", s.Found),
		fmt.Sprintf("Added: %d", s.Added),
		fmt.Sprintf("Skipped (duplicates): %d", s.Skipped),
		fmt.Sprintf("Total shipments in ledger: %d", s.Total),
	}
	if s.ManualEntry > 0 {
		lines = append(lines, WarningStyle.Render(fmt.Sprintf("Needing manual completion: %d", s.ManualEntry)))
	}
	if s.ArrivalsChecked > 0 {
		lines = append(lines,
			"",
			fmt.Sprintf("Arrivals checked: %d", s.ArrivalsChecked),
			fmt.Sprintf("Arrivals recorded: %d", s.ArrivalsUpdated))
		if s.ArrivalsFlagged > 0 {
			lines = append(lines, WarningStyle.Render(fmt.Sprintf("%s Flagged for review: %d", FlagIcon, s.ArrivalsFlagged)))
		}
		if s.ArrivalsFailed > 0 {
			lines = append(lines, ErrorStyle.Render(fmt.Sprintf("Checks failed: %d", s.ArrivalsFailed)))
		}
	}
	lines = append(lines, "", SubtleStyle.Render(fmt.Sprintf("Run %s in %s", s.RunID, s.Duration.Round(time.Millisecond))))

	title := ShipIcon + " Run summary"
	if s.DryRun {
		title += " (dry run)"
	}
	return RenderBox(title, strings.Join(lines, "\n"))
}

// RenderShipments renders ledger records as a table.
func RenderShipments(records []model.ShipmentRecord) string {
	header := []string{"Vessel", "IMO", "Departed", "Destination", "ETA", "Arrived", ""}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		departed := ""
		if t, ok := r.DepartureDate.Get(); ok {
			departed = model.CalendarDay(t)
		}
		arrived := ""
		if t, ok := r.ActualArrival.Get(); ok {
			arrived = ledger.FormatTimestamp(t)
		}
		flag := ""
		if r.Flagged {
			flag = FlagIcon
		}
		rows = append(rows, []string{r.VesselName, r.IMONumber, departed, r.DestinationPort, r.EstimatedArrival, arrived, flag})
	}
	return renderTable(header, rows)
}

// RenderRuns renders run log entries as a table.
func RenderRuns(runs []model.RunRecord) string {
	header := []string{"Started", "Ledger", "Found", "Added", "Skipped", "Arrivals", "Duration", "Status"}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		status := SuccessIcon
		if !r.Succeeded() {
			status = ErrorIcon + " " + r.Error
		}
		ledgerName := r.Ledger
		if r.DryRun {
			ledgerName += " (dry)"
		}
		rows = append(rows, []string{
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			ledgerName,
			fmt.Sprint(r.Found),
			fmt.Sprint(r.Added),
			fmt.Sprint(r.Skipped),
			fmt.Sprintf("%d/%d", r.ArrivalsUpdated, r.ArrivalsChecked),
			r.Duration().Round(time.Second).String(),
			status,
		})
	}
	return renderTable(header, rows)
}

func renderTable(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	renderRow := func(cells []string, style lipgloss.Style) string {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = TableCellStyle.Width(widths[i] + TableCellStyle.GetPaddingRight()).Render(cell)
		}
		return style.Render(lipgloss.JoinHorizontal(lipgloss.Top, parts...))
	}

	lines := []string{renderRow(header, TableHeaderStyle)}
	for _, row := range rows {
		lines = append(lines, renderRow(row, lipgloss.NewStyle()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
