package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/Veraticus/lng-shipment-tracker/internal/common"
	"github.com/Veraticus/lng-shipment-tracker/internal/ledger"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	valueInputOption  = "USER_ENTERED"
	valueRenderOption = "FORMATTED_VALUE"
	defaultSheetTitle = "Sheet1"
)

// headerRow and firstDataRow are 1-based sheet rows.
const (
	headerRow    = 1
	firstDataRow = 2
)

// Table implements ledger.Table on one tab of a spreadsheet. The header is
// row 1 and data row i of a snapshot is sheet row i+2.
type Table struct {
	service *sheets.Service
	logger  *slog.Logger
	title   string
	config  Config
	mu      sync.Mutex
}

var _ ledger.Table = (*Table)(nil)

// NewTable authenticates and creates a spreadsheet-backed ledger table.
func NewTable(ctx context.Context, config Config, logger *slog.Logger) (*Table, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	service, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return NewTableWithService(service, config, logger), nil
}

// NewTableWithService wraps an existing Sheets service.
func NewTableWithService(service *sheets.Service, config Config, logger *slog.Logger) *Table {
	if logger == nil {
		logger = slog.Default()
	}
	return &Table{
		service: service,
		logger:  logger,
		config:  config,
		title:   config.SheetName,
	}
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.HasServiceAccount() {
		jsonKey := []byte(config.ServiceAccountJSON)
		if config.ServiceAccountPath != "" {
			var err error
			jsonKey, err = os.ReadFile(config.ServiceAccountPath)
			if err != nil {
				return nil, fmt.Errorf("unable to read service account key file: %w", err)
			}
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		client := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsScope},
		}

		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}

		tokenSource = client.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}

// sheetTitle resolves the configured tab, defaulting to the first one.
func (t *Table) sheetTitle(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.title != "" {
		return t.title, nil
	}

	var spreadsheet *sheets.Spreadsheet
	err := t.call(ctx, "get spreadsheet", true, func() error {
		var err error
		spreadsheet, err = t.service.Spreadsheets.Get(t.config.SpreadsheetID).
			Fields("sheets.properties.title").
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return "", fmt.Errorf("unable to access spreadsheet %s: %w", t.config.SpreadsheetID, err)
	}

	t.title = defaultSheetTitle
	if len(spreadsheet.Sheets) > 0 && spreadsheet.Sheets[0].Properties != nil {
		t.title = spreadsheet.Sheets[0].Properties.Title
	}
	t.logger.Debug("resolved ledger sheet", "title", t.title)
	return t.title, nil
}

// Read implements ledger.Table.
func (t *Table) Read(ctx context.Context) (ledger.Snapshot, error) {
	title, err := t.sheetTitle(ctx)
	if err != nil {
		return ledger.Snapshot{}, err
	}

	var resp *sheets.ValueRange
	err = t.call(ctx, "read", true, func() error {
		var err error
		resp, err = t.service.Spreadsheets.Values.Get(t.config.SpreadsheetID, quoteSheet(title)).
			ValueRenderOption(valueRenderOption).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return ledger.Snapshot{}, err
	}

	if len(resp.Values) == 0 {
		return ledger.Snapshot{}, nil
	}

	snap := ledger.Snapshot{
		Header: toStrings(resp.Values[0]),
		Rows:   make([][]string, 0, len(resp.Values)-1),
	}
	for _, row := range resp.Values[1:] {
		snap.Rows = append(snap.Rows, toStrings(row))
	}
	return snap, nil
}

// Append implements ledger.Table. The rows go out in one request.
func (t *Table) Append(ctx context.Context, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	title, err := t.sheetTitle(ctx)
	if err != nil {
		return err
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	body := &sheets.ValueRange{Values: toValues(rows)}
	// An append that failed after reaching the server may still have landed,
	// so only explicit throttling is retried.
	err = t.call(ctx, "append", false, func() error {
		_, err := t.service.Spreadsheets.Values.Append(t.config.SpreadsheetID, rowRange(title, headerRow, width), body).
			ValueInputOption(valueInputOption).
			InsertDataOption("INSERT_ROWS").
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return err
	}

	t.logger.Info("appended rows to sheet", "sheet", title, "rows", len(rows))
	return nil
}

// UpdateCells implements ledger.Table with a single batch update.
func (t *Table) UpdateCells(ctx context.Context, updates []ledger.CellUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	title, err := t.sheetTitle(ctx)
	if err != nil {
		return err
	}

	req := &sheets.BatchUpdateValuesRequest{
		ValueInputOption: valueInputOption,
		Data:             make([]*sheets.ValueRange, 0, len(updates)),
	}
	for _, u := range updates {
		req.Data = append(req.Data, &sheets.ValueRange{
			Range:  cellRange(title, u.Row+firstDataRow, u.Column),
			Values: [][]any{{u.Value}},
		})
	}

	return t.call(ctx, "update cells", true, func() error {
		_, err := t.service.Spreadsheets.Values.BatchUpdate(t.config.SpreadsheetID, req).Context(ctx).Do()
		return err
	})
}

// Init implements ledger.Table.
func (t *Table) Init(ctx context.Context, header []string) (bool, error) {
	title, err := t.sheetTitle(ctx)
	if err != nil {
		return false, err
	}

	var existing *sheets.ValueRange
	err = t.call(ctx, "read header", true, func() error {
		var err error
		existing, err = t.service.Spreadsheets.Values.Get(t.config.SpreadsheetID, fmt.Sprintf("%s!%d:%d", quoteSheet(title), headerRow, headerRow)).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return false, err
	}
	if len(existing.Values) > 0 && len(existing.Values[0]) > 0 {
		return false, nil
	}

	body := &sheets.ValueRange{Values: toValues([][]string{header})}
	err = t.call(ctx, "write header", true, func() error {
		_, err := t.service.Spreadsheets.Values.Update(t.config.SpreadsheetID, rowRange(title, headerRow, len(header)), body).
			ValueInputOption(valueInputOption).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return false, err
	}

	t.logger.Info("initialized sheet with headers", "sheet", title)
	return true, nil
}

// call runs one API request with retry. Non-idempotent requests are only
// retried when the API reports throttling.
func (t *Table) call(ctx context.Context, op string, idempotent bool, fn func() error) error {
	err := common.WithRetry(ctx, func() error {
		return classify(fn(), idempotent)
	}, common.RetryOptions{
		MaxAttempts:  t.config.RetryAttempts,
		InitialDelay: t.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	})
	if err != nil {
		return fmt.Errorf("sheets %s: %w", op, err)
	}
	return nil
}

func classify(err error, idempotent bool) error {
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return fmt.Errorf("%w: %w", common.ErrRateLimit, err)
		case apiErr.Code >= 500 && idempotent:
			return &common.RetryableError{Err: err, Retryable: true}
		default:
			return common.Permanent(err)
		}
	}

	if !idempotent || errors.Is(err, context.Canceled) {
		return common.Permanent(err)
	}
	return &common.RetryableError{Err: err, Retryable: true}
}

func toStrings(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		if v != nil {
			out[i] = fmt.Sprint(v)
		}
	}
	return out
}

func toValues(rows [][]string) [][]any {
	out := make([][]any, len(rows))
	for i, row := range rows {
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		out[i] = values
	}
	return out
}
