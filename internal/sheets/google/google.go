package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"gastos/internal/log"
	"gastos/internal/sheets"
)

// Client writes movement rows to one sheet of a spreadsheet. Rows are found
// by the value in column A.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
	logger        *log.Logger

	// serializes lookup and write so two upserts of a new id cannot both append
	mu sync.Mutex
}

var _ sheets.MovementExporter = (*Client)(nil)

// New wraps an existing Sheets service.
func New(svc *gsheet.Service, spreadsheetID, sheet string, logger *log.Logger) (*Client, error) {
	if svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if strings.TrimSpace(sheet) == "" {
		return nil, errors.New("missing GOOGLE_SHEET_NAME")
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheet:         sheet,
		logger:        logger.WithComponent(log.ComponentSheets),
	}, nil
}

// NewFromConfig creates a client authenticated with service account
// credentials. See LoadCredentials.
func NewFromConfig(ctx context.Context, spreadsheetID, sheet string, logger *log.Logger) (*Client, error) {
	credentialsJSON, err := LoadCredentials()
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return New(svc, spreadsheetID, sheet, logger)
}

// LoadCredentials reads service account JSON from GOOGLE_SERVICE_ACCOUNT_JSON,
// the file named by GOOGLE_SERVICE_ACCOUNT_FILE, or the file named by
// GOOGLE_APPLICATION_CREDENTIALS, in that order.
func LoadCredentials() ([]byte, error) {
	if inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); inline != "" {
		return []byte(inline), nil
	}
	path := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if path == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return data, nil
}

// Upsert overwrites the row holding row.ID or appends a new one. An empty
// sheet gets the header first.
func (c *Client) Upsert(ctx context.Context, row sheets.Row) error {
	if row.ID <= 0 {
		return fmt.Errorf("row id must be positive, got %d", row.ID)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	ids, err := c.readIDs(ctx)
	if err != nil {
		return err
	}

	if n := findRow(ids, row.ID); n > 0 {
		rng := fmt.Sprintf("%s!A%d:H%d", c.sheet, n, n)
		_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng,
			&gsheet.ValueRange{Values: [][]any{row.Values()}}).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("update %s: %w", rng, err)
		}
		c.logger.DebugContext(ctx, "Updated movement row", log.FieldEntityID, row.ID, "row", n)
		return nil
	}

	values := [][]any{row.Values()}
	if len(ids) == 0 {
		values = append([][]any{headerValues()}, values...)
	}
	rng := fmt.Sprintf("%s!A:H", c.sheet)
	_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", c.sheet, err)
	}
	c.logger.DebugContext(ctx, "Appended movement row", log.FieldEntityID, row.ID)
	return nil
}

// Remove clears the row holding id. The row is blanked rather than deleted
// so the positions of other rows stay stable.
func (c *Client) Remove(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids, err := c.readIDs(ctx)
	if err != nil {
		return err
	}
	n := findRow(ids, id)
	if n <= 0 {
		return nil
	}
	rng := fmt.Sprintf("%s!A%d:H%d", c.sheet, n, n)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", rng, err)
	}
	c.logger.DebugContext(ctx, "Cleared movement row", log.FieldEntityID, id, "row", n)
	return nil
}

func (c *Client) readIDs(ctx context.Context) ([][]interface{}, error) {
	rng := fmt.Sprintf("%s!A:A", c.sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

func headerValues() []any {
	out := make([]any, len(sheets.Header))
	for i, h := range sheets.Header {
		out[i] = h
	}
	return out
}
