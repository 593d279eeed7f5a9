package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"expensemcp/internal/core"
	ports "expensemcp/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Columns written per expense: id, category, amount, description.
const mirrorColumns = "A:D"

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	expensesSheet string
}

// Ensure interface conformance
var _ ports.ExpenseWriter = (*Client)(nil)

// Config selects the spreadsheet and the service account used to write to it.
type Config struct {
	SpreadsheetID string
	SheetName     string

	// Inline credentials win over the file.
	ServiceAccountJSON string
	ServiceAccountFile string
}

// NewClient creates a Sheets client authenticated with a service account.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	credentialsJSON, err := loadCredentials(cfg)
	if err != nil {
		return nil, err
	}

	return newClient(ctx, cfg,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
}

func newClient(ctx context.Context, cfg Config, opts ...goption.ClientOption) (*Client, error) {
	spreadsheetID := strings.TrimSpace(cfg.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	sheetName := strings.TrimSpace(cfg.SheetName)
	if sheetName == "" {
		sheetName = "Expenses"
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created successfully", "sheet", sheetName)
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		expensesSheet: sheetName,
	}, nil
}

func loadCredentials(cfg Config) ([]byte, error) {
	serviceAccountJSON := strings.TrimSpace(cfg.ServiceAccountJSON)
	serviceAccountFile := strings.TrimSpace(cfg.ServiceAccountFile)

	switch {
	case serviceAccountJSON != "":
		return []byte(serviceAccountJSON), nil
	case serviceAccountFile != "":
		data, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// Append adds e as a new row at the bottom of the expenses sheet and
// returns the range the API reports as written.
func (c *Client) Append(ctx context.Context, e core.Expense) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!%s", c.expensesSheet, mirrorColumns)
	vr := &gsheet.ValueRange{Values: [][]any{expenseRow(e)}}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", c.expensesSheet, err)
	}

	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		return resp.Updates.UpdatedRange, nil
	}
	return rng, nil
}

func expenseRow(e core.Expense) []any {
	return []any{e.ID, e.Category, e.Amount, e.Description}
}
