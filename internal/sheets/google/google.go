// Package google exports ledger snapshots to a Google spreadsheet. The
// spreadsheet is a mirror, not a source of truth: every export clears the
// target sheets and rewrites them from the snapshot.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/oauth2"
	oauthgoogle "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"rastreador/internal/core"
	"rastreador/internal/ledger"
	ports "rastreador/internal/sheets"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	expensesSheet string
	cardsSheet    string
}

// Ensure interface conformance
var _ ports.SnapshotWriter = (*Client)(nil)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID plus OAuth client and token material
// (GOOGLE_OAUTH_CLIENT_JSON/GOOGLE_OAUTH_CLIENT_FILE and
// GOOGLE_OAUTH_TOKEN_JSON/GOOGLE_OAUTH_TOKEN_FILE).
// Optional sheet names: GOOGLE_EXPENSES_SHEET (default "Expenses") and
// GOOGLE_CARDS_SHEET (default "Cards").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	expensesSheet := strings.TrimSpace(os.Getenv("GOOGLE_EXPENSES_SHEET"))
	if expensesSheet == "" {
		expensesSheet = "Expenses"
	}
	cardsSheet := strings.TrimSpace(os.Getenv("GOOGLE_CARDS_SHEET"))
	if cardsSheet == "" {
		cardsSheet = "Cards"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		expensesSheet: expensesSheet,
		cardsSheet:    cardsSheet,
	}, nil
}

// newSheetsService initializes a Sheets Service from the OAuth client and
// token configured in the environment.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	clientJSON, err := readEnvMaterial("GOOGLE_OAUTH_CLIENT_JSON", "GOOGLE_OAUTH_CLIENT_FILE")
	if err != nil {
		return nil, err
	}
	tokenJSON, err := readEnvMaterial("GOOGLE_OAUTH_TOKEN_JSON", "GOOGLE_OAUTH_TOKEN_FILE")
	if err != nil {
		return nil, err
	}

	cfg, err := oauthgoogle.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse oauth client: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenJSON, &token); err != nil {
		return nil, fmt.Errorf("parse oauth token: %w", err)
	}

	httpClient := cfg.Client(ctx, &token)
	service, err := gsheet.NewService(ctx, goption.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created successfully")
	return service, nil
}

func readEnvMaterial(jsonVar, fileVar string) ([]byte, error) {
	if v := strings.TrimSpace(os.Getenv(jsonVar)); v != "" {
		return []byte(v), nil
	}
	if path := strings.TrimSpace(os.Getenv(fileVar)); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fileVar, err)
		}
		return b, nil
	}
	return nil, fmt.Errorf("missing credentials (set %s or %s)", jsonVar, fileVar)
}

// WriteSnapshot clears and rewrites the expenses and cards sheets.
func (c *Client) WriteSnapshot(ctx context.Context, snap ledger.Snapshot) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	if err := c.writeExpenses(ctx, snap); err != nil {
		return err
	}
	if err := c.writeCards(ctx, snap); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Snapshot exported to spreadsheet",
		"expenses", len(snap.Expenses),
		"cards", len(snap.Cards))
	return nil
}

func (c *Client) writeExpenses(ctx context.Context, snap ledger.Snapshot) error {
	values := [][]any{
		{"Year", "Month", "Description", "Amount", "Due date", "Category", "Note", "Payment", "Card"},
	}
	for _, e := range snap.Expenses {
		values = append(values, []any{
			e.Year,
			e.Month,
			e.Description,
			core.FormatAmount(e.Amount),
			e.DueDate.String(),
			string(e.Category),
			e.Note,
			string(e.Payment),
			e.CardName,
		})
	}
	values = append(values,
		[]any{},
		[]any{"Monthly budget", core.FormatAmount(snap.Budget)},
		[]any{"Remaining", core.FormatAmount(snap.Remaining)},
	)
	return c.replaceSheet(ctx, c.expensesSheet, values)
}

func (c *Client) writeCards(ctx context.Context, snap ledger.Snapshot) error {
	forecastByCard := make(map[string]ledger.InvoiceForecast, len(snap.Forecasts))
	for _, f := range snap.Forecasts {
		forecastByCard[f.CardName] = f
	}

	values := [][]any{
		{"Name", "Holder", "Number", "Expiry", "Network", "Limit", "Closing day", "Statement due", "Next invoice", "Cycle start", "Cycle end"},
	}
	for _, card := range snap.Cards {
		row := []any{
			card.Name,
			card.Holder,
			card.MaskedNumber,
			card.Expiry,
			string(card.Network),
			core.FormatAmount(card.Limit),
			card.ClosingDay,
			card.StatementDue.String(),
		}
		if f, ok := forecastByCard[card.Name]; ok && f.CycleStart != nil && f.CycleEnd != nil {
			row = append(row, core.FormatAmount(f.Total), f.CycleStart.String(), f.CycleEnd.String())
		} else {
			row = append(row, "", "", "")
		}
		values = append(values, row)
	}
	return c.replaceSheet(ctx, c.cardsSheet, values)
}

func (c *Client) replaceSheet(ctx context.Context, sheetName string, values [][]any) error {
	clearRange := fmt.Sprintf("%s!A:Z", sheetName)
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear sheet %s: %w", sheetName, err)
	}

	writeRange := fmt.Sprintf("%s!A1", sheetName)
	vr := &gsheet.ValueRange{Values: values}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write sheet %s: %w", sheetName, err)
	}
	return nil
}
