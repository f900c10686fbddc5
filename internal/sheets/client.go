// Package sheets adapts the Google Sheets v4 API as the tabular store for
// completed submissions.
package sheets

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// Appender appends one row to the tabular store.
type Appender interface {
	AppendRow(ctx context.Context, row []string) error
}

// Client implements Appender against a named sheet within a spreadsheet.
type Client struct {
	svc           *gsheets.Service
	spreadsheetID string
	sheetName     string
}

// NewClient builds a Sheets client authenticated with the given
// service-account JSON (plain or base64-encoded). Empty credential material
// falls back to Application Default Credentials.
func NewClient(ctx context.Context, credentialsJSON, spreadsheetID, sheetName string) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, fmt.Errorf("SHEET_ID is required")
	}
	if strings.TrimSpace(sheetName) == "" {
		sheetName = "Sheet1"
	}

	var opts []option.ClientOption
	if creds := NormalizeCredentials(credentialsJSON); creds != "" {
		conf, err := google.JWTConfigFromJSON([]byte(creds), gsheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("parse service account credentials: %w", err)
		}
		opts = append(opts, option.WithHTTPClient(conf.Client(ctx)))
	} else {
		opts = append(opts, option.WithScopes(gsheets.SpreadsheetsScope))
	}

	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("build sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

// AppendRow appends one row after the last row of the sheet.
func (c *Client) AppendRow(ctx context.Context, row []string) error {
	values := make([]interface{}, len(row))
	for i, cell := range row {
		values[i] = cell
	}
	vr := &gsheets.ValueRange{Values: [][]interface{}{values}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.sheetName, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	return nil
}

// NormalizeCredentials accepts service-account material as raw JSON or as a
// base64-encoded blob and returns the JSON form, or "" when unset.
func NormalizeCredentials(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "{") {
		return raw
	}
	if decoded, err := base64.StdEncoding.DecodeString(raw); err == nil {
		if s := strings.TrimSpace(string(decoded)); strings.HasPrefix(s, "{") {
			return s
		}
	}
	return raw
}

var _ Appender = (*Client)(nil)
