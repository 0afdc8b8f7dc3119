package google

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"ledgerly/internal/export"
)

// spreadsheet is the slice of the Sheets API the sink needs.
type spreadsheet interface {
	AddSheet(ctx context.Context, title string) error
	WriteValues(ctx context.Context, a1Range string, values [][]interface{}) error
}

// Sink writes each export into a new tab of one spreadsheet.
type Sink struct {
	api spreadsheet
}

var _ export.Sink = (*Sink)(nil)

// Credentials selects the service account used to reach the Sheets API.
// JSON wins over File when both are set.
type Credentials struct {
	JSON string
	File string
}

// New creates a Sink for spreadsheetID using service account credentials.
func New(ctx context.Context, spreadsheetID string, creds Credentials) (*Sink, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := newSheetsService(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Sink{api: &sheetsAPI{svc: svc, spreadsheetID: spreadsheetID}}, nil
}

func newSheetsService(ctx context.Context, creds Credentials) (*gsheet.Service, error) {
	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(creds.JSON) != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(creds.JSON)
	case strings.TrimSpace(creds.File) != "":
		b, err := os.ReadFile(creds.File)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		slog.InfoContext(ctx, "Read credentials file", "path", creds.File, "size", len(b))
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

func (s *Sink) Deliver(ctx context.Context, filename, csvText string) error {
	if filename == "" {
		return export.ErrEmptyFilename
	}
	values, err := csvToValues(csvText)
	if err != nil {
		return fmt.Errorf("parse export: %w", err)
	}

	title := sheetTitle(filename)
	if err := s.api.AddSheet(ctx, title); err != nil {
		return fmt.Errorf("add sheet %q: %w", title, err)
	}
	if err := s.api.WriteValues(ctx, fmt.Sprintf("'%s'!A1", title), values); err != nil {
		return fmt.Errorf("write sheet %q: %w", title, err)
	}

	slog.InfoContext(ctx, "Export written to spreadsheet", "sheet", title, "rows", len(values))
	return nil
}

// csvToValues parses the export back into a cell matrix.
func csvToValues(text string) ([][]interface{}, error) {
	r := csv.NewReader(strings.NewReader(text))
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	values := make([][]interface{}, len(records))
	for i, rec := range records {
		row := make([]interface{}, len(rec))
		for j, cell := range rec {
			row[j] = cell
		}
		values[i] = row
	}
	return values, nil
}

// sheetTitle derives a tab name from the export filename. Sheets rejects
// a handful of characters and caps titles at 100 runes.
func sheetTitle(filename string) string {
	title := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	title = strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', '*', '?', '/', '\\', ':', '\'':
			return '_'
		}
		return r
	}, title)
	if title == "" {
		title = "export"
	}
	if runes := []rune(title); len(runes) > 100 {
		title = string(runes[:100])
	}
	return title
}

type sheetsAPI struct {
	svc           *gsheet.Service
	spreadsheetID string
}

func (a *sheetsAPI) AddSheet(ctx context.Context, title string) error {
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{
				Properties: &gsheet.SheetProperties{Title: title},
			},
		}},
	}
	_, err := a.svc.Spreadsheets.BatchUpdate(a.spreadsheetID, req).Context(ctx).Do()
	return err
}

func (a *sheetsAPI) WriteValues(ctx context.Context, a1Range string, values [][]interface{}) error {
	vr := &gsheet.ValueRange{Values: values}
	// RAW keeps amounts and dates exactly as exported.
	_, err := a.svc.Spreadsheets.Values.Update(a.spreadsheetID, a1Range, vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}
