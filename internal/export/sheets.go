package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	applog "carteira/internal/log"
	"carteira/internal/summary"
)

var ErrNoCredentials = errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")

// LoadCredentials prefers inline JSON over a credentials file.
func LoadCredentials(inlineJSON, file string) ([]byte, error) {
	switch {
	case strings.TrimSpace(inlineJSON) != "":
		return []byte(inlineJSON), nil
	case strings.TrimSpace(file) != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, ErrNoCredentials
	}
}

// CredentialOptions authenticates with a service account limited to the
// spreadsheets scope.
func CredentialOptions(credentialsJSON []byte) []option.ClientOption {
	return []option.ClientOption{
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(gsheet.SpreadsheetsScope),
	}
}

// SheetsExporter writes summaries into one Google Sheets spreadsheet. Each
// export replaces the content of its target sheet.
type SheetsExporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	logger        *applog.Logger
}

func NewSheetsExporter(ctx context.Context, spreadsheetID string, logger *applog.Logger, opts ...option.ClientOption) (*SheetsExporter, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &SheetsExporter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		logger:        logger.WithComponent(applog.ComponentExport),
	}, nil
}

// ExportAnnual writes the annual summary and the given invoices, one sheet
// each, creating missing sheets.
func (s *SheetsExporter) ExportAnnual(ctx context.Context, a summary.Annual, invoices []summary.Invoice) error {
	existing, err := s.sheetTitles(ctx)
	if err != nil {
		return err
	}

	if err := s.writeSheet(ctx, existing, AnnualSheetName(a.Year), AnnualRows(a)); err != nil {
		return err
	}
	for _, inv := range invoices {
		if err := s.writeSheet(ctx, existing, InvoiceSheetName(inv), InvoiceRows(inv)); err != nil {
			return err
		}
	}

	s.logger.InfoContext(ctx, "Spreadsheet export finished",
		applog.FieldYear, a.Year,
		"spreadsheet_id", s.spreadsheetID,
		"invoices", len(invoices),
	)
	return nil
}

func (s *SheetsExporter) sheetTitles(ctx context.Context) (map[string]bool, error) {
	sp, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read spreadsheet: %w", err)
	}
	titles := make(map[string]bool, len(sp.Sheets))
	for _, sh := range sp.Sheets {
		if sh.Properties != nil {
			titles[sh.Properties.Title] = true
		}
	}
	return titles, nil
}

func (s *SheetsExporter) writeSheet(ctx context.Context, existing map[string]bool, title string, rows [][]any) error {
	if !existing[title] {
		req := &gsheet.BatchUpdateSpreadsheetRequest{
			Requests: []*gsheet.Request{{
				AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: title}},
			}},
		}
		if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
			return fmt.Errorf("add sheet %q: %w", title, err)
		}
		existing[title] = true
		s.logger.DebugContext(ctx, "Sheet created", "sheet", title)
	}

	whole := quoteSheet(title)
	if _, err := s.svc.Spreadsheets.Values.Clear(s.spreadsheetID, whole, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet %q: %w", title, err)
	}
	vr := &gsheet.ValueRange{Values: rows}
	if _, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, whole+"!A1", vr).ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write sheet %q: %w", title, err)
	}
	return nil
}

// quoteSheet quotes a sheet title for A1 notation.
func quoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}
