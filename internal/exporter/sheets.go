package exporter

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const valueInputRaw = "RAW"

var _ SheetWriter = (*SheetsWriter)(nil)

type SheetsWriter struct {
	service *sheets.Service
}

func NewService(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*sheets.Service, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return svc, nil
}

func NewSheetsWriter(service *sheets.Service) *SheetsWriter {
	return &SheetsWriter{service: service}
}

func (w *SheetsWriter) CreateTab(ctx context.Context, spreadsheetID, title string) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: title},
			},
		}},
	}

	if _, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %q: %w", title, err)
	}
	return nil
}

func (w *SheetsWriter) WriteRows(ctx context.Context, spreadsheetID, writeRange string, rows [][]any) error {
	values := &sheets.ValueRange{Values: rows}

	_, err := w.service.Spreadsheets.Values.
		Update(spreadsheetID, writeRange, values).
		ValueInputOption(valueInputRaw).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("update values %s: %w", writeRange, err)
	}
	return nil
}
