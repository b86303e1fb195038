// Package exporter writes a report table into a new spreadsheet tab.
package exporter

import (
	"context"
	"fmt"
	"log/slog"

	"sayless/internal/report"
)

type Step string

const (
	StepCreateTab Step = "create_tab"
	StepWriteRows Step = "write_rows"
)

var Header = []any{"Channel_Handle", "Video Title", "Is Short?", "Video Link", "Published At"}

// SheetWriter is the subset of the Sheets API the exporter needs.
type SheetWriter interface {
	CreateTab(ctx context.Context, spreadsheetID, title string) error
	WriteRows(ctx context.Context, spreadsheetID, writeRange string, rows [][]any) error
}

type ExportError struct {
	Step Step
	Tab  string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export tab %q: %s: %v", e.Tab, e.Step, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

type Exporter struct {
	sheet           SheetWriter
	spreadsheetID   string
	spreadsheetName string
}

func New(sheet SheetWriter, spreadsheetID, spreadsheetName string) *Exporter {
	return &Exporter{
		sheet:           sheet,
		spreadsheetID:   spreadsheetID,
		spreadsheetName: spreadsheetName,
	}
}

// Export creates the tab named after the table and fills it from A1. A tab
// left empty by a failed write is not removed.
func (e *Exporter) Export(ctx context.Context, table *report.Table) error {
	tab := table.SheetTitle

	if err := e.sheet.CreateTab(ctx, e.spreadsheetID, tab); err != nil {
		return &ExportError{Step: StepCreateTab, Tab: tab, Err: err}
	}

	if err := e.sheet.WriteRows(ctx, e.spreadsheetID, tab+"!A1", Rows(table)); err != nil {
		return &ExportError{Step: StepWriteRows, Tab: tab, Err: err}
	}

	slog.Info("YouTube links uploaded to Google Sheet",
		"spreadsheet", e.spreadsheetName,
		"tab", tab,
		"rows", table.VideoCount(),
	)
	return nil
}

// Rows flattens the table into the header plus one row per video.
func Rows(table *report.Table) [][]any {
	rows := make([][]any, 0, table.VideoCount()+1)
	rows = append(rows, Header)

	for _, channel := range table.Channels {
		for _, v := range channel.Videos {
			rows = append(rows, []any{
				channel.Handle,
				v.Title,
				v.IsShort,
				v.URL,
				v.PublishedAtString(),
			})
		}
	}
	return rows
}
