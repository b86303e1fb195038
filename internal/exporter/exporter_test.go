package exporter

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"sayless/internal/report"
)

type spySheet struct {
	createErr error
	writeErr  error

	tabs   []string
	ranges []string
	ids    []string
	rows   [][]any
}

func (s *spySheet) CreateTab(_ context.Context, spreadsheetID, title string) error {
	s.ids = append(s.ids, spreadsheetID)
	s.tabs = append(s.tabs, title)
	return s.createErr
}

func (s *spySheet) WriteRows(_ context.Context, spreadsheetID, writeRange string, rows [][]any) error {
	s.ids = append(s.ids, spreadsheetID)
	s.ranges = append(s.ranges, writeRange)
	s.rows = rows
	return s.writeErr
}

func sampleTable() *report.Table {
	published := time.Date(2024, time.June, 14, 10, 0, 0, 0, time.UTC)

	a := report.NewChannel("@a")
	a.AddVideos(
		report.NewVideo("a1", "First", false, published),
		report.NewVideo("a2", "Second", true, published.Add(time.Hour)),
	)
	b := report.NewChannel("@b")
	c := report.NewChannel("@c")
	c.AddVideos(report.NewVideo("c1", "Third", true, published.Add(90*time.Second+123456*time.Microsecond)))

	table := report.NewTable("2024-06-14")
	table.AddChannel(a)
	table.AddChannel(b)
	table.AddChannel(c)
	return table
}

func TestRows(t *testing.T) {
	rows := Rows(sampleTable())

	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4", len(rows))
	}
	for i, h := range Header {
		if rows[0][i] != h {
			t.Errorf("header[%d] = %v, want %v", i, rows[0][i], h)
		}
	}

	want := [][]any{
		{"@a", "First", false, "https://www.youtube.com/watch?v=a1", "2024-06-14 10:00:00.000000"},
		{"@a", "Second", true, "https://www.youtube.com/watch?v=a2", "2024-06-14 11:00:00.000000"},
		{"@c", "Third", true, "https://www.youtube.com/watch?v=c1", "2024-06-14 10:01:30.123456"},
	}
	for i, row := range want {
		got := rows[i+1]
		if len(got) != len(row) {
			t.Fatalf("row %d has %d cells, want %d", i+1, len(got), len(row))
		}
		for j := range row {
			if got[j] != row[j] {
				t.Errorf("row %d cell %d = %#v, want %#v", i+1, j, got[j], row[j])
			}
		}
	}
}

func TestRowsEmptyTable(t *testing.T) {
	table := report.NewTable("2024-06-14")
	table.AddChannel(report.NewChannel("@quiet"))

	rows := Rows(table)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want header only", len(rows))
	}
}

func TestExport(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	var logs bytes.Buffer
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))

	sheet := &spySheet{}
	e := New(sheet, "sheet-123", "Daily uploads")

	if err := e.Export(context.Background(), sampleTable()); err != nil {
		t.Fatalf("Export() error: %v", err)
	}

	if len(sheet.tabs) != 1 || sheet.tabs[0] != "2024-06-14" {
		t.Errorf("created tabs = %v, want [2024-06-14]", sheet.tabs)
	}
	if len(sheet.ranges) != 1 || sheet.ranges[0] != "2024-06-14!A1" {
		t.Errorf("write ranges = %v, want [2024-06-14!A1]", sheet.ranges)
	}
	for _, id := range sheet.ids {
		if id != "sheet-123" {
			t.Errorf("spreadsheet id = %q, want sheet-123", id)
		}
	}
	if len(sheet.rows) != 4 {
		t.Errorf("wrote %d rows, want 4", len(sheet.rows))
	}
	for _, attr := range []string{`spreadsheet="Daily uploads"`, "tab=2024-06-14", "rows=3"} {
		if !strings.Contains(logs.String(), attr) {
			t.Errorf("log %q missing %s", logs.String(), attr)
		}
	}
}

func TestExportErrors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name       string
		sheet      *spySheet
		wantStep   Step
		wantWrites int
	}{
		{
			name:       "createTabFails",
			sheet:      &spySheet{createErr: boom},
			wantStep:   StepCreateTab,
			wantWrites: 0,
		},
		{
			name:       "writeRowsFails",
			sheet:      &spySheet{writeErr: boom},
			wantStep:   StepWriteRows,
			wantWrites: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(tt.sheet, "sheet-123", "Daily uploads")

			err := e.Export(context.Background(), sampleTable())

			var exportErr *ExportError
			if !errors.As(err, &exportErr) {
				t.Fatalf("Export() error = %v, want *ExportError", err)
			}
			if exportErr.Step != tt.wantStep {
				t.Errorf("Step = %s, want %s", exportErr.Step, tt.wantStep)
			}
			if exportErr.Tab != "2024-06-14" {
				t.Errorf("Tab = %q, want 2024-06-14", exportErr.Tab)
			}
			if !errors.Is(err, boom) {
				t.Error("cause not wrapped")
			}
			if len(tt.sheet.ranges) != tt.wantWrites {
				t.Errorf("writes = %d, want %d", len(tt.sheet.ranges), tt.wantWrites)
			}
		})
	}
}
