package core

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/datatable/internal/datatable"
)

func writeExport(t *testing.T, format datatable.ExportFormat, users []User) []byte {
	t.Helper()
	ew, err := newExportWriter(format)
	if err != nil {
		t.Fatalf("newExportWriter(%q): %v", format, err)
	}
	for _, u := range users {
		if err := ew.write(u); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	var buf bytes.Buffer
	if err := ew.close(&buf); err != nil {
		t.Fatalf("close: %v", err)
	}
	return buf.Bytes()
}

func TestExportFileName(t *testing.T) {
	tests := []struct {
		format datatable.ExportFormat
		want   string
	}{
		{datatable.ExportCSV, "users-export.csv"},
		{datatable.ExportExcel, "users-export.excel"},
		{datatable.ExportPDF, "users-export.pdf"},
	}
	for _, tt := range tests {
		if got := ExportFileName(tt.format); got != tt.want {
			t.Errorf("ExportFileName(%q) = %q, want %q", tt.format, got, tt.want)
		}
	}
}

func TestNewExportWriter_Unsupported(t *testing.T) {
	if _, err := newExportWriter("docx"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestCSVExport(t *testing.T) {
	data := writeExport(t, datatable.ExportCSV, SampleUsers()[:2])

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want header + 2", len(records))
	}
	if records[0][1] != "Name" {
		t.Errorf("header = %v", records[0])
	}
	want := []string{"1", "John Doe", "john@example.com", "Admin", "01/15/2024", "active"}
	for i, v := range want {
		if records[1][i] != v {
			t.Errorf("record[1][%d] = %q, want %q", i, records[1][i], v)
		}
	}
}

func TestExcelExport(t *testing.T) {
	data := writeExport(t, datatable.ExportExcel, SampleUsers())

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(excelSheet)
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(rows) != 6 {
		t.Fatalf("rows = %d, want header + 5", len(rows))
	}
	if rows[0][0] != "ID" || rows[2][1] != "Jane Smith" {
		t.Errorf("unexpected content: %v / %v", rows[0], rows[2])
	}
}

func TestPDFExport(t *testing.T) {
	data := writeExport(t, datatable.ExportPDF, SampleUsers())

	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("output does not start with a PDF header: %q", data[:min(len(data), 8)])
	}
}
