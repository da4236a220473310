package core

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/datatable/internal/datatable"
)

// DisplayDateLayout formats dates for people: MM/DD/YYYY.
const DisplayDateLayout = "01/02/2006"

var exportHeader = []string{"ID", "Name", "Email", "Role", "Created At", "Status"}

// ExportFileName is the download name for a format, e.g. users-export.csv.
func ExportFileName(f datatable.ExportFormat) string {
	return "users-export." + string(f)
}

// ExportContentType is the MIME type of a format.
func ExportContentType(f datatable.ExportFormat) string {
	switch f {
	case datatable.ExportExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case datatable.ExportPDF:
		return "application/pdf"
	default:
		return "text/csv; charset=utf-8"
	}
}

func exportRecord(u User) []string {
	return []string{
		strconv.FormatInt(u.ID, 10),
		u.Name,
		u.Email,
		u.Role,
		u.CreatedAt.Format(DisplayDateLayout),
		u.Status,
	}
}

// exportWriter receives users one at a time and finishes the file.
type exportWriter interface {
	write(u User) error
	close(w io.Writer) error
}

func newExportWriter(f datatable.ExportFormat) (exportWriter, error) {
	switch f {
	case datatable.ExportCSV:
		return &csvExport{}, nil
	case datatable.ExportExcel:
		return newExcelExport()
	case datatable.ExportPDF:
		return newPDFExport(), nil
	}
	return nil, fmt.Errorf("%w: %q", datatable.ErrUnsupportedFormat, f)
}

// ---------------------------------------------------------------------------
// CSV
// ---------------------------------------------------------------------------

type csvExport struct {
	rows [][]string
}

func (c *csvExport) write(u User) error {
	c.rows = append(c.rows, exportRecord(u))
	return nil
}

func (c *csvExport) close(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(c.rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Excel
// ---------------------------------------------------------------------------

const excelSheet = "Users"

type excelExport struct {
	file      *excelize.File
	stream    *excelize.StreamWriter
	dateStyle int
	row       int
}

func newExcelExport() (*excelExport, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", excelSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("header style: %w", err)
	}
	dateFmt := "mm/dd/yyyy"
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("date style: %w", err)
	}

	sw, err := f.NewStreamWriter(excelSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stream writer: %w", err)
	}
	if err := sw.SetColWidth(2, 3, 28); err != nil {
		f.Close()
		return nil, fmt.Errorf("column width: %w", err)
	}

	header := make([]any, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: h}
	}
	if err := sw.SetRow("A1", header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}

	return &excelExport{file: f, stream: sw, dateStyle: dateStyle, row: 1}, nil
}

func (e *excelExport) write(u User) error {
	e.row++
	cell, err := excelize.CoordinatesToCellName(1, e.row)
	if err != nil {
		return err
	}
	return e.stream.SetRow(cell, []any{
		u.ID,
		u.Name,
		u.Email,
		u.Role,
		excelize.Cell{StyleID: e.dateStyle, Value: u.CreatedAt},
		u.Status,
	})
}

// Close releases the workbook without writing it.
func (e *excelExport) Close() error {
	return e.file.Close()
}

func (e *excelExport) close(w io.Writer) error {
	defer e.file.Close()
	if err := e.stream.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	if err := e.file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// PDF
// ---------------------------------------------------------------------------

// pdfWidths are the column widths in millimetres on landscape A4.
var pdfWidths = []float64{15, 60, 80, 35, 35, 35}

type pdfExport struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func newPDFExport() *pdfExport {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Users", true)
	pdf.SetAutoPageBreak(true, 15)

	p := &pdfExport{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pdf.SetHeaderFunc(p.header)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 9)
	return p
}

func (p *pdfExport) header() {
	p.pdf.SetFont("Helvetica", "B", 10)
	p.pdf.SetFillColor(235, 235, 235)
	for i, h := range exportHeader {
		p.pdf.CellFormat(pdfWidths[i], 8, h, "1", 0, "L", true, 0, "")
	}
	p.pdf.Ln(-1)
	p.pdf.SetFont("Helvetica", "", 9)
}

func (p *pdfExport) write(u User) error {
	for i, v := range exportRecord(u) {
		p.pdf.CellFormat(pdfWidths[i], 7, p.tr(v), "1", 0, "L", false, 0, "")
	}
	p.pdf.Ln(-1)
	return p.pdf.Error()
}

func (p *pdfExport) close(w io.Writer) error {
	if err := p.pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
