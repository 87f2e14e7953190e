package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Format names an output encoding.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ErrNoColumns is returned for a dataset without headers.
var ErrNoColumns = errors.New("export requires at least one column")

// Dataset is a titled table. Every row must have len(Headers) cells.
type Dataset struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Document is rendered output ready to be served.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Render encodes data in the requested format. basename is used without extension.
func Render(data Dataset, format Format, basename string) (*Document, error) {
	switch format {
	case FormatCSV:
		body, err := RenderCSV(data)
		if err != nil {
			return nil, err
		}
		return &Document{Filename: basename + ".csv", ContentType: "text/csv; charset=utf-8", Body: body}, nil
	case FormatPDF:
		body, err := RenderPDF(data)
		if err != nil {
			return nil, err
		}
		return &Document{Filename: basename + ".pdf", ContentType: "application/pdf", Body: body}, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// RenderCSV writes the header row followed by every data row. Cells that a
// spreadsheet would evaluate as a formula are prefixed with a quote.
func RenderCSV(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, ErrNoColumns
	}
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for i, row := range data.Rows {
		if err := w.Write(inertCells(pad(row, len(data.Headers)))); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderPDF lays the dataset out as a single landscape table.
func RenderPDF(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, ErrNoColumns
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if data.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(data.Title), "", 1, "L", false, 0, "")
		pdf.Ln(3)
	}

	width := 277.0 / float64(len(data.Headers))
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 236, 245)
	for _, h := range data.Headers {
		pdf.CellFormat(width, 8, tr(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	if len(data.Rows) == 0 {
		pdf.CellFormat(width*float64(len(data.Headers)), 8, "No rows", "1", 1, "C", false, 0, "")
	}
	for _, row := range data.Rows {
		for _, cell := range pad(row, len(data.Headers)) {
			pdf.CellFormat(width, 7, tr(truncate(cell, 60)), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

const formulaLeads = "=+-@\t\r"

func inertCells(row []string) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		if cell != "" && strings.IndexByte(formulaLeads, cell[0]) >= 0 {
			cell = "'" + cell
		}
		out[i] = cell
	}
	return out
}

func pad(row []string, n int) []string {
	if len(row) == n {
		return row
	}
	out := make([]string, n)
	copy(out, row)
	return out
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
