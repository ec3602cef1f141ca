// Package pdf renders the sample invoice-style document.
package pdf

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"go-quickstart/internal/helpers"

	"github.com/go-pdf/fpdf"
)

const (
	DefaultTitle   = "My PDF Title"
	DefaultContent = "Hello, this is your PDF content!"
	Filename       = "NewPDF.pdf"
)

type Item struct {
	Item  string  `json:"item"`
	Price float64 `json:"price"`
}

type Document struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Items   []Item `json:"items"`
}

var defaultItems = []Item{
	{Item: "Service A", Price: 500},
	{Item: "Service B", Price: 700},
}

// WithDefaults fills empty fields with the sample values.
func (d Document) WithDefaults() Document {
	if strings.TrimSpace(d.Title) == "" {
		d.Title = DefaultTitle
	}
	if strings.TrimSpace(d.Content) == "" {
		d.Content = DefaultContent
	}
	if len(d.Items) == 0 {
		d.Items = defaultItems
	}
	return d
}

// price renders an amount with Indian grouping. The core fonts have no rupee glyph.
func price(v float64) string {
	return strings.Replace(helpers.FormatCurrencyINR(v), "₹", "Rs. ", 1)
}

// Render writes d as a single A4 page: a centred heading, the body text and an item table.
func Render(w io.Writer, d Document, generatedAt time.Time) error {
	d = d.WithDefaults()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(d.Title, true)
	pdf.SetCreationDate(generatedAt)
	pdf.SetModificationDate(generatedAt)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	width := pageW - left - right

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(width, 10, tr(d.Title), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 12)
	pdf.MultiCell(width, 6, tr(d.Content), "", "L", false)
	pdf.Ln(6)

	col := width / 2
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetFillColor(221, 221, 221)
	pdf.CellFormat(col, 8, "Item", "1", 0, "L", true, 0, "")
	pdf.CellFormat(col, 8, "Price", "1", 1, "L", true, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	total := 0.0
	for _, it := range d.Items {
		pdf.CellFormat(col, 8, tr(it.Item), "1", 0, "L", false, 0, "")
		pdf.CellFormat(col, 8, price(it.Price), "1", 1, "L", false, 0, "")
		total += it.Price
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(col, 8, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(col, 8, price(total), "1", 1, "L", false, 0, "")

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(width, 6, "Generated on "+helpers.ReadableDate(helpers.ConvertToIST(generatedAt)), "", 1, "R", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

func Bytes(d Document, generatedAt time.Time) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, d, generatedAt); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
