package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	DateLayout = "02 Jan 2006"
	pageWidth  = 190.0 // A4 minus 10mm margins
	lineHeight = 7.0
)

// doc wraps fpdf with the portal's header/footer. Text is written through
// an embedded UTF-8 font, so names and addresses pass through unchanged.
type doc struct {
	pdf *fpdf.Fpdf
}

func newDoc(title string, generated time.Time) *doc {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetCreator("jobportal", true)
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AliasNbPages("")

	loadFonts(pdf, currentFonts())
	d := &doc{pdf: pdf}

	pdf.SetHeaderFunc(func() {
		pdf.SetFont(family, "B", 14)
		pdf.CellFormat(0, 8, title, "", 1, "C", false, 0, "")
		pdf.SetFont(family, "", 8)
		pdf.CellFormat(0, 5, "Generated "+generated.Format(DateLayout+" 15:04"), "B", 1, "R", false, 0, "")
		pdf.Ln(3)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont(family, "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()
	return d
}

// field prints a "Label: value" row.
func (d *doc) field(label, value string) {
	d.pdf.SetFont(family, "B", 10)
	d.pdf.CellFormat(45, lineHeight, label, "", 0, "L", false, 0, "")
	d.pdf.SetFont(family, "", 10)
	d.pdf.MultiCell(0, lineHeight, orDash(value), "", "L", false)
}

func (d *doc) section(title string) {
	d.pdf.Ln(2)
	d.pdf.SetFont(family, "B", 11)
	d.pdf.SetFillColor(230, 236, 245)
	d.pdf.CellFormat(0, lineHeight, title, "", 1, "L", true, 0, "")
	d.pdf.Ln(1)
}

// table renders a header row and body rows; widths are in mm and should sum to pageWidth.
func (d *doc) table(widths []float64, header []string, rows [][]string) {
	d.pdf.SetFont(family, "B", 9)
	d.pdf.SetFillColor(45, 72, 120)
	d.pdf.SetTextColor(255, 255, 255)
	for i, h := range header {
		d.pdf.CellFormat(widths[i], lineHeight, h, "1", 0, "C", true, 0, "")
	}
	d.pdf.Ln(-1)

	d.pdf.SetFont(family, "", 9)
	d.pdf.SetTextColor(0, 0, 0)
	d.pdf.SetFillColor(245, 245, 245)
	for n, row := range rows {
		for i, cell := range row {
			align := "L"
			if isNumeric(cell) {
				align = "R"
			}
			d.pdf.CellFormat(widths[i], lineHeight, fit(cell, widths[i]), "1", 0, align, n%2 == 1, 0, "")
		}
		d.pdf.Ln(-1)
	}
	if len(rows) == 0 {
		d.pdf.SetFont(family, "I", 9)
		d.pdf.CellFormat(sum(widths), lineHeight, "No records", "1", 1, "C", false, 0, "")
	}
}

func (d *doc) write(w io.Writer) error {
	if err := d.pdf.Error(); err != nil {
		return fmt.Errorf("layout pdf: %w", err)
	}
	return d.pdf.Output(w)
}

// Filename is the download name used in Content-Disposition.
func Filename(kind string, id int64) string {
	return kind + "-" + strconv.FormatInt(id, 10) + ".pdf"
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// Money formats whole taka with thousands separators.
func Money(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != ',' && r != '.' {
			return false
		}
	}
	return true
}

// fit truncates s so it stays inside a cell of width w at 9pt (about 1.9mm per char).
func fit(s string, w float64) string {
	max := int(w / 1.9)
	r := []rune(s)
	if max < 4 || len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

func sum(xs []float64) float64 {
	t := 0.0
	for _, x := range xs {
		t += x
	}
	return t
}
