package report

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/go-pdf/fpdf"
)

// family is the name every report registers its UTF-8 faces under.
const family = "portal"

var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	dejaVuRegular []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	dejaVuBold []byte
	//go:embed fonts/DejaVuSansCondensed-Oblique.ttf
	dejaVuItalic []byte
)

// Fonts holds the TrueType faces used for reports. Italic falls back to Regular.
type Fonts struct {
	Regular []byte
	Bold    []byte
	Italic  []byte
}

var (
	fontsMu sync.RWMutex
	faces   = Fonts{Regular: dejaVuRegular, Bold: dejaVuBold, Italic: dejaVuItalic}
)

// UseFonts replaces the embedded DejaVu faces, e.g. with a font that has
// Bengali glyphs. Bold and Italic default to Regular when empty. The faces
// are parsed once here so a bad file fails at startup instead of per report.
func UseFonts(f Fonts) error {
	if len(f.Regular) == 0 {
		return errors.New("report fonts: regular face is required")
	}
	if len(f.Bold) == 0 {
		f.Bold = f.Regular
	}
	if len(f.Italic) == 0 {
		f.Italic = f.Regular
	}
	if err := checkFonts(f); err != nil {
		return err
	}
	fontsMu.Lock()
	faces = f
	fontsMu.Unlock()
	return nil
}

func currentFonts() Fonts {
	fontsMu.RLock()
	defer fontsMu.RUnlock()
	return faces
}

func checkFonts(f Fonts) (err error) {
	// fpdf's TTF parser indexes raw tables and can panic on truncated input.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("report fonts: unreadable font: %v", r)
		}
	}()
	pdf := fpdf.New("P", "mm", "A4", "")
	loadFonts(pdf, f)
	for _, style := range []string{"", "B", "I"} {
		pdf.SetFont(family, style, 10)
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("report fonts: %w", err)
	}
	return nil
}

func loadFonts(pdf *fpdf.Fpdf, f Fonts) {
	pdf.AddUTF8FontFromBytes(family, "", f.Regular)
	pdf.AddUTF8FontFromBytes(family, "B", f.Bold)
	pdf.AddUTF8FontFromBytes(family, "I", f.Italic)
}
