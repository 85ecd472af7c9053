package pdf

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const fontFamily = "DejaVu"

var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	dejaVuRegular []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	dejaVuBold []byte
)

// registerFonts adds the embedded UTF-8 fonts to doc under fontFamily.
func registerFonts(doc *gofpdf.Fpdf) error {
	if len(dejaVuRegular) == 0 || len(dejaVuBold) == 0 {
		return fmt.Errorf("font data is empty")
	}
	doc.AddUTF8FontFromBytes(fontFamily, "", dejaVuRegular)
	doc.AddUTF8FontFromBytes(fontFamily, "B", dejaVuBold)
	// A font that fails to parse is silently skipped by gofpdf; selecting it
	// surfaces the problem as a document error.
	doc.SetFont(fontFamily, "B", textSize)
	doc.SetFont(fontFamily, "", textSize)
	return doc.Error()
}

// clean replaces runes outside the Basic Multilingual Plane, which the UTF-8
// font tables can not index, and drops carriage returns.
func clean(s string) string {
	if !strings.ContainsFunc(s, func(r rune) bool { return r > 0xFFFF || r == '\r' }) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\r':
		case r > 0xFFFF:
			b.WriteRune('?')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
