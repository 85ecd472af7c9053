package pdf

type Color struct {
	R, G, B int
}

var (
	colorBrand      = Color{234, 88, 12}
	colorBrandDark  = Color{154, 52, 18}
	colorBrandLight = Color{255, 237, 213}
	colorInk        = Color{31, 41, 55}
	colorMuted      = Color{107, 114, 128}
	colorPage       = Color{249, 250, 251}
	colorCard       = Color{255, 255, 255}
	colorBorder     = Color{229, 231, 235}
	colorStripe     = Color{243, 244, 246}
	colorWhite      = Color{255, 255, 255}
)

// A4 portrait, millimetres.
const (
	pageWidth     = 210.0
	pageHeight    = 297.0
	pageMargin    = 12.0
	headerHeight  = 32.0
	footerHeight  = 14.0
	contentTop    = headerHeight + 8
	contentBottom = pageHeight - footerHeight - 4
	contentWidth  = pageWidth - 2*pageMargin

	cardPadding = 4.0
	cardRadius  = 2.5
	cardGap     = 5.0
	titleSize   = 11.0
	titleHeight = 7.0
	blockGap    = 2.0
	textSize    = 9.0
	tableSize   = 8.0
	cellPadding = 1.2

	qrSize            = 38.0
	verificationWidth = contentWidth - qrSize - cardGap
)

// lineHeight converts a font size in points to a line advance in millimetres.
func lineHeight(size float64) float64 {
	return size * 0.3528 * 1.35
}
