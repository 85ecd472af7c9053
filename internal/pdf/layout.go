package pdf

import (
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Block is a piece of card content. The set of implementations is closed:
// TextBlock and TableBlock.
type Block interface {
	block()
}

type TextBlock struct {
	Text  string
	Bold  bool
	Size  float64
	Color *Color
}

type TableBlock struct {
	Head   []string
	Rows   [][]string
	Widths []float64
	// Highlight is the 1-based number of the emphasized row, 0 for none.
	Highlight int
}

func (TextBlock) block()  {}
func (TableBlock) block() {}

type Card struct {
	Title  string
	Blocks []Block
	Accent *Color
}

type CardResult struct {
	Height float64
	FinalY float64
}

// Layout measures and paints cards on a gofpdf document. The font must be a
// registered UTF-8 font.
type Layout struct {
	pdf  *gofpdf.Fpdf
	font string
}

func NewLayout(pdf *gofpdf.Fpdf, font string) *Layout {
	return &Layout{pdf: pdf, font: font}
}

// MeasureCard returns the height DrawCard will use for the card, without
// painting anything.
func (l *Layout) MeasureCard(width float64, card Card) (float64, error) {
	inner := width - 2*cardPadding
	height := 2 * cardPadding
	if card.Title != "" {
		height += titleHeight
	}
	for i, b := range card.Blocks {
		h, err := l.measureBlock(inner, b)
		if err != nil {
			return 0, err
		}
		height += h
		if i > 0 {
			height += blockGap
		}
	}
	return height, nil
}

// DrawCard paints a rounded card at (x, y). The height is measured first so
// the background is drawn under the content.
func (l *Layout) DrawCard(x, y, width float64, card Card) (CardResult, error) {
	height, err := l.MeasureCard(width, card)
	if err != nil {
		return CardResult{}, err
	}

	l.setFill(colorCard)
	l.setDraw(colorBorder)
	l.pdf.SetLineWidth(0.3)
	l.pdf.RoundedRect(x, y, width, height, cardRadius, "1234", "FD")

	accent := colorBrand
	if card.Accent != nil {
		accent = *card.Accent
	}
	l.setFill(accent)
	l.pdf.Rect(x, y+cardRadius, 1.2, height-2*cardRadius, "F")

	inner := width - 2*cardPadding
	cursor := y + cardPadding
	if card.Title != "" {
		l.pdf.SetFont(l.font, "B", titleSize)
		l.setText(accent)
		l.pdf.SetXY(x+cardPadding, cursor)
		l.pdf.CellFormat(inner, titleHeight-1, clean(card.Title), "", 0, "L", false, 0, "")
		cursor += titleHeight
	}

	for i, b := range card.Blocks {
		if i > 0 {
			cursor += blockGap
		}
		switch b := b.(type) {
		case TextBlock:
			cursor = l.drawText(x+cardPadding, cursor, inner, b)
		case TableBlock:
			cursor = l.drawTable(x+cardPadding, cursor, inner, b)
		default:
			return CardResult{}, fmt.Errorf("unsupported block %T", b)
		}
	}

	l.setText(colorInk)
	if err := l.pdf.Error(); err != nil {
		return CardResult{}, err
	}
	return CardResult{Height: height, FinalY: y + height}, nil
}

// FitCard shrinks card until it measures at most maxHeight. Blocks are cut
// from the last one backwards: tables lose trailing rows behind a "more rows"
// note and text loses trailing lines behind an ellipsis. ok is false when the
// card can not fit even with every block reduced.
func (l *Layout) FitCard(width, maxHeight float64, card Card) (fitted Card, ok bool, err error) {
	height, err := l.MeasureCard(width, card)
	if err != nil {
		return Card{}, false, err
	}
	if height <= maxHeight {
		return card, true, nil
	}

	inner := width - 2*cardPadding
	current := card
	current.Blocks = append([]Block(nil), card.Blocks...)
	for i := len(current.Blocks) - 1; i >= 0; i-- {
		var (
			count   int
			shorten func(n int) []Block
		)
		switch b := current.Blocks[i].(type) {
		case TableBlock:
			count, shorten = len(b.Rows), func(n int) []Block { return truncateTable(b, n) }
		case TextBlock:
			lines := l.wrap(b.Text, inner, textStyle(b), blockSize(b))
			count, shorten = len(lines), func(n int) []Block { return truncateText(b, lines, n) }
		default:
			return Card{}, false, fmt.Errorf("unsupported block %T", b)
		}
		if count == 0 {
			continue
		}

		build := func(n int) Card {
			c := current
			c.Blocks = make([]Block, 0, len(current.Blocks)+1)
			c.Blocks = append(c.Blocks, current.Blocks[:i]...)
			c.Blocks = append(c.Blocks, shorten(n)...)
			c.Blocks = append(c.Blocks, current.Blocks[i+1:]...)
			return c
		}

		// Heights grow with n, so the largest fitting n is found by bisection.
		best, lo, hi := -1, 0, count-1
		for lo <= hi {
			mid := (lo + hi) / 2
			h, err := l.MeasureCard(width, build(mid))
			if err != nil {
				return Card{}, false, err
			}
			if h <= maxHeight {
				best, lo = mid, mid+1
			} else {
				hi = mid - 1
			}
		}
		if best >= 0 {
			return build(best), true, nil
		}
		current = build(0)
	}
	return Card{}, false, nil
}

func truncateTable(t TableBlock, n int) []Block {
	hidden := len(t.Rows) - n
	t.Rows = t.Rows[:n]
	if t.Highlight > n {
		t.Highlight = 0
	}
	return []Block{t, TextBlock{Text: fmt.Sprintf("%d more rows not shown", hidden), Color: &colorMuted, Size: 8}}
}

func truncateText(b TextBlock, lines []string, n int) []Block {
	b.Text = strings.Join(append(append([]string(nil), lines[:n]...), "…"), "\n")
	return []Block{b}
}

func (l *Layout) measureBlock(width float64, b Block) (float64, error) {
	switch b := b.(type) {
	case TextBlock:
		lines := l.wrap(b.Text, width, textStyle(b), blockSize(b))
		return float64(len(lines)) * lineHeight(blockSize(b)), nil
	case TableBlock:
		return l.measureTable(width, b), nil
	default:
		return 0, fmt.Errorf("unsupported block %T", b)
	}
}

func (l *Layout) drawText(x, y, width float64, b TextBlock) float64 {
	size := blockSize(b)
	lh := lineHeight(size)
	lines := l.wrap(b.Text, width, textStyle(b), size)
	color := colorInk
	if b.Color != nil {
		color = *b.Color
	}
	l.setText(color)
	for _, line := range lines {
		l.pdf.SetXY(x, y)
		l.pdf.CellFormat(width, lh, line, "", 0, "L", false, 0, "")
		y += lh
	}
	return y
}

func (l *Layout) measureTable(width float64, t TableBlock) float64 {
	widths := columnWidths(width, t)
	height := 0.0
	if len(t.Head) > 0 {
		height += l.rowHeight(t.Head, widths, "B")
	}
	for i, row := range t.Rows {
		height += l.rowHeight(row, widths, rowStyle(t, i))
	}
	return height
}

// drawTable paints the table and returns the Y position below its last row.
func (l *Layout) drawTable(x, y, width float64, t TableBlock) float64 {
	widths := columnWidths(width, t)
	l.pdf.SetLineWidth(0.2)
	l.setDraw(colorBorder)
	if len(t.Head) > 0 {
		y = l.drawRow(x, y, t.Head, widths, "B", colorBrandDark, colorWhite)
	}
	for i, row := range t.Rows {
		fill, ink := colorCard, colorInk
		switch {
		case i+1 == t.Highlight:
			fill, ink = colorBrandLight, colorBrandDark
		case i%2 == 1:
			fill = colorStripe
		}
		y = l.drawRow(x, y, row, widths, rowStyle(t, i), fill, ink)
	}
	return y
}

func (l *Layout) drawRow(x, y float64, cells []string, widths []float64, style string, fill, ink Color) float64 {
	height := l.rowHeight(cells, widths, style)
	lh := lineHeight(tableSize)
	cx := x
	for i, w := range widths {
		l.setFill(fill)
		l.pdf.Rect(cx, y, w, height, "FD")
		l.setText(ink)
		lines := l.wrap(cell(cells, i), w, style, tableSize)
		cy := y + cellPadding
		for _, line := range lines {
			l.pdf.SetXY(cx, cy)
			l.pdf.CellFormat(w, lh, line, "", 0, "L", false, 0, "")
			cy += lh
		}
		cx += w
	}
	return y + height
}

func (l *Layout) rowHeight(cells []string, widths []float64, style string) float64 {
	maxLines := 1
	for i, w := range widths {
		if n := len(l.wrap(cell(cells, i), w, style, tableSize)); n > maxLines {
			maxLines = n
		}
	}
	return float64(maxLines)*lineHeight(tableSize) + 2*cellPadding
}

// wrap splits text into lines that fit width using the given font.
func (l *Layout) wrap(text string, width float64, style string, size float64) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	l.pdf.SetFont(l.font, style, size)
	var lines []string
	for _, paragraph := range strings.Split(clean(text), "\n") {
		split := l.pdf.SplitText(paragraph, width)
		if len(split) == 0 {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, split...)
	}
	return lines
}

// GradientBand fills a horizontal gradient from one color to another.
func (l *Layout) GradientBand(x, y, w, h float64, from, to Color) {
	l.pdf.LinearGradient(x, y, w, h, from.R, from.G, from.B, to.R, to.G, to.B, 0, 0, 1, 0)
}

func (l *Layout) setFill(c Color) { l.pdf.SetFillColor(c.R, c.G, c.B) }
func (l *Layout) setDraw(c Color) { l.pdf.SetDrawColor(c.R, c.G, c.B) }
func (l *Layout) setText(c Color) { l.pdf.SetTextColor(c.R, c.G, c.B) }

func columnWidths(width float64, t TableBlock) []float64 {
	cols := len(t.Head)
	for _, row := range t.Rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if cols == 0 {
		return nil
	}
	if len(t.Widths) == cols {
		total := 0.0
		for _, w := range t.Widths {
			total += w
		}
		if total > 0 {
			out := make([]float64, cols)
			for i, w := range t.Widths {
				out[i] = width * w / total
			}
			return out
		}
	}
	out := make([]float64, cols)
	for i := range out {
		out[i] = width / float64(cols)
	}
	return out
}

func cell(cells []string, i int) string {
	if i < len(cells) {
		return cells[i]
	}
	return ""
}

func rowStyle(t TableBlock, i int) string {
	if i+1 == t.Highlight {
		return "B"
	}
	return ""
}

func textStyle(b TextBlock) string {
	if b.Bold {
		return "B"
	}
	return ""
}

func blockSize(b TextBlock) float64 {
	if b.Size > 0 {
		return b.Size
	}
	return textSize
}
