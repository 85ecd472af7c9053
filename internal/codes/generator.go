// Package codes rasterizes tracking identifiers into QR and Code128 PNG images.
// A failed encoding never aborts a document: the generator logs it and returns
// nil, and callers render the page without the image.
package codes

import (
	"bytes"
	"errors"
	"image"
	"image/draw"
	"image/png"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/qr"
	"github.com/rs/zerolog"
)

// EncodeFunc turns data into a raster image.
type EncodeFunc func(data string) (image.Image, error)

var errEmptyData = errors.New("empty data")

type Generator struct {
	log           zerolog.Logger
	qrSize        int
	barcodeWidth  int
	barcodeHeight int
	qrEncode      EncodeFunc
	barcodeEncode EncodeFunc
}

type Option func(*Generator)

func WithQREncoder(fn EncodeFunc) Option {
	return func(g *Generator) {
		g.qrEncode = fn
	}
}

func WithBarcodeEncoder(fn EncodeFunc) Option {
	return func(g *Generator) {
		g.barcodeEncode = fn
	}
}

// WithQRSize sets the edge length of QR images in pixels.
func WithQRSize(px int) Option {
	return func(g *Generator) {
		if px > 0 {
			g.qrSize = px
		}
	}
}

func NewGenerator(log zerolog.Logger, opts ...Option) *Generator {
	g := &Generator{
		log:           log,
		qrSize:        256,
		barcodeWidth:  600,
		barcodeHeight: 120,
	}
	g.qrEncode = g.encodeQR
	g.barcodeEncode = g.encodeCode128
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// QRCodePNG returns PNG bytes of a QR code, or nil when encoding fails.
func (g *Generator) QRCodePNG(data string) []byte {
	return g.render("qr", data, g.qrEncode)
}

// BarcodePNG returns PNG bytes of a Code128 barcode, or nil when encoding fails.
func (g *Generator) BarcodePNG(data string) []byte {
	return g.render("code128", data, g.barcodeEncode)
}

func (g *Generator) render(kind, data string, encode EncodeFunc) []byte {
	if strings.TrimSpace(data) == "" {
		g.log.Warn().Str("kind", kind).Err(errEmptyData).Msg("code generation skipped")
		return nil
	}
	img, err := encode(data)
	if err != nil {
		g.log.Warn().Str("kind", kind).Err(err).Msg("code generation failed")
		return nil
	}
	if img == nil {
		g.log.Warn().Str("kind", kind).Msg("code generation returned no image")
		return nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, toGray8(img)); err != nil {
		g.log.Warn().Str("kind", kind).Err(err).Msg("png encoding failed")
		return nil
	}
	return buf.Bytes()
}

func (g *Generator) encodeQR(data string) (image.Image, error) {
	code, err := qr.Encode(data, qr.M, qr.Auto)
	if err != nil {
		return nil, err
	}
	return barcode.Scale(code, g.qrSize, g.qrSize)
}

func (g *Generator) encodeCode128(data string) (image.Image, error) {
	code, err := code128.Encode(data)
	if err != nil {
		return nil, err
	}
	return barcode.Scale(code, g.barcodeWidth, g.barcodeHeight)
}

// toGray8 redraws img as an 8-bit grayscale image. barcode.Scale yields 16-bit
// gray, which PDF writers do not accept as PNG input.
func toGray8(img image.Image) *image.Gray {
	if gray, ok := img.(*image.Gray); ok {
		return gray
	}
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	draw.Draw(gray, bounds, img, bounds.Min, draw.Src)
	return gray
}
