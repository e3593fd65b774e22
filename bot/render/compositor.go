package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	_ "golang.org/x/image/webp"

	"github.com/photolingo-project/photolingo/bot/layout"
)

// ErrDecode marks image bytes the compositor cannot read.
var ErrDecode = errors.New("unreadable image bytes")

const (
	panelAlpha  = 160.0 / 255.0
	borderAlpha = 128.0 / 255.0
	borderWidth = 2.0
)

// Config controls the downscale bound and the caption panel geometry.
type Config struct {
	// MaxWidth is the upper bound on output width; wider images are
	// downscaled preserving aspect ratio.
	MaxWidth int
	// Margin insets the panel from the left, right and bottom edges.
	Margin int
	// Padding surrounds the text block inside the panel.
	Padding int
	// LineSpacing is the extra pixels between wrapped lines.
	LineSpacing float64
	// JPEGQuality is the re-encode quality, 1-100.
	JPEGQuality int
}

// Compositor paints a laid-out translation onto images.
type Compositor struct {
	config Config
}

// New creates a compositor with the given config.
func New(config Config) *Compositor {
	return &Compositor{config: config}
}

// Canvas is a decoded, size-bounded image ready for panel drawing.
type Canvas struct {
	img *image.NRGBA
}

// Width returns the canvas width after the bounding pass.
func (c *Canvas) Width() int {
	return c.img.Bounds().Dx()
}

// Height returns the canvas height after the bounding pass.
func (c *Canvas) Height() int {
	return c.img.Bounds().Dy()
}

// Prepare decodes imageBytes into a fixed color model and downscales it with
// a Lanczos filter when it exceeds the configured max width.
func (c *Compositor) Prepare(imageBytes []byte) (*Canvas, error) {
	decoded, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	img := imaging.Clone(decoded)
	if img.Bounds().Dx() > c.config.MaxWidth {
		img = imaging.Resize(img, c.config.MaxWidth, 0, imaging.Lanczos)
	}
	return &Canvas{img: img}, nil
}

// DrawWidth returns the width available to the text layout on this canvas:
// the panel inset by its margin, minus the inner padding on both sides.
func (c *Compositor) DrawWidth(canvas *Canvas) float64 {
	return float64(canvas.Width() - 2*c.config.Margin - 2*c.config.Padding)
}

// Compose paints the wrapped block onto the canvas and re-encodes it. An
// empty block re-encodes the canvas unchanged. The panel is anchored to the
// bottom edge and may crop against it when the block is taller than the
// image; long-text truncation is a caller policy, not performed here.
func (c *Compositor) Compose(canvas *Canvas, block layout.Result, face font.Face) ([]byte, error) {
	if block.Empty() {
		return c.encode(canvas.img)
	}

	width := canvas.Width()
	height := canvas.Height()
	margin := float64(c.config.Margin)
	padding := float64(c.config.Padding)

	panelWidth := float64(width) - 2*margin
	panelHeight := float64(block.Height) + 2*padding
	panelY := float64(height) - panelHeight - margin

	dc := gg.NewContextForImage(canvas.img)

	textColor := captionColor(canvas.img, int(panelY))

	dc.SetRGBA(0, 0, 0, panelAlpha)
	dc.DrawRectangle(margin, panelY, panelWidth, panelHeight)
	dc.Fill()
	dc.SetRGBA(1, 1, 1, borderAlpha)
	dc.SetLineWidth(borderWidth)
	dc.DrawRectangle(margin, panelY, panelWidth, panelHeight)
	dc.Stroke()

	dc.SetFontFace(face)
	dc.SetColor(textColor)
	lineHeight := dc.FontHeight()
	textX := margin + padding
	textY := panelY + padding
	for i, line := range block.Lines {
		dc.DrawStringAnchored(line, textX, textY+float64(i)*(lineHeight+c.config.LineSpacing), 0, 1)
	}

	return c.encode(imaging.Clone(dc.Image()))
}

func (c *Compositor) encode(img *image.NRGBA) ([]byte, error) {
	var buffer bytes.Buffer
	if err := jpeg.Encode(&buffer, img, &jpeg.Options{Quality: c.config.JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buffer.Bytes(), nil
}

// captionColor picks black or white for the caption, whichever contrasts
// better with the panel: the sampled background under the panel blended
// with the panel's translucent fill.
func captionColor(img *image.NRGBA, panelTop int) colorful.Color {
	bounds := img.Bounds()
	if panelTop < bounds.Min.Y {
		panelTop = bounds.Min.Y
	}

	var r, g, b, n float64
	for y := panelTop; y < bounds.Max.Y; y += 8 {
		for x := bounds.Min.X; x < bounds.Max.X; x += 8 {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			r += float64(cr) / 65535
			g += float64(cg) / 65535
			b += float64(cb) / 65535
			n++
		}
	}
	if n == 0 {
		return colorful.Color{R: 1, G: 1, B: 1}
	}

	background := colorful.Color{R: r / n, G: g / n, B: b / n}
	blended := background.BlendRgb(colorful.Color{R: 0, G: 0, B: 0}, panelAlpha)
	if _, _, l := blended.Hsl(); l > 0.5 {
		return colorful.Color{R: 0, G: 0, B: 0}
	}
	return colorful.Color{R: 1, G: 1, B: 1}
}
