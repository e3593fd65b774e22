package font

import (
	"fmt"
	"os"

	"github.com/golang/freetype/truetype"
	xfont "golang.org/x/image/font"
)

// Provider holds the caption typeface used for drawing translated text.
// The panel uses a single face and size, so unlike a full per-language font
// catalog this provider carries exactly one parsed font.
type Provider struct {
	font *truetype.Font
	size float64
}

// New parses the TTF file at path and returns a provider producing faces at
// the given point size.
func New(path string, size float64) (*Provider, error) {
	fontBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	parsed, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font file %s: %w", path, err)
	}
	return FromFont(parsed, size), nil
}

// FromFont wraps an already-parsed font. Used by tests with embedded fonts.
func FromFont(f *truetype.Font, size float64) *Provider {
	return &Provider{font: f, size: size}
}

// NewFace returns a fresh face for one rendering pass. truetype faces are
// not safe for concurrent use, so each pipeline invocation takes its own.
func (p *Provider) NewFace() xfont.Face {
	return truetype.NewFace(p.font, &truetype.Options{Size: p.size})
}

// Size returns the configured point size.
func (p *Provider) Size() float64 {
	return p.size
}
