package layout

import (
	"math"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/photolingo-project/photolingo/pkg/utils"
)

// Result is a wrapped text block and the pixel box needed to draw it with
// the spacing it was measured at. Recomputed on every render; never cached.
type Result struct {
	Lines  []string
	Width  int
	Height int
}

// Wrapped returns the block with embedded line breaks.
func (r Result) Wrapped() string {
	return utils.Join(r.Lines, "\n")
}

// Empty reports whether there is anything to draw.
func (r Result) Empty() bool {
	return len(r.Lines) == 0
}

// Wrap splits text on whitespace and greedily packs words into lines whose
// measured width stays within maxWidth. A single whitespace-free token comes
// back as one line even when it overflows; scripts without word spacing are
// painted as-is rather than broken mid-glyph. Pure function of its inputs.
func Wrap(text string, face font.Face, maxWidth float64, lineSpacing float64) Result {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Result{}
	}

	measurer := gg.NewContext(1, 1)
	measurer.SetFontFace(face)

	words := strings.Fields(trimmed)
	var lines []string
	if len(words) == 1 {
		lines = []string{trimmed}
	} else {
		current := ""
		for _, word := range words {
			candidate := strings.TrimSpace(current + " " + word)
			if width, _ := measurer.MeasureString(candidate); width <= maxWidth {
				current = candidate
				continue
			}
			if current != "" {
				lines = append(lines, current)
			}
			current = word
		}
		if current != "" {
			lines = append(lines, current)
		}
	}

	maxLineWidth := 0.0
	for _, line := range lines {
		width, _ := measurer.MeasureString(line)
		maxLineWidth = math.Max(maxLineWidth, width)
	}
	lineHeight := measurer.FontHeight()
	height := lineHeight*float64(len(lines)) + lineSpacing*float64(len(lines)-1)

	return Result{
		Lines:  lines,
		Width:  int(math.Ceil(maxLineWidth)),
		Height: int(math.Ceil(height)),
	}
}
