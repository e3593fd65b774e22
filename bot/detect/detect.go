package detect

import (
	"context"
	"errors"
	"math"

	"github.com/photolingo-project/photolingo/pkg/utils"
)

// ErrDetection marks any detector fault: the engine being unreachable,
// rejecting the image, or answering with something unparseable. Callers
// treat it as "zero fragments, degraded" and never crash on it.
var ErrDetection = errors.New("detection failed")

// Box is an axis-aligned bounding box in pixel coordinates.
type Box struct {
	XMin int
	YMin int
	XMax int
	YMax int
}

// Fragment is one detected text region. Fragments arrive in
// detector-reported order; no spatial ordering is guaranteed.
type Fragment struct {
	Text       string
	Box        Box
	Confidence float64
}

// Point is one vertex of a detection polygon.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Detector extracts text fragments from raw encoded image bytes. A detector
// may legitimately return an empty slice.
type Detector interface {
	Detect(ctx context.Context, imageBytes []byte) ([]Fragment, error)
}

// boxFromPolygon reduces a detection polygon to its axis-aligned bounding box.
func boxFromPolygon(points []Point) Box {
	return utils.Reduce(points, func(box Box, p Point) Box {
		return Box{
			XMin: min(box.XMin, p.X),
			YMin: min(box.YMin, p.Y),
			XMax: max(box.XMax, p.X),
			YMax: max(box.YMax, p.Y),
		}
	}, Box{
		XMin: math.MaxInt32,
		YMin: math.MaxInt32,
		XMax: 0,
		YMax: 0,
	})
}
