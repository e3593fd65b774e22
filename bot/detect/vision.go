package detect

import (
	"context"
	"fmt"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	gax "github.com/googleapis/gax-go/v2"

	"github.com/photolingo-project/photolingo/pkg/utils"
)

// Annotator is the slice of the Cloud Vision image annotator client this
// detector needs. *vision.ImageAnnotatorClient from
// cloud.google.com/go/vision/apiv1 satisfies it.
type Annotator interface {
	DetectTexts(ctx context.Context, img *visionpb.Image, ictx *visionpb.ImageContext, maxResults int, opts ...gax.CallOption) ([]*visionpb.EntityAnnotation, error)
}

// VisionDetector backs the detection boundary with Google Cloud Vision text
// detection.
type VisionDetector struct {
	annotator Annotator
}

// NewVisionDetector wraps an annotator handle created once at startup.
func NewVisionDetector(annotator Annotator) *VisionDetector {
	return &VisionDetector{annotator: annotator}
}

// Detect runs TEXT_DETECTION. The first annotation aggregates the whole
// page and is skipped; the remaining per-word annotations map onto
// fragments in the order Vision reports them.
func (d *VisionDetector) Detect(ctx context.Context, imageBytes []byte) ([]Fragment, error) {
	annotations, err := d.annotator.DetectTexts(ctx, &visionpb.Image{Content: imageBytes}, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDetection, err)
	}
	if len(annotations) == 0 {
		return nil, nil
	}

	return utils.Map(annotations[1:], func(annotation *visionpb.EntityAnnotation) Fragment {
		points := utils.Map(annotation.GetBoundingPoly().GetVertices(), func(vertex *visionpb.Vertex) Point {
			return Point{X: int(vertex.GetX()), Y: int(vertex.GetY())}
		})
		return Fragment{
			Text:       annotation.GetDescription(),
			Box:        boxFromPolygon(points),
			Confidence: float64(annotation.GetScore()),
		}
	}), nil
}
