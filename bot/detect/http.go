package detect

import (
	"context"
	"fmt"
	"time"

	"github.com/photolingo-project/photolingo/pkg/httpx"
	"github.com/photolingo-project/photolingo/pkg/utils"
)

// HTTPDetector calls an OCR sidecar over HTTP. The sidecar receives the raw
// image bytes and answers with a JSON list of polygon/text/confidence
// entries.
type HTTPDetector struct {
	client *httpx.Client
	url    string
}

type ocrEntry struct {
	Polygon    []Point `json:"polygon"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// NewHTTPDetector creates a detector posting to url with the given
// per-request timeout.
func NewHTTPDetector(url string, timeout time.Duration) *HTTPDetector {
	return &HTTPDetector{
		client: httpx.New(timeout),
		url:    url,
	}
}

// Detect posts the image and reduces each returned polygon to an
// axis-aligned bounding box, preserving the sidecar's reported order.
func (d *HTTPDetector) Detect(ctx context.Context, imageBytes []byte) ([]Fragment, error) {
	var entries []ocrEntry
	if err := d.client.PostBytes(ctx, d.url, "application/octet-stream", imageBytes, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDetection, err)
	}

	return utils.Map(entries, func(entry ocrEntry) Fragment {
		return Fragment{
			Text:       entry.Text,
			Box:        boxFromPolygon(entry.Polygon),
			Confidence: entry.Confidence,
		}
	}), nil
}
