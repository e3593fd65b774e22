package translate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/photolingo-project/photolingo/pkg/httpx"
)

// Translation is retried a couple of times on top of the initial attempt;
// it is the most likely transient failure in the pipeline.
const libreMaxRetries = 2

// LibreClient talks to a LibreTranslate-compatible endpoint. Source language
// is always auto-detected by the service.
type LibreClient struct {
	client          *httpx.Client
	url             string
	apiKey          string
	targetLang      string
	backoffDuration time.Duration
}

type libreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type libreResponse struct {
	TranslatedText string `json:"translatedText"`
}

// NewLibreClient creates a client for the service at url. The API key may be
// empty for keyless deployments.
func NewLibreClient(url string, apiKey string, targetLang string, timeout time.Duration) *LibreClient {
	return &LibreClient{
		client:          httpx.New(timeout),
		url:             strings.TrimRight(url, "/"),
		apiKey:          apiKey,
		targetLang:      targetLang,
		backoffDuration: time.Second / 2,
	}
}

// Translate posts the text for translation. Whitespace-only input returns
// the empty string without any network call.
func (c *LibreClient) Translate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	payload := libreRequest{
		Q:      text,
		Source: "auto",
		Target: c.targetLang,
		Format: "text",
		APIKey: c.apiKey,
	}

	translated, err := backoff.RetryWithData(func() (string, error) {
		var response libreResponse
		if err := c.client.PostJSON(ctx, c.url+"/translate", payload, &response); err != nil {
			return "", err
		}
		return response.TranslatedText, nil
	}, backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(c.backoffDuration), libreMaxRetries), ctx))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranslation, err)
	}
	return translated, nil
}
