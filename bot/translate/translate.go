package translate

import (
	"context"
	"errors"
)

// ErrTranslation marks network faults, timeouts and non-2xx answers from the
// translation backend. The orchestrator degrades the affected image and
// keeps going.
var ErrTranslation = errors.New("translation failed")

// Translator converts source text into the configured target language.
// Empty or whitespace-only input is a no-op that must not reach the network.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}
