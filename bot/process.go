package bot

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/photolingo-project/photolingo/bot/detect"
	"github.com/photolingo-project/photolingo/bot/layout"
	"github.com/photolingo-project/photolingo/pkg/utils"
)

// outcome is the explicit per-image result inspected by the reply assembly:
// a failed image records its error and never aborts its siblings.
type outcome struct {
	translated string
	rendered   []byte
	err        error
}

func (o outcome) failed() bool {
	return o.err != nil
}

// processAndDeliver runs the pipeline over one released batch and sends the
// assembled replies through the sink.
func (b *Bot) processAndDeliver(ctx context.Context, userID int64, images [][]byte) error {
	mode := b.prefs.Get(userID)

	outcomes := make([]outcome, 0, len(images))
	for _, imageBytes := range images {
		outcomes = append(outcomes, b.processImage(ctx, imageBytes, mode))
	}

	for _, reply := range b.assembleReplies(mode, outcomes) {
		if err := b.sink.Deliver(ctx, userID, reply); err != nil {
			return fmt.Errorf("%w: %v", ErrDelivery, err)
		}
	}
	return nil
}

// processImage runs detect → merge → translate → (layout → compose) for a
// single image. Detection faults degrade to zero fragments; the error is
// kept on the outcome so the reply can carry a note.
func (b *Bot) processImage(ctx context.Context, imageBytes []byte, mode Mode) outcome {
	var result outcome

	detectCtx, cancel := context.WithTimeout(ctx, adapterTimeout)
	fragments, err := b.detector.Detect(detectCtx, imageBytes)
	cancel()
	if err != nil {
		b.logger.Warn("detection failed, continuing with no fragments", zap.Error(err))
		result.err = err
		fragments = nil
	}

	sourceText := utils.Join(utils.Filter(utils.Map(fragments, func(fragment detect.Fragment) string {
		return fragment.Text
	}), func(text string) bool {
		return strings.TrimSpace(text) != ""
	}), "\n")

	translateCtx, cancel := context.WithTimeout(ctx, adapterTimeout)
	translated, err := b.translator.Translate(translateCtx, sourceText)
	cancel()
	if err != nil {
		b.logger.Warn("translation failed", zap.Error(err))
		result.err = err
		translated = ""
	}
	result.translated = strings.TrimSpace(translated)

	if mode != ModeImage {
		return result
	}

	canvas, err := b.compositor.Prepare(imageBytes)
	if err != nil {
		b.logger.Warn("image decode failed", zap.Error(err))
		result.err = err
		return result
	}

	face := b.fonts.NewFace()
	block := layout.Wrap(result.translated, face, b.compositor.DrawWidth(canvas), b.lineSpacing)
	rendered, err := b.compositor.Compose(canvas, block, face)
	if err != nil {
		b.logger.Warn("image composition failed", zap.Error(err))
		result.err = err
		return result
	}
	result.rendered = rendered
	return result
}

// assembleReplies folds per-image outcomes into the transport payloads.
func (b *Bot) assembleReplies(mode Mode, outcomes []outcome) []Reply {
	if mode == ModeText {
		return []Reply{b.textReply(outcomes)}
	}
	return b.imageReplies(outcomes)
}

func (b *Bot) textReply(outcomes []outcome) Reply {
	blocks := utils.Map(outcomes, func(o outcome) string {
		if o.translated != "" {
			return o.translated
		}
		if o.failed() {
			return failureNote
		}
		return noTextFound
	})

	combined := utils.Join(blocks, textSeparator)
	if runes := []rune(combined); len(runes) > maxTextReplyLen {
		combined = string(runes[:maxTextReplyLen])
	}
	if combined == "" {
		combined = emptyReply
	}
	return TextReply(combined)
}

func (b *Bot) imageReplies(outcomes []outcome) []Reply {
	rendered := utils.Map(utils.Filter(outcomes, func(o outcome) bool {
		return o.rendered != nil
	}), func(o outcome) []byte {
		return o.rendered
	})

	failures := len(utils.Filter(outcomes, outcome.failed))
	if len(rendered) == 0 {
		return []Reply{TextReply(allFailedMsg)}
	}

	if len(rendered) > maxAlbumItems {
		b.logger.Warn("album reply over transport limit, dropping excess",
			zap.Int("rendered", len(rendered)),
			zap.Int("limit", maxAlbumItems))
		rendered = rendered[:maxAlbumItems]
	}

	replies := []Reply{ImageSetReply(rendered)}
	if failures > 0 {
		replies = append(replies, TextReply(failureNote))
	}
	return replies
}
