package bot

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/photolingo-project/photolingo/bot/batch"
	"github.com/photolingo-project/photolingo/bot/detect"
	"github.com/photolingo-project/photolingo/bot/font"
	"github.com/photolingo-project/photolingo/bot/render"
	"github.com/photolingo-project/photolingo/bot/translate"
)

const (
	helpText = "👋 សួស្តី! ផ្ញើរូបភាព (ឬ album រូបភាព) មកខ្ញុំ\n" +
		"ខ្ញុំនឹង OCR (EN/ZH/ID/KR) ហើយបកប្រែជាខ្មែរ 📝→ បន្តក់ជាលើរូប\n\n" +
		"Commands:\n" +
		"/start - ស្វាគមន៍\n" +
		"/help - ព័ត៌មានប្រើប្រាស់\n" +
		"/text - បង្ហាញលទ្ធផលជាអត្ថបទ (មិនសរសេរលើរូប)\n" +
		"/image - បង្ហាញលទ្ធផលជារូប (លំនាំដើម)\n"

	welcomeText  = "សូមស្វាគមន៍! 🎉 " + helpText
	textModeAck  = "របៀបបង្ហាញលទ្ធផល: 📝 អត្ថបទ"
	imageModeAck = "របៀបបង្ហាញលទ្ធផល: 🖼️ រូបភាព"

	noTextFound  = "(មិនមានអត្ថបទ)"
	emptyReply   = "(ទទេ)"
	failureNote  = "⚠️ មានបញ្ហាក្នុងការបកប្រែរូបភាពមួយចំនួន"
	allFailedMsg = "⚠️ មិនអាចបកប្រែរូបភាពបានទេ សូមព្យាយាមម្ដងទៀត"
)

const (
	// Per-image text blocks are joined with this separator in text mode.
	textSeparator = "\n\n—\n\n"
	// Combined text replies are capped at this many characters.
	maxTextReplyLen = 4000
	// The transport caps album replies at this many items.
	maxAlbumItems = 10
	// Bound on each external adapter call.
	adapterTimeout = 30 * time.Second
)

// Bot ties the detector, translator, layout and compositor into the photo
// translation pipeline and owns the album collector.
type Bot struct {
	detector    detect.Detector
	translator  translate.Translator
	compositor  *render.Compositor
	fonts       *font.Provider
	prefs       PrefStore
	sink        Sink
	collector   *batch.Collector
	lineSpacing float64
	logger      *zap.Logger

	// ownerMu guards owners: the user that opened each in-flight group,
	// needed to address the reply once the group is released.
	ownerMu sync.Mutex
	owners  map[string]int64
}

// New wires the pipeline. quietPeriod is the album inactivity window after
// which a group is released for processing.
func New(
	detector detect.Detector,
	translator translate.Translator,
	compositor *render.Compositor,
	fonts *font.Provider,
	prefs PrefStore,
	sink Sink,
	quietPeriod time.Duration,
	lineSpacing float64,
	logger *zap.Logger,
) *Bot {
	b := &Bot{
		detector:    detector,
		translator:  translator,
		compositor:  compositor,
		fonts:       fonts,
		prefs:       prefs,
		sink:        sink,
		lineSpacing: lineSpacing,
		logger:      logger,
		owners:      make(map[string]int64),
	}
	b.collector = batch.NewCollector(quietPeriod, batch.WithRelease(b.onRelease))
	return b
}

// OnCommand handles a slash command and returns the reply synchronously.
func (b *Bot) OnCommand(ctx context.Context, event CommandEvent) Reply {
	switch strings.TrimSpace(event.Command) {
	case "/start":
		return TextReply(welcomeText)
	case "/text":
		b.prefs.Set(event.UserID, ModeText)
		return TextReply(textModeAck)
	case "/image":
		b.prefs.Set(event.UserID, ModeImage)
		return TextReply(imageModeAck)
	default:
		return TextReply(helpText)
	}
}

// OnPhoto handles one inbound photo. Standalone photos are processed
// immediately; grouped photos are buffered until their group's quiet period
// elapses. Replies are delivered through the sink in both cases.
func (b *Bot) OnPhoto(ctx context.Context, event PhotoEvent) error {
	if event.GroupKey == "" {
		return b.processAndDeliver(ctx, event.UserID, [][]byte{event.ImageBytes})
	}

	b.ownerMu.Lock()
	if _, ok := b.owners[event.GroupKey]; !ok {
		b.owners[event.GroupKey] = event.UserID
	}
	b.ownerMu.Unlock()

	b.collector.Add(event.GroupKey, event.ImageBytes)
	return nil
}

// onRelease runs on the collector's debounce goroutine once a group goes
// quiet. The originating request contexts are long gone, so processing runs
// under a fresh background context; a failed delivery here is logged and
// dropped, which leaves the collector clean.
func (b *Bot) onRelease(released batch.Released) {
	b.ownerMu.Lock()
	userID, ok := b.owners[released.GroupKey]
	delete(b.owners, released.GroupKey)
	b.ownerMu.Unlock()
	if !ok {
		b.logger.Warn("released group has no owner", zap.String("groupKey", released.GroupKey))
		return
	}

	if err := b.processAndDeliver(context.Background(), userID, released.Items); err != nil {
		b.logger.Error("failed to deliver album reply",
			zap.String("groupKey", released.GroupKey),
			zap.Int64("userID", userID),
			zap.Error(err))
	}
}
