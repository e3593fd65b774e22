package main

import (
	"context"
	"time"

	vision "cloud.google.com/go/vision/apiv1"
	"github.com/ridge/must/v2"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/photolingo-project/photolingo/bot"
	"github.com/photolingo-project/photolingo/bot/detect"
	"github.com/photolingo-project/photolingo/bot/font"
	"github.com/photolingo-project/photolingo/bot/render"
	"github.com/photolingo-project/photolingo/bot/translate"
	"github.com/photolingo-project/photolingo/pkg/env"
	"github.com/photolingo-project/photolingo/pkg/httpx"
)

func main() {
	env.Load()

	logger := must.OK1(zap.NewProduction())
	defer logger.Sync()

	fonts := must.OK1(font.New(
		env.StringVariable("FONT_PATH", "/usr/share/fonts/truetype/noto/NotoSansKhmer-Regular.ttf"),
		float64(env.IntVariable("FONT_SIZE", 36)),
	))

	ctx := context.Background()
	targetLang := env.StringVariable("TARGET_LANG", "km")

	var translator translate.Translator
	switch backend := env.StringVariable("TRANSLATOR", "libre"); backend {
	case "openai":
		translator = translate.NewOpenAIClient(openai.NewClient(env.RequiredStringVariable("OPENAI_API_KEY")), targetLang)
	case "libre":
		translator = translate.NewLibreClient(
			env.StringVariable("LIBRETRANSLATE_URL", "https://libretranslate.com"),
			env.StringVariable("LIBRETRANSLATE_API_KEY", ""),
			targetLang,
			httpx.DefaultTimeout,
		)
	default:
		logger.Fatal("unknown TRANSLATOR backend", zap.String("backend", backend))
	}

	var detector detect.Detector
	switch backend := env.StringVariable("DETECTOR", "http"); backend {
	case "vision":
		annotator := must.OK1(vision.NewImageAnnotatorClient(ctx))
		defer annotator.Close()
		detector = detect.NewVisionDetector(annotator)
	case "http":
		detector = detect.NewHTTPDetector(env.RequiredStringVariable("OCR_URL"), httpx.DefaultTimeout)
	default:
		logger.Fatal("unknown DETECTOR backend", zap.String("backend", backend))
	}

	padding := env.IntVariable("PANEL_PADDING", 24)
	lineSpacing := float64(env.IntVariable("LINE_SPACING", 8))
	compositor := render.New(render.Config{
		MaxWidth:    env.IntVariable("MAX_IMAGE_WIDTH", 1800),
		Margin:      padding,
		Padding:     padding,
		LineSpacing: lineSpacing,
		JPEGQuality: env.IntVariable("JPEG_QUALITY", 92),
	})

	sink := newWebhookSink(env.StringVariable("REPLY_WEBHOOK_URL", ""), logger)

	core := bot.New(
		detector,
		translator,
		compositor,
		fonts,
		bot.NewMemoryPrefs(),
		sink,
		env.SecondsVariable("ALBUM_QUIET_SECONDS", 3*time.Second),
		lineSpacing,
		logger,
	)

	runServer(core, env.IntVariable("HTTP_PORT", 8080), logger)
}
