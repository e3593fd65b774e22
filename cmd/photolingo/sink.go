package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/photolingo-project/photolingo/bot"
	"github.com/photolingo-project/photolingo/pkg/httpx"
)

// webhookSink forwards replies to the chat transport's callback endpoint.
// With no URL configured it degrades to logging, which keeps local runs
// usable without a transport.
type webhookSink struct {
	client *httpx.Client
	url    string
	logger *zap.Logger
}

type webhookPayload struct {
	UserID int64    `json:"userId"`
	Kind   string   `json:"kind"`
	Body   string   `json:"body,omitempty"`
	Images [][]byte `json:"images,omitempty"`
}

func newWebhookSink(url string, logger *zap.Logger) *webhookSink {
	return &webhookSink{
		client: httpx.New(httpx.DefaultTimeout),
		url:    url,
		logger: logger,
	}
}

func (s *webhookSink) Deliver(ctx context.Context, userID int64, reply bot.Reply) error {
	if s.url == "" {
		s.logger.Info("reply (no webhook configured)",
			zap.Int64("userID", userID),
			zap.String("body", reply.Body),
			zap.Int("images", len(reply.Images)))
		return nil
	}

	payload := webhookPayload{UserID: userID, Kind: "text", Body: reply.Body}
	if reply.Kind == bot.KindImageSet {
		payload.Kind = "imageSet"
		payload.Images = reply.Images
	}
	return s.client.PostJSON(ctx, s.url, payload, nil)
}
