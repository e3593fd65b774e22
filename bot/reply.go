package bot

import (
	"context"
	"errors"
)

// ErrDelivery marks a transport failure while sending a reply.
var ErrDelivery = errors.New("delivery failed")

// PhotoEvent is one photo received at the chat transport boundary. GroupKey
// is empty for standalone photos and carries the transport's album
// correlation id otherwise.
type PhotoEvent struct {
	UserID     int64
	GroupKey   string
	ImageBytes []byte
}

// CommandEvent is one slash command received at the transport boundary.
type CommandEvent struct {
	UserID  int64
	Command string
}

// Kind discriminates reply payloads.
type Kind int

const (
	// KindText is a plain text reply.
	KindText Kind = iota
	// KindImageSet is an album reply of rendered images.
	KindImageSet
)

// Reply is the payload handed back to the chat transport.
type Reply struct {
	Kind   Kind
	Body   string
	Images [][]byte
}

// TextReply builds a text payload.
func TextReply(body string) Reply {
	return Reply{Kind: KindText, Body: body}
}

// ImageSetReply builds an album payload.
func ImageSetReply(images [][]byte) Reply {
	return Reply{Kind: KindImageSet, Images: images}
}

// Sink delivers replies to the chat transport. Photo replies always flow
// through the sink because grouped submissions complete asynchronously.
type Sink interface {
	Deliver(ctx context.Context, userID int64, reply Reply) error
}
