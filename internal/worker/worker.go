// Package worker runs a parse as a one-shot request/response exchange: the
// caller submits raw text with a correlation id, the worker replies exactly
// once with the full result or a structured error, and is then gone. There is
// no pool; each import gets a fresh worker.
package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vishnutej000/Memories-sub001/internal/chatparse"
	"github.com/vishnutej000/Memories-sub001/internal/core"
	"github.com/vishnutej000/Memories-sub001/internal/sentiment"
)

// ErrorKind classifies terminal worker failures.
type ErrorKind string

const (
	KindCanceled ErrorKind = "canceled"
	KindChannel  ErrorKind = "worker_communication_failure"
)

// Error is the single terminal error shape surfaced across the worker
// boundary.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Request is one parse job.
type Request struct {
	CorrelationID string
	Text          string
	Opts          chatparse.Options
	// ScoreSentiment runs the sentiment pass on the assembled messages
	// before replying.
	ScoreSentiment bool
}

// Response carries the result back with the request's correlation id. Exactly
// one of Chat/Err is meaningful; a partial chat is never paired with an error.
type Response struct {
	CorrelationID string
	Chat          core.ParsedChat
	Err           *Error
}

// NewCorrelationID mints a request id.
func NewCorrelationID() string {
	return uuid.NewString()
}

// Submit spawns the worker and returns its reply channel. The channel
// receives exactly one Response and is then closed; cancellation of ctx
// surfaces as a canceled Response rather than a silent drop.
func Submit(ctx context.Context, req Request) <-chan Response {
	if req.CorrelationID == "" {
		req.CorrelationID = NewCorrelationID()
	}
	replies := make(chan Response, 1)

	go func() {
		defer close(replies)

		chat, err := chatparse.Parse(ctx, req.Text, req.Opts)
		if err != nil {
			replies <- Response{
				CorrelationID: req.CorrelationID,
				Err:           &Error{Kind: KindCanceled, Message: err.Error()},
			}
			return
		}
		if req.ScoreSentiment {
			chat.Messages = sentiment.ScoreAll(chat.Messages)
		}
		replies <- Response{CorrelationID: req.CorrelationID, Chat: chat}
	}()

	return replies
}

// Await blocks for the worker's single reply. A closed channel without a
// reply, a correlation mismatch, or ctx expiring first all surface as a
// channel-level failure; the caller decides whether to retry in-process.
func Await(ctx context.Context, correlationID string, replies <-chan Response) (core.ParsedChat, error) {
	select {
	case <-ctx.Done():
		return core.ParsedChat{}, &Error{Kind: KindChannel, Message: "timed out awaiting worker reply: " + ctx.Err().Error()}
	case resp, ok := <-replies:
		if !ok {
			return core.ParsedChat{}, &Error{Kind: KindChannel, Message: "worker terminated without replying"}
		}
		if resp.CorrelationID != correlationID {
			return core.ParsedChat{}, &Error{Kind: KindChannel, Message: "correlation id mismatch"}
		}
		if resp.Err != nil {
			return core.ParsedChat{}, resp.Err
		}
		return resp.Chat, nil
	}
}

// Do is the synchronous convenience wrapper: submit, await, return.
func Do(ctx context.Context, text string, opts chatparse.Options, score bool) (core.ParsedChat, error) {
	req := Request{
		CorrelationID:  NewCorrelationID(),
		Text:           text,
		Opts:           opts,
		ScoreSentiment: score,
	}
	return Await(ctx, req.CorrelationID, Submit(ctx, req))
}

// IsCanceled reports whether err is a cooperative-cancellation outcome.
func IsCanceled(err error) bool {
	var werr *Error
	if errors.As(err, &werr) {
		return werr.Kind == KindCanceled
	}
	return false
}
