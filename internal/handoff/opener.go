package handoff

import (
	"context"
	"log/slog"
)

// Opener hands the deep link to the external channel.
// No response from the channel is awaited.
type Opener interface {
	Open(ctx context.Context, link string) error
}

// ClientOpener leaves opening to the browser: the link travels back in the receipt.
type ClientOpener struct {
	Logger *slog.Logger
}

func (o ClientOpener) Open(ctx context.Context, link string) error {
	if o.Logger != nil {
		o.Logger.DebugContext(ctx, "Handoff link returned to client", "length", len(link))
	}
	return nil
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(ctx context.Context, link string) error

func (f OpenerFunc) Open(ctx context.Context, link string) error { return f(ctx, link) }
