package bot

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// UpdateSource is the inbound side of the Telegram API the poller needs.
type UpdateSource interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error)
	DeleteWebhook(ctx context.Context) error
}

// Poller drives the handler from long-polled getUpdates calls.
type Poller struct {
	api     UpdateSource
	handler *Handler
	timeout time.Duration
}

// NewPoller creates a Poller with the given long-poll timeout.
func NewPoller(api UpdateSource, handler *Handler, timeout time.Duration) *Poller {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Poller{api: api, handler: handler, timeout: timeout}
}

// Run polls until the context is cancelled. Transient API errors back off
// briefly instead of terminating the loop.
func (p *Poller) Run(ctx context.Context) error {
	if err := p.api.DeleteWebhook(ctx); err != nil {
		zap.L().Warn("bot: delete webhook before polling failed", zap.Error(err))
	}

	var offset int64
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		updates, err := p.api.GetUpdates(ctx, offset, p.timeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			zap.L().Warn("bot: getUpdates failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(3 * time.Second):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			if update.Message != nil {
				p.handler.HandleMessage(ctx, update.Message)
			}
		}
	}
}
