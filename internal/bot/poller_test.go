package bot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUpdateSource struct {
	batches [][]Update
	offsets []int64
	cancel  context.CancelFunc
}

func (f *fakeUpdateSource) DeleteWebhook(ctx context.Context) error { return nil }

func (f *fakeUpdateSource) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	f.offsets = append(f.offsets, offset)
	if len(f.batches) == 0 {
		f.cancel()
		return nil, ctx.Err()
	}
	batch := f.batches[0]
	f.batches = f.batches[1:]
	return batch, nil
}

func TestPollerAdvancesOffsetAndDispatches(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &fakeUpdateSource{
		batches: [][]Update{
			{
				{UpdateID: 10, Message: message(100, "/start")},
				{UpdateID: 11, Message: message(100, "/recent")},
			},
		},
		cancel: cancel,
	}

	api := &fakeMessenger{}
	handler := newTestHandler(api, fakeResolver{}, &fakeStore{})

	p := NewPoller(src, handler, time.Second)
	err := p.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	// First poll from zero, second poll past the last seen update.
	require.GreaterOrEqual(t, len(src.offsets), 2)
	assert.Equal(t, int64(0), src.offsets[0])
	assert.Equal(t, int64(12), src.offsets[1])

	// Both messages reached the handler.
	assert.Len(t, api.sent(), 2)
}
