package bot

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milldrew/journeylog/internal/maplink"
	"github.com/milldrew/journeylog/internal/model"
	"github.com/milldrew/journeylog/internal/resolver"
	"github.com/milldrew/journeylog/internal/store"
)

type fakeMessenger struct {
	mu        sync.Mutex
	messages  []string
	documents []string
}

func (f *fakeMessenger) SendMessage(ctx context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, text)
	return nil
}

func (f *fakeMessenger) SendDocument(ctx context.Context, chatID int64, filename string, contents io.Reader) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.documents = append(f.documents, filename)
	return nil
}

func (f *fakeMessenger) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.messages...)
}

type fakeResolver struct {
	rec *model.JourneyRecord
	err error
}

func (f fakeResolver) Resolve(ctx context.Context, link string) (*model.JourneyRecord, error) {
	return f.rec, f.err
}

type fakeStore struct {
	rows     []model.JourneyRow
	appended []model.JourneyRow
}

func (f *fakeStore) AppendJourney(ctx context.Context, row model.JourneyRow) (model.JourneyRow, error) {
	row.ID = "test-id"
	f.appended = append(f.appended, row)
	return row, nil
}

func (f *fakeStore) MostRecentForDay(ctx context.Context, day time.Time) (*model.JourneyRow, error) {
	return nil, nil
}

func (f *fakeStore) ListJourneys(ctx context.Context, limit int) ([]model.JourneyRow, error) {
	if limit > 0 && limit < len(f.rows) {
		return f.rows[:limit], nil
	}
	return f.rows, nil
}

func (f *fakeStore) Migrate(ctx context.Context) error { return nil }
func (f *fakeStore) Close() error                      { return nil }

var _ store.Store = (*fakeStore)(nil)

func message(chatID int64, text string) *Message {
	return &Message{Chat: Chat{ID: chatID}, Text: text}
}

func newTestHandler(api Messenger, res JourneyResolver, st store.Store) *Handler {
	return NewHandler(HandlerOptions{
		API:            api,
		Resolver:       res,
		Store:          st,
		AllowedChatIDs: []int64{100},
		Now:            func() time.Time { return time.Date(2026, time.March, 5, 9, 0, 0, 0, time.UTC) },
	})
}

func TestHandleMessageUnauthorizedSilentlyDropped(t *testing.T) {
	api := &fakeMessenger{}
	h := newTestHandler(api, fakeResolver{}, &fakeStore{})

	h.HandleMessage(context.Background(), message(999, "https://maps.app.goo.gl/abc"))
	assert.Empty(t, api.messages)
}

func TestHandleMessageLogsJourney(t *testing.T) {
	miles := 8.25
	rec := &model.JourneyRecord{
		Origin:        model.LocationInfo{Town: "Belfast", Postcode: "BT5 6GJ"},
		Destination:   model.LocationInfo{Town: "Comber", Postcode: "BT23 5AB"},
		Visit:         model.VisitGeneric,
		DistanceMiles: &miles,
	}
	api := &fakeMessenger{}
	st := &fakeStore{}
	h := newTestHandler(api, fakeResolver{rec: rec}, st)

	h.HandleMessage(context.Background(), message(100, "https://maps.app.goo.gl/abc some note"))

	require.Len(t, st.appended, 1)
	assert.Equal(t, "https://maps.app.goo.gl/abc", st.appended[0].SourceLink)
	assert.Equal(t, "some note", st.appended[0].Note)

	require.Len(t, api.messages, 1)
	assert.Contains(t, api.messages[0], "Journey logged")
	assert.Contains(t, api.messages[0], "Comber, BT23 5AB")
	assert.Contains(t, api.messages[0], "8.25 miles")
}

func TestHandleMessageUnsupportedLink(t *testing.T) {
	api := &fakeMessenger{}
	st := &fakeStore{}
	h := newTestHandler(api, fakeResolver{err: maplink.ErrUnsupportedLink}, st)

	h.HandleMessage(context.Background(), message(100, "hello"))

	assert.Empty(t, st.appended)
	require.Len(t, api.messages, 1)
	assert.Contains(t, api.messages[0], "doesn't look like a map link")
}

func TestHandleMessageResolutionFailed(t *testing.T) {
	api := &fakeMessenger{}
	h := newTestHandler(api, fakeResolver{err: resolver.ErrResolutionFailed}, &fakeStore{})

	h.HandleMessage(context.Background(), message(100, "https://maps.app.goo.gl/abc"))

	require.Len(t, api.messages, 1)
	assert.Contains(t, api.messages[0], "Nothing was logged")
}

func TestHandleMessageHelp(t *testing.T) {
	api := &fakeMessenger{}
	h := newTestHandler(api, fakeResolver{}, &fakeStore{})

	h.HandleMessage(context.Background(), message(100, "/start"))

	require.Len(t, api.messages, 1)
	assert.Contains(t, api.messages[0], "/recent")
}

func TestHandleRecent(t *testing.T) {
	api := &fakeMessenger{}
	st := &fakeStore{rows: []model.JourneyRow{
		{Processed: "05 March 2026, 11:00 GMT", OriginTown: "Belfast", DestTown: "Comber", VisitType: "visit", Miles: "8.12"},
		{Processed: "05 March 2026, 09:00 GMT", OriginTown: "Comber", DestTown: "Belfast", VisitType: "home"},
	}}
	h := newTestHandler(api, fakeResolver{}, st)

	h.HandleMessage(context.Background(), message(100, "/recent 2"))

	require.Len(t, api.messages, 1)
	assert.Contains(t, api.messages[0], "Belfast -> Comber")
	assert.Contains(t, api.messages[0], "8.12 mi")
}

func TestHandleRecentEmpty(t *testing.T) {
	api := &fakeMessenger{}
	h := newTestHandler(api, fakeResolver{}, &fakeStore{})

	h.HandleMessage(context.Background(), message(100, "/recent"))

	require.Len(t, api.messages, 1)
	assert.Contains(t, api.messages[0], "No journeys")
}

func TestHandleExportSendsDocument(t *testing.T) {
	api := &fakeMessenger{}
	st := &fakeStore{rows: []model.JourneyRow{{Processed: "p", DestTown: "Comber"}}}
	h := NewHandler(HandlerOptions{
		API:            api,
		Resolver:       fakeResolver{},
		Store:          st,
		AllowedChatIDs: []int64{100},
		ExportDir:      t.TempDir(),
		Now:            func() time.Time { return time.Date(2026, time.March, 5, 9, 0, 0, 0, time.UTC) },
	})

	h.HandleMessage(context.Background(), message(100, "/export"))

	require.Len(t, api.documents, 1)
	assert.Equal(t, "journeys-2026-03-05.xlsx", api.documents[0])
}

func TestExtractLink(t *testing.T) {
	assert.Equal(t, "https://maps.app.goo.gl/abc",
		extractLink("check this https://maps.app.goo.gl/abc please"))
	assert.Equal(t, "plain text", extractLink("plain text"))
}
