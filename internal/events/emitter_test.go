package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	events []*Event
	err    error
}

func (h *recordingHandler) HandleEvent(_ context.Context, event *Event) error {
	h.events = append(h.events, event)
	return h.err
}

func newTestEmitter() *InMemoryEventEmitter {
	return NewInMemoryEventEmitter(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func leechEvent(t *testing.T) *Event {
	t.Helper()
	event, err := NewEvent(EventTypeCardLeeched, LeechPayload{
		CardID: uuid.New(),
		NoteID: uuid.New(),
		DeckID: uuid.New(),
		Lapses: 8,
	})
	require.NoError(t, err)
	return event
}

func TestEmitEventWithNoHandlers(t *testing.T) {
	emitter := newTestEmitter()
	assert.NoError(t, emitter.EmitEvent(context.Background(), leechEvent(t)))
}

func TestEmitEventDeliversToAllHandlers(t *testing.T) {
	emitter := newTestEmitter()
	first := &recordingHandler{}
	second := &recordingHandler{}
	emitter.RegisterHandler(first)
	emitter.RegisterHandler(second)

	event := leechEvent(t)
	require.NoError(t, emitter.EmitEvent(context.Background(), event))

	require.Len(t, first.events, 1)
	require.Len(t, second.events, 1)
	assert.Equal(t, event.ID, first.events[0].ID)
	assert.Equal(t, EventTypeCardLeeched, second.events[0].Type)
}

func TestEmitEventReturnsFirstHandlerError(t *testing.T) {
	emitter := newTestEmitter()
	errFirst := errors.New("first failure")
	failing := &recordingHandler{err: errFirst}
	alsoFailing := &recordingHandler{err: errors.New("second failure")}
	healthy := &recordingHandler{}
	emitter.RegisterHandler(failing)
	emitter.RegisterHandler(alsoFailing)
	emitter.RegisterHandler(healthy)

	err := emitter.EmitEvent(context.Background(), leechEvent(t))
	assert.Equal(t, errFirst, err)

	// A failing handler never blocks delivery to the rest.
	assert.Len(t, healthy.events, 1)
}

func TestEventPayloadRoundTrip(t *testing.T) {
	want := LeechPayload{CardID: uuid.New(), NoteID: uuid.New(), DeckID: uuid.New(), Lapses: 4}
	event, err := NewEvent(EventTypeCardLeeched, want)
	require.NoError(t, err)

	var got LeechPayload
	require.NoError(t, event.UnmarshalPayload(&got))
	assert.Equal(t, want, got)
}
