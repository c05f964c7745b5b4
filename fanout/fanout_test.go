package fanout

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []Notification
}

func (r *recordingPublisher) Publish(channel string, event string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Notification{Channel: channel, Event: event, Payload: payload})
}

type panickingPublisher struct{}

func (panickingPublisher) Publish(string, string, any) {
	panic("transport down")
}

type failingMirror struct{ calls int }

func (m *failingMirror) Emit(string, []byte) error {
	m.calls++
	return errors.New("broker unreachable")
}

func TestChannelNames(t *testing.T) {
	assert.Equal(t, "chats-7", ChatsChannel(7))
	assert.Equal(t, "messages-3-7", MessagesChannel(3, 7))
}

func TestPublishDeliversEachIndependently(t *testing.T) {
	pub := &recordingPublisher{}
	f := New(pub, nil)

	f.Publish(
		Notification{Channel: "chats-1", Event: EventMyChats, Payload: "a"},
		Notification{Channel: "chats-2", Event: EventMyChats, Payload: "b"},
	)

	assert.Len(t, pub.events, 2)
	assert.Equal(t, "chats-1", pub.events[0].Channel)
	assert.Equal(t, "chats-2", pub.events[1].Channel)
}

func TestPublishAbsorbsTransportPanic(t *testing.T) {
	f := New(panickingPublisher{}, nil)

	// A transport failure is logged and dropped; the caller never sees it.
	assert.NotPanics(t, func() {
		f.Publish(Notification{Channel: "chats-1", Event: EventNewMessage, Payload: "x"})
	})
}

func TestPublishMirrorFailureDoesNotStopDelivery(t *testing.T) {
	pub := &recordingPublisher{}
	mirror := &failingMirror{}
	f := New(pub, mirror)

	f.Publish(
		Notification{Channel: "messages-1-1", Event: EventNewMessage, Payload: map[string]any{"body": "hi"}},
		Notification{Channel: "messages-1-2", Event: EventNewMessage, Payload: map[string]any{"body": "hi"}},
	)

	assert.Len(t, pub.events, 2)
	assert.Equal(t, 2, mirror.calls)
}
