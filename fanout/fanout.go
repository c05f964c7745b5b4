package fanout

import (
	"encoding/json"
	"fmt"
	"log"
)

// Event names pushed to live clients.
const (
	EventMyChats    = "mychats"
	EventNewMessage = "new-message"
)

// ChatsChannel names the per-user channel that receives conversation-level
// changes.
func ChatsChannel(userID uint) string {
	return fmt.Sprintf("chats-%d", userID)
}

// MessagesChannel names the per-participant channel of a single chat.
func MessagesChannel(chatID, userID uint) string {
	return fmt.Sprintf("messages-%d-%d", chatID, userID)
}

// Notification is one (channel, event, payload) triple.
type Notification struct {
	Channel string
	Event   string
	Payload any
}

// Publisher delivers a payload to a named channel. The socket.io server
// implements it in production; tests substitute a recorder.
type Publisher interface {
	Publish(channel string, event string, payload any)
}

// Mirror receives a copy of every published event, best-effort. Backed by
// the RabbitMQ bus in production.
type Mirror interface {
	Emit(action string, data []byte) error
}

// Fanout pushes change events to affected users' live clients. Delivery is
// fire-and-forget: the underlying write has already committed, so transport
// failures are logged and dropped, never returned to the caller.
type Fanout struct {
	pub    Publisher
	mirror Mirror
}

func New(pub Publisher, mirror Mirror) *Fanout {
	return &Fanout{pub: pub, mirror: mirror}
}

// Publish delivers each notification independently. Ordering between
// channels is immaterial.
func (f *Fanout) Publish(notifications ...Notification) {
	for _, n := range notifications {
		f.publish(n)
	}
}

func (f *Fanout) publish(n Notification) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("fanout: dropped event %s on %s: %v", n.Event, n.Channel, r)
		}
	}()

	if f.pub != nil {
		f.pub.Publish(n.Channel, n.Event, n.Payload)
	}

	if f.mirror != nil {
		data, err := json.Marshal(map[string]any{
			"channel": n.Channel,
			"payload": n.Payload,
		})
		if err == nil {
			err = f.mirror.Emit(n.Event, data)
		}
		if err != nil {
			log.Printf("fanout: mirror failed for %s on %s: %v", n.Event, n.Channel, err)
		}
	}
}
