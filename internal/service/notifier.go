package service

// Message is a typed event pushed to connected admin clients.
type Message struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Notifier fans redemption lifecycle events out to the admin websocket. The
// channel is bounded and sends never block: with no listener attached events
// are dropped, they are a convenience stream, not a source of truth.
type Notifier struct {
	events chan Message
}

func NewNotifier() *Notifier {
	return &Notifier{
		events: make(chan Message, 64),
	}
}

func (n *Notifier) Publish(msg Message) {
	if n == nil {
		return
	}
	select {
	case n.events <- msg:
	default:
	}
}

func (n *Notifier) Events() <-chan Message {
	return n.events
}
