package comms

import "encoding/json"

// Subjects double as partition keys: the transport guarantees ordering only
// among messages sharing a subject, which is all the game needs (per room
// for events, per connection for asks).
const ReplySubject = "game.replies"

func RoomSubject(roomCode string) string {
	return "room." + roomCode + ".events"
}

func PlayerSubject(connectionID string) string {
	return "player." + connectionID + ".ask"
}

// Request is the envelope sent to a player's private subject. It carries
// everything a client needs to answer: what is being asked, where to send
// the reply, and the correlation id to echo back.
type Request struct {
	Action        string          `json:"action"`
	CorrelationID string          `json:"correlation_id"`
	ReplyTo       string          `json:"reply_to"`
	RoomCode      string          `json:"room_code,omitempty"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

type Reply struct {
	CorrelationID string          `json:"correlation_id"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

type Event struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Delivery is one consumed reply. Ack removes it from the transport;
// Abandon releases it for redelivery or expiry, which is how replies with
// unknown correlation ids are kept away from the pending table.
type Delivery struct {
	CorrelationID string
	Body          []byte
	Ack           func() error
	Abandon       func() error
}

type Channel interface {
	Publish(subject string, data []byte) error
	SubscribeReplies(subject string, handler func(Delivery)) (func(), error)
}
