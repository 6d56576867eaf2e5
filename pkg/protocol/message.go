// Package protocol defines the wire messages exchanged between the live-view
// client and the server, and the codecs that frame them.
package protocol

// Event names used by the live-view channel.
const (
	EventJoin      = "phx_join"
	EventLeave     = "phx_leave"
	EventReply     = "phx_reply"
	EventError     = "phx_error"
	EventHeartbeat = "heartbeat"
	EventDiff      = "diff"
)

// Reply statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Message is a single frame on a live-view connection.
type Message struct {
	// Ref correlates a reply with the request that caused it.
	Ref string `json:"ref,omitempty" msgpack:"ref,omitempty"`

	// JoinRef identifies the join the message belongs to.
	JoinRef string `json:"join_ref,omitempty" msgpack:"join_ref,omitempty"`

	// Topic is the channel, e.g. "lv:<session-id>".
	Topic string `json:"topic" msgpack:"topic"`

	// Event is a protocol event or a component event name such as "select".
	Event string `json:"event" msgpack:"event"`

	Payload map[string]any `json:"payload,omitempty" msgpack:"payload,omitempty"`
}

// IsControl reports whether the event is handled by the channel itself
// rather than forwarded to a component.
func (m Message) IsControl() bool {
	switch m.Event {
	case EventJoin, EventLeave, EventHeartbeat, EventReply:
		return true
	}
	return false
}

// Reply builds a phx_reply for the request ref.
func Reply(ref, topic, status string, response map[string]any) Message {
	if response == nil {
		response = map[string]any{}
	}
	return Message{
		Ref:   ref,
		Topic: topic,
		Event: EventReply,
		Payload: map[string]any{
			"status":   status,
			"response": response,
		},
	}
}

// OkReply is a successful reply.
func OkReply(ref, topic string, response map[string]any) Message {
	return Reply(ref, topic, StatusOK, response)
}

// ErrorReply is a failed reply carrying reason.
func ErrorReply(ref, topic, reason string) Message {
	return Reply(ref, topic, StatusError, map[string]any{"reason": reason})
}

// Diff builds a server-pushed diff message.
func Diff(topic string, diff map[string]any) Message {
	return Message{Topic: topic, Event: EventDiff, Payload: diff}
}
