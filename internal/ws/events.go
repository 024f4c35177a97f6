package ws

import (
	"encoding/json"
	"time"

	"gossip/internal/domain"
)

// Event names, client to server.
const (
	EventJoinRoom     = "joinroom"
	EventMessage      = "message"
	EventMarkRead     = "mark-read"
	EventJoinGroup    = "joinGroup"
	EventGroupMessage = "group-message"
)

// Event names, server to client. "message", "mark-read" and
// "group-message" are reused in the push direction.
const (
	EventRefreshMsg      = "refresh-msg"
	EventGroupRefreshMsg = "group-refresh-msg"
	EventUsers           = "users"
	EventError           = "error"
)

// Event is the wire envelope in both directions.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// MessagePayload is one message element inside a batch. CreatedAt is the
// client-supplied optimistic timestamp; MsgID is the client's
// idempotency/correlation token.
type MessagePayload struct {
	Text      string           `json:"text"`
	Image     *string          `json:"image,omitempty"`
	Video     *string          `json:"video,omitempty"`
	Location  *domain.Location `json:"location,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	MsgID     string           `json:"msgId"`
}

type JoinRoomPayload struct {
	UserID int64 `json:"user"`
}

type DirectMessagePayload struct {
	From     int64            `json:"from"`
	To       int64            `json:"to"`
	Messages []MessagePayload `json:"message"`
}

type MarkReadPayload struct {
	UserID int64 `json:"user"`
}

type JoinGroupPayload struct {
	UserID  int64 `json:"user"`
	GroupID int64 `json:"groupId"`
}

type GroupMessagePayload struct {
	From     int64            `json:"from"`
	GroupID  int64            `json:"groupId"`
	Messages []MessagePayload `json:"message"`
}

// DirectMessageEvent is the live push to an online recipient.
type DirectMessageEvent struct {
	From     int64             `json:"from"`
	To       int64             `json:"to"`
	Messages []*domain.Message `json:"message"`
}

// GroupMessageEvent is the fan-out push to group channel subscribers.
type GroupMessageEvent struct {
	From     int64             `json:"from"`
	GroupID  int64             `json:"groupId"`
	Messages []*domain.Message `json:"message"`
}

// MarkReadEvent notifies the original sender that their message was
// acknowledged.
type MarkReadEvent struct {
	Message *domain.Message `json:"updatedMessage"`
}

type ErrorEvent struct {
	Message string `json:"message"`
}

// writeEvent marshals data into the envelope and writes it to the session.
func writeEvent(s Session, event string, data any) error {
	ev := Event{Event: event}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return err
		}
		ev.Data = raw
	}
	return s.WriteJSON(ev)
}
