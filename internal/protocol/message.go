package protocol

import "encoding/json"

// Client -> server frame types.
const (
	TypeSubscribe   = "subscribe"
	TypeUnsubscribe = "unsubscribe"
	TypePing        = "ping"
)

// Server -> client frame types.
const (
	TypeSubscribed   = "subscribed"
	TypeUnsubscribed = "unsubscribed"
	TypeNewMessage   = "new_message"
	TypeError        = "error"
	TypePong         = "pong"
)

// ClientMessage is a frame received from a websocket client. Subscribe and
// unsubscribe carry the phone number id they refer to.
type ClientMessage struct {
	Type          string `json:"type"`
	PhoneNumberID string `json:"phoneNumberId,omitempty"`
}

// ServerMessage is a frame pushed to a websocket client.
type ServerMessage struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

func Decode(raw []byte) (ClientMessage, error) {
	var msg ClientMessage
	err := json.Unmarshal(raw, &msg)
	return msg, err
}
