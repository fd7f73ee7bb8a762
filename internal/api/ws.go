package api

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/smsinbox/server/internal/protocol"
	"github.com/smsinbox/server/internal/relay"
)

var upgrader = websocket.Upgrader{
	// Origin policy is enforced by the CORS layer; the ws endpoint accepts
	// whatever the browser lets through.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler upgrades client connections and drives their lifecycle: attach
// on accept, apply subscribe/unsubscribe in arrival order, drop everything
// exactly once on close.
type WSHandler struct {
	Dispatcher *relay.Dispatcher
}

func (h *WSHandler) HandleWS(w http.ResponseWriter, r *http.Request) {
	log := L(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	connID := uuid.NewString()
	log = log.With(zap.String("conn_id", connID))

	// Dispatches arrive on webhook goroutines while this loop writes acks;
	// gorilla connections allow one concurrent writer only.
	var writeMu sync.Mutex
	wsSend := func(msgType string, payload any) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(protocol.ServerMessage{Type: msgType, Data: payload})
	}

	h.Dispatcher.Attach(&relay.Client{ID: connID, Send: wsSend})
	defer h.Dispatcher.Drop(connID)

	log.Info("client connected")
	defer log.Info("client disconnected")

	reg := h.Dispatcher.Registry()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("websocket read error", zap.Error(err))
			}
			return
		}

		msg, err := protocol.Decode(raw)
		if err != nil {
			wsSend(protocol.TypeError, "invalid JSON")
			continue
		}

		switch msg.Type {
		case protocol.TypeSubscribe:
			if msg.PhoneNumberID == "" {
				wsSend(protocol.TypeError, "missing phoneNumberId")
				continue
			}
			reg.Subscribe(connID, msg.PhoneNumberID)
			log.Info("subscribed", zap.String("phone_number_id", msg.PhoneNumberID))
			wsSend(protocol.TypeSubscribed, map[string]string{"phoneNumberId": msg.PhoneNumberID})

		case protocol.TypeUnsubscribe:
			if msg.PhoneNumberID == "" {
				wsSend(protocol.TypeError, "missing phoneNumberId")
				continue
			}
			reg.Unsubscribe(connID, msg.PhoneNumberID)
			log.Info("unsubscribed", zap.String("phone_number_id", msg.PhoneNumberID))
			wsSend(protocol.TypeUnsubscribed, map[string]string{"phoneNumberId": msg.PhoneNumberID})

		case protocol.TypePing:
			wsSend(protocol.TypePong, nil)

		default:
			wsSend(protocol.TypeError, "unknown message type")
		}
	}
}
