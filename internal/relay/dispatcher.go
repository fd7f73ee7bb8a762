package relay

import (
	"sync"

	"go.uber.org/zap"

	"github.com/smsinbox/server/internal/store"
)

// Client abstracts one live connection. Send pushes a typed event to the
// peer; keeping it a func field decouples the relay from the websocket
// transport.
type Client struct {
	ID   string
	Send func(msgType string, payload any) error
}

// Dispatcher delivers persisted messages to the connections subscribed to
// the message's phone number. Delivery to each connection is best effort: a
// failed send is logged and skipped, it never propagates to the webhook
// path or to sibling connections.
type Dispatcher struct {
	reg *Registry
	log *zap.Logger

	mu      sync.RWMutex
	clients map[string]*Client // conn id -> client
}

func NewDispatcher(reg *Registry, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.L()
	}
	return &Dispatcher{
		reg:     reg,
		log:     log,
		clients: make(map[string]*Client),
	}
}

func (d *Dispatcher) Registry() *Registry { return d.reg }

// Attach makes a connection eligible for delivery. Called once on accept.
func (d *Dispatcher) Attach(cl *Client) {
	d.mu.Lock()
	d.clients[cl.ID] = cl
	d.mu.Unlock()
}

// Drop removes the connection from the delivery table and clears all of its
// subscriptions. Called exactly once when the connection closes; later
// dispatches can no longer reach it.
func (d *Dispatcher) Drop(connID string) {
	d.reg.DropConnection(connID)
	d.mu.Lock()
	delete(d.clients, connID)
	d.mu.Unlock()
}

// Dispatch sends a new_message event to the subscribers of the message's
// phone number, taken as a snapshot at dispatch time. Zero subscribers is
// not an error.
func (d *Dispatcher) Dispatch(msg *store.Message) {
	subs := d.reg.SubscribersOf(msg.PhoneNumberID)

	delivered := 0
	for _, connID := range subs {
		d.mu.RLock()
		cl := d.clients[connID]
		d.mu.RUnlock()
		if cl == nil {
			// closed between lookup and send
			continue
		}
		if err := cl.Send("new_message", msg); err != nil {
			d.log.Warn("message delivery failed",
				zap.String("conn_id", connID),
				zap.String("message_id", msg.ID),
				zap.Error(err),
			)
			continue
		}
		delivered++
	}

	d.log.Debug("dispatched message",
		zap.String("message_id", msg.ID),
		zap.String("phone_number_id", msg.PhoneNumberID),
		zap.Int("subscribers", len(subs)),
		zap.Int("delivered", delivered),
	)
}

// BroadcastAll pushes an event to every attached connection regardless of
// subscriptions. Diagnostic only; the webhook pipeline never calls it.
func (d *Dispatcher) BroadcastAll(msgType string, payload any) {
	d.mu.RLock()
	snapshot := make([]*Client, 0, len(d.clients))
	for _, cl := range d.clients {
		snapshot = append(snapshot, cl)
	}
	d.mu.RUnlock()

	for _, cl := range snapshot {
		if err := cl.Send(msgType, payload); err != nil {
			d.log.Warn("broadcast delivery failed",
				zap.String("conn_id", cl.ID),
				zap.Error(err),
			)
		}
	}
}
