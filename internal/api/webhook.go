package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/smsinbox/server/internal/logutil"
	"github.com/smsinbox/server/internal/store"
)

// twiML is the minimal acknowledgment Twilio expects. Anything else makes
// the carrier retry or flag the number.
const twiML = `<Response></Response>`

// PhoneFinder resolves the webhook's destination number.
type PhoneFinder interface {
	GetPhoneByNumber(ctx context.Context, number string) (*store.PhoneNumber, error)
}

// MessageCreator persists one inbound message.
type MessageCreator interface {
	CreateMessage(ctx context.Context, nm store.NewMessage) (*store.Message, error)
}

// MessageDispatcher fans a persisted message out to subscribed connections.
type MessageDispatcher interface {
	Dispatch(msg *store.Message)
}

// SignatureValidator authenticates a webhook request against its form params.
type SignatureValidator interface {
	Validate(r *http.Request, params url.Values) bool
}

// WebhookHandler ingests carrier-pushed SMS notifications: validate, resolve
// the destination number, persist, dispatch, acknowledge. The dispatcher is
// injected at construction so the handler never reaches into process-wide
// state.
type WebhookHandler struct {
	Phones     PhoneFinder
	Messages   MessageCreator
	Dispatcher MessageDispatcher
	Validator  SignatureValidator
}

func (h *WebhookHandler) HandleTwilioWebhook(w http.ResponseWriter, r *http.Request) {
	log := L(r.Context())

	if err := r.ParseForm(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	if h.Validator != nil && !h.Validator.Validate(r, r.PostForm) {
		log.Warn("webhook signature rejected")
		respondError(w, http.StatusForbidden, "Invalid Twilio signature")
		return
	}

	from := r.PostForm.Get("From")
	to := r.PostForm.Get("To")
	body := r.PostForm.Get("Body")
	sid := r.PostForm.Get("MessageSid")

	log.Info("webhook received", logutil.Values(
		zap.String("from", from),
		zap.String("to", to),
	))

	phone, err := h.Phones.GetPhoneByNumber(r.Context(), to)
	if errors.Is(err, store.ErrNotFound) {
		// Unknown destination: acknowledge anyway, a failure response would
		// only make the carrier retry a number we will never map.
		log.Warn("webhook for unmapped number", zap.String("to", to))
		writeTwiML(w)
		return
	}
	if err != nil {
		log.Error("phone lookup failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	// One row per webhook call; carrier retries of the same MessageSid are
	// stored again (at-least-once ingestion).
	msg, err := h.Messages.CreateMessage(r.Context(), store.NewMessage{
		From:          from,
		To:            to,
		Body:          body,
		TwilioSID:     sid,
		PhoneNumberID: phone.ID,
	})
	if err != nil {
		log.Error("message persist failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	log.Info("message stored", zap.String("message_id", msg.ID))

	// Fire and forget: the carrier ack never waits on client delivery.
	h.Dispatcher.Dispatch(msg)

	writeTwiML(w)
}

func writeTwiML(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, twiML)
}
