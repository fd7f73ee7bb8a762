package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SetupRoutes wires the admin API, the carrier webhook, and the websocket
// endpoint onto one router.
func SetupRoutes(h *Handler, wh *WebhookHandler, ws *WSHandler, corsOrigin string) http.Handler {
	r := chi.NewRouter()
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware(corsOrigin))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "SMS Receiver API",
			"version": "1.0.0",
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Route("/phones", func(r chi.Router) {
			r.Get("/", h.ListPhones)
			r.Post("/", h.CreatePhone)
			r.Get("/{id}", h.GetPhone)
			r.Delete("/{id}", h.DeletePhone)
			r.Get("/{id}/messages", h.ListPhoneMessages)
		})

		r.Route("/messages", func(r chi.Router) {
			r.Get("/", h.ListRecentMessages)
			r.Get("/{id}", h.GetMessage)
			r.Delete("/{id}", h.DeleteMessage)
		})

		r.Post("/webhook/twilio", wh.HandleTwilioWebhook)
	})

	r.Get("/ws", ws.HandleWS)

	return r
}
