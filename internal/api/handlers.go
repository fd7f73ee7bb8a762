package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"

	"github.com/smsinbox/server/internal/common"
	"github.com/smsinbox/server/internal/store"
)

// PhoneStore is the slice of the persistence gateway the phone handlers use.
type PhoneStore interface {
	CreatePhone(ctx context.Context, number, country, countryCode string) (*store.PhoneNumber, error)
	ListPhones(ctx context.Context) ([]store.PhoneNumber, error)
	GetPhone(ctx context.Context, id string) (*store.PhoneNumber, error)
	DeletePhone(ctx context.Context, id string) error
}

// MessageStore is the slice of the persistence gateway the message handlers use.
type MessageStore interface {
	GetMessage(ctx context.Context, id string) (*store.Message, error)
	ListMessagesByPhone(ctx context.Context, phoneNumberID string, page, limit int) (*store.MessagePage, error)
	RecentMessages(ctx context.Context, limit int) ([]store.Message, error)
	DeleteMessage(ctx context.Context, id string) error
}

// Handler serves the administrative JSON API.
type Handler struct {
	Phones   PhoneStore
	Messages MessageStore
}

var e164ish = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)

type createPhoneRequest struct {
	Number      string `json:"number"`
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
}

func (m createPhoneRequest) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Number, validation.Required, validation.Match(e164ish)),
		validation.Field(&m.Country, validation.Required),
		validation.Field(&m.CountryCode, validation.Required),
	)
}

func (h *Handler) ListPhones(w http.ResponseWriter, r *http.Request) {
	phones, err := h.Phones.ListPhones(r.Context())
	if err != nil {
		h.serverError(w, r, "list phones", err)
		return
	}
	respondData(w, http.StatusOK, phones)
}

func (h *Handler) CreatePhone(w http.ResponseWriter, r *http.Request) {
	var req createPhoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	phone, err := h.Phones.CreatePhone(r.Context(), req.Number, req.Country, req.CountryCode)
	if err != nil {
		h.serverError(w, r, "create phone", err)
		return
	}
	respondData(w, http.StatusCreated, phone)
}

func (h *Handler) GetPhone(w http.ResponseWriter, r *http.Request) {
	phone, err := h.Phones.GetPhone(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Phone number not found")
		return
	}
	if err != nil {
		h.serverError(w, r, "get phone", err)
		return
	}
	respondData(w, http.StatusOK, phone)
}

func (h *Handler) DeletePhone(w http.ResponseWriter, r *http.Request) {
	err := h.Phones.DeletePhone(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Phone number not found")
		return
	}
	if err != nil {
		h.serverError(w, r, "delete phone", err)
		return
	}
	respondMessage(w, http.StatusOK, "Phone number deleted successfully")
}

func (h *Handler) ListPhoneMessages(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.Messages.ListMessagesByPhone(r.Context(), chi.URLParam(r, "id"), page, limit)
	if err != nil {
		h.serverError(w, r, "list messages", err)
		return
	}
	respondData(w, http.StatusOK, result)
}

func (h *Handler) ListRecentMessages(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 10
	}
	if limit > common.MaxLimit {
		limit = common.MaxLimit
	}

	msgs, err := h.Messages.RecentMessages(r.Context(), limit)
	if err != nil {
		h.serverError(w, r, "list recent messages", err)
		return
	}
	respondData(w, http.StatusOK, msgs)
}

func (h *Handler) GetMessage(w http.ResponseWriter, r *http.Request) {
	msg, err := h.Messages.GetMessage(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Message not found")
		return
	}
	if err != nil {
		h.serverError(w, r, "get message", err)
		return
	}
	respondData(w, http.StatusOK, msg)
}

func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	err := h.Messages.DeleteMessage(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "Message not found")
		return
	}
	if err != nil {
		h.serverError(w, r, "delete message", err)
		return
	}
	respondMessage(w, http.StatusOK, "Message deleted successfully")
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "API is healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	L(r.Context()).Error(op+" failed", zap.Error(err))
	respondError(w, http.StatusInternalServerError, "Internal Server Error")
}
