package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/damkaswim/storefront/internal/repository"
	"github.com/damkaswim/storefront/internal/service"
	"github.com/damkaswim/storefront/pkg/httputil"
	"github.com/damkaswim/storefront/pkg/pagination"
	"github.com/damkaswim/storefront/pkg/validator"
)

// MessageHandler handles HTTP requests for the contact form, the newsletter
// and the admin inbox.
type MessageHandler struct {
	service *service.MessageService
	logger  *slog.Logger
}

// NewMessageHandler creates a new contact message HTTP handler.
func NewMessageHandler(svc *service.MessageService, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// ContactRequest is the JSON request body for a contact form submission.
type ContactRequest struct {
	Name       string `json:"name" validate:"required,min=1,max=200"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"omitempty,max=30"`
	Subject    string `json:"subject" validate:"omitempty,max=300"`
	Body       string `json:"body" validate:"required,min=1,max=5000"`
	Newsletter bool   `json:"newsletter"`
}

// SubscribeRequest is the JSON request body for a newsletter signup.
type SubscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// UpdateMessageStatusRequest is the JSON request body for a message status change.
type UpdateMessageStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new read replied archived"`
}

// ReplyRequest is the JSON request body for an admin reply.
type ReplyRequest struct {
	Subject string `json:"subject" validate:"required,min=1,max=300"`
	Body    string `json:"body" validate:"required,min=1,max=10000"`
}

// --- Public handlers ---

// SubmitContact handles POST /api/v1/contact.
func (h *MessageHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	message, err := h.service.SubmitContact(r.Context(), &service.SubmitContactInput{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Subject:    req.Subject,
		Body:       req.Body,
		Newsletter: req.Newsletter,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: message})
}

// Subscribe handles POST /api/v1/newsletter.
func (h *MessageHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.service.Subscribe(r.Context(), req.Email); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: map[string]string{"email": req.Email}})
}

// --- Admin handlers ---

// ListMessages handles GET /api/v1/admin/messages.
func (h *MessageHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.MessageFilter{
		Status:  q.Get("status"),
		Subject: q.Get("subject"),
	}

	params := pagination.FromRequest(r)
	filter.Limit = params.PerPage
	filter.Offset = params.Offset

	messages, total, err := h.service.ListMessages(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(messages, total, params.Page, params.PerPage))
}

// GetMessage handles GET /api/v1/admin/messages/{id}.
func (h *MessageHandler) GetMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	message, err := h.service.GetMessage(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: message})
}

// UpdateMessageStatus handles PATCH /api/v1/admin/messages/{id}/status.
func (h *MessageHandler) UpdateMessageStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateMessageStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.service.UpdateMessageStatus(r.Context(), id, req.Status); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Reply handles POST /api/v1/admin/messages/{id}/reply.
func (h *MessageHandler) Reply(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req ReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	message, err := h.service.Reply(r.Context(), id, &service.ReplyInput{
		Subject: req.Subject,
		Body:    req.Body,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: message})
}

// DeleteMessage handles DELETE /api/v1/admin/messages/{id}.
func (h *MessageHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteMessage(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListSubscribers handles GET /api/v1/admin/subscribers.
func (h *MessageHandler) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	subscribers, total, err := h.service.ListSubscribers(r.Context(), params.PerPage, params.Offset)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(subscribers, total, params.Page, params.PerPage))
}
