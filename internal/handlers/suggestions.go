package handlers

import (
	"net/http"

	"github.com/BigSlendr/BBE-Menu/internal/mail"
	"github.com/go-chi/chi/v5"
)

// SuggestionHandler forwards product suggestions to the staff inbox.
type SuggestionHandler struct {
	mailer *mail.Mailer
	from   string
	to     string
}

func NewSuggestionHandler(mailer *mail.Mailer, from, to string) *SuggestionHandler {
	return &SuggestionHandler{mailer: mailer, from: from, to: to}
}

// SuggestionRouter registers the public suggestion route.
func SuggestionRouter(r chi.Router, mailer *mail.Mailer, from, to string) {
	handler := NewSuggestionHandler(mailer, from, to)
	r.Post("/", handler.Create)
}

func (h *SuggestionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req SuggestionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	subject, body := mail.Suggestion(req.Name, req.Email, req.Phone, req.Message)
	_, err := h.mailer.Send(r.Context(), mail.Message{
		From:    h.from,
		To:      []string{h.to},
		Subject: subject,
		HTML:    body,
		ReplyTo: req.Email,
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, "failed to deliver suggestion")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// SuggestionRequest is the expected body for POST /suggestions.
type SuggestionRequest struct {
	Name    string `json:"name" validate:"required,max=80"`
	Email   string `json:"email" validate:"required,email,max=120"`
	Phone   string `json:"phone" validate:"max=40"`
	Message string `json:"message" validate:"required,max=2000"`
}
