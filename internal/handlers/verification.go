package handlers

import (
	"errors"
	"net/http"

	"github.com/BigSlendr/BBE-Menu/internal/services"
	"github.com/go-chi/chi/v5"
)

const maxVerifyFormMemory = 16 << 20

// VerificationHandler serves the customer-facing ID upload.
type VerificationHandler struct {
	verifications *services.VerificationService
}

func NewVerificationHandler(verifications *services.VerificationService) *VerificationHandler {
	return &VerificationHandler{verifications: verifications}
}

// VerificationRouter registers the upload route. The caller mounts it
// behind RequireSession.
func VerificationRouter(r chi.Router, verifications *services.VerificationService) {
	handler := NewVerificationHandler(verifications)

	r.Post("/upload", handler.Upload)
	r.Get("/status", handler.Status)
}

func (h *VerificationHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxVerifyFormMemory); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart/form-data")
		return
	}

	idFile, idHeader, err := r.FormFile("id_image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "both id_image and selfie_image are required")
		return
	}
	defer idFile.Close()

	selfieFile, selfieHeader, err := r.FormFile("selfie_image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "both id_image and selfie_image are required")
		return
	}
	defer selfieFile.Close()

	err = h.verifications.Upload(r.Context(), user.ID,
		services.UploadImage{
			ContentType: idHeader.Header.Get("Content-Type"),
			Size:        idHeader.Size,
			Reader:      idFile,
		},
		services.UploadImage{
			ContentType: selfieHeader.Header.Get("Content-Type"),
			Size:        selfieHeader.Size,
			Reader:      selfieFile,
		},
		r.FormValue("id_expiration"),
	)
	if err != nil {
		if errors.Is(err, services.ErrBadImageType) || errors.Is(err, services.ErrImageTooBig) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to store verification images")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *VerificationHandler) Status(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	verification, err := h.verifications.Status(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load verification status")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "status": verification.Status, "updated_at": verification.UpdatedAt})
}
