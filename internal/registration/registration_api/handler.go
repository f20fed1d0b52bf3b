package registration_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/engdahman/conference-app/internal/logger"
	"github.com/engdahman/conference-app/internal/registration"
)

// Handler exposes public self-registration.
type Handler struct {
	Service *registration.Service
	Logger  *logger.Logger
}

func NewHandler(service *registration.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

type registerResponse struct {
	Success    bool        `json:"success"`
	ID         string      `json:"id"`
	TicketCode string      `json:"ticketCode"`
	QRDataURL  string      `json:"qrDataUrl,omitempty"`
	Attendee   interface{} `json:"attendee"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// HandleRegister creates an attendee from the public registration form.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var in registration.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.respondError(w, r, start, http.StatusBadRequest, "bad_input")
		return
	}

	attendee, qrDataURL, err := h.Service.Register(r.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, registration.ErrValidation):
			h.respondError(w, r, start, http.StatusBadRequest, "invalid_input")
		case errors.Is(err, registration.ErrDuplicateEmail):
			h.respondError(w, r, start, http.StatusConflict, "already_registered")
		default:
			h.Logger.Error("REGISTER", fmt.Sprintf("registration failed: %v", err))
			h.respondError(w, r, start, http.StatusInternalServerError, "db_unavailable")
		}
		return
	}

	h.Logger.Info("REGISTER", fmt.Sprintf("registered %s (%s)", attendee.ID, attendee.TicketCode))
	h.Logger.LogAPI(r.Method, r.URL.Path, "201", time.Since(start).String())
	writeJSON(w, http.StatusCreated, registerResponse{
		Success:    true,
		ID:         attendee.ID,
		TicketCode: attendee.TicketCode,
		QRDataURL:  qrDataURL,
		Attendee:   attendee,
	})
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, start time.Time, status int, code string) {
	h.Logger.LogAPI(r.Method, r.URL.Path, fmt.Sprintf("%d", status), time.Since(start).String())
	writeJSON(w, status, errorResponse{Success: false, Error: code})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
