package attendees_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/engdahman/conference-app/internal/attendees"
	"github.com/engdahman/conference-app/internal/attendees/db"
	"github.com/engdahman/conference-app/internal/logger"
	"github.com/engdahman/conference-app/internal/models"
)

// Handler exposes the admin attendee endpoints and the stats rollup.
type Handler struct {
	Service *attendees.Service
	Logger  *logger.Logger
}

func NewHandler(service *attendees.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

// HandleList serves the paged attendee table. Query params: q (search),
// checkedIn (true/false), limit, offset.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := db.ListQuery{
		Search: r.URL.Query().Get("q"),
		Limit:  intParam(r, "limit", 50),
		Offset: intParam(r, "offset", 0),
	}
	if v := r.URL.Query().Get("checkedIn"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			badInput(w)
			return
		}
		q.CheckedIn = &parsed
	}

	page, err := h.Service.List(r.Context(), q)
	if err != nil {
		h.serverError(w, "list attendees", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	attendee, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, attendees.ErrNotFound) {
		notFound(w)
		return
	}
	if err != nil {
		h.serverError(w, "get attendee", err)
		return
	}
	writeJSON(w, http.StatusOK, attendee)
}

// HandleUpdate edits profile fields of one attendee. Check-in state and the
// ticket code cannot be changed here.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var attendee models.Attendee
	if err := json.NewDecoder(r.Body).Decode(&attendee); err != nil {
		badInput(w)
		return
	}
	attendee.ID = chi.URLParam(r, "id")

	err := h.Service.Update(r.Context(), &attendee)
	if errors.Is(err, attendees.ErrNotFound) {
		notFound(w)
		return
	}
	if err != nil {
		h.serverError(w, "update attendee", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

func (h *Handler) HandleBulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.IDs) == 0 {
		badInput(w)
		return
	}

	deleted, err := h.Service.BulkDelete(r.Context(), req.IDs)
	if err != nil {
		h.serverError(w, "bulk delete attendees", err)
		return
	}
	h.Logger.Info("ATTENDEES", fmt.Sprintf("deleted %d attendees", deleted))
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "deleted": deleted})
}

func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.GetStats(r.Context())
	if err != nil {
		h.serverError(w, "stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) serverError(w http.ResponseWriter, op string, err error) {
	h.Logger.Error("ATTENDEES", fmt.Sprintf("%s failed: %v", op, err))
	writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "error": "db_unavailable"})
}

func intParam(r *http.Request, name string, fallback int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return fallback
}

func badInput(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "error": "bad_input"})
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]interface{}{"success": false, "error": "not_found"})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
