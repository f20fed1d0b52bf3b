package content_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/engdahman/conference-app/internal/content"
	"github.com/engdahman/conference-app/internal/logger"
	"github.com/engdahman/conference-app/internal/models"
)

// Handler serves the public site content and its admin CRUD.
type Handler struct {
	Service *content.Service
	Logger  *logger.Logger
}

func NewHandler(service *content.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

// ---- public reads ----

func (h *Handler) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Service.GetSettings(r.Context())
	if err != nil {
		h.serverError(w, "load settings", err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *Handler) HandleListSpeakers(w http.ResponseWriter, r *http.Request) {
	speakers, err := h.Service.ListSpeakers(r.Context())
	if err != nil {
		h.serverError(w, "list speakers", err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(speakers))
}

func (h *Handler) HandleListSponsors(w http.ResponseWriter, r *http.Request) {
	sponsors, err := h.Service.ListSponsors(r.Context())
	if err != nil {
		h.serverError(w, "list sponsors", err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(sponsors))
}

func (h *Handler) HandleListCommittee(w http.ResponseWriter, r *http.Request) {
	members, err := h.Service.ListCommittee(r.Context())
	if err != nil {
		h.serverError(w, "list committee", err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(members))
}

func (h *Handler) HandleListAgenda(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.ListAgenda(r.Context())
	if err != nil {
		h.serverError(w, "list agenda", err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(items))
}

// ---- admin writes ----

func (h *Handler) HandleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var settings models.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		badInput(w)
		return
	}
	if err := h.Service.SaveSettings(r.Context(), &settings); err != nil {
		h.serverError(w, "save settings", err)
		return
	}
	h.Logger.Info("CONTENT", "settings saved")
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "settings": settings})
}

func (h *Handler) HandleCreateSpeaker(w http.ResponseWriter, r *http.Request) {
	var speaker models.Speaker
	if err := json.NewDecoder(r.Body).Decode(&speaker); err != nil || speaker.Name == "" {
		badInput(w)
		return
	}
	if err := h.Service.CreateSpeaker(r.Context(), &speaker); err != nil {
		h.serverError(w, "create speaker", err)
		return
	}
	writeJSON(w, http.StatusCreated, speaker)
}

func (h *Handler) HandleUpdateSpeaker(w http.ResponseWriter, r *http.Request) {
	var speaker models.Speaker
	if err := json.NewDecoder(r.Body).Decode(&speaker); err != nil {
		badInput(w)
		return
	}
	speaker.ID = chi.URLParam(r, "id")
	h.respondMutation(w, "update speaker", h.Service.UpdateSpeaker(r.Context(), &speaker))
}

func (h *Handler) HandleDeleteSpeaker(w http.ResponseWriter, r *http.Request) {
	h.respondMutation(w, "delete speaker", h.Service.DeleteSpeaker(r.Context(), chi.URLParam(r, "id")))
}

func (h *Handler) HandleCreateSponsor(w http.ResponseWriter, r *http.Request) {
	var sponsor models.Sponsor
	if err := json.NewDecoder(r.Body).Decode(&sponsor); err != nil || sponsor.Name == "" {
		badInput(w)
		return
	}
	if err := h.Service.CreateSponsor(r.Context(), &sponsor); err != nil {
		h.serverError(w, "create sponsor", err)
		return
	}
	writeJSON(w, http.StatusCreated, sponsor)
}

func (h *Handler) HandleUpdateSponsor(w http.ResponseWriter, r *http.Request) {
	var sponsor models.Sponsor
	if err := json.NewDecoder(r.Body).Decode(&sponsor); err != nil {
		badInput(w)
		return
	}
	sponsor.ID = chi.URLParam(r, "id")
	h.respondMutation(w, "update sponsor", h.Service.UpdateSponsor(r.Context(), &sponsor))
}

func (h *Handler) HandleDeleteSponsor(w http.ResponseWriter, r *http.Request) {
	h.respondMutation(w, "delete sponsor", h.Service.DeleteSponsor(r.Context(), chi.URLParam(r, "id")))
}

func (h *Handler) HandleCreateCommitteeMember(w http.ResponseWriter, r *http.Request) {
	var member models.CommitteeMember
	if err := json.NewDecoder(r.Body).Decode(&member); err != nil || member.Name == "" {
		badInput(w)
		return
	}
	if err := h.Service.CreateCommitteeMember(r.Context(), &member); err != nil {
		h.serverError(w, "create committee member", err)
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

func (h *Handler) HandleUpdateCommitteeMember(w http.ResponseWriter, r *http.Request) {
	var member models.CommitteeMember
	if err := json.NewDecoder(r.Body).Decode(&member); err != nil {
		badInput(w)
		return
	}
	member.ID = chi.URLParam(r, "id")
	h.respondMutation(w, "update committee member", h.Service.UpdateCommitteeMember(r.Context(), &member))
}

func (h *Handler) HandleDeleteCommitteeMember(w http.ResponseWriter, r *http.Request) {
	h.respondMutation(w, "delete committee member", h.Service.DeleteCommitteeMember(r.Context(), chi.URLParam(r, "id")))
}

func (h *Handler) HandleCreateAgendaItem(w http.ResponseWriter, r *http.Request) {
	var item models.AgendaItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil || item.Title == "" {
		badInput(w)
		return
	}
	if err := h.Service.CreateAgendaItem(r.Context(), &item); err != nil {
		h.serverError(w, "create agenda item", err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) HandleUpdateAgendaItem(w http.ResponseWriter, r *http.Request) {
	var item models.AgendaItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		badInput(w)
		return
	}
	item.ID = chi.URLParam(r, "id")
	h.respondMutation(w, "update agenda item", h.Service.UpdateAgendaItem(r.Context(), &item))
}

func (h *Handler) HandleDeleteAgendaItem(w http.ResponseWriter, r *http.Request) {
	h.respondMutation(w, "delete agenda item", h.Service.DeleteAgendaItem(r.Context(), chi.URLParam(r, "id")))
}

// ---- helpers ----

func (h *Handler) respondMutation(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, content.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"success": false, "error": "not_found"})
		return
	}
	if err != nil {
		h.serverError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Handler) serverError(w http.ResponseWriter, op string, err error) {
	h.Logger.Error("CONTENT", fmt.Sprintf("%s failed: %v", op, err))
	writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "error": "db_unavailable"})
}

func badInput(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "error": "bad_input"})
}

// orEmpty keeps empty lists serializing as [] instead of null.
func orEmpty[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
