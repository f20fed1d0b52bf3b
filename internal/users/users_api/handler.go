package users_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/engdahman/conference-app/internal/logger"
	"github.com/engdahman/conference-app/internal/users"
)

// Handler exposes dashboard account management (admin only).
type Handler struct {
	Service *users.Service
	Logger  *logger.Logger
}

func NewHandler(service *users.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.List(r.Context())
	if err != nil {
		h.serverError(w, "list users", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type createRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badInput(w, "bad_input")
		return
	}

	user, err := h.Service.Create(r.Context(), req.Username, req.Password, req.Role)
	switch {
	case errors.Is(err, users.ErrValidation):
		badInput(w, "invalid_input")
	case errors.Is(err, users.ErrUsernameTaken):
		writeJSON(w, http.StatusConflict, map[string]interface{}{"success": false, "error": "username_exists"})
	case err != nil:
		h.serverError(w, "create user", err)
	default:
		writeJSON(w, http.StatusCreated, user)
	}
}

type updateRequest struct {
	Password string `json:"password"`
	Role     string `json:"role"`
}

// HandleUpdate changes an account's password and/or role.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || (req.Password == "" && req.Role == "") {
		badInput(w, "bad_input")
		return
	}
	id := chi.URLParam(r, "id")

	if req.Password != "" {
		if err := h.Service.SetPassword(r.Context(), id, req.Password); err != nil {
			h.respondUpdateError(w, "set password", err)
			return
		}
	}
	if req.Role != "" {
		if err := h.Service.SetRole(r.Context(), id, req.Role); err != nil {
			h.respondUpdateError(w, "set role", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	err := h.Service.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondUpdateError(w, "delete user", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Handler) respondUpdateError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, users.ErrValidation):
		badInput(w, "invalid_input")
	case errors.Is(err, users.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"success": false, "error": "not_found"})
	case errors.Is(err, users.ErrLastAdmin):
		writeJSON(w, http.StatusConflict, map[string]interface{}{"success": false, "error": "last_admin"})
	default:
		h.serverError(w, op, err)
	}
}

func (h *Handler) serverError(w http.ResponseWriter, op string, err error) {
	h.Logger.Error("USERS", fmt.Sprintf("%s failed: %v", op, err))
	writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "error": "db_unavailable"})
}

func badInput(w http.ResponseWriter, code string) {
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "error": code})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
