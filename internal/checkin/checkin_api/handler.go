package checkin_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/engdahman/conference-app/internal/checkin"
	"github.com/engdahman/conference-app/internal/logger"
)

// Handler exposes the check-in resolver over HTTP. Both GET (scanner
// redirects) and POST (dashboard) land on the same resolution path.
type Handler struct {
	Service *checkin.Service
	Logger  *logger.Logger
}

func NewHandler(service *checkin.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

type checkinResponse struct {
	Success  bool        `json:"success"`
	Already  bool        `json:"already"`
	Attendee interface{} `json:"attendee"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// HandleCheckin resolves whatever the scanner or operator produced and flips
// the attendee to checked in. Responses are never cached: the same URL must
// re-resolve on every scan.
func (h *Handler) HandleCheckin(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	w.Header().Set("Cache-Control", "no-store")

	raw := pickRawInput(r)

	result, err := h.Service.ResolveAndCheckIn(r.Context(), raw)
	if err != nil {
		status, code := mapError(err)
		if status >= http.StatusInternalServerError {
			h.Logger.Error("CHECKIN", fmt.Sprintf("resolution failed: %v", err))
		}
		h.Logger.LogAPI(r.Method, r.URL.Path, fmt.Sprintf("%d", status), time.Since(start).String())
		writeJSON(w, status, errorResponse{Success: false, Error: code})
		return
	}

	action := "CHECKED_IN"
	if result.Already {
		action = "ALREADY"
	}
	h.Logger.LogCheckin(action, result.Attendee.ID, result.Attendee.FullName)
	h.Logger.LogAPI(r.Method, r.URL.Path, "200", time.Since(start).String())

	writeJSON(w, http.StatusOK, checkinResponse{
		Success:  true,
		Already:  result.Already,
		Attendee: result.Attendee,
	})
}

// pickRawInput accepts the identifier from wherever the client put it: a JSON
// body under code/q/ticket/t/text, a plain-text body, or a query parameter.
// First non-empty source wins.
func pickRawInput(r *http.Request) string {
	if r.Method == http.MethodPost && r.Body != nil {
		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
		if err == nil && len(body) > 0 {
			var payload map[string]interface{}
			if json.Unmarshal(body, &payload) == nil {
				for _, key := range []string{"code", "q", "ticket", "t", "text"} {
					if v, ok := payload[key].(string); ok && strings.TrimSpace(v) != "" {
						return v
					}
				}
			} else if s := strings.TrimSpace(string(body)); s != "" {
				return s
			}
		}
	}
	for _, key := range []string{"code", "q", "ticket", "t"} {
		if v := r.URL.Query().Get(key); strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, checkin.ErrMissingInput):
		return http.StatusBadRequest, "missing_code"
	case errors.Is(err, checkin.ErrInvalidInput):
		return http.StatusBadRequest, "bad_input"
	case errors.Is(err, checkin.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, checkin.ErrStorageUnavailable):
		return http.StatusInternalServerError, "db_unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
