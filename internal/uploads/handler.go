package uploads

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/engdahman/conference-app/internal/config"
	"github.com/engdahman/conference-app/internal/logger"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// Handler stores admin-uploaded images (logos, photos, banners) on local
// disk and hands back the web path they are served under.
type Handler struct {
	cfg    config.UploadConfig
	logger *logger.Logger
}

func NewHandler(cfg config.UploadConfig, log *logger.Logger) *Handler {
	return &Handler{cfg: cfg, logger: log}
}

// HandleUpload accepts one multipart file under the "file" field.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxBytes)
	if err := r.ParseMultipartForm(h.cfg.MaxBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "error": "file_too_large"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "error": "missing_file"})
		return
	}
	defer file.Close()

	name := sanitizeFilename(header.Filename)
	name = fmt.Sprintf("%d-%s", time.Now().UnixMilli(), name)

	if err := os.MkdirAll(h.cfg.Dir, 0755); err != nil {
		h.serverError(w, err)
		return
	}
	dst, err := os.Create(filepath.Join(h.cfg.Dir, name))
	if err != nil {
		h.serverError(w, err)
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		h.serverError(w, err)
		return
	}

	webPath := "/uploads/" + name
	h.logger.Info("UPLOAD", fmt.Sprintf("stored %s (%d bytes)", webPath, header.Size))
	writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "path": webPath})
}

func (h *Handler) serverError(w http.ResponseWriter, err error) {
	h.logger.Error("UPLOAD", fmt.Sprintf("upload failed: %v", err))
	writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "error": "upload_failed"})
}

// sanitizeFilename strips path components and anything outside a safe
// character set, keeping the extension usable.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		name = "upload"
	}
	return name
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
