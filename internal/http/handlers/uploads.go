package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"personastudio/internal/storage"
)

type uploadRequest struct {
	DataURL string `json:"data_url"`
	UserID  string `json:"user_id"`
}

// UploadImage persists a base64 data URL and returns the public URL the
// client can feed back into generation requests.
func (a *App) UploadImage(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "INVALID_PAYLOAD", "invalid json payload")
		return
	}
	if strings.TrimSpace(req.DataURL) == "" {
		a.error(w, http.StatusBadRequest, "DATA_URL_REQUIRED", "data_url is required")
		return
	}
	owner := strings.TrimSpace(req.UserID)
	if owner == "" {
		owner = "anonymous"
	}
	mediaType, data, err := storage.ParseDataURL(req.DataURL)
	if err != nil {
		a.error(w, http.StatusBadRequest, "DATA_URL_INVALID", err.Error())
		return
	}
	key, err := a.Store.WriteBlob(r.Context(), "uploads/"+owner, uuid.NewString(), mediaType, data)
	if err != nil {
		a.Logger.Error().Err(err).Str("owner", owner).Msg("upload write failed")
		a.error(w, http.StatusInternalServerError, "UPLOAD_FAILED", "failed to store upload")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"public_url": a.publicURL(key),
		"key":        key,
		"mime":       mediaType,
	})
}
