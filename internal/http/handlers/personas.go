package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"personastudio/internal/domain"
	"personastudio/internal/gate"
	"personastudio/pkg/zip"
)

type saveVoiceRequest struct {
	PersonaID   string         `json:"persona_id"`
	User        domain.UserRef `json:"user"`
	VoiceStatus string         `json:"voice_status"`
}

// SaveVoicePersona records a voice training status transition. The caller
// must identify themselves, hold premium access, and own the persona; the
// status string is format-validated before any write.
func (a *App) SaveVoicePersona(w http.ResponseWriter, r *http.Request) {
	var req saveVoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "INVALID_PAYLOAD", "invalid json payload")
		return
	}
	personaID := strings.TrimSpace(req.PersonaID)
	if personaID == "" {
		a.error(w, http.StatusBadRequest, "PERSONA_ID_REQUIRED", "persona_id is required")
		return
	}

	res := gate.First(
		func() gate.Result { return gate.RequireUserID(req.User) },
		func() gate.Result { return gate.RequireVoiceTrainingAccess(req.User) },
		func() gate.Result { return gate.RequirePersonaAccess(r.Context(), a.Personas, req.User, personaID) },
	)
	if !res.OK {
		a.deny(w, res)
		return
	}

	status, err := domain.ParseTrainingStatus(req.VoiceStatus)
	if err != nil {
		a.error(w, http.StatusBadRequest, "VOICE_STATUS_INVALID", "voice_status must be one of: training, ready")
		return
	}

	upsert := domain.PersonaUpsert{
		PersonaID:   personaID,
		UserID:      req.User.ID,
		VoiceStatus: status,
	}
	if err := a.Personas.Upsert(r.Context(), upsert); err != nil {
		a.Logger.Error().Err(err).Str("persona_id", personaID).Msg("voice status save failed")
		a.error(w, http.StatusInternalServerError, "VOICE_SAVE_FAILED", "failed to save voice status")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"success": true, "status": status})
}

// TrainPersona accepts a set of photos, archives them, and creates (or
// refreshes) the persona record with visual training in progress.
func (a *App) TrainPersona(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "INVALID_FORM", "expected multipart form data")
		return
	}
	userID := strings.TrimSpace(r.FormValue("user_id"))
	if userID == "" {
		a.error(w, http.StatusBadRequest, "USER_ID_REQUIRED", "user_id is required")
		return
	}
	personaID := strings.TrimSpace(r.FormValue("persona_id"))
	if personaID == "" {
		personaID = uuid.NewString()
	} else if res := gate.RequirePersonaAccess(r.Context(), a.Personas, domain.UserRef{ID: userID}, personaID); !res.OK {
		// An absent persona is a fresh training run; anything else is a
		// real denial.
		if res.Body["code"] != gate.CodePersonaNotFound {
			a.deny(w, res)
			return
		}
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File["photos"]) == 0 {
		a.error(w, http.StatusBadRequest, "PHOTOS_REQUIRED", "at least one photo is required")
		return
	}

	var assets []zip.Asset
	for _, header := range r.MultipartForm.File["photos"] {
		file, err := header.Open()
		if err != nil {
			a.error(w, http.StatusBadRequest, "PHOTOS_UNREADABLE", "failed to read uploaded photo")
			return
		}
		data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		file.Close()
		if err != nil || len(data) == 0 {
			a.error(w, http.StatusBadRequest, "PHOTOS_UNREADABLE", "failed to read uploaded photo")
			return
		}
		assets = append(assets, zip.Asset{
			Filename: header.Filename,
			MIME:     detectMediaType(header, data),
			Data:     data,
		})
	}
	archive, err := zip.ArchiveAssets(assets)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "ARCHIVE_FAILED", "failed to archive training photos")
		return
	}
	key, err := a.Store.Write(r.Context(), "training/"+personaID+".zip", archive)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "ARCHIVE_FAILED", "failed to store training archive")
		return
	}

	upsert := domain.PersonaUpsert{
		PersonaID:       personaID,
		UserID:          userID,
		VisualStatus:    domain.TrainingStatusTraining,
		TrainingArchive: key,
	}
	if err := a.Personas.Upsert(r.Context(), upsert); err != nil {
		a.Logger.Error().Err(err).Str("persona_id", personaID).Msg("persona training save failed")
		a.error(w, http.StatusInternalServerError, "PERSONA_SAVE_FAILED", "failed to save persona")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"persona_id": personaID,
		"status":     domain.TrainingStatusTraining,
		"archive":    a.publicURL(key),
	})
}

// PersonasList returns persona records newest first, optionally filtered
// to one owner.
func (a *App) PersonasList(w http.ResponseWriter, r *http.Request) {
	personas, err := a.Personas.List(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		a.error(w, http.StatusInternalServerError, "PERSONA_LIST_FAILED", "failed to list personas")
		return
	}
	items := make([]map[string]any, 0, len(personas))
	for _, p := range personas {
		items = append(items, map[string]any{
			"id":            p.ID,
			"user_id":       p.UserID,
			"visual_status": p.VisualStatus,
			"voice_status":  p.VoiceStatus,
			"created_at":    p.CreatedAt,
			"updated_at":    p.UpdatedAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}
