package handlers

import (
	"net/http"
	"strings"

	"personastudio/internal/domain"
	"personastudio/internal/extract"
	"personastudio/internal/providers/replicate"
)

// LipSyncStatus polls a lip-sync prediction. The video URL is extracted
// only from succeeded jobs; while the job is still running the field stays
// null regardless of what the output payload contains.
func (a *App) LipSyncStatus(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		a.error(w, http.StatusBadRequest, "PREDICTION_ID_REQUIRED", "id query parameter is required")
		return
	}
	pred, err := a.Gateway.Get(r.Context(), id)
	if err != nil {
		if replicate.IsNotFound(err) {
			a.error(w, http.StatusNotFound, "PREDICTION_NOT_FOUND", "prediction not found")
			return
		}
		a.upstreamError(w, err)
		return
	}

	resp := map[string]any{
		"status":    pred.Status,
		"video_url": nil,
		"error":     nil,
		"output":    nil,
	}
	if pred.Status == domain.PredictionStatusSucceeded {
		out := pred.DecodedOutput()
		resp["output"] = out
		if url, ok := extract.URL(out, extract.StrictFirst); ok {
			resp["video_url"] = url
		}
	}
	if msg := pred.ErrorMessage(); msg != "" {
		resp["error"] = msg
	}
	a.json(w, http.StatusOK, resp)
}
