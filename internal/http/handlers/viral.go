package handlers

import (
	"net/http"
	"strings"

	"personastudio/internal/domain"
	"personastudio/internal/extract"
	"personastudio/internal/providers/replicate"
)

// ViralStatus polls an entertainment-clip prediction. Unlike the lip-sync
// endpoint it returns the raw output alongside the extracted URL, and the
// extraction scans every list element rather than only the first.
func (a *App) ViralStatus(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("prediction_id"))
	if id == "" {
		a.error(w, http.StatusBadRequest, "PREDICTION_ID_REQUIRED", "prediction_id query parameter is required")
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
		"status": pred.Status,
		"output": pred.DecodedOutput(),
		"error":  nil,
	}
	if pred.Status == domain.PredictionStatusSucceeded {
		if url, ok := extract.URL(pred.DecodedOutput(), extract.ScanAll); ok {
			resp["url"] = url
		}
	}
	if msg := pred.ErrorMessage(); msg != "" {
		resp["error"] = msg
	}
	a.json(w, http.StatusOK, resp)
}
