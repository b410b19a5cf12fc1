package handlers

import (
	"net/http"
	"strings"
)

// faceSwapModels maps the caller-facing model names onto gateway model
// identifiers.
var faceSwapModels = map[string]string{
	"instantid": "zsxkib/instant-id",
	"faceswap":  "codeplugtech/face-swap",
}

const defaultFaceSwapModel = "faceswap"

// FaceSwap accepts a source face and a target image and submits a swap job
// against the selected backend model.
func (a *App) FaceSwap(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "INVALID_FORM", "expected multipart form data")
		return
	}
	sourceURL, errCode := a.formFileAsDataURL(r, "image")
	if errCode != "" {
		a.error(w, http.StatusBadRequest, errCode, "image file is required")
		return
	}
	targetURL, errCode := a.formFileAsDataURL(r, "target_image")
	if errCode != "" {
		a.error(w, http.StatusBadRequest, errCode, "target_image file is required")
		return
	}
	name := strings.TrimSpace(r.FormValue("model"))
	if name == "" {
		name = defaultFaceSwapModel
	}
	model, ok := faceSwapModels[name]
	if !ok {
		a.error(w, http.StatusBadRequest, "MODEL_INVALID", "model must be one of: instantid, faceswap")
		return
	}

	input := map[string]any{
		"swap_image":   sourceURL,
		"target_image": targetURL,
	}
	pred, err := a.Gateway.Create(r.Context(), model, input)
	if err != nil {
		a.upstreamError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"prediction_id": pred.ID,
		"status":        pred.Status,
		"model":         name,
	})
}
