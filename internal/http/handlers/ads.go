package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"personastudio/internal/domain"
	"personastudio/internal/middleware"
	"personastudio/internal/providers/prompt"
	"personastudio/internal/storage"
)

const maxUploadBytes = 32 << 20

// AdCreate accepts a subject image plus an ad prompt and submits a video
// generation job through the quality tier's model fallback chain.
func (a *App) AdCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "INVALID_FORM", "expected multipart form data")
		return
	}
	imageURL, errCode := a.formFileAsDataURL(r, "image")
	if errCode != "" {
		a.error(w, http.StatusBadRequest, errCode, "image file is required")
		return
	}
	userPrompt := strings.TrimSpace(r.FormValue("prompt"))
	if userPrompt == "" {
		a.error(w, http.StatusBadRequest, "PROMPT_REQUIRED", "prompt is required")
		return
	}
	tier, known := domain.VideoQualityByID(strings.TrimSpace(r.FormValue("quality")))
	if !known && r.FormValue("quality") != "" {
		a.error(w, http.StatusBadRequest, "QUALITY_INVALID", "unknown video quality tier")
		return
	}

	composed := prompt.ComposeAd(prompt.AdRequest{
		Prompt:  userPrompt,
		Product: r.FormValue("product"),
		Locale:  middleware.LocaleFromContext(r.Context()),
	})
	input := map[string]any{
		"prompt": composed,
		"image":  imageURL,
	}
	pred, err := a.Gateway.CreateWithFallback(r.Context(), tier.Models, input)
	if err != nil {
		a.upstreamError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"prediction_id": pred.ID,
		"status":        pred.Status,
		"credit_cost":   tier.CreditCost,
	})
}

// formFileAsDataURL reads a multipart file field and re-encodes it as the
// base64 data URL the gateway expects. The returned code is empty on
// success.
func (a *App) formFileAsDataURL(r *http.Request, field string) (string, string) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", strings.ToUpper(field) + "_REQUIRED"
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil || len(data) == 0 {
		return "", strings.ToUpper(field) + "_UNREADABLE"
	}
	return storage.EncodeDataURL(detectMediaType(header, data), data), ""
}

func detectMediaType(header *multipart.FileHeader, data []byte) string {
	if header != nil {
		if ct := header.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
			return ct
		}
	}
	return http.DetectContentType(data)
}
