package handlers

import (
	"io"
	"net/http"
	"strings"

	"personastudio/internal/providers/replicate"
)

// FileProxy streams a generated file from the gateway to the caller,
// forwarding range requests and preserving the upstream content headers.
// The body is copied through without buffering.
func (a *App) FileProxy(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		a.error(w, http.StatusBadRequest, "FILE_ID_REQUIRED", "id query parameter is required")
		return
	}
	resp, err := a.Gateway.FetchFile(r.Context(), id, r.Header.Get("Range"))
	if err != nil {
		if replicate.IsNotFound(err) {
			a.error(w, http.StatusNotFound, "FILE_NOT_FOUND", "file not found")
			return
		}
		a.upstreamError(w, err)
		return
	}
	defer resp.Body.Close()

	for _, header := range []string{"Content-Type", "Content-Length", "Content-Range", "Accept-Ranges"} {
		if v := resp.Header.Get(header); v != "" {
			w.Header().Set(header, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		// Headers are already on the wire; only the log can carry this.
		a.Logger.Warn().Err(err).Str("file_id", id).Msg("file proxy stream interrupted")
	}
}
