package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"personastudio/internal/providers/replicate"
)

func upstreamResponse(status int, headers map[string]string, body string) *http.Response {
	resp := &http.Response{
		StatusCode: status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
	for k, v := range headers {
		resp.Header.Set(k, v)
	}
	return resp
}

func TestFileProxyStreamsUpstream(t *testing.T) {
	gw := &stubGateway{fileResp: upstreamResponse(http.StatusOK, map[string]string{
		"Content-Type":   "video/mp4",
		"Content-Length": "11",
		"Accept-Ranges":  "bytes",
	}, "video bytes")}
	app := newTestApp(t, gw, &stubPersonaStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/files?id=file-1", nil)
	rec := httptest.NewRecorder()
	app.FileProxy(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Body.String() != "video bytes" {
		t.Fatalf("body = %q", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "video/mp4" {
		t.Fatalf("content type = %q", ct)
	}
	if ar := rec.Header().Get("Accept-Ranges"); ar != "bytes" {
		t.Fatalf("accept ranges = %q", ar)
	}
	if gw.gotID != "file-1" {
		t.Fatalf("file id = %q", gw.gotID)
	}
}

func TestFileProxyForwardsRange(t *testing.T) {
	gw := &stubGateway{fileResp: upstreamResponse(http.StatusPartialContent, map[string]string{
		"Content-Type":  "video/mp4",
		"Content-Range": "bytes 0-99/2048",
	}, "chunk")}
	app := newTestApp(t, gw, &stubPersonaStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/files?id=file-1", nil)
	req.Header.Set("Range", "bytes=0-99")
	rec := httptest.NewRecorder()
	app.FileProxy(rec, req)

	if gw.gotRange != "bytes=0-99" {
		t.Fatalf("forwarded range = %q", gw.gotRange)
	}
	if rec.Code != http.StatusPartialContent {
		t.Fatalf("status = %d, want 206 passed through", rec.Code)
	}
	if cr := rec.Header().Get("Content-Range"); cr != "bytes 0-99/2048" {
		t.Fatalf("content range = %q", cr)
	}
}

func TestFileProxyErrors(t *testing.T) {
	t.Run("missing id", func(t *testing.T) {
		app := newTestApp(t, &stubGateway{}, &stubPersonaStore{})
		req := httptest.NewRequest(http.MethodGet, "/api/files", nil)
		rec := httptest.NewRecorder()
		app.FileProxy(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
		if body := decodeBody(t, rec); body["code"] != "FILE_ID_REQUIRED" {
			t.Fatalf("code = %v", body["code"])
		}
	})

	t.Run("upstream not found", func(t *testing.T) {
		gw := &stubGateway{fileErr: &replicate.APIError{StatusCode: http.StatusNotFound, Detail: "gone"}}
		app := newTestApp(t, gw, &stubPersonaStore{})
		req := httptest.NewRequest(http.MethodGet, "/api/files?id=gone", nil)
		rec := httptest.NewRecorder()
		app.FileProxy(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d", rec.Code)
		}
		if body := decodeBody(t, rec); body["code"] != "FILE_NOT_FOUND" {
			t.Fatalf("code = %v", body["code"])
		}
	})
}
