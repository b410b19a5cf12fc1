package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"personastudio/internal/providers/replicate"
)

func TestFaceSwapDefaultModel(t *testing.T) {
	gw := &stubGateway{pred: &replicate.Prediction{ID: "pred-5", Status: "starting"}}
	app := newTestApp(t, gw, &stubPersonaStore{})

	body, contentType := multipartBody(t, nil,
		formFile{field: "image", name: "face.jpg", data: []byte("face bytes")},
		formFile{field: "target_image", name: "scene.jpg", data: []byte("scene bytes")},
	)
	req := httptest.NewRequest(http.MethodPost, "/api/face-swap", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	app.FaceSwap(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody(t, rec)
	if resp["prediction_id"] != "pred-5" || resp["model"] != "faceswap" {
		t.Fatalf("response = %v", resp)
	}

	if gw.gotModel != "codeplugtech/face-swap" {
		t.Fatalf("model = %q", gw.gotModel)
	}
	swap, _ := gw.gotInput["swap_image"].(string)
	target, _ := gw.gotInput["target_image"].(string)
	if !strings.HasPrefix(swap, "data:") || !strings.HasPrefix(target, "data:") {
		t.Fatalf("inputs = %v, want data urls", gw.gotInput)
	}
}

func TestFaceSwapNamedModel(t *testing.T) {
	gw := &stubGateway{pred: &replicate.Prediction{ID: "pred-6", Status: "starting"}}
	app := newTestApp(t, gw, &stubPersonaStore{})

	body, contentType := multipartBody(t, map[string]string{"model": "instantid"},
		formFile{field: "image", name: "face.jpg", data: []byte("a")},
		formFile{field: "target_image", name: "scene.jpg", data: []byte("b")},
	)
	req := httptest.NewRequest(http.MethodPost, "/api/face-swap", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	app.FaceSwap(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if gw.gotModel != "zsxkib/instant-id" {
		t.Fatalf("model = %q", gw.gotModel)
	}
}

func TestFaceSwapValidation(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		files  []formFile
		code   string
	}{
		{
			name: "missing source image",
			files: []formFile{
				{field: "target_image", name: "scene.jpg", data: []byte("b")},
			},
			code: "IMAGE_REQUIRED",
		},
		{
			name: "missing target image",
			files: []formFile{
				{field: "image", name: "face.jpg", data: []byte("a")},
			},
			code: "TARGET_IMAGE_REQUIRED",
		},
		{
			name:   "unknown model",
			fields: map[string]string{"model": "deepfake-9000"},
			files: []formFile{
				{field: "image", name: "face.jpg", data: []byte("a")},
				{field: "target_image", name: "scene.jpg", data: []byte("b")},
			},
			code: "MODEL_INVALID",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gw := &stubGateway{}
			app := newTestApp(t, gw, &stubPersonaStore{})
			body, contentType := multipartBody(t, tc.fields, tc.files...)
			req := httptest.NewRequest(http.MethodPost, "/api/face-swap", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			app.FaceSwap(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
			}
			if body := decodeBody(t, rec); body["code"] != tc.code {
				t.Fatalf("code = %v, want %s", body["code"], tc.code)
			}
			if gw.createCalls != 0 {
				t.Fatalf("gateway saw %d calls, want 0", gw.createCalls)
			}
		})
	}
}
