package handlers

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"personastudio/internal/domain"
)

func postVoice(t *testing.T, app *App, payload string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/personas/voice", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	app.SaveVoicePersona(rec, req)
	return rec
}

func TestSaveVoicePersonaSuccess(t *testing.T) {
	store := &stubPersonaStore{persona: &domain.Persona{ID: "p-1", UserID: "user-1"}}
	app := newTestApp(t, &stubGateway{}, store)

	rec := postVoice(t, app, `{
		"persona_id": "p-1",
		"user": {"id": "user-1", "plan": "premium"},
		"voice_status": "ready"
	}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["success"] != true || body["status"] != "ready" {
		t.Fatalf("body = %v", body)
	}
	if len(store.upserts) != 1 {
		t.Fatalf("upserts = %d, want 1", len(store.upserts))
	}
	up := store.upserts[0]
	if up.PersonaID != "p-1" || up.UserID != "user-1" || up.VoiceStatus != domain.TrainingStatusReady {
		t.Fatalf("upsert = %+v", up)
	}
	if up.VisualStatus != "" {
		t.Fatalf("visual status must stay untouched, got %q", up.VisualStatus)
	}
}

func TestSaveVoicePersonaPremiumFlagAlone(t *testing.T) {
	store := &stubPersonaStore{persona: &domain.Persona{ID: "p-1", UserID: "user-1"}}
	app := newTestApp(t, &stubGateway{}, store)

	rec := postVoice(t, app, `{
		"persona_id": "p-1",
		"user": {"id": "user-1", "plan": "free", "isPremium": true},
		"voice_status": "training"
	}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestSaveVoicePersonaDenials(t *testing.T) {
	tests := []struct {
		name    string
		store   *stubPersonaStore
		payload string
		status  int
		code    string
	}{
		{
			name:    "invalid json",
			store:   &stubPersonaStore{},
			payload: `{broken`,
			status:  http.StatusBadRequest,
			code:    "INVALID_PAYLOAD",
		},
		{
			name:    "missing persona id",
			store:   &stubPersonaStore{},
			payload: `{"user": {"id": "user-1", "plan": "premium"}, "voice_status": "ready"}`,
			status:  http.StatusBadRequest,
			code:    "PERSONA_ID_REQUIRED",
		},
		{
			name:    "missing user id",
			store:   &stubPersonaStore{},
			payload: `{"persona_id": "p-1", "user": {"plan": "premium"}, "voice_status": "ready"}`,
			status:  http.StatusBadRequest,
			code:    "USER_ID_REQUIRED",
		},
		{
			name:    "free user",
			store:   &stubPersonaStore{},
			payload: `{"persona_id": "p-1", "user": {"id": "user-1", "plan": "free"}, "voice_status": "ready"}`,
			status:  http.StatusForbidden,
			code:    "PREMIUM_REQUIRED",
		},
		{
			name:    "persona not found",
			store:   &stubPersonaStore{findErr: domain.ErrNotFound},
			payload: `{"persona_id": "p-404", "user": {"id": "user-1", "plan": "premium"}, "voice_status": "ready"}`,
			status:  http.StatusNotFound,
			code:    "PERSONA_NOT_FOUND",
		},
		{
			name:    "foreign persona",
			store:   &stubPersonaStore{persona: &domain.Persona{ID: "p-1", UserID: "someone-else"}},
			payload: `{"persona_id": "p-1", "user": {"id": "user-1", "plan": "premium"}, "voice_status": "ready"}`,
			status:  http.StatusForbidden,
			code:    "NOT_PERSONA_OWNER",
		},
		{
			name:    "unknown status",
			store:   &stubPersonaStore{persona: &domain.Persona{ID: "p-1", UserID: "user-1"}},
			payload: `{"persona_id": "p-1", "user": {"id": "user-1", "plan": "premium"}, "voice_status": "done"}`,
			status:  http.StatusBadRequest,
			code:    "VOICE_STATUS_INVALID",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t, &stubGateway{}, tc.store)
			rec := postVoice(t, app, tc.payload)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d, body = %s", rec.Code, tc.status, rec.Body.String())
			}
			if body := decodeBody(t, rec); body["code"] != tc.code {
				t.Fatalf("code = %v, want %s", body["code"], tc.code)
			}
			if len(tc.store.upserts) != 0 {
				t.Fatalf("denied request reached the store: %+v", tc.store.upserts)
			}
		})
	}
}

func trainForm(t *testing.T, userID string, photos map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if userID != "" {
		if err := mw.WriteField("user_id", userID); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for name, data := range photos {
		part, err := mw.CreateFormFile("photos", name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("write photo: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestTrainPersona(t *testing.T) {
	store := &stubPersonaStore{}
	app := newTestApp(t, &stubGateway{}, store)

	body, contentType := trainForm(t, "user-1", map[string][]byte{
		"face-1.jpg": []byte("jpeg one"),
		"face-2.jpg": []byte("jpeg two"),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/personas/train", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	app.TrainPersona(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody(t, rec)
	personaID, _ := resp["persona_id"].(string)
	if personaID == "" {
		t.Fatalf("persona_id missing: %v", resp)
	}
	if resp["status"] != "training" {
		t.Fatalf("status = %v", resp["status"])
	}
	archive, _ := resp["archive"].(string)
	if !strings.HasSuffix(archive, "/training/"+personaID+".zip") {
		t.Fatalf("archive = %q", archive)
	}

	if len(store.upserts) != 1 {
		t.Fatalf("upserts = %d, want 1", len(store.upserts))
	}
	up := store.upserts[0]
	if up.UserID != "user-1" || up.VisualStatus != domain.TrainingStatusTraining {
		t.Fatalf("upsert = %+v", up)
	}
	if up.TrainingArchive != "training/"+personaID+".zip" {
		t.Fatalf("archive key = %q", up.TrainingArchive)
	}

	if _, err := app.Store.Resolve(up.TrainingArchive); err != nil {
		t.Fatalf("archive not stored: %v", err)
	}
}

func TestTrainPersonaValidation(t *testing.T) {
	t.Run("missing user id", func(t *testing.T) {
		app := newTestApp(t, &stubGateway{}, &stubPersonaStore{})
		body, contentType := trainForm(t, "", map[string][]byte{"a.jpg": []byte("x")})
		req := httptest.NewRequest(http.MethodPost, "/api/personas/train", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		app.TrainPersona(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
		if body := decodeBody(t, rec); body["code"] != "USER_ID_REQUIRED" {
			t.Fatalf("code = %v", body["code"])
		}
	})

	t.Run("missing photos", func(t *testing.T) {
		app := newTestApp(t, &stubGateway{}, &stubPersonaStore{})
		body, contentType := trainForm(t, "user-1", nil)
		req := httptest.NewRequest(http.MethodPost, "/api/personas/train", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		app.TrainPersona(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
		if body := decodeBody(t, rec); body["code"] != "PHOTOS_REQUIRED" {
			t.Fatalf("code = %v", body["code"])
		}
	})
}

func TestPersonasList(t *testing.T) {
	now := time.Now().UTC()
	store := &stubPersonaStore{list: []domain.Persona{
		{
			ID:           "p-2",
			UserID:       "user-1",
			VisualStatus: domain.TrainingStatusReady,
			VoiceStatus:  domain.TrainingStatusTraining,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}}
	app := newTestApp(t, &stubGateway{}, store)

	req := httptest.NewRequest(http.MethodGet, "/api/personas?user_id=user-1", nil)
	rec := httptest.NewRecorder()
	app.PersonasList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	items, ok := body["items"].([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("items = %v", body["items"])
	}
	item := items[0].(map[string]any)
	if item["id"] != "p-2" || item["visual_status"] != "ready" || item["voice_status"] != "training" {
		t.Fatalf("item = %v", item)
	}
}

func TestPersonasListEmpty(t *testing.T) {
	app := newTestApp(t, &stubGateway{}, &stubPersonaStore{})
	req := httptest.NewRequest(http.MethodGet, "/api/personas", nil)
	rec := httptest.NewRecorder()
	app.PersonasList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, `"items":[]`) {
		t.Fatalf("empty list must serialize as [], got %s", body)
	}
}

func postTrain(t *testing.T, app *App, fields map[string]string, photos ...formFile) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, fields, photos...)
	req := httptest.NewRequest(http.MethodPost, "/api/personas/train", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	app.TrainPersona(rec, req)
	return rec
}

func TestTrainPersonaRejectsForeignPersona(t *testing.T) {
	store := &stubPersonaStore{persona: &domain.Persona{ID: "p-1", UserID: "legit-owner"}}
	app := newTestApp(t, &stubGateway{}, store)

	rec := postTrain(t, app,
		map[string]string{"user_id": "attacker", "persona_id": "p-1"},
		formFile{field: "photos", name: "face.jpg", data: []byte("jpeg")},
	)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403, body = %s", rec.Code, rec.Body.String())
	}
	if body := decodeBody(t, rec); body["code"] != "NOT_PERSONA_OWNER" {
		t.Fatalf("code = %v", body["code"])
	}
	if len(store.upserts) != 0 {
		t.Fatalf("foreign retrain reached the store: %+v", store.upserts)
	}
}

func TestTrainPersonaRetrainByOwner(t *testing.T) {
	store := &stubPersonaStore{persona: &domain.Persona{ID: "p-1", UserID: "user-1"}}
	app := newTestApp(t, &stubGateway{}, store)

	rec := postTrain(t, app,
		map[string]string{"user_id": "user-1", "persona_id": "p-1"},
		formFile{field: "photos", name: "face.jpg", data: []byte("jpeg")},
	)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if len(store.upserts) != 1 || store.upserts[0].PersonaID != "p-1" {
		t.Fatalf("upserts = %+v", store.upserts)
	}
}

func TestTrainPersonaAbsentIDCreates(t *testing.T) {
	store := &stubPersonaStore{findErr: domain.ErrNotFound}
	app := newTestApp(t, &stubGateway{}, store)

	rec := postTrain(t, app,
		map[string]string{"user_id": "user-1", "persona_id": "p-new"},
		formFile{field: "photos", name: "face.jpg", data: []byte("jpeg")},
	)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if len(store.upserts) != 1 || store.upserts[0].PersonaID != "p-new" {
		t.Fatalf("upserts = %+v", store.upserts)
	}
}

func TestTrainPersonaLookupFailure(t *testing.T) {
	store := &stubPersonaStore{findErr: errors.New("connection reset")}
	app := newTestApp(t, &stubGateway{}, store)

	rec := postTrain(t, app,
		map[string]string{"user_id": "user-1", "persona_id": "p-1"},
		formFile{field: "photos", name: "face.jpg", data: []byte("jpeg")},
	)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if body := decodeBody(t, rec); body["code"] != "PERSONA_LOOKUP_FAILED" {
		t.Fatalf("code = %v", body["code"])
	}
	if len(store.upserts) != 0 {
		t.Fatalf("failed lookup reached the store: %+v", store.upserts)
	}
}
