package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"personastudio/internal/domain"
	"personastudio/internal/gate"
	"personastudio/internal/infra"
	"personastudio/internal/providers/replicate"
	"personastudio/internal/storage"
)

// Gateway is the slice of the prediction client the handlers depend on.
type Gateway interface {
	Create(ctx context.Context, model string, input map[string]any) (*replicate.Prediction, error)
	CreateWithFallback(ctx context.Context, models []string, input map[string]any) (*replicate.Prediction, error)
	Get(ctx context.Context, id string) (*replicate.Prediction, error)
	FetchFile(ctx context.Context, id, rangeHeader string) (*http.Response, error)
}

// PersonaStore is the persistence façade the handlers depend on.
type PersonaStore interface {
	FindByID(ctx context.Context, id string) (*domain.Persona, error)
	List(ctx context.Context, ownerID string) ([]domain.Persona, error)
	Upsert(ctx context.Context, params domain.PersonaUpsert) error
}

// App carries the wired dependencies for every request handler.
type App struct {
	Config   *infra.Config
	Logger   infra.Logger
	Gateway  Gateway
	Personas PersonaStore
	Store    *storage.FileStore
}

func NewApp(cfg *infra.Config, logger infra.Logger, gateway Gateway, personas PersonaStore, store *storage.FileStore) *App {
	return &App{
		Config:   cfg,
		Logger:   logger,
		Gateway:  gateway,
		Personas: personas,
		Store:    store,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]any{"error": message, "code": code})
}

// deny writes a gating denial verbatim.
func (a *App) deny(w http.ResponseWriter, res gate.Result) {
	a.json(w, res.Status, res.Body)
}

// upstreamError converts gateway failures into the error taxonomy:
// configuration problems and remote failures both map to 500, with the
// upstream detail preserved for the operator.
func (a *App) upstreamError(w http.ResponseWriter, err error) {
	if replicate.IsConfigError(err) {
		a.error(w, http.StatusInternalServerError, "GATEWAY_NOT_CONFIGURED", err.Error())
		return
	}
	a.error(w, http.StatusInternalServerError, "UPSTREAM_ERROR", err.Error())
}

// publicURL joins a storage key onto the configured public base URL.
func (a *App) publicURL(key string) string {
	base := ""
	if a.Config != nil {
		base = a.Config.StorageBaseURL
	}
	if base == "" {
		return "/" + key
	}
	return strings.TrimRight(base, "/") + "/" + key
}
