package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"personastudio/internal/http/handlers"
	"personastudio/internal/middleware"
)

// Options carries the cross-cutting pieces the router wires in front of
// the handlers.
type Options struct {
	Logger         zerolog.Logger
	AllowedOrigins []string
	RateLimit      int
	CountryLookup  middleware.CountryLookup
	StaticDir      string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.CORS(opts.AllowedOrigins),
		middleware.RateLimit(opts.RateLimit, time.Minute),
		middleware.Locale("en", opts.CountryLookup),
		middleware.Logger(opts.Logger),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/ads", app.AdCreate)
		r.Post("/face-swap", app.FaceSwap)
		r.Get("/lip-sync/status", app.LipSyncStatus)
		r.Get("/viral/status", app.ViralStatus)
		r.Get("/files", app.FileProxy)
		r.Post("/uploads", app.UploadImage)
		r.Get("/video-qualities", app.VideoQualities)
		r.Route("/personas", func(r chi.Router) {
			r.Get("/", app.PersonasList)
			r.Post("/train", app.TrainPersona)
			r.Post("/voice", app.SaveVoicePersona)
		})
	})

	// Serve stored uploads and archives for development setups without a
	// CDN in front.
	if opts.StaticDir != "" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir)))
		r.Get("/static/*", fs.ServeHTTP)
	}

	return r
}
