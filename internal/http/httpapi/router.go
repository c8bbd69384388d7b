package httpapi

import (
	"net/http"

	"liminal-reels/internal/http/handlers"
	"liminal-reels/internal/infra"
	appmiddleware "liminal-reels/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the HTTP surface: the synchronous create endpoint, the
// webhook trigger, job status, liveness, and public serving of encoded
// videos from the output directory. The two composition triggers sit behind
// a per-client throttle; a ComposeLimit of zero disables it.
func NewRouter(app *handlers.App, logger infra.Logger, cfg *infra.Config) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		appmiddleware.Logger(logger),
	)

	r.Get("/health", app.Health)
	r.Get("/jobs/{id}", app.JobStatus)

	r.Group(func(r chi.Router) {
		if cfg.ComposeLimit > 0 {
			r.Use(appmiddleware.ComposeLimit(cfg.ComposeLimit, cfg.ComposeWindow))
		}
		r.Post("/create", app.CreateReel)
		r.Post("/generate", app.GenerateWebhook)
	})

	fs := http.StripPrefix("/static/output/", http.FileServer(http.Dir(cfg.OutputDir)))
	r.Get("/static/output/*", fs.ServeHTTP)

	return r
}
