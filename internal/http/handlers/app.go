package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"liminal-reels/internal/infra"
	"liminal-reels/internal/jobs"
	"liminal-reels/internal/reel"
)

// Composer is the slice of the reel pipeline the HTTP layer depends on.
type Composer interface {
	Compose(ctx context.Context, req reel.ComposeRequest) (string, error)
}

// App bundles the handler dependencies.
type App struct {
	Logger   infra.Logger
	Composer Composer
	Jobs     *jobs.Tracker
}

// NewApp constructs the handler container.
func NewApp(logger infra.Logger, composer Composer, tracker *jobs.Tracker) *App {
	return &App{Logger: logger, Composer: composer, Jobs: tracker}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, msg string) {
	a.json(w, status, map[string]string{"error": code, "message": msg})
}
