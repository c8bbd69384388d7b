package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"liminal-reels/internal/reel"
)

const defaultTheme = "classic"

var resultPage = template.Must(template.New("result").Parse(`<!doctype html>
<html>
<head><title>Your Reel</title></head>
<body>
<h1>Reel ready</h1>
<video src="{{.VideoURL}}" controls autoplay loop muted playsinline width="360"></video>
<p><a href="{{.VideoURL}}" download>Download</a></p>
</body>
</html>
`))

// CreateReel runs a composition synchronously and renders a result page
// referencing the produced video's public path. The optional api_key form
// field is threaded through as a per-request override; the process
// environment is never touched.
func (a *App) CreateReel(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid form body")
		return
	}
	theme := r.FormValue("theme")
	if theme == "" {
		theme = defaultTheme
	}

	filename, err := a.Composer.Compose(r.Context(), reel.ComposeRequest{
		Theme:  theme,
		APIKey: r.FormValue("api_key"),
	})
	if err != nil {
		a.Logger.Error().Err(err).Str("theme", theme).Msg("synchronous composition failed")
		http.Error(w, fmt.Sprintf("An error occurred: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = resultPage.Execute(w, map[string]string{
		"VideoURL": "/static/output/" + filename,
	})
}

type generateRequest struct {
	Theme string `json:"theme"`
}

// GenerateWebhook accepts a webhook trigger and acknowledges immediately
// with 202 while composition proceeds on a detached goroutine. The job id in
// the response is the only handle to the eventual outcome.
func (a *App) GenerateWebhook(w http.ResponseWriter, r *http.Request) {
	var body generateRequest
	// A missing or malformed body simply falls back to the default theme,
	// matching webhook callers that send no payload.
	_ = json.NewDecoder(r.Body).Decode(&body)
	theme := body.Theme
	if theme == "" {
		theme = defaultTheme
	}

	job := a.Jobs.Create(theme)
	go a.runComposition(job.ID, theme)

	a.json(w, http.StatusAccepted, map[string]string{
		"status":  "started",
		"message": fmt.Sprintf("Generation started for theme: %s", theme),
		"job_id":  job.ID,
	})
}

// runComposition executes a webhook-triggered composition. The triggering
// call has already returned 202, so failures are logged and recorded on the
// job but never surfaced over HTTP.
func (a *App) runComposition(jobID, theme string) {
	a.Jobs.Start(jobID)
	a.Logger.Info().Str("job_id", jobID).Str("theme", theme).Msg("background composition started")

	filename, err := a.Composer.Compose(context.Background(), reel.ComposeRequest{Theme: theme})
	if err != nil {
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("background composition failed")
		a.Jobs.Fail(jobID, err)
		return
	}
	a.Jobs.Complete(jobID, filename)
	a.Logger.Info().Str("job_id", jobID).Str("filename", filename).Msg("background composition finished")
}

// JobStatus reports the status record of an asynchronous composition.
func (a *App) JobStatus(w http.ResponseWriter, r *http.Request) {
	job, err := a.Jobs.Get(chi.URLParam(r, "id"))
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "job not found")
		return
	}
	a.json(w, http.StatusOK, job)
}
