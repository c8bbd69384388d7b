package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"liminal-reels/internal/http/handlers"
	"liminal-reels/internal/http/httpapi"
	"liminal-reels/internal/infra"
	"liminal-reels/internal/jobs"
	"liminal-reels/internal/reel"
)

type stubComposer struct {
	mu       sync.Mutex
	requests []reel.ComposeRequest
	filename string
	err      error
	block    chan struct{}
}

func (c *stubComposer) Compose(ctx context.Context, req reel.ComposeRequest) (string, error) {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	c.mu.Unlock()
	if c.block != nil {
		<-c.block
	}
	return c.filename, c.err
}

func (c *stubComposer) lastRequest(t *testing.T) reel.ComposeRequest {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.requests) == 0 {
		t.Fatal("composer was never called")
	}
	return c.requests[len(c.requests)-1]
}

func newTestServer(t *testing.T, composer *stubComposer) (*httptest.Server, *handlers.App) {
	t.Helper()
	app := handlers.NewApp(zerolog.Nop(), composer, jobs.NewTracker())
	cfg := &infra.Config{OutputDir: t.TempDir()}
	srv := httptest.NewServer(httpapi.NewRouter(app, zerolog.Nop(), cfg))
	t.Cleanup(srv.Close)
	return srv, app
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, &stubComposer{filename: "x.mp4"})

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("status field = %q, want ok", body["status"])
	}
}

func TestCreateReelRendersResultPage(t *testing.T) {
	composer := &stubComposer{filename: "output_reel_ab12cd34.mp4"}
	srv, _ := newTestServer(t, composer)

	resp, err := http.PostForm(srv.URL+"/create", map[string][]string{
		"theme":   {"classic"},
		"api_key": {"sk-request-scoped"},
	})
	if err != nil {
		t.Fatalf("POST /create: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	page, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(page), "/static/output/output_reel_ab12cd34.mp4") {
		t.Fatalf("result page does not reference the video: %s", page)
	}

	req := composer.lastRequest(t)
	if req.Theme != "classic" || req.APIKey != "sk-request-scoped" {
		t.Fatalf("compose request = %+v, want theme + per-request key threaded through", req)
	}
}

func TestCreateReelFailureReturns500WithErrorText(t *testing.T) {
	composer := &stubComposer{err: errors.New("image generation failed: openai status 500")}
	srv, _ := newTestServer(t, composer)

	resp, err := http.PostForm(srv.URL+"/create", map[string][]string{"theme": {"classic"}})
	if err != nil {
		t.Fatalf("POST /create: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(body), "image generation failed") {
		t.Fatalf("body %q does not carry the error text", body)
	}
}

func TestGenerateWebhookAcknowledgesImmediately(t *testing.T) {
	block := make(chan struct{})
	composer := &stubComposer{filename: "output_reel_slow.mp4", block: block}
	srv, app := newTestServer(t, composer)

	start := time.Now()
	resp, err := http.Post(srv.URL+"/generate", "application/json", strings.NewReader(`{"theme": "classic"}`))
	if err != nil {
		t.Fatalf("POST /generate: %v", err)
	}
	defer resp.Body.Close()
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("webhook took %v, must return before composition finishes", elapsed)
	}
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "started" {
		t.Fatalf("status field = %q, want started", body["status"])
	}
	jobID := body["job_id"]
	if jobID == "" {
		t.Fatal("response must carry a job id")
	}

	// Composition is still blocked; the job must be queued or running.
	job, err := app.Jobs.Get(jobID)
	if err != nil {
		t.Fatalf("job lookup: %v", err)
	}
	if job.Status == jobs.StatusDone || job.Status == jobs.StatusFailed {
		t.Fatalf("job finished before composer unblocked: %q", job.Status)
	}

	close(block)
	waitForJob(t, app.Jobs, jobID, jobs.StatusDone)
	job, _ = app.Jobs.Get(jobID)
	if job.Output != "output_reel_slow.mp4" {
		t.Fatalf("job output = %q, want the composed filename", job.Output)
	}
}

func TestGenerateWebhookDefaultsThemeOnEmptyBody(t *testing.T) {
	composer := &stubComposer{filename: "x.mp4"}
	srv, app := newTestServer(t, composer)

	resp, err := http.Post(srv.URL+"/generate", "application/json", strings.NewReader(""))
	if err != nil {
		t.Fatalf("POST /generate: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
	var body map[string]string
	_ = json.NewDecoder(resp.Body).Decode(&body)
	waitForJob(t, app.Jobs, body["job_id"], jobs.StatusDone)
	if req := composer.lastRequest(t); req.Theme != "classic" {
		t.Fatalf("theme = %q, want classic default", req.Theme)
	}
}

func TestGenerateWebhookSwallowsCompositionFailure(t *testing.T) {
	composer := &stubComposer{err: errors.New("boom")}
	srv, app := newTestServer(t, composer)

	resp, err := http.Post(srv.URL+"/generate", "application/json", strings.NewReader(`{"theme":"classic"}`))
	if err != nil {
		t.Fatalf("POST /generate: %v", err)
	}
	defer resp.Body.Close()
	// The ack went out before the failure; it stays 202.
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
	var body map[string]string
	_ = json.NewDecoder(resp.Body).Decode(&body)

	waitForJob(t, app.Jobs, body["job_id"], jobs.StatusFailed)
	job, _ := app.Jobs.Get(body["job_id"])
	if job.Error != "boom" {
		t.Fatalf("job error = %q, want the failure text", job.Error)
	}
}

func TestJobStatusUnknownJob(t *testing.T) {
	srv, _ := newTestServer(t, &stubComposer{filename: "x.mp4"})

	resp, err := http.Get(srv.URL + "/jobs/not-a-job")
	if err != nil {
		t.Fatalf("GET /jobs: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func waitForJob(t *testing.T, tracker *jobs.Tracker, id string, want jobs.Status) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		job, err := tracker.Get(id)
		if err == nil && job.Status == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	job, _ := tracker.Get(id)
	t.Fatalf("job %s status = %q, want %q", id, job.Status, want)
}
