package image

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"liminal-reels/internal/domain"
	"liminal-reels/internal/storage"
)

// OpenAIOptions configures the live generation client.
type OpenAIOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Store      *storage.AssetStore
	Logger     zerolog.Logger
}

// OpenAIProvider generates images through the OpenAI images API and
// downloads the result to local storage. Failures are surfaced as a single
// generation error carrying the underlying cause; there is no retry and no
// partial file is ever returned.
type OpenAIProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	store   *storage.AssetStore
	logger  zerolog.Logger
}

const openAIDefaultTimeout = 120 * time.Second

const defaultImageModel = "dall-e-3"

type openAIImageRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	Size    string `json:"size"`
	Quality string `json:"quality"`
	N       int    `json:"n"`
}

type openAIImageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// NewOpenAIProvider constructs the live provider. The API key may be empty
// here as long as every Acquire call carries an override; the key presence
// is checked per call.
func NewOpenAIProvider(opts OpenAIOptions) *OpenAIProvider {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultImageModel
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: openAIDefaultTimeout}
	}
	return &OpenAIProvider{
		apiKey:  strings.TrimSpace(opts.APIKey),
		model:   model,
		baseURL: baseURL,
		client:  client,
		store:   opts.Store,
		logger:  opts.Logger,
	}
}

// Acquire requests one high-quality image for the prompt, downloads the
// returned URL, and persists the bytes under a uniquely named local file.
func (p *OpenAIProvider) Acquire(ctx context.Context, req Request) (string, error) {
	key := strings.TrimSpace(req.APIKey)
	if key == "" {
		key = p.apiKey
	}
	if key == "" {
		return "", fmt.Errorf("%w: missing OPENAI_API_KEY and mock mode is off", domain.ErrConfiguration)
	}

	payload := openAIImageRequest{
		Model:   p.model,
		Prompt:  req.Prompt,
		Size:    string(req.Size),
		Quality: "hd",
		N:       1,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", generationErr("encode request", err)
	}
	endpoint := p.baseURL + "/images/generations"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", generationErr("build request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+key)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", generationErr("http request", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var out openAIImageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return "", generationErr("generate", fmt.Errorf("openai status %d", resp.StatusCode))
		}
		return "", generationErr("decode response", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		if out.Error != nil && out.Error.Message != "" {
			return "", generationErr("generate", fmt.Errorf("openai: %s", out.Error.Message))
		}
		return "", generationErr("generate", fmt.Errorf("openai status %d", resp.StatusCode))
	}
	if len(out.Data) == 0 || strings.TrimSpace(out.Data[0].URL) == "" {
		return "", generationErr("generate", errors.New("openai returned no image url"))
	}

	imgBytes, err := p.download(ctx, out.Data[0].URL)
	if err != nil {
		return "", generationErr("download", err)
	}
	path, err := p.store.WriteAsset(ctx, "gen", "png", imgBytes)
	if err != nil {
		return "", generationErr("persist", err)
	}
	p.logger.Info().Str("path", path).Str("model", p.model).Msg("image generated")
	return path, nil
}

func (p *OpenAIProvider) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

var _ Provider = (*OpenAIProvider)(nil)
