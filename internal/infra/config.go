package infra

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAIImageModel string
	MockGeneration   bool
	AssetsDir        string
	OutputDir        string
	FontPath         string
	ThemesPath       string
	FFmpegPath       string
	AudioPath        string
	FrameRate        int
	ClipSeconds      int
	ComposeLimit     int
	ComposeWindow    time.Duration
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIImageModel: getEnv("OPENAI_IMAGE_MODEL", "dall-e-3"),
		MockGeneration:   getEnvBool("MOCK_GENERATION", false),
		AssetsDir:        getEnv("ASSETS_DIR", "assets"),
		OutputDir:        getEnv("OUTPUT_DIR", "static/output"),
		FontPath:         os.Getenv("FONT_PATH"),
		ThemesPath:       os.Getenv("THEMES_PATH"),
		FFmpegPath:       getEnv("FFMPEG_PATH", "ffmpeg"),
		AudioPath:        os.Getenv("AUDIO_PATH"),
		FrameRate:        getEnvInt("FRAME_RATE", 24),
		ClipSeconds:      getEnvInt("CLIP_SECONDS", 4),
		ComposeLimit:     getEnvInt("COMPOSE_RATE_LIMIT", 10),
		ComposeWindow:    time.Second * time.Duration(getEnvInt("COMPOSE_RATE_WINDOW_SECONDS", 60)),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 300)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	return cfg, nil
}

// GenerationReady reports whether a usable image-generation configuration
// exists: either mock mode is on or an API key is available. The override
// stands in for a per-request credential and never touches the process env.
func (c *Config) GenerationReady(override string) bool {
	if c.MockGeneration {
		return true
	}
	if strings.TrimSpace(override) != "" {
		return true
	}
	return strings.TrimSpace(c.OpenAIAPIKey) != ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on":
		return true
	default:
		return false
	}
}
