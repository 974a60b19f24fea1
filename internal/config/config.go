package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fistotech04-svg/Flip-Book-Customize/internal/constants"
	"github.com/fistotech04-svg/Flip-Book-Customize/internal/media"
)

type Config struct {
	Web     WebConfig
	Session SessionConfig
	Preview PreviewConfig
	Upload  UploadConfig
}

type WebConfig struct {
	AllowedOrigins []string // extra CORS origins; localhost is always allowed
}

type SessionConfig struct {
	TTL time.Duration // lifetime of an authoring session, its uploads and its handoff payload
}

type PreviewConfig struct {
	Scale   float64       // render scale relative to 72 DPI (default 1.5)
	Workers int           // parallel renders (default 4)
	MaxSize int           // longest side of a preview in pixels (default 1920)
	Timeout time.Duration // per render (default 90s)
}

type UploadConfig struct {
	MaxBytes    int64 // 0 means unlimited
	RateLimit   int   // uploads per minute per client IP
	AcceptVideo bool  // accept video/* in addition to images and PDFs
}

// AcceptPatterns returns the MIME patterns an upload slot accepts.
func (c *UploadConfig) AcceptPatterns() []string {
	return media.AcceptPatterns(c.AcceptVideo)
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable as a positive float.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// envBool reads an environment variable as a boolean ("1", "true", "yes").
func envBool(key string, defaultVal bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return strings.EqualFold(s, "yes")
}

func envList(key string) []string {
	var out []string
	for item := range strings.SplitSeq(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func Load() *Config {
	return &Config{
		Web: WebConfig{
			AllowedOrigins: envList("WEB_ALLOWED_ORIGINS"),
		},
		Session: SessionConfig{
			TTL: time.Duration(envInt("SESSION_TTL_HOURS", int(constants.SessionDuration/time.Hour))) * time.Hour,
		},
		Preview: PreviewConfig{
			Scale:   envFloat("PREVIEW_SCALE", constants.PreviewScale),
			Workers: envInt("PREVIEW_WORKERS", constants.DefaultPreviewWorkers),
			MaxSize: envInt("PREVIEW_MAX_SIZE", constants.MaxPreviewSize),
			Timeout: time.Duration(envInt("PREVIEW_TIMEOUT_SECONDS", int(constants.PreviewTimeout/time.Second))) * time.Second,
		},
		Upload: UploadConfig{
			MaxBytes:    int64(envInt("UPLOAD_MAX_BYTES", 0)),
			RateLimit:   envInt("UPLOAD_RATE_LIMIT", constants.DefaultUploadRateLimit),
			AcceptVideo: envBool("ACCEPT_VIDEO", false),
		},
	}
}
