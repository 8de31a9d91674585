// Package config holds application configuration derived from environment
// variables. A Config is constructed once at startup and threaded into every
// component that needs it; nothing else reads the environment.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingCredentials is returned by Validate when the access token or
// account id is absent. This is the only fatal configuration condition; it
// is checked once before any network call.
var ErrMissingCredentials = errors.New("META_ACCESS_TOKEN and META_AD_ACCOUNT_ID must be set")

// Config holds application configuration derived from environment variables.
type Config struct {
	// Platform API
	AccessToken string
	AdAccountID string
	APIVersion  string
	GraphURL    string
	HTTPTimeout time.Duration

	// Resolution policy
	ImageBatchSize    int
	ImageBatchDelay   time.Duration
	VideoMaxRetries   int
	VideoBackoffBase  time.Duration
	RetryAfterDefault time.Duration

	// Outputs
	OutputDir string
	MediaDir  string

	// Object store (chat history + snapshot archive)
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3UseSSL    bool

	ServiceName string
}

// Load reads a .env file when present, then parses environment variables and
// returns a Config populated with defaults when variables are absent.
func Load() Config {
	// Absent .env is fine; real environments set variables directly.
	_ = godotenv.Load()

	cfg := Config{}

	cfg.AccessToken = getenv("META_ACCESS_TOKEN", "")
	cfg.AdAccountID = getenv("META_AD_ACCOUNT_ID", "")
	cfg.APIVersion = getenv("META_API_VERSION", "v19.0")
	cfg.GraphURL = getenv("META_GRAPH_URL", "https://graph.facebook.com")
	cfg.HTTPTimeout = envDuration("HTTP_TIMEOUT", 30*time.Second)

	cfg.ImageBatchSize = envInt("IMAGE_BATCH_SIZE", 50)
	cfg.ImageBatchDelay = envDuration("IMAGE_BATCH_DELAY", 1*time.Second)
	cfg.VideoMaxRetries = envInt("VIDEO_MAX_RETRIES", 3)
	cfg.VideoBackoffBase = envDuration("VIDEO_BACKOFF_BASE", 1*time.Second)
	cfg.RetryAfterDefault = envDuration("RETRY_AFTER_DEFAULT", 60*time.Second)

	cfg.OutputDir = getenv("OUTPUT_DIR", "data")
	cfg.MediaDir = getenv("MEDIA_DIR", "data/media")

	cfg.S3Endpoint = getenv("S3_ENDPOINT", "")
	cfg.S3Region = getenv("S3_REGION", "us-east-1")
	cfg.S3AccessKey = getenv("S3_ACCESS_KEY", "")
	cfg.S3SecretKey = getenv("S3_SECRET_KEY", "")
	cfg.S3Bucket = getenv("S3_BUCKET", "")
	cfg.S3UseSSL = envBool("S3_USE_SSL", true)

	cfg.ServiceName = getenv("SERVICE_NAME", "adsnap")

	return cfg
}

// Validate checks the credentials required before any network call.
func (c Config) Validate() error {
	if c.AccessToken == "" || c.AdAccountID == "" {
		return ErrMissingCredentials
	}
	return nil
}

// getenv returns the value of the environment variable if set, otherwise def.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envDuration parses an environment variable into a time.Duration.
// The value can be a duration string (e.g. "5s") or a number of seconds.
// If the variable is unset or invalid, def is returned.
func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

// envBool parses a boolean environment variable. Accepted values are those
// supported by strconv.ParseBool. When unset or invalid, def is returned.
func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return def
}

// envInt parses an integer environment variable. When unset or invalid, def is returned.
func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if i, err := strconv.Atoi(v); err == nil {
		return i
	}
	return def
}
