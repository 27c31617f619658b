package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Browser  BrowserConfig
	Fetch    FetchConfig
	Download DownloadConfig
	Output   OutputConfig
	Rate     RateConfig
	Log      LogConfig

	// SitesFile is an optional YAML overlay of site descriptors merged on
	// top of the built-in registry.
	SitesFile string
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Proxy is an optional proxy URL for all browser traffic.
	Proxy string

	// Stealth toggles stealth JS injection before navigation.
	Stealth bool // default: false

	// BlockedResourceTypes lists resource types to block during page loads.
	// default: ["Image", "Stylesheet", "Font", "Media"]
	BlockedResourceTypes []string
}

// FetchConfig controls defensive page loading.
type FetchConfig struct {
	// BaseURL is the origin every relative link resolves against.
	BaseURL string // default: "https://doe.gov.in"

	// NavTimeout is the hard deadline for a single navigation. On expiry the
	// load is cancelled and the partial DOM is accepted.
	NavTimeout time.Duration // default: 25s

	// ReadyPoll is the interval between document.readyState checks.
	ReadyPoll time.Duration // default: 200ms

	// ReadyWait bounds the readyState polling loop.
	ReadyWait time.Duration // default: 15s
}

// DownloadConfig controls asset retrieval.
type DownloadConfig struct {
	// Timeout is the per-download HTTP deadline.
	Timeout time.Duration // default: 40s

	// Dir is where downloaded assets land (flat, deduplicated by filename).
	Dir string // default: "pdfs"
}

// OutputConfig controls result serialization.
type OutputConfig struct {
	// Dir is where timestamped CSV exports land.
	Dir string // default: "output"
}

// RateConfig throttles outbound requests (page loads and downloads share it).
type RateConfig struct {
	// RequestsPerSecond is the sustained outbound request rate.
	RequestsPerSecond float64 // default: 1

	// Burst is the maximum burst size.
	Burst int // default: 2
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "text"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Browser: BrowserConfig{
			Headless:   envBoolOr("DOCCRAWL_HEADLESS", true),
			NoSandbox:  envBoolOr("DOCCRAWL_NO_SANDBOX", false),
			BrowserBin: os.Getenv("DOCCRAWL_BROWSER_BIN"),
			Proxy:      os.Getenv("DOCCRAWL_PROXY"),
			Stealth:    envBoolOr("DOCCRAWL_STEALTH", false),
			BlockedResourceTypes: envSliceOr("DOCCRAWL_BLOCKED_RESOURCES", []string{
				"Image", "Stylesheet", "Font", "Media",
			}),
		},
		Fetch: FetchConfig{
			BaseURL:    envOr("DOCCRAWL_BASE_URL", "https://doe.gov.in"),
			NavTimeout: envDurationOr("DOCCRAWL_NAV_TIMEOUT", 25*time.Second),
			ReadyPoll:  envDurationOr("DOCCRAWL_READY_POLL", 200*time.Millisecond),
			ReadyWait:  envDurationOr("DOCCRAWL_READY_WAIT", 15*time.Second),
		},
		Download: DownloadConfig{
			Timeout: envDurationOr("DOCCRAWL_DOWNLOAD_TIMEOUT", 40*time.Second),
			Dir:     envOr("DOCCRAWL_PDF_DIR", "pdfs"),
		},
		Output: OutputConfig{
			Dir: envOr("DOCCRAWL_OUT_DIR", "output"),
		},
		Rate: RateConfig{
			RequestsPerSecond: envFloatOr("DOCCRAWL_RATE_RPS", 1.0),
			Burst:             envIntOr("DOCCRAWL_RATE_BURST", 2),
		},
		Log: LogConfig{
			Level:  envOr("DOCCRAWL_LOG_LEVEL", "info"),
			Format: envOr("DOCCRAWL_LOG_FORMAT", "text"),
		},
		SitesFile: os.Getenv("DOCCRAWL_SITES_FILE"),
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
