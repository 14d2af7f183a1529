package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgallion1/md2docx/internal/style"
)

type Config struct {
	Port string

	// Auth for the job and stats API; empty disables those routes.
	ConvertAPIKey string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Request limits
	MaxMarkdownBytes int64
	RenderTimeout    time.Duration

	// Job state
	JobTTL      time.Duration
	StatsWindow time.Duration

	AllowRawHTML bool
	StaticDir    string

	// Style defaults, applied before per-request overrides.
	DefaultFontFamily string
	DefaultFontSize   int
	DefaultPageSize   string
	DefaultMarginSize string
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		ConvertAPIKey: os.Getenv("CONVERT_API_KEY"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxMarkdownBytes: envInt64("MAX_MARKDOWN_BYTES", 5242880), // 5MB
		RenderTimeout:    envDuration("RENDER_TIMEOUT", 30*time.Second),

		JobTTL:      envDuration("JOB_TTL", 1*time.Hour),
		StatsWindow: envDuration("STATS_WINDOW", 1*time.Hour),

		AllowRawHTML: envBool("ALLOW_RAW_HTML", false),
		StaticDir:    os.Getenv("STATIC_DIR"),

		DefaultFontFamily: envOr("DEFAULT_FONT_FAMILY", "Calibri"),
		DefaultFontSize:   envInt("DEFAULT_FONT_SIZE", 12),
		DefaultPageSize:   envOr("DEFAULT_PAGE_SIZE", string(style.PageA4)),
		DefaultMarginSize: envOr("DEFAULT_MARGIN_SIZE", string(style.MarginNormal)),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxMarkdownBytes <= 0 {
		cfg.MaxMarkdownBytes = 5242880
	}
	if cfg.RenderTimeout <= 0 {
		cfg.RenderTimeout = 30 * time.Second
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}

	return cfg
}

// Validate checks that the style defaults form valid options.
func (c Config) Validate() error {
	if _, err := c.StyleDefaults(); err != nil {
		return fmt.Errorf("style defaults: %w", err)
	}
	return nil
}

// StyleDefaults returns the configured default style options.
func (c Config) StyleDefaults() (style.Options, error) {
	return style.Default().Apply(style.Fields{
		FontFamily: c.DefaultFontFamily,
		FontSize:   strconv.Itoa(c.DefaultFontSize),
		PageSize:   c.DefaultPageSize,
		MarginSize: c.DefaultMarginSize,
	})
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
