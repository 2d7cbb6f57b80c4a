package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration for the auto-bidder.
type Config struct {
	SearchQuery string
	MaxProjects int
	MaxPages    int
	MaxBids     int
	MinScore    float64

	DryRun       bool
	Headless     bool
	FetchDetails bool
	UseAI        bool
	AutoConfirm  bool

	ProfilePath   string
	SessionPath   string
	ScreenshotDir string
	ReportFile    string
	UserAgent     string
	GeminiAPIKey  string
	GeminiModel   string

	// Timing
	SettleDelay   time.Duration
	PageDelay     time.Duration
	DetailDelay   time.Duration
	ScoreDelay    time.Duration
	PageTimeout   time.Duration
	GlobalTimeout time.Duration

	// Auto mode
	IntervalHours int

	// Optional collaborators — empty disables the layer.
	DatabaseURL string
	RedisURL    string
	SeenTTL     time.Duration
}

// Default returns a Config populated with sensible defaults. Env variables
// supply secrets and endpoints; flags in main override the rest.
func Default() Config {
	return Config{
		SearchQuery: "golang",
		MaxProjects: 20,
		MaxPages:    3,
		MaxBids:     5,
		MinScore:    70,

		DryRun:       true,
		Headless:     true,
		FetchDetails: true,
		UseAI:        true,
		AutoConfirm:  false,

		ProfilePath:   getEnv("PROFILE_PATH", "profile.json"),
		SessionPath:   getEnv("SESSION_PATH", "session.json"),
		ScreenshotDir: "screenshots",
		ReportFile:    "run_report.json",
		UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
			"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),

		SettleDelay:   2 * time.Second,
		PageDelay:     2 * time.Second,
		DetailDelay:   1500 * time.Millisecond,
		ScoreDelay:    time.Second,
		PageTimeout:   30 * time.Second,
		GlobalTimeout: 60 * time.Minute,

		IntervalHours: getEnvInt("BID_INTERVAL_HOURS", 6),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		SeenTTL:     7 * 24 * time.Hour,
	}
}

func getEnv(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}
