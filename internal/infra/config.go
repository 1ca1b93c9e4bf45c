package infra

import (
	"fmt"
	"net/netip"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	DBMaxConns  int
	RedisURL    string

	PageCacheTTL time.Duration

	FetchProxyURL       string
	FetchMaxRetries     int
	FetchAttemptTimeout time.Duration

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	VideoProcessorURL    string
	VideoProcessorAPIKey string

	StorageDriver       string
	StoragePath         string
	StorageBaseURL      string
	S3Endpoint          string
	S3Region            string
	S3Bucket            string
	S3AccessKeyID       string
	S3SecretAccessKey   string
	S3UsePathStyle      bool
	S3PublicBaseURL     string
	PlaceholderImageURL string
	PromptsDir          string

	MaxPendingVideoJobs int
	WorkerPollInterval  time.Duration
	StaleJobAge         time.Duration
	StaleSweepSchedule  string

	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
	CORSAllowedOrigins []string
	// TrustedProxies are the peers whose forwarding headers are honoured.
	TrustedProxies []netip.Prefix
}

// DefaultPlaceholderImageURL is used whenever no thumbnail can be re-hosted.
const DefaultPlaceholderImageURL = "https://static.bonchef.io/placeholders/recipe.png"

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	port := getEnv("PORT", "8080")
	cfg := &Config{
		AppEnv:               getEnv("APP_ENV", "development"),
		Port:                 port,
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		DBMaxConns:           getEnvInt("DB_MAX_CONNS", 10),
		RedisURL:             strings.TrimSpace(os.Getenv("REDIS_URL")),
		PageCacheTTL:         getEnvDuration("PAGE_CACHE_TTL_SECONDS", time.Hour),
		FetchProxyURL:        strings.TrimSpace(os.Getenv("FETCH_PROXY_URL")),
		FetchMaxRetries:      getEnvInt("FETCH_MAX_RETRIES", 3),
		FetchAttemptTimeout:  getEnvDuration("FETCH_ATTEMPT_TIMEOUT_SECONDS", 30*time.Second),
		GeminiAPIKey:         os.Getenv("GEMINI_API_KEY"),
		GeminiModel:          getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL:        getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		VideoProcessorURL:    strings.TrimSpace(os.Getenv("VIDEO_PROCESSOR_URL")),
		VideoProcessorAPIKey: os.Getenv("VIDEO_PROCESSOR_API_KEY"),
		StorageDriver:        strings.ToLower(getEnv("STORAGE_DRIVER", "filesystem")),
		StoragePath:          getEnv("STORAGE_PATH", "./storage"),
		StorageBaseURL:       getEnv("STORAGE_BASE_URL", "http://localhost:"+port+"/static"),
		S3Endpoint:           os.Getenv("S3_ENDPOINT"),
		S3Region:             getEnv("S3_REGION", "eu-west-1"),
		S3Bucket:             os.Getenv("S3_BUCKET"),
		S3AccessKeyID:        os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretAccessKey:    os.Getenv("S3_SECRET_ACCESS_KEY"),
		S3UsePathStyle:       getEnvBool("S3_USE_PATH_STYLE", false),
		S3PublicBaseURL:      strings.TrimSpace(os.Getenv("S3_PUBLIC_BASE_URL")),
		PlaceholderImageURL:  getEnv("PLACEHOLDER_IMAGE_URL", DefaultPlaceholderImageURL),
		PromptsDir:           strings.TrimSpace(os.Getenv("PROMPTS_DIR")),
		MaxPendingVideoJobs:  getEnvInt("MAX_PENDING_VIDEO_JOBS", 7),
		WorkerPollInterval:   getEnvDuration("WORKER_POLL_INTERVAL_SECONDS", 2*time.Second),
		StaleJobAge:          time.Minute * time.Duration(getEnvInt("STALE_JOB_MINUTES", 30)),
		StaleSweepSchedule:   getEnv("STALE_SWEEP_SCHEDULE", "@every 5m"),
		HTTPReadTimeout:      getEnvDuration("HTTP_READ_TIMEOUT_SECONDS", 15*time.Second),
		HTTPWriteTimeout:     getEnvDuration("HTTP_WRITE_TIMEOUT_SECONDS", 30*time.Second),
		HTTPIdleTimeout:      getEnvDuration("HTTP_IDLE_TIMEOUT_SECONDS", 60*time.Second),
		RateLimitPerMin:      getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		CORSAllowedOrigins:   splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	proxies, err := parsePrefixes(splitList(os.Getenv("TRUSTED_PROXIES")))
	if err != nil {
		return nil, fmt.Errorf("TRUSTED_PROXIES is invalid: %w", err)
	}
	cfg.TrustedProxies = proxies

	if cfg.FetchProxyURL != "" {
		if _, err := url.Parse(cfg.FetchProxyURL); err != nil {
			return nil, fmt.Errorf("FETCH_PROXY_URL is invalid: %w", err)
		}
	}

	switch cfg.StorageDriver {
	case "filesystem":
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("S3_BUCKET is required when STORAGE_DRIVER=s3")
		}
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	if cfg.FetchMaxRetries <= 0 {
		cfg.FetchMaxRetries = 1
	}
	if cfg.MaxPendingVideoJobs <= 0 {
		cfg.MaxPendingVideoJobs = 7
	}

	return cfg, nil
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

// getEnvDuration reads a whole number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parsePrefixes accepts CIDR ranges and bare addresses.
func parsePrefixes(values []string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, v := range values {
		if strings.Contains(v, "/") {
			p, err := netip.ParsePrefix(v)
			if err != nil {
				return nil, err
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(v)
		if err != nil {
			return nil, err
		}
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}
