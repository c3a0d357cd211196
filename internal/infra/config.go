package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"imgprompt/internal/providers/aryan"
)

const (
	minAryanTimeout = 8 * time.Second
	maxAryanTimeout = 12 * time.Second
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	DatabaseURL      string
	GeoIPDBPath      string
	AllowedOrigins   []string
	RateLimitPerMin  int
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	// TrustProxyHeaders takes the client address from X-Forwarded-For and
	// X-Real-IP. Enable only behind a proxy that overwrites those headers.
	TrustProxyHeaders bool
	// AdminJWTSecret signs operator tokens for PUT /v1/auth/key. Empty
	// disables the route.
	AdminJWTSecret string

	AryanEndpoint          string
	AryanTimeout           time.Duration
	BlockInsecureUpstreams bool

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	GeminiTimeout time.Duration

	ImageFetchTimeout time.Duration
	HistoryLimit      int
}

// LoadConfig loads configuration from environment variables, falling back to
// the YAML file named by IMGPROMPT_CONFIG and then to defaults.
func LoadConfig() (*Config, error) {
	src := envSource{}
	if path := strings.TrimSpace(os.Getenv("IMGPROMPT_CONFIG")); path != "" {
		overlay, err := loadOverlay(path)
		if err != nil {
			return nil, err
		}
		src.overlay = overlay
	}

	cfg := &Config{
		AppEnv:                 src.get("APP_ENV", "development"),
		Port:                   src.get("PORT", "8080"),
		DatabaseURL:            src.get("DATABASE_URL", ""),
		GeoIPDBPath:            src.get("GEOIP_DB_PATH", ""),
		AllowedOrigins:         splitList(src.get("ALLOWED_ORIGINS", "http://localhost:5173")),
		RateLimitPerMin:        src.getInt("RATE_LIMIT_PER_MINUTE", 30),
		TrustProxyHeaders:      src.getBool("TRUST_PROXY_HEADERS", false),
		AdminJWTSecret:         src.get("ADMIN_JWT_SECRET", ""),
		HTTPReadTimeout:        time.Second * time.Duration(src.getInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:       time.Second * time.Duration(src.getInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:        time.Second * time.Duration(src.getInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		AryanEndpoint:          src.get("ARYAN_ENDPOINT", aryan.DefaultEndpoint),
		AryanTimeout:           clampDuration(time.Second*time.Duration(src.getInt("ARYAN_TIMEOUT_SECONDS", 10)), minAryanTimeout, maxAryanTimeout),
		BlockInsecureUpstreams: src.getBool("BLOCK_INSECURE_UPSTREAMS", false),
		GeminiAPIKey:           src.get("GEMINI_API_KEY", ""),
		GeminiModel:            src.get("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL:          src.get("GEMINI_BASE_URL", ""),
		GeminiTimeout:          time.Second * time.Duration(src.getInt("GEMINI_TIMEOUT_SECONDS", 60)),
		ImageFetchTimeout:      time.Second * time.Duration(src.getInt("IMAGE_FETCH_TIMEOUT_SECONDS", 15)),
		HistoryLimit:           src.getInt("HISTORY_LIMIT", 10),
	}

	if cfg.HistoryLimit <= 0 {
		return nil, fmt.Errorf("HISTORY_LIMIT must be positive")
	}
	if cfg.GeminiTimeout <= 0 {
		return nil, fmt.Errorf("GEMINI_TIMEOUT_SECONDS must be positive")
	}

	return cfg, nil
}

type envSource struct {
	overlay map[string]string
}

func (s envSource) get(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	if v, ok := s.overlay[key]; ok && v != "" {
		return v
	}
	return fallback
}

func (s envSource) getInt(key string, fallback int) int {
	if v := s.get(key, ""); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func (s envSource) getBool(key string, fallback bool) bool {
	if v := s.get(key, ""); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func loadOverlay(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	raw := make(map[string]any)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		key := strings.ToUpper(strings.TrimSpace(k))
		switch val := v.(type) {
		case nil:
			continue
		case []any:
			items := make([]string, 0, len(val))
			for _, item := range val {
				items = append(items, fmt.Sprint(item))
			}
			out[key] = strings.Join(items, ",")
		default:
			out[key] = fmt.Sprint(val)
		}
	}
	return out, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func clampDuration(d, lo, hi time.Duration) time.Duration {
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}
