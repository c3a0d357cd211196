package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"imgprompt/internal/http/handlers"
	"imgprompt/internal/middleware"
)

// Options configures the middleware stack.
type Options struct {
	Logger             zerolog.Logger
	AllowedOrigins     []string
	RateLimitPerMinute int
	DefaultLocale      string
	CountryLookup      middleware.CountryLookup
	// TrustProxyHeaders rewrites RemoteAddr from X-Forwarded-For/X-Real-IP.
	TrustProxyHeaders bool
	// AdminSecret verifies operator tokens on PUT /v1/auth/key.
	AdminSecret string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if opts.TrustProxyHeaders {
		r.Use(chimw.RealIP)
	}
	r.Use(
		middleware.Logger(opts.Logger),
		chimw.Recoverer,
		middleware.CORS(opts.AllowedOrigins),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/v1/docs", app.OpenAPIDocs)

	r.Group(func(r chi.Router) {
		r.Use(middleware.ClientID)

		r.Route("/v1/prompts", func(r chi.Router) {
			r.Use(middleware.RateLimit(opts.RateLimitPerMinute, time.Minute))
			r.Post("/", app.Describe)
			r.Post("/upload", app.DescribeUpload)
		})

		r.Route("/v1/history", func(r chi.Router) {
			r.Get("/", app.HistoryList)
			r.Delete("/", app.HistoryClear)
			r.Get("/export", app.HistoryExport)
		})

		r.Route("/v1/auth", func(r chi.Router) {
			r.Get("/status", app.AuthStatus)
			r.With(middleware.AdminJWT(opts.AdminSecret, middleware.ScopeKeysWrite)).Put("/key", app.AuthSetKey)
		})
	})

	return r
}
