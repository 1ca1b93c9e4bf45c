package httpapi

import (
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"bonchef/internal/http/handlers"
	"bonchef/internal/infra"
	"bonchef/internal/middleware"
)

// Options configures the API router.
type Options struct {
	Logger         *infra.Logger
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
	RateLimit      int
	// TrustedProxies may set the client address through forwarding headers.
	TrustedProxies []netip.Prefix
	// StaticDir serves locally stored images under /static when set.
	StaticDir string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP(opts.TrustedProxies),
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
	)

	r.Get("/v1/healthz", app.Health)

	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	if dir := strings.TrimSpace(opts.StaticDir); dir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(dir))))
	}

	r.Route("/v1/imports", func(r chi.Router) {
		r.Use(middleware.RequireUser, middleware.RateLimit(opts.RateLimit, time.Minute))
		r.Post("/", app.CreateImport)
		r.Get("/", app.ListImports)
		r.Get("/{id}", app.GetImport)
	})

	return otelhttp.NewHandler(r, "bonchef-api")
}
