package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"bonchef/internal/domain"
	"bonchef/internal/http/handlers"
	"bonchef/internal/infra"
)

type emptyJobs struct{}

func (emptyJobs) Create(context.Context, *domain.ImportJob) error { return nil }

func (emptyJobs) ClaimNext(context.Context) (*domain.ImportJob, error) {
	return nil, domain.ErrNotFound
}

func (emptyJobs) Fail(context.Context, string, string) error { return nil }

func (emptyJobs) GetByID(context.Context, string) (*domain.ImportJob, error) {
	return nil, domain.ErrNotFound
}

func (emptyJobs) ListByUser(context.Context, string, int) ([]domain.ImportJob, error) {
	return nil, nil
}

func (emptyJobs) FailStale(context.Context, time.Duration, string) (int64, error) { return 0, nil }

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	infra.NewMetrics(reg).ObservePageCache("hit")

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "recipes"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "recipes", "a.jpg"), []byte("jpeg"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	router := NewRouter(handlers.NewApp(emptyJobs{}, nil, nil), Options{
		Gatherer:  reg,
		RateLimit: 10,
		StaticDir: dir,
	})

	cases := []struct {
		name     string
		path     string
		header   string
		status   int
		contains string
	}{
		{name: "health", path: "/v1/healthz", status: http.StatusOK, contains: `"ok"`},
		{name: "metrics", path: "/metrics", status: http.StatusOK, contains: "bonchef_page_cache_total"},
		{name: "static", path: "/static/recipes/a.jpg", status: http.StatusOK, contains: "jpeg"},
		{name: "imports need user", path: "/v1/imports", status: http.StatusUnauthorized},
		{name: "imports list", path: "/v1/imports", header: "5b0f6c1e-34a4-4c34-9d5b-2f7b8f0d9e11", status: http.StatusOK, contains: `"success":true`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("X-User-ID", tc.header)
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			if rr.Code != tc.status {
				t.Fatalf("status = %d body = %s", rr.Code, rr.Body.String())
			}
			if tc.contains != "" && !strings.Contains(rr.Body.String(), tc.contains) {
				t.Fatalf("body = %s", rr.Body.String())
			}
			if rr.Header().Get("X-Request-ID") == "" {
				t.Fatalf("missing request id")
			}
		})
	}
}

func TestHealthReportsDatabaseOutage(t *testing.T) {
	db := pingFunc(func(context.Context) error { return errors.New("down") })
	router := NewRouter(handlers.NewApp(emptyJobs{}, db, nil), Options{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rr.Code)
	}
}
