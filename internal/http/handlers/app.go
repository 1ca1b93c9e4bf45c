package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"bonchef/internal/domain"
	"bonchef/internal/infra"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	Jobs   domain.ImportJobStore
	DB     Pinger
	Logger *infra.Logger
}

func NewApp(jobs domain.ImportJobStore, db Pinger, logger *infra.Logger) *App {
	return &App{Jobs: jobs, DB: db, Logger: infra.LoggerOrDiscard(logger)}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) ok(w http.ResponseWriter, code int, data any) {
	a.json(w, code, domain.Ok(data))
}

func (a *App) fail(w http.ResponseWriter, code int, message string) {
	a.json(w, code, domain.Fail[any](message))
}
