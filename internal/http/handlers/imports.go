package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"bonchef/internal/domain"
	"bonchef/internal/importer"
	"bonchef/internal/middleware"
)

const (
	maxImportBody   = 1 << 20
	listImportLimit = 20

	msgBadRequest      = "Het verzoek kon niet worden gelezen."
	msgUnknownSource   = "Dit type import wordt niet ondersteund."
	msgEmptySource     = "Er is niets om te importeren."
	msgInvalidLink     = "Dit is geen geldige link."
	msgMissingDishFoto = "Voeg een foto van het gerecht toe."
	msgImportNotFound  = "Deze import bestaat niet."
	msgInternal        = "Er ging iets mis. Probeer het later opnieuw."
)

type createImportRequest struct {
	SourceType string `json:"source_type"`
	SourceData string `json:"source_data"`
}

type importView struct {
	ID           string    `json:"id"`
	SourceType   string    `json:"source_type"`
	Status       string    `json:"status"`
	RecipeID     *string   `json:"recipe_id"`
	ErrorMessage *string   `json:"error_message"`
	CreatedAt    time.Time `json:"created_at"`
}

func toImportView(job domain.ImportJob) importView {
	return importView{
		ID:           job.ID,
		SourceType:   string(job.SourceType),
		Status:       string(job.Status),
		RecipeID:     job.RecipeID,
		ErrorMessage: job.ErrorMessage,
		CreatedAt:    job.CreatedAt,
	}
}

// CreateImport queues a new import job for the calling user.
func (a *App) CreateImport(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	var req createImportRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxImportBody)).Decode(&req); err != nil {
		a.fail(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	sourceType, ok := domain.ParseSourceType(req.SourceType)
	if !ok {
		a.fail(w, http.StatusBadRequest, msgUnknownSource)
		return
	}
	data, msg := normalizeSourceData(sourceType, req.SourceData)
	if msg != "" {
		a.fail(w, http.StatusBadRequest, msg)
		return
	}

	job := &domain.ImportJob{UserID: userID, SourceType: sourceType, SourceData: data}
	if err := a.Jobs.Create(r.Context(), job); err != nil {
		if errors.Is(err, domain.ErrTooManyQueued) {
			a.fail(w, http.StatusTooManyRequests, err.Error())
			return
		}
		a.Logger.Error().Err(err).Str("user_id", userID).Str("source_type", string(sourceType)).Msg("imports: create failed")
		a.fail(w, http.StatusInternalServerError, msgInternal)
		return
	}

	a.Logger.Info().
		Str("job_id", job.ID).
		Str("user_id", userID).
		Str("source_type", string(sourceType)).
		Msg("imports: job queued")
	a.ok(w, http.StatusAccepted, toImportView(*job))
}

// normalizeSourceData validates the payload and returns the form that is
// stored, so workers see the same link the API accepted.
func normalizeSourceData(sourceType domain.SourceType, raw string) (string, string) {
	data := strings.TrimSpace(raw)
	if data == "" {
		return "", msgEmptySource
	}
	switch sourceType {
	case domain.SourceURL, domain.SourceImage, domain.SourceVerticalVideo:
		normalized, err := importer.NormalizeURL(data)
		if err != nil {
			return "", msgInvalidLink
		}
		return normalized, ""
	case domain.SourceDishcovery:
		var payload domain.DishcoveryPayload
		if err := json.Unmarshal([]byte(data), &payload); err != nil || strings.TrimSpace(payload.PhotoURL) == "" {
			return "", msgMissingDishFoto
		}
	}
	return data, ""
}

// GetImport returns one job of the calling user.
func (a *App) GetImport(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	job, err := a.Jobs.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.fail(w, http.StatusNotFound, msgImportNotFound)
			return
		}
		a.Logger.Error().Err(err).Msg("imports: get failed")
		a.fail(w, http.StatusInternalServerError, msgInternal)
		return
	}
	if job.UserID != userID {
		a.fail(w, http.StatusNotFound, msgImportNotFound)
		return
	}
	a.ok(w, http.StatusOK, toImportView(*job))
}

// ListImports returns the newest jobs of the calling user.
func (a *App) ListImports(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	jobs, err := a.Jobs.ListByUser(r.Context(), userID, listImportLimit)
	if err != nil {
		a.Logger.Error().Err(err).Str("user_id", userID).Msg("imports: list failed")
		a.fail(w, http.StatusInternalServerError, msgInternal)
		return
	}
	items := make([]importView, 0, len(jobs))
	for _, job := range jobs {
		items = append(items, toImportView(job))
	}
	a.ok(w, http.StatusOK, items)
}
