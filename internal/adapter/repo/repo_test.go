package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"bonchef/internal/domain"
	"bonchef/internal/infra"
	"bonchef/internal/sqlinline"
)

type stubRow struct {
	scan func(dest ...any) error
}

func (r stubRow) Scan(dest ...any) error {
	if r.scan == nil {
		return pgx.ErrNoRows
	}
	return r.scan(dest...)
}

type call struct {
	marker string
	args   []any
}

type fakeSQL struct {
	calls    []call
	rows     map[string]stubRow
	affected map[string]int64
}

func newFakeSQL() *fakeSQL {
	return &fakeSQL{rows: map[string]stubRow{}, affected: map[string]int64{}}
}

func (f *fakeSQL) record(query string, args []any) string {
	marker := infra.MarkerOf(query)
	f.calls = append(f.calls, call{marker: marker, args: args})
	return marker
}

func (f *fakeSQL) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	marker := f.record(query, args)
	return pgconn.NewCommandTag(fmt.Sprintf("UPDATE %d", f.affected[marker])), nil
}

func (f *fakeSQL) QueryRow(_ context.Context, query string, args ...any) pgx.Row {
	return f.rows[f.record(query, args)]
}

func (f *fakeSQL) Query(_ context.Context, query string, args ...any) (pgx.Rows, error) {
	f.record(query, args)
	return nil, errors.New("query not supported")
}

func (f *fakeSQL) ran(query string) bool {
	marker := infra.MarkerOf(query)
	for _, c := range f.calls {
		if c.marker == marker {
			return true
		}
	}
	return false
}

func countRow(n int64) stubRow {
	return stubRow{scan: func(dest ...any) error {
		*dest[0].(*int64) = n
		return nil
	}}
}

func createdRow(at time.Time) stubRow {
	return stubRow{scan: func(dest ...any) error {
		*dest[0].(*time.Time) = at
		return nil
	}}
}

func TestCreateRejectsWhenVideoQueueIsFull(t *testing.T) {
	db := newFakeSQL()
	db.rows[infra.MarkerOf(sqlinline.QCountPendingImportJobsByType)] = countRow(7)
	repo := NewImportJobRepository(db, 7)

	job := &domain.ImportJob{
		UserID:     "5b0f6c1e-34a4-4c34-9d5b-2f7b8f0d9e11",
		SourceType: domain.SourceVerticalVideo,
		SourceData: "https://www.tiktok.com/@chef/video/1",
	}
	err := repo.Create(context.Background(), job)
	if !errors.Is(err, domain.ErrTooManyQueued) {
		t.Fatalf("expected ErrTooManyQueued, got %v", err)
	}
	if err.Error() != TooManyQueuedMessage {
		t.Fatalf("message = %q", err.Error())
	}
	if db.ran(sqlinline.QInsertImportJob) {
		t.Fatalf("insert must not run when the cap is reached")
	}
}

func TestCreateBelowCapInsertsPendingJob(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	db := newFakeSQL()
	db.rows[infra.MarkerOf(sqlinline.QCountPendingImportJobsByType)] = countRow(6)
	db.rows[infra.MarkerOf(sqlinline.QInsertImportJob)] = createdRow(created)
	repo := NewImportJobRepository(db, 7)

	job := &domain.ImportJob{
		UserID:     "5b0f6c1e-34a4-4c34-9d5b-2f7b8f0d9e11",
		SourceType: domain.SourceVerticalVideo,
		SourceData: "https://www.instagram.com/reel/abc/",
	}
	if err := repo.Create(context.Background(), job); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if job.ID == "" || job.Status != domain.JobStatusPending || !job.CreatedAt.Equal(created) {
		t.Fatalf("job = %#v", job)
	}
}

func TestCreateSkipsCapForOtherSources(t *testing.T) {
	db := newFakeSQL()
	db.rows[infra.MarkerOf(sqlinline.QInsertImportJob)] = createdRow(time.Now())
	repo := NewImportJobRepository(db, 1)

	job := &domain.ImportJob{UserID: "u", SourceType: domain.SourceText, SourceData: "pannenkoeken"}
	if err := repo.Create(context.Background(), job); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if db.ran(sqlinline.QCountPendingImportJobsByType) {
		t.Fatalf("text jobs must not be counted")
	}
}

func TestCreateValidatesInput(t *testing.T) {
	repo := NewImportJobRepository(newFakeSQL(), 7)
	cases := []struct {
		name string
		job  *domain.ImportJob
		want error
	}{
		{name: "nil", job: nil, want: domain.ErrInvalidPayload},
		{name: "unknown source", job: &domain.ImportJob{UserID: "u", SourceType: "fax", SourceData: "x"}, want: domain.ErrUnsupportedSourceType},
		{name: "empty data", job: &domain.ImportJob{UserID: "u", SourceType: domain.SourceURL, SourceData: "  "}, want: domain.ErrInvalidPayload},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := repo.Create(context.Background(), tc.job); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestFailRequiresPendingJob(t *testing.T) {
	db := newFakeSQL()
	repo := NewImportJobRepository(db, 7)

	if err := repo.Fail(context.Background(), "job-1", "mislukt"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("Fail on terminal job: %v", err)
	}

	db.affected[infra.MarkerOf(sqlinline.QFailImportJob)] = 1
	if err := repo.Fail(context.Background(), "job-2", "mislukt"); err != nil {
		t.Fatalf("Fail: %v", err)
	}
	last := db.calls[len(db.calls)-1]
	if last.args[0] != "job-2" || last.args[1] != "mislukt" {
		t.Fatalf("args = %#v", last.args)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	repo := NewImportJobRepository(newFakeSQL(), 7)
	if _, err := repo.GetByID(context.Background(), "0c9a3b7e-8f57-4d0e-9a0c-7f4d2f1f3a10"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetByID(context.Background(), "not-a-uuid"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for malformed id, got %v", err)
	}
}

func TestClaimNextScansJob(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	claimed := created.Add(time.Minute)
	db := newFakeSQL()
	db.rows[infra.MarkerOf(sqlinline.QClaimNextImportJob)] = stubRow{scan: func(dest ...any) error {
		*dest[0].(*string) = "job-9"
		*dest[1].(*string) = "user-9"
		*dest[2].(*string) = "url"
		*dest[3].(*string) = "https://example.com/recept"
		*dest[4].(*string) = "pending"
		*dest[7].(*time.Time) = created
		*dest[8].(**time.Time) = &claimed
		return nil
	}}
	repo := NewImportJobRepository(db, 7)

	job, err := repo.ClaimNext(context.Background())
	if err != nil {
		t.Fatalf("ClaimNext: %v", err)
	}
	if job.SourceType != domain.SourceURL || job.Status != domain.JobStatusPending || job.ClaimedAt == nil {
		t.Fatalf("job = %#v", job)
	}

	empty := NewImportJobRepository(newFakeSQL(), 7)
	if _, err := empty.ClaimNext(context.Background()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("empty queue: %v", err)
	}
}

func TestFailStalePassesAgeInSeconds(t *testing.T) {
	db := newFakeSQL()
	db.affected[infra.MarkerOf(sqlinline.QFailStaleImportJobs)] = 3
	repo := NewImportJobRepository(db, 7)

	n, err := repo.FailStale(context.Background(), 30*time.Minute, "verlopen")
	if err != nil {
		t.Fatalf("FailStale: %v", err)
	}
	if n != 3 {
		t.Fatalf("affected = %d", n)
	}
	if got := db.calls[0].args[0]; got != float64(1800) {
		t.Fatalf("age arg = %#v", got)
	}
}

func TestRecipeInsertForJobEncodesJSONB(t *testing.T) {
	db := newFakeSQL()
	db.rows[infra.MarkerOf(sqlinline.QInsertRecipeForJob)] = stubRow{scan: func(dest ...any) error {
		*dest[0].(*string) = "recipe-1"
		return nil
	}}
	repo := NewRecipeRepository(db)

	id, err := repo.InsertForJob(context.Background(), "job-1", domain.GeneratedRecipe{
		Title:        "Shakshuka",
		NPortions:    2,
		Ingredients:  []domain.IngredientGroup{{Name: domain.NoGroup, Ingredients: []domain.Ingredient{{Description: "ei"}}}},
		Instructions: []string{"Bak de eieren."},
	})
	if err != nil {
		t.Fatalf("InsertForJob: %v", err)
	}
	if id != "recipe-1" {
		t.Fatalf("id = %q", id)
	}
	args := db.calls[0].args
	if args[0] != "job-1" {
		t.Fatalf("job arg = %#v", args[0])
	}
	var steps []string
	if err := json.Unmarshal(args[6].([]byte), &steps); err != nil || len(steps) != 1 {
		t.Fatalf("instructions arg = %s (%v)", args[6], err)
	}
	if !strings.Contains(string(args[5].([]byte)), `"ei"`) {
		t.Fatalf("ingredients arg = %s", args[5])
	}
	if args[7] != "" {
		t.Fatalf("missing thumbnail should be empty, got %#v", args[7])
	}
}

func TestRecipeInsertForJobRejectsFinishedJob(t *testing.T) {
	db := newFakeSQL()
	repo := NewRecipeRepository(db)

	_, err := repo.InsertForJob(context.Background(), "job-1", domain.GeneratedRecipe{Title: "Shakshuka"})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestInsertForJobGuardsOnPendingJob(t *testing.T) {
	q := sqlinline.QInsertRecipeForJob
	for _, want := range []string{"status = 'pending'", "for update", "status = 'completed'", "from job"} {
		if !strings.Contains(q, want) {
			t.Fatalf("query lacks %q", want)
		}
	}
}

func TestFailStaleMeasuresFromClaim(t *testing.T) {
	if !strings.Contains(sqlinline.QFailStaleImportJobs, "coalesce(claimed_at, created_at)") {
		t.Fatal("stale sweep must age claimed jobs from their claim time")
	}
}
