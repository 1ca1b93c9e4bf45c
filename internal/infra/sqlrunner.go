package infra

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLExecutor is the query surface repositories depend on. SQLRunner and
// pgxpool.Pool both satisfy it.
type SQLExecutor interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
}

var markerRegexp = regexp.MustCompile(`^--sql [0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// SQLRunner strips the `--sql <uuid>` marker from every query and logs the
// marker with the outcome so statements can be traced without logging SQL
// text or arguments.
type SQLRunner struct {
	db     SQLExecutor
	logger Logger
}

func NewSQLRunner(db SQLExecutor, logger Logger) *SQLRunner {
	return &SQLRunner{db: db, logger: logger}
}

func (r *SQLRunner) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	marker, trimmed, err := extractMarker(query)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	start := time.Now()
	tag, err := r.db.Exec(ctx, trimmed, args...)
	if err != nil {
		r.logger.Error().Err(err).Str("sql", marker).Msg("sql: exec failed")
		return tag, err
	}
	r.logger.Debug().
		Str("sql", marker).
		Int64("rows", tag.RowsAffected()).
		Dur("took", time.Since(start)).
		Msg("sql: exec")
	return tag, nil
}

func (r *SQLRunner) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	marker, trimmed, err := extractMarker(query)
	if err != nil {
		return errorRow{err: err}
	}
	r.logger.Debug().Str("sql", marker).Msg("sql: query_row")
	return loggingRow{row: r.db.QueryRow(ctx, trimmed, args...), logger: r.logger, marker: marker}
}

func (r *SQLRunner) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	marker, trimmed, err := extractMarker(query)
	if err != nil {
		return nil, err
	}
	r.logger.Debug().Str("sql", marker).Msg("sql: query")
	rows, err := r.db.Query(ctx, trimmed, args...)
	if err != nil {
		r.logger.Error().Err(err).Str("sql", marker).Msg("sql: query failed")
		return nil, err
	}
	return rows, nil
}

type loggingRow struct {
	row    pgx.Row
	logger Logger
	marker string
}

// Scan logs real failures; an empty result is expected by callers and is
// passed through quietly.
func (l loggingRow) Scan(dest ...any) error {
	err := l.row.Scan(dest...)
	if err != nil && !IsNoRows(err) {
		l.logger.Error().Err(err).Str("sql", l.marker).Msg("sql: scan failed")
	}
	return err
}

type errorRow struct {
	err error
}

func (e errorRow) Scan(dest ...any) error {
	return e.err
}

// MarkerOf returns the audit marker of a query, or "" when it has none.
func MarkerOf(query string) string {
	marker, _, err := extractMarker(query)
	if err != nil {
		return ""
	}
	return marker
}

func extractMarker(query string) (string, string, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return "", "", errors.New("sql: empty query")
	}
	lines := strings.Split(trimmed, "\n")
	markerLine := strings.TrimSpace(lines[0])
	if !markerRegexp.MatchString(markerLine) {
		return "", "", errors.New("sql: marker missing or invalid")
	}
	return strings.TrimPrefix(markerLine, "--sql "), strings.Join(lines[1:], "\n"), nil
}

var _ SQLExecutor = (*SQLRunner)(nil)
