package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Драйвер Postgres
	"github.com/xela07ax/cybermarket-dashboard/internal/infra"
	"github.com/xela07ax/cybermarket-dashboard/internal/journal"
)

const journalColumns = 10

const schema = `
CREATE TABLE IF NOT EXISTS dashboard_cycles (
	id             UUID PRIMARY KEY,
	user_id        TEXT NOT NULL,
	role           TEXT NOT NULL,
	trigger        TEXT NOT NULL,
	outcome        TEXT NOT NULL,
	status         INT NOT NULL DEFAULT 0,
	error          TEXT NOT NULL DEFAULT '',
	duration_ms    BIGINT NOT NULL,
	total_mismatch BOOLEAN NOT NULL DEFAULT FALSE,
	started_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS dashboard_cycles_started_at_idx ON dashboard_cycles (started_at);
`

// JournalRepo хранит журнал циклов загрузки дашборда.
type JournalRepo struct {
	db *sql.DB
}

func NewJournalRepo(ctx context.Context, cfg infra.DatabaseConfig) (*JournalRepo, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}
	maxConns := cfg.MaxConns
	if maxConns <= 0 {
		maxConns = 5
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping journal db: %w", err)
	}
	return &JournalRepo{db: db}, nil
}

// EnsureSchema создает таблицу журнала, если ее еще нет.
func (r *JournalRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

func (r *JournalRepo) Close() error {
	return r.db.Close()
}

func (r *JournalRepo) WriteBatch(ctx context.Context, events []journal.CycleEvent) error {
	if len(events) == 0 {
		return nil
	}
	query, vals := buildInsert(events)
	_, err := r.db.ExecContext(ctx, query, vals...)
	return err
}

// buildInsert строит один INSERT на всю пачку.
func buildInsert(events []journal.CycleEvent) (string, []any) {
	var sb strings.Builder
	vals := make([]any, 0, len(events)*journalColumns)

	for i, e := range events {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for c := 1; c <= journalColumns; c++ {
			if c > 1 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", i*journalColumns+c)
		}
		sb.WriteByte(')')

		vals = append(vals,
			e.ID, e.UserID, e.Role, e.Trigger, e.Outcome,
			e.Status, e.Error, e.DurationMs, e.Mismatch, e.StartedAt,
		)
	}

	query := "INSERT INTO dashboard_cycles " +
		"(id, user_id, role, trigger, outcome, status, error, duration_ms, total_mismatch, started_at) VALUES " +
		sb.String()
	return query, vals
}

// Summary: сводка журнала за окно.
type Summary struct {
	Cycles     int64   `json:"cycles"`
	Failed     int64   `json:"failed"`
	Aborted    int64   `json:"aborted"`
	Mismatches int64   `json:"mismatches"`
	P95Ms      float64 `json:"p95_ms"`
}

func (r *JournalRepo) Summary(ctx context.Context, window time.Duration) (*Summary, error) {
	s := &Summary{}
	since := time.Now().Add(-window)

	// P95 считаем честно, через PERCENTILE_CONT
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE outcome = 'request_failed'),
			COUNT(*) FILTER (WHERE outcome = 'request_aborted'),
			COUNT(*) FILTER (WHERE total_mismatch),
			COALESCE(PERCENTILE_CONT(0.95) WITHIN GROUP (ORDER BY duration_ms), 0)
		FROM dashboard_cycles
		WHERE started_at > $1`, since).Scan(&s.Cycles, &s.Failed, &s.Aborted, &s.Mismatches, &s.P95Ms)
	if err != nil {
		return nil, fmt.Errorf("journal summary: %w", err)
	}
	return s, nil
}
