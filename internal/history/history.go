package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pualine/Ellah-art-studio/internal/infra"
)

// Entry is one settled generation attempt.
type Entry struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	RequestID  string    `json:"request_id"`
	Prompt     string    `json:"prompt"`
	MIME       string    `json:"mime,omitempty"`
	Bytes      int64     `json:"bytes"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	StorageKey string    `json:"storage_key,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Statuses recorded for an attempt.
const (
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"
)

// DB is the pgx surface the recorder needs; *pgxpool.Pool satisfies it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const qEnsureSchema = `
create table if not exists generations (
  id uuid primary key default gen_random_uuid(),
  session_id text not null,
  request_id text not null default '',
  prompt text not null,
  mime text not null default '',
  bytes bigint not null default 0,
  status text not null,
  error text not null default '',
  storage_key text not null default '',
  created_at timestamptz not null default now()
);
create index if not exists generations_created_at_idx on generations (created_at desc);
`

const qInsertEntry = `
insert into generations(session_id, request_id, prompt, mime, bytes, status, error, storage_key)
values ($1::text, $2::text, $3::text, $4::text, $5::bigint, $6::text, $7::text, $8::text)
returning id, created_at;
`

const qRecentEntries = `
select id, session_id, request_id, prompt, mime, bytes, status, error, storage_key, created_at
from generations
order by created_at desc
limit $1::int;
`

// Recorder writes a row per settled generation attempt. A nil-DB recorder is
// a no-op so the service runs without a database.
type Recorder struct {
	db     DB
	logger infra.Logger
}

func NewRecorder(db DB, logger infra.Logger) *Recorder {
	return &Recorder{db: db, logger: logger}
}

// Enabled reports whether a database is wired.
func (r *Recorder) Enabled() bool {
	return r != nil && r.db != nil
}

// EnsureSchema creates the generations table when missing.
func (r *Recorder) EnsureSchema(ctx context.Context) error {
	if !r.Enabled() {
		return nil
	}
	if _, err := r.db.Exec(ctx, qEnsureSchema); err != nil {
		return fmt.Errorf("history: ensure schema: %w", err)
	}
	return nil
}

// Record persists one attempt. Failures are logged, never surfaced: history
// is an observability aid and must not fail a generation that succeeded.
func (r *Recorder) Record(ctx context.Context, entry Entry) {
	if !r.Enabled() {
		return
	}
	rows, err := r.db.Query(ctx, qInsertEntry,
		entry.SessionID, entry.RequestID, entry.Prompt, entry.MIME,
		entry.Bytes, entry.Status, entry.Error, entry.StorageKey)
	if err != nil {
		r.logger.Warn().Err(err).Str("session_id", entry.SessionID).Msg("history: record failed")
		return
	}
	rows.Close()
}

// Recent returns the newest entries, capped at limit.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if !r.Enabled() {
		return nil, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.db.Query(ctx, qRecentEntries, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query recent: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.RequestID, &e.Prompt, &e.MIME,
			&e.Bytes, &e.Status, &e.Error, &e.StorageKey, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("history: scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate entries: %w", err)
	}
	return entries, nil
}
