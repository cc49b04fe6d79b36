package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lextri/tritime/internal/domain/anomaly"
	"github.com/lextri/tritime/internal/domain/temporal"
)

// Connection pool configuration.
const (
	pgMaxConns        = 10
	pgMinConns        = 2
	pgMaxConnLifetime = 5 * time.Minute
	pgMaxConnIdleTime = 1 * time.Minute
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS timelines (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	metadata JSONB NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS timeline_points (
	timeline_id UUID NOT NULL REFERENCES timelines(id) ON DELETE CASCADE,
	position INT NOT NULL,
	event_id TEXT NOT NULL,
	valid_time TIMESTAMPTZ NOT NULL,
	transaction_time TIMESTAMPTZ NOT NULL,
	decision_time TIMESTAMPTZ,
	event_type TEXT NOT NULL,
	data JSONB NOT NULL DEFAULT '{}',
	PRIMARY KEY (timeline_id, event_id)
);

CREATE TABLE IF NOT EXISTS anomalies (
	id UUID PRIMARY KEY,
	timeline_id UUID NOT NULL REFERENCES timelines(id) ON DELETE CASCADE,
	event_id TEXT NOT NULL,
	anomaly_type TEXT NOT NULL,
	severity TEXT NOT NULL,
	confidence DOUBLE PRECISION NOT NULL,
	description TEXT NOT NULL,
	detected_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_timeline_points_order
	ON timeline_points (timeline_id, position);
CREATE INDEX IF NOT EXISTS idx_anomalies_timeline
	ON anomalies (timeline_id, severity);
`

// PostgresStore implements Store using PostgreSQL via pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to the database, ensures the schema exists, and
// returns a ready store.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	cfg.MaxConns = pgMaxConns
	cfg.MinConns = pgMinConns
	cfg.MaxConnLifetime = pgMaxConnLifetime
	cfg.MaxConnIdleTime = pgMaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SaveTimeline persists a timeline and its points in one transaction.
func (s *PostgresStore) SaveTimeline(ctx context.Context, t *temporal.Timeline) (uuid.UUID, error) {
	id := uuid.New()

	metadata, err := json.Marshal(t.Metadata())
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode timeline metadata: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.Exec(ctx,
		`INSERT INTO timelines (id, name, metadata) VALUES ($1, $2, $3)`,
		id, t.Name(), string(metadata),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert timeline %q: %w", t.Name(), err)
	}

	for i, p := range t.Points() {
		data, err := json.Marshal(p.Data)
		if err != nil {
			return uuid.Nil, fmt.Errorf("encode point data (event %q): %w", p.EventID, err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO timeline_points
				(timeline_id, position, event_id, valid_time, transaction_time, decision_time, event_type, data)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			id, i, p.EventID, p.ValidTime, p.TransactionTime, p.DecisionTime, p.EventType, string(data),
		)
		if err != nil {
			return uuid.Nil, fmt.Errorf("insert point (event %q): %w", p.EventID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("commit timeline %q: %w", t.Name(), err)
	}
	return id, nil
}

// LoadTimeline rebuilds a stored timeline, preserving insertion order.
func (s *PostgresStore) LoadTimeline(ctx context.Context, id uuid.UUID) (*temporal.Timeline, error) {
	var name string
	var metadata []byte
	err := s.pool.QueryRow(ctx,
		`SELECT name, metadata FROM timelines WHERE id = $1`, id,
	).Scan(&name, &metadata)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrTimelineNotFound, id)
		}
		return nil, fmt.Errorf("load timeline %s: %w", id, err)
	}

	t := temporal.NewTimeline(name)
	var meta map[string]any
	if err := json.Unmarshal(metadata, &meta); err == nil {
		for k, v := range meta {
			t.SetMetadata(k, v)
		}
	}

	rows, err := s.pool.Query(ctx, `
		SELECT event_id, valid_time, transaction_time, decision_time, event_type, data
		FROM timeline_points WHERE timeline_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("load points for timeline %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var eventID, eventType string
		var vt, tt time.Time
		var dt *time.Time
		var data []byte
		if err := rows.Scan(&eventID, &vt, &tt, &dt, &eventType, &data); err != nil {
			return nil, fmt.Errorf("scan point for timeline %s: %w", id, err)
		}

		p, err := temporal.NewPoint(eventID, vt, tt)
		if err != nil {
			return nil, err
		}
		if dt != nil {
			p.WithDecisionTime(*dt)
		}
		p.WithEventType(eventType)
		var payload map[string]any
		if err := json.Unmarshal(data, &payload); err == nil {
			p.WithData(payload)
		}
		if err := t.AddPoint(p); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate points for timeline %s: %w", id, err)
	}
	return t, nil
}

// ListTimelines returns summaries of all stored timelines.
func (s *PostgresStore) ListTimelines(ctx context.Context) ([]TimelineInfo, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT t.id, t.name, t.created_at, COUNT(p.event_id)
		FROM timelines t
		LEFT JOIN timeline_points p ON p.timeline_id = t.id
		GROUP BY t.id
		ORDER BY t.created_at`)
	if err != nil {
		return nil, fmt.Errorf("list timelines: %w", err)
	}
	defer rows.Close()

	var infos []TimelineInfo
	for rows.Next() {
		var info TimelineInfo
		if err := rows.Scan(&info.ID, &info.Name, &info.CreatedAt, &info.PointCount); err != nil {
			return nil, fmt.Errorf("scan timeline summary: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// SaveReport persists the findings of one classification run.
func (s *PostgresStore) SaveReport(ctx context.Context, timelineID uuid.UUID, report *anomaly.Report) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	for _, a := range report.Anomalies {
		_, err := tx.Exec(ctx, `
			INSERT INTO anomalies (id, timeline_id, event_id, anomaly_type, severity, confidence, description)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			uuid.New(), timelineID, a.EventID, string(a.Type), string(a.Severity), a.Confidence, a.Description,
		)
		if err != nil {
			return fmt.Errorf("insert anomaly (event %q): %w", a.EventID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit report for timeline %s: %w", timelineID, err)
	}
	return nil
}

// Anomalies returns stored findings matching the filter.
func (s *PostgresStore) Anomalies(ctx context.Context, filter AnomalyFilter) ([]StoredAnomaly, error) {
	query := `
		SELECT timeline_id, event_id, anomaly_type, severity, confidence, description, detected_at
		FROM anomalies WHERE 1=1`
	args := []any{}
	argPos := 1

	if filter.TimelineID != uuid.Nil {
		query += fmt.Sprintf(" AND timeline_id = $%d", argPos)
		args = append(args, filter.TimelineID)
		argPos++
	}
	if filter.Severity != "" {
		query += fmt.Sprintf(" AND severity = $%d", argPos)
		args = append(args, string(filter.Severity))
		argPos++
	}
	query += " ORDER BY detected_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argPos)
		args = append(args, filter.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query anomalies: %w", err)
	}
	defer rows.Close()

	var out []StoredAnomaly
	for rows.Next() {
		var a StoredAnomaly
		var typ, sev string
		if err := rows.Scan(&a.TimelineID, &a.EventID, &typ, &sev, &a.Confidence, &a.Description, &a.DetectedAt); err != nil {
			return nil, fmt.Errorf("scan anomaly: %w", err)
		}
		a.Type = anomaly.Type(typ)
		a.Severity = anomaly.Severity(sev)
		out = append(out, a)
	}
	return out, rows.Err()
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}
