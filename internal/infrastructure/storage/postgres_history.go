package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"GoldenTickets/internal/domain"
	"GoldenTickets/internal/ports"
)

// DefaultTable is the activity table name used when none is configured.
const DefaultTable = "activity_events"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresHistory reads and archives actor activity in Postgres.
//
// Expected schema:
//
//	CREATE TABLE activity_events (
//	    actor       TEXT        NOT NULL,
//	    kind        TEXT        NOT NULL,
//	    occurred_at TIMESTAMPTZ NOT NULL,
//	    PRIMARY KEY (actor, kind, occurred_at)
//	);
type PostgresHistory struct {
	db    *sql.DB
	table string
	kinds []string
}

var _ ports.HistoryService = (*PostgresHistory)(nil)

// NewPostgresHistory wires a sql.DB implementation. When kinds is non-empty
// only those activity kinds are read.
func NewPostgresHistory(db *sql.DB, table string, kinds []string) *PostgresHistory {
	if table == "" {
		table = DefaultTable
	}
	return &PostgresHistory{db: db, table: table, kinds: kinds}
}

// Name identifies the source inside the history registry.
func (r *PostgresHistory) Name() string {
	return "postgres"
}

// ListRecentActivity returns the newest pageSize records for actor.
func (r *PostgresHistory) ListRecentActivity(ctx context.Context, actor string, pageSize int) ([]domain.ActivityRecord, error) {
	if r.db == nil {
		return nil, fmt.Errorf("postgres history: database is not configured")
	}

	query, args, err := r.selectRecent(actor, pageSize)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}

	var result []domain.ActivityRecord
	for rows.Next() {
		var (
			kind string
			at   time.Time
		)
		if err := rows.Scan(&kind, &at); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		result = append(result, domain.ActivityRecord{Kind: kind, CreatedAt: at.UTC().Format(time.RFC3339)})
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}

// SaveActivity upserts records for actor. Records with unparsable
// timestamps are skipped and counted.
func (r *PostgresHistory) SaveActivity(ctx context.Context, actor string, records []domain.ActivityRecord) (int, error) {
	if r.db == nil || len(records) == 0 {
		return 0, nil
	}

	query, args, skipped, err := r.insertActivity(actor, records)
	if err != nil {
		return skipped, fmt.Errorf("build insert: %w", err)
	}
	if len(args) == 0 {
		return skipped, nil
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return skipped, fmt.Errorf("upsert activity: %w", err)
	}
	return skipped, nil
}

func (r *PostgresHistory) selectRecent(actor string, pageSize int) (string, []any, error) {
	builder := psql.Select("kind", "occurred_at").
		From(r.table).
		Where(sq.Eq{"actor": actor}).
		OrderBy("occurred_at DESC")

	if len(r.kinds) > 0 {
		builder = builder.Where("kind = ANY(?)", pq.StringArray(r.kinds))
	}
	if pageSize > 0 {
		builder = builder.Limit(uint64(pageSize))
	}

	return builder.ToSql()
}

func (r *PostgresHistory) insertActivity(actor string, records []domain.ActivityRecord) (string, []any, int, error) {
	builder := psql.Insert(r.table).
		Columns("actor", "kind", "occurred_at").
		Suffix("ON CONFLICT (actor, kind, occurred_at) DO NOTHING")

	skipped, rows := 0, 0
	for _, rec := range records {
		at, err := rec.OccurredAt()
		if err != nil {
			skipped++
			continue
		}
		builder = builder.Values(actor, rec.Kind, at)
		rows++
	}
	if rows == 0 {
		return "", nil, skipped, nil
	}

	query, args, err := builder.ToSql()
	return query, args, skipped, err
}
