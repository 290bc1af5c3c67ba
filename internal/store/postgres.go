package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/milldrew/journeylog/internal/db"
	"github.com/milldrew/journeylog/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 5
	pgxCfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}

	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool; used by tests with pgxmock.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS journeys (
	id            TEXT PRIMARY KEY,
	processed     TEXT NOT NULL,
	calendar_day  TEXT NOT NULL,
	visit_type    TEXT NOT NULL,
	origin_town   TEXT NOT NULL DEFAULT '',
	origin_pc     TEXT NOT NULL DEFAULT '',
	dest_town     TEXT NOT NULL DEFAULT '',
	dest_pc       TEXT NOT NULL DEFAULT '',
	miles         TEXT NOT NULL DEFAULT '',
	source_link   TEXT NOT NULL,
	note          TEXT NOT NULL DEFAULT '',
	processed_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_journeys_calendar_day ON journeys(calendar_day);
CREATE INDEX IF NOT EXISTS idx_journeys_processed_at ON journeys(processed_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) AppendJourney(ctx context.Context, row model.JourneyRow) (model.JourneyRow, error) {
	if row.ID == "" {
		row.ID = uuid.New().String()
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO journeys
			(id, processed, calendar_day, visit_type, origin_town, origin_pc, dest_town, dest_pc, miles, source_link, note, processed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		row.ID, row.Processed, row.CalendarDay, row.VisitType,
		row.OriginTown, row.OriginPC, row.DestTown, row.DestPC,
		row.Miles, row.SourceLink, row.Note, row.ProcessedAt.UTC(),
	)
	if err != nil {
		return model.JourneyRow{}, eris.Wrap(err, "postgres: insert journey")
	}
	return row, nil
}

func (s *PostgresStore) MostRecentForDay(ctx context.Context, day time.Time) (*model.JourneyRow, error) {
	dayStr := day.Format(model.CalendarDayLayout)

	row := s.pool.QueryRow(ctx,
		`SELECT id, processed, calendar_day, visit_type, origin_town, origin_pc, dest_town, dest_pc, miles, source_link, note, processed_at
		 FROM journeys WHERE calendar_day = $1 ORDER BY processed_at DESC LIMIT 1`,
		dayStr,
	)

	var j model.JourneyRow
	err := row.Scan(&j.ID, &j.Processed, &j.CalendarDay, &j.VisitType,
		&j.OriginTown, &j.OriginPC, &j.DestTown, &j.DestPC,
		&j.Miles, &j.SourceLink, &j.Note, &j.ProcessedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: most recent journey for %s", dayStr)
	}
	return &j, nil
}

// ListJourneys returns up to limit rows, newest first; a non-positive limit
// returns everything.
func (s *PostgresStore) ListJourneys(ctx context.Context, limit int) ([]model.JourneyRow, error) {
	var lim any
	if limit > 0 {
		lim = limit
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, processed, calendar_day, visit_type, origin_town, origin_pc, dest_town, dest_pc, miles, source_link, note, processed_at
		 FROM journeys ORDER BY processed_at DESC LIMIT $1`,
		lim,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list journeys")
	}
	defer rows.Close()

	var journeys []model.JourneyRow
	for rows.Next() {
		var j model.JourneyRow
		if err := rows.Scan(&j.ID, &j.Processed, &j.CalendarDay, &j.VisitType,
			&j.OriginTown, &j.OriginPC, &j.DestTown, &j.DestPC,
			&j.Miles, &j.SourceLink, &j.Note, &j.ProcessedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan journey")
		}
		journeys = append(journeys, j)
	}
	return journeys, eris.Wrap(rows.Err(), "postgres: iterate journeys")
}
