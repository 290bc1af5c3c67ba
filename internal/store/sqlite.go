package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/milldrew/journeylog/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
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
	processed_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_journeys_calendar_day ON journeys(calendar_day);
CREATE INDEX IF NOT EXISTS idx_journeys_processed_at ON journeys(processed_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) AppendJourney(ctx context.Context, row model.JourneyRow) (model.JourneyRow, error) {
	if row.ID == "" {
		row.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO journeys
			(id, processed, calendar_day, visit_type, origin_town, origin_pc, dest_town, dest_pc, miles, source_link, note, processed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID, row.Processed, row.CalendarDay, row.VisitType,
		row.OriginTown, row.OriginPC, row.DestTown, row.DestPC,
		row.Miles, row.SourceLink, row.Note, row.ProcessedAt.UTC(),
	)
	if err != nil {
		return model.JourneyRow{}, eris.Wrap(err, "sqlite: insert journey")
	}
	return row, nil
}

func (s *SQLiteStore) MostRecentForDay(ctx context.Context, day time.Time) (*model.JourneyRow, error) {
	dayStr := day.Format(model.CalendarDayLayout)

	row := s.db.QueryRowContext(ctx,
		`SELECT id, processed, calendar_day, visit_type, origin_town, origin_pc, dest_town, dest_pc, miles, source_link, note, processed_at
		 FROM journeys WHERE calendar_day = ? ORDER BY processed_at DESC LIMIT 1`,
		dayStr,
	)

	var j model.JourneyRow
	err := row.Scan(&j.ID, &j.Processed, &j.CalendarDay, &j.VisitType,
		&j.OriginTown, &j.OriginPC, &j.DestTown, &j.DestPC,
		&j.Miles, &j.SourceLink, &j.Note, &j.ProcessedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: most recent journey for %s", dayStr)
	}
	return &j, nil
}

// ListJourneys returns up to limit rows, newest first; a non-positive limit
// returns everything.
func (s *SQLiteStore) ListJourneys(ctx context.Context, limit int) ([]model.JourneyRow, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, processed, calendar_day, visit_type, origin_town, origin_pc, dest_town, dest_pc, miles, source_link, note, processed_at
		 FROM journeys ORDER BY processed_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list journeys")
	}
	defer rows.Close() //nolint:errcheck

	var journeys []model.JourneyRow
	for rows.Next() {
		var j model.JourneyRow
		if err := rows.Scan(&j.ID, &j.Processed, &j.CalendarDay, &j.VisitType,
			&j.OriginTown, &j.OriginPC, &j.DestTown, &j.DestPC,
			&j.Miles, &j.SourceLink, &j.Note, &j.ProcessedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan journey")
		}
		journeys = append(journeys, j)
	}
	return journeys, eris.Wrap(rows.Err(), "sqlite: iterate journeys")
}
