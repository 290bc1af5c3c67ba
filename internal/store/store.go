// Package store persists journey rows and serves the most-recent-journey
// lookup the resolver uses for implicit origins.
package store

import (
	"context"
	"time"

	"github.com/milldrew/journeylog/internal/model"
)

// Store is the persistence interface for journey rows.
type Store interface {
	// AppendJourney persists one row, assigning its ID, and returns the
	// stored row.
	AppendJourney(ctx context.Context, row model.JourneyRow) (model.JourneyRow, error)

	// MostRecentForDay returns the latest row whose calendar day matches the
	// given time, or nil when the day has no journeys yet.
	MostRecentForDay(ctx context.Context, day time.Time) (*model.JourneyRow, error)

	// ListJourneys returns up to limit rows, newest first. A non-positive
	// limit returns all rows.
	ListJourneys(ctx context.Context, limit int) ([]model.JourneyRow, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
