package persistence

import (
	"context"
	"time"

	"github.com/sawpanic/selicinsights/internal/series"
)

// SeriesRepo stores the quarterly indicator observations.
type SeriesRepo interface {
	// Upsert inserts observations, replacing any existing row for the same date.
	Upsert(ctx context.Context, obs []series.Observation) error

	// List returns every stored observation, oldest first.
	List(ctx context.Context) (series.Dataset, error)

	// Count returns the number of stored observations.
	Count(ctx context.Context) (int64, error)
}

// Repository groups the repositories backed by one database.
type Repository struct {
	Series SeriesRepo
}

// HealthCheck is the result of probing the database.
type HealthCheck struct {
	Healthy        bool           `json:"healthy"`
	Errors         []string       `json:"errors,omitempty"`
	ConnectionPool map[string]int `json:"connection_pool"`
	LastCheck      time.Time      `json:"last_check"`
	ResponseTimeMS int64          `json:"response_time_ms"`
}

// RepositoryHealth reports database availability.
type RepositoryHealth interface {
	Health(ctx context.Context) HealthCheck
	Ping(ctx context.Context) error
	Stats(ctx context.Context) map[string]interface{}
}
