package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sawpanic/selicinsights/internal/persistence"
	"github.com/sawpanic/selicinsights/internal/series"
)

const schema = `
	CREATE TABLE IF NOT EXISTS economic_series (
		obs_date    DATE PRIMARY KEY,
		selic_anual DOUBLE PRECISION NOT NULL,
		ipca        DOUBLE PRECISION NOT NULL,
		pib         DOUBLE PRECISION NOT NULL,
		cambio      DOUBLE PRECISION NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

// Migrate creates the series table if it does not exist.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create economic_series: %w", err)
	}
	return nil
}

// seriesRepo implements persistence.SeriesRepo for PostgreSQL
type seriesRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewSeriesRepo creates a new PostgreSQL series repository
func NewSeriesRepo(db *sqlx.DB, timeout time.Duration) persistence.SeriesRepo {
	return &seriesRepo{
		db:      db,
		timeout: timeout,
	}
}

// Upsert writes all observations in one transaction
func (r *seriesRepo) Upsert(ctx context.Context, obs []series.Observation) error {
	if len(obs) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO economic_series (obs_date, selic_anual, ipca, pib, cambio)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (obs_date) DO UPDATE SET
			selic_anual = EXCLUDED.selic_anual,
			ipca = EXCLUDED.ipca,
			pib = EXCLUDED.pib,
			cambio = EXCLUDED.cambio,
			updated_at = now()`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, o := range obs {
		if _, err := stmt.ExecContext(ctx, o.Date, o.SelicAnual, o.IPCA, o.PIB, o.Cambio); err != nil {
			return fmt.Errorf("failed to upsert observation %s: %w", o.Date.Format(series.DateLayout), err)
		}
	}

	return tx.Commit()
}

// List returns all observations ordered by date
func (r *seriesRepo) List(ctx context.Context) (series.Dataset, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var rows []series.Observation
	err := r.db.SelectContext(ctx, &rows, `
		SELECT obs_date, selic_anual, ipca, pib, cambio
		FROM economic_series
		ORDER BY obs_date ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list observations: %w", err)
	}

	for i := range rows {
		rows[i].Date = rows[i].Date.UTC()
	}
	return series.Dataset(rows), nil
}

// Count returns the number of stored observations
func (r *seriesRepo) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var count int64
	if err := r.db.QueryRowxContext(ctx, `SELECT COUNT(*) FROM economic_series`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count observations: %w", err)
	}
	return count, nil
}
