package history

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aireclaro/aireclaro/internal/reading"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
//
// Pollutant columns are nullable; an absent field round-trips as SQL NULL,
// never as zero. The (location_id, recorded_at) pair is unique so replayed
// collector batches are deduplicated by the database.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL history repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Insert stores one reading, ignoring duplicates.
func (r *PostgresRepository) Insert(ctx context.Context, rec reading.Reading) error {
	query := `
		INSERT INTO air_quality_readings (
			location_id, recorded_at, pm2_5, pm10, o3, no2, aqi
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (location_id, recorded_at) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		rec.LocationID,
		rec.Timestamp,
		rec.PM25,
		rec.PM10,
		rec.O3,
		rec.NO2,
		rec.AQI,
	)
	return err
}

// InsertBatch stores many readings in one round trip.
func (r *PostgresRepository) InsertBatch(ctx context.Context, readings []reading.Reading) error {
	if len(readings) == 0 {
		return nil
	}

	query := `
		INSERT INTO air_quality_readings (
			location_id, recorded_at, pm2_5, pm10, o3, no2, aqi
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (location_id, recorded_at) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, rec := range readings {
		batch.Queue(query,
			rec.LocationID,
			rec.Timestamp,
			rec.PM25,
			rec.PM10,
			rec.O3,
			rec.NO2,
			rec.AQI,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range readings {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// List retrieves the readings of one location ordered by timestamp ascending.
func (r *PostgresRepository) List(ctx context.Context, locationID string, opts QueryOptions) ([]reading.Reading, error) {
	query := `
		SELECT location_id, recorded_at, pm2_5, pm10, o3, no2, aqi
		FROM air_quality_readings
		WHERE location_id = $1
		  AND ($2::timestamptz IS NULL OR recorded_at >= $2)
		  AND ($3::timestamptz IS NULL OR recorded_at <= $3)
		ORDER BY recorded_at ASC
	`

	var since, until *time.Time
	if !opts.Since.IsZero() {
		since = &opts.Since
	}
	if !opts.Until.IsZero() {
		until = &opts.Until
	}

	args := []interface{}{locationID, since, until}
	if opts.Limit > 0 {
		query += " LIMIT $4"
		args = append(args, opts.Limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []reading.Reading
	for rows.Next() {
		var rec reading.Reading
		err := rows.Scan(
			&rec.LocationID,
			&rec.Timestamp,
			&rec.PM25,
			&rec.PM10,
			&rec.O3,
			&rec.NO2,
			&rec.AQI,
		)
		if err != nil {
			return nil, err
		}
		readings = append(readings, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return readings, nil
}

// Latest retrieves the most recent reading of one location.
func (r *PostgresRepository) Latest(ctx context.Context, locationID string) (reading.Reading, error) {
	query := `
		SELECT location_id, recorded_at, pm2_5, pm10, o3, no2, aqi
		FROM air_quality_readings
		WHERE location_id = $1
		ORDER BY recorded_at DESC
		LIMIT 1
	`

	var rec reading.Reading
	err := r.pool.QueryRow(ctx, query, locationID).Scan(
		&rec.LocationID,
		&rec.Timestamp,
		&rec.PM25,
		&rec.PM10,
		&rec.O3,
		&rec.NO2,
		&rec.AQI,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return reading.Reading{}, ErrNoReadings
		}
		return reading.Reading{}, err
	}

	return rec, nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
