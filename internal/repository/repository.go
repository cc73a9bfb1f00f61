package repository

import (
	"context"
	"fmt"
	"time"

	"weather-analyzer/internal/models"
	"weather-analyzer/pkg/database"
	"weather-analyzer/pkg/logging"
	"weather-analyzer/pkg/metrics"
)

// WeatherRepository provides data access for cities, observations and
// forecasts.
type WeatherRepository interface {
	// City operations
	UpsertCity(ctx context.Context, city *models.CityLocation) error
	ListCities(ctx context.Context) ([]*models.CityLocation, error)

	// Observation operations
	CreateObservationsBatch(ctx context.Context, observations []models.Observation) error
	GetObservations(ctx context.Context, filter ObservationFilter) ([]models.Observation, int, error)
	GetAllObservations(ctx context.Context) ([]models.Observation, error)

	// Forecast operations
	ReplaceForecasts(ctx context.Context, points []models.ForecastPoint) error
	GetForecasts(ctx context.Context, city string) ([]models.ForecastPoint, error)

	// Utility operations
	HealthCheck(ctx context.Context) error
}

// ObservationFilter defines filters for querying observations
type ObservationFilter struct {
	City      *string
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

// weatherRepository implements WeatherRepository
type weatherRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewWeatherRepository creates a new weather repository
func NewWeatherRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) WeatherRepository {
	return &weatherRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// UpsertCity creates or updates a city list entry
func (r *weatherRepository) UpsertCity(ctx context.Context, city *models.CityLocation) error {
	query := `
		INSERT INTO cities (city, lat, lng)
		VALUES ($1, $2, $3)
		ON CONFLICT (city) DO UPDATE SET
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng
	`

	_, err := r.db.ExecContext(ctx, "upsert_city", query, city.City, city.Lat, city.Lng)
	if err != nil {
		return fmt.Errorf("failed to upsert city: %w", err)
	}

	r.logger.Debug(ctx, "[REPO_UPSERT_CITY] City stored", logging.Fields{
		"city": city.City,
	})

	return nil
}

// ListCities retrieves all city list entries in sorted order
func (r *weatherRepository) ListCities(ctx context.Context) ([]*models.CityLocation, error) {
	query := `
		SELECT city, lat, lng
		FROM cities
		ORDER BY city
	`

	var cities []*models.CityLocation
	if err := r.db.SelectContext(ctx, "list_cities", &cities, query); err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}

	return cities, nil
}

// CreateObservationsBatch inserts observations in a single transaction
func (r *weatherRepository) CreateObservationsBatch(ctx context.Context, observations []models.Observation) error {
	if len(observations) == 0 {
		return nil
	}

	timer := time.Now()
	defer func() {
		duration := time.Since(timer)
		r.logger.Debug(ctx, "[REPO_BATCH_INSERT] Batch insert completed", logging.Fields{
			"count":       len(observations),
			"duration_ms": duration.Milliseconds(),
		})
	}()

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO observations (city, observed_at, temperature, humidity, pressure)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (city, observed_at) DO UPDATE SET
			temperature = EXCLUDED.temperature,
			humidity = EXCLUDED.humidity,
			pressure = EXCLUDED.pressure
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, obs := range observations {
		_, err := stmt.ExecContext(ctx,
			obs.City,
			obs.Timestamp,
			obs.Temperature,
			obs.Humidity,
			obs.Pressure,
		)
		if err != nil {
			return fmt.Errorf("failed to insert observation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetObservations retrieves observations with filtering and pagination
func (r *weatherRepository) GetObservations(ctx context.Context, filter ObservationFilter) ([]models.Observation, int, error) {
	query := `
		SELECT city, observed_at, temperature, humidity, pressure
		FROM observations
		WHERE 1=1
	`
	args := []interface{}{}
	argNum := 1

	if filter.City != nil {
		query += fmt.Sprintf(" AND city = $%d", argNum)
		args = append(args, *filter.City)
		argNum++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND observed_at >= $%d", argNum)
		args = append(args, *filter.StartDate)
		argNum++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND observed_at <= $%d", argNum)
		args = append(args, *filter.EndDate)
		argNum++
	}

	countQuery := "SELECT COUNT(*) FROM (" + query + ") AS count_query"
	var totalCount int
	if err := r.db.GetContext(ctx, "count_observations", &totalCount, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count observations: %w", err)
	}

	query += " ORDER BY city, observed_at"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, filter.Limit, filter.Offset)

	var observations []models.Observation
	if err := r.db.SelectContext(ctx, "get_observations", &observations, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to get observations: %w", err)
	}

	return observations, totalCount, nil
}

// GetAllObservations retrieves the full observation table in city then
// timestamp order, the input shape the analysis store expects.
func (r *weatherRepository) GetAllObservations(ctx context.Context) ([]models.Observation, error) {
	query := `
		SELECT city, observed_at, temperature, humidity, pressure
		FROM observations
		ORDER BY city, observed_at
	`

	var observations []models.Observation
	if err := r.db.SelectContext(ctx, "get_all_observations", &observations, query); err != nil {
		return nil, fmt.Errorf("failed to get observations: %w", err)
	}

	return observations, nil
}

// ReplaceForecasts swaps the stored forecasts for the cities present in
// points. Forecast points have no independent lifecycle; they are
// regenerated each run.
func (r *weatherRepository) ReplaceForecasts(ctx context.Context, points []models.ForecastPoint) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	cities := make(map[string]struct{})
	for _, p := range points {
		cities[p.City] = struct{}{}
	}
	for city := range cities {
		if _, err := tx.ExecContext(ctx, `DELETE FROM forecasts WHERE city = $1`, city); err != nil {
			return fmt.Errorf("failed to clear forecasts for %s: %w", city, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO forecasts (city, forecast_date, predicted_temperature)
		VALUES ($1, $2, $3)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.ExecContext(ctx, p.City, p.Date, p.PredictedTemperature); err != nil {
			return fmt.Errorf("failed to insert forecast: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetForecasts retrieves the stored forecast for one city
func (r *weatherRepository) GetForecasts(ctx context.Context, city string) ([]models.ForecastPoint, error) {
	query := `
		SELECT city, forecast_date, predicted_temperature
		FROM forecasts
		WHERE city = $1
		ORDER BY forecast_date
	`

	var points []models.ForecastPoint
	if err := r.db.SelectContext(ctx, "get_forecasts", &points, query, city); err != nil {
		return nil, fmt.Errorf("failed to get forecasts: %w", err)
	}

	if len(points) == 0 {
		return nil, &NotFoundError{Resource: "forecast", ID: city}
	}

	return points, nil
}

// HealthCheck performs a repository health check
func (r *weatherRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) IsTransient() bool {
	return false
}
