package services

import (
	"context"
	"fmt"
	"time"

	"weather-analyzer/internal/fetch"
	"weather-analyzer/internal/models"
	"weather-analyzer/internal/store"
	"weather-analyzer/pkg/logging"
	"weather-analyzer/pkg/metrics"
)

// FetchResult summarizes one archive collection run
type FetchResult struct {
	CitiesRequested int           `json:"cities_requested"`
	CitiesFetched   int           `json:"cities_fetched"`
	RecordsFetched  int           `json:"records_fetched"`
	Duration        time.Duration `json:"duration"`
	Errors          []string      `json:"errors,omitempty"`
}

// FetchService collects historical observations for a list of cities
type FetchService struct {
	client  *fetch.Client
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewFetchService creates a new fetch service
func NewFetchService(client *fetch.Client, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *FetchService {
	return &FetchService{
		client:  client,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// FetchCities retrieves hourly observations for up to totalCities entries
// from the city list. A city that fails to fetch is logged and skipped;
// the run continues with the remaining cities.
func (s *FetchService) FetchCities(ctx context.Context, cities []models.CityLocation, totalCities int) (*store.Store, *FetchResult, error) {
	if totalCities > 0 && len(cities) > totalCities {
		cities = cities[:totalCities]
	}

	result := &FetchResult{
		CitiesRequested: len(cities),
	}

	s.logger.Info(ctx, "[FETCH_START] Starting archive collection", logging.Fields{
		"cities": len(cities),
	})

	started := time.Now()
	st := store.New()

	for _, loc := range cities {
		timer := s.metrics.NewTimer(s.metrics.FetchDuration)

		observations, err := s.client.FetchCity(ctx, loc)
		timer.ObserveDuration()

		if err != nil {
			s.metrics.RecordFetch("error")
			s.metrics.RecordFetchError("archive_fetch")
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", loc.City, err))

			s.logger.Warn(ctx, "[FETCH_CITY_FAILED] Skipping city after fetch failure", logging.Fields{
				"city":  loc.City,
				"error": err.Error(),
			})
			continue
		}

		st.AddSeries(observations)
		result.CitiesFetched++
		result.RecordsFetched += len(observations)
		s.metrics.RecordFetch("success")
		s.metrics.FetchRecordsTotal.Add(float64(len(observations)))

		s.logger.Info(ctx, "[FETCH_CITY_DONE] City collected", logging.Fields{
			"city":    loc.City,
			"records": len(observations),
		})
	}

	result.Duration = time.Since(started)

	if result.CitiesFetched == 0 {
		return nil, result, fmt.Errorf("no cities could be fetched (%d attempted)", result.CitiesRequested)
	}

	s.logger.Info(ctx, "[FETCH_DONE] Archive collection completed", logging.Fields{
		"cities_requested": result.CitiesRequested,
		"cities_fetched":   result.CitiesFetched,
		"records":          result.RecordsFetched,
		"duration_ms":      result.Duration.Milliseconds(),
	})

	return st, result, nil
}
