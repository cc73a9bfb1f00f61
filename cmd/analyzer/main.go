package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"weather-analyzer/internal/config"
	"weather-analyzer/internal/export"
	"weather-analyzer/internal/fetch"
	"weather-analyzer/internal/models"
	"weather-analyzer/internal/repository"
	"weather-analyzer/internal/services"
	"weather-analyzer/internal/store"
	"weather-analyzer/pkg/database"
	"weather-analyzer/pkg/logging"
	"weather-analyzer/pkg/metrics"
)

func main() {
	// Parse command-line flags
	cityFile := flag.String("city-file", "city_list.csv", "CSV file with city names and coordinates")
	totalCities := flag.Int("total-cities", 0, "Maximum number of cities to analyze (0 uses the configured default)")
	daysAhead := flag.Int("days-ahead", -1, "Forecast horizon in days (-1 uses the configured default)")
	threshold := flag.Float64("threshold", 0, "Anomaly z-score threshold (0 uses the configured default)")
	outDir := flag.String("out-dir", "", "Directory for CSV reports (empty uses the configured default)")
	persist := flag.Bool("persist", false, "Store fetched observations and forecasts in PostgreSQL")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if *totalCities <= 0 {
		*totalCities = cfg.Analysis.TotalCities
	}
	if *daysAhead < 0 {
		*daysAhead = cfg.Analysis.DaysAhead
	}
	if *threshold <= 0 {
		*threshold = cfg.Analysis.AnomalyThreshold
	}
	if *outDir == "" {
		*outDir = cfg.Analysis.OutputDir
	}

	// Initialize logger
	logger := logging.NewStructuredLogger("weather-analyzer", "1.0.0", logging.ParseLevel(cfg.Logging.Level))

	ctx := context.Background()
	logger.Info(ctx, "[ANALYZER_START] Starting weather analysis run", logging.Fields{
		"version":      "1.0.0",
		"city_file":    *cityFile,
		"total_cities": *totalCities,
		"days_ahead":   *daysAhead,
		"threshold":    *threshold,
		"out_dir":      *outDir,
		"persist":      *persist,
	})

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector("weather_analyzer")

	// Load city list
	cities, err := export.LoadCityList(*cityFile)
	if err != nil {
		logger.Fatal(ctx, "[ANALYZER_ERROR] Failed to load city list", logging.Fields{
			"city_file": *cityFile,
		}, err)
	}

	// Fetch historical observations
	client := fetch.NewClient(fetch.Config{
		BaseURL:       cfg.Fetch.BaseURL,
		StartDate:     cfg.Fetch.StartDate,
		EndDate:       cfg.Fetch.EndDate,
		Timeout:       cfg.Fetch.Timeout,
		MaxRetries:    cfg.Fetch.MaxRetries,
		RetryInterval: cfg.Fetch.RetryInterval,
	})
	fetchService := services.NewFetchService(client, logger, metricsCollector)

	st, fetchResult, err := fetchService.FetchCities(ctx, cities, *totalCities)
	if err != nil {
		logger.Fatal(ctx, "[ANALYZER_ERROR] Archive collection failed", logging.Fields{
			"errors": fetchResult.Errors,
		}, err)
	}

	// Run the analysis pipeline
	analysisService := services.NewAnalysisService(logger, metricsCollector)
	report := analysisService.Analyze(ctx, st, *threshold, *daysAhead)

	// Write CSV reports
	writer := export.NewWriter(*outDir)
	written := make([]string, 0, 8)

	if path, err := writer.WriteCombined(st.All()); err != nil {
		logger.Error(ctx, "[EXPORT_ERROR] Failed to write combined data", logging.Fields{}, err)
		metricsCollector.ExportErrorsTotal.WithLabelValues("combined").Inc()
	} else {
		written = append(written, path)
		metricsCollector.ExportRecordsTotal.WithLabelValues("combined").Add(float64(st.Len()))
	}

	if path, err := writer.WriteSeasonal(report.SeasonalMeans); err != nil {
		logger.Error(ctx, "[EXPORT_ERROR] Failed to write seasonal averages", logging.Fields{}, err)
		metricsCollector.ExportErrorsTotal.WithLabelValues("seasonal").Inc()
	} else {
		written = append(written, path)
		metricsCollector.ExportRecordsTotal.WithLabelValues("seasonal").Add(float64(len(report.SeasonalMeans)))
	}

	if path, err := writer.WriteDailyRanges(report.DailyRanges); err != nil {
		logger.Error(ctx, "[EXPORT_ERROR] Failed to write daily ranges", logging.Fields{}, err)
		metricsCollector.ExportErrorsTotal.WithLabelValues("daily_range").Inc()
	} else {
		written = append(written, path)
		metricsCollector.ExportRecordsTotal.WithLabelValues("daily_range").Add(float64(len(report.DailyRanges)))
	}

	if paths, err := writer.WriteCorrelations(report.Correlations); err != nil {
		logger.Error(ctx, "[EXPORT_ERROR] Failed to write correlation matrices", logging.Fields{}, err)
		metricsCollector.ExportErrorsTotal.WithLabelValues("correlation").Inc()
	} else {
		written = append(written, paths...)
		metricsCollector.ExportRecordsTotal.WithLabelValues("correlation").Add(float64(len(report.Correlations)))
	}

	if path, err := writer.WriteAnomalies(report.Anomalies); err != nil {
		logger.Error(ctx, "[EXPORT_ERROR] Failed to write anomalies", logging.Fields{}, err)
		metricsCollector.ExportErrorsTotal.WithLabelValues("anomalies").Inc()
	} else {
		written = append(written, path)
		metricsCollector.ExportRecordsTotal.WithLabelValues("anomalies").Add(float64(len(report.Anomalies)))
	}

	if path, err := writer.WriteForecast(report.Forecasts); err != nil {
		logger.Error(ctx, "[EXPORT_ERROR] Failed to write forecast", logging.Fields{}, err)
		metricsCollector.ExportErrorsTotal.WithLabelValues("forecast").Inc()
	} else {
		written = append(written, path)
		metricsCollector.ExportRecordsTotal.WithLabelValues("forecast").Add(float64(len(report.Forecasts)))
	}

	// Optionally persist the run
	if *persist {
		if err := persistRun(ctx, cfg, logger, metricsCollector, cities, st, report); err != nil {
			logger.Fatal(ctx, "[ANALYZER_ERROR] Persistence failed", logging.Fields{}, err)
		}
	}

	// Print results
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("ANALYSIS COMPLETE")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Cities Requested:   %d\n", fetchResult.CitiesRequested)
	fmt.Printf("Cities Fetched:     %d\n", fetchResult.CitiesFetched)
	fmt.Printf("Records Fetched:    %d\n", fetchResult.RecordsFetched)
	fmt.Printf("Fetch Duration:     %v\n", fetchResult.Duration)
	fmt.Printf("Anomalies Detected: %d\n", len(report.Anomalies))
	fmt.Printf("Forecast Points:    %d\n", len(report.Forecasts))

	if len(report.AnomalySkipped) > 0 {
		fmt.Printf("Skipped (anomaly):  %s\n", strings.Join(report.AnomalySkipped, ", "))
	}
	if len(report.ForecastSkipped) > 0 {
		fmt.Printf("Skipped (forecast): %s\n", strings.Join(report.ForecastSkipped, ", "))
	}

	if len(fetchResult.Errors) > 0 {
		fmt.Printf("\nFetch Errors (%d):\n", len(fetchResult.Errors))
		for i, errMsg := range fetchResult.Errors {
			if i < 10 {
				fmt.Printf("  - %s\n", errMsg)
			}
		}
		if len(fetchResult.Errors) > 10 {
			fmt.Printf("  ... and %d more errors\n", len(fetchResult.Errors)-10)
		}
	}

	fmt.Printf("\nReports (%d):\n", len(written))
	for _, path := range written {
		fmt.Printf("  - %s\n", path)
	}

	logger.Info(ctx, "[ANALYZER_COMPLETE] Analysis run completed successfully", logging.Fields{
		"cities_fetched":  fetchResult.CitiesFetched,
		"records_fetched": fetchResult.RecordsFetched,
		"anomalies":       len(report.Anomalies),
		"forecast_points": len(report.Forecasts),
		"reports_written": len(written),
	})
}

// persistRun stores the city list, observations, and forecasts in
// PostgreSQL so the API server can serve them.
func persistRun(
	ctx context.Context,
	cfg *config.Config,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
	cities []models.CityLocation,
	st *store.Store,
	report *services.Report,
) error {
	dbConfig := &database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	}

	db, err := database.NewPostgresDB(dbConfig, logger, metricsCollector)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	repo := repository.NewWeatherRepository(db, logger, metricsCollector)

	for i := range cities {
		if err := repo.UpsertCity(ctx, &cities[i]); err != nil {
			return err
		}
	}
	if err := repo.CreateObservationsBatch(ctx, st.All()); err != nil {
		return err
	}
	if err := repo.ReplaceForecasts(ctx, report.Forecasts); err != nil {
		return err
	}

	logger.Info(ctx, "[ANALYZER_PERSISTED] Run stored in database", logging.Fields{
		"cities":       len(cities),
		"observations": st.Len(),
		"forecasts":    len(report.Forecasts),
	})

	return nil
}
