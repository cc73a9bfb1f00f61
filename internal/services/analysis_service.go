package services

import (
	"context"

	"weather-analyzer/internal/analysis"
	"weather-analyzer/internal/models"
	"weather-analyzer/internal/store"
	"weather-analyzer/pkg/logging"
	"weather-analyzer/pkg/metrics"
)

// Report bundles the outputs of one full analysis pass
type Report struct {
	Summaries     []models.CitySummary       `json:"summaries"`
	SeasonalMeans []models.MonthlyMeans      `json:"seasonal_means"`
	DailyRanges   []models.DailyRange        `json:"daily_ranges"`
	Correlations  []models.CorrelationMatrix `json:"correlations"`
	Anomalies     []models.AnomalyRecord     `json:"anomalies"`
	Forecasts     []models.ForecastPoint     `json:"forecasts"`
	TrendFits     []analysis.TrendFit        `json:"trend_fits"`

	// Cities skipped for insufficient data, per stage
	AnomalySkipped  []string `json:"anomaly_skipped,omitempty"`
	ForecastSkipped []string `json:"forecast_skipped,omitempty"`
}

// AnalysisService runs the statistical pipeline over a populated store
type AnalysisService struct {
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *AnalysisService {
	return &AnalysisService{
		logger:  logger,
		metrics: metricsCollector,
	}
}

// Analyze runs every analysis stage and collects the results into a Report
func (s *AnalysisService) Analyze(ctx context.Context, st *store.Store, threshold float64, daysAhead int) *Report {
	report := &Report{}

	s.logger.Info(ctx, "[ANALYSIS_START] Starting analysis pipeline", logging.Fields{
		"cities":       len(st.Cities()),
		"observations": st.Len(),
		"threshold":    threshold,
		"days_ahead":   daysAhead,
	})

	timer := s.metrics.NewTimer(s.metrics.AnalysisDuration.WithLabelValues("summary"))
	report.Summaries = analysis.Summarize(st)
	timer.ObserveDuration()

	timer = s.metrics.NewTimer(s.metrics.AnalysisDuration.WithLabelValues("seasonal"))
	report.SeasonalMeans = analysis.SeasonalMeans(st)
	timer.ObserveDuration()

	timer = s.metrics.NewTimer(s.metrics.AnalysisDuration.WithLabelValues("daily_range"))
	report.DailyRanges = analysis.DailyRanges(st)
	timer.ObserveDuration()

	timer = s.metrics.NewTimer(s.metrics.AnalysisDuration.WithLabelValues("correlation"))
	report.Correlations = analysis.Correlate(st)
	timer.ObserveDuration()
	for _, m := range report.Correlations {
		if !m.Defined {
			s.logger.Warn(ctx, "[ANALYSIS_CORRELATION_UNDEFINED] Too few complete readings for correlation", logging.Fields{
				"city":          m.City,
				"complete_rows": m.CompleteRows,
			})
		}
	}

	timer = s.metrics.NewTimer(s.metrics.AnalysisDuration.WithLabelValues("anomaly"))
	report.Anomalies, report.AnomalySkipped = analysis.DetectAnomalies(st, threshold)
	timer.ObserveDuration()
	s.metrics.AnomaliesDetected.Add(float64(len(report.Anomalies)))
	for _, city := range report.AnomalySkipped {
		s.metrics.RecordSkippedCity("anomaly")
		s.logger.Warn(ctx, "[ANALYSIS_ANOMALY_SKIPPED] City skipped by anomaly detection", logging.Fields{
			"city": city,
		})
	}

	timer = s.metrics.NewTimer(s.metrics.AnalysisDuration.WithLabelValues("forecast"))
	report.Forecasts, report.TrendFits, report.ForecastSkipped = analysis.Forecast(st, daysAhead)
	timer.ObserveDuration()
	s.metrics.ForecastPointsTotal.Add(float64(len(report.Forecasts)))
	for _, city := range report.ForecastSkipped {
		s.metrics.RecordSkippedCity("forecast")
		s.logger.Warn(ctx, "[ANALYSIS_FORECAST_SKIPPED] City skipped by trend forecaster", logging.Fields{
			"city": city,
		})
	}

	s.metrics.CitiesProcessed.Add(float64(len(st.Cities())))

	s.logger.Info(ctx, "[ANALYSIS_DONE] Analysis pipeline completed", logging.Fields{
		"summaries":      len(report.Summaries),
		"anomalies":      len(report.Anomalies),
		"forecast_rows":  len(report.Forecasts),
		"skipped_cities": len(report.AnomalySkipped) + len(report.ForecastSkipped),
	})

	return report
}
