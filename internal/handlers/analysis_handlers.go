package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"weather-analyzer/internal/repository"
	"weather-analyzer/internal/services"
	"weather-analyzer/internal/store"
	"weather-analyzer/pkg/logging"
	"weather-analyzer/pkg/metrics"
)

// AnalysisHandler handles the analyzer API endpoints
type AnalysisHandler struct {
	repo            repository.WeatherRepository
	analysisService *services.AnalysisService
	threshold       float64
	daysAhead       int
	logger          *logging.StructuredLogger
	metrics         *metrics.Collector
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(
	repo repository.WeatherRepository,
	analysisService *services.AnalysisService,
	threshold float64,
	daysAhead int,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *AnalysisHandler {
	return &AnalysisHandler{
		repo:            repo,
		analysisService: analysisService,
		threshold:       threshold,
		daysAhead:       daysAhead,
		logger:          logger,
		metrics:         metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// PaginatedResponse represents a paginated API response
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
}

// GetObservations handles GET /api/observations
func (h *AnalysisHandler) GetObservations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/observations").Observe(duration.Seconds())
	}()

	// Parse query parameters
	city := r.URL.Query().Get("city")
	startDateStr := r.URL.Query().Get("start_date")
	endDateStr := r.URL.Query().Get("end_date")
	pageStr := r.URL.Query().Get("page")
	limitStr := r.URL.Query().Get("limit")

	// Default pagination
	page := 1
	limit := 100

	if pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 1000 {
			limit = l
		}
	}

	offset := (page - 1) * limit

	// Build filter
	filter := repository.ObservationFilter{
		Limit:  limit,
		Offset: offset,
	}

	if city != "" {
		filter.City = &city
	}

	if startDateStr != "" {
		startDate, err := time.Parse("2006-01-02", startDateStr)
		if err != nil {
			h.sendError(w, r, "invalid start_date format, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		filter.StartDate = &startDate
	}

	if endDateStr != "" {
		endDate, err := time.Parse("2006-01-02", endDateStr)
		if err != nil {
			h.sendError(w, r, "invalid end_date format, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		filter.EndDate = &endDate
	}

	// Get observations
	observations, total, err := h.repo.GetObservations(ctx, filter)
	if err != nil {
		h.logger.Error(ctx, "[API_GET_OBSERVATIONS_ERROR] Failed to get observations", logging.Fields{
			"filter": filter,
		}, err)
		h.metrics.RecordAPIError("internal_error", "/api/observations")
		h.sendError(w, r, "failed to retrieve observations", http.StatusInternalServerError)
		return
	}

	totalPages := (total + limit - 1) / limit

	response := PaginatedResponse{
		Data:       observations,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}

	h.metrics.RecordAPIRequest("/api/observations", "GET", "200")
	h.sendJSON(w, response, http.StatusOK)
}

// GetCities handles GET /api/cities
func (h *AnalysisHandler) GetCities(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cities, err := h.repo.ListCities(ctx)
	if err != nil {
		h.logger.Error(ctx, "[API_GET_CITIES_ERROR] Failed to list cities", logging.Fields{}, err)
		h.metrics.RecordAPIError("internal_error", "/api/cities")
		h.sendError(w, r, "failed to retrieve cities", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordAPIRequest("/api/cities", "GET", "200")
	h.sendJSON(w, cities, http.StatusOK)
}

// GetSummary handles GET /api/summary
func (h *AnalysisHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/summary").Observe(duration.Seconds())
	}()

	report, ok := h.runAnalysis(w, r, "/api/summary", h.threshold, h.daysAhead)
	if !ok {
		return
	}

	h.metrics.RecordAPIRequest("/api/summary", "GET", "200")
	h.sendJSON(w, report.Summaries, http.StatusOK)
}

// GetSeasonal handles GET /api/seasonal
func (h *AnalysisHandler) GetSeasonal(w http.ResponseWriter, r *http.Request) {
	report, ok := h.runAnalysis(w, r, "/api/seasonal", h.threshold, h.daysAhead)
	if !ok {
		return
	}

	h.metrics.RecordAPIRequest("/api/seasonal", "GET", "200")
	h.sendJSON(w, report.SeasonalMeans, http.StatusOK)
}

// GetDailyRanges handles GET /api/daily-ranges
func (h *AnalysisHandler) GetDailyRanges(w http.ResponseWriter, r *http.Request) {
	report, ok := h.runAnalysis(w, r, "/api/daily-ranges", h.threshold, h.daysAhead)
	if !ok {
		return
	}

	h.metrics.RecordAPIRequest("/api/daily-ranges", "GET", "200")
	h.sendJSON(w, report.DailyRanges, http.StatusOK)
}

// GetCorrelations handles GET /api/correlations/{city}
func (h *AnalysisHandler) GetCorrelations(w http.ResponseWriter, r *http.Request) {
	city := mux.Vars(r)["city"]

	report, ok := h.runAnalysis(w, r, "/api/correlations", h.threshold, h.daysAhead)
	if !ok {
		return
	}

	for _, m := range report.Correlations {
		if m.City == city {
			h.metrics.RecordAPIRequest("/api/correlations", "GET", "200")
			h.sendJSON(w, m, http.StatusOK)
			return
		}
	}

	h.sendError(w, r, "no observations for city: "+city, http.StatusNotFound)
}

// GetAnomalies handles GET /api/anomalies
func (h *AnalysisHandler) GetAnomalies(w http.ResponseWriter, r *http.Request) {
	threshold := h.threshold
	if thresholdStr := r.URL.Query().Get("threshold"); thresholdStr != "" {
		parsed, err := strconv.ParseFloat(thresholdStr, 64)
		if err != nil || parsed <= 0 {
			h.sendError(w, r, "invalid threshold, expected positive number", http.StatusBadRequest)
			return
		}
		threshold = parsed
	}

	report, ok := h.runAnalysis(w, r, "/api/anomalies", threshold, h.daysAhead)
	if !ok {
		return
	}

	response := map[string]interface{}{
		"threshold": threshold,
		"anomalies": report.Anomalies,
		"skipped":   report.AnomalySkipped,
	}

	h.metrics.RecordAPIRequest("/api/anomalies", "GET", "200")
	h.sendJSON(w, response, http.StatusOK)
}

// GetForecast handles GET /api/forecast
func (h *AnalysisHandler) GetForecast(w http.ResponseWriter, r *http.Request) {
	daysAhead := h.daysAhead
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		parsed, err := strconv.Atoi(daysStr)
		if err != nil || parsed < 0 || parsed > 365 {
			h.sendError(w, r, "invalid days, expected integer between 0 and 365", http.StatusBadRequest)
			return
		}
		daysAhead = parsed
	}

	report, ok := h.runAnalysis(w, r, "/api/forecast", h.threshold, daysAhead)
	if !ok {
		return
	}

	response := map[string]interface{}{
		"days_ahead": daysAhead,
		"forecasts":  report.Forecasts,
		"fits":       report.TrendFits,
		"skipped":    report.ForecastSkipped,
	}

	h.metrics.RecordAPIRequest("/api/forecast", "GET", "200")
	h.sendJSON(w, response, http.StatusOK)
}

// HealthCheck handles GET /health
func (h *AnalysisHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.repo.HealthCheck(ctx); err != nil {
		h.logger.Error(ctx, "[HEALTH_CHECK_FAILED] Repository health check failed", logging.Fields{}, err)
		h.sendError(w, r, "database unavailable", http.StatusServiceUnavailable)
		return
	}

	status := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, status, http.StatusOK)
}

// runAnalysis loads the full observation set and runs the analysis
// pipeline over it. Analysis endpoints recompute on each request; the
// dataset is small enough that caching is not worth the staleness.
func (h *AnalysisHandler) runAnalysis(w http.ResponseWriter, r *http.Request, endpoint string, threshold float64, daysAhead int) (*services.Report, bool) {
	ctx := r.Context()

	observations, err := h.repo.GetAllObservations(ctx)
	if err != nil {
		h.logger.Error(ctx, "[API_ANALYSIS_ERROR] Failed to load observations", logging.Fields{
			"endpoint": endpoint,
		}, err)
		h.metrics.RecordAPIError("internal_error", endpoint)
		h.sendError(w, r, "failed to load observations", http.StatusInternalServerError)
		return nil, false
	}

	st := store.FromObservations(observations)
	report := h.analysisService.Analyze(ctx, st, threshold, daysAhead)
	return report, true
}

// sendJSON sends a JSON response
func (h *AnalysisHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *AnalysisHandler) sendError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	h.metrics.RecordAPIRequest(r.URL.Path, r.Method, strconv.Itoa(statusCode))

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, response, statusCode)
}

// RegisterRoutes registers all analyzer API routes
func (h *AnalysisHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/observations", h.GetObservations).Methods("GET")
	router.HandleFunc("/api/cities", h.GetCities).Methods("GET")
	router.HandleFunc("/api/summary", h.GetSummary).Methods("GET")
	router.HandleFunc("/api/seasonal", h.GetSeasonal).Methods("GET")
	router.HandleFunc("/api/daily-ranges", h.GetDailyRanges).Methods("GET")
	router.HandleFunc("/api/correlations/{city}", h.GetCorrelations).Methods("GET")
	router.HandleFunc("/api/anomalies", h.GetAnomalies).Methods("GET")
	router.HandleFunc("/api/forecast", h.GetForecast).Methods("GET")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
}
