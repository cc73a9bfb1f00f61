package analysis

import (
	"time"

	"weather-analyzer/internal/models"
	"weather-analyzer/internal/store"
)

// TrendFit is the fitted least-squares line for one city:
// temperature = Slope*day_of_year + Intercept.
type TrendFit struct {
	City      string  `json:"city"`
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	UsedRows  int     `json:"used_rows"`
}

// Forecast fits an ordinary-least-squares line of temperature against
// day-of-year per city and projects daysAhead daily predictions past
// each city's latest observed date. Cities with fewer than two rows
// carrying both a date and a temperature are skipped and returned in
// skipped, never treated as an error.
//
// The regression treats day_of_year as a continuous covariate with no
// year-wraparound handling: projected day numbers keep counting past
// 366 on multi-year horizons. Known modeling simplification, kept
// deliberately.
func Forecast(st *store.Store, daysAhead int) ([]models.ForecastPoint, []TrendFit, []string) {
	var points []models.ForecastPoint
	var fits []TrendFit
	var skipped []string

	for _, city := range st.Cities() {
		group, err := st.Group(city)
		if err != nil {
			continue
		}

		days, temps, lastDate, lastDay := usableRows(group)
		if len(temps) < 2 {
			skipped = append(skipped, city)
			continue
		}

		fit := fitTrend(city, days, temps)
		fits = append(fits, fit)

		if daysAhead <= 0 {
			continue
		}
		points = append(points, project(fit, lastDate, lastDay, daysAhead)...)
	}

	return points, fits, skipped
}

// fitTrend computes slope = cov(day, temp) / var(day) with the sample
// (n-1) formulas. A zero day-of-year variance (single unique day) falls
// back to a flat line at the mean temperature.
func fitTrend(city string, days, temps []float64) TrendFit {
	fit := TrendFit{City: city, UsedRows: len(temps)}

	varDays := sampleVariance(days)
	if varDays == 0 {
		fit.Slope = 0
		fit.Intercept = mean(temps)
		return fit
	}

	fit.Slope = sampleCovariance(days, temps) / varDays
	fit.Intercept = mean(temps) - fit.Slope*mean(days)
	return fit
}

// project generates one prediction per future calendar day, starting
// the day after the city's latest observed date. Day numbers continue
// from the largest observed day_of_year without wrapping.
func project(fit TrendFit, lastDate time.Time, lastDay int, daysAhead int) []models.ForecastPoint {
	dates := make([]time.Time, daysAhead)
	for i := range dates {
		dates[i] = lastDate.AddDate(0, 0, i+1)
	}

	predictions := make([]float64, daysAhead)
	for i := range predictions {
		day := float64(lastDay + i + 1)
		predictions[i] = fit.Slope*day + fit.Intercept
	}

	// Predictions and dates are built from the same count, so a length
	// mismatch should never happen; resize to the date count anyway
	// rather than erroring.
	predictions = resize(predictions, len(dates))

	points := make([]models.ForecastPoint, daysAhead)
	for i := range points {
		points[i] = models.ForecastPoint{
			City:                 fit.City,
			Date:                 dates[i],
			PredictedTemperature: predictions[i],
		}
	}
	return points
}

// resize truncates or cyclically repeats values to exactly n entries.
func resize(values []float64, n int) []float64 {
	if len(values) == n {
		return values
	}
	out := make([]float64, n)
	if len(values) == 0 {
		return out
	}
	for i := range out {
		out[i] = values[i%len(values)]
	}
	return out
}

// usableRows extracts the day-of-year covariate and temperature of rows
// with both a date and a temperature, plus the latest observed date and
// the largest observed day_of_year.
func usableRows(group []models.Observation) ([]float64, []float64, time.Time, int) {
	var days, temps []float64
	var lastDate time.Time
	lastDay := 0

	for _, obs := range group {
		if obs.Timestamp.IsZero() || obs.Temperature == nil {
			continue
		}

		day := obs.Timestamp.YearDay()
		days = append(days, float64(day))
		temps = append(temps, *obs.Temperature)

		if obs.Timestamp.After(lastDate) {
			lastDate = obs.Timestamp
		}
		if day > lastDay {
			lastDay = day
		}
	}

	return days, temps, lastDate, lastDay
}
