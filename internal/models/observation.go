package models

import (
	"math"
	"time"
)

// CityLocation is one row of the input city list.
type CityLocation struct {
	City string  `json:"city" db:"city"`
	Lat  float64 `json:"lat" db:"lat"`
	Lng  float64 `json:"lng" db:"lng"`
}

// Observation represents a single hourly weather reading for a city.
// Missing measurements are represented as nil pointers, never zeros.
type Observation struct {
	City        string     `json:"city" db:"city"`
	Timestamp   time.Time  `json:"timestamp" db:"observed_at"`
	Temperature *float64   `json:"temperature,omitempty" db:"temperature"`
	Humidity    *float64   `json:"humidity,omitempty" db:"humidity"`
	Pressure    *float64   `json:"pressure,omitempty" db:"pressure"`
}

// CitySummary holds per-city descriptive statistics of temperature.
// Nil fields mean the statistic is undefined for that city (e.g. the
// sample standard deviation of fewer than two readings).
type CitySummary struct {
	City                  string   `json:"city"`
	ObservationCount      int      `json:"observation_count"`
	ValidTemperatureCount int      `json:"valid_temperature_count"`
	MeanTemperature       *float64 `json:"mean_temperature,omitempty"`
	MedianTemperature     *float64 `json:"median_temperature,omitempty"`
	StdDevTemperature     *float64 `json:"stddev_temperature,omitempty"`
	MinTemperature        *float64 `json:"min_temperature,omitempty"`
	MaxTemperature        *float64 `json:"max_temperature,omitempty"`
}

// MonthlyMeans is the city row of the seasonal (calendar month) average
// temperature table. Months with no readings are absent from the map;
// all years present in the data are pooled per month.
type MonthlyMeans struct {
	City  string          `json:"city"`
	Means map[int]float64 `json:"means"` // key: calendar month 1-12
}

// DailyRange is the per-city temperature envelope of one calendar day,
// the minimum and maximum of the day's valid readings. Days without a
// valid temperature produce no row.
type DailyRange struct {
	City           string    `json:"city"`
	Date           time.Time `json:"date"`
	MinTemperature float64   `json:"min_temperature"`
	MaxTemperature float64   `json:"max_temperature"`
}

// CorrelationVariables lists the measured variables in matrix order.
var CorrelationVariables = [3]string{"temperature", "humidity", "pressure"}

// CorrelationMatrix is the per-city 3x3 Pearson matrix over rows where
// all three measurements are present. Defined is false when fewer than
// two complete rows exist; such cities are reported, not omitted.
// Individual cells may still be nil (a variable with zero variance).
type CorrelationMatrix struct {
	City         string         `json:"city"`
	Defined      bool           `json:"defined"`
	CompleteRows int            `json:"complete_rows"`
	Values       [3][3]*float64 `json:"values"`
}

// AnomalyRecord is an observation flagged as a temperature outlier,
// carrying all original fields plus the computed z-score.
type AnomalyRecord struct {
	Observation
	ZScore float64 `json:"zscore"`
}

// ForecastPoint is one predicted temperature for a future date.
// Regenerated on every run; no independent lifecycle.
type ForecastPoint struct {
	City                 string    `json:"city" db:"city"`
	Date                 time.Time `json:"date" db:"forecast_date"`
	PredictedTemperature float64   `json:"predicted_temperature" db:"predicted_temperature"`
}

// TemperatureValue returns the temperature as a float, NaN when missing.
func (o *Observation) TemperatureValue() float64 {
	if o.Temperature == nil {
		return math.NaN()
	}
	return *o.Temperature
}

// Complete reports whether all three measurements are present.
func (o *Observation) Complete() bool {
	return o.Temperature != nil && o.Humidity != nil && o.Pressure != nil
}

// Float returns a pointer to v, the nullable-measurement constructor.
func Float(v float64) *float64 {
	return &v
}

// ValidationError represents a data validation error with the offending
// field and value attached.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsTransient returns false as validation errors are permanent
func (e *ValidationError) IsTransient() bool {
	return false
}
