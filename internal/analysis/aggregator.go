package analysis

import (
	"math"
	"sort"
	"time"

	"weather-analyzer/internal/models"
	"weather-analyzer/internal/store"
)

// Summarize computes per-city descriptive statistics of temperature.
// Missing readings are excluded from every statistic; a statistic that
// cannot be computed (e.g. stddev of one reading) comes back nil rather
// than zero.
func Summarize(st *store.Store) []models.CitySummary {
	cities := st.Cities()
	summaries := make([]models.CitySummary, 0, len(cities))

	for _, city := range cities {
		group, err := st.Group(city)
		if err != nil {
			continue
		}

		temps := validTemperatures(group)

		summary := models.CitySummary{
			City:                  city,
			ObservationCount:      len(group),
			ValidTemperatureCount: len(temps),
		}

		if len(temps) > 0 {
			summary.MeanTemperature = defined(mean(temps))
			summary.MedianTemperature = defined(median(temps))
			lo, hi := minMax(temps)
			summary.MinTemperature = defined(lo)
			summary.MaxTemperature = defined(hi)
		}
		// sample formula: undefined below two readings
		summary.StdDevTemperature = defined(sampleStdDev(temps))

		summaries = append(summaries, summary)
	}

	return summaries
}

// SeasonalMeans computes the city x calendar-month mean temperature
// table. Months bucket by number (1-12) regardless of year, averaging
// across all years present. Months with no readings are absent from the
// result. Values are rounded to two decimals for reporting.
func SeasonalMeans(st *store.Store) []models.MonthlyMeans {
	cities := st.Cities()
	rows := make([]models.MonthlyMeans, 0, len(cities))

	for _, city := range cities {
		group, err := st.Group(city)
		if err != nil {
			continue
		}

		byMonth := make(map[int][]float64)
		for _, obs := range group {
			if obs.Temperature == nil {
				continue
			}
			m := int(obs.Timestamp.Month())
			byMonth[m] = append(byMonth[m], *obs.Temperature)
		}

		means := make(map[int]float64, len(byMonth))
		for m, temps := range byMonth {
			means[m] = round2(mean(temps))
		}

		rows = append(rows, models.MonthlyMeans{City: city, Means: means})
	}

	return rows
}

// DailyRanges computes the city x calendar-day temperature envelope:
// the minimum and maximum valid reading of each day. Missing readings
// are excluded; a day with none contributes no row. Rows come back
// city-sorted, dates ascending within a city.
func DailyRanges(st *store.Store) []models.DailyRange {
	cities := st.Cities()
	rows := make([]models.DailyRange, 0)

	for _, city := range cities {
		group, err := st.Group(city)
		if err != nil {
			continue
		}

		byDay := make(map[time.Time]*models.DailyRange)
		days := make([]time.Time, 0)
		for _, obs := range group {
			if obs.Temperature == nil {
				continue
			}
			t := obs.Timestamp.UTC()
			day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)

			r, ok := byDay[day]
			if !ok {
				byDay[day] = &models.DailyRange{
					City:           city,
					Date:           day,
					MinTemperature: *obs.Temperature,
					MaxTemperature: *obs.Temperature,
				}
				days = append(days, day)
				continue
			}
			if *obs.Temperature < r.MinTemperature {
				r.MinTemperature = *obs.Temperature
			}
			if *obs.Temperature > r.MaxTemperature {
				r.MaxTemperature = *obs.Temperature
			}
		}

		sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
		for _, day := range days {
			rows = append(rows, *byDay[day])
		}
	}

	return rows
}

// validTemperatures extracts the non-missing temperature readings of a
// city group in input order.
func validTemperatures(group []models.Observation) []float64 {
	temps := make([]float64, 0, len(group))
	for _, obs := range group {
		if obs.Temperature != nil {
			temps = append(temps, *obs.Temperature)
		}
	}
	return temps
}

// defined converts a computed statistic to the nullable reporting form,
// mapping NaN to nil.
func defined(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}
