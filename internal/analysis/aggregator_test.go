package analysis

import (
	"math"
	"testing"
	"time"

	"weather-analyzer/internal/models"
	"weather-analyzer/internal/store"
)

// obs builds a test observation; nil pointers mark missing readings.
func obs(city string, ts time.Time, temp, hum, press *float64) models.Observation {
	return models.Observation{
		City:        city,
		Timestamp:   ts,
		Temperature: temp,
		Humidity:    hum,
		Pressure:    press,
	}
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func f(v float64) *float64 { return &v }

func TestSummarize(t *testing.T) {
	tests := []struct {
		name         string
		observations []models.Observation
		check        func(*testing.T, []models.CitySummary)
	}{
		{
			name: "basic statistics with missing values excluded",
			observations: []models.Observation{
				obs("Oslo", day(2023, time.January, 1), f(10), nil, nil),
				obs("Oslo", day(2023, time.January, 2), nil, nil, nil),
				obs("Oslo", day(2023, time.January, 3), f(20), nil, nil),
				obs("Oslo", day(2023, time.January, 4), f(30), nil, nil),
			},
			check: func(t *testing.T, summaries []models.CitySummary) {
				if len(summaries) != 1 {
					t.Fatalf("len(summaries) = %d, want 1", len(summaries))
				}
				s := summaries[0]
				if s.ObservationCount != 4 {
					t.Errorf("ObservationCount = %d, want 4", s.ObservationCount)
				}
				if s.ValidTemperatureCount != 3 {
					t.Errorf("ValidTemperatureCount = %d, want 3", s.ValidTemperatureCount)
				}
				if s.MeanTemperature == nil || *s.MeanTemperature != 20 {
					t.Errorf("MeanTemperature = %v, want 20", s.MeanTemperature)
				}
				if s.MedianTemperature == nil || *s.MedianTemperature != 20 {
					t.Errorf("MedianTemperature = %v, want 20", s.MedianTemperature)
				}
				if s.StdDevTemperature == nil || *s.StdDevTemperature != 10 {
					t.Errorf("StdDevTemperature = %v, want 10", s.StdDevTemperature)
				}
				if s.MinTemperature == nil || *s.MinTemperature != 10 {
					t.Errorf("MinTemperature = %v, want 10", s.MinTemperature)
				}
				if s.MaxTemperature == nil || *s.MaxTemperature != 30 {
					t.Errorf("MaxTemperature = %v, want 30", s.MaxTemperature)
				}
			},
		},
		{
			name: "single reading has undefined stddev",
			observations: []models.Observation{
				obs("Lima", day(2023, time.March, 1), f(18), nil, nil),
			},
			check: func(t *testing.T, summaries []models.CitySummary) {
				s := summaries[0]
				if s.StdDevTemperature != nil {
					t.Errorf("StdDevTemperature = %v, want nil", *s.StdDevTemperature)
				}
				if s.MeanTemperature == nil || *s.MeanTemperature != 18 {
					t.Errorf("MeanTemperature = %v, want 18", s.MeanTemperature)
				}
			},
		},
		{
			name: "cities come back in sorted order",
			observations: []models.Observation{
				obs("Quito", day(2023, time.March, 1), f(1), nil, nil),
				obs("Accra", day(2023, time.March, 1), f(2), nil, nil),
			},
			check: func(t *testing.T, summaries []models.CitySummary) {
				if len(summaries) != 2 || summaries[0].City != "Accra" || summaries[1].City != "Quito" {
					t.Errorf("city order = %v, want [Accra Quito]", []string{summaries[0].City, summaries[1].City})
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := store.FromObservations(tt.observations)
			tt.check(t, Summarize(st))
		})
	}
}

// The Aggregator and the Anomaly Detector must compute the same sample
// standard deviation for any city with at least two readings.
func TestSummarizeStdDevMatchesAnomalyDetector(t *testing.T) {
	st := store.FromObservations([]models.Observation{
		obs("Cairo", day(2023, time.May, 1), f(21.5), nil, nil),
		obs("Cairo", day(2023, time.May, 2), nil, nil, nil),
		obs("Cairo", day(2023, time.May, 3), f(24.25), nil, nil),
		obs("Cairo", day(2023, time.May, 4), f(30.75), nil, nil),
		obs("Cairo", day(2023, time.May, 5), f(19), nil, nil),
	})

	summaries := Summarize(st)
	if len(summaries) != 1 || summaries[0].StdDevTemperature == nil {
		t.Fatalf("expected one summary with defined stddev, got %+v", summaries)
	}

	group, err := st.Group("Cairo")
	if err != nil {
		t.Fatalf("Group() error = %v", err)
	}
	detectorStd := sampleStdDev(validTemperatures(group))

	if math.Abs(*summaries[0].StdDevTemperature-detectorStd) > 1e-12 {
		t.Errorf("aggregator stddev = %v, detector stddev = %v", *summaries[0].StdDevTemperature, detectorStd)
	}
}

func TestDailyRanges(t *testing.T) {
	at := func(year int, month time.Month, d, hour int) time.Time {
		return time.Date(year, month, d, hour, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name         string
		observations []models.Observation
		check        func(*testing.T, []models.DailyRange)
	}{
		{
			name: "min and max per day with missing readings excluded",
			observations: []models.Observation{
				obs("Oslo", at(2023, time.July, 1, 3), f(12), nil, nil),
				obs("Oslo", at(2023, time.July, 1, 12), f(25), nil, nil),
				obs("Oslo", at(2023, time.July, 1, 18), nil, f(70), nil),
				obs("Oslo", at(2023, time.July, 2, 12), f(18), nil, nil),
			},
			check: func(t *testing.T, rows []models.DailyRange) {
				if len(rows) != 2 {
					t.Fatalf("len(rows) = %d, want 2", len(rows))
				}
				first := rows[0]
				if !first.Date.Equal(day(2023, time.July, 1)) {
					t.Errorf("Date = %v, want 2023-07-01", first.Date)
				}
				if first.MinTemperature != 12 || first.MaxTemperature != 25 {
					t.Errorf("range = [%v, %v], want [12, 25]", first.MinTemperature, first.MaxTemperature)
				}
				second := rows[1]
				if second.MinTemperature != 18 || second.MaxTemperature != 18 {
					t.Errorf("single-reading range = [%v, %v], want [18, 18]", second.MinTemperature, second.MaxTemperature)
				}
			},
		},
		{
			name: "day with only missing readings produces no row",
			observations: []models.Observation{
				obs("Lima", at(2023, time.March, 1, 6), f(22), nil, nil),
				obs("Lima", at(2023, time.March, 2, 6), nil, f(80), nil),
			},
			check: func(t *testing.T, rows []models.DailyRange) {
				if len(rows) != 1 {
					t.Fatalf("len(rows) = %d, want 1", len(rows))
				}
				if !rows[0].Date.Equal(day(2023, time.March, 1)) {
					t.Errorf("Date = %v, want 2023-03-01", rows[0].Date)
				}
			},
		},
		{
			name: "cities sorted and dates ascending within a city",
			observations: []models.Observation{
				obs("Pune", at(2023, time.May, 2, 9), f(31), nil, nil),
				obs("Pune", at(2023, time.May, 1, 9), f(30), nil, nil),
				obs("Agra", at(2023, time.May, 1, 9), f(35), nil, nil),
			},
			check: func(t *testing.T, rows []models.DailyRange) {
				if len(rows) != 3 {
					t.Fatalf("len(rows) = %d, want 3", len(rows))
				}
				if rows[0].City != "Agra" {
					t.Errorf("rows[0].City = %q, want Agra", rows[0].City)
				}
				if !rows[1].Date.Equal(day(2023, time.May, 1)) || !rows[2].Date.Equal(day(2023, time.May, 2)) {
					t.Errorf("Pune dates not ascending: %v, %v", rows[1].Date, rows[2].Date)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, DailyRanges(store.FromObservations(tt.observations)))
		})
	}
}

func TestSeasonalMeans(t *testing.T) {
	tests := []struct {
		name         string
		observations []models.Observation
		check        func(*testing.T, []models.MonthlyMeans)
	}{
		{
			name: "only observed months present",
			observations: []models.Observation{
				obs("Kyiv", day(2022, time.January, 10), f(-4), nil, nil),
				obs("Kyiv", day(2023, time.January, 12), f(-8), nil, nil),
				obs("Kyiv", day(2023, time.July, 1), f(25), nil, nil),
			},
			check: func(t *testing.T, rows []models.MonthlyMeans) {
				if len(rows) != 1 {
					t.Fatalf("len(rows) = %d, want 1", len(rows))
				}
				means := rows[0].Means
				if len(means) != 2 {
					t.Errorf("len(means) = %d, want 2 (January and July only)", len(means))
				}
				if got := means[1]; got != -6 {
					t.Errorf("January mean = %v, want -6 (pooled across years)", got)
				}
				if got := means[7]; got != 25 {
					t.Errorf("July mean = %v, want 25", got)
				}
				for m := range means {
					if m != 1 && m != 7 {
						t.Errorf("unexpected month %d in seasonal table", m)
					}
				}
			},
		},
		{
			name: "values rounded to two decimals",
			observations: []models.Observation{
				obs("Pune", day(2023, time.June, 1), f(30.1), nil, nil),
				obs("Pune", day(2023, time.June, 2), f(30.2), nil, nil),
			},
			check: func(t *testing.T, rows []models.MonthlyMeans) {
				if got := rows[0].Means[6]; got != 30.15 {
					t.Errorf("June mean = %v, want 30.15", got)
				}
			},
		},
		{
			name: "missing temperatures excluded from monthly buckets",
			observations: []models.Observation{
				obs("Riga", day(2023, time.April, 1), nil, nil, nil),
				obs("Riga", day(2023, time.April, 2), f(9), nil, nil),
			},
			check: func(t *testing.T, rows []models.MonthlyMeans) {
				if got := rows[0].Means[4]; got != 9 {
					t.Errorf("April mean = %v, want 9", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := store.FromObservations(tt.observations)
			tt.check(t, SeasonalMeans(st))
		})
	}
}
