package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"weather-analyzer/internal/models"
)

// cityHeaderAliases folds the common spellings of the city-list columns
// onto the canonical City/Lat/Lng names.
var cityHeaderAliases = map[string]string{
	"city": "City", "cityname": "City",
	"lat": "Lat", "latitude": "Lat",
	"lng": "Lng", "long": "Lng", "longitude": "Lng",
}

// timestampLayouts are accepted when reading a combined dataset back.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// LoadCityList reads the input city CSV. Header names are trimmed and
// alias-folded; a file without all of City, Lat and Lng is a startup
// precondition failure for the whole run.
func LoadCityList(path string) ([]models.CityLocation, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open city file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read city file: %w", err)
	}
	if len(records) == 0 {
		return nil, &models.ValidationError{
			Field:   "header",
			Message: "city file is empty",
		}
	}

	columns := make(map[string]int)
	for i, name := range records[0] {
		name = strings.TrimSpace(name)
		if canonical, ok := cityHeaderAliases[strings.ToLower(name)]; ok {
			name = canonical
		}
		columns[name] = i
	}

	for _, required := range []string{"City", "Lat", "Lng"} {
		if _, ok := columns[required]; !ok {
			return nil, &models.ValidationError{
				Field:   required,
				Message: fmt.Sprintf("city file must contain columns City, Lat, Lng; missing %s", required),
			}
		}
	}

	cities := make([]models.CityLocation, 0, len(records)-1)
	for _, record := range records[1:] {
		lat, err := strconv.ParseFloat(strings.TrimSpace(record[columns["Lat"]]), 64)
		if err != nil {
			continue
		}
		lng, err := strconv.ParseFloat(strings.TrimSpace(record[columns["Lng"]]), 64)
		if err != nil {
			continue
		}

		cities = append(cities, models.CityLocation{
			City: strings.TrimSpace(record[columns["City"]]),
			Lat:  lat,
			Lng:  lng,
		})
	}

	return cities, nil
}

// LoadCombined reads a previously exported combined dataset back into
// observations. Unparsable numeric cells become missing values rather
// than errors; a missing required column fails the load.
func LoadCombined(path string) ([]models.Observation, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	if len(records) == 0 {
		return nil, &models.ValidationError{Field: "header", Message: "dataset is empty"}
	}

	columns := make(map[string]int)
	for i, name := range records[0] {
		columns[strings.TrimSpace(name)] = i
	}

	for _, required := range []string{"City", "date", "temperature", "humidity", "pressure"} {
		if _, ok := columns[required]; !ok {
			return nil, &models.ValidationError{
				Field:   required,
				Message: fmt.Sprintf("dataset missing required column %s", required),
			}
		}
	}

	observations := make([]models.Observation, 0, len(records)-1)
	for _, record := range records[1:] {
		ts, ok := parseTimestamp(record[columns["date"]])
		if !ok {
			continue
		}

		observations = append(observations, models.Observation{
			City:        strings.TrimSpace(record[columns["City"]]),
			Timestamp:   ts,
			Temperature: parseMeasurement(record[columns["temperature"]]),
			Humidity:    parseMeasurement(record[columns["humidity"]]),
			Pressure:    parseMeasurement(record[columns["pressure"]]),
		})
	}

	return observations, nil
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

// parseMeasurement coerces a cell to a nullable float; anything that
// does not parse is a missing value, not an error.
func parseMeasurement(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
