package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"weather-analyzer/internal/models"
)

// Writer serializes analysis outputs to CSV report files under a
// single output directory.
type Writer struct {
	outDir string
}

// NewWriter creates a report writer rooted at outDir.
func NewWriter(outDir string) *Writer {
	return &Writer{outDir: outDir}
}

// WriteCombined writes the full observation table as
// combined_weather_data.csv.
func (w *Writer) WriteCombined(observations []models.Observation) (string, error) {
	records := make([][]string, 0, len(observations))
	for _, obs := range observations {
		records = append(records, []string{
			obs.City,
			obs.Timestamp.Format(time.RFC3339),
			formatMeasurement(obs.Temperature),
			formatMeasurement(obs.Humidity),
			formatMeasurement(obs.Pressure),
		})
	}

	return w.writeFile("combined_weather_data.csv",
		[]string{"City", "date", "temperature", "humidity", "pressure"}, records)
}

// WriteAnomalies writes the flagged outlier rows, all original fields
// plus the z-score, as anomalies.csv.
func (w *Writer) WriteAnomalies(anomalies []models.AnomalyRecord) (string, error) {
	records := make([][]string, 0, len(anomalies))
	for _, a := range anomalies {
		records = append(records, []string{
			a.City,
			a.Timestamp.Format(time.RFC3339),
			formatMeasurement(a.Temperature),
			formatMeasurement(a.Humidity),
			formatMeasurement(a.Pressure),
			strconv.FormatFloat(a.ZScore, 'f', -1, 64),
		})
	}

	return w.writeFile("anomalies.csv",
		[]string{"City", "date", "temperature", "humidity", "pressure", "zscore"}, records)
}

// WriteForecast writes the per-city predictions as forecast.csv.
func (w *Writer) WriteForecast(points []models.ForecastPoint) (string, error) {
	records := make([][]string, 0, len(points))
	for _, p := range points {
		records = append(records, []string{
			p.City,
			p.Date.Format(time.RFC3339),
			strconv.FormatFloat(p.PredictedTemperature, 'f', -1, 64),
		})
	}

	return w.writeFile("forecast.csv",
		[]string{"City", "date", "predicted_temperature"}, records)
}

// WriteDailyRanges writes the per-city daily min/max temperatures as
// daily_temperature_ranges.csv.
func (w *Writer) WriteDailyRanges(rows []models.DailyRange) (string, error) {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.City,
			r.Date.Format("2006-01-02"),
			strconv.FormatFloat(r.MinTemperature, 'f', -1, 64),
			strconv.FormatFloat(r.MaxTemperature, 'f', -1, 64),
		})
	}

	return w.writeFile("daily_temperature_ranges.csv",
		[]string{"City", "date", "min_temperature", "max_temperature"}, records)
}

// WriteSeasonal writes the city x month mean-temperature table as
// seasonal_temperature_averages.csv. Months without data are empty
// cells.
func (w *Writer) WriteSeasonal(rows []models.MonthlyMeans) (string, error) {
	header := make([]string, 0, 13)
	header = append(header, "City")
	for m := 1; m <= 12; m++ {
		header = append(header, strconv.Itoa(m))
	}

	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		record := make([]string, 0, 13)
		record = append(record, row.City)
		for m := 1; m <= 12; m++ {
			if mean, ok := row.Means[m]; ok {
				record = append(record, strconv.FormatFloat(mean, 'f', -1, 64))
			} else {
				record = append(record, "")
			}
		}
		records = append(records, record)
	}

	return w.writeFile("seasonal_temperature_averages.csv", header, records)
}

// WriteCorrelations writes one correlation_<City>.csv per city, spaces
// in the label replaced by underscores. Undefined matrices still get a
// file with empty coefficient cells, so they are reported rather than
// silently omitted.
func (w *Writer) WriteCorrelations(matrices []models.CorrelationMatrix) ([]string, error) {
	paths := make([]string, 0, len(matrices))

	for _, matrix := range matrices {
		header := append([]string{""}, models.CorrelationVariables[:]...)

		records := make([][]string, 0, 3)
		for i, variable := range models.CorrelationVariables {
			record := make([]string, 0, 4)
			record = append(record, variable)
			for j := range models.CorrelationVariables {
				cell := ""
				if matrix.Defined && matrix.Values[i][j] != nil {
					cell = strconv.FormatFloat(*matrix.Values[i][j], 'f', -1, 64)
				}
				record = append(record, cell)
			}
			records = append(records, record)
		}

		name := fmt.Sprintf("correlation_%s.csv", strings.ReplaceAll(matrix.City, " ", "_"))
		path, err := w.writeFile(name, header, records)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	return paths, nil
}

// writeFile writes one CSV report, creating the output directory on
// first use.
func (w *Writer) writeFile(name string, header []string, records [][]string) (string, error) {
	if err := os.MkdirAll(w.outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	path := filepath.Join(w.outDir, name)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(header); err != nil {
		return "", fmt.Errorf("write header of %s: %w", name, err)
	}
	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("write record %d of %s: %w", i, name, err)
		}
	}

	writer.Flush()
	return path, writer.Error()
}

func formatMeasurement(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
