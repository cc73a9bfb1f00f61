package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"weather-analyzer/internal/models"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return records
}

func TestWriteCombinedRoundTrip(t *testing.T) {
	outDir := t.TempDir()
	ts := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)

	observations := []models.Observation{
		{City: "Oslo", Timestamp: ts, Temperature: models.Float(1.5), Humidity: models.Float(80), Pressure: models.Float(1010.5)},
		{City: "Oslo", Timestamp: ts.Add(time.Hour)},
	}

	path, err := NewWriter(outDir).WriteCombined(observations)
	if err != nil {
		t.Fatalf("WriteCombined() error = %v", err)
	}

	loaded, err := LoadCombined(path)
	if err != nil {
		t.Fatalf("LoadCombined() error = %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("len(loaded) = %d, want 2", len(loaded))
	}
	if loaded[0].Temperature == nil || *loaded[0].Temperature != 1.5 {
		t.Errorf("Temperature = %v, want 1.5", loaded[0].Temperature)
	}
	if loaded[1].Temperature != nil || loaded[1].Humidity != nil || loaded[1].Pressure != nil {
		t.Error("missing measurements must survive the round trip as missing")
	}
	if !loaded[0].Timestamp.Equal(ts) {
		t.Errorf("Timestamp = %v, want %v", loaded[0].Timestamp, ts)
	}
}

func TestWriteDailyRanges(t *testing.T) {
	outDir := t.TempDir()

	rows := []models.DailyRange{
		{City: "Oslo", Date: time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC), MinTemperature: 12, MaxTemperature: 25.5},
		{City: "Oslo", Date: time.Date(2023, 7, 2, 0, 0, 0, 0, time.UTC), MinTemperature: 18, MaxTemperature: 18},
	}

	path, err := NewWriter(outDir).WriteDailyRanges(rows)
	if err != nil {
		t.Fatalf("WriteDailyRanges() error = %v", err)
	}
	if filepath.Base(path) != "daily_temperature_ranges.csv" {
		t.Errorf("file name = %s, want daily_temperature_ranges.csv", filepath.Base(path))
	}

	records := readCSV(t, path)
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3 (header + 2 rows)", len(records))
	}
	wantHeader := []string{"City", "date", "min_temperature", "max_temperature"}
	for i, col := range wantHeader {
		if records[0][i] != col {
			t.Errorf("header[%d] = %q, want %q", i, records[0][i], col)
		}
	}
	if records[1][1] != "2023-07-01" {
		t.Errorf("date cell = %q, want 2023-07-01", records[1][1])
	}
	if records[1][2] != "12" || records[1][3] != "25.5" {
		t.Errorf("range cells = [%q, %q], want [12, 25.5]", records[1][2], records[1][3])
	}
}

func TestWriteSeasonal(t *testing.T) {
	outDir := t.TempDir()
	rows := []models.MonthlyMeans{
		{City: "Kyiv", Means: map[int]float64{1: -6, 7: 25}},
	}

	path, err := NewWriter(outDir).WriteSeasonal(rows)
	if err != nil {
		t.Fatalf("WriteSeasonal() error = %v", err)
	}

	records := readCSV(t, path)
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if len(records[0]) != 13 {
		t.Fatalf("header width = %d, want 13", len(records[0]))
	}

	row := records[1]
	if row[0] != "Kyiv" {
		t.Errorf("City = %q, want Kyiv", row[0])
	}
	if row[1] != "-6" {
		t.Errorf("January cell = %q, want -6", row[1])
	}
	if row[7] != "25" {
		t.Errorf("July cell = %q, want 25", row[7])
	}
	for m := 1; m <= 12; m++ {
		if m == 1 || m == 7 {
			continue
		}
		if row[m] != "" {
			t.Errorf("month %d cell = %q, want empty (no data)", m, row[m])
		}
	}
}

func TestWriteCorrelations(t *testing.T) {
	outDir := t.TempDir()
	one := 1.0
	half := 0.5

	matrices := []models.CorrelationMatrix{
		{
			City:         "New York",
			Defined:      true,
			CompleteRows: 10,
			Values: [3][3]*float64{
				{&one, &half, nil},
				{&half, &one, nil},
				{nil, nil, nil},
			},
		},
		{City: "Lima", Defined: false, CompleteRows: 1},
	}

	paths, err := NewWriter(outDir).WriteCorrelations(matrices)
	if err != nil {
		t.Fatalf("WriteCorrelations() error = %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("len(paths) = %d, want 2 (undefined city still reported)", len(paths))
	}

	// spaces replaced with underscores in the file name
	if filepath.Base(paths[0]) != "correlation_New_York.csv" {
		t.Errorf("file name = %q, want correlation_New_York.csv", filepath.Base(paths[0]))
	}

	records := readCSV(t, paths[0])
	if records[1][1] != "1" || records[1][2] != "0.5" {
		t.Errorf("temperature row = %v", records[1])
	}

	// undefined matrix exports with empty coefficient cells
	limaRecords := readCSV(t, paths[1])
	for _, row := range limaRecords[1:] {
		for _, cell := range row[1:] {
			if cell != "" {
				t.Errorf("undefined matrix cell = %q, want empty", cell)
			}
		}
	}
}

func TestWriteAnomaliesAndForecast(t *testing.T) {
	outDir := t.TempDir()
	ts := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

	anomalies := []models.AnomalyRecord{
		{
			Observation: models.Observation{City: "Oslo", Timestamp: ts, Temperature: models.Float(1000)},
			ZScore:      3.5,
		},
	}
	aPath, err := NewWriter(outDir).WriteAnomalies(anomalies)
	if err != nil {
		t.Fatalf("WriteAnomalies() error = %v", err)
	}
	aRecords := readCSV(t, aPath)
	if aRecords[1][5] != "3.5" {
		t.Errorf("zscore cell = %q, want 3.5", aRecords[1][5])
	}

	points := []models.ForecastPoint{
		{City: "Oslo", Date: ts.AddDate(0, 0, 1), PredictedTemperature: 21.25},
	}
	fPath, err := NewWriter(outDir).WriteForecast(points)
	if err != nil {
		t.Fatalf("WriteForecast() error = %v", err)
	}
	fRecords := readCSV(t, fPath)
	if fRecords[1][2] != "21.25" {
		t.Errorf("prediction cell = %q, want 21.25", fRecords[1][2])
	}
}
