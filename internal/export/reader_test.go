package export

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"weather-analyzer/internal/models"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestLoadCityList(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
		check   func(*testing.T, []models.CityLocation)
	}{
		{
			name:    "canonical headers",
			content: "City,Lat,Lng\nOslo,59.91,10.75\nLima,-12.05,-77.04\n",
			check: func(t *testing.T, cities []models.CityLocation) {
				if len(cities) != 2 {
					t.Fatalf("len(cities) = %d, want 2", len(cities))
				}
				if cities[0].City != "Oslo" || cities[0].Lat != 59.91 || cities[0].Lng != 10.75 {
					t.Errorf("cities[0] = %+v", cities[0])
				}
			},
		},
		{
			name:    "aliased headers with stray spaces",
			content: " city , latitude , LONG \nPune,18.52,73.86\n",
			check: func(t *testing.T, cities []models.CityLocation) {
				if len(cities) != 1 || cities[0].City != "Pune" {
					t.Fatalf("cities = %+v, want one Pune row", cities)
				}
			},
		},
		{
			name:    "missing longitude column",
			content: "City,Lat\nOslo,59.91\n",
			wantErr: true,
		},
		{
			name:    "unparsable coordinates skip the row",
			content: "City,Lat,Lng\nOslo,not-a-number,10.75\nLima,-12.05,-77.04\n",
			check: func(t *testing.T, cities []models.CityLocation) {
				if len(cities) != 1 || cities[0].City != "Lima" {
					t.Fatalf("cities = %+v, want only Lima", cities)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, "cities.csv", tt.content)
			cities, err := LoadCityList(path)

			if tt.wantErr {
				var vErr *models.ValidationError
				if !errors.As(err, &vErr) {
					t.Fatalf("LoadCityList() error = %v, want ValidationError", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("LoadCityList() error = %v", err)
			}
			tt.check(t, cities)
		})
	}
}

func TestLoadCombined(t *testing.T) {
	content := "City,date,temperature,humidity,pressure\n" +
		"Oslo,2023-01-01T00:00:00Z,1.5,80,1010\n" +
		"Oslo,2023-01-01T01:00:00Z,,82,1011\n" +
		"Oslo,2023-01-01T02:00:00Z,junk,83,1012\n"

	path := writeTemp(t, "combined.csv", content)
	observations, err := LoadCombined(path)
	if err != nil {
		t.Fatalf("LoadCombined() error = %v", err)
	}

	if len(observations) != 3 {
		t.Fatalf("len(observations) = %d, want 3", len(observations))
	}
	if observations[0].Temperature == nil || *observations[0].Temperature != 1.5 {
		t.Errorf("Temperature[0] = %v, want 1.5", observations[0].Temperature)
	}
	// both the empty and the unparsable cell coerce to missing
	if observations[1].Temperature != nil {
		t.Error("empty cell should be missing, not zero")
	}
	if observations[2].Temperature != nil {
		t.Error("unparsable cell should be missing, not an error")
	}
}

func TestLoadCombinedMissingColumn(t *testing.T) {
	path := writeTemp(t, "combined.csv", "City,date,temperature\nOslo,2023-01-01,1\n")
	if _, err := LoadCombined(path); err == nil {
		t.Fatal("LoadCombined() error = nil, want structural failure for missing columns")
	}
}
