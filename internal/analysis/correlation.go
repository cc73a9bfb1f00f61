package analysis

import (
	"math"

	"weather-analyzer/internal/models"
	"weather-analyzer/internal/store"
)

// Correlate computes the per-city Pearson correlation matrix over
// temperature, humidity and pressure, using only rows where all three
// measurements are present. Cities with fewer than two complete rows
// get an explicitly undefined matrix rather than being dropped from the
// result. Coefficients are rounded to two decimals.
func Correlate(st *store.Store) []models.CorrelationMatrix {
	cities := st.Cities()
	matrices := make([]models.CorrelationMatrix, 0, len(cities))

	for _, city := range cities {
		group, err := st.Group(city)
		if err != nil {
			continue
		}
		matrices = append(matrices, correlateCity(city, group))
	}

	return matrices
}

func correlateCity(city string, group []models.Observation) models.CorrelationMatrix {
	// columns in models.CorrelationVariables order
	var cols [3][]float64
	for _, obs := range group {
		if !obs.Complete() {
			continue
		}
		cols[0] = append(cols[0], *obs.Temperature)
		cols[1] = append(cols[1], *obs.Humidity)
		cols[2] = append(cols[2], *obs.Pressure)
	}

	matrix := models.CorrelationMatrix{
		City:         city,
		CompleteRows: len(cols[0]),
	}

	if matrix.CompleteRows < 2 {
		return matrix
	}

	matrix.Defined = true
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			r := pearson(cols[i], cols[j])
			if math.IsNaN(r) {
				continue
			}
			rounded := round2(r)
			matrix.Values[i][j] = &rounded
			matrix.Values[j][i] = &rounded
		}
	}

	return matrix
}
