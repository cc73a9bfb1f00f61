package analysis

import (
	"math"

	"weather-analyzer/internal/models"
	"weather-analyzer/internal/store"
)

// DefaultAnomalyThreshold is the |z-score| above which a temperature
// reading is flagged.
const DefaultAnomalyThreshold = 3.0

// DetectAnomalies flags per-city temperature outliers by z-score.
// A city with fewer than two non-missing readings, or with zero or
// undefined standard deviation, contributes no anomalies; such cities
// are returned in skipped. A missing temperature has a NaN z-score and
// is never flagged. Output order is city (sorted) then original order
// within the city.
func DetectAnomalies(st *store.Store, threshold float64) ([]models.AnomalyRecord, []string) {
	var anomalies []models.AnomalyRecord
	var skipped []string

	for _, city := range st.Cities() {
		group, err := st.Group(city)
		if err != nil {
			continue
		}

		temps := validTemperatures(group)
		if len(temps) < 2 {
			skipped = append(skipped, city)
			continue
		}

		m := mean(temps)
		sd := sampleStdDev(temps)
		if math.IsNaN(sd) || sd == 0 {
			skipped = append(skipped, city)
			continue
		}

		for _, obs := range group {
			z := (obs.TemperatureValue() - m) / sd
			if math.Abs(z) > threshold {
				anomalies = append(anomalies, models.AnomalyRecord{
					Observation: obs,
					ZScore:      z,
				})
			}
		}
	}

	return anomalies, skipped
}
