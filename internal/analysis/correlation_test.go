package analysis

import (
	"testing"
	"time"

	"weather-analyzer/internal/models"
	"weather-analyzer/internal/store"
)

func TestCorrelate(t *testing.T) {
	tests := []struct {
		name         string
		observations []models.Observation
		check        func(*testing.T, []models.CorrelationMatrix)
	}{
		{
			name: "symmetric with unit diagonal",
			observations: []models.Observation{
				obs("Oslo", day(2023, time.January, 1), f(1), f(80), f(1010)),
				obs("Oslo", day(2023, time.January, 2), f(2), f(70), f(1008)),
				obs("Oslo", day(2023, time.January, 3), f(3), f(65), f(1013)),
				obs("Oslo", day(2023, time.January, 4), f(5), f(50), f(1002)),
			},
			check: func(t *testing.T, matrices []models.CorrelationMatrix) {
				m := matrices[0]
				if !m.Defined {
					t.Fatal("matrix should be defined")
				}
				if m.CompleteRows != 4 {
					t.Errorf("CompleteRows = %d, want 4", m.CompleteRows)
				}
				for i := 0; i < 3; i++ {
					if m.Values[i][i] == nil || *m.Values[i][i] != 1.0 {
						t.Errorf("diagonal [%d][%d] = %v, want 1.0", i, i, m.Values[i][i])
					}
					for j := 0; j < 3; j++ {
						a, b := m.Values[i][j], m.Values[j][i]
						if (a == nil) != (b == nil) || (a != nil && *a != *b) {
							t.Errorf("matrix not symmetric at [%d][%d]", i, j)
						}
						if a != nil && (*a < -1 || *a > 1) {
							t.Errorf("coefficient [%d][%d] = %v outside [-1, 1]", i, j, *a)
						}
					}
				}
			},
		},
		{
			name: "perfectly anticorrelated pair",
			observations: []models.Observation{
				obs("Lima", day(2023, time.February, 1), f(10), f(90), f(1000)),
				obs("Lima", day(2023, time.February, 2), f(20), f(80), f(1000)),
				obs("Lima", day(2023, time.February, 3), f(30), f(70), f(1000)),
			},
			check: func(t *testing.T, matrices []models.CorrelationMatrix) {
				m := matrices[0]
				if m.Values[0][1] == nil || *m.Values[0][1] != -1.0 {
					t.Errorf("temperature/humidity = %v, want -1.0", m.Values[0][1])
				}
				// pressure has zero variance: undefined against everything
				if m.Values[0][2] != nil || m.Values[2][2] != nil {
					t.Error("zero-variance pressure should have undefined coefficients")
				}
			},
		},
		{
			name: "incomplete rows dropped before correlating",
			observations: []models.Observation{
				obs("Pune", day(2023, time.March, 1), f(10), f(50), f(1000)),
				obs("Pune", day(2023, time.March, 2), f(20), nil, f(1001)),
				obs("Pune", day(2023, time.March, 3), f(30), f(60), f(1002)),
				obs("Pune", day(2023, time.March, 4), f(40), f(70), f(1003)),
			},
			check: func(t *testing.T, matrices []models.CorrelationMatrix) {
				if matrices[0].CompleteRows != 3 {
					t.Errorf("CompleteRows = %d, want 3 (row with missing humidity dropped)", matrices[0].CompleteRows)
				}
			},
		},
		{
			name: "fewer than two complete rows reported as undefined",
			observations: []models.Observation{
				obs("Riga", day(2023, time.April, 1), f(10), f(50), f(1000)),
				obs("Riga", day(2023, time.April, 2), f(20), nil, f(1001)),
				obs("Riga", day(2023, time.April, 3), nil, f(60), f(1002)),
			},
			check: func(t *testing.T, matrices []models.CorrelationMatrix) {
				if len(matrices) != 1 {
					t.Fatalf("undefined city must still appear in the result, got %d matrices", len(matrices))
				}
				m := matrices[0]
				if m.Defined {
					t.Error("Defined = true, want false")
				}
				if m.CompleteRows != 1 {
					t.Errorf("CompleteRows = %d, want 1", m.CompleteRows)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := store.FromObservations(tt.observations)
			tt.check(t, Correlate(st))
		})
	}
}
