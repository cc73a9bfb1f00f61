package analysis

import (
	"math"
	"testing"
)

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{name: "odd count", values: []float64{3, 1, 2}, want: 2},
		{name: "even count averages middle pair", values: []float64{4, 1, 3, 2}, want: 2.5},
		{name: "single value", values: []float64{7.5}, want: 7.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := median(tt.values); got != tt.want {
				t.Errorf("median() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMedianEmpty(t *testing.T) {
	if got := median(nil); !math.IsNaN(got) {
		t.Errorf("median(nil) = %v, want NaN", got)
	}
}

func TestSampleStdDev(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
		isNaN  bool
	}{
		{name: "known sample", values: []float64{2, 4, 4, 4, 5, 5, 7, 9}, want: math.Sqrt(32.0 / 7.0)},
		{name: "identical values", values: []float64{5, 5, 5}, want: 0},
		{name: "single value is undefined", values: []float64{5}, isNaN: true},
		{name: "empty is undefined", values: nil, isNaN: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sampleStdDev(tt.values)
			if tt.isNaN {
				if !math.IsNaN(got) {
					t.Errorf("sampleStdDev() = %v, want NaN", got)
				}
				return
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("sampleStdDev() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPearson(t *testing.T) {
	tests := []struct {
		name  string
		xs    []float64
		ys    []float64
		want  float64
		isNaN bool
	}{
		{name: "perfect positive", xs: []float64{1, 2, 3, 4}, ys: []float64{2, 4, 6, 8}, want: 1},
		{name: "perfect negative", xs: []float64{1, 2, 3, 4}, ys: []float64{8, 6, 4, 2}, want: -1},
		{name: "zero variance is undefined", xs: []float64{1, 1, 1}, ys: []float64{1, 2, 3}, isNaN: true},
		{name: "too few values", xs: []float64{1}, ys: []float64{2}, isNaN: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pearson(tt.xs, tt.ys)
			if tt.isNaN {
				if !math.IsNaN(got) {
					t.Errorf("pearson() = %v, want NaN", got)
				}
				return
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("pearson() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRound2(t *testing.T) {
	if got := round2(0.123456); got != 0.12 {
		t.Errorf("round2(0.123456) = %v, want 0.12", got)
	}
	if got := round2(-1.005); got != -1.0 && got != -1.01 {
		t.Errorf("round2(-1.005) = %v, want -1.0 or -1.01", got)
	}
}
