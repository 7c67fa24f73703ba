package intake

import (
	"math"
	"testing"

	"github.com/clearchart/intake/internal/shared/errors"
)

func TestComputeBMI(t *testing.T) {
	tests := []struct {
		name   string
		height float64
		weight float64
		want   float64
	}{
		// Expected values follow kg/m^2 with 0.0254 m/in and 0.453592 kg/lb,
		// rounded half-up to two decimals.
		{name: "reference patient", height: 66, weight: 180, want: 29.05},
		{name: "tall light", height: 74, weight: 150, want: 19.26},
		{name: "short heavy", height: 60, weight: 220, want: 42.97},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeBMI(tt.height, tt.weight)
			if err != nil {
				t.Fatalf("ComputeBMI(%v, %v) returned error: %v", tt.height, tt.weight, err)
			}
			if got != tt.want {
				t.Errorf("ComputeBMI(%v, %v) = %v, want %v", tt.height, tt.weight, got, tt.want)
			}
		})
	}
}

func TestComputeBMIMatchesFormula(t *testing.T) {
	height, weight := 66.0, 180.0
	meters := height * 0.0254
	kg := weight * 0.453592
	want := math.Round(kg/(meters*meters)*100) / 100

	got, err := ComputeBMI(height, weight)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("ComputeBMI = %v, want %v", got, want)
	}
}

func TestComputeBMIInvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		height float64
		weight float64
	}{
		{name: "zero height", height: 0, weight: 180},
		{name: "negative height", height: -66, weight: 180},
		{name: "zero weight", height: 66, weight: 0},
		{name: "negative weight", height: 66, weight: -180},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeBMI(tt.height, tt.weight)
			if err == nil {
				t.Fatalf("ComputeBMI(%v, %v) = %v, expected error", tt.height, tt.weight, got)
			}
			if !errors.Is(err, errors.ErrInvalidInput) {
				t.Errorf("expected invalid input error, got %v", err)
			}
			if math.IsInf(got, 0) || math.IsNaN(got) {
				t.Errorf("result must never be infinite or NaN, got %v", got)
			}
		})
	}
}
