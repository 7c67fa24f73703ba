package intake

import (
	"math"

	"github.com/clearchart/intake/internal/shared/errors"
)

// Conversion constants for imperial input.
const (
	metersPerInch = 0.0254
	kgPerPound    = 0.453592
)

// ComputeBMI converts imperial height and weight to a body-mass index,
// rounded half-up to two decimal places. Both inputs must be strictly
// positive; the result is never infinite.
func ComputeBMI(heightInches, weightPounds float64) (float64, error) {
	if heightInches <= 0 {
		return 0, errors.InvalidInput("height must be positive")
	}
	if weightPounds <= 0 {
		return 0, errors.InvalidInput("weight must be positive")
	}

	meters := heightInches * metersPerInch
	kg := weightPounds * kgPerPound
	bmi := kg / (meters * meters)

	return math.Round(bmi*100) / 100, nil
}
