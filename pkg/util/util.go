package util

import (
	"math"
)

// RoundFloat rounds val half away from zero to precision decimal places.
func RoundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}
