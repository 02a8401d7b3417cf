package validate

import (
	"math"

	"github.com/shopspring/decimal"
)

// DefaultAnomalySigma flags values more than three standard deviations
// from the mean.
const DefaultAnomalySigma = 3.0

// minAnomalySampleSize is the smallest sample for which a standard
// deviation is meaningful enough to flag outliers.
const minAnomalySampleSize = 4

// Anomaly is a value that sits unusually far from the rest of its sample.
type Anomaly struct {
	Index  int
	Value  decimal.Decimal
	Mean   float64
	StdDev float64
	Sigmas float64
}

// DetectAnomalies flags the values further than sigma standard deviations
// from the sample mean. Samples smaller than four values, or samples with
// no spread at all, produce no anomalies.
func DetectAnomalies(values []decimal.Decimal, sigma float64) []Anomaly {
	if len(values) < minAnomalySampleSize {
		return nil
	}
	if sigma <= 0 {
		sigma = DefaultAnomalySigma
	}

	floats := make([]float64, len(values))
	var sum float64
	for i, v := range values {
		f, _ := v.Float64()
		floats[i] = f
		sum += f
	}
	mean := sum / float64(len(floats))

	var sqSum float64
	for _, f := range floats {
		d := f - mean
		sqSum += d * d
	}
	stddev := math.Sqrt(sqSum / float64(len(floats)))
	if stddev == 0 {
		return nil
	}

	var out []Anomaly
	for i, f := range floats {
		sigmas := math.Abs(f-mean) / stddev
		if sigmas > sigma {
			out = append(out, Anomaly{
				Index:  i,
				Value:  values[i],
				Mean:   mean,
				StdDev: stddev,
				Sigmas: sigmas,
			})
		}
	}
	return out
}
