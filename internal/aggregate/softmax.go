package aggregate

import "math"

// Outlier thresholds for self-assessed confidences. Values at or beyond
// these bounds get flagged so the synthesizer can weight them skeptically.
const (
	OutlierHigh = 0.95
	OutlierLow  = 0.1
)

// minTemperature is the floor below which softmax degenerates numerically;
// at or under it we fall back to uniform weights.
const minTemperature = 0.001

// Weight pairs an input confidence with its normalized softmax weight.
type Weight struct {
	Confidence float64 `json:"confidence"`
	Weight     float64 `json:"weight"`
	Outlier    bool    `json:"outlier,omitempty"`
}

// Softmax converts confidences into weights at temperature t:
// w_i = exp(c_i/t) / sum_j exp(c_j/t). When t < 0.001 the weights are
// uniform. Confidences >= 0.95 or <= 0.1 are flagged as outliers.
func Softmax(confidences []float64, t float64) []Weight {
	n := len(confidences)
	if n == 0 {
		return nil
	}

	weights := make([]Weight, n)
	for i, c := range confidences {
		weights[i] = Weight{
			Confidence: c,
			Outlier:    c >= OutlierHigh || c <= OutlierLow,
		}
	}

	if t < minTemperature {
		for i := range weights {
			weights[i].Weight = 1 / float64(n)
		}
		return weights
	}

	// Subtract the max before exponentiating to keep exp() in range.
	maxC := confidences[0]
	for _, c := range confidences[1:] {
		if c > maxC {
			maxC = c
		}
	}

	var sum float64
	exps := make([]float64, n)
	for i, c := range confidences {
		exps[i] = math.Exp((c - maxC) / t)
		sum += exps[i]
	}
	for i := range weights {
		weights[i].Weight = exps[i] / sum
	}
	return weights
}
