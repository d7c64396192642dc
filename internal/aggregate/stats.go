// Package aggregate provides the numeric and statistical reducers used by
// the mode runners: summary statistics, softmax weighting, plurality and
// majority tallies, topological wave scheduling, and uniform shuffles.
package aggregate

import (
	"math"
	"sort"
)

// Summary holds summary statistics over a numeric sample.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	// CV is the coefficient of variation: stddev / |mean|. Zero when the
	// mean is zero.
	CV float64 `json:"cv"`
}

// Summarize computes summary statistics over values. Population stddev;
// median uses linear interpolation on even counts. Returns a zero Summary
// for an empty sample.
func Summarize(values []float64) Summary {
	n := len(values)
	if n == 0 {
		return Summary{}
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(n)

	var sq float64
	for _, v := range sorted {
		d := v - mean
		sq += d * d
	}
	stddev := math.Sqrt(sq / float64(n))

	var median float64
	if n%2 == 1 {
		median = sorted[n/2]
	} else {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	cv := 0.0
	if mean != 0 {
		cv = stddev / math.Abs(mean)
	}

	return Summary{
		Count:  n,
		Mean:   mean,
		Median: median,
		StdDev: stddev,
		Min:    sorted[0],
		Max:    sorted[n-1],
		CV:     cv,
	}
}

// Mean returns the arithmetic mean of values, or 0 for an empty sample.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// Distribution tallies qualitative answers.
type Distribution struct {
	Counts map[string]int `json:"counts"`
	// Mode is the highest-count answer; ties break on the lexicographically
	// first answer so the result is deterministic.
	Mode string `json:"mode"`
	// Agreement is mode_count / total as a percentage in [0, 100].
	Agreement float64 `json:"agreement"`
	Total     int     `json:"total"`
}

// Distribute builds a frequency table over answers. Empty strings are
// excluded from both numerator and denominator.
func Distribute(answers []string) Distribution {
	d := Distribution{Counts: make(map[string]int)}
	for _, a := range answers {
		if a == "" {
			continue
		}
		d.Counts[a]++
		d.Total++
	}
	if d.Total == 0 {
		return d
	}
	for answer, count := range d.Counts {
		if count > d.Counts[d.Mode] || (count == d.Counts[d.Mode] && (d.Mode == "" || answer < d.Mode)) {
			d.Mode = answer
		}
	}
	d.Agreement = Round(float64(d.Counts[d.Mode])/float64(d.Total)*100, 1)
	return d
}
