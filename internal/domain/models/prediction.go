package models

// Probability is a (non-anomaly, anomaly) likelihood pair.
type Probability [2]float64

// Scored is the weekly-indexed output of a model run.
type Scored struct {
	Predictions   []float64
	Probabilities []Probability
}

// AlignedOutput holds predictions and probabilities on the daily index.
// Days without a weekly evaluation keep (0, [0,0]).
type AlignedOutput struct {
	Predictions   []float64
	Probabilities []Probability
}

// CountAnomalies returns the number of non-zero predictions.
func (a AlignedOutput) CountAnomalies() int {
	n := 0
	for _, p := range a.Predictions {
		if p != 0 {
			n++
		}
	}
	return n
}
