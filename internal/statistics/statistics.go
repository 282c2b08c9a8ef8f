package statistics

import (
	"fmt"
	"math"
)

// Tally counts how often each outcome was observed
type Tally[K comparable] struct {
	Trials int
	Counts map[K]int
}

// NewTally creates an empty tally
func NewTally[K comparable]() *Tally[K] {
	return &Tally[K]{Counts: make(map[K]int)}
}

// Add records one observation of outcome k
func (t *Tally[K]) Add(k K) {
	t.Trials++
	t.Counts[k]++
}

// Merge folds another tally into this one
func (t *Tally[K]) Merge(other *Tally[K]) {
	t.Trials += other.Trials
	for k, n := range other.Counts {
		t.Counts[k] += n
	}
}

// Count returns how often k was observed
func (t *Tally[K]) Count(k K) int {
	return t.Counts[k]
}

// Frequency returns the empirical frequency of k, 0 with no trials
func (t *Tally[K]) Frequency(k K) float64 {
	if t.Trials == 0 {
		return 0
	}
	return float64(t.Counts[k]) / float64(t.Trials)
}

// MaxDeviation returns the largest |frequency - expected| over the expected
// outcomes and any outcome observed but not expected.
func (t *Tally[K]) MaxDeviation(expected map[K]float64) float64 {
	worst := 0.0
	for k, p := range expected {
		worst = math.Max(worst, math.Abs(t.Frequency(k)-p))
	}
	for k := range t.Counts {
		if _, ok := expected[k]; !ok {
			worst = math.Max(worst, t.Frequency(k))
		}
	}
	return worst
}

// Validate checks that the counts add up to the number of trials
func (t *Tally[K]) Validate() error {
	if t.Trials <= 0 {
		return fmt.Errorf("invalid trial count: %d", t.Trials)
	}

	total := 0
	for _, n := range t.Counts {
		if n < 0 {
			return fmt.Errorf("negative count: %d", n)
		}
		total += n
	}
	if total != t.Trials {
		return fmt.Errorf("counts total (%d) does not match trials (%d)", total, t.Trials)
	}
	return nil
}
