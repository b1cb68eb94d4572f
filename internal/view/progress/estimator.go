// Package progress converts noisy periodic height observations into a
// smoothed indexing rate and a derived ETA, independently for the forward
// ingester and the backward history backfill.
package progress

import (
	"math"
	"time"
)

// Direction selects how height deltas are interpreted.
type Direction int

const (
	// Forward measures the main ingester: progress is height increasing.
	Forward Direction = iota
	// Backward measures the history backfill: progress is height decreasing.
	Backward
)

// Default exponential smoothing weights. History dominates to damp noise
// from coarse, irregularly spaced polling.
const (
	DefaultHistoryWeight = 0.7
	DefaultSampleWeight  = 0.3
)

type sample struct {
	at     time.Time
	height uint64
}

// Estimator maintains a smoothed blocks-per-second rate for one traversal
// direction. The zero value is not usable; construct with New.
//
// Estimator is not safe for concurrent use; the owning service serializes
// access.
type Estimator struct {
	dir           Direction
	historyWeight float64
	sampleWeight  float64

	last *sample
	rate float64
}

// New creates an estimator with the default smoothing weights.
func New(dir Direction) *Estimator {
	return NewWeighted(dir, DefaultHistoryWeight, DefaultSampleWeight)
}

// NewWeighted creates an estimator with explicit smoothing weights. Invalid
// weights fall back to the defaults.
func NewWeighted(dir Direction, historyWeight, sampleWeight float64) *Estimator {
	if historyWeight <= 0 || sampleWeight <= 0 || historyWeight+sampleWeight > 1.0001 {
		historyWeight = DefaultHistoryWeight
		sampleWeight = DefaultSampleWeight
	}
	return &Estimator{dir: dir, historyWeight: historyWeight, sampleWeight: sampleWeight}
}

// Observe feeds one (time, height) observation.
//
// The first observation only seeds the reference sample. Afterwards each
// observation contributes its instantaneous rate to the EMA, except:
//   - zero or negative elapsed time: no rate can be derived, the rate is
//     left unchanged,
//   - a height regression (stale or out-of-order observation): the rate is
//     left unchanged.
//
// In both exception cases the reference sample is still replaced, so the
// next delta is measured against the newest observation rather than
// compounding the skew.
func (e *Estimator) Observe(now time.Time, height uint64) {
	if e.last == nil {
		e.last = &sample{at: now, height: height}
		return
	}

	elapsed := now.Sub(e.last.at).Seconds()
	if elapsed <= 0 {
		e.last = &sample{at: now, height: height}
		return
	}

	var delta int64
	switch e.dir {
	case Backward:
		delta = int64(e.last.height) - int64(height)
	default:
		delta = int64(height) - int64(e.last.height)
	}

	if delta >= 0 {
		instantaneous := float64(delta) / elapsed
		e.rate = e.rate*e.historyWeight + instantaneous*e.sampleWeight
	}
	e.last = &sample{at: now, height: height}
}

// Rate returns the smoothed rate in heights per second. Zero until enough
// observations have arrived.
func (e *Estimator) Rate() float64 {
	return e.rate
}

// ETA returns the estimated time to cover the remaining distance. The second
// return is false while no positive rate is established; callers must report
// the ETA as unavailable rather than inventing a number.
func (e *Estimator) ETA(remaining uint64) (time.Duration, bool) {
	if e.rate <= 0 {
		return 0, false
	}
	secs := float64(remaining) / e.rate
	if math.IsInf(secs, 0) || math.IsNaN(secs) {
		return 0, false
	}
	return time.Duration(secs * float64(time.Second)), true
}

// Reset clears the reference sample and the smoothed rate, as when the
// consuming view is torn down and recreated.
func (e *Estimator) Reset() {
	e.last = nil
	e.rate = 0
}
