package entry

import (
	"errors"
	"fmt"

	"github.com/crflynn/treelite/pkg/sorted"
)

// Errors returned by the quantizer.
var (
	ErrUnsorted         = errors.New("thresholds must be strictly ascending")
	ErrUnknownFeature   = errors.New("unknown feature")
	ErrUnknownThreshold = errors.New("threshold not found")
)

// BelowRange is the code for values below the first threshold of a feature.
const BelowRange = -10

// Quantizer maps float values to integer codes using per-feature thresholds.
// It is immutable after construction and safe for concurrent use.
type Quantizer struct {
	thresholds [][]float32
}

// NewQuantizer creates a quantizer. thresholds[f] holds the split thresholds of
// feature f in strictly ascending order; features without thresholds may be empty.
func NewQuantizer(thresholds [][]float32) (*Quantizer, error) {
	copied := make([][]float32, len(thresholds))
	for f, ts := range thresholds {
		for i := 1; i < len(ts); i++ {
			if !(ts[i-1] < ts[i]) {
				return nil, fmt.Errorf("feature %d: %w", f, ErrUnsorted)
			}
		}
		copied[f] = append([]float32(nil), ts...)
	}
	return &Quantizer{thresholds: copied}, nil
}

// NumFeatures returns the number of features the quantizer knows about.
func (q *Quantizer) NumFeatures() int {
	return len(q.thresholds)
}

// Thresholds returns the thresholds of feature f.
func (q *Quantizer) Thresholds(f int) []float32 {
	if f < 0 || f >= len(q.thresholds) {
		return nil
	}
	return q.thresholds[f]
}

// Index returns the position of threshold t among the thresholds of feature f.
func (q *Quantizer) Index(f int, t float32) (int, error) {
	if f < 0 || f >= len(q.thresholds) {
		return 0, fmt.Errorf("feature %d: %w", f, ErrUnknownFeature)
	}

	ts := q.thresholds[f]
	i := sorted.Find(ts, t)
	if sorted.IsEnd(ts, i) {
		return 0, fmt.Errorf("feature %d threshold %v: %w", f, t, ErrUnknownThreshold)
	}
	return i, nil
}

// Quantize returns the code of v for feature f:
//   - 2*i when v equals threshold i,
//   - 2*i+1 when v lies between thresholds i and i+1,
//   - 2*len when v is above every threshold,
//   - BelowRange when v is below the first threshold.
//
// Features without thresholds map every value to 0.
func (q *Quantizer) Quantize(f int, v float32) int {
	ts := q.Thresholds(f)
	n := len(ts)
	if n == 0 {
		return 0
	}
	if v < ts[0] {
		return BelowRange
	}

	low, high := 0, n
	for low+1 < high {
		mid := (low + high) / 2
		switch {
		case v == ts[mid]:
			return mid * 2
		case v < ts[mid]:
			high = mid
		default:
			low = mid
		}
	}

	switch {
	case ts[low] == v:
		return low * 2
	case high == n:
		return n * 2
	default:
		return low*2 + 1
	}
}

// QuantizeRow replaces every float entry of r that has thresholds with its code.
// Missing entries and features beyond the quantizer are left untouched.
// Returns the number of entries converted.
func (q *Quantizer) QuantizeRow(r *Row) int {
	converted := 0
	for f := 0; f < r.Len() && f < len(q.thresholds); f++ {
		e := r.At(f)
		if e.Kind() != Float || len(q.thresholds[f]) == 0 {
			continue
		}
		e.SetQValue(q.Quantize(f, e.FValue()))
		converted++
	}
	return converted
}
