// Package weights holds the fusion weight pair.
package weights

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/hybridex/internal/domain"
)

// Default fusion weights.
const (
	DefaultVector = 0.7
	DefaultText   = 0.3
)

// Weights is the (vector, text) pair applied to normalized scores.
type Weights struct {
	Vector float64
	Text   float64
}

// Default returns the 0.7 / 0.3 weighting.
func Default() Weights {
	return Weights{Vector: DefaultVector, Text: DefaultText}
}

// IsZero reports whether no weight was set.
func (w Weights) IsZero() bool { return w.Vector == 0 && w.Text == 0 }

// Validate rejects negative or non-finite weights and an all-zero pair.
func (w Weights) Validate() error {
	for _, v := range []float64{w.Vector, w.Text} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("weights must be finite and non-negative, got %g/%g: %w", w.Vector, w.Text, domain.ErrInvalidRequest)
		}
	}
	if w.IsZero() {
		return fmt.Errorf("at least one weight must be positive: %w", domain.ErrInvalidRequest)
	}
	return nil
}

// Or returns w, or fallback when w is zero.
func (w Weights) Or(fallback Weights) Weights {
	if w.IsZero() {
		return fallback
	}
	return w
}
