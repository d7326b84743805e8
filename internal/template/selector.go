package template

import (
	"math/rand/v2"

	"github.com/oraclewa/oraclewa/internal/shared/utils"
)

// Rand is the randomness source used for variant selection and the
// anti-uniformity coin flip. The default implementation delegates to
// math/rand/v2's shared thread-safe generator; tests inject fixed values.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

type systemRand struct{}

func (systemRand) IntN(n int) int   { return rand.IntN(n) }
func (systemRand) Float64() float64 { return rand.Float64() }

// SystemRand returns the process-wide thread-safe randomness source.
func SystemRand() Rand { return systemRand{} }

// Selector performs weighted-random selection over a variant set.
type Selector struct {
	rng Rand
}

// NewSelector creates a selector. A nil rng falls back to SystemRand.
func NewSelector(rng Rand) *Selector {
	if rng == nil {
		rng = SystemRand()
	}
	return &Selector{rng: rng}
}

// Select draws one variant with probability proportional to its weight.
// The draw partitions [0, totalWeight) into contiguous intervals sized by
// weight, in declaration order, and walks until the drawn value falls
// inside one. Callers must never pass an empty set; Validate enforces that
// before a set reaches the store.
func (s *Selector) Select(set *VariantSet) Variant {
	total := set.TotalWeight()
	r := s.rng.IntN(total)

	for _, v := range set.Variants {
		r -= v.Weight
		if r < 0 {
			return v
		}
	}

	// Unreachable with integer weights. Kept as a backstop so a bad draw
	// degrades to the first variant instead of a panic.
	utils.LogWarn("variant selection walk exhausted, falling back to first variant", map[string]interface{}{
		"client_id": set.ClientID,
		"event":     string(set.Event),
	})
	return set.Variants[0]
}

// SelectByID bypasses randomness and returns the variant with the given id.
// Used by support tooling and the preview endpoint.
func (s *Selector) SelectByID(set *VariantSet, id string) (Variant, bool) {
	for _, v := range set.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}
