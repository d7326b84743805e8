package template

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fixedRand returns predetermined values, so selection outcomes are exact.
type fixedRand struct {
	ints   []int
	floats []float64
	i, f   int
}

func (r *fixedRand) IntN(n int) int {
	v := r.ints[r.i%len(r.ints)]
	r.i++
	return v % n
}

func (r *fixedRand) Float64() float64 {
	v := r.floats[r.f%len(r.floats)]
	r.f++
	return v
}

func testSet() *VariantSet {
	return &VariantSet{
		ClientID: "imperio",
		Event:    EventOrderPaid,
		Variants: []Variant{
			{ID: "a", Weight: 30, Body: "Hi {{customerName}}, total {{total}}"},
			{ID: "b", Weight: 70, Body: "Thanks {{customerName}}!"},
		},
	}
}

func TestSelectWeightedWalk(t *testing.T) {
	set := testSet()

	// Total weight 100: draws 0..29 land on a, 30..99 on b.
	sel := NewSelector(&fixedRand{ints: []int{10}})
	v := sel.Select(set)
	assert.Equal(t, "a", v.ID)

	sel = NewSelector(&fixedRand{ints: []int{50}})
	v = sel.Select(set)
	assert.Equal(t, "b", v.ID)
}

func TestSelectBoundaries(t *testing.T) {
	set := testSet()

	// Draw 29 is the last value in a's interval, 30 the first in b's.
	assert.Equal(t, "a", NewSelector(&fixedRand{ints: []int{29}}).Select(set).ID)
	assert.Equal(t, "b", NewSelector(&fixedRand{ints: []int{30}}).Select(set).ID)
	assert.Equal(t, "a", NewSelector(&fixedRand{ints: []int{0}}).Select(set).ID)
	assert.Equal(t, "b", NewSelector(&fixedRand{ints: []int{99}}).Select(set).ID)
}

func TestSelectSingleVariant(t *testing.T) {
	set := &VariantSet{
		ClientID: "imperio",
		Event:    EventBroadcast,
		Variants: []Variant{{ID: "only", Weight: 1, Body: "hello"}},
	}

	sel := NewSelector(&fixedRand{ints: []int{0}})
	for i := 0; i < 5; i++ {
		assert.Equal(t, "only", sel.Select(set).ID)
	}
}

// seededRand wraps a deterministic PCG source so the distribution test is
// reproducible.
type seededRand struct{ r *rand.Rand }

func (s seededRand) IntN(n int) int   { return s.r.IntN(n) }
func (s seededRand) Float64() float64 { return s.r.Float64() }

func TestSelectDistributionConvergence(t *testing.T) {
	set := &VariantSet{
		ClientID: "imperio",
		Event:    EventOrderExpired,
		Variants: []Variant{
			{ID: "v1", Weight: 35, Body: "one"},
			{ID: "v2", Weight: 35, Body: "two"},
			{ID: "v3", Weight: 30, Body: "three"},
		},
	}

	sel := NewSelector(seededRand{r: rand.New(rand.NewPCG(42, 0))})

	const n = 100_000
	counts := map[string]int{}
	for i := 0; i < n; i++ {
		counts[sel.Select(set).ID]++
	}

	// Observed shares should sit within 2 points of the configured weights.
	assert.InDelta(t, 0.35, float64(counts["v1"])/n, 0.02)
	assert.InDelta(t, 0.35, float64(counts["v2"])/n, 0.02)
	assert.InDelta(t, 0.30, float64(counts["v3"])/n, 0.02)
}

func TestSelectByID(t *testing.T) {
	set := testSet()
	sel := NewSelector(nil)

	v, ok := sel.SelectByID(set, "b")
	assert.True(t, ok)
	assert.Equal(t, "Thanks {{customerName}}!", v.Body)

	_, ok = sel.SelectByID(set, "missing")
	assert.False(t, ok)
}

func TestNewSelectorNilRandDefaults(t *testing.T) {
	sel := NewSelector(nil)
	set := testSet()

	// Just exercise the system generator; any variant from the set is valid.
	v := sel.Select(set)
	assert.Contains(t, []string{"a", "b"}, v.ID)
}

func TestTotalWeight(t *testing.T) {
	assert.Equal(t, 100, testSet().TotalWeight())
}

func TestValidateRejectsBadSets(t *testing.T) {
	cases := []struct {
		name string
		set  VariantSet
	}{
		{"empty", VariantSet{ClientID: "c", Event: EventOrderPaid}},
		{"zero weight", VariantSet{ClientID: "c", Event: EventOrderPaid, Variants: []Variant{{ID: "a", Weight: 0, Body: "x"}}}},
		{"negative weight", VariantSet{ClientID: "c", Event: EventOrderPaid, Variants: []Variant{{ID: "a", Weight: -5, Body: "x"}}}},
		{"missing id", VariantSet{ClientID: "c", Event: EventOrderPaid, Variants: []Variant{{Weight: 1, Body: "x"}}}},
		{"duplicate id", VariantSet{ClientID: "c", Event: EventOrderPaid, Variants: []Variant{
			{ID: "a", Weight: 1, Body: "x"},
			{ID: "a", Weight: 1, Body: "y"},
		}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.set.Validate()
			assert.ErrorIs(t, err, ErrMalformedVariantSet)
		})
	}
}

func TestValidateAcceptsGoodSet(t *testing.T) {
	assert.NoError(t, testSet().Validate())
}
