package template

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, sets []VariantSet, rng Rand, probability float64) *Engine {
	t.Helper()
	store := NewStore(&stubProvider{sets: sets})
	require.NoError(t, store.Reload(context.Background()))

	resolver, err := NewResolver(store, NewSelector(rng), rng, probability)
	require.NoError(t, err)
	return NewEngine(store, resolver, NewRenderer())
}

func TestEngineRenderClientVariant(t *testing.T) {
	ctx := &RenderContext{
		User:  User{Name: "Ana", Phone: "5511988887777"},
		Order: Order{ID: "ord-1", Total: 50},
	}

	// Draw 10 of 100 lands on variant a.
	rng := &fixedRand{ints: []int{10}, floats: []float64{0.1}}
	e := newTestEngine(t, []VariantSet{*testSet()}, rng, 0.7)

	msg, err := e.Render("imperio", EventOrderPaid, ctx)
	require.NoError(t, err)
	assert.Equal(t, "Hi Ana, total 50", msg.Text)
	assert.Equal(t, SourceClient, msg.Source)
	assert.Equal(t, "a", msg.VariantID)

	// Draw 50 lands on variant b.
	rng = &fixedRand{ints: []int{50}, floats: []float64{0.1}}
	e = newTestEngine(t, []VariantSet{*testSet()}, rng, 0.7)

	msg, err = e.Render("imperio", EventOrderPaid, ctx)
	require.NoError(t, err)
	assert.Equal(t, "Thanks Ana!", msg.Text)
	assert.Equal(t, "b", msg.VariantID)
}

func TestEngineRenderFallbackForUnknownClient(t *testing.T) {
	rng := &fixedRand{ints: []int{0}, floats: []float64{0.0}}
	e := newTestEngine(t, nil, rng, 0.7)

	msg, err := e.Render("ghost", EventOrderExpired, &RenderContext{
		User:    User{Name: "Carlos"},
		Product: Product{Title: "Sorteio 123"},
		Order:   Order{Total: 19.9},
	})
	require.NoError(t, err)
	assert.Equal(t, SourceGlobalDefault, msg.Source)
	assert.Contains(t, msg.Text, "Carlos")
	assert.Contains(t, msg.Text, "R$ 19,90")
}

func TestEngineReloadPicksUpNewSets(t *testing.T) {
	provider := &stubProvider{}
	store := NewStore(provider)
	require.NoError(t, store.Reload(context.Background()))

	rng := &fixedRand{ints: []int{0}, floats: []float64{0.0, 0.0}}
	resolver, err := NewResolver(store, NewSelector(rng), rng, 1.0)
	require.NoError(t, err)
	e := NewEngine(store, resolver, NewRenderer())

	ctx := &RenderContext{User: User{Name: "Ana"}}

	msg, err := e.Render("imperio", EventBroadcast, ctx)
	require.NoError(t, err)
	assert.Equal(t, SourceInlineFallback, msg.Source)

	provider.swap([]VariantSet{{
		ClientID: "imperio",
		Event:    EventBroadcast,
		Variants: []Variant{{ID: "v1", Weight: 1, Body: "Novidade, {{customerName}}!"}},
	}})
	require.NoError(t, e.Reload(context.Background()))

	msg, err = e.Render("imperio", EventBroadcast, ctx)
	require.NoError(t, err)
	assert.Equal(t, SourceClient, msg.Source)
	assert.Equal(t, "Novidade, Ana!", msg.Text)
}

func TestEngineRenderForChannelAttachesButtons(t *testing.T) {
	rng := &fixedRand{ints: []int{0}, floats: []float64{0.0}}
	e := newTestEngine(t, nil, rng, 0.7)
	ctx := &RenderContext{User: User{Name: "Ana"}, Order: Order{Total: 10}}

	interactive, err := e.RenderForChannel("ghost", EventOrderPaid, ctx, ChannelCapabilities{SupportsInteractiveAffordances: true})
	require.NoError(t, err)
	assert.True(t, interactive.SupportsButtons)
	require.Len(t, interactive.Buttons, 2)
	assert.Equal(t, "community", interactive.Buttons[0].ID)

	textOnly, err := e.RenderForChannel("ghost", EventOrderPaid, ctx, ChannelCapabilities{})
	require.NoError(t, err)
	assert.False(t, textOnly.SupportsButtons)
	assert.Empty(t, textOnly.Buttons)
	assert.Equal(t, interactive.Text, textOnly.Text)
}

func TestEngineRenderForChannelNoAffordanceForEvent(t *testing.T) {
	rng := &fixedRand{ints: []int{0}, floats: []float64{0.0}}
	e := newTestEngine(t, nil, rng, 0.7)

	msg, err := e.RenderForChannel("ghost", EventMessageReceived, &RenderContext{User: User{Name: "Ana"}},
		ChannelCapabilities{SupportsInteractiveAffordances: true})
	require.NoError(t, err)
	assert.False(t, msg.SupportsButtons)
}

func TestEngineRenderVariantByID(t *testing.T) {
	rng := &fixedRand{ints: []int{0}, floats: []float64{0.0}}
	e := newTestEngine(t, []VariantSet{*testSet()}, rng, 0.7)
	ctx := &RenderContext{User: User{Name: "Ana"}, Order: Order{Total: 50}}

	msg, err := e.RenderVariant("imperio", EventOrderPaid, "b", ctx)
	require.NoError(t, err)
	assert.Equal(t, "Thanks Ana!", msg.Text)
	assert.Equal(t, "b", msg.VariantID)

	_, err = e.RenderVariant("imperio", EventOrderPaid, "zzz", ctx)
	assert.Error(t, err)

	_, err = e.RenderVariant("ghost", EventOrderPaid, "a", ctx)
	assert.ErrorIs(t, err, ErrVariantSetNotFound)
}

func TestEngineUnparsableVariantFailsRender(t *testing.T) {
	broken := VariantSet{
		ClientID: "imperio",
		Event:    EventBroadcast,
		Variants: []Variant{{ID: "bad", Weight: 1, Body: "{{#each items}}no close"}},
	}

	rng := &fixedRand{ints: []int{0}, floats: []float64{0.0}}
	e := newTestEngine(t, []VariantSet{broken}, rng, 1.0)

	_, err := e.Render("imperio", EventBroadcast, &RenderContext{User: User{Name: "Ana"}})
	assert.Error(t, err)
}

func TestEngineInlineFallbackSubstitutesName(t *testing.T) {
	rng := &fixedRand{ints: []int{0}, floats: []float64{0.0}}
	e := newTestEngine(t, nil, rng, 0.7)

	msg, err := e.Render("unknown-client", EventBroadcast, &RenderContext{
		User:   User{Name: "Ana"},
		Custom: map[string]interface{}{"message": "Sorteio hoje às 20h!"},
	})
	require.NoError(t, err)
	assert.Equal(t, SourceInlineFallback, msg.Source)
	assert.Contains(t, msg.Text, "Ana")
	assert.Contains(t, msg.Text, "Sorteio hoje às 20h!")
}

func TestEngineGlobalDefaultOrderPaidContent(t *testing.T) {
	rng := &fixedRand{ints: []int{0}, floats: []float64{0.0}}
	e := newTestEngine(t, nil, rng, 0.7)

	msg, err := e.Render("ghost", EventOrderPaid, &RenderContext{
		User:  User{Name: "Maria"},
		Order: Order{ID: "ABC-42", Total: 1234.56},
		Items: []Item{{Name: "Cota dupla", Quantity: 3}},
	})
	require.NoError(t, err)
	assert.Contains(t, msg.Text, "Maria")
	assert.Contains(t, msg.Text, "#ABC-42")
	assert.Contains(t, msg.Text, "R$ 1.234,56")
	assert.Contains(t, msg.Text, "Cota dupla (3x)")
}
