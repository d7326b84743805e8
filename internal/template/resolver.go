package template

import (
	"errors"
	"fmt"

	"github.com/oraclewa/oraclewa/internal/shared/utils"
)

// Source tags where the resolved template came from.
type Source string

const (
	SourceClient         Source = "client"
	SourceGlobalDefault  Source = "global-default"
	SourceInlineFallback Source = "inline-fallback"
)

// Resolution is the transient outcome of a resolve call.
type Resolution struct {
	Variant Variant
	Source  Source
}

// Resolver decides which template source serves a render call: the client's
// own variation set, a global default, or the hardcoded inline fallback.
// It also owns the anti-uniformity policy: even when a client set exists,
// only variationProbability of renders use it, so a large recipient
// population never receives byte-identical text.
type Resolver struct {
	store                *Store
	selector             *Selector
	rng                  Rand
	variationProbability float64
}

// NewResolver builds a resolver. probability is the chance of using a client
// variation set when one exists (0.7 matches historical behaviour). It fails
// if any supported event type lacks an inline fallback: that gap would make
// a total render failure possible and must surface at startup, not mid-send.
func NewResolver(store *Store, selector *Selector, rng Rand, probability float64) (*Resolver, error) {
	if probability < 0 || probability > 1 {
		return nil, fmt.Errorf("variation probability must be in [0,1], got %v", probability)
	}
	if rng == nil {
		rng = SystemRand()
	}

	for _, event := range SupportedEvents() {
		if _, ok := inlineFallbacks[event]; !ok {
			return nil, fmt.Errorf("event type %q has no inline fallback template", event)
		}
	}

	return &Resolver{
		store:                store,
		selector:             selector,
		rng:                  rng,
		variationProbability: probability,
	}, nil
}

// Resolve walks the fallback chain: client set (gated by the coin flip) →
// global default → inline fallback. Errors below the chain are absorbed;
// only an event type with no inline fallback returns an error.
func (r *Resolver) Resolve(clientID string, event EventType) (Resolution, error) {
	set, err := r.store.GetVariantSet(clientID, event)
	switch {
	case err == nil:
		if r.rng.Float64() < r.variationProbability {
			return Resolution{Variant: r.selector.Select(set), Source: SourceClient}, nil
		}
		utils.LogDebug("anti-uniformity flip chose default over client variation", map[string]interface{}{
			"client_id": clientID,
			"event":     string(event),
		})
	case !errors.Is(err, ErrVariantSetNotFound):
		// Malformed config degrades to the next tier instead of failing
		// the send.
		utils.LogWarn("unusable variant set, falling back", map[string]interface{}{
			"client_id": clientID,
			"event":     string(event),
			"reason":    err.Error(),
		})
	}

	if variant, ok := r.globalDefault(event); ok {
		return Resolution{Variant: variant, Source: SourceGlobalDefault}, nil
	}

	body, ok := inlineFallbacks[event]
	if !ok {
		return Resolution{}, fmt.Errorf("no inline fallback for event type %q", event)
	}
	return Resolution{
		Variant: Variant{ID: "fallback", Weight: 1, Body: body},
		Source:  SourceInlineFallback,
	}, nil
}

// globalDefault prefers a provider-supplied "_default" set (selected with
// the same weighted walk) over the embedded defaults, which are wrapped as
// a single variant of weight 1.
func (r *Resolver) globalDefault(event EventType) (Variant, bool) {
	if set, err := r.store.GetVariantSet(GlobalDefaultClientID, event); err == nil {
		return r.selector.Select(set), true
	}
	if body, ok := globalDefaults[event]; ok {
		return Variant{ID: "default", Weight: 1, Body: body}, true
	}
	return Variant{}, false
}
