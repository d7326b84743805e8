package template

import (
	"errors"
	"fmt"
)

// EventType identifies which commerce event a message reacts to.
// The enum is open: new events only need an inline fallback registered
// in defaults.go to become routable.
type EventType string

const (
	EventOrderPaid       EventType = "order_paid"
	EventOrderExpired    EventType = "order_expired"
	EventCartAbandoned   EventType = "cart_abandoned"
	EventBroadcast       EventType = "broadcast"
	EventMessageReceived EventType = "message_received"
)

// SupportedEvents returns every event type the engine ships inline
// fallbacks for.
func SupportedEvents() []EventType {
	return []EventType{
		EventOrderPaid,
		EventOrderExpired,
		EventCartAbandoned,
		EventBroadcast,
		EventMessageReceived,
	}
}

var (
	// ErrVariantSetNotFound means no set is configured for a (client, event)
	// pair. Expected during onboarding, never treated as a failure.
	ErrVariantSetNotFound = errors.New("variant set not found")

	// ErrMalformedVariantSet means a set exists but cannot be used
	// (bad weights, duplicate ids, unparsable body).
	ErrMalformedVariantSet = errors.New("malformed variant set")
)

// Variant is one candidate message template with a relative selection weight.
type Variant struct {
	ID     string `json:"id"`
	Weight int    `json:"weight"`
	Body   string `json:"body"`
}

// VariantSet is the full collection of variants for one (client, event) pair.
// Sets are immutable once loaded; reloads swap whole snapshots in the Store.
type VariantSet struct {
	ClientID string    `json:"client_id"`
	Event    EventType `json:"event"`
	Variants []Variant `json:"variants"`
}

// TotalWeight sums the variant weights.
func (s *VariantSet) TotalWeight() int {
	total := 0
	for _, v := range s.Variants {
		total += v.Weight
	}
	return total
}

// Validate rejects sets the selector must never see: empty sets,
// non-positive weights, duplicate ids.
func (s *VariantSet) Validate() error {
	if len(s.Variants) == 0 {
		return fmt.Errorf("%w: %s/%s has no variants", ErrMalformedVariantSet, s.ClientID, s.Event)
	}

	seen := make(map[string]bool, len(s.Variants))
	for _, v := range s.Variants {
		if v.ID == "" {
			return fmt.Errorf("%w: %s/%s has a variant without id", ErrMalformedVariantSet, s.ClientID, s.Event)
		}
		if seen[v.ID] {
			return fmt.Errorf("%w: %s/%s has duplicate variant id %q", ErrMalformedVariantSet, s.ClientID, s.Event, v.ID)
		}
		seen[v.ID] = true

		if v.Weight <= 0 {
			return fmt.Errorf("%w: %s/%s variant %q has non-positive weight %d", ErrMalformedVariantSet, s.ClientID, s.Event, v.ID, v.Weight)
		}
	}

	return nil
}
