package template

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/oraclewa/oraclewa/internal/shared/utils"
)

// VariantSetProvider loads variant sets from some backing storage. Concrete
// implementations are filesystem-backed (FileProvider) and database-backed
// (repositories.TemplateRepo); the store only depends on this read contract.
type VariantSetProvider interface {
	LoadVariantSets(ctx context.Context) ([]VariantSet, error)
}

type setKey struct {
	client string
	event  EventType
}

// Store holds the current variant set snapshot, read-shared across
// concurrent renders. Reload builds a fresh map and swaps it in atomically;
// in-flight readers see either the old snapshot or the new one, never a mix.
type Store struct {
	provider VariantSetProvider
	snapshot atomic.Value // map[setKey]*VariantSet
}

func NewStore(provider VariantSetProvider) *Store {
	s := &Store{provider: provider}
	s.snapshot.Store(map[setKey]*VariantSet{})
	return s
}

// Reload re-reads the provider and replaces the snapshot wholesale.
// Malformed sets are logged and skipped so one broken client cannot take
// down loading for everyone else; they resolve as absent afterwards.
func (s *Store) Reload(ctx context.Context) error {
	sets, err := s.provider.LoadVariantSets(ctx)
	if err != nil {
		return fmt.Errorf("failed to load variant sets: %w", err)
	}

	next := make(map[setKey]*VariantSet, len(sets))
	skipped := 0
	for i := range sets {
		set := sets[i]
		if err := set.Validate(); err != nil {
			utils.LogError("skipping malformed variant set", err, map[string]interface{}{
				"client_id": set.ClientID,
				"event":     string(set.Event),
			})
			skipped++
			continue
		}
		next[setKey{client: set.ClientID, event: set.Event}] = &set
	}

	s.snapshot.Store(next)

	utils.LogInfo("variant sets reloaded", map[string]interface{}{
		"loaded":  len(next),
		"skipped": skipped,
	})
	return nil
}

// GetVariantSet returns the current set for a (client, event) pair, or
// ErrVariantSetNotFound. Missing is an expected result, not a failure.
func (s *Store) GetVariantSet(clientID string, event EventType) (*VariantSet, error) {
	sets := s.snapshot.Load().(map[setKey]*VariantSet)
	set, ok := sets[setKey{client: clientID, event: event}]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrVariantSetNotFound, clientID, event)
	}
	return set, nil
}

// Snapshot returns every loaded set, for the status API.
func (s *Store) Snapshot() []VariantSet {
	sets := s.snapshot.Load().(map[setKey]*VariantSet)
	out := make([]VariantSet, 0, len(sets))
	for _, set := range sets {
		out = append(out, *set)
	}
	return out
}
