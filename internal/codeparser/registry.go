package codeparser

import (
	"fmt"
	"sort"
)

// RegistryEntry binds one code letter to an action kind.
type RegistryEntry struct {
	Letter string
	Kind   ActionKind
}

// Registry maps code letters to action kinds. It is read-only once built and
// may be shared by any number of compilers.
type Registry struct {
	byLetter map[string]ActionKind
}

// NewRegistry builds a registry and rejects any entry that would make the
// mapping non-injective.
func NewRegistry(entries ...RegistryEntry) (*Registry, error) {
	r := &Registry{byLetter: make(map[string]ActionKind, len(entries))}
	seen := make(map[ActionKind]string, len(entries))
	for _, e := range entries {
		if len(e.Letter) != 1 || e.Letter[0] < 'A' || e.Letter[0] > 'Z' {
			return nil, fmt.Errorf("%w: %q", ErrInvalidLetter, e.Letter)
		}
		if !e.Kind.valid() {
			return nil, fmt.Errorf("letter %s: unknown action kind %d", e.Letter, int(e.Kind))
		}
		if prev, ok := r.byLetter[e.Letter]; ok {
			return nil, fmt.Errorf("%w: %s is already %s", ErrDuplicateLetter, e.Letter, prev)
		}
		if prev, ok := seen[e.Kind]; ok {
			return nil, fmt.Errorf("%w: %s under %s and %s", ErrDuplicateKind, e.Kind, prev, e.Letter)
		}
		r.byLetter[e.Letter] = e.Kind
		seen[e.Kind] = e.Letter
	}
	return r, nil
}

// MustRegistry is NewRegistry for static tables; a conflict panics.
func MustRegistry(entries ...RegistryEntry) *Registry {
	r, err := NewRegistry(entries...)
	if err != nil {
		panic(fmt.Sprintf("codeparser: %v", err))
	}
	return r
}

// Lookup returns the kind registered for key.
func (r *Registry) Lookup(key string) (ActionKind, bool) {
	kind, ok := r.byLetter[key]
	return kind, ok
}

// Letters returns the registered letters in order.
func (r *Registry) Letters() []string {
	letters := make([]string, 0, len(r.byLetter))
	for l := range r.byLetter {
		letters = append(letters, l)
	}
	sort.Strings(letters)
	return letters
}

var defaultRegistry = MustRegistry(
	RegistryEntry{"A", AetherGain},
	RegistryEntry{"B", CastPrepped},
	RegistryEntry{"C", ChargeGain},
	RegistryEntry{"D", DamageDeal},
	RegistryEntry{"F", FocusBreach},
	RegistryEntry{"G", GraveholdLife},
	RegistryEntry{"H", CastFromHand},
	RegistryEntry{"I", DiscardCards},
	RegistryEntry{"J", DrawCards},
	RegistryEntry{"K", DestroyCards},
	RegistryEntry{"L", LifeChange},
	RegistryEntry{"M", PlayCountName},
	RegistryEntry{"N", PlayCountTime},
	RegistryEntry{"O", XaxosCharges},
	RegistryEntry{"P", PulseTokens},
	RegistryEntry{"Q", DiscardPrepped},
	RegistryEntry{"R", DestroyPrepped},
	RegistryEntry{"S", SilenceMinion},
	RegistryEntry{"X", DestroyThis},
	RegistryEntry{"Z", AllyFocus},
)

// DefaultRegistry returns the standard player-card letter table.
func DefaultRegistry() *Registry {
	return defaultRegistry
}
