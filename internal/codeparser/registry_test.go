package codeparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_Conflicts(t *testing.T) {
	tests := []struct {
		name    string
		entries []RegistryEntry
		wantErr error
	}{
		{"duplicate letter", []RegistryEntry{{"A", AetherGain}, {"A", DrawCards}}, ErrDuplicateLetter},
		{"duplicate kind", []RegistryEntry{{"A", AetherGain}, {"B", AetherGain}}, ErrDuplicateKind},
		{"lowercase letter", []RegistryEntry{{"a", AetherGain}}, ErrInvalidLetter},
		{"two letters", []RegistryEntry{{"AB", AetherGain}}, ErrInvalidLetter},
		{"empty letter", []RegistryEntry{{"", AetherGain}}, ErrInvalidLetter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRegistry(tt.entries...)
			assert.Nil(t, r)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewRegistry_UnknownKind(t *testing.T) {
	_, err := NewRegistry(RegistryEntry{"A", ActionKind(0)})
	assert.Error(t, err)
	_, err = NewRegistry(RegistryEntry{"A", lastKind})
	assert.Error(t, err)
}

func TestMustRegistry_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustRegistry(RegistryEntry{"A", AetherGain}, RegistryEntry{"A", DamageDeal})
	})
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	letters := r.Letters()
	assert.Equal(t, []string{
		"A", "B", "C", "D", "F", "G", "H", "I", "J", "K",
		"L", "M", "N", "O", "P", "Q", "R", "S", "X", "Z",
	}, letters)

	// Every kind is registered exactly once.
	seen := make(map[ActionKind]bool)
	for _, l := range letters {
		kind, ok := r.Lookup(l)
		require.True(t, ok)
		assert.False(t, seen[kind], "kind %s registered twice", kind)
		seen[kind] = true
	}
	assert.Len(t, seen, int(lastKind)-1)

	_, ok := r.Lookup("E")
	assert.False(t, ok)
}

func TestCustomRegistry(t *testing.T) {
	r, err := NewRegistry(RegistryEntry{"Y", AetherGain})
	require.NoError(t, err)

	c := New(WithRegistry(r))
	assert.Equal(t, "Gain 2$.", c.Render(Parse("Y=2"), "Card", "G"))
	assert.Contains(t, c.Render(Parse("A=2"), "Card", "G"), "ERROR:")
}

func TestActionKind_String(t *testing.T) {
	assert.Equal(t, "AetherGain", AetherGain.String())
	assert.Equal(t, "AllyFocus", AllyFocus.String())
	assert.Equal(t, "ActionKind(99)", ActionKind(99).String())
}
