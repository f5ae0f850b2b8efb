package codeparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		known map[string]string
		want  string
	}{
		{"plain", "gain 3$", nil, "gain 3$"},
		{"known value", "{source} draws", map[string]string{"source": "any ally"}, "any ally draws"},
		{"missing values get stand-ins", "{a} and {b} and {a}", nil, "[missing a] and [missing b] and [missing a]"},
		{"escaped braces", "{{literal}}", nil, "{literal}"},
		{"values are not expanded again", "{a}", map[string]string{"a": "{a}"}, "{a}"},
		{"empty", "", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.text, tt.known)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_DoesNotMutateKnown(t *testing.T) {
	known := map[string]string{"a": "1"}
	_, err := Resolve("{a}{b}", known)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1"}, known)
}

func TestResolve_Malformed(t *testing.T) {
	for _, text := range []string{"{unclosed", "stray }", "{}", "{a{b}"} {
		t.Run(text, func(t *testing.T) {
			_, err := Resolve(text, nil)
			assert.ErrorIs(t, err, ErrMalformedTemplate)
		})
	}
}

func TestResolveText(t *testing.T) {
	assert.Equal(t, "[missing x] here", ResolveText("{x} here"))
	assert.Equal(t, "ERROR: malformed code", ResolveText("{broken"))
}

func TestSubstitute_MissingKey(t *testing.T) {
	_, err := substitute("x {first} {second}", map[string]string{})
	var missing *MissingKeyError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "first", missing.Key)
}
