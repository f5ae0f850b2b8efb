package lookup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var names = []string{"jade", "jadeite", "amethystparagon", "burningopal", "spark", "sparkfire"}

func TestCompleteMatch(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"exact wins", "jade", []string{"jade"}},
		{"prefix", "spar", []string{"spark", "sparkfire"}},
		{"substring", "opal", []string{"burningopal"}},
		{"prefix and substring", "a", []string{"amethystparagon", "burningopal", "jade", "jadeite", "spark", "sparkfire"}},
		{"none", "crystal", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompleteMatch(tt.query, names))
		})
	}
}

func TestCompleteMatch_Duplicates(t *testing.T) {
	assert.Equal(t, []string{"spark"}, CompleteMatch("spa", []string{"spark", "spark"}))
}

func TestFind(t *testing.T) {
	r := Find("spar", names, 5)
	assert.False(t, r.Ambiguous)
	assert.Len(t, r.Keys, 2)

	r = Find("a", names, 5)
	assert.True(t, r.Ambiguous)
	assert.Len(t, r.Keys, 6)

	r = Find("jade", names, 0)
	assert.True(t, r.Ambiguous)
}

func TestSuggest(t *testing.T) {
	assert.Equal(t, []string{"jade", "jadeite"}, Suggest("jd", names, 3))
	assert.Equal(t, []string{"jade"}, Suggest("jd", names, 1))
	assert.Equal(t, []string{"spark"}, Suggest("sprak", names, 3))
	assert.Empty(t, Suggest("zzzzzz", names, 3))
	assert.Nil(t, Suggest("", names, 3))
	assert.Nil(t, Suggest("jade", names, 0))
}

func TestSplitMention(t *testing.T) {
	tests := []struct {
		in, query, mention string
	}{
		{"jade", "jade", ""},
		{"jade <@!1234>", "jade ", "<@!1234>"},
		{"jade@someone", "jade", ""},
		{"jade #channel", "jade ", ""},
		{"jade <@!1234", "jade <", ""},
	}
	for _, tt := range tests {
		q, m := SplitMention(tt.in)
		assert.Equal(t, tt.query, q, tt.in)
		assert.Equal(t, tt.mention, m, tt.in)
	}
}
