package randomizer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexive/internal/codeparser"
	"lexive/internal/config"
	"lexive/internal/content"
)

func card(name, ctype string, cost int, code string) content.PlayerCard {
	return content.PlayerCard{Name: name, Type: ctype, Cost: cost, Box: "Aeon's End", Code: codeparser.Parse(code)}
}

func testCatalog() *content.Catalog {
	cat := &content.Catalog{
		NemesisMats: map[string][]content.NemesisMat{
			"rageborne": {{Name: "Rageborne", Difficulty: 3}},
			"hardone":   {{Name: "Hard One", Difficulty: 9}},
			"campaign":  {{Name: "Campaign", Difficulty: 3, Code: "NOEXP"}},
		},
		PlayerMats: map[string][]content.PlayerMat{},
		PlayerCards: map[string][]content.PlayerCard{
			"crystal":   {{Name: "Crystal", Type: "G", Starter: "Brama", Box: "Aeon's End"}},
			"typed":     {card("Typed", "S", 4, "D=1;T=Attack")},
			"bound":     {card("Bound", "R", 2, "A=1;U=Outcasts")},
			"guildonly": {{Name: "Guild Only", Type: "S", Cost: 1, Guild: 99}},
		},
	}
	for i := 1; i <= 6; i++ {
		name := fmt.Sprintf("Mage%d", i)
		cat.PlayerMats[name] = []content.PlayerMat{{Name: name, Rating: i}}
	}
	for i := 1; i <= 6; i++ {
		for _, t := range []string{"G", "R", "S"} {
			name := fmt.Sprintf("%s%d", t, i)
			cat.PlayerCards[name] = []content.PlayerCard{card(name, t, i+1, "A=1")}
		}
	}
	return cat
}

func defaults() Options {
	return OptionsFromConfig(config.DefaultConfig().Random)
}

func TestBattle(t *testing.T) {
	opts := defaults()
	opts.MaxDifficulty = 5
	opts.MinRating = 2
	opts.MaxRating = 5
	opts.ForceCheapGem = true

	b, err := New(testCatalog(), 1).Battle(opts)
	require.NoError(t, err)

	assert.Equal(t, "Rageborne", b.Nemesis.Name)
	require.Len(t, b.Mages, opts.Players)
	assert.NotEqual(t, b.Mages[0].Name, b.Mages[1].Name)
	for _, m := range b.Mages {
		assert.GreaterOrEqual(t, m.Rating, 2)
		assert.LessOrEqual(t, m.Rating, 5)
	}

	assert.Len(t, b.Gems, opts.Gems)
	assert.Len(t, b.Relics, opts.Relics)
	assert.Len(t, b.Spells, opts.Spells)
	assert.LessOrEqual(t, b.Gems[0].Cost, cheapGemCost)
	for _, cards := range [][]content.PlayerCard{b.Gems, b.Relics, b.Spells} {
		for i, c := range cards {
			assert.NotContains(t, []string{"Crystal", "Typed", "Bound", "Guild Only"}, c.Name)
			if i > 0 {
				assert.LessOrEqual(t, cards[i-1].Cost, c.Cost)
			}
		}
	}
	assert.Empty(t, b.Trace)
}

func TestBattle_Deterministic(t *testing.T) {
	cat := testCatalog()
	a, err := New(cat, 42).Battle(defaults())
	require.NoError(t, err)
	b, err := New(cat, 42).Battle(defaults())
	require.NoError(t, err)
	assert.Equal(t, a.Lines(), b.Lines())
}

func TestBattle_Errors(t *testing.T) {
	t.Run("no nemesis in range", func(t *testing.T) {
		opts := defaults()
		opts.MinDifficulty, opts.MaxDifficulty = 10, 10
		_, err := New(testCatalog(), 1).Battle(opts)
		assert.ErrorIs(t, err, ErrNoNemesis)
	})

	t.Run("not enough mages", func(t *testing.T) {
		opts := defaults()
		opts.Players = 3
		opts.MinRating, opts.MaxRating = 6, 10
		_, err := New(testCatalog(), 1).Battle(opts)
		assert.ErrorIs(t, err, ErrNotEnoughMages)
	})

	t.Run("not enough spells", func(t *testing.T) {
		opts := defaults()
		opts.Spells = 7
		_, err := New(testCatalog(), 1).Battle(opts)
		assert.ErrorIs(t, err, ErrNotEnoughMarket)
	})

	t.Run("invalid options", func(t *testing.T) {
		opts := defaults()
		opts.Players = 5
		_, err := New(testCatalog(), 1).Battle(opts)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "player count")
	})

	t.Run("empty catalog", func(t *testing.T) {
		_, err := New(&content.Catalog{}, 1).Battle(defaults())
		assert.ErrorIs(t, err, ErrNoNemesis)
	})
}

func TestBattle_GuildContent(t *testing.T) {
	opts := defaults()
	opts.Spells = 7
	opts.Guild = 99
	b, err := New(testCatalog(), 3).Battle(opts)
	require.NoError(t, err)
	var names []string
	for _, c := range b.Spells {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "Guild Only")
}

func TestBattle_Trace(t *testing.T) {
	opts := defaults()
	opts.Verbose = 3
	b, err := New(testCatalog(), 7).Battle(opts)
	require.NoError(t, err)
	require.NotEmpty(t, b.Trace)
	assert.Contains(t, b.Trace[0], "Settings:")
}

func TestBattle_Lines(t *testing.T) {
	b := &Battle{
		Nemesis: content.NemesisMat{Name: "Rageborne", Difficulty: 3},
		Mages:   []content.PlayerMat{{Name: "Brama"}, {Name: "Mist"}},
		Gems:    []content.PlayerCard{{Name: "Jade", Box: "Aeon's End", Cost: 2}},
	}
	assert.Equal(t, []string{
		"Random battle:", "", "Using all released content", "",
		"Fighting Rageborne (difficulty 3)",
		"Using mages Brama, Mist",
		"", "Market gems:", "Jade (from Aeon's End, 2-cost)",
		"", "Market relics:",
		"", "Market spells:",
	}, b.Lines())
}
