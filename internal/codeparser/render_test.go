package codeparser

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRender(t *testing.T) {
	c := New(WithPrefix("!"))

	tests := []struct {
		name     string
		code     string
		cardName string
		cardType string
		want     string
	}{
		{"aether", "A=3", "Jade", "G", "Gain 3$."},
		{"additional aether", "A=+3", "Jade", "G", "Gain an additional 3$."},
		{"damage on a spell casts", "D=2", "Spark", "S", "Cast: Deal 2 damage."},
		{"additional damage on a gem", "D=+2", "Jade", "G", "Deal 2 additional damage."},
		{"two clauses", "A=3,D=2", "Jade", "G", "Gain 3$. Deal 2 damage."},
		{"concat", "A=3,&D=2", "Jade", "G", "Gain 3$ deal 2 damage."},
		{"and", "A=3,&&D=2", "Jade", "G", "Gain 3$ and deal 2 damage."},
		{"and then", "A=3,&&&J=1,$=C", "Jade", "G", "Gain 3$ and then draw a card."},
		{"exact cost", "I=1,$=CE,&=5", "Jade", "G", "Discard a card in hand that costs 5."},
		{"cost or less", "K=1,$=CE,&=4-", "Jade", "G", "Destroy a card in hand that costs 4 or less."},
		{"cost or more", "K=1,$=CE,&=4+", "Jade", "G", "Destroy a card in hand that costs 4 or more."},
		{"optional self", "J=1,&=H,$=C", "Jade", "G", "You may draw a card."},
		{"optional ally", "J=1,&=H,$=B", "Jade", "G", "Any ally may draw a card."},
		{"ally draws", "J=2,$=B", "Jade", "G", "Any ally draws 2 cards."},
		{"charges lower bound", "C=2,$=C,&=+3", "Jade", "G", "If you have at least 3 charges, gain 2 charges."},
		{"charges upper bound", "C=1,$=B,&=-2", "Jade", "G", "If they have 2 charges or less, any ally gains 1 charge."},
		{"exhausted", "L=2,$=B,&=0-0", "Jade", "G", "If they are exhausted, any ally gains 2 life."},
		{"life or less", "L=2,$=C,&=0-5", "Jade", "G", "If you have 5 life or less, gain 2 life."},
		{"life or more", "L=-1,$=C,&=3-99", "Jade", "G", "If you have 3 life or more, suffer 1 damage."},
		{"life between", "L=1,$=A,&=2-4", "Jade", "G", "If they have between 2 and 4 life, any player gains 1 life."},
		{"specific gem or spell", "A=2,%=GS", "Jade", "G", "Gain 2$ that can only be used to gain a gem or a spell."},
		{"specific breach", "A=4,%=FOIII", "Jade", "G", "Gain 4$ that can only be used to focus or open your III breach."},
		{"specific cards", "A=3,%=C", "Jade", "G", "Gain 3$ that can only be used to gain cards."},
		{"focus twice", "F=2+2,$=C", "Jade", "G", "Focus your II breach twice."},
		{"focus any", "F,$=B", "Jade", "G", "Focus any ally's closed breach."},
		{"focus many", "F=1+5,$=C", "Jade", "G", "Focus your I breach 5 times."},
		{"ally focus lowest", "Z=0,$=B", "Jade", "G", "Any ally focuses their closed breach with the lowest focus cost."},
		{"silence uses prefix", "S", "Jade", "G", "!Silence a minion."},
		{"gravehold", "G=+2", "Jade", "G", "Gravehold gains an additional 2 life."},
		{"gravehold damage", "G=-3", "Jade", "G", "Gravehold suffers 3 damage."},
		{"lose a pulse token", "P=-1,$=C", "Jade", "G", "Lose a pulse token."},
		{"xaxos", "O=1", "Jade", "R", "Xaxos: Outcast gains 1 charge."},
		{"cast flag", "J=1,$=C,&=C", "Jade", "G", "Cast: Draw a card."},
		{"divided", "D=4,&=D", "Jade", "G", "Deal 4 damage divided however you choose to the nemesis and any number of minions."},
		{"conditional", "A=1,&=I,$=C", "Jade", "G", "If you do, gain 1$."},
		{"nemesis tier", "A=1,&=N", "Jade", "G", "If the nemesis tier is 2 or higher, gain 1$."},
		{"opened", "A=1,&=O", "Jade", "G", "If all of your breaches are opened, gain 1$."},
		{"without discarding", "B,$=C,&=W", "Jade", "G", "Cast one of your prepped spells without discarding it."},
		{"prepped spells range", "Q=0-2", "Jade", "G", "Discard up to 2 prepped spells."},
		{"destroy this", "X", "Jade", "G", "Destroy this."},
		{"top of discard", "K=2,$=AI", "Jade", "G", "Any player destroys the top 2 cards of any player's discard pile."},
		{"play count name", "M=1,&A=1", "Amethyst", "G", "If this is the first Amethyst you have played this turn, gain 1$."},
		{"play count time", "N=!2,&D=1", "Spark", "S", "If this is not the second time you have cast Spark this turn, deal 1 damage."},
		{"braces in name", "M=3,&A=1", "Odd {Gem}", "G", "If this is the third Odd {Gem} you have played this turn, gain 1$."},
		{"missing source", "J=1", "Jade", "G", "[missing source] draws a card."},
		{"missing location", "I=1,$=C", "Jade", "G", "Discard a card [missing location]."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Render(Parse(tt.code), tt.cardName, tt.cardType))
		})
	}
}

func TestRender_AutoCastOnlyForLeadingDamage(t *testing.T) {
	c := New()
	assert.Equal(t, "Gain 1$. Deal 2 damage.", c.Render(Parse("A=1,D=2"), "Spark", "S"))
	assert.Equal(t, "Cast: Deal 2 damage. Gain 1$.", c.Render(Parse("D=2,A=1"), "Spark", "S"))
}

func TestRender_OrBranches(t *testing.T) {
	c := New()
	out := c.Render(Parse("A=3/J=1,$=C"), "Jade", "G")
	assert.Equal(t, "Gain 3$.\nOR\nDraw a card.", out)

	lines := strings.Split(out, "\n")
	orCount := 0
	for _, l := range lines {
		if l == "OR" {
			orCount++
		}
	}
	assert.Equal(t, 1, orCount)
	assert.NotContains(t, out, "{")
}

func TestRender_UnknownLetterIsInline(t *testing.T) {
	c := New()
	var out string
	require.NotPanics(t, func() {
		out = c.Render(Parse("Ω=1"), "Jade", "G")
	})
	assert.Equal(t, "ERROR: unrecognized token Ω=1", out)

	out = c.Render(Parse("A=1,Ω=2"), "Jade", "G")
	assert.Equal(t, "Gain 1$. ERROR: unrecognized token Ω=2", out)
}

func TestRender_ContentErrors(t *testing.T) {
	c := New()
	tests := []struct {
		name string
		code string
		want string
	}{
		{"inverted range", "I=3-1,$=CE", "malformed range"},
		{"missing number", "A=", "malformed number"},
		{"bad number", "D=two", "malformed number"},
		{"breach out of range", "F=7,$=C", "malformed number"},
		{"unknown modifier", "A=1,&=Y", "unrecognized modifier Y"},
		{"unknown target", "A=1,$=Q", "unrecognized token target Q"},
		{"bad restriction", "A=1,%=GX", "unrecognized modifier X"},
		{"double ampersand alone", "A=1,&&", "unrecognized token &&"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out string
			require.NotPanics(t, func() {
				out = c.Render(Parse(tt.code), "Jade", "G")
			})
			assert.Contains(t, out, "ERROR:")
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestRender_DiagnosticsAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c := New(WithLogger(zap.New(core)))

	c.Render(Parse("A=1,Ω=2"), "Jade", "G")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "code diagnostic", entry.Message)
	assert.Equal(t, "Jade", entry.ContextMap()["card"])
}

func TestRender_Deterministic(t *testing.T) {
	c := New(WithPrefix("!"))
	parsed := Parse("A=2,&&J=1,$=C/D=3,&=D;D;T=Gem")
	first := c.Render(parsed, "Jade", "S")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, c.Render(parsed, "Jade", "S"))
	}
}

func TestRender_Concurrent(t *testing.T) {
	c := New()
	parsed := Parse("A=3,&&D=2/J=1,$=B")
	want := c.Render(parsed, "Jade", "G")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, c.Render(parsed, "Jade", "G"))
		}()
	}
	wg.Wait()
}

func TestFormatEffect_Nested(t *testing.T) {
	c := New()
	out := c.FormatEffect(parseNested("J:1,$:C"), "Jade", "G", false)
	assert.Equal(t, "draw a card", out)

	// The cast flag is kept on embedded fragments.
	out = c.FormatEffect(parseNested("J:1,$:C,&:C"), "Jade", "G", false)
	assert.Equal(t, "Cast: draw a card", out)
}

func TestRenderSpecial(t *testing.T) {
	c := New(WithPrefix("!"))

	tests := []struct {
		name       string
		code       string
		wantBefore string
		wantAfter  string
	}{
		{"keywords", ";D;E;L", "!Dual\n!Echo\n!Link", ""},
		{"card type", ";T=Gem", "", "Card type: Gem"},
		{"closed breach", ";C", "This spell may be prepped to a closed breach without focusing it.", ""},
		{"use only", ";U=Xaxos", "Use this card only when playing with Xaxos.", ""},
		{"use this only", ";N=Outcasts", "Use this only when playing with Outcasts.", ""},
		{"timing", ";P;&=C", "While prepped, at the end of your casting phase,", ""},
		{"gain timing", ";G;&=G", "When you gain this, when you gain a card,", ""},
		{"main phase", ";P;&=M", "While prepped, once per turn during your main phase,", ""},
		{"nested rule", ";G;?=J:1,$:C", "When you gain this, draw a card.", ""},
		{"nested with or", ";P;?=A:1/J:1,$:C", "While prepped, gain 1$\nOR\ndraw a card.", ""},
		{"braces in value", ";U={odd}", "Use this card only when playing with {odd}.", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before, after := c.RenderSpecial(Parse(tt.code), "Jade", "G")
			assert.Equal(t, tt.wantBefore, before)
			assert.Equal(t, tt.wantAfter, after)
		})
	}
}

func TestRenderSpecial_Errors(t *testing.T) {
	c := New()

	before, _ := c.RenderSpecial(Parse(";&=C"), "Jade", "G")
	assert.Equal(t, "ERROR: no preceding rule to modify: &=C", before)

	before, _ = c.RenderSpecial(Parse(";?=J:1"), "Jade", "G")
	assert.True(t, strings.HasPrefix(before, "ERROR: no preceding rule to modify"))

	before, _ = c.RenderSpecial(Parse(";P;&=X"), "Jade", "G")
	assert.Equal(t, "ERROR: unrecognized modifier X\nText: While prepped,", before)

	before, _ = c.RenderSpecial(Parse(";Q"), "Jade", "G")
	assert.Equal(t, "ERROR: unrecognized token Q", before)
}

func TestRenderAll(t *testing.T) {
	c := New(WithPrefix("!"))
	out := c.RenderAll(Parse("D=1;E;T=Attack"), "Spark", "S")
	assert.Equal(t, "!Echo\nCast: Deal 1 damage.\nCard type: Attack", out)
}

func TestItemize_ClauseSplitting(t *testing.T) {
	c := New()
	clauses := c.Itemize(Parse("$=C,&=H,J=1,&A=1,D=2,&=D").Branches, "Jade", "G")
	require.Len(t, clauses, 1)
	require.Len(t, clauses[0], 2)

	first, second := clauses[0][0], clauses[0][1]
	assert.Equal(t, Self, first.Source)
	assert.True(t, first.Optional)
	require.Len(t, first.Actions, 2)
	assert.Equal(t, Concat, first.Actions[1].Append)

	assert.Equal(t, SourceUnset, second.Source)
	assert.True(t, second.Divided)
	assert.False(t, second.Optional)
}

func TestAppendTier(t *testing.T) {
	tests := []struct {
		key      string
		wantKey  string
		wantTier AppendType
	}{
		{"D", "D", NoAppend},
		{"&D", "D", Concat},
		{"&&D", "D", And},
		{"&&&J", "J", AndThen},
		{"&", "&", NoAppend},
		{"&&", "", And},
	}
	for _, tt := range tests {
		key, tier := appendTier(tt.key)
		assert.Equal(t, tt.wantKey, key, tt.key)
		assert.Equal(t, tt.wantTier, tier, tt.key)
	}
}

func TestNewAction(t *testing.T) {
	a, err := NewAction(DiscardCards, "1-3", NoAppend)
	require.NoError(t, err)
	assert.Equal(t, 1, a.Lower)
	assert.Equal(t, 3, a.Upper)

	a, err = NewAction(ChargeGain, "+-2", NoAppend)
	require.NoError(t, err)
	assert.True(t, a.Additional)
	assert.True(t, a.Negative)
	assert.Equal(t, 2, a.Value)

	a, err = NewAction(FocusBreach, "", NoAppend)
	require.NoError(t, err)
	assert.Equal(t, anyBreach, a.Breach)
	assert.Equal(t, 1, a.Count)

	_, err = NewAction(FocusBreach, "1+0", NoAppend)
	assert.ErrorIs(t, err, ErrMalformedNumber)

	_, err = NewAction(DrawCards, "", NoAppend)
	assert.ErrorIs(t, err, ErrMalformedNumber)

	_, err = NewAction(DestroyCards, "x-2", NoAppend)
	assert.ErrorIs(t, err, ErrMalformedRange)

	_, err = NewAction(ActionKind(0), "1", NoAppend)
	assert.ErrorIs(t, err, ErrUnknownToken)
}
