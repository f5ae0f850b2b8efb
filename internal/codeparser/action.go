package codeparser

import (
	"fmt"
	"strconv"
	"strings"
)

// ActionKind enumerates every effect a code letter can produce. The set is
// closed; Action.format switches over it exhaustively.
type ActionKind int

const (
	AetherGain ActionKind = iota + 1
	CastPrepped
	ChargeGain
	DamageDeal
	FocusBreach
	GraveholdLife
	CastFromHand
	DiscardCards
	DrawCards
	DestroyCards
	LifeChange
	PlayCountName
	PlayCountTime
	XaxosCharges
	PulseTokens
	DiscardPrepped
	DestroyPrepped
	SilenceMinion
	DestroyThis
	AllyFocus
	lastKind
)

// kindSpec describes how a kind reads its raw value.
type kindSpec struct {
	name       string
	noValue    bool
	additional bool // "+" prefix
	exclusive  bool // "!" prefix
	negative   bool // "-" prefix
	ranged     bool // "lo-hi" or "n"
	integer    bool
	breach     bool // "breach[+count]"
}

var kindSpecs = [lastKind]kindSpec{
	AetherGain:     {name: "AetherGain", additional: true, integer: true},
	CastPrepped:    {name: "CastPrepped", noValue: true},
	ChargeGain:     {name: "ChargeGain", additional: true, negative: true, integer: true},
	DamageDeal:     {name: "DamageDeal", additional: true, integer: true},
	FocusBreach:    {name: "FocusBreach", breach: true},
	GraveholdLife:  {name: "GraveholdLife", additional: true, negative: true, integer: true},
	CastFromHand:   {name: "CastFromHand", noValue: true},
	DiscardCards:   {name: "DiscardCards", ranged: true},
	DrawCards:      {name: "DrawCards", additional: true, integer: true},
	DestroyCards:   {name: "DestroyCards", ranged: true},
	LifeChange:     {name: "LifeChange", additional: true, negative: true, integer: true},
	PlayCountName:  {name: "PlayCountName", exclusive: true, integer: true},
	PlayCountTime:  {name: "PlayCountTime", exclusive: true, integer: true},
	XaxosCharges:   {name: "XaxosCharges", additional: true, integer: true},
	PulseTokens:    {name: "PulseTokens", additional: true, negative: true, integer: true},
	DiscardPrepped: {name: "DiscardPrepped", ranged: true},
	DestroyPrepped: {name: "DestroyPrepped", ranged: true},
	SilenceMinion:  {name: "SilenceMinion", noValue: true},
	DestroyThis:    {name: "DestroyThis", noValue: true},
	AllyFocus:      {name: "AllyFocus", breach: true},
}

func (k ActionKind) valid() bool {
	return k > 0 && k < lastKind
}

func (k ActionKind) String() string {
	if !k.valid() {
		return fmt.Sprintf("ActionKind(%d)", int(k))
	}
	return kindSpecs[k].name
}

// anyBreach marks a focus action that targets no particular breach.
const anyBreach = -1

var breachNumerals = [...]string{"", "I", "II", "III", "IV"}

// Action is one parsed effect. Which fields are meaningful depends on Kind.
type Action struct {
	Kind   ActionKind
	Append AppendType
	Raw    string

	Additional bool
	Exclusive  bool
	Negative   bool

	Value        int
	Lower, Upper int

	// Breach is 0 for "lowest focus cost", 1-4 for a numbered breach and
	// anyBreach when unspecified. Count is how many times to focus.
	Breach int
	Count  int
}

// NewAction parses raw according to the flags of kind.
func NewAction(kind ActionKind, raw string, appendType AppendType) (Action, error) {
	if !kind.valid() {
		return Action{}, fmt.Errorf("%w: kind %d", ErrUnknownToken, int(kind))
	}
	a := Action{Kind: kind, Append: appendType, Raw: raw}
	spec := kindSpecs[kind]
	if spec.noValue {
		return a, nil
	}

	value := raw
	if spec.additional && strings.HasPrefix(value, "+") {
		a.Additional = true
		value = value[1:]
	}
	if spec.exclusive && strings.HasPrefix(value, "!") {
		a.Exclusive = true
		value = value[1:]
	}
	if spec.negative && strings.HasPrefix(value, "-") {
		a.Negative = true
		value = value[1:]
	}

	switch {
	case spec.ranged:
		lo, hi, err := parseRange(value)
		if err != nil {
			return Action{}, fmt.Errorf("%s=%s: %w", kind, raw, err)
		}
		a.Lower, a.Upper = lo, hi
	case spec.integer:
		n, err := parseInt(value)
		if err != nil {
			return Action{}, fmt.Errorf("%s=%s: %w", kind, raw, err)
		}
		a.Value = n
	case spec.breach:
		if err := a.parseBreach(value); err != nil {
			return Action{}, fmt.Errorf("%s=%s: %w", kind, raw, err)
		}
	}
	return a, nil
}

func (a *Action) parseBreach(value string) error {
	breach, count, _ := strings.Cut(value, "+")
	a.Breach = anyBreach
	if breach != "" {
		n, err := parseInt(breach)
		if err != nil {
			return err
		}
		if n < 0 || n >= len(breachNumerals) {
			return fmt.Errorf("%w: breach %d out of range", ErrMalformedNumber, n)
		}
		a.Breach = n
	}
	a.Count = 1
	if count != "" {
		n, err := parseInt(count)
		if err != nil {
			return err
		}
		if n < 1 {
			return fmt.Errorf("%w: focus count %d", ErrMalformedNumber, n)
		}
		a.Count = n
	}
	return nil
}

func parseInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w %q", ErrMalformedNumber, s)
	}
	return n, nil
}

// parseRange reads "lo-hi" or a single "n" meaning exactly n.
func parseRange(s string) (int, int, error) {
	begin, end, ok := strings.Cut(s, "-")
	if !ok {
		n, err := parseInt(s)
		if err != nil {
			return 0, 0, fmt.Errorf("%w %s", ErrMalformedRange, s)
		}
		return n, n, nil
	}
	lo, errLo := parseInt(begin)
	hi, errHi := parseInt(end)
	if errLo != nil || errHi != nil || lo > hi {
		return 0, 0, fmt.Errorf("%w %s", ErrMalformedRange, s)
	}
	return lo, hi, nil
}

// format renders the action as a lowercase fragment with no trailing
// punctuation.
func (a Action) format(ctx *Context) string {
	switch a.Kind {
	case AetherGain:
		if a.Additional {
			return fmt.Sprintf("gain an additional %d$", a.Value)
		}
		return fmt.Sprintf("gain %d$", a.Value)
	case CastPrepped:
		if ctx.isSelf() {
			return "cast one of your prepped spells"
		}
		return fmt.Sprintf("cast %s's prepped spell", ctx.subject())
	case ChargeGain:
		return a.formatCounter(ctx, "charge")
	case PulseTokens:
		return a.formatCounter(ctx, "pulse token")
	case DamageDeal:
		if a.Additional {
			return fmt.Sprintf("deal %d additional damage", a.Value)
		}
		return fmt.Sprintf("deal %d damage", a.Value)
	case FocusBreach:
		return a.formatFocus(ctx)
	case AllyFocus:
		return a.formatAllyFocus(ctx)
	case GraveholdLife:
		if a.Negative {
			return fmt.Sprintf("Gravehold suffers %s%d damage", a.an(), a.Value)
		}
		return fmt.Sprintf("Gravehold gains %s%d life", a.an(), a.Value)
	case CastFromHand:
		return "cast a spell in hand"
	case DiscardCards:
		return a.formatCards(ctx, "discard")
	case DestroyCards:
		return a.formatCards(ctx, "destroy")
	case DrawCards:
		return a.formatDraw(ctx)
	case LifeChange:
		return a.formatLife(ctx)
	case PlayCountName:
		return fmt.Sprintf("if this is %sthe %s %s you have %s this turn,",
			a.not(), ordinal(a.Value), escapeBraces(ctx.CardName), ctx.playVerb())
	case PlayCountTime:
		return fmt.Sprintf("if this is %sthe %s time you have %s %s this turn,",
			a.not(), ordinal(a.Value), ctx.playVerb(), escapeBraces(ctx.CardName))
	case XaxosCharges:
		return fmt.Sprintf("Xaxos: Outcast gains %s%d charge%s", a.an(), a.Value, plural(a.Value))
	case DiscardPrepped:
		return formatPrepped("discard", a.Lower, a.Upper)
	case DestroyPrepped:
		return formatPrepped("destroy", a.Lower, a.Upper)
	case SilenceMinion:
		return escapeBraces(ctx.prefix) + "Silence a minion"
	case DestroyThis:
		return "destroy this"
	}
	panic(fmt.Sprintf("codeparser: unhandled action kind %s", a.Kind))
}

func (a Action) an() string {
	if a.Additional {
		return "an additional "
	}
	return ""
}

func (a Action) not() string {
	if a.Exclusive {
		return "not "
	}
	return ""
}

// formatCounter covers charges and pulse tokens, which share their grammar.
func (a Action) formatCounter(ctx *Context, word string) string {
	if ctx.Optional || ctx.isSelf() {
		if a.Value == 1 && a.Negative {
			return fmt.Sprintf("lose %s%s", orA(a.Additional), word)
		}
		verb := "gain"
		if a.Negative {
			verb = "lose"
		}
		return fmt.Sprintf("%s %s%d %s%s", verb, a.an(), a.Value, word, plural(a.Value))
	}
	if a.Value == 1 && a.Negative {
		return fmt.Sprintf("%s loses a %s", ctx.subject(), word)
	}
	verb := "gains"
	if a.Negative {
		verb = "loses"
	}
	return fmt.Sprintf("%s %s %s%d %s%s", ctx.subject(), verb, a.an(), a.Value, word, plural(a.Value))
}

func orA(additional bool) string {
	if additional {
		return "an additional "
	}
	return "a "
}

func (a Action) formatCards(ctx *Context, word string) string {
	verb := word
	if !ctx.Optional && !ctx.isSelf() {
		verb = fmt.Sprintf("%s %ss", ctx.subject(), word)
	}

	var aCard, topCard string
	switch {
	case a.Lower == a.Upper && a.Lower == 1:
		aCard, topCard = "a card", "the top card"
	case a.Lower == a.Upper:
		aCard = fmt.Sprintf("%d cards", a.Lower)
		topCard = fmt.Sprintf("the top %d cards", a.Lower)
	case a.Lower == 0:
		aCard = fmt.Sprintf("up to %d cards", a.Upper)
		topCard = fmt.Sprintf("up to %d cards on top", a.Upper)
	default:
		aCard = fmt.Sprintf("between %d and %d cards", a.Lower, a.Upper)
		topCard = fmt.Sprintf("between %d and %d cards on top", a.Lower, a.Upper)
	}
	return verb + " " + ctx.Location.phrase(aCard, topCard)
}

func (a Action) formatDraw(ctx *Context) string {
	draw := "draw"
	if !ctx.Optional && !ctx.isSelf() {
		draw = ctx.subject() + " draws"
	}
	var count string
	switch {
	case a.Value == 1 && !a.Additional:
		count = "a card"
	case a.Value == 1:
		count = "an additional card"
	case !a.Additional:
		count = fmt.Sprintf("%d cards", a.Value)
	default:
		count = fmt.Sprintf("an additional %d cards", a.Value)
	}
	return draw + " " + count
}

func (a Action) formatLife(ctx *Context) string {
	if a.Negative {
		if ctx.Optional || ctx.isSelf() {
			return fmt.Sprintf("suffer %s%d damage", a.an(), a.Value)
		}
		return fmt.Sprintf("%s suffers %s%d damage", ctx.subject(), a.an(), a.Value)
	}
	if ctx.isSelf() {
		return fmt.Sprintf("gain %s%d life", a.an(), a.Value)
	}
	return fmt.Sprintf("%s gains %s%d life", ctx.subject(), a.an(), a.Value)
}

func (a Action) times() string {
	switch a.Count {
	case 1:
		return ""
	case 2:
		return " twice"
	case 3:
		return " three times"
	case 4:
		return " four times"
	}
	return fmt.Sprintf(" %d times", a.Count)
}

func (a Action) formatFocus(ctx *Context) string {
	self := ctx.isSelf()
	switch {
	case a.Breach == anyBreach && self:
		return "focus one of your breaches" + a.times()
	case a.Breach == anyBreach:
		return fmt.Sprintf("focus %s's closed breach%s", ctx.subject(), a.times())
	case a.Breach == 0 && self:
		return "focus your closed breach with the lowest focus cost" + a.times()
	case a.Breach == 0:
		return fmt.Sprintf("focus %s's closed breach with the lowest focus cost%s", ctx.subject(), a.times())
	case self:
		return fmt.Sprintf("focus your %s breach%s", breachNumerals[a.Breach], a.times())
	}
	return fmt.Sprintf("focus %s's %s breach%s", ctx.subject(), breachNumerals[a.Breach], a.times())
}

func (a Action) formatAllyFocus(ctx *Context) string {
	switch a.Breach {
	case anyBreach:
		return fmt.Sprintf("%s focuses one of their closed breaches%s", ctx.subject(), a.times())
	case 0:
		return fmt.Sprintf("%s focuses their closed breach with the lowest focus cost%s", ctx.subject(), a.times())
	}
	return fmt.Sprintf("%s focuses their %s breach%s", ctx.subject(), breachNumerals[a.Breach], a.times())
}

func formatPrepped(verb string, lo, hi int) string {
	switch {
	case lo == hi && lo == 1:
		return verb + " a prepped spell"
	case lo == hi:
		return fmt.Sprintf("%s %d prepped spells", verb, lo)
	case lo == 0:
		return fmt.Sprintf("%s up to %d prepped spells", verb, hi)
	}
	return fmt.Sprintf("%s between %d and %d prepped spells", verb, lo, hi)
}

func ordinal(n int) string {
	switch n {
	case 1:
		return "first"
	case 2:
		return "second"
	case 3:
		return "third"
	}
	return fmt.Sprintf("%dth", n)
}

func plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}
