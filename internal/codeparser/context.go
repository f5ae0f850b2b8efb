package codeparser

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// AppendType selects how an action's fragment is glued onto the one before it.
// It is chosen by the number of leading "&" on the action key.
type AppendType int

const (
	NoAppend AppendType = iota
	Concat
	And
	AndThen
)

func (t AppendType) join(prev, next string) string {
	switch t {
	case Concat:
		return prev + " " + next
	case And:
		return prev + " and " + next
	case AndThen:
		return prev + " and then " + next
	}
	return next
}

// Source is who performs a clause.
type Source int

const (
	SourceUnset Source = iota
	AnyPlayer
	AnyAlly
	Self
	EachAlly
)

var sourceText = [...]string{
	AnyPlayer: "any player",
	AnyAlly:   "any ally",
	Self:      "self",
	EachAlly:  "each ally",
}

// CardLocation is where the cards of a discard or destroy action come from.
type CardLocation int

const (
	LocationUnset CardLocation = iota
	InHand
	InSelfDiscard
	HandOrSelfDiscard
	HandOrAnyDiscard
	TopAnyDiscard
)

// phrase places the count phrase into the location template. aCard is used
// by every location except TopAnyDiscard, which needs topCard.
func (l CardLocation) phrase(aCard, topCard string) string {
	switch l {
	case InHand:
		return aCard + " in hand"
	case InSelfDiscard:
		return aCard + " in your discard pile"
	case HandOrSelfDiscard:
		return aCard + " in your hand or discard pile"
	case HandOrAnyDiscard:
		return aCard + " in hand or on top of any player's discard pile"
	case TopAnyDiscard:
		return topCard + " of any player's discard pile"
	}
	return aCard + " {location}"
}

var sourceLetters = map[rune]Source{
	'A': AnyPlayer,
	'B': AnyAlly,
	'C': Self,
	'D': EachAlly,
}

var locationLetters = map[rune]CardLocation{
	'E': InHand,
	'F': InSelfDiscard,
	'G': HandOrSelfDiscard,
	'H': HandOrAnyDiscard,
	'I': TopAnyDiscard,
}

// Bound is an optional integer.
type Bound struct {
	N   int
	Set bool
}

func bound(n int) Bound { return Bound{N: n, Set: true} }

// Range is an inclusive interval whose ends may be open.
type Range struct {
	Lower, Upper Bound
}

// IsZero reports whether neither end is set.
func (r Range) IsZero() bool {
	return !r.Lower.Set && !r.Upper.Set
}

// lifeCeiling is the upper bound the content uses to mean "or more".
const lifeCeiling = 99

// Flags are the boolean modifiers set with "&=<letter>".
type Flags struct {
	Cast        bool
	AutoCast    bool
	Divided     bool
	Optional    bool
	Conditional bool
	NemesisTier bool
	Opened      bool
	NoDiscard   bool
}

// Context is one clause of a branch: its actions plus the metadata folded in
// from the modifier tokens around them.
type Context struct {
	Actions  []Action
	CardName string
	CardType string

	Source   Source
	Location CardLocation
	Cost     Range
	Charges  Range
	Life     Range
	Specific string
	Flags

	// Diagnostics are token-level errors, rendered after the clause text.
	Diagnostics []string

	prefix string
}

func (c *Context) isSelf() bool {
	return c.Source == Self
}

// subject names the actor of the clause, or leaves a placeholder for the
// resolver when no "$" token set one.
func (c *Context) subject() string {
	if c.Source == SourceUnset {
		return "{source}"
	}
	return sourceText[c.Source]
}

func (c *Context) pronoun() string {
	if c.isSelf() {
		return "you"
	}
	return "they"
}

func (c *Context) playVerb() string {
	if strings.Contains(c.CardType, "S") {
		return "cast"
	}
	return "played"
}

// Format renders the clause. With autoFormat it produces a full sentence;
// without, a lowercase fragment suitable for embedding in another sentence.
func (c *Context) Format(autoFormat bool) string {
	text := c.formatText(autoFormat)
	if len(c.Diagnostics) == 0 {
		return text
	}
	parts := make([]string, 0, len(c.Diagnostics)+1)
	if text != "" {
		parts = append(parts, text)
	}
	for _, d := range c.Diagnostics {
		parts = append(parts, escapeBraces(d))
	}
	return strings.Join(parts, " ")
}

func (c *Context) formatText(autoFormat bool) string {
	if len(c.Actions) == 0 {
		return ""
	}
	fragments := make([]string, 0, len(c.Actions))
	for _, a := range c.Actions {
		value := a.format(c)
		if a.Append != NoAppend && len(fragments) > 0 {
			prev := fragments[len(fragments)-1]
			fragments = fragments[:len(fragments)-1]
			value = a.Append.join(prev, value)
		}
		fragments = append(fragments, value)
	}
	ret := strings.Join(fragments, " ")

	if !c.Cost.IsZero() {
		switch {
		case !c.Cost.Lower.Set:
			ret = fmt.Sprintf("%s that costs %d or less", ret, c.Cost.Upper.N)
		case !c.Cost.Upper.Set:
			ret = fmt.Sprintf("%s that costs %d or more", ret, c.Cost.Lower.N)
		default:
			ret = fmt.Sprintf("%s that costs %d", ret, c.Cost.Lower.N)
		}
	}
	if !c.Charges.IsZero() {
		switch {
		case !c.Charges.Lower.Set:
			ret = fmt.Sprintf("if %s have %d charges or less, %s", c.pronoun(), c.Charges.Upper.N, ret)
		case !c.Charges.Upper.Set:
			ret = fmt.Sprintf("if %s have at least %d charges, %s", c.pronoun(), c.Charges.Lower.N, ret)
		default:
			ret = fmt.Sprintf("if %s have between %d and %d charges, %s",
				c.pronoun(), c.Charges.Lower.N, c.Charges.Upper.N, ret)
		}
	}
	if !c.Life.IsZero() {
		lo, hi := c.Life.Lower.N, c.Life.Upper.N
		switch {
		case lo == hi && lo == 0:
			ret = fmt.Sprintf("if %s are exhausted, %s", c.pronoun(), ret)
		case lo == hi:
			ret = fmt.Sprintf("if %s have %d life, %s", c.pronoun(), lo, ret)
		case lo == 0:
			ret = fmt.Sprintf("if %s have %d life or less, %s", c.pronoun(), hi, ret)
		case hi == lifeCeiling:
			ret = fmt.Sprintf("if %s have %d life or more, %s", c.pronoun(), lo, ret)
		default:
			ret = fmt.Sprintf("if %s have between %d and %d life, %s", c.pronoun(), lo, hi, ret)
		}
	}
	if c.Specific != "" {
		ret = ret + " that can only be used to " + specificPhrase(c.Specific)
	}
	if c.Optional {
		if c.isSelf() {
			ret = "you may " + ret
		} else {
			ret = c.subject() + " may " + ret
		}
	}
	if c.Divided {
		ret += " divided however you choose to the nemesis and any number of minions"
	}
	if c.Conditional {
		ret = fmt.Sprintf("if %s do, %s", c.pronoun(), ret)
	}
	if c.NemesisTier {
		ret = "if the nemesis tier is 2 or higher, " + ret
	}
	if c.Opened {
		ret = "if all of your breaches are opened, " + ret
	}
	if c.NoDiscard {
		ret += " without discarding it"
	}

	if autoFormat {
		ret = capitalize(ret) + "."
		if c.Cast || c.AutoCast {
			ret = "Cast: " + ret
		}
	} else if c.Cast {
		ret = "Cast: " + ret
	}
	return ret
}

// specificPhrase lists what a restricted resource may be spent on.
func specificPhrase(flags string) string {
	var values []string
	conjunction := func() {
		if len(values) == 0 {
			values = append(values, "gain")
		} else {
			values = append(values, "or")
		}
	}
	if strings.Contains(flags, "C") {
		values = append(values, "gain cards")
	}
	if strings.Contains(flags, "G") {
		values = append(values, "gain a gem")
	}
	if strings.Contains(flags, "R") {
		conjunction()
		values = append(values, "a relic")
	}
	if strings.Contains(flags, "S") {
		conjunction()
		values = append(values, "a spell")
	}

	focus, open := strings.Contains(flags, "F"), strings.Contains(flags, "O")
	if focus || open {
		if focus {
			values = append(values, "focus")
		}
		if open {
			if focus {
				values = append(values, "or")
			}
			values = append(values, "open")
		}
		switch {
		case strings.Contains(flags, "IV"):
			values = append(values, "your IV breach")
		case strings.Contains(flags, "III"):
			values = append(values, "your III breach")
		case strings.Contains(flags, "II"):
			values = append(values, "your II breach")
		case strings.Contains(flags, "I"):
			values = append(values, "your I breach")
		default:
			values = append(values, "a breach")
		}
	}
	return strings.Join(values, " ")
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// escapeBraces protects literal text from the template resolver.
func escapeBraces(s string) string {
	if !strings.ContainsAny(s, "{}") {
		return s
	}
	s = strings.ReplaceAll(s, "{", "{{")
	return strings.ReplaceAll(s, "}", "}}")
}
