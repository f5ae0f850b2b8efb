package codeparser

import (
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

const (
	modifierKey = "&"
	specificKey = "%"
	targetKey   = "$"

	// specificLetters are the characters a "%" value may use; roman numerals
	// for the breach tier are spelled with I and V.
	specificLetters = "CGRSFOIV"

	maxAppendTier = int(AndThen)
)

// clauseState tracks whether the clause being built already holds an action.
// A NoAppend action letter seen while accumulating closes the clause.
type clauseState int

const (
	clauseEmpty clauseState = iota
	clauseAccumulating
)

// accumulator folds the tokens of one branch into its clauses.
type accumulator struct {
	c       *Compiler
	name    string
	ctype   string
	state   clauseState
	current *Context
	done    []Context
}

func (c *Compiler) newAccumulator(name, cardType string) *accumulator {
	acc := &accumulator{c: c, name: name, ctype: cardType}
	acc.reset()
	return acc
}

func (acc *accumulator) reset() {
	acc.current = &Context{CardName: acc.name, CardType: acc.ctype, prefix: acc.c.prefix}
	acc.state = clauseEmpty
}

func (acc *accumulator) flush() {
	acc.done = append(acc.done, *acc.current)
	acc.reset()
}

func (acc *accumulator) fail(tok Token, err error) {
	acc.c.logger.Debug("code diagnostic",
		zap.String("card", acc.name),
		zap.String("token", tok.String()),
		zap.Error(err))
	acc.current.Diagnostics = append(acc.current.Diagnostics, diagnostic(err))
}

// Itemize folds every branch into its ordered list of clauses.
func (c *Compiler) Itemize(branches [][]Token, name, cardType string) [][]Context {
	result := make([][]Context, 0, len(branches))
	for _, branch := range branches {
		acc := c.newAccumulator(name, cardType)
		for _, tok := range branch {
			acc.consume(tok)
		}
		acc.flush()
		result = append(result, acc.done)
	}
	return result
}

func (acc *accumulator) consume(tok Token) {
	key, tier := appendTier(tok.Key)
	if key == "" && tok.Value == "" && tier == NoAppend {
		return
	}

	if acc.state == clauseAccumulating && tier == NoAppend && isLetters(key) {
		acc.flush()
	}

	if kind, ok := acc.c.registry.Lookup(key); ok {
		if kind == DamageDeal && acc.state == clauseEmpty && len(acc.done) == 0 &&
			strings.Contains(acc.ctype, "S") {
			acc.current.AutoCast = true
		}
		action, err := NewAction(kind, tok.Value, tier)
		if err != nil {
			acc.fail(tok, err)
			return
		}
		acc.current.Actions = append(acc.current.Actions, action)
		acc.state = clauseAccumulating
		return
	}

	var err error
	switch key {
	case modifierKey:
		err = acc.current.applyModifier(tok.Value)
	case specificKey:
		err = acc.current.applySpecific(tok.Value)
	case targetKey:
		err = acc.current.applyTarget(tok.Value)
	default:
		err = fmt.Errorf("%w %s", ErrUnknownToken, tok)
	}
	if err != nil {
		acc.fail(tok, err)
	}
}

// appendTier counts the "&" among the first characters of key and strips the
// leading ones. A bare "&" is the modifier key and is returned unchanged.
func appendTier(key string) (string, AppendType) {
	if key == modifierKey {
		return key, NoAppend
	}
	head := key
	if len(head) > maxAppendTier {
		head = head[:maxAppendTier]
	}
	tier := AppendType(strings.Count(head, modifierKey))
	return strings.TrimLeft(key, modifierKey), tier
}

func isLetters(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// applyModifier folds an "&=value" token: a flag letter, a cost ("N", "N-",
// "N+"), a charge bound ("+N", "-N") or a life range ("lo-hi").
func (c *Context) applyModifier(value string) error {
	if len(value) == 1 && c.setFlag(value[0]) {
		return nil
	}
	if value == "" {
		return fmt.Errorf("%w: empty", ErrUnknownModifier)
	}

	switch first := value[0]; {
	case first == '+' || first == '-':
		n, err := parseInt(value[1:])
		if err != nil {
			return err
		}
		if first == '+' {
			c.Charges = Range{Lower: bound(n)}
		} else {
			c.Charges = Range{Upper: bound(n)}
		}
		return nil
	case first >= '0' && first <= '9':
		if lo, hi, ok := strings.Cut(value, "-"); ok && hi != "" {
			lower, upper, err := parseRange(lo + "-" + hi)
			if err != nil {
				return err
			}
			c.Life = Range{Lower: bound(lower), Upper: bound(upper)}
			return nil
		}
		digits := strings.TrimRight(value, "+-")
		n, err := parseInt(digits)
		if err != nil {
			return err
		}
		switch value[len(digits):] {
		case "":
			c.Cost = Range{Lower: bound(n), Upper: bound(n)}
		case "-":
			c.Cost = Range{Upper: bound(n)}
		case "+":
			c.Cost = Range{Lower: bound(n)}
		default:
			return fmt.Errorf("%w %s", ErrUnknownModifier, value)
		}
		return nil
	}
	return fmt.Errorf("%w %s", ErrUnknownModifier, value)
}

func (c *Context) setFlag(letter byte) bool {
	switch letter {
	case 'C':
		c.Cast = true
	case 'D':
		c.Divided = true
	case 'H':
		c.Optional = true
	case 'I':
		c.Conditional = true
	case 'N':
		c.NemesisTier = true
	case 'O':
		c.Opened = true
	case 'W':
		c.NoDiscard = true
	default:
		return false
	}
	return true
}

func (c *Context) applySpecific(value string) error {
	if value == "" {
		return fmt.Errorf("%w: empty target restriction", ErrUnknownModifier)
	}
	for _, r := range value {
		if !strings.ContainsRune(specificLetters, r) {
			return fmt.Errorf("%w %c in target restriction %s", ErrUnknownModifier, r, value)
		}
	}
	c.Specific = value
	return nil
}

func (c *Context) applyTarget(value string) error {
	if value == "" {
		return fmt.Errorf("%w: empty target", ErrUnknownToken)
	}
	for _, r := range value {
		if src, ok := sourceLetters[r]; ok {
			c.Source = src
			continue
		}
		if loc, ok := locationLetters[r]; ok {
			c.Location = loc
			continue
		}
		return fmt.Errorf("%w target %c", ErrUnknownToken, r)
	}
	return nil
}
