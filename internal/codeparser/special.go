package codeparser

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var errNothingToModify = errors.New("no preceding rule to modify")

// timingClauses are the "&" extras that extend the previous rule.
var timingClauses = map[string]string{
	"C": " at the end of your casting phase,",
	"G": " when you gain a card,",
	"M": " once per turn during your main phase,",
}

// formatSpecial walks the extra tokens and builds the lines printed before
// and after the effect. Lines are unresolved template text.
func (c *Compiler) formatSpecial(extras []Token, name, cardType string) (before, after []string) {
	prefix := escapeBraces(c.prefix)
	pop := func() (string, bool) {
		if len(before) == 0 {
			return "", false
		}
		last := before[len(before)-1]
		before = before[:len(before)-1]
		return last, true
	}
	report := func(err error) string {
		c.logger.Debug("special diagnostic", zap.String("card", name), zap.Error(err))
		return escapeBraces(diagnostic(err))
	}

	for _, tok := range extras {
		value := escapeBraces(tok.Value)
		switch tok.Key {
		case "C":
			before = append(before, "This spell may be prepped to a closed breach without focusing it.")
		case "D":
			before = append(before, prefix+"Dual")
		case "E":
			before = append(before, prefix+"Echo")
		case "G":
			before = append(before, "When you gain this,")
		case "L":
			before = append(before, prefix+"Link")
		case "N":
			before = append(before, fmt.Sprintf("Use this only when playing with %s.", value))
		case "P":
			before = append(before, "While prepped,")
		case "T":
			after = append(after, "Card type: "+value)
		case "U":
			before = append(before, fmt.Sprintf("Use this card only when playing with %s.", value))
		case modifierKey:
			prev, ok := pop()
			if !ok {
				before = append(before, report(fmt.Errorf("%w: %s", errNothingToModify, tok)))
				continue
			}
			if clause, ok := timingClauses[tok.Value]; ok {
				before = append(before, prev+clause)
				continue
			}
			err := fmt.Errorf("%w %s", ErrUnknownModifier, tok.Value)
			before = append(before, report(err)+"\nText: "+prev)
		case "?":
			prev, ok := pop()
			if !ok {
				before = append(before, report(fmt.Errorf("%w: %s", errNothingToModify, tok)))
				continue
			}
			nested := c.FormatEffect(parseNested(tok.Value), name, cardType, false)
			before = append(before, prev+" "+nested+".")
		default:
			before = append(before, report(fmt.Errorf("%w %s", ErrUnknownToken, tok)))
		}
	}
	return before, after
}
