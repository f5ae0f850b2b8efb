package content

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

var (
	ErrNoPrefix      = errors.New("no prefix supplied")
	ErrNoNumber      = errors.New("no number found")
	ErrUnknownPrefix = errors.New("unrecognized prefix")
	ErrUnknownDeck   = errors.New("unrecognized deck")
	ErrUnknownCard   = errors.New("unknown card")
)

// legacyDecks are the deck names of the Legacy box, longest first so that
// "III5" is not read as deck "I".
var legacyDecks = []string{"VIII", "VII", "III", "END", "II", "IV", "VI", "V", "I"}

// CardNumber finds the card printed with the given number, such as "AE12",
// "O-1a-3" (given casefolded as "O1A3") or the Legacy "II5". The argument is
// expected casefolded and uppercased.
func (c *Catalog) CardNumber(arg string) (NumberEntry, error) {
	idx := strings.IndexFunc(arg, unicode.IsDigit)
	if idx >= 0 && isDigits(arg) {
		return NumberEntry{}, ErrNoPrefix
	}
	if idx <= 0 {
		return NumberEntry{}, ErrNoNumber
	}
	prefix, num := arg[:idx], arg[idx:]
	deck := ""
	// Legacy decks use roman numerals in place of a box prefix. Into the Wild
	// has an I in its prefix but is a regular box.
	if (strings.Contains(prefix, "I") || prefix == "V") && !strings.Contains(prefix, "T") {
		deck, prefix = prefix, ""
	}
	if !isDigits(num) {
		d, n, ok := splitDeckNumber(num)
		if !ok {
			return NumberEntry{}, fmt.Errorf("%w: %s", ErrNoNumber, num)
		}
		deck, num = d, n
	}

	decks, ok := c.Numbers[prefix]
	if !ok {
		return NumberEntry{}, fmt.Errorf("%w: %s", ErrUnknownPrefix, prefix)
	}
	// Decks such as "1a" are stored with a lowercase letter.
	if len(deck) == 2 && strings.ContainsAny(deck[1:], "ABCD") {
		deck = deck[:1] + strings.ToLower(deck[1:])
	}
	cards, ok := decks[deck]
	if !ok {
		return NumberEntry{}, fmt.Errorf("%w: %s", ErrUnknownDeck, deck)
	}
	n, _ := strconv.Atoi(num)
	entry, ok := cards[n]
	if !ok {
		return NumberEntry{}, fmt.Errorf("%w: %d", ErrUnknownCard, n)
	}
	return entry, nil
}

// NumberMessage is the reply to a card number request.
func (c *Catalog) NumberMessage(arg, prefix string) string {
	entry, err := c.CardNumber(arg)
	if err != nil {
		return NumberError(err, prefix)
	}
	return fmt.Sprintf("%s (%s)", entry.Name, entry.Kind.Describe())
}

// NumberError turns a CardNumber error into the text shown to users.
func NumberError(err error, prefix string) string {
	switch {
	case errors.Is(err, ErrNoPrefix):
		return "No prefix supplied."
	case errors.Is(err, ErrNoNumber):
		return fmt.Sprintf("No number found. Did you want `%sinfo` instead?", prefix)
	case errors.Is(err, ErrUnknownPrefix):
		return fmt.Sprintf("Prefix %s is unrecognized", detail(err))
	case errors.Is(err, ErrUnknownDeck):
		return fmt.Sprintf("Deck %s not recognized", detail(err))
	case errors.Is(err, ErrUnknownCard):
		return fmt.Sprintf("Card %s is unknown", detail(err))
	}
	return err.Error()
}

func detail(err error) string {
	_, d, _ := strings.Cut(err.Error(), ": ")
	return d
}

// cardRef resolves a card reference as written in the mat columns: a bare
// number, a deck and number ("1a5"), or a Legacy deck ("III5").
func (c *Catalog) cardRef(prefix, ref string) (NumberEntry, bool) {
	decks := c.Numbers[prefix]
	deck, num := "", ref
	switch {
	case isDigits(ref):
		if _, ok := decks[ref[:1]]; ok && len(ref) > 1 {
			deck, num = ref[:1], ref[1:]
		}
	default:
		d, n, ok := splitDeckNumber(ref)
		if !ok {
			d, n, ok = splitLegacy(ref)
		}
		if !ok {
			return NumberEntry{}, false
		}
		deck, num = d, n
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return NumberEntry{}, false
	}
	e, ok := decks[deck][n]
	return e, ok
}

// splitDeckNumber splits "1a5" into "1a" and "5".
func splitDeckNumber(s string) (deck, num string, ok bool) {
	if len(s) < 3 || !unicode.IsDigit(rune(s[0])) || !unicode.IsLetter(rune(s[1])) || !isDigits(s[2:]) {
		return "", "", false
	}
	return s[:2], s[2:], true
}

func splitLegacy(s string) (deck, num string, ok bool) {
	upper := strings.ToUpper(s)
	for _, d := range legacyDecks {
		if strings.HasPrefix(upper, d) && isDigits(s[len(d):]) {
			return d, s[len(d):], true
		}
	}
	return "", "", false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
