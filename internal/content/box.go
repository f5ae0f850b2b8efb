package content

import (
	"fmt"
	"sort"
	"strconv"
)

// BoxContents lists the numbered cards of a box, deck by deck.
func (c *Catalog) BoxContents(box string) []string {
	prefix := c.Boxes[box].Prefix
	decks := c.Numbers[prefix]

	deckNames := make([]string, 0, len(decks))
	for d := range decks {
		deckNames = append(deckNames, d)
	}
	sort.Slice(deckNames, func(i, j int) bool { return deckLess(deckNames[i], deckNames[j]) })

	lines := []string{"Cards from " + box + ":", ""}
	for _, deck := range deckNames {
		if deck != "" {
			lines = append(lines, "", "Deck: "+deck, "")
		}
		nums := make([]int, 0, len(decks[deck]))
		for n := range decks[deck] {
			nums = append(nums, n)
		}
		sort.Ints(nums)
		for _, n := range nums {
			entry := decks[deck][n]
			for _, t := range c.typesInBox(entry, box) {
				lines = append(lines, fmt.Sprintf("- %s (%s) (%d)", entry.Name, c.CardTypeName(t), n))
			}
		}
	}
	return lines
}

// deckLess orders decks with the unnamed deck first, then numerically where
// the names allow it.
func deckLess(a, b string) bool {
	if a == "" || b == "" {
		return a == ""
	}
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return na < nb
	}
	return a < b
}

// typesInBox returns the card type of every printing of entry from box.
func (c *Catalog) typesInBox(entry NumberEntry, box string) []string {
	key := Casefold(entry.Name)
	var types []string
	switch entry.Kind {
	case KindPlayer:
		for _, p := range c.PlayerCards[key] {
			if p.Box == box {
				types = append(types, p.Type)
			}
		}
	case KindNemesis:
		for _, n := range c.NemesisCards[key] {
			if n.Box == box {
				types = append(types, n.Type)
			}
		}
	case KindTreasure, KindOutcast:
		for _, t := range c.Treasures[key] {
			if t.Box == box {
				types = append(types, t.Type)
			}
		}
	}
	return types
}

// Document is one searchable text field of a catalog entry.
type Document struct {
	Kind  string
	Name  string
	Field string
	Text  string
	Guild int
}

// Documents returns the searchable fields of every entry.
func (c *Catalog) Documents() []Document {
	var docs []Document
	add := func(kind, name string, guild int, fields ...string) {
		for i := 0; i+1 < len(fields); i += 2 {
			if fields[i+1] == "" {
				continue
			}
			docs = append(docs, Document{Kind: kind, Name: name, Field: fields[i], Text: fields[i+1], Guild: guild})
		}
	}
	for _, key := range sortedKeys(c.PlayerCards) {
		for _, p := range c.PlayerCards[key] {
			add("player_card", p.Name, p.Guild, "text", p.Text, "special", p.Special, "flavour", p.Flavour)
		}
	}
	for _, key := range sortedKeys(c.NemesisCards) {
		for _, n := range c.NemesisCards[key] {
			add("nemesis_card", n.Name, n.Guild, "effect", n.Effect, "special", n.Special,
				"immediate", n.Immediate, "discard", n.Discard, "flavour", n.Flavour)
		}
	}
	for _, key := range sortedKeys(c.PlayerMats) {
		for _, p := range c.PlayerMats[key] {
			add("player_mat", p.Name, p.Guild, "special", p.Special, "title", p.Title, "flavour", p.Flavour,
				"ability_name", p.Ability.Name, "ability_effect", p.Ability.Effect)
		}
	}
	for _, key := range sortedKeys(c.NemesisMats) {
		for _, n := range c.NemesisMats[key] {
			add("nemesis_mat", n.Name, n.Guild, "unleash", n.Unleash, "id_unleash", n.IDUnleash,
				"setup", n.Setup, "id_setup", n.IDSetup, "extra", n.Extra, "side", n.Side,
				"additional_rules", n.AdditionalRules, "id_rules", n.IDRules, "flavour", n.Flavour)
		}
	}
	for _, key := range sortedKeys(c.Treasures) {
		for _, t := range c.Treasures[key] {
			add("treasure", t.Name, t.Guild, "effect", t.Effect, "flavour", t.Flavour)
		}
	}
	return docs
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
