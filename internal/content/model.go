// Package content loads the game catalog from CSV files and formats its
// entries for display.
package content

import (
	"sort"
	"time"

	"lexive/internal/codeparser"
)

// Box is a released product. Cards are numbered within its prefix.
type Box struct {
	Name   string
	Prefix string // empty for the numbered-only boxes
	Wave   int
}

// PlayerCard is a gem, relic or spell.
type PlayerCard struct {
	Name    string
	Type    string
	Cost    int
	RawCode string
	Code    codeparser.ParsedCode
	Special string
	Text    string
	Flavour string
	Starter string
	Box     string
	Deck    string
	Start   int
	End     int
	Guild   int
}

// NemesisCard is an attack, power or minion.
type NemesisCard struct {
	Name      string
	Type      string
	TokensHP  int
	Shield    int
	Tier      int
	Category  string
	Code      string
	Special   string
	Discard   string
	Immediate string
	Effect    string
	Flavour   string
	Box       string
	Deck      string
	Start     int
	End       int
	Guild     int
}

// Ability is a mage's charged ability.
type Ability struct {
	Name    string
	Charges int
	Type    string
	Effect  string
	Code    string
}

// BreachSlot is one of a mage's four starting breaches.
type BreachSlot struct {
	Position int    // 0 open, 1-4 facing, 9 absent
	Name     string // empty for a regular breach
}

// NoBreach marks a slot without a breach.
const NoBreach = 9

// PlayerMat is a mage.
type PlayerMat struct {
	Name     string
	Title    string
	Rating   int
	Ability  Ability
	Breaches [4]BreachSlot
	Hand     []string
	Deck     []string
	Flavour  string
	Special  string
	Box      string
	Guild    int
}

// NemesisMat is a nemesis.
type NemesisMat struct {
	Name            string
	HP              int
	Difficulty      int
	Battle          int
	Code            string
	Extra           string
	Unleash         string
	Setup           string
	IDSetup         string
	IDUnleash       string
	IDRules         string
	AdditionalRules string
	Flavour         string
	Side            string
	Box             string
	Cards           []string
	Guild           int
}

// Breach is a special breach used by a mage.
type Breach struct {
	Name     string
	Position int
	Focus    int
	Left     int
	Down     int
	Right    int
	Effect   string
	Mage     string
	Guild    int
}

// Treasure is a treasure card or a Xaxos: Outcast ability.
type Treasure struct {
	Name    string
	Type    string
	Code    string
	Effect  string
	Flavour string
	Box     string
	Deck    string
	Number  int
	Guild   int
}

// Mechanic is a free-form rules entry read from a .lexive file.
type Mechanic struct {
	Name  string
	Lines []string
}

// NumberKind says what a numbered card is.
type NumberKind string

const (
	KindPlayer   NumberKind = "P"
	KindNemesis  NumberKind = "N"
	KindTreasure NumberKind = "T"
	KindOutcast  NumberKind = "O"
)

// Describe names the kind for display.
func (k NumberKind) Describe() string {
	switch k {
	case KindPlayer:
		return "Player card"
	case KindNemesis:
		return "Nemesis card"
	case KindTreasure:
		return "Treasure card"
	case KindOutcast:
		return "Xaxos: Outcast Ability"
	}
	return "Unknown card type"
}

// NumberEntry is what the numbering index stores per card number.
type NumberEntry struct {
	Kind NumberKind
	Name string
}

// NumberIndex maps box prefix -> deck -> card number. The empty string is
// used both for boxes without a prefix and for cards without a deck.
type NumberIndex map[string]map[string]map[int]NumberEntry

func (n NumberIndex) add(prefix, deck string, num int, e NumberEntry) {
	decks, ok := n[prefix]
	if !ok {
		decks = make(map[string]map[int]NumberEntry)
		n[prefix] = decks
	}
	nums, ok := decks[deck]
	if !ok {
		nums = make(map[int]NumberEntry)
		decks[deck] = nums
	}
	nums[num] = e
}

// Catalog is the loaded game content. It is immutable once Load returns;
// a reload builds a new one.
type Catalog struct {
	Boxes        map[string]Box
	CardTypes    map[string]string
	AbilityTypes map[string]string
	Assets       map[string]string
	Mechanics    map[string]Mechanic

	PlayerCards  map[string][]PlayerCard
	NemesisCards map[string][]NemesisCard
	PlayerMats   map[string][]PlayerMat
	NemesisMats  map[string][]NemesisMat
	Breaches     map[string][]Breach
	Treasures    map[string][]Treasure

	Numbers NumberIndex

	LoadedAt time.Time
}

func newCatalog() *Catalog {
	return &Catalog{
		Boxes:        make(map[string]Box),
		CardTypes:    make(map[string]string),
		AbilityTypes: make(map[string]string),
		Assets:       make(map[string]string),
		Mechanics:    make(map[string]Mechanic),
		PlayerCards:  make(map[string][]PlayerCard),
		NemesisCards: make(map[string][]NemesisCard),
		PlayerMats:   make(map[string][]PlayerMat),
		NemesisMats:  make(map[string][]NemesisMat),
		Breaches:     make(map[string][]Breach),
		Treasures:    make(map[string][]Treasure),
		Numbers:      make(NumberIndex),
	}
}

// Keys returns every casefolded name the catalog can describe, sorted.
func (c *Catalog) Keys() []string {
	seen := make(map[string]struct{})
	add := func(k string) { seen[k] = struct{}{} }
	for k := range c.Mechanics {
		add(k)
	}
	for k := range c.PlayerCards {
		add(k)
	}
	for k := range c.NemesisCards {
		add(k)
	}
	for k := range c.PlayerMats {
		add(k)
	}
	for k := range c.NemesisMats {
		add(k)
	}
	for k := range c.Breaches {
		add(k)
	}
	for k := range c.Treasures {
		add(k)
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DisplayNames returns the printed names stored under key.
func (c *Catalog) DisplayNames(key string) []string {
	var names []string
	add := func(n string) {
		for _, have := range names {
			if have == n {
				return
			}
		}
		names = append(names, n)
	}
	if m, ok := c.Mechanics[key]; ok {
		add(m.Name)
	}
	for _, v := range c.PlayerCards[key] {
		add(v.Name)
	}
	for _, v := range c.NemesisCards[key] {
		add(v.Name)
	}
	for _, v := range c.PlayerMats[key] {
		add(v.Name)
	}
	for _, v := range c.NemesisMats[key] {
		add(v.Name)
	}
	for _, v := range c.Breaches[key] {
		add(v.Name)
	}
	for _, v := range c.Treasures[key] {
		add(v.Name)
	}
	return names
}

// CardTypeName returns the long name of a card type letter.
func (c *Catalog) CardTypeName(t string) string {
	if name, ok := c.CardTypes[t]; ok {
		return name
	}
	return t
}

// BoxNames returns the box names sorted by wave, then name.
func (c *Catalog) BoxNames() []string {
	names := make([]string, 0, len(c.Boxes))
	for n := range c.Boxes {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		bi, bj := c.Boxes[names[i]], c.Boxes[names[j]]
		if bi.Wave != bj.Wave {
			return bi.Wave < bj.Wave
		}
		return names[i] < names[j]
	})
	return names
}

// visible reports whether content from guild may be shown to requester.
// Guild 0 is the shared content.
func visible(contentGuild, requester int) bool {
	return contentGuild == 0 || contentGuild == requester
}
