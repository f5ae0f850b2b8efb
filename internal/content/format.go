package content

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"lexive/internal/codeparser"
)

// Message is one chat message, as lines.
type Message []string

// String joins the lines.
func (m Message) String() string {
	return strings.Join(m, "\n")
}

const (
	fence = "```"

	mismatchNotice = "Autogenerated content above does not match printed content:"
)

var breachOrientations = [...]string{
	"Open",
	"Facing up",
	"Facing left",
	"Facing down",
	"Facing right",
}

var breachNumerals = [4]string{"I", "II", "III", "IV"}

// Formatter turns catalog entries into messages.
type Formatter struct {
	cat      *Catalog
	compiler *codeparser.Compiler
	prefix   string
}

// NewFormatter returns a Formatter using compiler for card codes. The
// compiler's prefix is used wherever text mentions a keyword.
func NewFormatter(cat *Catalog, compiler *codeparser.Compiler) *Formatter {
	return &Formatter{cat: cat, compiler: compiler, prefix: compiler.Prefix()}
}

// Catalog returns the catalog being formatted.
func (f *Formatter) Catalog() *Catalog {
	return f.cat
}

// Describe returns every message for the entries stored under key that are
// visible to guild, in a fixed order: mechanics, player cards, nemesis cards,
// mages, nemeses, breaches, treasures.
func (f *Formatter) Describe(key string, guild int) []Message {
	var out []Message
	if m, ok := f.cat.Mechanics[key]; ok {
		out = append(out, f.Mechanic(m)...)
	}
	for _, c := range f.cat.PlayerCards[key] {
		if visible(c.Guild, guild) {
			out = append(out, f.PlayerCard(c))
		}
	}
	for _, c := range f.cat.NemesisCards[key] {
		if visible(c.Guild, guild) {
			out = append(out, f.NemesisCard(c))
		}
	}
	for _, m := range f.cat.PlayerMats[key] {
		if visible(m.Guild, guild) {
			out = append(out, f.PlayerMat(m)...)
		}
	}
	for _, m := range f.cat.NemesisMats[key] {
		if visible(m.Guild, guild) {
			out = append(out, f.NemesisMat(m)...)
		}
	}
	for _, b := range f.cat.Breaches[key] {
		if visible(b.Guild, guild) {
			out = append(out, f.Breach(b))
		}
	}
	for _, t := range f.cat.Treasures[key] {
		if visible(t.Guild, guild) {
			out = append(out, f.Treasure(t))
		}
	}
	return out
}

func (f *Formatter) fromBox(box string) string {
	return fmt.Sprintf("From %s (Wave %d)", box, f.cat.Boxes[box].Wave)
}

// PlayerCard formats a gem, relic or spell. Generated text is shown in place
// of the printed text, which follows when the two differ.
func (f *Formatter) PlayerCard(c PlayerCard) Message {
	before, after := f.compiler.RenderSpecial(c.Code, c.Name, c.Type)
	m := Message{fence, c.Name, "",
		"Type: " + f.cat.CardTypeName(c.Type),
		"Cost: " + strconv.Itoa(c.Cost),
		""}

	switch {
	case before != "":
		m = append(m, "** "+before+" **")
		if before != c.Special {
			m = append(m, mismatchNotice, "** "+c.Special+" **")
		}
		m = append(m, "")
	case c.Special != "":
		m = append(m, "** "+c.Special+" **", "")
	}

	if len(c.Code.Branches) > 0 {
		text := f.compiler.Render(c.Code, c.Name, c.Type)
		m = append(m, text)
		if text != c.Text {
			m = append(m, mismatchNotice, c.Text)
		}
	} else {
		m = append(m, c.Text)
	}
	m = append(m, "")

	if after != "" {
		m = append(m, after, "")
	}
	if c.Flavour != "" {
		m = append(m, c.Flavour, "")
	}
	if c.Starter != "" {
		m = append(m, "Starter card for "+c.Starter, "")
	}
	m = append(m, f.fromBox(c.Box))

	prefix := f.cat.Boxes[c.Box].Prefix
	switch {
	case prefix == "":
		prefix = c.Deck
	case c.Deck != "":
		prefix += "-" + c.Deck + "-"
	}
	switch {
	case c.Starter != "" && c.End != 0:
		m = append(m, fmt.Sprintf("Cards %s%d and %s%d", prefix, c.Start, prefix, c.End))
	case c.End != 0:
		m = append(m, fmt.Sprintf("Cards %s%d-%s%d", prefix, c.Start, prefix, c.End))
	default:
		m = append(m, fmt.Sprintf("Card %s%d", prefix, c.Start))
	}
	return append(m, fence)
}

func nemesisCategory(cat string, tier int) string {
	switch cat {
	case "B":
		return fmt.Sprintf("Basic Nemesis (Tier %d)", tier)
	case "U":
		return fmt.Sprintf("Upgraded Basic Nemesis (Tier %d)", tier)
	case "E":
		return fmt.Sprintf("Fully-Evolved Legacy Basic Nemesis suitable as Upgraded Basic (Tier %d)", tier)
	}
	return fmt.Sprintf("Nemesis card for %s (Tier %d)", cat, tier)
}

// starred prints 0 as "*", for values that vary during play.
func starred(n int) string {
	if n == 0 {
		return "*"
	}
	return strconv.Itoa(n)
}

// NemesisCard formats an attack, power or minion.
func (f *Formatter) NemesisCard(c NemesisCard) Message {
	m := Message{fence, c.Name, "",
		"Type: " + f.cat.CardTypeName(c.Type),
		nemesisCategory(c.Category, c.Tier)}
	minion := strings.HasPrefix(c.Type, "M")
	if minion {
		m = append(m, "Health: "+starred(c.TokensHP))
		switch {
		case c.Shield == -1:
			m = append(m, "Shield tokens: *")
		case c.Shield != 0:
			m = append(m, "Shield tokens: "+strconv.Itoa(c.Shield))
		}
	}
	m = append(m, "")

	if c.Special != "" {
		m = append(m, "** "+c.Special+" **", "")
	}
	if c.Immediate != "" {
		m = append(m, "IMMEDIATELY: "+c.Immediate, "")
	}

	switch {
	case c.Type == "P":
		if c.Discard != "" {
			m = append(m, "TO DISCARD: "+c.Discard, "")
		}
		m = append(m, fmt.Sprintf("POWER %d: %s", c.TokensHP, c.Effect))
	case c.Type == "MA":
		m = append(m, "BLOOD MAGIC: "+c.Effect)
	case minion:
		if c.Effect != "" {
			m = append(m, "PERSISTENT: "+c.Effect)
		}
	default:
		m = append(m, c.Effect)
	}
	if c.Effect != "" {
		m = append(m, "")
	}
	if c.Flavour != "" {
		m = append(m, c.Flavour, "")
	}

	m = append(m, f.fromBox(c.Box))
	prefix := f.cat.Boxes[c.Box].Prefix
	switch {
	case prefix == "" && c.Deck != "":
		prefix = c.Deck + "-"
	case c.Deck != "":
		prefix += "-" + c.Deck + "-"
	}
	if c.End != 0 {
		m = append(m, fmt.Sprintf("Cards %s%d-%s%d", prefix, c.Start, prefix, c.End))
	} else {
		m = append(m, fmt.Sprintf("Card %s%d", prefix, c.Start))
	}
	return append(m, fence)
}

// PlayerMat formats a mage, with the flavour text as a second message.
func (f *Formatter) PlayerMat(p PlayerMat) []Message {
	m := Message{fence, p.Name, p.Title,
		"Complexity rating: " + strconv.Itoa(p.Rating),
		"",
		"Starting breach positions:",
		""}
	for i, slot := range p.Breaches {
		if slot.Position == NoBreach {
			m = append(m, fmt.Sprintf("(No breach %s)", breachNumerals[i]))
			continue
		}
		name := slot.Name
		if name == "" {
			name = "Breach " + breachNumerals[i]
		}
		orientation := "Unknown orientation"
		if slot.Position >= 0 && slot.Position < len(breachOrientations) {
			orientation = breachOrientations[slot.Position]
		}
		m = append(m, fmt.Sprintf("%s%s - %s", f.prefix, name, orientation))
	}
	m = append(m, "")

	prefix := f.cat.Boxes[p.Box].Prefix
	m = append(m,
		"Starting hand: "+strings.Join(groupCards(f.startingCards(prefix, p.Hand)), ", "),
		"Starting deck: "+strings.Join(groupCards(f.startingCards(prefix, p.Deck)), ", "),
		"")

	abilityType := p.Ability.Type
	if long, ok := f.cat.AbilityTypes[abilityType]; ok {
		abilityType = long
	}
	m = append(m,
		"Ability: "+p.Ability.Name,
		"Charges needed: "+strconv.Itoa(p.Ability.Charges),
		"Activate "+abilityType+":",
		p.Ability.Effect,
		"")
	if p.Special != "" {
		m = append(m, p.Special, "")
	}
	m = append(m, f.fromBox(p.Box), fence)

	out := []Message{m}
	if p.Flavour != "" {
		out = append(out, Message{fence, p.Flavour, fence})
	}
	return out
}

// startingCards resolves the hand or deck column of a mage: card numbers,
// deck numbers such as "1a5", "END5", and C and S for Crystal and Spark.
func (f *Formatter) startingCards(prefix string, refs []string) []string {
	decks := f.cat.Numbers[prefix]
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		name := ""
		switch {
		case ref == "C":
			name = "Crystal"
		case ref == "S":
			name = "Spark"
		case isDigits(ref):
			n, _ := strconv.Atoi(ref)
			name = decks[""][n].Name
		case strings.HasPrefix(ref, "END") && isDigits(ref[3:]):
			n, _ := strconv.Atoi(ref[3:])
			name = decks["END"][n].Name
		default:
			if d, num, ok := splitDeckNumber(ref); ok {
				n, _ := strconv.Atoi(num)
				name = decks[d][n].Name
			}
		}
		if name == "" {
			name = "ERROR: Unrecognized card " + ref
		}
		out = append(out, name)
	}
	return out
}

// groupCards collapses runs of the same card into "2x Name".
func groupCards(names []string) []string {
	var out []string
	for i := 0; i < len(names); {
		j := i
		for j < len(names) && names[j] == names[i] {
			j++
		}
		out = append(out, fmt.Sprintf("%dx %s", j-i, names[i]))
		i = j
	}
	return out
}

// NemesisMat formats a nemesis: the mat, the cards it uses, its flavour
// text and its side mat, each as a message.
func (f *Formatter) NemesisMat(n NemesisMat) []Message {
	m := Message{fence, n.Name,
		"Health: " + starred(n.HP),
		"Difficulty rating: " + strconv.Itoa(n.Difficulty),
		"Battle: " + strconv.Itoa(n.Battle),
		"",
		"SETUP:", n.Setup, "",
		"UNLEASH:", n.Unleash, ""}

	if n.IDSetup != "" || n.IDUnleash != "" || n.IDRules != "" {
		m = append(m, "* INCREASED DIFFICULTY *")
		if n.IDSetup != "" {
			m = append(m, "SETUP: "+n.IDSetup)
		}
		if n.IDUnleash != "" {
			m = append(m, "UNLEASH: "+n.IDUnleash)
		}
		if n.IDRules != "" {
			m = append(m, "RULES: "+n.IDRules)
		}
		m = append(m, "")
	}
	m = append(m, "* ADDITIONAL RULES *", n.AdditionalRules, "")
	if n.Extra != "" {
		m = append(m, "Additional expedition rules:", n.Extra, "")
	}
	m = append(m, f.fromBox(n.Box), fence)

	out := []Message{m, f.nemesisCards(n)}
	if n.Flavour != "" {
		out = append(out, Message{fence, n.Flavour, fence})
	}
	if n.Side != "" {
		out = append(out, Message{fence, n.Side, fence})
	}
	return out
}

func (f *Formatter) nemesisCards(n NemesisMat) Message {
	type row struct{ label, ctype, name string }
	prefix := f.cat.Boxes[n.Box].Prefix
	var rows []row
	width := 0
	for _, ref := range n.Cards {
		entry, ok := f.cat.cardRef(prefix, ref)
		if !ok {
			rows = append(rows, row{name: "ERROR: Unknown card " + ref})
			continue
		}
		r := row{name: entry.Name}
		switch entry.Kind {
		case KindNemesis:
			if cards := f.cat.NemesisCards[Casefold(entry.Name)]; len(cards) > 0 {
				r.label = fmt.Sprintf("Tier %d", cards[0].Tier)
				r.ctype = f.cat.CardTypeName(cards[0].Type)
			}
		case KindPlayer:
			if cards := f.cat.PlayerCards[Casefold(entry.Name)]; len(cards) > 0 {
				r.label = fmt.Sprintf("%d-Cost", cards[0].Cost)
				r.ctype = f.cat.CardTypeName(cards[0].Type)
			}
		}
		if len(r.ctype) > width {
			width = len(r.ctype)
		}
		rows = append(rows, r)
	}

	m := Message{fence, "Cards used with this nemesis:", ""}
	for _, r := range rows {
		if r.label == "" {
			m = append(m, r.name)
			continue
		}
		m = append(m, fmt.Sprintf("(%s %-*s) %s", r.label, width, r.ctype, r.name))
	}
	return append(m, fence)
}

// Breach formats a special breach.
func (f *Formatter) Breach(b Breach) Message {
	m := Message{fence, b.Name, "Position: " + strconv.Itoa(b.Position), ""}
	if b.Focus != 0 {
		m = append(m,
			"Focus cost: "+strconv.Itoa(b.Focus),
			"Opening cost from UP   : "+strconv.Itoa(b.Focus))
	}
	if b.Left != 0 {
		m = append(m, "Opening cost from LEFT : "+strconv.Itoa(b.Left))
	}
	if b.Down != 0 {
		m = append(m, "Opening cost from DOWN : "+strconv.Itoa(b.Down))
	}
	if b.Right != 0 {
		m = append(m, "Opening cost from RIGHT: "+strconv.Itoa(b.Right))
	}
	if b.Focus != 0 {
		m = append(m, "")
	}
	if b.Effect != "" {
		m = append(m, b.Effect)
	}
	if b.Mage != "" {
		line := "Used with " + b.Mage
		if mats := f.cat.PlayerMats[Casefold(b.Mage)]; len(mats) > 0 {
			line += " (From " + mats[0].Box + ")"
		}
		m = append(m, "", line)
	}
	return append(m, fence)
}

// Treasure formats a treasure card or Outcast ability.
func (f *Formatter) Treasure(t Treasure) Message {
	m := Message{fence, t.Name, "Type: " + f.cat.CardTypeName(t.Type), "", t.Effect, ""}
	if t.Flavour != "" {
		m = append(m, t.Flavour, "")
	}
	m = append(m, f.fromBox(t.Box))
	prefix := f.cat.Boxes[t.Box].Prefix
	if t.Deck != "" {
		prefix += "-" + t.Deck + "-"
	}
	m = append(m, fmt.Sprintf("Card %s%d", prefix, t.Number), fence)
	return m
}

const (
	titleMarker = "TITLE"
)

var cardPlaceholder = regexp.MustCompile(`\{card\[([^\]]*)\]\}`)

// mechanicLine fills the placeholders of a mechanic file.
func (f *Formatter) mechanicLine(s string) string {
	s = cardPlaceholder.ReplaceAllStringFunc(s, func(match string) string {
		arg := cardPlaceholder.FindStringSubmatch(match)[1]
		entry, err := f.cat.CardNumber(strings.ToUpper(Casefold(arg)))
		if err != nil {
			return NumberError(err, f.prefix)
		}
		return entry.Name
	})
	return strings.NewReplacer("{prefix}", f.prefix, "{newline}", "").Replace(s)
}

// Mechanic formats a unique mechanic. A single-line file is one block;
// otherwise each paragraph is its own message and a line reading TITLE puts
// the following line above the next block.
func (f *Formatter) Mechanic(mech Mechanic) []Message {
	if len(mech.Lines) == 1 {
		return []Message{{fence, strings.ReplaceAll(mech.Lines[0], "{prefix}", f.prefix), fence}}
	}

	var out []Message
	var cur Message
	blocks := 0
	flush := func() {
		if len(cur) > 0 {
			out = append(out, cur)
		}
		cur, blocks = nil, 0
	}
	isTitle, inBlock := false, false
	for _, line := range mech.Lines {
		switch {
		case line == "":
			if inBlock {
				cur = append(cur, fence)
				inBlock = false
			}
		case line == titleMarker && !inBlock:
			if blocks > 0 {
				flush()
			}
			isTitle = true
		case isTitle:
			cur = append(cur, f.mechanicLine(line))
			isTitle = false
		case inBlock:
			cur = append(cur, f.mechanicLine(line))
		default:
			if blocks > 0 {
				flush()
			}
			cur = append(cur, fence, f.mechanicLine(line))
			inBlock = true
			blocks++
		}
	}
	if inBlock {
		cur = append(cur, fence)
	}
	flush()
	return out
}
