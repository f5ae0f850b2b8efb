// Package randomizer draws a random battle setup: a nemesis, the mages and
// a market of gems, relics and spells.
package randomizer

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"go.uber.org/zap"

	"lexive/internal/config"
	"lexive/internal/content"
	"lexive/internal/logging"
)

var (
	ErrNoNemesis       = errors.New("could not find a matching nemesis")
	ErrNotEnoughMages  = errors.New("could not find enough mages")
	ErrNotEnoughMarket = errors.New("could not find enough market cards")
)

const (
	maxPicks       = 1000
	maxMarketPicks = 5000

	cheapGemCost = 3

	// noExpedition marks nemeses that cannot be drawn outside their campaign.
	noExpedition = "NOEXP"
)

// Options select what the battle may contain.
type Options struct {
	Players       int
	Gems          int
	Relics        int
	Spells        int
	ForceCheapGem bool // at least one gem costing 3 or less
	MinDifficulty int
	MaxDifficulty int
	MinRating     int
	MaxRating     int
	Guild         int // guild content is only drawn for its own guild
	Verbose       int // 0-3, fills Battle.Trace
}

// OptionsFromConfig returns the configured defaults.
func OptionsFromConfig(rc config.RandomConfig) Options {
	return Options{
		Players:       rc.Players,
		Gems:          rc.Gems,
		Relics:        rc.Relics,
		Spells:        rc.Spells,
		ForceCheapGem: rc.ForceCheapGem,
		MinDifficulty: rc.MinDifficulty,
		MaxDifficulty: rc.MaxDifficulty,
		MinRating:     rc.MinRating,
		MaxRating:     rc.MaxRating,
	}
}

// Validate checks every option against its allowed range.
func (o Options) Validate() error {
	check := func(name string, v, lo, hi int) error {
		if v < lo || v > hi {
			return fmt.Errorf("%s must be between %d and %d, got %d", name, lo, hi, v)
		}
		return nil
	}
	for _, c := range []struct {
		name      string
		v, lo, hi int
	}{
		{"player count", o.Players, 1, 4},
		{"gem count", o.Gems, 0, 9},
		{"relic count", o.Relics, 0, 9},
		{"spell count", o.Spells, 0, 9},
		{"lowest difficulty", o.MinDifficulty, 0, 10},
		{"highest difficulty", o.MaxDifficulty, 0, 10},
		{"minimum rating", o.MinRating, 0, 10},
		{"maximum rating", o.MaxRating, 0, 10},
		{"verbosity", o.Verbose, 0, 3},
	} {
		if err := check(c.name, c.v, c.lo, c.hi); err != nil {
			return err
		}
	}
	return nil
}

// Battle is a drawn setup.
type Battle struct {
	Nemesis content.NemesisMat
	Mages   []content.PlayerMat
	Gems    []content.PlayerCard
	Relics  []content.PlayerCard
	Spells  []content.PlayerCard
	Trace   []string
}

// Randomizer draws battles from a catalog. It is not safe for concurrent
// use; create one per request.
type Randomizer struct {
	cat    *content.Catalog
	rng    *rand.Rand
	logger *zap.Logger
}

// New returns a Randomizer drawing from cat with the given seed.
func New(cat *content.Catalog, seed int64) *Randomizer {
	return &Randomizer{
		cat:    cat,
		rng:    rand.New(rand.NewSource(seed)),
		logger: logging.Get(logging.CategoryRandom),
	}
}

func (r *Randomizer) tracef(b *Battle, level, verbose int, format string, args ...interface{}) {
	if verbose >= level {
		b.Trace = append(b.Trace, fmt.Sprintf(format, args...))
	}
}

// pick returns a random entry of a random key. Keys are sorted so a seed
// always gives the same draw.
func pick[V any](rng *rand.Rand, keys []string, m map[string][]V) V {
	values := m[keys[rng.Intn(len(keys))]]
	return values[rng.Intn(len(values))]
}

func keysOf[V any](m map[string][]V) []string {
	keys := make([]string, 0, len(m))
	for k, v := range m {
		if len(v) > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Battle draws a battle.
func (r *Randomizer) Battle(opts Options) (*Battle, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	b := &Battle{}
	r.tracef(b, 1, opts.Verbose, "Settings: %+v", opts)

	if err := r.drawNemesis(b, opts); err != nil {
		return nil, err
	}
	if err := r.drawMages(b, opts); err != nil {
		return nil, err
	}
	if err := r.drawMarket(b, opts); err != nil {
		return nil, err
	}

	r.logger.Debug("battle drawn",
		zap.String("nemesis", b.Nemesis.Name),
		zap.Int("mages", len(b.Mages)),
		zap.Int("market", len(b.Gems)+len(b.Relics)+len(b.Spells)))
	return b, nil
}

func (r *Randomizer) drawNemesis(b *Battle, opts Options) error {
	keys := keysOf(r.cat.NemesisMats)
	if len(keys) == 0 {
		return ErrNoNemesis
	}
	for i := 0; i < maxPicks; i++ {
		n := pick(r.rng, keys, r.cat.NemesisMats)
		r.tracef(b, 2, opts.Verbose, "Checking %s", n.Name)
		switch {
		case n.Difficulty < opts.MinDifficulty || n.Difficulty > opts.MaxDifficulty:
			r.tracef(b, 3, opts.Verbose, "Difficulty doesn't match")
		case strings.Contains(n.Code, noExpedition):
		case n.Guild != 0 && n.Guild != opts.Guild:
			r.tracef(b, 3, opts.Verbose, "Box doesn't match")
		default:
			b.Nemesis = n
			return nil
		}
	}
	return ErrNoNemesis
}

func (r *Randomizer) drawMages(b *Battle, opts Options) error {
	keys := keysOf(r.cat.PlayerMats)
	if len(keys) == 0 {
		return ErrNotEnoughMages
	}
	for i := 0; len(b.Mages) < opts.Players; i++ {
		if i == maxPicks {
			return ErrNotEnoughMages
		}
		m := pick(r.rng, keys, r.cat.PlayerMats)
		if hasMage(b.Mages, m) {
			r.tracef(b, 3, opts.Verbose, "Found %s but already in, skipping", m.Name)
			continue
		}
		r.tracef(b, 2, opts.Verbose, "Checking %s", m.Name)
		switch {
		case m.Rating < opts.MinRating || m.Rating > opts.MaxRating:
			r.tracef(b, 3, opts.Verbose, "Complexity rating doesn't match")
		case m.Guild != 0 && m.Guild != opts.Guild:
			r.tracef(b, 3, opts.Verbose, "Box doesn't match")
		default:
			b.Mages = append(b.Mages, m)
		}
	}
	return nil
}

func (r *Randomizer) drawMarket(b *Battle, opts Options) error {
	keys := keysOf(r.cat.PlayerCards)
	need := func() bool {
		return len(b.Gems) < opts.Gems || len(b.Relics) < opts.Relics || len(b.Spells) < opts.Spells
	}
	if need() && len(keys) == 0 {
		return ErrNotEnoughMarket
	}
	for i := 0; need(); i++ {
		if i == maxMarketPicks {
			return ErrNotEnoughMarket
		}
		for _, c := range r.cat.PlayerCards[keys[r.rng.Intn(len(keys))]] {
			if !marketable(c, opts.Guild) {
				continue
			}
			switch c.Type {
			case "G":
				if len(b.Gems) == 0 && opts.ForceCheapGem && c.Cost > cheapGemCost {
					continue
				}
				b.Gems = addCard(b.Gems, c, opts.Gems)
			case "R":
				b.Relics = addCard(b.Relics, c, opts.Relics)
			case "S":
				b.Spells = addCard(b.Spells, c, opts.Spells)
			}
		}
	}
	for _, cards := range [][]content.PlayerCard{b.Gems, b.Relics, b.Spells} {
		sort.SliceStable(cards, func(i, j int) bool { return cards[i].Cost < cards[j].Cost })
	}
	return nil
}

// marketable excludes starter cards and cards restricted to a mode, such
// as those that are only used with a given box or that carry their own card
// type.
func marketable(c content.PlayerCard, guild int) bool {
	if c.Starter != "" || (c.Guild != 0 && c.Guild != guild) {
		return false
	}
	for _, tok := range c.Code.Extras {
		switch tok.Key {
		case "T", "U", "N":
			return false
		}
	}
	return true
}

func addCard(cards []content.PlayerCard, c content.PlayerCard, limit int) []content.PlayerCard {
	if len(cards) >= limit {
		return cards
	}
	for _, have := range cards {
		if have.Name == c.Name && have.Box == c.Box {
			return cards
		}
	}
	return append(cards, c)
}

func hasMage(mages []content.PlayerMat, m content.PlayerMat) bool {
	for _, have := range mages {
		if have.Name == m.Name && have.Box == m.Box {
			return true
		}
	}
	return false
}

// Lines renders the battle for a chat reply.
func (b *Battle) Lines() []string {
	lines := []string{"Random battle:", "", "Using all released content", ""}
	lines = append(lines, fmt.Sprintf("Fighting %s (difficulty %d)", b.Nemesis.Name, b.Nemesis.Difficulty))
	names := make([]string, len(b.Mages))
	for i, m := range b.Mages {
		names[i] = m.Name
	}
	lines = append(lines, "Using mages "+strings.Join(names, ", "))
	for _, section := range []struct {
		name  string
		cards []content.PlayerCard
	}{{"gems", b.Gems}, {"relics", b.Relics}, {"spells", b.Spells}} {
		lines = append(lines, "", "Market "+section.name+":")
		for _, c := range section.cards {
			lines = append(lines, fmt.Sprintf("%s (from %s, %d-cost)", c.Name, c.Box, c.Cost))
		}
	}
	return lines
}
