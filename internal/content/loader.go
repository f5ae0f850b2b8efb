package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"lexive/internal/codeparser"
	"lexive/internal/logging"
)

// Options locate the content on disk.
type Options struct {
	DataDir   string // base CSV files
	GuildsDir string // guilds/<id>/ overlays; relative paths are under DataDir
	AssetsDir string
	UniqueDir string
	Prefix    string // replaces "!" in special text
}

// CSV file names and their column counts.
const (
	boxesFile        = "boxes.csv"
	cardTypesFile    = "card_types.csv"
	abilityTypesFile = "mage_ability_types.csv"
	playerCardsFile  = "player_cards.csv"
	nemesisCardsFile = "nemesis_cards.csv"
	playerMatsFile   = "player_mats.csv"
	nemesisMatsFile  = "nemesis_mats.csv"
	breachesFile     = "breaches.csv"
	treasuresFile    = "treasures.csv"

	mechanicExt = ".lexive"
)

type fileSpec struct {
	name   string
	cols   int
	keyCol int
	apply  func(l *loader, recs []record, guild int) error
}

// Order matters: boxes must be known before any numbered card.
var fileSpecs = []fileSpec{
	{boxesFile, 3, 1, (*loader).applyBoxes},
	{cardTypesFile, 2, 0, (*loader).applyCardTypes},
	{abilityTypesFile, 2, 0, (*loader).applyAbilityTypes},
	{playerCardsFile, 12, 0, (*loader).applyPlayerCards},
	{nemesisCardsFile, 16, 0, (*loader).applyNemesisCards},
	{playerMatsFile, 18, 0, (*loader).applyPlayerMats},
	{nemesisMatsFile, 16, 0, (*loader).applyNemesisMats},
	{breachesFile, 8, 0, (*loader).applyBreaches},
	{treasuresFile, 8, 0, (*loader).applyTreasures},
}

type loader struct {
	opts   Options
	cat    *Catalog
	logger *zap.Logger
}

// source is one directory of CSV files; guild 0 is the shared content.
type source struct {
	dir   string
	guild int
}

// Load reads every CSV file of the base content and the guild overlays.
// Files are read and parsed concurrently, then merged in a fixed order so
// the result does not depend on scheduling.
func Load(ctx context.Context, opts Options) (*Catalog, error) {
	start := time.Now()
	l := &loader{opts: opts, cat: newCatalog(), logger: logging.Get(logging.CategoryLoader)}

	sources, err := l.sources()
	if err != nil {
		return nil, err
	}

	results := make([][][]record, len(sources))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, src := range sources {
		results[i] = make([][]record, len(fileSpecs))
		for j, spec := range fileSpecs {
			i, j, src, spec := i, j, src, spec
			eg.Go(func() error {
				if err := egCtx.Err(); err != nil {
					return err
				}
				path := filepath.Join(src.dir, spec.name)
				recs, err := readRecords(path, spec.cols, spec.keyCol)
				if errors.Is(err, fs.ErrNotExist) {
					if src.guild == 0 {
						l.logger.Warn("content file missing", zap.String("path", path))
					}
					return nil
				}
				if err != nil {
					return err
				}
				results[i][j] = recs
				return nil
			})
		}
	}
	eg.Go(func() error { return l.loadAssets() })
	eg.Go(func() error { return l.loadMechanics() })
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}

	for i, src := range sources {
		for j, spec := range fileSpecs {
			if err := spec.apply(l, results[i][j], src.guild); err != nil {
				return nil, err
			}
		}
		if src.guild != 0 {
			logging.Loader("Guild %d content merged", src.guild)
		}
	}

	l.cat.LoadedAt = time.Now()
	l.logger.Info("content loaded",
		zap.Int("player_cards", len(l.cat.PlayerCards)),
		zap.Int("nemesis_cards", len(l.cat.NemesisCards)),
		zap.Int("mages", len(l.cat.PlayerMats)),
		zap.Int("nemeses", len(l.cat.NemesisMats)),
		zap.Int("guilds", len(sources)-1),
		zap.Duration("took", time.Since(start)))
	return l.cat, nil
}

// guildsDir resolves the overlay directory.
func (o Options) guildsDir() string {
	if o.GuildsDir == "" || filepath.IsAbs(o.GuildsDir) {
		return o.GuildsDir
	}
	return filepath.Join(o.DataDir, o.GuildsDir)
}

// Dirs returns every directory whose files feed the catalog, for watching.
// The guilds directory itself is listed so new guilds can be noticed.
func (o Options) Dirs() []string {
	dirs := []string{o.DataDir}
	if gd := o.guildsDir(); gd != "" {
		if entries, err := os.ReadDir(gd); err == nil {
			dirs = append(dirs, gd)
			for _, e := range entries {
				if _, err := strconv.Atoi(e.Name()); err == nil && e.IsDir() {
					dirs = append(dirs, filepath.Join(gd, e.Name()))
				}
			}
		}
	}
	if o.UniqueDir != "" {
		dirs = append(dirs, o.UniqueDir)
	}
	return dirs
}

func (l *loader) sources() ([]source, error) {
	if _, err := os.Stat(l.opts.DataDir); err != nil {
		return nil, fmt.Errorf("data directory: %w", err)
	}
	sources := []source{{dir: l.opts.DataDir}}

	gd := l.opts.guildsDir()
	if gd == "" {
		return sources, nil
	}
	entries, err := os.ReadDir(gd)
	if errors.Is(err, fs.ErrNotExist) {
		return sources, nil
	}
	if err != nil {
		return nil, fmt.Errorf("guilds directory: %w", err)
	}
	var guilds []int
	for _, e := range entries {
		id, err := strconv.Atoi(e.Name())
		if err != nil || !e.IsDir() || id <= 0 {
			continue
		}
		guilds = append(guilds, id)
	}
	sort.Ints(guilds)
	for _, id := range guilds {
		sources = append(sources, source{dir: filepath.Join(gd, strconv.Itoa(id)), guild: id})
	}
	return sources, nil
}

func (l *loader) loadAssets() error {
	if l.opts.AssetsDir == "" {
		return nil
	}
	entries, err := os.ReadDir(l.opts.AssetsDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("assets: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		stem, _, _ := strings.Cut(e.Name(), ".")
		l.cat.Assets[Casefold(stem)] = e.Name()
	}
	logging.LoaderDebug("Assets indexed: %d", len(l.cat.Assets))
	return nil
}

func (l *loader) loadMechanics() error {
	if l.opts.UniqueDir == "" {
		return nil
	}
	entries, err := os.ReadDir(l.opts.UniqueDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("unique mechanics: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), mechanicExt) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(l.opts.UniqueDir, e.Name()))
		if err != nil {
			return fmt.Errorf("unique mechanics: %w", err)
		}
		name := strings.TrimSuffix(e.Name(), mechanicExt)
		text := strings.ReplaceAll(string(data), "\r\n", "\n")
		l.cat.Mechanics[Casefold(name)] = Mechanic{
			Name:  name,
			Lines: strings.Split(strings.TrimRight(text, "\n"), "\n"),
		}
	}
	logging.LoaderDebug("Mechanics loaded: %d", len(l.cat.Mechanics))
	return nil
}

func (l *loader) applyBoxes(recs []record, guild int) error {
	for _, r := range recs {
		prefix, name := r.fields[0], r.fields[1]
		wave, err := r.atoi(2)
		if err != nil {
			return err
		}
		l.cat.Boxes[name] = Box{Name: name, Prefix: prefix, Wave: wave}
		if _, ok := l.cat.Numbers[prefix]; !ok {
			l.cat.Numbers[prefix] = make(map[string]map[int]NumberEntry)
		}
	}
	return nil
}

func (l *loader) applyCardTypes(recs []record, guild int) error {
	for _, r := range recs {
		l.cat.CardTypes[r.fields[0]] = r.fields[1]
	}
	return nil
}

func (l *loader) applyAbilityTypes(recs []record, guild int) error {
	for _, r := range recs {
		l.cat.AbilityTypes[r.fields[0]] = r.fields[1]
	}
	return nil
}

func (l *loader) boxPrefix(r record, box string) (string, error) {
	b, ok := l.cat.Boxes[box]
	if !ok {
		return "", r.errorf("unknown box %q", box)
	}
	return b.Prefix, nil
}

func (l *loader) applyPlayerCards(recs []record, guild int) error {
	for _, r := range recs {
		f := r.fields
		cost, err := r.atoi(2)
		if err != nil {
			return err
		}
		start, err := r.atoi(10)
		if err != nil {
			return err
		}
		end, err := r.atoi(11)
		if err != nil {
			return err
		}
		card := PlayerCard{
			Name: f[0], Type: f[1], Cost: cost,
			RawCode: f[3], Code: codeparser.Parse(f[3]),
			Special: Expand(f[4], ExpandOptions{Prefix: l.opts.Prefix}),
			Text:    Expand(f[5], ExpandOptions{}),
			Flavour: Expand(f[6], ExpandOptions{}),
			Starter: f[7], Box: f[8], Deck: f[9],
			Start: start, End: end, Guild: guild,
		}
		key := Casefold(card.Name)
		l.cat.PlayerCards[key] = append(l.cat.PlayerCards[key], card)

		prefix, err := l.boxPrefix(r, card.Box)
		if err != nil {
			return err
		}
		nums := []int{start}
		switch {
		case end != 0 && card.Starter == "":
			nums = intRange(start, end)
		case end != 0:
			nums = []int{start, end}
		}
		for _, n := range nums {
			l.cat.Numbers.add(prefix, card.Deck, n, NumberEntry{Kind: KindPlayer, Name: card.Name})
		}
	}
	return nil
}

func (l *loader) applyNemesisCards(recs []record, guild int) error {
	for _, r := range recs {
		f := r.fields
		var nums [5]int
		for i, col := range []int{2, 3, 4, 14, 15} {
			n, err := r.atoi(col)
			if err != nil {
				return err
			}
			nums[i] = n
		}
		card := NemesisCard{
			Name: f[0], Type: f[1],
			TokensHP: nums[0], Shield: nums[1], Tier: nums[2],
			Category:  f[5],
			Code:      f[6],
			Special:   Expand(f[7], ExpandOptions{Prefix: l.opts.Prefix}),
			Discard:   Expand(f[8], ExpandOptions{}),
			Immediate: Expand(f[9], ExpandOptions{}),
			Effect:    Expand(f[10], ExpandOptions{}),
			Flavour:   Expand(f[11], ExpandOptions{}),
			Box:       f[12], Deck: f[13],
			Start: nums[3], End: nums[4], Guild: guild,
		}
		key := Casefold(card.Name)
		l.cat.NemesisCards[key] = append(l.cat.NemesisCards[key], card)

		prefix, err := l.boxPrefix(r, card.Box)
		if err != nil {
			return err
		}
		span := []int{card.Start}
		if card.End != 0 {
			span = intRange(card.Start, card.End)
		}
		for _, n := range span {
			l.cat.Numbers.add(prefix, card.Deck, n, NumberEntry{Kind: KindNemesis, Name: card.Name})
		}
	}
	return nil
}

func (l *loader) applyPlayerMats(recs []record, guild int) error {
	for _, r := range recs {
		f := r.fields
		rating, err := r.atoi(2)
		if err != nil {
			return err
		}
		charges, err := r.atoi(4)
		if err != nil {
			return err
		}
		mat := PlayerMat{
			Name: f[0], Title: f[1], Rating: rating,
			Ability: Ability{
				Name: f[3], Charges: charges, Type: f[5],
				Code: f[6], Effect: Expand(f[7], ExpandOptions{}),
			},
			Special: Expand(f[8], ExpandOptions{Prefix: l.opts.Prefix}),
			Hand:    splitList(f[10]),
			Deck:    splitList(f[11]),
			Flavour: Expand(f[16], ExpandOptions{}),
			Box:     f[17],
			Guild:   guild,
		}
		positions := strings.Split(f[9], ",")
		for i := range mat.Breaches {
			slot := BreachSlot{Name: f[12+i]}
			if i < len(positions) && positions[i] != "" {
				pos, err := strconv.Atoi(positions[i])
				if err != nil {
					return r.errorf("breach position %q is not a number", positions[i])
				}
				slot.Position = pos
			}
			mat.Breaches[i] = slot
		}
		key := Casefold(mat.Name)
		l.cat.PlayerMats[key] = append(l.cat.PlayerMats[key], mat)
	}
	return nil
}

func (l *loader) applyNemesisMats(recs []record, guild int) error {
	for _, r := range recs {
		f := r.fields
		var nums [3]int
		for i, col := range []int{1, 2, 3} {
			n, err := r.atoi(col)
			if err != nil {
				return err
			}
			nums[i] = n
		}
		mat := NemesisMat{
			Name: f[0], HP: nums[0], Difficulty: nums[1], Battle: nums[2],
			Code:            f[4],
			Extra:           Expand(f[5], ExpandOptions{}),
			Unleash:         Expand(f[6], ExpandOptions{}),
			Setup:           Expand(f[7], ExpandOptions{}),
			IDSetup:         f[8],
			IDUnleash:       f[9],
			IDRules:         f[10],
			AdditionalRules: Expand(f[11], ExpandOptions{}),
			Flavour:         Expand(f[12], ExpandOptions{}),
			Side:            Expand(f[13], ExpandOptions{}),
			Box:             f[14],
			Cards:           splitList(f[15]),
			Guild:           guild,
		}
		key := Casefold(mat.Name)
		l.cat.NemesisMats[key] = append(l.cat.NemesisMats[key], mat)
	}
	return nil
}

func (l *loader) applyBreaches(recs []record, guild int) error {
	for _, r := range recs {
		f := r.fields
		var nums [5]int
		for i := range nums {
			n, err := r.atoi(i + 1)
			if err != nil {
				return err
			}
			nums[i] = n
		}
		b := Breach{
			Name: f[0], Position: nums[0], Focus: nums[1],
			Left: nums[2], Down: nums[3], Right: nums[4],
			Effect: Expand(f[6], ExpandOptions{}), Mage: f[7], Guild: guild,
		}
		key := Casefold(b.Name)
		l.cat.Breaches[key] = append(l.cat.Breaches[key], b)
	}
	return nil
}

func (l *loader) applyTreasures(recs []record, guild int) error {
	for _, r := range recs {
		f := r.fields
		number, err := r.atoi(7)
		if err != nil {
			return err
		}
		t := Treasure{
			Name: f[0], Type: f[1], Code: f[2],
			Effect:  Expand(f[3], ExpandOptions{}),
			Flavour: Expand(f[4], ExpandOptions{}),
			Box:     f[5], Deck: f[6], Number: number, Guild: guild,
		}
		key := Casefold(t.Name)
		l.cat.Treasures[key] = append(l.cat.Treasures[key], t)

		prefix, err := l.boxPrefix(r, t.Box)
		if err != nil {
			return err
		}
		kind := KindTreasure
		if t.Type == string(KindOutcast) {
			kind = KindOutcast
		}
		l.cat.Numbers.add(prefix, t.Deck, number, NumberEntry{Kind: kind, Name: t.Name})
	}
	return nil
}

func intRange(lo, hi int) []int {
	if hi < lo {
		return []int{lo}
	}
	out := make([]int, 0, hi-lo+1)
	for n := lo; n <= hi; n++ {
		out = append(out, n)
	}
	return out
}
