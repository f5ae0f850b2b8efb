package bot

import (
	"context"
	"errors"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spf13/pflag"

	"lexive/internal/randomizer"
)

// randomFlags parses the random command arguments over the configured
// defaults. usage is set when help was asked for.
func (d *Dispatcher) randomFlags(args []string) (opts randomizer.Options, usage string, err error) {
	opts = randomizer.OptionsFromConfig(d.cfg.Random)
	fs := pflag.NewFlagSet("random", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false

	help := fs.BoolP("help", "h", false, "Prints this help message")
	fs.IntVarP(&opts.Players, "player-count", "p", opts.Players, "How many mages are going to play")
	fs.IntVarP(&opts.Gems, "gem-count", "g", opts.Gems, "How many gems to include in the market")
	fs.BoolVarP(&opts.ForceCheapGem, "force-cheap-gem", "c", opts.ForceCheapGem,
		"If set and --gem-count > 0, forces at least one gem costing at most 3")
	fs.IntVarP(&opts.Relics, "relic-count", "r", opts.Relics, "How many relics to include in the market")
	fs.IntVarP(&opts.Spells, "spell-count", "s", opts.Spells, "How many spells to include in the market")
	fs.IntVarP(&opts.MinDifficulty, "lowest-difficulty", "d", opts.MinDifficulty, "The lowest nemesis difficulty to allow")
	fs.IntVarP(&opts.MaxDifficulty, "highest-difficulty", "D", opts.MaxDifficulty, "The highest nemesis difficulty to allow")
	fs.IntVarP(&opts.MinRating, "minimum-rating", "m", opts.MinRating, "The minimum mage complexity rating to allow")
	fs.IntVarP(&opts.MaxRating, "maximum-rating", "M", opts.MaxRating, "The maximum complexity rating to allow")
	fs.CountVarP(&opts.Verbose, "verbose", "v", "Turn on verbose output (up to -vvv)")

	if err := fs.Parse(args); err != nil {
		return opts, "", err
	}
	if *help {
		return opts, "```\nUsage of random:\n" + fs.FlagUsages() + "```", nil
	}
	return opts, "", opts.Validate()
}

func (d *Dispatcher) random(_ context.Context, req Request, args []string) (Reply, error) {
	opts, usage, err := d.randomFlags(args)
	if err != nil {
		return d.reply(err.Error()), nil
	}
	if usage != "" {
		return d.reply(usage), nil
	}
	opts.Guild = req.Guild

	b, err := randomizer.New(d.Catalog(), d.seed()).Battle(opts)
	if errors.Is(err, randomizer.ErrNoNemesis) || errors.Is(err, randomizer.ErrNotEnoughMages) ||
		errors.Is(err, randomizer.ErrNotEnoughMarket) {
		return d.reply(sentence(err.Error())), nil
	}
	if err != nil {
		return Reply{}, err
	}
	msgs := append(append([]string{}, b.Trace...), strings.Join(b.Lines(), "\n"))
	return d.reply(msgs...), nil
}

// sentence capitalizes the first letter of s.
func sentence(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}
