package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"lexive/internal/codeparser"
)

var fixtureFiles = map[string]string{
	"boxes.csv": "\ufeff#prefix,name,wave\n" +
		"AE,Aeon's End,1\n" +
		",Legacy,3\n" +
		"O,Outcasts,4\n",
	"card_types.csv": "G,Gem\nR,Relic\nS,Spell\nA,Attack\nP,Power\nM,Minion\nO,Outcast Ability\n",
	"mage_ability_types.csv": "A,during any player's turn\n",
	"player_cards.csv": "#name,type,cost,code,special,text,flavour,starter,box,deck,start,end\n" +
		"Jade,G,2,A=2,,Gain 2$.,A green gem.,,Aeon's End,,1,3\n" +
		"Crystal,G,0,A=1,,Gain 1$.,,Brama,Aeon's End,,40,41\n" +
		"Spark,S,1,D=1,,Cast: Deal 1 damage.,,,Aeon's End,,42,\n" +
		"Amethyst Paragon,G,6,A=4,,Gain 3$.,,,Outcasts,1a,5,\n" +
		"Echo Blade,S,5,D=3;E,!Echo,Cast: Deal 3 damage.,,,Outcasts,1a,6,\n" +
		"Old Relic,R,3,,,Do something.#Then more.,,,Legacy,II,5,\n",
	"nemesis_cards.csv": "Smite,A,,,1,B,,,,,Gravehold suffers 3 damage.,,Aeon's End,,10,11\n" +
		"Haze Spewer,M,5,-1,1,B,,,,,Gravehold suffers 1 damage.,,Aeon's End,,12,\n" +
		"Night Unending,P,2,,2,Rageborne,,,Spend 7$.,,Gravehold suffers 4 damage.,,Aeon's End,,13,\n",
	"player_mats.csv": "Brama,Breach Mage Elder,2,Brink Siphon,4,A,,Any player gains 4 life.,,\"0,1,9,9\",\"40,41,42,S,S\",\"C,C,C,S,S\",,Brama's Breach,,,An elder.,Aeon's End\n",
	"nemesis_mats.csv": "Rageborne,70,3,1,,,Rageborne gains 1 fury.,Place 0 fury.,,,,Fury rules.,A raging beast.,,Aeon's End,\"13,99\"\n" +
		"Tester,0,4,2,NOEXP,,Unleash.,Setup.,More setup.,,,Rules.,,Side text,Aeon's End,\n",
	"breaches.csv": "Brama's Breach,2,2,3,4,5,Special effect.,Brama\n",
	"treasures.csv": "Fiery Torch,O,,Deal 2 damage.,,Outcasts,,7\n",
}

var guildFiles = map[string]string{
	"player_cards.csv": "Guild Gem,G,4,A=4,,Gain 4$.,,,Aeon's End,,50,\n",
}

var uniqueFiles = map[string]string{
	"Echo.lexive": "Echo spells are cast twice. See {prefix}rules\n",
	"Link.lexive": "TITLE\nLink rules\nLinked gems can be played together.\nSee {card[AE1]}.\n\nSecond block.\n",
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
}

// fixtureOptions writes a small content tree and returns options to load it.
func fixtureOptions(t *testing.T) Options {
	t.Helper()
	root := t.TempDir()
	opts := Options{
		DataDir:   filepath.Join(root, "data"),
		GuildsDir: "guilds",
		AssetsDir: filepath.Join(root, "assets"),
		UniqueDir: filepath.Join(root, "unique"),
		Prefix:    "!",
	}
	writeFiles(t, opts.DataDir, fixtureFiles)
	writeFiles(t, filepath.Join(opts.DataDir, "guilds", "123"), guildFiles)
	writeFiles(t, filepath.Join(opts.DataDir, "guilds", "notes"), map[string]string{"readme.txt": "ignored"})
	writeFiles(t, opts.AssetsDir, map[string]string{"Jade.png": "png"})
	writeFiles(t, opts.UniqueDir, uniqueFiles)
	return opts
}

func loadFixture(t *testing.T) *Catalog {
	t.Helper()
	cat, err := Load(context.Background(), fixtureOptions(t))
	require.NoError(t, err)
	return cat
}

func newTestFormatter(t *testing.T) *Formatter {
	t.Helper()
	return NewFormatter(loadFixture(t), codeparser.New(codeparser.WithPrefix("!")))
}
