package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lexive/internal/bot"
	"lexive/internal/config"
	"lexive/internal/logging"
	"lexive/internal/store"
)

var (
	// Global flags
	cfgPath string
	verbose bool
	guildID int

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "lexive",
	Short: "Lexive - card code compiler and rules lookup",
	Long: `Lexive compiles the compact card codes kept in the content spreadsheets
into English rules text, and answers questions about cards, mages,
nemeses and boxes.

Run "lexive chat" for an interactive session, or use one of the one-shot
commands below.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd.Name() == "chat")
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "lexive.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().IntVar(&guildID, "guild", 0, "Show content of this guild as well")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(specialCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(chatCmd)
	for _, c := range contentCmds() {
		rootCmd.AddCommand(c)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads .env and the configuration, then starts logging. The chat UI
// owns the terminal, so it only logs when a log file is configured.
func setup(interactive bool) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	c, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	base := filepath.Dir(cfgPath)
	c.DataDir = config.ResolvePath(base, c.DataDir)
	c.AssetsDir = config.ResolvePath(base, c.AssetsDir)
	c.UniqueDir = config.ResolvePath(base, c.UniqueDir)
	c.IndexPath = config.ResolvePath(base, c.IndexPath)
	c.ReportsFile = config.ResolvePath(base, c.ReportsFile)
	if verbose {
		c.Logging.Level = "debug"
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", cfgPath, err)
	}
	cfg = c

	if interactive && c.Logging.File == "" {
		logging.InitializeWith(zap.NewNop(), c.Logging)
	} else if err := logging.Initialize(c.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = logging.Get(logging.CategoryBoot)
	logging.Boot("Configuration loaded from %s", cfgPath)
	return nil
}

// newDispatcher loads the content and, when an index path is configured,
// the search index. The returned func releases the index.
func newDispatcher(ctx context.Context) (*bot.Dispatcher, func(), error) {
	var opts []bot.Option
	cleanup := func() {}
	if cfg.IndexPath != "" {
		s, err := store.Open(cfg.IndexPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open search index: %w", err)
		}
		opts = append(opts, bot.WithIndex(s))
		cleanup = func() {
			if err := s.Close(); err != nil {
				logger.Warn("failed to close search index", zap.Error(err))
			}
		}
	}

	d := bot.New(cfg, opts...)
	if err := d.Reload(ctx); err != nil {
		cleanup()
		return nil, nil, err
	}
	if idx := d.Index(); idx != nil {
		if counts, at, err := idx.Stats(ctx); err == nil {
			logger.Debug("Search index ready", zap.Any("documents", counts), zap.Time("indexed_at", at))
		}
	}
	return d, cleanup, nil
}
