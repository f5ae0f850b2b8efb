package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all lexive configuration.
type Config struct {
	// Core settings
	Name   string `yaml:"name"`
	Prefix string `yaml:"prefix"` // command prefix, also written before Dual/Echo/Link/Silence

	// Content locations
	DataDir   string `yaml:"data_dir"`
	GuildsDir string `yaml:"guilds_dir"`
	AssetsDir string `yaml:"assets_dir"`
	UniqueDir string `yaml:"unique_dir"`

	// Lookup and output
	MaxDupes   int `yaml:"max_dupes"`   // more matches than this => ambiguous
	ChunkLimit int `yaml:"chunk_limit"` // max characters per message

	// Search index (SQLite). ":memory:" keeps it in RAM.
	IndexPath string `yaml:"index_path"`

	// Reports appended by the report command
	ReportsFile string `yaml:"reports_file"`

	Links   LinksConfig   `yaml:"links"`
	Logging LoggingConfig `yaml:"logging"`
	Random  RandomConfig  `yaml:"random"`
	Watch   WatchConfig   `yaml:"watch"`
}

// LinksConfig holds the URLs returned by the informational commands.
type LinksConfig struct {
	GitHub string `yaml:"github"`
	Issues string `yaml:"issues"`
	FAQ    string `yaml:"faq"`
	Wiki   string `yaml:"wiki"`
}

// RandomConfig holds the randomizer defaults.
type RandomConfig struct {
	Players       int  `yaml:"players"`
	Gems          int  `yaml:"gems"`
	Relics        int  `yaml:"relics"`
	Spells        int  `yaml:"spells"`
	ForceCheapGem bool `yaml:"force_cheap_gem"`
	MinDifficulty int  `yaml:"min_difficulty"`
	MaxDifficulty int  `yaml:"max_difficulty"`
	MinRating     int  `yaml:"min_rating"`
	MaxRating     int  `yaml:"max_rating"`
}

// WatchConfig configures catalog hot reload.
type WatchConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Debounce string `yaml:"debounce"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:   "lexive",
		Prefix: "!",

		DataDir:   "data",
		GuildsDir: "guilds",
		AssetsDir: "assets",
		UniqueDir: "unique",

		MaxDupes:   5,
		ChunkLimit: 1800,

		IndexPath:   ":memory:",
		ReportsFile: "reports.txt",

		Links: LinksConfig{
			GitHub: "https://github.com/Vgr255/Lexive",
			Issues: "https://github.com/Vgr255/Lexive/issues",
			FAQ:    "https://www.querki.net/u/aefaq/aeons-end-faq",
			Wiki:   "https://aeonsend.fandom.com/",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},

		Random: RandomConfig{
			Players:       2,
			Gems:          3,
			Relics:        2,
			Spells:        4,
			ForceCheapGem: false,
			MinDifficulty: 1,
			MaxDifficulty: 10,
			MinRating:     1,
			MaxRating:     10,
		},

		Watch: WatchConfig{
			Enabled:  true,
			Debounce: "500ms",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Defaults, still subject to the environment
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if prefix := os.Getenv("LEXIVE_PREFIX"); prefix != "" {
		c.Prefix = prefix
	}
	if dir := os.Getenv("LEXIVE_DATA_DIR"); dir != "" {
		c.DataDir = dir
	}
	if level := os.Getenv("LEXIVE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if path := os.Getenv("LEXIVE_INDEX"); path != "" {
		c.IndexPath = path
	}
	if v := os.Getenv("LEXIVE_MAX_DUPES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxDupes = n
		}
	}
}

// GetDebounce returns the watch debounce as a duration.
func (c *Config) GetDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}

// MaxChunkLimit is the hard message size of the chat platforms we target.
const MaxChunkLimit = 2000

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Prefix == "" {
		return fmt.Errorf("prefix must not be empty")
	}
	if c.ChunkLimit <= 0 || c.ChunkLimit > MaxChunkLimit {
		return fmt.Errorf("chunk_limit must be between 1 and %d, got %d", MaxChunkLimit, c.ChunkLimit)
	}
	if c.MaxDupes < 1 {
		return fmt.Errorf("max_dupes must be at least 1, got %d", c.MaxDupes)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if err := c.Random.validate(); err != nil {
		return fmt.Errorf("random: %w", err)
	}
	if !validLevel(c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLevels)
	}
	return nil
}

func (r RandomConfig) validate() error {
	if r.Players < 1 || r.Players > 4 {
		return fmt.Errorf("players must be between 1 and 4, got %d", r.Players)
	}
	if r.Gems < 0 || r.Relics < 0 || r.Spells < 0 || r.Gems+r.Relics+r.Spells > 9 {
		return fmt.Errorf("market must hold between 0 and 9 cards")
	}
	if r.MinDifficulty > r.MaxDifficulty {
		return fmt.Errorf("min_difficulty %d exceeds max_difficulty %d", r.MinDifficulty, r.MaxDifficulty)
	}
	if r.MinRating > r.MaxRating {
		return fmt.Errorf("min_rating %d exceeds max_rating %d", r.MinRating, r.MaxRating)
	}
	return nil
}

// ResolvePath joins a configured directory onto base unless it is absolute.
func ResolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) || p == ":memory:" {
		return p
	}
	return filepath.Join(base, p)
}
