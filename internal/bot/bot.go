// Package bot answers chat commands against the loaded content. It knows
// nothing about any chat platform: callers turn incoming messages into a
// Request and send the returned Reply.
package bot

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"lexive/internal/chunk"
	"lexive/internal/codeparser"
	"lexive/internal/config"
	"lexive/internal/content"
	"lexive/internal/logging"
	"lexive/internal/lookup"
	"lexive/internal/store"
)

// ErrNotLoaded is returned when a request arrives before the first Reload.
var ErrNotLoaded = errors.New("content not loaded")

// Request is one incoming chat message.
type Request struct {
	Content string
	Guild   int // 0 outside of a guild
	Author  string
	Channel string
	Direct  bool // direct messages need no prefix
	Owner   bool // only the owner may reload
}

// Reply holds the messages to send back, already cut to the chunk limit,
// and the asset files to attach.
type Reply struct {
	Messages []string
	Files    []string
}

// Empty reports whether there is nothing to send.
func (r Reply) Empty() bool {
	return len(r.Messages) == 0 && len(r.Files) == 0
}

type handler func(ctx context.Context, req Request, args []string) (Reply, error)

// snapshot is swapped whole on reload so requests never see a mix of old
// and new content.
type snapshot struct {
	cat *content.Catalog
	fmt *content.Formatter
}

// Dispatcher routes requests to commands and content lookups.
type Dispatcher struct {
	cfg      *config.Config
	compiler *codeparser.Compiler
	opts     content.Options
	index    *store.IndexStore
	seed     func() int64

	state    atomic.Pointer[snapshot]
	commands map[string]handler
	ownerOf  map[string]bool

	reportMu sync.Mutex
	logger   *zap.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithIndex makes search use the SQLite index, which Reload keeps current.
func WithIndex(s *store.IndexStore) Option {
	return func(d *Dispatcher) { d.index = s }
}

// WithSeed sets the randomizer seed source.
func WithSeed(seed func() int64) Option {
	return func(d *Dispatcher) { d.seed = seed }
}

// WithContentOptions overrides the content locations derived from the config.
func WithContentOptions(opts content.Options) Option {
	return func(d *Dispatcher) { d.opts = opts }
}

// ContentOptions returns the content locations named by cfg.
func ContentOptions(cfg *config.Config) content.Options {
	return content.Options{
		DataDir:   cfg.DataDir,
		GuildsDir: cfg.GuildsDir,
		AssetsDir: cfg.AssetsDir,
		UniqueDir: cfg.UniqueDir,
		Prefix:    cfg.Prefix,
	}
}

// New creates a Dispatcher. Call Reload before handling requests.
func New(cfg *config.Config, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		cfg:      cfg,
		compiler: codeparser.New(codeparser.WithPrefix(cfg.Prefix)),
		opts:     ContentOptions(cfg),
		seed:     func() int64 { return time.Now().UnixNano() },
		logger:   logging.Get(logging.CategoryBot),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.commands = map[string]handler{
		"info":     d.info,
		"card":     d.card,
		"box":      d.box,
		"search":   d.search,
		"unique":   d.unique,
		"random":   d.random,
		"reload":   d.reload,
		"issues":   d.issues,
		"github":   d.link(func(l config.LinksConfig) string { return l.GitHub }),
		"faq":      d.link(func(l config.LinksConfig) string { return l.FAQ }),
		"wiki":     d.link(func(l config.LinksConfig) string { return l.Wiki }),
		"commands": d.listCommands,
	}
	d.ownerOf = map[string]bool{"reload": true}
	return d
}

// Reload loads the content again, reindexes it and swaps it in. On error
// the previous content stays in place.
func (d *Dispatcher) Reload(ctx context.Context) error {
	cat, err := content.Load(ctx, d.opts)
	if err != nil {
		return fmt.Errorf("failed to load content: %w", err)
	}
	if d.index != nil {
		n, err := d.index.Index(ctx, cat.Documents())
		if err != nil {
			return fmt.Errorf("failed to index content: %w", err)
		}
		logging.Bot("Indexed %d documents", n)
	}
	d.state.Store(&snapshot{cat: cat, fmt: content.NewFormatter(cat, d.compiler)})
	return nil
}

// WatchDirs lists the directories whose changes call for a Reload.
func (d *Dispatcher) WatchDirs() []string {
	return d.opts.Dirs()
}

// Catalog returns the current catalog, or nil before the first Reload.
func (d *Dispatcher) Catalog() *content.Catalog {
	if s := d.state.Load(); s != nil {
		return s.cat
	}
	return nil
}

// Formatter returns the current formatter, or nil before the first Reload.
func (d *Dispatcher) Formatter() *content.Formatter {
	if s := d.state.Load(); s != nil {
		return s.fmt
	}
	return nil
}

// Index returns the search index, or nil when search scans the catalog.
func (d *Dispatcher) Index() *store.IndexStore {
	return d.index
}

// Compiler returns the card code compiler used for all content.
func (d *Dispatcher) Compiler() *codeparser.Compiler {
	return d.compiler
}

// Commands returns the public command names, sorted.
func (d *Dispatcher) Commands() []string {
	names := make([]string, 0, len(d.commands))
	for name := range d.commands {
		if !d.ownerOf[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (d *Dispatcher) commandNames() []string {
	names := make([]string, 0, len(d.commands))
	for name := range d.commands {
		names = append(names, name)
	}
	return names
}

// Handle answers one chat message. Messages that are not addressed to the
// bot, and lookups that find nothing, get an empty Reply.
func (d *Dispatcher) Handle(ctx context.Context, req Request) (Reply, error) {
	text := req.Content
	if !strings.HasPrefix(text, d.cfg.Prefix) && !req.Direct {
		return Reply{}, nil
	}
	text = strings.TrimLeft(text, d.cfg.Prefix)
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return Reply{}, nil
	}
	if d.state.Load() == nil {
		return Reply{}, ErrNotLoaded
	}

	name := strings.ToLower(fields[0])
	if name == "report" {
		return d.report(ctx, req, fields[1:])
	}
	if matches := lookup.CompleteMatch(name, d.commandNames()); len(matches) == 1 {
		reply, err := d.Run(ctx, matches[0], req, fields[1:])
		if err != nil {
			d.autoReport(req, err)
		}
		return reply, err
	}

	d.logger.Debug("content request", zap.String("content", text), zap.Int("guild", req.Guild))
	res := d.lookupContent(req.Guild, text)
	switch {
	case res.ambiguous != nil:
		return d.reply(ambiguous(res.ambiguous)), nil
	case len(res.messages) > 0:
		r := d.reply(res.messages...)
		r.Files = res.files
		return r, nil
	}
	return Reply{}, nil
}

// Run executes a command by its full name.
func (d *Dispatcher) Run(ctx context.Context, name string, req Request, args []string) (Reply, error) {
	h, ok := d.commands[name]
	if !ok {
		return Reply{}, fmt.Errorf("unknown command %q", name)
	}
	if d.ownerOf[name] && !req.Owner {
		logging.Bot("Ignoring %s from non-owner %s", name, req.Author)
		return Reply{}, nil
	}
	if d.state.Load() == nil && name != "reload" {
		return Reply{}, ErrNotLoaded
	}
	d.logger.Info("command", zap.String("name", name), zap.Strings("args", args),
		zap.String("author", req.Author), zap.Int("guild", req.Guild))
	return h(ctx, req, args)
}

// reply cuts each message to the configured chunk limit.
func (d *Dispatcher) reply(messages ...string) Reply {
	var out []string
	for _, m := range messages {
		out = append(out, chunk.Split(m, d.cfg.ChunkLimit)...)
	}
	return Reply{Messages: out}
}

func ambiguous(names []string) string {
	return "Ambiguous value. Possible matches: " + strings.Join(names, ", ")
}

type lookupResult struct {
	messages  []string
	files     []string
	ambiguous []string // display names when there are too many matches
}

// lookupContent finds every catalog entry matching query. A leading chat
// mention is kept and sent first.
func (d *Dispatcher) lookupContent(guild int, query string) lookupResult {
	s := d.state.Load()
	query, mention := lookup.SplitMention(query)
	res := lookup.Find(content.Casefold(query), s.cat.Keys(), d.cfg.MaxDupes)

	var out lookupResult
	if res.Ambiguous {
		seen := make(map[string]bool)
		out.ambiguous = []string{}
		for _, key := range res.Keys {
			for _, n := range s.cat.DisplayNames(key) {
				if !seen[n] {
					seen[n] = true
					out.ambiguous = append(out.ambiguous, n)
				}
			}
		}
		return out
	}

	for _, key := range res.Keys {
		for _, m := range s.fmt.Describe(key, guild) {
			out.messages = append(out.messages, m.String())
		}
		if asset, ok := s.cat.Assets[key]; ok {
			out.files = append(out.files, filepath.Join(d.opts.AssetsDir, asset))
		}
	}
	if len(out.messages) > 0 && mention != "" {
		out.messages = append([]string{mention}, out.messages...)
	}
	return out
}
