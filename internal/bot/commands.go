package bot

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"lexive/internal/config"
	"lexive/internal/content"
	"lexive/internal/lookup"
)

func (d *Dispatcher) info(_ context.Context, req Request, args []string) (Reply, error) {
	arg := strings.Join(args, "")
	if arg == "" {
		return d.reply("No argument provided."), nil
	}
	if looksLikeNumber(arg) {
		return d.reply(fmt.Sprintf("Number detected. Did you want `%scard` instead?", d.cfg.Prefix)), nil
	}
	res := d.lookupContent(req.Guild, arg)
	var r Reply
	switch {
	case res.ambiguous != nil:
		r = d.reply(ambiguous(res.ambiguous))
	case len(res.messages) == 0:
		msg := "No content found matching " + strings.Join(args, " ")
		if names := d.suggest(req.Guild, arg); len(names) > 0 {
			msg += ". Did you mean: " + strings.Join(names, ", ") + "?"
		}
		r = d.reply(msg)
	default:
		r = d.reply(res.messages...)
	}
	r.Files = res.files
	return r, nil
}

// maxSuggestions bounds the names offered after a failed lookup.
const maxSuggestions = 3

// suggest returns the display names of entries close to query that guild
// can see.
func (d *Dispatcher) suggest(guild int, query string) []string {
	s := d.state.Load()
	var names []string
	for _, key := range lookup.Suggest(content.Casefold(query), s.cat.Keys(), maxSuggestions) {
		if len(s.fmt.Describe(key, guild)) == 0 {
			continue
		}
		names = append(names, s.cat.DisplayNames(key)...)
	}
	return names
}

// looksLikeNumber reports whether s mixes letters and digits and nothing
// else, the shape of a card number such as "AE12".
func looksLikeNumber(s string) bool {
	digit := false
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLetter(r):
		default:
			return false
		}
	}
	return digit
}

func (d *Dispatcher) card(_ context.Context, _ Request, args []string) (Reply, error) {
	arg := strings.ToUpper(content.Casefold(strings.Join(args, "")))
	return d.reply(d.Catalog().NumberMessage(arg, d.cfg.Prefix)), nil
}

func (d *Dispatcher) box(_ context.Context, _ Request, args []string) (Reply, error) {
	cat := d.Catalog()
	byKey := make(map[string]string)
	keys := make([]string, 0, len(cat.Boxes))
	for _, name := range cat.BoxNames() {
		k := content.Casefold(name)
		byKey[k] = name
		keys = append(keys, k)
	}
	matches := lookup.CompleteMatch(content.Casefold(strings.Join(args, "")), keys)
	switch {
	case len(matches) > 1:
		names := make([]string, len(matches))
		for i, k := range matches {
			names[i] = byKey[k]
		}
		return d.reply(ambiguous(names)), nil
	case len(matches) == 0:
		return d.reply("No match found"), nil
	}
	lines := append([]string{"```"}, cat.BoxContents(byKey[matches[0]])...)
	lines = append(lines, "```")
	return d.reply(strings.Join(lines, "\n")), nil
}

func (d *Dispatcher) search(ctx context.Context, req Request, args []string) (Reply, error) {
	pattern := strings.ToLower(strings.Join(args, " "))
	if pattern == "" {
		return d.reply("No pattern provided."), nil
	}
	names, err := d.searchNames(ctx, pattern, req.Guild)
	if err != nil {
		return Reply{}, err
	}
	if len(names) == 0 {
		return d.reply(fmt.Sprintf("Could not find anything matching pattern `%s`.", pattern)), nil
	}
	lines := make([]string, len(names))
	for i, n := range names {
		lines[i] = "- " + n
	}
	return d.reply(
		fmt.Sprintf("Found the following content for pattern `%s`:", pattern),
		strings.Join(lines, "\n"),
	), nil
}

// searchNames returns the names of the entries whose text contains pattern,
// one per entry, in catalog order.
func (d *Dispatcher) searchNames(ctx context.Context, pattern string, guild int) ([]string, error) {
	if d.index != nil {
		hits, err := d.index.Search(ctx, pattern, guild)
		if err != nil {
			return nil, fmt.Errorf("search failed: %w", err)
		}
		names := make([]string, len(hits))
		for i, h := range hits {
			names[i] = h.Name
		}
		return names, nil
	}

	type entry struct {
		kind, name string
		guild      int
	}
	seen := make(map[entry]bool)
	var names []string
	for _, doc := range d.Catalog().Documents() {
		if doc.Guild != 0 && doc.Guild != guild {
			continue
		}
		e := entry{doc.Kind, doc.Name, doc.Guild}
		if seen[e] || !strings.Contains(strings.ToLower(doc.Text), pattern) {
			continue
		}
		seen[e] = true
		names = append(names, doc.Name)
	}
	return names, nil
}

func (d *Dispatcher) unique(_ context.Context, _ Request, _ []string) (Reply, error) {
	cat := d.Catalog()
	names := make([]string, 0, len(cat.Mechanics))
	for _, m := range cat.Mechanics {
		names = append(names, m.Name)
	}
	sort.Strings(names)
	return d.reply("```\nThe unique mechanics that I know about are as follow. " +
		fmt.Sprintf("You may prefix them with %s to ask me about them.\n- ", d.cfg.Prefix) +
		strings.Join(names, "\n- ") + "\n```"), nil
}

func (d *Dispatcher) reload(ctx context.Context, _ Request, _ []string) (Reply, error) {
	if err := d.Reload(ctx); err != nil {
		return Reply{}, err
	}
	return d.reply("Reloaded data."), nil
}

func (d *Dispatcher) issues(_ context.Context, _ Request, _ []string) (Reply, error) {
	msg := fmt.Sprintf("* Known issues and to-do list *\n\n%s\n\nReport all other issues using `%sreport <issue>`",
		d.cfg.Links.Issues, d.cfg.Prefix)
	return d.reply(msg), nil
}

func (d *Dispatcher) link(get func(config.LinksConfig) string) handler {
	return func(context.Context, Request, []string) (Reply, error) {
		return d.reply(get(d.cfg.Links)), nil
	}
}

func (d *Dispatcher) listCommands(_ context.Context, _ Request, _ []string) (Reply, error) {
	return d.reply("```\nCommands:\n- " + strings.Join(d.Commands(), "\n- ") + "```"), nil
}
