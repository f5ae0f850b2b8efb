package codeparser

import (
	"strings"

	"go.uber.org/zap"

	"lexive/internal/logging"
)

// orSeparator is the line placed between OR-branches.
const orSeparator = "OR"

// Compiler turns parsed codes into rules text. It holds only read-only state
// and is safe for concurrent use.
type Compiler struct {
	registry *Registry
	prefix   string
	logger   *zap.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithRegistry replaces the default letter table.
func WithRegistry(r *Registry) Option {
	return func(c *Compiler) {
		if r != nil {
			c.registry = r
		}
	}
}

// WithPrefix sets the command prefix written before keywords such as
// Silence, Dual, Echo and Link.
func WithPrefix(prefix string) Option {
	return func(c *Compiler) {
		c.prefix = prefix
	}
}

// WithLogger sets the logger diagnostics are reported to.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Compiler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New returns a compiler using the default registry.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		registry: DefaultRegistry(),
		logger:   logging.Get(logging.CategoryCompiler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Prefix returns the configured keyword prefix.
func (c *Compiler) Prefix() string {
	return c.prefix
}

// FormatEffect renders every branch, one per line, with an "OR" line between
// them. The result may still hold placeholders; see Render.
func (c *Compiler) FormatEffect(branches [][]Token, name, cardType string, autoFormat bool) string {
	lines := make([]string, 0, 2*len(branches))
	for _, clauses := range c.Itemize(branches, name, cardType) {
		if len(lines) > 0 {
			lines = append(lines, orSeparator)
		}
		parts := make([]string, 0, len(clauses))
		for i := range clauses {
			if text := clauses[i].Format(autoFormat); text != "" {
				parts = append(parts, text)
			}
		}
		lines = append(lines, strings.Join(parts, " "))
	}
	return strings.Join(lines, "\n")
}

// Render compiles the main effect of a card.
func (c *Compiler) Render(parsed ParsedCode, name, cardType string) string {
	return ResolveText(c.FormatEffect(parsed.Branches, name, cardType, true))
}

// RenderSpecial compiles the card-level extra tokens into the text printed
// before and after the main effect.
func (c *Compiler) RenderSpecial(parsed ParsedCode, name, cardType string) (before, after string) {
	b, a := c.formatSpecial(parsed.Extras, name, cardType)
	return resolveLines(b), resolveLines(a)
}

// RenderAll returns the special text and the main effect joined the way they
// are printed on the card.
func (c *Compiler) RenderAll(parsed ParsedCode, name, cardType string) string {
	before, after := c.RenderSpecial(parsed, name, cardType)
	var parts []string
	for _, s := range []string{before, c.Render(parsed, name, cardType), after} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

func resolveLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return ResolveText(strings.Join(lines, "\n"))
}
