package content

import "strings"

// Problem is a player card whose generated text differs from the printed
// text, or whose code could not be compiled cleanly.
type Problem struct {
	Card      string
	Box       string
	Field     string // "special" or "text"
	Generated string
	Printed   string
}

// Diagnostic reports whether the generated text carries a compiler error.
func (p Problem) Diagnostic() bool {
	return strings.Contains(p.Generated, "ERROR:")
}

// Audit compiles every player card and returns the differences, ordered by
// card name.
func (f *Formatter) Audit() []Problem {
	var out []Problem
	for _, key := range sortedKeys(f.cat.PlayerCards) {
		for _, c := range f.cat.PlayerCards[key] {
			before, _ := f.compiler.RenderSpecial(c.Code, c.Name, c.Type)
			if before != "" && before != c.Special {
				out = append(out, Problem{Card: c.Name, Box: c.Box, Field: "special", Generated: before, Printed: c.Special})
			}
			if len(c.Code.Branches) == 0 {
				continue
			}
			if text := f.compiler.Render(c.Code, c.Name, c.Type); text != c.Text {
				out = append(out, Problem{Card: c.Name, Box: c.Box, Field: "text", Generated: text, Printed: c.Text})
			}
		}
	}
	return out
}
