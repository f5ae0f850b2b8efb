// Package codeparser compiles compact card codes such as "A=3,&D=+2" into
// English rules text.
//
// The pipeline is one-way: Parse splits the raw code into OR-branches and
// extra tokens, Itemize folds each branch into Contexts, Context.Format renders
// each clause, and Resolve fills the placeholders that are only known once all
// clauses are combined. Content errors never panic; they surface as inline
// "ERROR: ..." text in the rendered output.
package codeparser

import "strings"

const (
	segmentSep = ";"
	branchSep  = "/"
	tokenSep   = ","
	valueSep   = "="
)

// Token is a single key/value pair of a code. Value is empty when the raw
// token carried no "=".
type Token struct {
	Key   string
	Value string
}

// String re-joins the token with its delimiter. Empty values are written as
// the bare key.
func (t Token) String() string {
	if t.Value == "" {
		return t.Key
	}
	return t.Key + valueSep + t.Value
}

// ParsedCode is the tokenizer output for one content row. It is immutable and
// safe to cache alongside the row.
type ParsedCode struct {
	// Branches holds the OR-branches of the first segment, each an ordered
	// token list.
	Branches [][]Token
	// Extras holds the card-level tokens of the remaining segments.
	Extras []Token
}

// IsZero reports whether the code had no content at all.
func (p ParsedCode) IsZero() bool {
	return len(p.Branches) == 0 && len(p.Extras) == 0
}

// String rebuilds the code from its tokens.
func (p ParsedCode) String() string {
	var sb strings.Builder
	for i, branch := range p.Branches {
		if i > 0 {
			sb.WriteString(branchSep)
		}
		writeTokens(&sb, branch, tokenSep)
	}
	for _, extra := range p.Extras {
		sb.WriteString(segmentSep)
		sb.WriteString(extra.String())
	}
	return sb.String()
}

func writeTokens(sb *strings.Builder, tokens []Token, sep string) {
	for i, tok := range tokens {
		if i > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(tok.String())
	}
}

// Parse splits a raw code into branches and extras. It never fails: malformed
// segments come out as keys with empty values and are reported downstream.
func Parse(code string) ParsedCode {
	var parsed ParsedCode
	segments := strings.Split(code, segmentSep)
	if sub := segments[0]; sub != "" {
		for _, branch := range strings.Split(sub, branchSep) {
			parsed.Branches = append(parsed.Branches, splitTokens(branch, tokenSep, valueSep))
		}
	}
	for _, seg := range segments[1:] {
		parsed.Extras = append(parsed.Extras, splitToken(seg, valueSep))
	}
	return parsed
}

// parseNested reads the branch syntax used inside a "?" extra token, where
// "=" is already taken by the outer segment and ":" separates key and value.
func parseNested(value string) [][]Token {
	var branches [][]Token
	for _, branch := range strings.Split(value, branchSep) {
		branches = append(branches, splitTokens(branch, tokenSep, ":"))
	}
	return branches
}

func splitTokens(branch, sep, kv string) []Token {
	parts := strings.Split(branch, sep)
	tokens := make([]Token, 0, len(parts))
	for _, part := range parts {
		tokens = append(tokens, splitToken(part, kv))
	}
	return tokens
}

func splitToken(part, kv string) Token {
	key, value, _ := strings.Cut(part, kv)
	return Token{Key: key, Value: value}
}
