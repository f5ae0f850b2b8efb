package codeparser

import (
	"errors"
	"fmt"
	"strings"
)

// substitute replaces every {name} in text with its value from known.
// "{{" and "}}" are literal braces. It stops at the first name that known
// does not hold and reports it as a *MissingKeyError.
func substitute(text string, known map[string]string) (string, error) {
	var sb strings.Builder
	sb.Grow(len(text))
	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch ch {
		case '{':
			if i+1 < len(text) && text[i+1] == '{' {
				sb.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(text[i+1:], '}')
			if end < 0 {
				return "", fmt.Errorf("%w: unmatched '{' at %d", ErrMalformedTemplate, i)
			}
			name := text[i+1 : i+1+end]
			if name == "" || strings.ContainsRune(name, '{') {
				return "", fmt.Errorf("%w: bad placeholder at %d", ErrMalformedTemplate, i)
			}
			value, ok := known[name]
			if !ok {
				return "", &MissingKeyError{Key: name}
			}
			sb.WriteString(value)
			i += end + 1
		case '}':
			if i+1 < len(text) && text[i+1] == '}' {
				sb.WriteByte('}')
				i++
				continue
			}
			return "", fmt.Errorf("%w: unmatched '}' at %d", ErrMalformedTemplate, i)
		default:
			sb.WriteByte(ch)
		}
	}
	return sb.String(), nil
}

// standIn is the value used for a placeholder nothing filled in.
func standIn(key string) string {
	return "[missing " + key + "]"
}

// Resolve substitutes known into text, discovering the placeholders it uses
// as it goes: every missing name gets a stand-in and the pass is retried.
// The number of passes is bounded by the number of opening braces, so a
// template that never settles fails with ErrUnresolvedPlaceholder.
func Resolve(text string, known map[string]string) (string, error) {
	values := make(map[string]string, len(known))
	for k, v := range known {
		values[k] = v
	}
	limit := strings.Count(text, "{") + 1
	for pass := 0; pass < limit; pass++ {
		out, err := substitute(text, values)
		if err == nil {
			return out, nil
		}
		var missing *MissingKeyError
		if !errors.As(err, &missing) {
			return "", err
		}
		values[missing.Key] = standIn(missing.Key)
	}
	return "", fmt.Errorf("%w after %d passes", ErrUnresolvedPlaceholder, limit)
}

// ResolveText resolves text with no known values and embeds any failure as a
// diagnostic.
func ResolveText(text string) string {
	out, err := Resolve(text, nil)
	if err != nil {
		if errors.Is(err, ErrMalformedTemplate) {
			return diagnostic(ErrMalformedTemplate)
		}
		return diagnostic(err)
	}
	return out
}
