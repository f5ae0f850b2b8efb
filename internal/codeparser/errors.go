package codeparser

import (
	"errors"
	"fmt"
)

// Content errors. They are recovered locally and rendered inline; callers
// only see them through errors.Is on the values returned by the lower-level
// helpers.
var (
	ErrMalformedRange        = errors.New("malformed range")
	ErrMalformedNumber       = errors.New("malformed number")
	ErrUnknownToken          = errors.New("unrecognized token")
	ErrUnknownModifier       = errors.New("unrecognized modifier")
	ErrUnresolvedPlaceholder = errors.New("unresolved placeholder")
	ErrMalformedTemplate     = errors.New("malformed code")
)

// Registry construction errors. These are schema bugs and are fatal at
// registry-build time.
var (
	ErrDuplicateLetter = errors.New("letter registered twice")
	ErrDuplicateKind   = errors.New("action kind registered under two letters")
	ErrInvalidLetter   = errors.New("registry letter must be a single uppercase letter")
)

// MissingKeyError is returned by substitute when the text references a
// placeholder that has no value yet.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("missing placeholder %q", e.Key)
}

// diagnostic renders an error as the inline text shown to readers of the card.
func diagnostic(err error) string {
	return "ERROR: " + err.Error()
}
