package component

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// MaxIDLength bounds identifier length.
const MaxIDLength = 256

// ErrInvalidID indicates a component identifier failed validation.
var ErrInvalidID = errors.New("invalid component id")

// ID identifies a component. Values from external input go through ParseID.
type ID string

// ParseID validates s and returns it as an ID.
func ParseID(s string) (ID, error) {
	switch {
	case s == "":
		return "", fmt.Errorf("%w: empty", ErrInvalidID)
	case len(s) > MaxIDLength:
		return "", fmt.Errorf("%w: %q exceeds %d bytes", ErrInvalidID, s[:32]+"...", MaxIDLength)
	case strings.TrimSpace(s) != s:
		return "", fmt.Errorf("%w: %q has leading or trailing whitespace", ErrInvalidID, s)
	}
	for _, r := range s {
		if unicode.IsControl(r) || r == unicode.ReplacementChar {
			return "", fmt.Errorf("%w: %q contains control or invalid characters", ErrInvalidID, s)
		}
	}
	return ID(s), nil
}

// String implements fmt.Stringer.
func (id ID) String() string { return string(id) }

// IsZero reports whether id is unset.
func (id ID) IsZero() bool { return id == "" }
