package fields

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnresolvable matches any *UnresolvableTemplateError.
	ErrUnresolvable = errors.New("unresolvable template")
	// ErrUnknownField is returned by Fields.Lookup for an undeclared field.
	ErrUnknownField = errors.New("unknown field")
	// ErrUnknownFormat is returned for a format specifier no formatter handles.
	ErrUnknownFormat = errors.New("unknown format specifier")
)

// SubstitutionError reports a lookup failure for one tag. It aborts the
// whole resolution.
type SubstitutionError struct {
	Field  string
	Format string
	Err    error
}

func (e *SubstitutionError) Error() string {
	tag := "{@" + e.Field
	if e.Format != "" {
		tag += ":" + e.Format
	}
	tag += "}"
	return fmt.Sprintf("field substitution failed for %s: %v", tag, e.Err)
}

func (e *SubstitutionError) Unwrap() error { return e.Err }

// UnresolvableTemplateError reports that tags were still present when a
// resolution bound was hit.
type UnresolvableTemplateError struct {
	// Fields lists the distinct tag names left in the text.
	Fields []string
	Passes int
	Reason string
}

func (e *UnresolvableTemplateError) Error() string {
	return fmt.Sprintf("unresolvable template after %d passes (%s); remaining fields: %s",
		e.Passes, e.Reason, strings.Join(e.Fields, ", "))
}

// Is makes errors.Is(err, ErrUnresolvable) match.
func (e *UnresolvableTemplateError) Is(target error) bool { return target == ErrUnresolvable }
