package fields

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"maps"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Func computes a field value for a format specifier.
type Func func(format string) (string, error)

// Fields is a set of named field values. Names are matched
// case-insensitively using Unicode case folding.
type Fields struct {
	values map[string]Func
	names  map[string]string // folded -> declared name
}

// NewFields creates a field set from static values.
func NewFields(values map[string]string) *Fields {
	f := &Fields{values: make(map[string]Func), names: make(map[string]string)}
	for name, v := range values {
		f.Set(name, v)
	}
	return f
}

// Set declares a static field. Static values accept the formats understood
// by ApplyFormat.
func (f *Fields) Set(name, value string) *Fields {
	return f.SetFunc(name, func(format string) (string, error) {
		return ApplyFormat(value, format)
	})
}

// SetFunc declares a computed field.
func (f *Fields) SetFunc(name string, fn Func) *Fields {
	key := fold(name)
	f.values[key] = fn
	f.names[key] = name
	return f
}

// With returns a copy of f with values layered on top.
func (f *Fields) With(values map[string]string) *Fields {
	out := &Fields{values: maps.Clone(f.values), names: maps.Clone(f.names)}
	for name, v := range values {
		out.Set(name, v)
	}
	return out
}

// Has reports whether name is declared.
func (f *Fields) Has(name string) bool {
	_, ok := f.values[fold(name)]
	return ok
}

// Names returns the declared field names in sorted order.
func (f *Fields) Names() []string {
	return slices.Sorted(maps.Values(f.names))
}

// Lookup implements the Lookup contract for this field set.
func (f *Fields) Lookup(name, format string) (string, error) {
	fn, ok := f.values[fold(name)]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownField, name)
	}
	return fn(format)
}

// ApplyFormat applies a format specifier to a static value. Supported
// specifiers (case-insensitive): upper, lower, title, trim, xml.
func ApplyFormat(value, format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "":
		return value, nil
	case "upper":
		return cases.Upper(language.Und).String(value), nil
	case "lower":
		return cases.Lower(language.Und).String(value), nil
	case "title":
		return cases.Title(language.Und).String(value), nil
	case "trim":
		return strings.TrimSpace(value), nil
	case "xml":
		var buf bytes.Buffer
		if err := xml.EscapeText(&buf, []byte(value)); err != nil {
			return "", err
		}
		return buf.String(), nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
}

// fold normalizes a field name for case-insensitive matching. A new Caser
// is created per call because Casers are not safe for concurrent use.
func fold(name string) string {
	return cases.Fold().String(name)
}
