package fields

import (
	"hash/fnv"
	"regexp"
	"strings"
)

const (
	// MinPasses is the smallest pass ceiling applied regardless of text size.
	MinPasses = 32
	// DefaultMaxLength bounds the expanded text size.
	DefaultMaxLength = 8 << 20
)

var tagPattern = regexp.MustCompile(`\{@([A-Za-z_][A-Za-z0-9_.]*)(?::([^{}]*))?\}`)

// Lookup returns the replacement for one tag. format is empty when the tag
// has no format specifier.
type Lookup func(name, format string) (string, error)

// Resolver expands field tags with bounded fixed-point iteration.
type Resolver struct {
	maxPasses int
	maxLength int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMaxPasses fixes the pass ceiling. Zero or negative keeps the default
// of max(MinPasses, len(text)/2). Each pass resolves one level of nesting, so
// under the default a short text whose field chain is deeper than MinPasses
// fails with ErrUnresolvable even without a cycle; set a higher ceiling for
// such chains.
func WithMaxPasses(n int) Option {
	return func(r *Resolver) { r.maxPasses = n }
}

// WithMaxLength bounds the size of the expanded text.
func WithMaxLength(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxLength = n
		}
	}
}

// NewResolver creates a Resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{maxLength: DefaultMaxLength}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve expands text with the default Resolver settings.
func Resolve(text string, lookup Lookup) (string, error) {
	return NewResolver().Resolve(text, lookup)
}

// HasTags reports whether text contains at least one field tag.
func HasTags(text string) bool { return tagPattern.MatchString(text) }

// Resolve replaces every tag in text, pass after pass, until none remain.
func (r *Resolver) Resolve(text string, lookup Lookup) (string, error) {
	limit := r.passLimit(text)
	seen := map[uint64]struct{}{digest(text): {}}

	for pass := 0; ; pass++ {
		matches := tagPattern.FindAllStringSubmatchIndex(text, -1)
		if len(matches) == 0 {
			return text, nil
		}
		if pass >= limit {
			return "", unresolvable(text, matches, pass, "pass limit reached")
		}

		next, err := substitute(text, matches, lookup)
		if err != nil {
			return "", err
		}
		if len(next) > r.maxLength {
			return "", unresolvable(text, matches, pass+1, "expanded text exceeds size limit")
		}
		// A previously seen text means the expansion is cycling.
		h := digest(next)
		if _, dup := seen[h]; dup && HasTags(next) {
			return "", unresolvable(next, tagPattern.FindAllStringSubmatchIndex(next, -1), pass+1, "field references form a cycle")
		}
		seen[h] = struct{}{}
		text = next
	}
}

func (r *Resolver) passLimit(text string) int {
	if r.maxPasses > 0 {
		return r.maxPasses
	}
	return max(MinPasses, len(text)/2)
}

func substitute(text string, matches [][]int, lookup Lookup) (string, error) {
	var sb strings.Builder
	sb.Grow(len(text))
	last := 0
	for _, m := range matches {
		name := text[m[2]:m[3]]
		var format string
		if m[4] >= 0 {
			format = text[m[4]:m[5]]
		}
		value, err := lookup(name, format)
		if err != nil {
			return "", &SubstitutionError{Field: name, Format: format, Err: err}
		}
		sb.WriteString(text[last:m[0]])
		sb.WriteString(value)
		last = m[1]
	}
	sb.WriteString(text[last:])
	return sb.String(), nil
}

func unresolvable(text string, matches [][]int, passes int, reason string) *UnresolvableTemplateError {
	var names []string
	seen := make(map[string]struct{})
	for _, m := range matches {
		name := text[m[2]:m[3]]
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, name)
	}
	return &UnresolvableTemplateError{Fields: names, Passes: passes, Reason: reason}
}

func digest(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
