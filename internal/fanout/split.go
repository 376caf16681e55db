package fanout

import (
	"slices"

	"git.home.luguber.info/inful/pipemerge/internal/xmlfrag"
)

const (
	fragmentElement = "helpOutput"
	fragmentKeyAttr = "format"
)

// Split is a configuration text with its format fragments extracted.
type Split struct {
	// Generic is the text with every fragment removed.
	Generic   string
	fragments map[string]string
	formats   []string
}

// SplitByFormat extracts every top-level format fragment from text.
// Fragments declared more than once for the same format are concatenated in
// document order.
func SplitByFormat(text string) (Split, error) {
	res, err := xmlfrag.Extract(text, fragmentElement, fragmentKeyAttr)
	if err != nil {
		return Split{}, err
	}
	s := Split{Generic: res.Rest, fragments: make(map[string]string, len(res.Fragments))}
	for _, f := range res.Fragments {
		if _, ok := s.fragments[f.Key]; !ok {
			s.formats = append(s.formats, f.Key)
		}
		s.fragments[f.Key] += f.Inner
	}
	return s, nil
}

// HasFragments reports whether any fragment was extracted.
func (s Split) HasFragments() bool { return len(s.formats) > 0 }

// Formats returns the fragment formats in order of first appearance.
func (s Split) Formats() []string { return slices.Clone(s.formats) }

// Fragment returns the fragment content for format.
func (s Split) Fragment(format string) (string, bool) {
	f, ok := s.fragments[format]
	return f, ok
}

// For returns the generic text followed by the fragment for format, or the
// generic text alone when format has no fragment.
func (s Split) For(format string) string {
	return s.Generic + s.fragments[format]
}
