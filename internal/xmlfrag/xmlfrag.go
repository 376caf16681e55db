// Package xmlfrag extracts top-level elements of one name from an XML
// fragment (text that may have several roots or surrounding character data),
// returning the remaining text and each extracted element's inner XML.
package xmlfrag

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	wrapOpen  = "<xmlfrag-root>"
	wrapClose = "</xmlfrag-root>"
)

// Fragment is one extracted element.
type Fragment struct {
	// Key is the value of the key attribute.
	Key string
	// Inner is the raw inner XML of the element.
	Inner string
}

// Result is the outcome of Extract.
type Result struct {
	// Rest is the input with every extracted element removed.
	Rest      string
	Fragments []Fragment
}

type rawElement struct {
	Inner string `xml:",innerxml"`
}

// Extract removes every top-level <element keyAttr="..."> from text. Nested
// occurrences are left in place. An extracted element without keyAttr is an
// error. Text that never opens element is returned unchanged and need not
// be well-formed XML.
func Extract(text, element, keyAttr string) (Result, error) {
	if !strings.Contains(text, "<"+element) {
		return Result{Rest: text}, nil
	}
	wrapped := wrapOpen + text + wrapClose
	dec := xml.NewDecoder(strings.NewReader(wrapped))
	dec.Entity = xml.HTMLEntity

	type cut struct{ start, end int }
	var (
		cuts   []cut
		res    Result
		depth  int
		prefix = int64(len(wrapOpen))
	)

	for {
		off := dec.InputOffset()
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("malformed XML fragment: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth != 2 || t.Name.Local != element {
				continue
			}
			key, ok := attr(t, keyAttr)
			if !ok {
				return Result{}, fmt.Errorf("<%s> element at offset %d has no %s attribute", element, off-prefix, keyAttr)
			}
			var raw rawElement
			if err := dec.DecodeElement(&raw, &t); err != nil {
				return Result{}, fmt.Errorf("malformed <%s %s=%q> element: %w", element, keyAttr, key, err)
			}
			depth--
			cuts = append(cuts, cut{start: int(off - prefix), end: int(dec.InputOffset() - prefix)})
			res.Fragments = append(res.Fragments, Fragment{Key: key, Inner: raw.Inner})
		case xml.EndElement:
			depth--
		}
	}

	var sb strings.Builder
	last := 0
	for _, c := range cuts {
		sb.WriteString(text[last:c.start])
		last = c.end
	}
	sb.WriteString(text[last:])
	res.Rest = sb.String()
	return res, nil
}

func attr(se xml.StartElement, name string) (string, bool) {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}
