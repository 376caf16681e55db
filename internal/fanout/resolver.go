package fanout

import (
	"fmt"

	"git.home.luguber.info/inful/pipemerge/internal/component"
	"git.home.luguber.info/inful/pipemerge/internal/pipeline"
)

// NoticeKind classifies a recoverable fan-out outcome.
type NoticeKind string

const (
	// NoticeFragmentMissing means a single-format pipeline got a component
	// with fragments but none for the active format. The component is skipped.
	NoticeFragmentMissing NoticeKind = "format_fragment_missing"
	// NoticeUnusedFragment means a fragment names a format the pipeline does
	// not produce. The fragment is dropped.
	NoticeUnusedFragment NoticeKind = "unused_format_fragment"
)

// Notice reports a recoverable fan-out outcome.
type Notice struct {
	Kind    NoticeKind
	Format  string
	Message string
}

// Merger merges resolved component text into one sequence.
type Merger interface {
	MergeComponent(seq *pipeline.Sequence, id component.ID, text string) error
}

// Resolver applies the fan-out policy for one document.
type Resolver struct {
	// ActiveFormat is the output format of a pipeline without a
	// multi-format container.
	ActiveFormat string
}

// Merge merges text for id into doc through m:
//   - text without fragments is merged once into the root sequence;
//   - with a container, every branch receives the generic text plus its own
//     fragment, if any;
//   - without a container, the fragment of the active format is appended to
//     the generic text and merged into the root; a missing fragment skips the
//     component.
//
// Fragments for formats that receive nothing are reported as unused.
func (r Resolver) Merge(m Merger, doc *pipeline.Document, id component.ID, text string) ([]Notice, error) {
	split, err := SplitByFormat(text)
	if err != nil {
		return nil, fmt.Errorf("component %q: %w", id, err)
	}
	if !split.HasFragments() {
		return nil, m.MergeComponent(doc.Root, id, text)
	}

	used := make(map[string]bool)
	var notices []Notice

	if doc.Container != nil {
		for _, b := range doc.Container.Branches() {
			if err := m.MergeComponent(b.Seq, id, split.For(b.Format)); err != nil {
				return notices, fmt.Errorf("format %q: %w", b.Format, err)
			}
			used[b.Format] = true
		}
	} else {
		if _, ok := split.Fragment(r.ActiveFormat); !ok {
			notices = append(notices, Notice{
				Kind:    NoticeFragmentMissing,
				Format:  r.ActiveFormat,
				Message: fmt.Sprintf("component %q has no configuration for output format %q", id, r.ActiveFormat),
			})
		} else {
			if err := m.MergeComponent(doc.Root, id, split.For(r.ActiveFormat)); err != nil {
				return notices, err
			}
			used[r.ActiveFormat] = true
		}
	}

	for _, format := range split.Formats() {
		if used[format] {
			continue
		}
		notices = append(notices, Notice{
			Kind:    NoticeUnusedFragment,
			Format:  format,
			Message: fmt.Sprintf("component %q declares a fragment for inactive output format %q", id, format),
		})
	}
	return notices, nil
}
