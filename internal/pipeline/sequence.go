package pipeline

import (
	"encoding/xml"
	"fmt"
	"slices"

	"git.home.luguber.info/inful/pipemerge/internal/component"
)

// Node is one component entry in a sequence.
type Node struct {
	ID component.ID
	// Attrs holds attributes other than id, preserved for serialization.
	Attrs []xml.Attr
	// Content is the resolved inner XML of the component element.
	Content string

	container bool
}

// NewNode creates a component node with content.
func NewNode(id component.ID, content string) Node {
	return Node{ID: id, Content: content}
}

// IsContainer reports whether n is the document's multi-format container.
func (n Node) IsContainer() bool { return n.container }

func (n Node) clone() Node {
	n.Attrs = slices.Clone(n.Attrs)
	return n
}

// Sequence is an ordered list of nodes. Positions are 0-based; instance
// ordinals are 1-based.
type Sequence struct {
	format string
	nodes  []Node
}

// NewSequence creates a root sequence holding nodes.
func NewSequence(nodes ...Node) *Sequence {
	return &Sequence{nodes: slices.Clone(nodes)}
}

// Format returns the output format of a branch sequence, or "" for a root.
func (s *Sequence) Format() string { return s.format }

// Key identifies the sequence within its document.
func (s *Sequence) Key() string {
	if s.format == "" {
		return "root"
	}
	return "format:" + s.format
}

// Len returns the number of nodes.
func (s *Sequence) Len() int { return len(s.nodes) }

// At returns the node at pos.
func (s *Sequence) At(pos int) Node { return s.nodes[pos].clone() }

// Nodes returns a copy of the nodes in order.
func (s *Sequence) Nodes() []Node {
	out := make([]Node, len(s.nodes))
	for i, n := range s.nodes {
		out[i] = n.clone()
	}
	return out
}

// IDs returns the node ids in order.
func (s *Sequence) IDs() []component.ID {
	out := make([]component.ID, len(s.nodes))
	for i, n := range s.nodes {
		out[i] = n.ID
	}
	return out
}

// Contains reports whether any node has id.
func (s *Sequence) Contains(id component.ID) bool { return s.IndexOf(id) >= 0 }

// IndexOf returns the position of the first node with id, or -1.
func (s *Sequence) IndexOf(id component.ID) int {
	return slices.IndexFunc(s.nodes, func(n Node) bool { return n.ID == id })
}

// Count returns the number of nodes with id.
func (s *Sequence) Count(id component.ID) int {
	c := 0
	for _, n := range s.nodes {
		if n.ID == id {
			c++
		}
	}
	return c
}

// Find returns the position of the ordinal-th node (1-based, document order)
// with id.
func (s *Sequence) Find(id component.ID, ordinal int) (int, bool) {
	if ordinal < 1 {
		return -1, false
	}
	seen := 0
	for i, n := range s.nodes {
		if n.ID != id {
			continue
		}
		seen++
		if seen == ordinal {
			return i, true
		}
	}
	return -1, false
}

// Insert places n at pos, shifting later nodes. pos may equal Len.
func (s *Sequence) Insert(pos int, n Node) error {
	if pos < 0 || pos > len(s.nodes) {
		return fmt.Errorf("insert position %d out of range [0,%d]", pos, len(s.nodes))
	}
	n.container = false
	s.nodes = slices.Insert(s.nodes, pos, n)
	return nil
}

// Set replaces the node at pos. The container node cannot be replaced.
func (s *Sequence) Set(pos int, n Node) error {
	if pos < 0 || pos >= len(s.nodes) {
		return fmt.Errorf("position %d out of range [0,%d)", pos, len(s.nodes))
	}
	if s.nodes[pos].container {
		return ErrContainerImmutable
	}
	n.container = false
	s.nodes[pos] = n
	return nil
}

// Remove deletes and returns the node at pos. The container node cannot be
// removed.
func (s *Sequence) Remove(pos int) (Node, error) {
	if pos < 0 || pos >= len(s.nodes) {
		return Node{}, fmt.Errorf("position %d out of range [0,%d)", pos, len(s.nodes))
	}
	if s.nodes[pos].container {
		return Node{}, ErrContainerImmutable
	}
	n := s.nodes[pos]
	s.nodes = slices.Delete(s.nodes, pos, pos+1)
	return n, nil
}

// Clone returns a deep copy.
func (s *Sequence) Clone() *Sequence {
	out := &Sequence{format: s.format, nodes: make([]Node, len(s.nodes))}
	for i, n := range s.nodes {
		out.nodes[i] = n.clone()
	}
	return out
}
