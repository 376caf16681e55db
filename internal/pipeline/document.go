package pipeline

import (
	"errors"
	"slices"

	"git.home.luguber.info/inful/pipemerge/internal/component"
)

// DefaultContainerID is the id of the multi-format output container.
const DefaultContainerID component.ID = "Multi-format Output Component"

var (
	// ErrContainerImmutable is returned when a merge tries to replace or
	// remove the multi-format container node.
	ErrContainerImmutable = errors.New("multi-format container node cannot be replaced or removed")
	// ErrUnknownBranch is returned for a format the container has no branch for.
	ErrUnknownBranch = errors.New("no branch for output format")
)

// Branch is the node sequence of one output format inside the container.
type Branch struct {
	Format string
	Seq    *Sequence
}

// Container is the multi-format output node of a document.
type Container struct {
	// Generic is the container's own inner XML with branches removed.
	Generic  string
	branches []*Branch
}

// Branches returns the branches in document order.
func (c *Container) Branches() []*Branch { return slices.Clone(c.branches) }

// Branch returns the branch for format.
func (c *Container) Branch(format string) (*Branch, bool) {
	for _, b := range c.branches {
		if b.Format == format {
			return b, true
		}
	}
	return nil, false
}

// Formats returns the branch formats in document order.
func (c *Container) Formats() []string {
	out := make([]string, len(c.branches))
	for i, b := range c.branches {
		out[i] = b.Format
	}
	return out
}

func (c *Container) clone() *Container {
	out := &Container{Generic: c.Generic, branches: make([]*Branch, len(c.branches))}
	for i, b := range c.branches {
		out.branches[i] = &Branch{Format: b.Format, Seq: b.Seq.Clone()}
	}
	return out
}

// Document is the pipeline of one target.
type Document struct {
	Target      component.Target
	ContainerID component.ID
	Root        *Sequence
	// Container is nil for a single-format pipeline.
	Container *Container
}

// NewDocument creates a document from root nodes without a container.
func NewDocument(target component.Target, nodes ...Node) *Document {
	return &Document{Target: target, ContainerID: DefaultContainerID, Root: NewSequence(nodes...)}
}

// AddBranch attaches the multi-format container to the document, creating
// the container node at the end of the root if needed, and adds an empty
// branch for format. It returns the branch sequence.
func (d *Document) AddBranch(format string, nodes ...Node) *Sequence {
	if d.Container == nil {
		d.Container = &Container{}
		if d.Root.IndexOf(d.ContainerID) < 0 {
			d.Root.nodes = append(d.Root.nodes, Node{ID: d.ContainerID, container: true})
		} else {
			d.Root.nodes[d.Root.IndexOf(d.ContainerID)].container = true
		}
	}
	if b, ok := d.Container.Branch(format); ok {
		return b.Seq
	}
	seq := &Sequence{format: format, nodes: slices.Clone(nodes)}
	d.Container.branches = append(d.Container.branches, &Branch{Format: format, Seq: seq})
	return seq
}

// Sequences returns the insertion targets of the document: the branches
// when a container exists, otherwise the root.
func (d *Document) Sequences() []*Sequence {
	if d.Container == nil {
		return []*Sequence{d.Root}
	}
	out := make([]*Sequence, 0, len(d.Container.branches))
	for _, b := range d.Container.branches {
		out = append(out, b.Seq)
	}
	return out
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	out := &Document{Target: d.Target, ContainerID: d.ContainerID, Root: d.Root.Clone()}
	if d.Container != nil {
		out.Container = d.Container.clone()
	}
	return out
}

// Restore replaces the contents of d with those of snapshot. Sequence
// pointers obtained from d before the call are no longer part of d.
func (d *Document) Restore(snapshot *Document) {
	c := snapshot.Clone()
	d.Target = c.Target
	d.ContainerID = c.ContainerID
	d.Root = c.Root
	d.Container = c.Container
}
