// Package pipeline holds the ordered component documents that make up a
// toolchain configuration, one per target.
//
// A Document is a root Sequence of component nodes. When the root contains
// the multi-format container node, the container owns one Branch per output
// format and each branch is an independent Sequence. Nodes are addressed by
// position and by instance ordinal (the 1-based position of a node among
// siblings sharing its id); ordinals are always computed from the current
// order, never cached.
package pipeline
