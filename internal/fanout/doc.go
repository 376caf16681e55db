// Package fanout splits a component configuration into generic text and
// per-format fragments and decides which sequences of a pipeline document
// receive which combination.
//
// A fragment is a top-level element of the configuration text:
//
//	<helpOutput format="Website">...</helpOutput>
package fanout
