// Package resolve computes the components that must be merged before a
// requested component, in dependency-first order, and validates the
// dependency graph of a catalog.
package resolve
