// Package component models the catalog of pipeline components that can be
// merged into a toolchain configuration: typed identifiers, per-target
// placement rules, descriptors and the read-only Registry built from them.
//
// A Registry is populated once per run (usually from a YAML catalog, see
// LoadCatalog) and is safe to share read-only between target merges.
package component
