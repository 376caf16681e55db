// Package build runs a complete merge for a project configuration.
//
// All execution paths (the merge and watch commands, tests) route through
// Service. A run loads the component catalog, parses the base template of
// every configured target, merges the enabled component requests into each
// target and serializes the results.
package build
