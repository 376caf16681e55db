// Package errors provides foundational, type-safe error primitives used across pipemerge.
//
// This package contains classified error types and helpers for error handling,
// including a fluent builder API for constructing ClassifiedError values with context.
//
// Key features:
//   - ErrorCategory: Broad error classification (config, dependency, placement, template, etc.)
//   - ErrorSeverity: Impact level (fatal, error, warning, info)
//   - ClassifiedError: Structured error with category, severity, and context
//   - ErrorBuilder: Fluent API for creating classified errors
//   - CLI adapter for exit codes and error presentation
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryPlacement, "anchor not found").
//		Fatal().
//		WithContext("component", id).
//		WithContext("target", "reference").
//		Build()
package errors
