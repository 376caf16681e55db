// Package fields expands nested field tags of the form {@Name} or
// {@Name:Format} in component configuration text.
//
// Expansion runs to a fixed point: a field value may itself contain tags,
// which are expanded on the next pass. The number of passes and the size of
// the expanded text are bounded, so self-referential or mutually-referential
// fields fail with an UnresolvableTemplateError instead of looping.
package fields
