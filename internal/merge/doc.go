// Package merge splices component configurations into the pipeline
// document of one target.
//
// An Engine owns one document and the adjusted instance ordinals of every
// placement rule for each of the document's sequences. It is not safe for
// concurrent use; engines for different targets share only the read-only
// registry and may run in parallel.
package merge
