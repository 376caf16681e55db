// Package report renders a merge run as a Markdown document, optionally
// converted to HTML with goldmark, and persists it next to the merged
// pipelines.
package report
