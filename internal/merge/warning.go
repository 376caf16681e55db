package merge

import (
	"git.home.luguber.info/inful/pipemerge/internal/component"
	"git.home.luguber.info/inful/pipemerge/internal/fanout"
)

// WarningKind classifies a recoverable skip.
type WarningKind string

const (
	WarningAnchorMissing         WarningKind = "anchor_missing"
	WarningPlacementNone         WarningKind = "placement_none"
	WarningFormatFragmentMissing             = WarningKind(fanout.NoticeFragmentMissing)
	WarningUnusedFormatFragment              = WarningKind(fanout.NoticeUnusedFragment)
)

// Warning is a recoverable outcome of a merge. The document was not
// changed by the step that produced it.
type Warning struct {
	Kind      WarningKind
	Component component.ID
	Target    component.Target
	Format    string
	Anchor    component.ID
	Message   string
}
