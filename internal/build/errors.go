package build

import (
	"context"
	"errors"

	"git.home.luguber.info/inful/pipemerge/internal/component"
	"git.home.luguber.info/inful/pipemerge/internal/fields"
	ferrors "git.home.luguber.info/inful/pipemerge/internal/foundation/errors"
	"git.home.luguber.info/inful/pipemerge/internal/merge"
	"git.home.luguber.info/inful/pipemerge/internal/pipeline"
	"git.home.luguber.info/inful/pipemerge/internal/resolve"
)

// classify maps a merge failure of target to a ClassifiedError carrying the
// component, format and anchor involved.
func classify(err error, target component.Target) *ferrors.ClassifiedError {
	if c, ok := ferrors.AsClassified(err); ok {
		return c.WithContext("target", string(target))
	}

	b := builderFor(err)("merge failed").
		WithCause(err).
		WithContext("target", string(target))

	var merr *merge.Error
	if errors.As(err, &merr) {
		b = b.WithContext("component", string(merr.Component)).
			WithContext("format", merr.Format).
			WithContext("dependency", string(merr.Dependency))
	}
	var anchor *merge.PlacementAnchorMissingError
	if errors.As(err, &anchor) {
		b = b.WithContext("anchor", string(anchor.Anchor)).
			WithContext("instance", anchor.Instance)
	}
	var cycle *resolve.CircularDependencyError
	if errors.As(err, &cycle) {
		b = b.WithContext("cycle", cycle.Error())
	}
	return b.Build()
}

// builderFor picks the error constructor matching the category of err.
func builderFor(err error) func(string) *ferrors.ErrorBuilder {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ferrors.CancelledError
	case errors.Is(err, resolve.ErrUnknownComponent):
		return ferrors.NotFoundError
	case errors.Is(err, resolve.ErrCircularDependency), errors.Is(err, resolve.ErrUnknownDependency):
		return ferrors.DependencyError
	case errors.Is(err, merge.ErrPlacementAnchorMissing), errors.Is(err, pipeline.ErrContainerImmutable):
		return ferrors.PlacementError
	case errors.Is(err, fields.ErrUnresolvable), errors.Is(err, fields.ErrUnknownField), errors.Is(err, fields.ErrUnknownFormat):
		return ferrors.TemplateError
	default:
		return ferrors.ConfigError
	}
}
