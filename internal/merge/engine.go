package merge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"

	"git.home.luguber.info/inful/pipemerge/internal/component"
	"git.home.luguber.info/inful/pipemerge/internal/fanout"
	"git.home.luguber.info/inful/pipemerge/internal/fields"
	"git.home.luguber.info/inful/pipemerge/internal/logfields"
	"git.home.luguber.info/inful/pipemerge/internal/metrics"
	"git.home.luguber.info/inful/pipemerge/internal/pipeline"
	"git.home.luguber.info/inful/pipemerge/internal/resolve"
)

// Built-in field names available to every configuration text.
const (
	FieldTarget     = "Target"
	FieldHelpFormat = "HelpFormat"
)

// Request is one user-declared component configuration.
type Request struct {
	ID            component.ID
	Configuration string
	Enabled       bool
}

// Engine merges requests into the document of one target.
type Engine struct {
	reg        *component.Registry
	target     component.Target
	doc        *pipeline.Document
	rules      map[component.ID]component.PlacementRule
	resolver   *resolve.Resolver
	fanout     fanout.Resolver
	fields     *fields.Fields
	subst      *fields.Resolver
	helpFormat string
	logger     *slog.Logger
	recorder   metrics.Recorder

	// instances holds adjusted ordinals per sequence key.
	instances map[string]Instances
	warnings  []Warning
}

// Option configures an Engine.
type Option func(*Engine)

// WithFields sets the user field values used for substitution.
func WithFields(f *fields.Fields) Option {
	return func(e *Engine) {
		if f != nil {
			e.fields = f
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder. Defaults to metrics.NoopRecorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithHelpFormat sets the output format of a document without a
// multi-format container.
func WithHelpFormat(format string) Option {
	return func(e *Engine) { e.helpFormat = format }
}

// WithSubstitution sets the field substitution options.
func WithSubstitution(opts ...fields.Option) Option {
	return func(e *Engine) { e.subst = fields.NewResolver(opts...) }
}

// New creates an engine that mutates doc. reg is only read.
func New(reg *component.Registry, target component.Target, doc *pipeline.Document, opts ...Option) *Engine {
	e := &Engine{
		reg:       reg,
		target:    target,
		doc:       doc,
		rules:     reg.Rules(target),
		resolver:  resolve.New(reg),
		fields:    fields.NewFields(nil),
		subst:     fields.NewResolver(),
		logger:    slog.Default(),
		recorder:  metrics.NoopRecorder{},
		instances: make(map[string]Instances),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.fanout = fanout.Resolver{ActiveFormat: e.helpFormat}
	e.fields = e.fields.With(map[string]string{
		FieldTarget:     string(target),
		FieldHelpFormat: e.helpFormat,
	})
	e.logger = e.logger.With(logfields.Target(string(target)))
	return e
}

// Document returns the document being merged.
func (e *Engine) Document() *pipeline.Document { return e.doc }

// Warnings returns the warnings collected so far, in order.
func (e *Engine) Warnings() []Warning { return append([]Warning(nil), e.warnings...) }

// Instances returns a copy of the adjusted ordinals for seq.
func (e *Engine) Instances(seq *pipeline.Sequence) Instances {
	return maps.Clone(e.instancesFor(seq))
}

// Merge applies requests in order. Disabled requests are skipped. Each
// request is applied atomically: a request that fails leaves the document
// and instance state as they were before it. ctx is checked between
// requests; on cancellation the document holds the requests merged so far.
func (e *Engine) Merge(ctx context.Context, requests []Request) error {
	for i, req := range requests {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: merge cancelled after %d of %d requests: %w", e.target, i, len(requests), err)
		}
		if !req.Enabled {
			e.logger.Debug("Skipping disabled component", logfields.Component(string(req.ID)))
			continue
		}
		snap := e.snapshot()
		if err := e.MergeRequest(req); err != nil {
			e.restore(snap)
			return err
		}
	}
	return nil
}

// MergeRequest substitutes fields in the request text and merges it through
// the fan-out policy.
func (e *Engine) MergeRequest(req Request) error {
	if !e.reg.Has(req.ID) {
		return &Error{Target: e.target, Component: req.ID, Err: &resolve.UnknownComponentError{ID: req.ID}}
	}
	text, err := e.substitute(req.Configuration)
	if err != nil {
		return &Error{Target: e.target, Component: req.ID, Err: err}
	}
	notices, err := e.fanout.Merge(e, e.doc, req.ID, text)
	for _, n := range notices {
		e.warn(Warning{
			Kind:      WarningKind(n.Kind),
			Component: req.ID,
			Format:    n.Format,
			Message:   n.Message,
		})
	}
	if err != nil {
		var merr *Error
		if errors.As(err, &merr) {
			return err
		}
		return &Error{Target: e.target, Component: req.ID, Err: err}
	}
	return nil
}

// MergeComponent merges resolved text for id into seq. Missing dependencies
// are merged first with their default configuration.
func (e *Engine) MergeComponent(seq *pipeline.Sequence, id component.ID, text string) error {
	deps, err := e.resolver.Require(id, seq.Contains)
	if err != nil {
		return &Error{Target: e.target, Component: id, Format: seq.Format(), Err: err}
	}
	for _, dep := range deps {
		if err := e.mergeDependency(seq, dep); err != nil {
			return &Error{Target: e.target, Component: id, Format: seq.Format(), Dependency: dep, Err: err}
		}
	}
	if err := e.place(seq, id, text, false); err != nil {
		return &Error{Target: e.target, Component: id, Format: seq.Format(), Err: err}
	}
	return nil
}

func (e *Engine) mergeDependency(seq *pipeline.Sequence, id component.ID) error {
	desc, _ := e.reg.Get(id)
	text, err := e.substitute(desc.DefaultConfiguration)
	if err != nil {
		return err
	}
	split, err := fanout.SplitByFormat(text)
	if err != nil {
		return err
	}
	format := seq.Format()
	if format == "" {
		format = e.helpFormat
	}
	e.logger.Debug("Merging dependency", logfields.Component(string(id)), logfields.Format(seq.Format()))
	e.recorder.IncDependencyMerge(string(e.target))
	return e.place(seq, id, split.For(format), true)
}

func (e *Engine) substitute(text string) (string, error) {
	if !fields.HasTags(text) {
		return text, nil
	}
	return e.subst.Resolve(text, e.fields.Lookup)
}

// place writes one node. A missing anchor is fatal for dependencies and a
// warning otherwise.
func (e *Engine) place(seq *pipeline.Sequence, id component.ID, text string, dependency bool) error {
	if pos := seq.IndexOf(id); pos >= 0 {
		existing := seq.At(pos)
		if err := seq.Set(pos, pipeline.Node{ID: id, Attrs: existing.Attrs, Content: text}); err != nil {
			return err
		}
		e.placed(seq, id, "override", pos)
		return nil
	}

	rule := e.rules[id]
	node := pipeline.NewNode(id, text)

	switch rule.Action {
	case component.ActionNone:
		e.warn(Warning{
			Kind:      WarningPlacementNone,
			Component: id,
			Format:    seq.Format(),
			Message:   fmt.Sprintf("component %q has no placement for target %s", id, e.target),
		})
		return nil
	case component.ActionStart:
		if err := seq.Insert(0, node); err != nil {
			return err
		}
		e.placed(seq, id, string(rule.Action), 0)
		return nil
	case component.ActionEnd:
		pos := seq.Len()
		if err := seq.Insert(pos, node); err != nil {
			return err
		}
		e.placed(seq, id, string(rule.Action), pos)
		return nil
	}

	instances := e.instancesFor(seq)
	ordinal := instances[id]
	pos, ok := seq.Find(rule.Anchor, ordinal)
	if !ok {
		missing := &PlacementAnchorMissingError{
			Component: id,
			Action:    rule.Action,
			Anchor:    rule.Anchor,
			Instance:  ordinal,
			Found:     seq.Count(rule.Anchor),
		}
		if dependency {
			return missing
		}
		e.warn(Warning{
			Kind:      WarningAnchorMissing,
			Component: id,
			Format:    seq.Format(),
			Anchor:    rule.Anchor,
			Message:   missing.Error(),
		})
		return nil
	}
	e.logger.Debug("Resolved anchor",
		logfields.Component(string(id)),
		logfields.Anchor(string(rule.Anchor)),
		logfields.Instance(ordinal),
		logfields.Position(pos))

	switch rule.Action {
	case component.ActionBefore:
		if err := seq.Insert(pos, node); err != nil {
			return err
		}
	case component.ActionAfter:
		pos++
		if err := seq.Insert(pos, node); err != nil {
			return err
		}
	case component.ActionReplace:
		if _, err := seq.Remove(pos); err != nil {
			return err
		}
		if err := seq.Insert(pos, node); err != nil {
			return err
		}
		e.instances[seq.Key()] = AdjustForRemoval(e.rules, instances, rule.Anchor, ordinal)
		e.logger.Debug("Adjusted pending instances",
			logfields.Anchor(string(rule.Anchor)),
			logfields.Format(seq.Format()),
			slog.Any("instances", e.Instances(seq)))
	default:
		return fmt.Errorf("%w: unsupported action %q", component.ErrInvalidPlacement, rule.Action)
	}
	e.placed(seq, id, string(rule.Action), pos)
	return nil
}

func (e *Engine) placed(seq *pipeline.Sequence, id component.ID, action string, pos int) {
	e.recorder.IncPlacement(string(e.target), action)
	e.logger.Debug("Placed component",
		logfields.Component(string(id)),
		logfields.Action(action),
		logfields.Position(pos),
		logfields.Format(seq.Format()))
}

func (e *Engine) warn(w Warning) {
	w.Target = e.target
	e.warnings = append(e.warnings, w)
	e.recorder.IncWarning(string(e.target), string(w.Kind))
	attrs := []any{logfields.Component(string(w.Component)), slog.String("kind", string(w.Kind))}
	if w.Format != "" {
		attrs = append(attrs, logfields.Format(w.Format))
	}
	if w.Anchor != "" {
		attrs = append(attrs, logfields.Anchor(string(w.Anchor)))
	}
	e.logger.Warn(w.Message, attrs...)
}

func (e *Engine) instancesFor(seq *pipeline.Sequence) Instances {
	key := seq.Key()
	inst, ok := e.instances[key]
	if !ok {
		inst = DeclaredInstances(e.rules)
		e.instances[key] = inst
	}
	return inst
}

type snapshot struct {
	doc       *pipeline.Document
	instances map[string]Instances
	warnings  int
}

func (e *Engine) snapshot() snapshot {
	inst := make(map[string]Instances, len(e.instances))
	for k, v := range e.instances {
		inst[k] = maps.Clone(v)
	}
	return snapshot{doc: e.doc.Clone(), instances: inst, warnings: len(e.warnings)}
}

func (e *Engine) restore(s snapshot) {
	e.doc.Restore(s.doc)
	e.instances = s.instances
	e.warnings = e.warnings[:s.warnings]
}
