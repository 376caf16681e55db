package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/pipemerge/internal/component"
	"git.home.luguber.info/inful/pipemerge/internal/config"
	"git.home.luguber.info/inful/pipemerge/internal/fields"
	ferrors "git.home.luguber.info/inful/pipemerge/internal/foundation/errors"
	"git.home.luguber.info/inful/pipemerge/internal/logfields"
	"git.home.luguber.info/inful/pipemerge/internal/merge"
	"git.home.luguber.info/inful/pipemerge/internal/metrics"
	"git.home.luguber.info/inful/pipemerge/internal/observability"
	"git.home.luguber.info/inful/pipemerge/internal/pipeline"
)

// DefaultService is the standard implementation of Service.
type DefaultService struct {
	recorder metrics.Recorder
	logger   *slog.Logger
	newRunID func() string
}

// NewService creates a DefaultService with a noop recorder.
func NewService() *DefaultService {
	return &DefaultService{
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
		newRunID: uuid.NewString,
	}
}

// WithRecorder sets the metrics recorder.
func (s *DefaultService) WithRecorder(r metrics.Recorder) *DefaultService {
	if r != nil {
		s.recorder = r
	}
	return s
}

// WithLogger sets the logger passed to the merge engines.
func (s *DefaultService) WithLogger(l *slog.Logger) *DefaultService {
	if l != nil {
		s.logger = l
	}
	return s
}

// run holds what every target of one run shares. Everything here is read
// only once targets start.
type run struct {
	cfg      *config.Config
	reg      *component.Registry
	fields   *fields.Fields
	requests []merge.Request
}

// Run merges every selected target. Targets are merged sequentially unless
// build.parallel_targets is set. The first fatal error stops the run and no
// outputs are written.
func (s *DefaultService) Run(ctx context.Context, req Request) (*Result, error) {
	result := &Result{StartTime: time.Now(), RunID: s.newRunID()}
	ctx = observability.WithRunID(ctx, result.RunID)

	finish := func(status Status, err error) (*Result, error) {
		result.Status = status
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(result.StartTime)
		s.recorder.IncBuildOutcome(string(status))
		s.recorder.ObserveBuildDuration(result.Duration)
		return result, err
	}

	if req.Config == nil {
		return finish(StatusFailed, ferrors.ConfigError("config required").Build())
	}
	cfg := req.Config
	result.DryRun = req.Options.DryRun || cfg.Output.DryRun
	result.OutputDir = cfg.Resolve(cfg.Output.Directory)
	if req.Options.OutputDir != "" {
		result.OutputDir = req.Options.OutputDir
	}

	reg, err := cfg.Registry()
	if err != nil {
		return finish(StatusFailed, err)
	}
	r := &run{cfg: cfg, reg: reg, fields: fields.NewFields(cfg.Fields), requests: requestsFrom(cfg)}

	targets := selectTargets(cfg.Targets(), req.Options.Targets)
	if len(targets) == 0 {
		return finish(StatusFailed, ferrors.ConfigError("no target selected that has a template").Build())
	}
	observability.InfoContext(ctx, "Starting merge run",
		slog.Int("targets", len(targets)),
		logfields.Requests(len(r.requests)),
		slog.Bool("parallel", cfg.Build.ParallelTargets))

	result.Targets = make([]TargetResult, len(targets))
	if cfg.Build.ParallelTargets {
		err = s.runParallel(ctx, r, targets, result.Targets)
	} else {
		err = s.runSequential(ctx, r, targets, result.Targets)
	}
	if err != nil {
		if ferrors.HasCategory(err, ferrors.CategoryCancelled) {
			return finish(StatusCancelled, err)
		}
		return finish(StatusFailed, err)
	}

	if !result.DryRun {
		if err := writeOutputs(result); err != nil {
			return finish(StatusFailed, err)
		}
	}

	status := StatusSuccess
	if n := len(result.Warnings()); n > 0 {
		status = StatusWarning
		observability.WarnContext(ctx, "Merge run produced warnings", logfields.Warnings(n))
	}
	observability.InfoContext(ctx, "Merge run complete",
		slog.String("status", string(status)),
		logfields.Warnings(len(result.Warnings())),
		logfields.DurationMS(float64(time.Since(result.StartTime).Milliseconds())))
	return finish(status, nil)
}

func (s *DefaultService) runSequential(ctx context.Context, r *run, targets []component.Target, out []TargetResult) error {
	for i, t := range targets {
		var err error
		out[i], err = s.runTarget(ctx, r, t)
		if err != nil {
			return err
		}
	}
	return nil
}

// runParallel merges targets concurrently. Each target owns its document
// and engine; the registry, fields and requests are only read.
func (s *DefaultService) runParallel(ctx context.Context, r *run, targets []component.Target, out []TargetResult) error {
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range targets {
		g.Go(func() error {
			var err error
			out[i], err = s.runTarget(gctx, r, t)
			return err
		})
	}
	return g.Wait()
}

func (s *DefaultService) runTarget(ctx context.Context, r *run, target component.Target) (TargetResult, error) {
	start := time.Now()
	ctx = observability.WithTarget(ctx, string(target))
	tr := TargetResult{Target: target, Template: r.cfg.Template(target)}

	fail := func(err *ferrors.ClassifiedError) (TargetResult, error) {
		tr.Status = StatusFailed
		result := metrics.ResultFatal
		if err.IsCategory(ferrors.CategoryCancelled) {
			tr.Status = StatusCancelled
			result = metrics.ResultCanceled
		}
		tr.Err = err
		tr.Duration = time.Since(start)
		s.recorder.IncTargetResult(string(target), result)
		s.recorder.ObserveTargetDuration(string(target), tr.Duration)
		observability.ErrorContext(ctx, "Target merge failed", logfields.Error(err))
		return tr, err
	}

	doc, err := loadTemplate(tr.Template, target, component.ID(r.cfg.Build.ContainerID))
	if err != nil {
		return fail(err)
	}
	observability.DebugContext(ctx, "Loaded pipeline template",
		logfields.Path(tr.Template),
		slog.Int("sequences", len(doc.Sequences())))

	engine := merge.New(r.reg, target, doc,
		merge.WithFields(r.fields),
		merge.WithLogger(observability.Logger(ctx, s.logger)),
		merge.WithRecorder(s.recorder),
		merge.WithHelpFormat(r.cfg.Build.HelpFormat),
		merge.WithSubstitution(r.cfg.Build.Substitution()...),
	)
	for _, req := range r.requests {
		if req.Enabled {
			tr.Requests++
		}
	}

	mergeErr := engine.Merge(ctx, r.requests)
	tr.Document = engine.Document()
	tr.Warnings = engine.Warnings()
	if mergeErr != nil {
		return fail(classify(mergeErr, target))
	}

	tr.Output = tr.Document.Marshal()
	tr.Status = StatusSuccess
	result := metrics.ResultSuccess
	if len(tr.Warnings) > 0 {
		tr.Status = StatusWarning
		result = metrics.ResultWarning
	}
	tr.Duration = time.Since(start)
	s.recorder.IncTargetResult(string(target), result)
	s.recorder.ObserveTargetDuration(string(target), tr.Duration)
	observability.InfoContext(ctx, "Merged target",
		logfields.Requests(tr.Requests),
		logfields.Warnings(len(tr.Warnings)),
		logfields.DurationMS(float64(tr.Duration.Milliseconds())))
	return tr, nil
}

func loadTemplate(path string, target component.Target, containerID component.ID) (*pipeline.Document, *ferrors.ClassifiedError) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ferrors.FileSystemError("failed to read pipeline template").
			WithCause(err).
			WithContext("target", string(target)).
			WithContext("path", path).
			Build()
	}
	doc, err := pipeline.Parse(target, data, containerID)
	if err != nil {
		return nil, ferrors.TemplateError("invalid pipeline template").
			WithCause(err).
			WithContext("target", string(target)).
			WithContext("path", path).
			Build()
	}
	return doc, nil
}

// OutputPath returns where the merged document of target is written.
func OutputPath(dir string, target component.Target) string {
	return filepath.Join(dir, fmt.Sprintf("%s.config", target))
}

func writeOutputs(result *Result) error {
	if err := os.MkdirAll(result.OutputDir, 0o755); err != nil {
		return ferrors.FileSystemError("failed to create output directory").
			WithCause(err).
			WithContext("path", result.OutputDir).
			Build()
	}
	var errs []error
	for i := range result.Targets {
		tr := &result.Targets[i]
		path := OutputPath(result.OutputDir, tr.Target)
		if err := os.WriteFile(path, tr.Output, 0o644); err != nil {
			errs = append(errs, ferrors.FileSystemError("failed to write merged pipeline").
				WithCause(err).
				WithContext("target", string(tr.Target)).
				WithContext("path", path).
				Build())
			continue
		}
		tr.OutputPath = path
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func requestsFrom(cfg *config.Config) []merge.Request {
	out := make([]merge.Request, 0, len(cfg.Components))
	for _, c := range cfg.Components {
		out = append(out, merge.Request{
			ID:            component.ID(c.ID),
			Configuration: c.Configuration,
			Enabled:       c.IsEnabled(),
		})
	}
	return out
}

func selectTargets(available, wanted []component.Target) []component.Target {
	if len(wanted) == 0 {
		return available
	}
	var out []component.Target
	for _, t := range available {
		if slices.Contains(wanted, t) {
			out = append(out, t)
		}
	}
	return out
}
