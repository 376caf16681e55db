package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/pipemerge/internal/build"
	"git.home.luguber.info/inful/pipemerge/internal/config"
	"git.home.luguber.info/inful/pipemerge/internal/foundation/errors"
	"git.home.luguber.info/inful/pipemerge/internal/logfields"
	"git.home.luguber.info/inful/pipemerge/internal/observability"
	"git.home.luguber.info/inful/pipemerge/internal/report"
)

// MergeCmd implements the 'merge' command.
type MergeCmd struct {
	Output string   `short:"o" help:"Output directory for merged pipelines (overrides output.directory)" type:"path"`
	DryRun bool     `name:"dry-run" help:"Merge without writing outputs"`
	Target []string `short:"t" help:"Restrict the run to these targets (reference, conceptual)"`
	Report string   `help:"Write a merge report (none, markdown, html); overrides output.report"`
}

// Run executes the merge command.
func (m *MergeCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}
	if m.Report != "" {
		format, err := config.ParseReportFormat(m.Report)
		if err != nil {
			return errors.ValidationError(err.Error()).WithContext("flag", "--report").Build()
		}
		cfg.Output.Report = format
	}
	targets, err := parseTargets(m.Target)
	if err != nil {
		return errors.ValidationError(err.Error()).WithContext("flag", "--target").Build()
	}

	_, err = runMerge(observability.WithStage(ctx, "merge"), g, cfg, build.Options{
		DryRun:    m.DryRun,
		OutputDir: m.Output,
		Targets:   targets,
	})
	return err
}

// runMerge runs one merge, prints its summary and writes the report and
// metrics.
func runMerge(ctx context.Context, g *Global, cfg *config.Config, opts build.Options) (*build.Result, error) {
	recorder, reg := newRecorder(cfg)
	svc := build.NewService().WithRecorder(recorder).WithLogger(g.Logger)

	result, err := svc.Run(ctx, build.Request{Config: cfg, Options: opts})
	defer flushMetrics(g, cfg, reg)

	out := stdout(g)
	for _, t := range result.Targets {
		switch {
		case t.OutputPath != "":
			fmt.Fprintf(out, "%-10s %-9s %s\n", t.Target, t.Status, t.OutputPath)
		case t.Status != "":
			fmt.Fprintf(out, "%-10s %s\n", t.Target, t.Status)
		}
	}
	for _, w := range result.Warnings() {
		fmt.Fprintf(out, "warning: %s: %s\n", w.Target, w.Message)
	}
	fmt.Fprintln(out, report.New(result).Summary())

	writeReport(g, cfg, result)
	return result, err
}

func writeReport(g *Global, cfg *config.Config, result *build.Result) {
	var format report.Format
	switch cfg.Output.Report {
	case config.ReportMarkdown:
		format = report.FormatMarkdown
	case config.ReportHTML:
		format = report.FormatHTML
	default:
		return
	}
	if result.DryRun || result.OutputDir == "" {
		g.Logger.Debug("Skipping merge report for dry run")
		return
	}
	path, err := report.New(result).Persist(result.OutputDir, format)
	if err != nil {
		g.Logger.Warn("Failed to write merge report", logfields.Error(err))
		return
	}
	g.Logger.Info("Merge report written", logfields.Path(path))
}
