package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/pipemerge/internal/component"
	"git.home.luguber.info/inful/pipemerge/internal/config"
	"git.home.luguber.info/inful/pipemerge/internal/logfields"
	"git.home.luguber.info/inful/pipemerge/internal/metrics"
)

// Global carries state shared by every subcommand.
type Global struct {
	Logger *slog.Logger
	// Stdout receives user-facing output.
	Stdout io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path" default:"pipemerge.yaml" type:"path"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogFormat string           `name:"log-format" help:"Log output format (text, json); overrides monitoring.logging.format"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Merge         MergeCmd         `cmd:"" default:"withargs" help:"Merge configured components into the target pipelines"`
	Validate      ValidateCmd      `cmd:"" help:"Validate the configuration, catalog and templates without merging"`
	Visualize     VisualizeCmd     `cmd:"" help:"Visualize the component dependency graph (text, mermaid, dot, json)"`
	ResolveFields ResolveFieldsCmd `cmd:"" name:"resolve-fields" help:"Substitute {@Field} tags in a text using the configured fields"`
	Watch         WatchCmd         `cmd:"" help:"Merge, then merge again whenever the configuration, catalog or templates change"`
	Init          InitCmd          `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	g.Logger = newLogger(os.Stderr, level, config.NormalizeLogFormat(c.LogFormat))
	slog.SetDefault(g.Logger)
	return nil
}

func newLogger(w io.Writer, level slog.Level, format config.LogFormat) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func slogLevel(l config.LogLevel) slog.Level {
	switch l {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelWarn:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadConfig loads the project file and applies its logging settings.
// -v and --log-format take precedence over the file.
func loadConfig(g *Global, root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	if cfg.Monitoring != nil {
		level := slogLevel(cfg.Monitoring.Logging.Level)
		if root.Verbose {
			level = slog.LevelDebug
		}
		format := cfg.Monitoring.Logging.Format
		if root.LogFormat != "" {
			format = config.NormalizeLogFormat(root.LogFormat)
		}
		g.Logger = newLogger(os.Stderr, level, format)
		slog.SetDefault(g.Logger)
	}
	g.Logger.Debug("Loaded configuration", logfields.Path(cfg.Path()))
	return cfg, nil
}

// newRecorder returns the metrics recorder for cfg. The registry is nil
// when metrics are disabled.
func newRecorder(cfg *config.Config) (metrics.Recorder, *prom.Registry) {
	if cfg.Monitoring == nil || !cfg.Monitoring.Metrics.Enabled {
		return metrics.NoopRecorder{}, nil
	}
	reg := prom.NewRegistry()
	return metrics.NewPrometheusRecorder(reg), reg
}

// flushMetrics writes the metrics textfile if one is configured.
func flushMetrics(g *Global, cfg *config.Config, reg *prom.Registry) {
	if reg == nil || cfg.Monitoring.Metrics.Textfile == "" {
		return
	}
	path := cfg.Resolve(cfg.Monitoring.Metrics.Textfile)
	if err := metrics.WriteTextfile(reg, path); err != nil {
		g.Logger.Warn("Failed to write metrics textfile", logfields.Path(path), logfields.Error(err))
		return
	}
	g.Logger.Debug("Wrote metrics textfile", logfields.Path(path))
}

func parseTargets(raw []string) ([]component.Target, error) {
	out := make([]component.Target, 0, len(raw))
	for _, r := range raw {
		t, err := component.ParseTarget(r)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func stdout(g *Global) io.Writer {
	if g.Stdout != nil {
		return g.Stdout
	}
	return os.Stdout
}
