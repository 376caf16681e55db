package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/pipemerge/internal/build"
	"git.home.luguber.info/inful/pipemerge/internal/config"
	"git.home.luguber.info/inful/pipemerge/internal/logfields"
	"git.home.luguber.info/inful/pipemerge/internal/observability"
	"git.home.luguber.info/inful/pipemerge/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Output   string        `short:"o" help:"Output directory for merged pipelines (overrides output.directory)" type:"path"`
	Debounce time.Duration `help:"Wait this long for further changes before merging" default:"500ms"`
}

// Run executes the watch command. It returns when interrupted.
func (w *WatchCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx = observability.WithStage(ctx, "watch")

	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}

	var watcher *watch.Watcher
	rerun := func(ctx context.Context, changed []string) error {
		for _, f := range changed {
			g.Logger.Info("Change detected", logfields.Path(f))
		}
		next, err := loadConfig(g, root)
		if err != nil {
			return err
		}
		if err := watcher.Add(watchedFiles(next)...); err != nil {
			g.Logger.Warn("Failed to watch new files", logfields.Error(err))
		}
		_, err = runMerge(ctx, g, next, build.Options{OutputDir: w.Output})
		return err
	}

	watcher, err = watch.New(rerun, watch.WithDebounce(w.Debounce), watch.WithLogger(g.Logger))
	if err != nil {
		return err
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			g.Logger.Warn("Failed to close watcher", logfields.Error(err))
		}
	}()
	if err := watcher.Add(watchedFiles(cfg)...); err != nil {
		return err
	}

	if _, err := runMerge(ctx, g, cfg, build.Options{OutputDir: w.Output}); err != nil {
		g.Logger.Error("Initial merge failed; waiting for changes", logfields.Error(err))
	}
	g.Logger.Info("Watching for changes", "files", len(watcher.Files()))
	return watcher.Run(ctx)
}

// watchedFiles lists the inputs of a merge.
func watchedFiles(cfg *config.Config) []string {
	files := []string{cfg.Path()}
	if cfg.Catalog != "" {
		files = append(files, cfg.Resolve(cfg.Catalog))
	}
	for _, t := range cfg.Targets() {
		files = append(files, cfg.Template(t))
	}
	return files
}
