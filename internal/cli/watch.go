package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/stitchgrid/pkg/pipeline"
)

// watchDebounce coalesces the burst of events editors emit on save.
const watchDebounce = 250 * time.Millisecond

// runWatch generates once, then regenerates whenever the image or the
// catalog file changes. Generations run one at a time; a failed generation
// leaves the previous artifacts in place.
func (c *CLI) runWatch(ctx context.Context, runner *pipeline.Runner, input string, opts pipeline.Options, output string) error {
	if _, err := c.runGenerate(ctx, runner, input, opts, output); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		printError("%s", displayError(err))
	}

	targets := watchTargets(input, opts.CatalogPath)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer watcher.Close()

	// Watch directories rather than files: editors often replace a file on
	// save, which drops a watch on the file itself.
	for dir := range watchDirs(targets) {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	printInfo("Watching %s for changes (Ctrl+C to stop)", input)

	timer := time.NewTimer(watchDebounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !targets[filepath.Clean(ev.Name)] || !isContentChange(ev) {
				continue
			}
			c.Logger.Debug("file changed", "path", ev.Name, "op", ev.Op.String())
			timer.Reset(watchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.Logger.Warn("watch error", "error", err)

		case <-timer.C:
			prog := newProgress(c.Logger)
			if _, err := c.runGenerate(ctx, runner, input, opts, output); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.Logger.Debug("regeneration failed", "error", err)
				printWarning("Keeping previous pattern: %s", displayError(err))
				continue
			}
			prog.done("regenerated pattern")
		}
	}
}

// watchTargets returns the cleaned paths whose changes trigger regeneration.
func watchTargets(input, catalog string) map[string]bool {
	targets := map[string]bool{filepath.Clean(input): true}
	if catalog != "" {
		targets[filepath.Clean(catalog)] = true
	}
	return targets
}

// watchDirs returns the set of directories containing targets.
func watchDirs(targets map[string]bool) map[string]bool {
	dirs := make(map[string]bool, len(targets))
	for t := range targets {
		dirs[filepath.Dir(t)] = true
	}
	return dirs
}

// isContentChange reports whether ev may have changed a file's contents.
func isContentChange(ev fsnotify.Event) bool {
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}
