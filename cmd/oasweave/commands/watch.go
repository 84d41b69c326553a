package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/erraggy/oasweave/internal/cliutil"
	"github.com/erraggy/oasweave/internal/loader"
	"github.com/erraggy/oasweave/parser"
)

func newWatchCommand(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Re-bundle a multi-file OpenAPI document whenever its files change",
		Long: `Watch the specification files under dir and write a fresh bundle to the
output file after every change. Each rebuild reads a new snapshot of the
files; a failed bundle is reported and the previous output is kept.

Example:
  oasweave watch ./api -o openapi.yaml
  oasweave watch ./api -o openapi.json --debounce 1s`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return errors.New("watch requires --output")
			}
			dir, err := filepath.Abs(specDir(args))
			if err != nil {
				return err
			}
			out, err := filepath.Abs(output)
			if err != nil {
				return err
			}
			ld, err := a.newLoader(dir)
			if err != nil {
				return err
			}

			fw, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("creating watcher: %w", err)
			}
			defer func() { _ = fw.Close() }()

			dirs, err := ld.Dirs("/")
			if err != nil {
				return err
			}
			for _, d := range dirs {
				if err := fw.Add(filepath.Join(dir, filepath.FromSlash(d))); err != nil {
					return fmt.Errorf("watching %s: %w", d, err)
				}
			}

			w := &watcher{
				root:     dir,
				ignore:   out,
				loader:   ld,
				debounce: a.settings.Watch.Debounce,
				addDir:   fw.Add,
				log:      a.log,
				rebuild: func() {
					a.rebuild(cmd, dir, out)
				},
			}
			cliutil.Writef(cmd.ErrOrStderr(), "watching %s (%d directories), press Ctrl+C to stop\n", dir, len(dirs))
			w.rebuild()
			return w.run(cmd.Context(), fw.Events, fw.Errors)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file written after every change (required)")
	cmd.Flags().Duration("debounce", 0, "quiet period after a change before re-bundling (default 300ms)")
	a.bind("debounce", "watch.debounce")
	return cmd
}

// rebuild bundles a fresh snapshot of dir into out. Failures are reported
// and leave the previous output in place.
func (a *app) rebuild(cmd *cobra.Command, dir, out string) {
	start := time.Now()
	res, err := a.bundleDir(cmd.Context(), dir)
	switch {
	case err != nil:
		cliutil.Writef(cmd.ErrOrStderr(), "✗ %v\n", err)
		return
	case !res.Success:
		cliutil.Writef(cmd.ErrOrStderr(), "✗ %s\n", res.Reason)
		return
	}
	printWarnings(cmd.ErrOrStderr(), res.Warnings)
	if err := writeFile(out, res.Document, a.settings.Format); err != nil {
		cliutil.Writef(cmd.ErrOrStderr(), "✗ %v\n", err)
		return
	}
	cliutil.Writef(cmd.ErrOrStderr(), "✓ bundled %s into %s in %v\n", res.RootFile, out, time.Since(start).Round(time.Millisecond))
}

// watcher debounces file system events into rebuilds.
type watcher struct {
	root     string
	ignore   string
	loader   *loader.Loader
	debounce time.Duration
	rebuild  func()
	addDir   func(string) error
	log      parser.Logger
}

// run consumes events until ctx is done or the event channel closes.
// Relevant events restart the debounce timer; the rebuild runs once the
// timer fires.
func (w *watcher) run(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) error {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if w.relevant(ev) {
				w.log.Debug("change detected", "file", ev.Name, "op", ev.Op.String())
				timer.Reset(w.debounce)
			}
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", "error", err)
		case <-timer.C:
			w.rebuild()
		}
	}
}

// relevant reports whether ev touches a file the loader would read.
// New directories are added to the watch list.
func (w *watcher) relevant(ev fsnotify.Event) bool {
	if ev.Name == w.ignore || ev.Op == fsnotify.Chmod {
		return false
	}
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)

	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if w.loader.SkipsDir(rel) {
				return false
			}
			if err := w.addDir(ev.Name); err != nil {
				w.log.Warn("cannot watch new directory", "dir", rel, "error", err)
			}
			return true
		}
	}
	return w.loader.Matches(rel)
}
