package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"

	"github.com/erraggy/oasweave/bundler"
	"github.com/erraggy/oasweave/internal/cliutil"
	"github.com/erraggy/oasweave/internal/loader"
	"github.com/erraggy/oasweave/parser"
)

// errBundleFailed is returned when a document does not bundle; the reason
// has already been printed.
var errBundleFailed = errors.New("bundle failed")

// specDir returns the directory argument, defaulting to the working directory.
func specDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

// newLoader returns a loader over dir using the configured globs.
func (a *app) newLoader(dir string) (*loader.Loader, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	return loader.New(osfs.New(abs),
		loader.WithInclude(a.settings.Include...),
		loader.WithExclude(a.settings.Exclude...),
		loader.WithLogger(a.log),
	)
}

// loadFileSet reads a fresh snapshot of the specification files under dir.
func (a *app) loadFileSet(dir string) (*parser.FileSet, error) {
	ld, err := a.newLoader(dir)
	if err != nil {
		return nil, err
	}
	return ld.Load("/", a.settings.ParserOptions(a.log)...)
}

// bundleDir loads and bundles dir. An unsuccessful bundle is returned with
// a nil error; callers report res.Reason.
func (a *app) bundleDir(ctx context.Context, dir string) (*bundler.Result, error) {
	fs, err := a.loadFileSet(dir)
	if err != nil {
		return nil, err
	}
	return bundler.Bundle(ctx, fs, a.settings.BundlerOptions(a.log)...)
}

// writeDocument renders a bundled document to w in the configured format.
func writeDocument(w io.Writer, doc map[string]any, format string) error {
	data, err := cliutil.Marshal(doc, format)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// writeFile renders a bundled document to path, picking the format from the
// file extension when possible.
func writeFile(path string, doc map[string]any, format string) error {
	data, err := cliutil.Marshal(doc, cliutil.FormatFor(path, format))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // G306: bundled specs are not secrets
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// printWarnings writes bundle warnings to w.
func printWarnings(w io.Writer, warnings []string) {
	for _, msg := range warnings {
		cliutil.Writef(w, "warning: %s\n", msg)
	}
}
