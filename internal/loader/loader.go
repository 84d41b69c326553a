// Package loader discovers specification files on a filesystem and turns
// them into an immutable parser.FileSet snapshot. It also decodes recorded
// transaction files for the contract engine.
package loader

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/erraggy/oasweave/oaserrors"
	"github.com/erraggy/oasweave/parser"
	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// Loader reads file sets from a billy filesystem.
type Loader struct {
	fs      billy.Filesystem
	include []string
	exclude []string
	log     parser.Logger
}

// Option configures a Loader.
type Option func(*Loader) error

// New returns a Loader over fs. Without WithInclude every .yaml, .yml and
// .json file is selected.
func New(fs billy.Filesystem, opts ...Option) (*Loader, error) {
	if fs == nil {
		return nil, &oaserrors.ConfigError{Option: "filesystem", Message: "filesystem cannot be nil"}
	}
	l := &Loader{
		fs:      fs,
		include: []string{"**/*.yaml", "**/*.yml", "**/*.json"},
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	l.log = parser.LoggerOrNop(l.log)
	return l, nil
}

// WithInclude replaces the include patterns.
func WithInclude(patterns ...string) Option {
	return func(l *Loader) error {
		if err := validPatterns("include", patterns); err != nil {
			return err
		}
		l.include = patterns
		return nil
	}
}

// WithExclude sets patterns of files and directories to skip.
func WithExclude(patterns ...string) Option {
	return func(l *Loader) error {
		if err := validPatterns("exclude", patterns); err != nil {
			return err
		}
		l.exclude = patterns
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(lg parser.Logger) Option {
	return func(l *Loader) error {
		l.log = lg
		return nil
	}
}

func validPatterns(option string, patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return &oaserrors.ConfigError{Option: option, Value: p, Message: "invalid glob pattern"}
		}
	}
	return nil
}

// Discover returns the slash-separated names of the selected files under
// dir, sorted.
func (l *Loader) Discover(dir string) ([]string, error) {
	root := cleanDir(dir)
	var names []string
	err := util.Walk(l.fs, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel := relative(root, p)
		if info.IsDir() {
			if rel != "" && l.excludedDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if l.selected(rel) {
			names = append(names, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loader: walking %s: %w", dir, err)
	}
	slices.Sort(names)
	l.log.Debug("discovered files", "dir", dir, "count", len(names))
	return names, nil
}

// Dirs returns the slash-separated names of the directories Discover
// descends into under dir, sorted. The directory itself is ".".
func (l *Loader) Dirs(dir string) ([]string, error) {
	root := cleanDir(dir)
	var dirs []string
	err := util.Walk(l.fs, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		rel := relative(root, p)
		if rel == "" {
			rel = "."
		} else if l.excludedDir(rel) {
			return filepath.SkipDir
		}
		dirs = append(dirs, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loader: walking %s: %w", dir, err)
	}
	slices.Sort(dirs)
	return dirs, nil
}

// SkipsDir reports whether the exclude patterns cover the directory rel.
func (l *Loader) SkipsDir(rel string) bool {
	rel = strings.TrimPrefix(path.Clean(strings.ReplaceAll(rel, "\\", "/")), "/")
	for d := rel; d != "." && d != "/"; d = path.Dir(d) {
		if l.excludedDir(d) {
			return true
		}
	}
	return false
}

// Load reads the selected files under dir into a FileSet. File names in the
// set are relative to dir.
func (l *Loader) Load(dir string, opts ...parser.Option) (*parser.FileSet, error) {
	names, err := l.Discover(dir)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, &oaserrors.ConfigError{Option: "input", Value: dir, Message: "no specification files found"}
	}
	root := cleanDir(dir)
	files := make(map[string][]byte, len(names))
	for _, name := range names {
		data, err := util.ReadFile(l.fs, path.Join(root, name))
		if err != nil {
			return nil, fmt.Errorf("loader: reading %s: %w", name, err)
		}
		files[name] = data
	}
	return parser.NewFileSet(files, append([]parser.Option{parser.WithLogger(l.log)}, opts...)...)
}

// Matches reports whether a changed file is one Load would read. The name
// is relative to the loaded directory.
func (l *Loader) Matches(name string) bool {
	name = strings.TrimPrefix(path.Clean(strings.ReplaceAll(name, "\\", "/")), "/")
	if l.SkipsDir(path.Dir(name)) {
		return false
	}
	return l.selected(name)
}

func (l *Loader) selected(rel string) bool {
	return matchAny(l.include, rel) && !matchAny(l.exclude, rel)
}

// excludedDir reports whether an exclude pattern covers everything in dir.
func (l *Loader) excludedDir(dir string) bool {
	for _, p := range l.exclude {
		if prefix, ok := strings.CutSuffix(p, "/**"); ok {
			if m, _ := doublestar.Match(prefix, dir); m {
				return true
			}
		}
	}
	return false
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if m, _ := doublestar.Match(p, name); m {
			return true
		}
	}
	return false
}

// cleanDir returns dir as an absolute filesystem path; "/" is the root of
// the billy filesystem.
func cleanDir(dir string) string {
	dir = strings.ReplaceAll(dir, "\\", "/")
	if dir == "" || dir == "." {
		return "/"
	}
	return path.Clean("/" + dir)
}

func relative(root, p string) string {
	p = path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
	if root == "/" {
		return strings.TrimPrefix(p, "/")
	}
	rel := strings.TrimPrefix(p, root)
	return strings.TrimPrefix(rel, "/")
}
