package mcpserver

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/erraggy/oasweave/internal/loader"
	"github.com/erraggy/oasweave/internal/options"
	"github.com/erraggy/oasweave/parser"
)

// defaultInlineName is the file name given to inline single-file content.
const defaultInlineName = "openapi.yaml"

// specInput represents the ways an OAS specification can be provided to a
// tool. Exactly one of File, Dir, Files or Content must be set.
type specInput struct {
	File    string            `json:"file,omitempty"    jsonschema:"Path to the root OAS file on disk; the files next to it are loaded so relative refs resolve"`
	Dir     string            `json:"dir,omitempty"     jsonschema:"Directory holding a multi-file OAS document"`
	Files   map[string]string `json:"files,omitempty"   jsonschema:"Inline multi-file OAS document: relative file name to content (JSON or YAML)"`
	Content string            `json:"content,omitempty" jsonschema:"Inline single-file OAS document content (JSON or YAML)"`
	Root    string            `json:"root,omitempty"    jsonschema:"Root file name; skips root detection"`
}

// specCache holds loaded file sets. A FileSet is immutable, so cached sets
// are shared between calls. File inputs are keyed by a fingerprint of every
// loaded file's size and modification time, inline inputs by a SHA-256 of
// their contents.
var specCache = newSpecCache()

func newSpecCache() *expirable.LRU[string, *parser.FileSet] {
	return expirable.NewLRU[string, *parser.FileSet](cfg.CacheMaxSize, nil, cfg.CacheTTL)
}

// source is a resolved specInput: a filesystem, the directory to load and
// an optional root hint.
type source struct {
	fs   billy.Filesystem
	dir  string
	root string
}

// resolve loads the file set from whichever input was provided, using the
// cache when enabled.
func (s specInput) resolve() (*parser.FileSet, error) {
	if _, err := options.SingleSource("spec",
		options.Source{Name: "file", Set: s.File != ""},
		options.Source{Name: "dir", Set: s.Dir != ""},
		options.Source{Name: "files", Set: len(s.Files) > 0},
		options.Source{Name: "content", Set: s.Content != ""},
	); err != nil {
		return nil, err
	}
	if size := s.inlineSize(); size > cfg.MaxInlineSize {
		return nil, fmt.Errorf("inline content size %d bytes exceeds maximum %d bytes; use file or dir input instead, or set OASWEAVE_MCP_MAX_INLINE_SIZE to increase",
			size, cfg.MaxInlineSize)
	}

	src, err := s.source()
	if err != nil {
		return nil, err
	}
	ld, err := loader.New(src.fs,
		loader.WithInclude(cfg.Settings.Include...),
		loader.WithExclude(cfg.Settings.Exclude...),
		loader.WithLogger(logger()),
	)
	if err != nil {
		return nil, err
	}

	var key string
	if cfg.CacheEnabled {
		key = s.cacheKey(ld, src)
		if key != "" {
			if fs, ok := specCache.Get(key); ok {
				return fs, nil
			}
		}
	}

	settings := *cfg.Settings
	if src.root != "" {
		settings.Root = src.root
	}
	fs, err := ld.Load(src.dir, settings.ParserOptions(logger())...)
	if err != nil {
		return nil, err
	}
	if key != "" {
		specCache.Add(key, fs)
	}
	return fs, nil
}

func (s specInput) inlineSize() int64 {
	n := int64(len(s.Content))
	for name, content := range s.Files {
		n += int64(len(name) + len(content))
	}
	return n
}

// source maps the input onto a filesystem. Inline inputs are written to an
// in-memory filesystem so that every input kind loads the same way.
func (s specInput) source() (source, error) {
	switch {
	case s.File != "":
		abs, err := filepath.Abs(s.File)
		if err != nil {
			return source{}, fmt.Errorf("resolving file path: %w", err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return source{}, err
		}
		if info.IsDir() {
			return source{}, fmt.Errorf("file %s is a directory; use dir instead", s.File)
		}
		root := s.Root
		if root == "" {
			root = filepath.Base(abs)
		}
		return source{fs: osfs.New(filepath.Dir(abs)), dir: "/", root: root}, nil
	case s.Dir != "":
		abs, err := filepath.Abs(s.Dir)
		if err != nil {
			return source{}, fmt.Errorf("resolving dir path: %w", err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return source{}, err
		}
		if !info.IsDir() {
			return source{}, fmt.Errorf("dir %s is not a directory; use file instead", s.Dir)
		}
		return source{fs: osfs.New(abs), dir: "/", root: s.Root}, nil
	default:
		files := s.Files
		if s.Content != "" {
			files = map[string]string{defaultInlineName: s.Content}
		}
		mem, err := memFS(files)
		if err != nil {
			return source{}, err
		}
		return source{fs: mem, dir: "/", root: s.Root}, nil
	}
}

// cacheKey identifies the input's content. It returns "" when the input
// cannot be fingerprinted, which disables caching for the call.
func (s specInput) cacheKey(ld *loader.Loader, src source) string {
	h := sha256.New()
	_, _ = fmt.Fprintf(h, "root\x00%s\x00", src.root)

	if s.File == "" && s.Dir == "" {
		files := s.Files
		if s.Content != "" {
			files = map[string]string{defaultInlineName: s.Content}
		}
		names := make([]string, 0, len(files))
		for name := range files {
			names = append(names, name)
		}
		slices.Sort(names)
		for _, name := range names {
			_, _ = fmt.Fprintf(h, "%s\x00%s\x00", name, files[name])
		}
		return "inline:" + hex.EncodeToString(h.Sum(nil))
	}

	names, err := ld.Discover(src.dir)
	if err != nil {
		return ""
	}
	for _, name := range names {
		info, err := src.fs.Stat(path.Join(src.dir, name))
		if err != nil {
			return ""
		}
		_, _ = fmt.Fprintf(h, "%s\x00%d\x00%d\x00", name, info.Size(), info.ModTime().UnixNano())
	}
	return "fs:" + src.fs.Root() + ":" + hex.EncodeToString(h.Sum(nil))
}

// memFS writes inline files into an in-memory filesystem rooted at "/".
func memFS(files map[string]string) (billy.Filesystem, error) {
	fs := memfs.New()
	for name, content := range files {
		if name == "" {
			return nil, fmt.Errorf("inline file name cannot be empty")
		}
		if err := util.WriteFile(fs, path.Clean("/"+name), []byte(content), 0o644); err != nil {
			return nil, fmt.Errorf("writing inline file %s: %w", name, err)
		}
	}
	return fs, nil
}
