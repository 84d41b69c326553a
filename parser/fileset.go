package parser

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/erraggy/oasweave/oaserrors"
	"go.yaml.in/yaml/v4"
)

// FileSet is the input to multi-file resolution: a mapping from file name to
// its decoded node tree, plus optional root hints.
//
// A FileSet is immutable once built. Engines read it and never write to it;
// callers that re-run on changed files build a new FileSet.
type FileSet struct {
	files     map[string]*Document
	names     []string
	rootHints []string
}

// NewFileSet decodes raw YAML or JSON contents into a FileSet.
// Keys are file names; they are cleaned to slash-separated relative paths.
func NewFileSet(files map[string][]byte, opts ...Option) (*FileSet, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("parser: invalid options: %w", err)
	}
	if len(files) > cfg.maxFiles {
		return nil, &oaserrors.ResourceLimitError{
			ResourceType: "file_count",
			Limit:        int64(cfg.maxFiles),
			Actual:       int64(len(files)),
		}
	}

	decoded := make(map[string]any, len(files))
	for name, data := range files {
		if int64(len(data)) > cfg.maxFileSize {
			return nil, &oaserrors.ResourceLimitError{
				ResourceType: "file_size",
				Limit:        cfg.maxFileSize,
				Actual:       int64(len(data)),
				Message:      name,
			}
		}
		content, err := Decode(name, data)
		if err != nil {
			return nil, err
		}
		decoded[name] = content
		cfg.logger.Debug("decoded file", "file", name, "bytes", len(data))
	}
	return newFileSet(decoded, cfg)
}

// NewFileSetFromContent builds a FileSet from already decoded node trees.
// Content is normalized so that every object is a map[string]any.
func NewFileSetFromContent(contents map[string]any, opts ...Option) (*FileSet, error) {
	cfg, err := applyOptions(opts...)
	if err != nil {
		return nil, fmt.Errorf("parser: invalid options: %w", err)
	}
	if len(contents) > cfg.maxFiles {
		return nil, &oaserrors.ResourceLimitError{
			ResourceType: "file_count",
			Limit:        int64(cfg.maxFiles),
			Actual:       int64(len(contents)),
		}
	}
	normalized := make(map[string]any, len(contents))
	for name, c := range contents {
		normalized[name] = Normalize(c)
	}
	return newFileSet(normalized, cfg)
}

func newFileSet(contents map[string]any, cfg *setConfig) (*FileSet, error) {
	if len(contents) == 0 {
		return nil, &oaserrors.ConfigError{Option: "files", Message: "file set is empty"}
	}
	fs := &FileSet{
		files:     make(map[string]*Document, len(contents)),
		rootHints: slices.Clone(cfg.rootHints),
	}
	for name, content := range contents {
		clean := CleanName(name)
		if _, dup := fs.files[clean]; dup {
			return nil, &oaserrors.ConfigError{Option: "files", Value: name, Message: "duplicate file name after cleaning"}
		}
		fs.files[clean] = NewDocument(clean, content)
		fs.names = append(fs.names, clean)
	}
	slices.Sort(fs.names)
	for _, hint := range fs.rootHints {
		if _, ok := fs.files[hint]; !ok {
			return nil, &oaserrors.ConfigError{Option: "root-hint", Value: hint, Message: "file is not part of the file set"}
		}
	}
	return fs, nil
}

// Names returns the file names in sorted order.
func (fs *FileSet) Names() []string {
	return slices.Clone(fs.names)
}

// Len returns the number of files.
func (fs *FileSet) Len() int {
	return len(fs.names)
}

// Get returns the document for a file name.
func (fs *FileSet) Get(name string) (*Document, bool) {
	d, ok := fs.files[name]
	return d, ok
}

// RootHints returns the declared root files, if any.
func (fs *FileSet) RootHints() []string {
	return slices.Clone(fs.rootHints)
}

// Decode parses YAML or JSON content into a normalized node tree.
func Decode(name string, data []byte) (any, error) {
	var content any
	if err := yaml.Unmarshal(data, &content); err != nil {
		line, col := errorPosition(err)
		return nil, &oaserrors.ParseError{Path: name, Line: line, Column: col, Message: "failed to decode file", Cause: err}
	}
	if content == nil {
		return nil, &oaserrors.ParseError{Path: name, Message: "file is empty"}
	}
	return Normalize(content), nil
}

// markPattern matches the positions yaml prints in syntax errors; the last
// match is the problem mark, earlier ones give context.
var markPattern = regexp.MustCompile(`line (\d+)(?:, column (\d+))?`)

// errorPosition returns the 1-based line and column of a yaml error, or
// zeros when the error carries no position. Syntax errors only expose their
// mark through the message.
func errorPosition(err error) (line, col int) {
	var le *yaml.LoadError
	if errors.As(err, &le) {
		return le.Line, le.Column
	}
	marks := markPattern.FindAllStringSubmatch(err.Error(), -1)
	if len(marks) == 0 {
		return 0, 0
	}
	last := marks[len(marks)-1]
	line, _ = strconv.Atoi(last[1])
	if last[2] != "" {
		col, _ = strconv.Atoi(last[2])
	}
	return line, col
}

// Normalize converts YAML-decoded trees so that every object is a
// map[string]any. Non-string keys such as unquoted status codes are rendered
// with fmt, timestamps become strings.
func Normalize(v any) any {
	switch n := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, child := range n {
			out[k] = Normalize(child)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(n))
		for k, child := range n {
			out[fmt.Sprint(k)] = Normalize(child)
		}
		return out
	case []any:
		out := make([]any, len(n))
		for i, child := range n {
			out[i] = Normalize(child)
		}
		return out
	case time.Time:
		if n.Hour() == 0 && n.Minute() == 0 && n.Second() == 0 && n.Nanosecond() == 0 {
			return n.Format(time.DateOnly)
		}
		return n.Format(time.RFC3339Nano)
	default:
		return v
	}
}

// CleanName turns a file name into the slash-separated relative form used as
// the FileSet key.
func CleanName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Clean(name)
	return strings.TrimPrefix(name, "./")
}
