// Package cliutil provides output helpers shared by the command line and the
// MCP server.
package cliutil

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"go.yaml.in/yaml/v4"
)

// Output formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Writef writes formatted output to the writer.
// If the write fails, it logs to stderr (useful for debugging).
func Writef(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "write error: %v\n", err)
	}
}

// Marshal renders v as indented JSON or as YAML. Map keys come out sorted in
// both formats, so a bundled document renders byte-identically run to run.
func Marshal(v any, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling to json: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML, "":
		data, err := yaml.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshaling to yaml: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("invalid output format %q: must be yaml or json", format)
	}
}

// FormatFor picks the output format from a file extension, falling back to
// def when the extension is not recognized.
func FormatFor(name, def string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	return def
}
