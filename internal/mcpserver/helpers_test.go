package mcpserver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const petsRoot = `openapi: 3.0.3
info: {title: Pets, version: "1"}
paths:
  /pets:
    get:
      responses:
        "200":
          description: OK
  /pets/{id}:
    get:
      parameters:
        - {name: id, in: path, required: true, schema: {type: integer}}
      responses:
        "200":
          description: OK
          content:
            application/json:
              schema: {$ref: "schemas/pet.yaml"}
`

const petSchema = `type: object
required: [id, name]
properties:
  id: {type: integer}
  name: {type: string}
`

// petsFiles is the two-file pets document as an inline files map.
func petsFiles() map[string]string {
	return map[string]string{
		"openapi.yaml":     petsRoot,
		"schemas/pet.yaml": petSchema,
	}
}

// writeFiles writes files below a fresh temp dir and returns the dir.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return dir
}

// resetCache empties the spec cache before and after a test.
func resetCache(t *testing.T) {
	t.Helper()
	specCache.Purge()
	t.Cleanup(specCache.Purge)
}
