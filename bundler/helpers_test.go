package bundler

import (
	"testing"

	"github.com/erraggy/oasweave/parser"
	"github.com/stretchr/testify/require"
)

func newFileSet(t *testing.T, files map[string]string, opts ...parser.Option) *parser.FileSet {
	t.Helper()
	raw := make(map[string][]byte, len(files))
	for name, content := range files {
		raw[name] = []byte(content)
	}
	fs, err := parser.NewFileSet(raw, opts...)
	require.NoError(t, err)
	return fs
}

const petsRoot30 = `openapi: 3.0.3
info:
  title: Pets
  version: "1"
paths:
  /pets:
    get:
      responses:
        "200":
          description: OK
          content:
            application/json:
              schema:
                $ref: schemas/pet.yaml
`

const petSchema = `type: object
properties:
  name:
    type: string
`
