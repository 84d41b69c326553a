package bundler

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/erraggy/oasweave/internal/pathutil"
	"github.com/erraggy/oasweave/oaserrors"
	"github.com/erraggy/oasweave/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookup(t *testing.T, doc map[string]any, pointer string) any {
	t.Helper()
	v, ok := parser.Lookup(doc, pathutil.SplitPointer(pointer))
	require.True(t, ok, "no node at %s", pointer)
	return v
}

const mediaSchema = "/paths/~1pets/get/responses/200/content/application~1json/schema"

// =============================================================================
// Relocation
// =============================================================================

func TestBundle_RelocatesExternalSchema(t *testing.T) {
	fs := newFileSet(t, map[string]string{
		"openapi.yaml":     petsRoot30,
		"schemas/pet.yaml": petSchema,
	})

	res, err := Bundle(context.Background(), fs)
	require.NoError(t, err)
	require.True(t, res.Success, res.Reason)

	assert.Equal(t, "openapi.yaml", res.RootFile)
	assert.Equal(t, parser.OASVersion30, res.Version)
	assert.Equal(t, "#/components/schemas/pet", lookup(t, res.Document, mediaSchema+"/$ref"))
	assert.Equal(t, "object", res.Components["schemas"]["pet"].(map[string]any)["type"])
	assert.Equal(t, []Relocation{{
		From:   "schemas/pet.yaml#",
		To:     "#/components/schemas/pet",
		Bucket: "schemas",
	}}, res.Relocations)

	// the file set is left untouched
	root, _ := fs.Get("openapi.yaml")
	v, _ := root.Lookup(mediaSchema + "/$ref")
	assert.Equal(t, "schemas/pet.yaml", v)
}

func TestBundle_NoDuplication(t *testing.T) {
	fs := newFileSet(t, map[string]string{
		"openapi.yaml": `openapi: 3.0.3
info: {title: Pets, version: "1"}
paths:
  /a:
    get:
      responses:
        "200":
          description: OK
          content:
            application/json:
              schema: {$ref: "pet.yaml"}
  /b:
    get:
      responses:
        "200":
          description: OK
          content:
            application/json:
              schema: {$ref: "./pet.yaml#"}
`,
		"pet.yaml": petSchema,
	})

	res, err := Bundle(context.Background(), fs)
	require.NoError(t, err)
	require.True(t, res.Success, res.Reason)

	assert.Len(t, res.Relocations, 1)
	assert.Equal(t, 1, res.Stats.Shared)
	a := lookup(t, res.Document, "/paths/~1a/get/responses/200/content/application~1json/schema/$ref")
	b := lookup(t, res.Document, "/paths/~1b/get/responses/200/content/application~1json/schema/$ref")
	assert.Equal(t, "#/components/schemas/pet", a)
	assert.Equal(t, a, b)
	assert.Len(t, res.Components["schemas"], 1)
}

func TestBundle_KeyCollisions(t *testing.T) {
	fs := newFileSet(t, map[string]string{
		"openapi.yaml": `openapi: 3.0.3
info: {title: Pets, version: "1"}
components:
  schemas:
    Pet:
      type: object
paths:
  /a:
    get:
      responses:
        "200":
          description: OK
          content:
            application/json:
              schema: {$ref: "a.yaml#/Pet"}
  /b:
    get:
      responses:
        "200":
          description: OK
          content:
            application/json:
              schema: {$ref: "b.yaml#/Pet"}
`,
		"a.yaml": "Pet:\n  type: string\n",
		"b.yaml": "Pet:\n  type: integer\n",
	})

	res, err := Bundle(context.Background(), fs)
	require.NoError(t, err)
	require.True(t, res.Success, res.Reason)

	schemas := res.Components["schemas"]
	assert.Equal(t, "object", schemas["Pet"].(map[string]any)["type"])
	assert.Equal(t, "string", schemas["a_Pet"].(map[string]any)["type"])
	assert.Equal(t, "integer", schemas["b_Pet"].(map[string]any)["type"])
}

func TestBundle_Idempotent(t *testing.T) {
	fs := newFileSet(t, map[string]string{
		"openapi.yaml":     petsRoot30,
		"schemas/pet.yaml": petSchema,
	})
	first, err := Bundle(context.Background(), fs)
	require.NoError(t, err)
	require.True(t, first.Success, first.Reason)

	again, err := parser.NewFileSetFromContent(map[string]any{"openapi.yaml": first.Document})
	require.NoError(t, err)
	second, err := Bundle(context.Background(), again)
	require.NoError(t, err)
	require.True(t, second.Success, second.Reason)

	assert.Empty(t, second.Relocations)
	assert.Equal(t, first.Document, second.Document)
}

func TestBundle_FillsComponentSlotInPlace(t *testing.T) {
	fs := newFileSet(t, map[string]string{
		"openapi.yaml": `openapi: 3.0.3
info: {title: Pets, version: "1"}
components:
  schemas:
    Pet: {$ref: "pet.yaml"}
paths:
  /pets:
    get:
      responses:
        "200":
          description: OK
          content:
            application/json:
              schema: {$ref: "#/components/schemas/Pet"}
`,
		"pet.yaml": petSchema,
	})

	res, err := Bundle(context.Background(), fs)
	require.NoError(t, err)
	require.True(t, res.Success, res.Reason)

	require.Len(t, res.Relocations, 1)
	assert.True(t, res.Relocations[0].InPlace)
	assert.Equal(t, "#/components/schemas/Pet", res.Relocations[0].To)
	assert.Equal(t, "object", lookup(t, res.Document, "/components/schemas/Pet/type"))
	assert.Equal(t, "#/components/schemas/Pet", lookup(t, res.Document, mediaSchema+"/$ref"))
}

func TestBundle_OAS20(t *testing.T) {
	fs := newFileSet(t, map[string]string{
		"swagger.yaml": `swagger: "2.0"
info: {title: Pets, version: "1"}
paths:
  /pets:
    get:
      responses:
        "200":
          description: OK
          schema: {$ref: "pet.yaml"}
        "404": {$ref: "common.yaml#/NotFound"}
`,
		"pet.yaml":    petSchema,
		"common.yaml": "NotFound:\n  description: Not found\n",
	})

	res, err := Bundle(context.Background(), fs)
	require.NoError(t, err)
	require.True(t, res.Success, res.Reason)

	assert.Equal(t, "#/definitions/pet", lookup(t, res.Document, "/paths/~1pets/get/responses/200/schema/$ref"))
	assert.Equal(t, "#/responses/NotFound", lookup(t, res.Document, "/paths/~1pets/get/responses/404/$ref"))
	assert.Contains(t, res.Components["definitions"], "pet")
	assert.Contains(t, res.Components["responses"], "NotFound")
}

func TestBundle_OAS31Property(t *testing.T) {
	fs := newFileSet(t, map[string]string{
		"openapi.yaml": `openapi: 3.1.0
info: {title: Pets, version: "1"}
components:
  schemas:
    Pet:
      type: object
      properties:
        tag: {$ref: "tag.yaml"}
`,
		"tag.yaml": "type: string\n",
	})

	res, err := Bundle(context.Background(), fs)
	require.NoError(t, err)
	require.True(t, res.Success, res.Reason)
	assert.Equal(t, "#/components/schemas/tag", lookup(t, res.Document, "/components/schemas/Pet/properties/tag/$ref"))
	assert.Equal(t, "string", lookup(t, res.Document, "/components/schemas/tag/type"))
}

// =============================================================================
// Cycles and inlining
// =============================================================================

func TestBundle_CycleKeptAsPointer(t *testing.T) {
	fs := newFileSet(t, map[string]string{
		"openapi.yaml": strings.Replace(petsRoot30, "schemas/pet.yaml", "a.yaml#/A", 1),
		"a.yaml": `A:
  type: object
  properties:
    b: {$ref: "b.yaml#/B"}
`,
		"b.yaml": `B:
  type: object
  properties:
    a: {$ref: "a.yaml#/A"}
`,
	})

	res, err := Bundle(context.Background(), fs)
	require.NoError(t, err)
	require.True(t, res.Success, res.Reason)

	assert.Equal(t, "#/components/schemas/A", lookup(t, res.Document, mediaSchema+"/$ref"))
	assert.Equal(t, "#/components/schemas/B", lookup(t, res.Document, "/components/schemas/A/properties/b/$ref"))
	assert.Equal(t, "#/components/schemas/A", lookup(t, res.Document, "/components/schemas/B/properties/a/$ref"))
	assert.Equal(t, []string{"#/components/schemas/A"}, res.CircularRefs)
	assert.Len(t, res.Relocations, 2)
}

func TestBundle_Inline(t *testing.T) {
	t.Run("unclassified target is copied", func(t *testing.T) {
		fs := newFileSet(t, map[string]string{
			"openapi.yaml": "openapi: 3.0.3\ninfo: {$ref: info.yaml}\npaths: {}\n",
			"info.yaml":    "title: Pets\nversion: \"1\"\n",
		})
		res, err := Bundle(context.Background(), fs)
		require.NoError(t, err)
		require.True(t, res.Success, res.Reason)
		assert.Equal(t, 1, res.Stats.Inlined)
		assert.Equal(t, "Pets", lookup(t, res.Document, "/info/title"))
		assert.Empty(t, res.Relocations)
	})

	t.Run("inline cycle fails", func(t *testing.T) {
		fs := newFileSet(t, map[string]string{
			"openapi.yaml": "openapi: 3.0.3\ninfo: {$ref: info.yaml}\npaths: {}\n",
			"info.yaml":    "title: Pets\nversion: \"1\"\nx-self: {$ref: info.yaml}\n",
		})
		res, err := Bundle(context.Background(), fs)
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Nil(t, res.Document)
		assert.ErrorIs(t, res.Failure, oaserrors.ErrCircularReference)
	})
}

// =============================================================================
// Failures reported as data
// =============================================================================

func TestBundle_DanglingReference(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		fs := newFileSet(t, map[string]string{
			"openapi.yaml": strings.Replace(petsRoot30, "schemas/pet.yaml", "missing.yaml#/X", 1),
		})
		res, err := Bundle(context.Background(), fs)
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.ErrorIs(t, res.Failure, oaserrors.ErrDanglingReference)

		var re *oaserrors.ReferenceError
		require.ErrorAs(t, res.Failure, &re)
		assert.Equal(t, "openapi.yaml", re.File)
		assert.Equal(t, mediaSchema, re.Origin)
		assert.Contains(t, res.Reason, "missing.yaml#/X")
	})

	t.Run("missing fragment in a nested file", func(t *testing.T) {
		fs := newFileSet(t, map[string]string{
			"openapi.yaml":      petsRoot30,
			"schemas/pet.yaml":  "type: object\nproperties:\n  owner: {$ref: 'user.yaml#/Nope'}\n",
			"schemas/user.yaml": "User: {type: object}\n",
		})
		res, err := Bundle(context.Background(), fs)
		require.NoError(t, err)
		assert.False(t, res.Success)

		var re *oaserrors.ReferenceError
		require.ErrorAs(t, res.Failure, &re)
		assert.True(t, re.IsDangling)
		assert.Equal(t, "schemas/pet.yaml", re.File)
		assert.Equal(t, "/properties/owner", re.Origin)
	})
}

func TestBundle_RootFailures(t *testing.T) {
	t.Run("multiple roots", func(t *testing.T) {
		fs := newFileSet(t, map[string]string{
			"a.yaml":           petsRoot30,
			"b.yaml":           petsRoot30,
			"schemas/pet.yaml": petSchema,
		})
		res, err := Bundle(context.Background(), fs)
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, "More than one root file not supported.", res.Reason)
		assert.ErrorIs(t, res.Failure, oaserrors.ErrMultipleRoots)
	})

	t.Run("ambiguous root", func(t *testing.T) {
		fs := newFileSet(t, map[string]string{
			"a.yaml": "x: {$ref: b.yaml}\n",
			"b.yaml": "y: {$ref: a.yaml}\n",
		})
		res, err := Bundle(context.Background(), fs)
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.True(t, strings.HasPrefix(res.Reason, "Unable to determine the root file"))
	})

	t.Run("structural reason", func(t *testing.T) {
		fs := newFileSet(t, map[string]string{
			"openapi.yaml": "openapi: 3.0.3\npaths: {}\n",
		})
		res, err := Bundle(context.Background(), fs)
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, parser.ReasonMissingInfo, res.Reason)
		assert.ErrorIs(t, res.Failure, oaserrors.ErrValidation)
	})

	t.Run("node limit", func(t *testing.T) {
		fs := newFileSet(t, map[string]string{
			"openapi.yaml":     petsRoot30,
			"schemas/pet.yaml": petSchema,
		})
		res, err := Bundle(context.Background(), fs, WithMaxNodes(3))
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.ErrorIs(t, res.Failure, oaserrors.ErrResourceLimit)
	})
}

func TestBundle_Warnings(t *testing.T) {
	t.Run("unreachable file with hint", func(t *testing.T) {
		fs := newFileSet(t, map[string]string{
			"openapi.yaml":     petsRoot30,
			"schemas/pet.yaml": petSchema,
			"extra.yaml":       "type: string\n",
		}, parser.WithRootHints("openapi.yaml"))
		res, err := Bundle(context.Background(), fs)
		require.NoError(t, err)
		require.True(t, res.Success, res.Reason)
		assert.Contains(t, res.Warnings, "file extra.yaml is not reachable from root openapi.yaml")
	})

	t.Run("remote reference", func(t *testing.T) {
		fs := newFileSet(t, map[string]string{
			"openapi.yaml": strings.Replace(petsRoot30, "schemas/pet.yaml", "https://example.com/pet.json", 1),
		})
		res, err := Bundle(context.Background(), fs)
		require.NoError(t, err)
		require.True(t, res.Success, res.Reason)
		assert.Contains(t, res.Warnings, "remote reference https://example.com/pet.json left in place")
		assert.Equal(t, "https://example.com/pet.json", lookup(t, res.Document, mediaSchema+"/$ref"))
	})

	t.Run("verification", func(t *testing.T) {
		fs := newFileSet(t, map[string]string{
			"openapi.yaml":     petsRoot30,
			"schemas/pet.yaml": petSchema,
		})
		res, err := Bundle(context.Background(), fs, WithVerify(true))
		require.NoError(t, err)
		require.True(t, res.Success, res.Reason)
		assert.Empty(t, res.Warnings)
	})

	t.Run("verification skipped for 3.1", func(t *testing.T) {
		fs := newFileSet(t, map[string]string{
			"openapi.yaml": "openapi: 3.1.0\ninfo: {title: T, version: \"1\"}\ncomponents: {}\n",
		})
		res, err := Bundle(context.Background(), fs, WithVerify(true))
		require.NoError(t, err)
		require.True(t, res.Success, res.Reason)
		assert.Equal(t, []string{"verification skipped: only OAS 3.0 documents are verified"}, res.Warnings)
	})
}

// =============================================================================
// Go errors
// =============================================================================

func TestBundle_Errors(t *testing.T) {
	fs := newFileSet(t, map[string]string{
		"openapi.yaml":     petsRoot30,
		"schemas/pet.yaml": petSchema,
	})

	t.Run("invalid option", func(t *testing.T) {
		res, err := Bundle(context.Background(), fs, WithMaxNodes(0))
		assert.Nil(t, res)
		assert.ErrorIs(t, err, oaserrors.ErrConfig)
	})

	t.Run("nil classifier", func(t *testing.T) {
		_, err := Bundle(context.Background(), fs, WithClassifier(nil))
		assert.ErrorIs(t, err, oaserrors.ErrConfig)
	})

	t.Run("nil file set", func(t *testing.T) {
		_, err := Bundle(context.Background(), nil)
		assert.ErrorIs(t, err, oaserrors.ErrConfig)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		res, err := Bundle(ctx, fs)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestBundle_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := parser.NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	fs := newFileSet(t, map[string]string{
		"openapi.yaml":     petsRoot30,
		"schemas/pet.yaml": petSchema,
	})
	res, err := Bundle(context.Background(), fs, WithLogger(logger))
	require.NoError(t, err)
	require.True(t, res.Success)

	out := buf.String()
	assert.Contains(t, out, "relocated definition")
	assert.Contains(t, out, "root=openapi.yaml")
}
