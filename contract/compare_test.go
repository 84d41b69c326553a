package contract

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bodyDoc wraps a request body schema into a 3.1 document.
func bodyDoc(schema string) string {
	return `openapi: 3.1.0
info: {title: T, version: "1"}
paths:
  /things:
    post:
      requestBody:
        content:
          application/json:
            schema: ` + strings.ReplaceAll(schema, "\n", "\n              ") + `
      responses:
        "200": {description: OK}
components:
  schemas:
    Base:
      type: object
      required: [id]
      properties:
        id: {type: integer}
`
}

func requestMismatches(t *testing.T, schema, body string, opts ...Option) []Mismatch {
	t.Helper()
	res := validate(t, bodyDoc(schema), []Transaction{post("/things", body)}, opts...)
	tr := res.Transactions["0"]
	require.True(t, tr.Matched)
	return tr.Mismatches
}

var detailed = WithDetailedBlobValidation(true)

// =============================================================================
// Scalar rules
// =============================================================================

func TestCompare_ExclusiveMinimum(t *testing.T) {
	ms := requestMismatches(t,
		`{type: object, properties: {objectType: {type: integer, exclusiveMinimum: 10}}}`,
		`{"objectType": 5}`, detailed)

	require.Len(t, ms, 1)
	assert.Equal(t, KindRangeViolation, ms[0].Kind)
	assert.Equal(t, LocationRequestBody, ms[0].Location)
	assert.Equal(t, "objectType", ms[0].Path)
	assert.Equal(t, `The request body property "objectType" must be > 10`, ms[0].Reason)
}

func TestCompare_Ranges(t *testing.T) {
	tests := []struct {
		schema string
		body   string
		reason string
	}{
		{`{type: integer, minimum: 1}`, `0`, "The request body must be >= 1"},
		{`{type: integer, maximum: 1000, exclusiveMaximum: true}`, `1000`, "The request body must be < 1000"},
		{`{type: number, maximum: 5}`, `5.5`, "The request body must be <= 5"},
		{`{type: integer, multipleOf: 3}`, `7`, "The request body must be multiple of 3"},
	}
	for _, tt := range tests {
		ms := requestMismatches(t, tt.schema, tt.body, detailed)
		require.Len(t, ms, 1, tt.schema)
		assert.Equal(t, KindRangeViolation, ms[0].Kind)
		assert.Equal(t, tt.reason, ms[0].Reason)
	}

	assert.Empty(t, requestMismatches(t, `{type: integer, exclusiveMinimum: 10}`, `11`, detailed))
}

func TestCompare_RequiredProperties(t *testing.T) {
	ms := requestMismatches(t, `{required: [id, name]}`, `{}`, detailed)

	require.Len(t, ms, 2)
	assert.Equal(t, []Kind{KindMissingRequiredProperty, KindMissingRequiredProperty}, kinds(ms))
	assert.Equal(t, "id", ms[0].Path)
	assert.Equal(t, "name", ms[1].Path)
	assert.Equal(t, `The request body must have required property "id"`, ms[0].Reason)

	nested := requestMismatches(t,
		`{type: object, properties: {owner: {type: object, required: [email]}}}`,
		`{"owner": {}}`, detailed)
	require.Len(t, nested, 1)
	assert.Equal(t, "owner.email", nested[0].Path)
	assert.Equal(t, `The request body property "owner" must have required property "email"`, nested[0].Reason)
}

func TestCompare_Types(t *testing.T) {
	t.Run("member of a type array", func(t *testing.T) {
		schema := `{type: object, properties: {tag: {type: [string, "null"]}}}`
		assert.Empty(t, requestMismatches(t, schema, `{"tag": null}`, detailed))
		assert.Empty(t, requestMismatches(t, schema, `{"tag": "x"}`, detailed))

		ms := requestMismatches(t, schema, `{"tag": 5}`, detailed)
		require.Len(t, ms, 1)
		assert.Equal(t, KindTypeMismatch, ms[0].Kind)
		assert.Equal(t, `The request body property "tag" must be string,null`, ms[0].Reason)
	})

	t.Run("integer accepts whole numbers only", func(t *testing.T) {
		schema := `{type: object, properties: {n: {type: integer}}}`
		assert.Empty(t, requestMismatches(t, schema, `{"n": 3.0}`, detailed))

		ms := requestMismatches(t, schema, `{"n": 3.5}`, detailed)
		require.Len(t, ms, 1)
		assert.Equal(t, `The request body property "n" must be integer`, ms[0].Reason)
	})

	t.Run("number accepts integers", func(t *testing.T) {
		assert.Empty(t, requestMismatches(t, `{type: number}`, `3`, detailed))
	})

	t.Run("numbers beyond float64 precision", func(t *testing.T) {
		integer := `{type: object, properties: {n: {type: integer}}}`
		assert.Empty(t, requestMismatches(t, integer, `{"n": 123456789012345678901234}`, detailed))
		assert.Empty(t, requestMismatches(t, `{type: number}`, `0.1000000000000000000001`, detailed))

		ms := requestMismatches(t, integer, `{"n": 1.0000000000000000000001}`, detailed)
		require.Len(t, ms, 1)
		assert.Equal(t, KindTypeMismatch, ms[0].Kind)
		assert.Equal(t, `The request body property "n" must be integer`, ms[0].Reason)

		ms = requestMismatches(t, `{type: integer, maximum: 1000}`, `123456789012345678901234`, detailed)
		require.Len(t, ms, 1)
		assert.Equal(t, KindRangeViolation, ms[0].Kind)
		assert.Equal(t, "The request body must be <= 1000", ms[0].Reason)
	})

	t.Run("type mismatch stops at the node", func(t *testing.T) {
		ms := requestMismatches(t, `{type: object, required: [id]}`, `[1]`, detailed)
		assert.Equal(t, []Kind{KindTypeMismatch}, kinds(ms))
	})
}

func TestDataType_NumberLiterals(t *testing.T) {
	tests := []struct {
		lit  string
		want string
	}{
		{"123456789012345678901234", "integer"},
		{"-123456789012345678901234", "integer"},
		{"0.1000000000000000000001", "number"},
		{"1.0000000000000000000001", "number"},
		{"1.5e30", "integer"},
		{"12abc", "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, dataType(json.Number(tt.lit)), tt.lit)
	}

	f, ok := toFloat(json.Number("123456789012345678901234"))
	require.True(t, ok)
	assert.InDelta(t, 1.2345678901234568e23, f, 1e8)
}

func TestCompare_EnumAndStrings(t *testing.T) {
	schema := `{type: object, properties: {
  kind: {type: string, enum: [cat, dog]},
  code: {type: string, minLength: 3, pattern: "^a"},
  id: {type: string, format: uuid},
  tags: {type: array, maxItems: 1, uniqueItems: true, items: {type: string}}}}`

	ms := requestMismatches(t, schema,
		`{"kind": "cow", "code": "bb", "id": "nope", "tags": ["a", "a", 3]}`, detailed)

	reasons := make([]string, len(ms))
	for i, m := range ms {
		reasons[i] = m.Reason
	}
	assert.Equal(t, []string{
		`The request body property "code" must NOT have fewer than 3 characters`,
		`The request body property "code" must match pattern "^a"`,
		`The request body property "id" must match format "uuid"`,
		`The request body property "kind" must be equal to one of the allowed values`,
		`The request body property "tags" must NOT have more than 1 items`,
		`The request body property "tags" must NOT have duplicate items`,
		`The request body property "tags[2]" must be string`,
	}, reasons)
	assert.Equal(t, KindEnumViolation, ms[3].Kind)
	assert.Equal(t, "tags[2]", ms[6].Path)
}

// =============================================================================
// Properties outside the schema
// =============================================================================

func TestCompare_MissingInSchema(t *testing.T) {
	schema := `{type: object, properties: {id: {type: integer}}}`
	body := `{"id": 1, "nickname": "rex"}`

	assert.Empty(t, requestMismatches(t, schema, body, detailed))

	ms := requestMismatches(t, schema, body, detailed, WithShowMissingInSchemaErrors(true))
	require.Len(t, ms, 1)
	assert.Equal(t, KindMissingInSchema, ms[0].Kind)
	assert.Equal(t, "nickname", ms[0].Path)
	assert.Equal(t, `The request body property "nickname" is not defined in the schema`, ms[0].Reason)

	closed := `{type: object, additionalProperties: false, properties: {id: {type: integer}}}`
	ms = requestMismatches(t, closed, body, detailed)
	require.Len(t, ms, 1)
	assert.Equal(t, `The request body property "nickname" is not allowed by the schema`, ms[0].Reason)

	typed := `{type: object, additionalProperties: {type: integer}}`
	ms = requestMismatches(t, typed, body, detailed)
	require.Len(t, ms, 1)
	assert.Equal(t, KindTypeMismatch, ms[0].Kind)
	assert.Equal(t, "nickname", ms[0].Path)
}

func TestCompare_UnresolvedVariables(t *testing.T) {
	schema := `{type: object, properties: {name: {type: string}, age: {type: integer}}}`
	body := `{"name": "{{petName}}", "age": "{{petAge}}"}`

	ms := requestMismatches(t, schema, body, detailed)
	assert.Equal(t, []Kind{KindUnresolvedVariable, KindUnresolvedVariable}, kinds(ms))
	assert.Equal(t, `The request body property "age" contains unresolved variable {{petAge}}`, ms[0].Reason)

	assert.Empty(t, requestMismatches(t, schema, body, detailed, WithIgnoreUnresolvedVariables(true)))

	raw := requestMismatches(t, schema, `{"age": {{petAge}}}`, detailed)
	assert.Equal(t, []Kind{KindUnresolvedVariable}, kinds(raw))
	assert.Empty(t, requestMismatches(t, schema, `{"age": {{petAge}}}`, WithIgnoreUnresolvedVariables(true)))
}

func TestCompare_InvalidBody(t *testing.T) {
	ms := requestMismatches(t, `{type: object}`, `{"a": `, detailed)
	require.Len(t, ms, 1)
	assert.Equal(t, KindInvalidBody, ms[0].Kind)
	assert.Equal(t, "The request body must be valid JSON", ms[0].Reason)
}

func TestCompare_PresenceOnly(t *testing.T) {
	schema := `{type: object, required: [id], properties: {id: {type: integer}, name: {type: string}}}`

	ms := requestMismatches(t, schema, `{"name": 5}`)
	assert.Equal(t, []Kind{KindMissingRequiredProperty}, kinds(ms), "nested values are not compared")

	ms = requestMismatches(t, schema, `[]`)
	assert.Equal(t, []Kind{KindTypeMismatch}, kinds(ms))

	ms = requestMismatches(t, `{allOf: [{$ref: "#/components/schemas/Base"}]}`, `{}`)
	assert.Equal(t, []Kind{KindMissingRequiredProperty}, kinds(ms))

	ms = requestMismatches(t, schema, `{"name": 5}`, detailed)
	assert.Equal(t, []Kind{KindMissingRequiredProperty, KindTypeMismatch}, kinds(ms))
}

// =============================================================================
// Composite schemas
// =============================================================================

func TestCompare_AllOf(t *testing.T) {
	schema := `{allOf: [{$ref: "#/components/schemas/Base"}, {type: object, properties: {name: {type: string}}}]}`

	assert.Empty(t, requestMismatches(t, schema, `{"id": 1, "name": "rex"}`, detailed, WithShowMissingInSchemaErrors(true)),
		"properties declared by sibling branches are not missing in schema")

	ms := requestMismatches(t, schema, `{"name": 1}`, detailed)
	assert.Equal(t, []Kind{KindMissingRequiredProperty, KindTypeMismatch}, kinds(ms))
}

func TestCompare_OneOf(t *testing.T) {
	schema := `{oneOf: [
  {type: object, required: [bark], properties: {bark: {type: boolean}}},
  {type: object, required: [meow], properties: {meow: {type: boolean}}}]}`

	assert.Empty(t, requestMismatches(t, schema, `{"bark": true}`, detailed))

	ms := requestMismatches(t, schema, `{"bark": "loud"}`, detailed)
	require.Len(t, ms, 1)
	assert.Equal(t, `The request body property "bark" must be boolean`, ms[0].Reason)

	ambiguous := requestMismatches(t, `{oneOf: [{type: integer}, {type: number}]}`, `5`, detailed)
	require.Len(t, ambiguous, 1)
	assert.Equal(t, KindInvalidValue, ambiguous[0].Kind)
	assert.Equal(t, "The request body must match exactly one schema in oneOf", ambiguous[0].Reason)
}

func TestCompare_AnyOf(t *testing.T) {
	schema := `{anyOf: [{type: string}, {type: integer, minimum: 1}]}`
	assert.Empty(t, requestMismatches(t, schema, `"x"`, detailed))

	ms := requestMismatches(t, schema, `0`, detailed)
	require.Len(t, ms, 1)
	assert.Equal(t, "The request body must be >= 1", ms[0].Reason, "the branch whose type matched is reported")
}

func TestCompare_Not(t *testing.T) {
	ms := requestMismatches(t, `{not: {type: string}}`, `"x"`, detailed)
	assert.Equal(t, []Kind{KindInvalidValue}, kinds(ms))
}

func TestCompare_RecursiveSchemaTerminates(t *testing.T) {
	src := `openapi: 3.1.0
info: {title: T, version: "1"}
paths:
  /things:
    post:
      requestBody:
        content:
          application/json:
            schema: {$ref: "#/components/schemas/Loop"}
      responses:
        "200": {description: OK}
components:
  schemas:
    Loop:
      allOf:
        - $ref: "#/components/schemas/Loop"
    Node:
      type: object
`
	res := validate(t, src, []Transaction{post("/things", `{"a": 1}`)}, detailed)
	assert.Empty(t, res.Transactions["0"].Mismatches)
}

// =============================================================================
// Suggested fixes
// =============================================================================

func TestCompare_SuggestedFixes(t *testing.T) {
	schema := `{type: object, required: [size], properties: {kind: {type: string, enum: [cat, dog]}, size: {type: integer, minimum: 3}}}`

	ms := requestMismatches(t, schema, `{"kind": "cow"}`, detailed)
	for _, m := range ms {
		assert.Nil(t, m.SuggestedFix)
	}

	ms = requestMismatches(t, schema, `{"kind": "cow"}`, detailed, WithSuggestAvailableFixes(true))
	require.Len(t, ms, 2)

	assert.Equal(t, KindMissingRequiredProperty, ms[0].Kind)
	require.NotNil(t, ms[0].SuggestedFix)
	assert.Equal(t, "size", ms[0].SuggestedFix.Key)
	assert.Equal(t, int64(3), ms[0].SuggestedFix.Suggested)

	assert.Equal(t, KindEnumViolation, ms[1].Kind)
	require.NotNil(t, ms[1].SuggestedFix)
	assert.Equal(t, &SuggestedFix{Key: "kind", Actual: "cow", Suggested: "cat"}, ms[1].SuggestedFix)

	custom := func(map[string]any) (any, bool) { return "custom", true }
	ms = requestMismatches(t, schema, `{"kind": "cow"}`, detailed, WithSuggestAvailableFixes(true), WithExampleFunc(custom))
	assert.Equal(t, "custom", ms[0].SuggestedFix.Suggested)
}

func TestDefaultExample(t *testing.T) {
	tests := []struct {
		schema map[string]any
		want   any
	}{
		{map[string]any{"enum": []any{"a", "b"}}, "a"},
		{map[string]any{"type": "string", "default": "d"}, "d"},
		{map[string]any{"type": "string", "example": "e"}, "e"},
		{map[string]any{"type": "integer", "exclusiveMinimum": 10}, int64(11)},
		{map[string]any{"type": "integer", "minimum": 3, "exclusiveMinimum": true}, int64(4)},
		{map[string]any{"type": "integer", "maximum": -2}, int64(-2)},
		{map[string]any{"type": "number"}, 0.0},
		{map[string]any{"type": "string", "minLength": 2}, "aa"},
		{map[string]any{"type": []any{"null", "boolean"}}, false},
		{map[string]any{"type": "array"}, []any{}},
	}
	for _, tt := range tests {
		got, ok := DefaultExample(tt.schema)
		assert.True(t, ok)
		assert.Equal(t, tt.want, got, "%v", tt.schema)
	}

	_, ok := DefaultExample(map[string]any{})
	assert.False(t, ok)
}
