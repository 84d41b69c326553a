package pathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComponentRef(t *testing.T) {
	tests := []struct {
		bucket string
		name   string
		oas2   bool
		want   string
	}{
		{BucketSchemas, "Pet", false, "#/components/schemas/Pet"},
		{BucketPathItems, "pets", false, "#/components/pathItems/pets"},
		{BucketDefinitions, "Pet", true, "#/definitions/Pet"},
		{BucketParameters, "limit", true, "#/parameters/limit"},
		{BucketSchemas, "a/b~c", false, "#/components/schemas/a~1b~0c"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ComponentRef(tt.bucket, tt.name, tt.oas2))
	}
	assert.Equal(t, "#/components/schemas/Pet", SchemaRef("Pet"))
	assert.Equal(t, "#/definitions/Pet", DefinitionRef("Pet"))
}

func TestComponentSlot(t *testing.T) {
	bucket, name, ok := ComponentSlot([]string{"components", "schemas", "Pet"}, false)
	assert.True(t, ok)
	assert.Equal(t, "schemas", bucket)
	assert.Equal(t, "Pet", name)

	_, _, ok = ComponentSlot([]string{"components", "schemas", "Pet", "properties"}, false)
	assert.False(t, ok)

	_, _, ok = ComponentSlot([]string{"components", "widgets", "Pet"}, false)
	assert.False(t, ok)

	bucket, _, ok = ComponentSlot([]string{"definitions", "Pet"}, true)
	assert.True(t, ok)
	assert.Equal(t, "definitions", bucket)
}

func TestInComponents(t *testing.T) {
	assert.True(t, InComponents([]string{"components", "schemas", "Pet", "properties", "id"}, false))
	assert.False(t, InComponents([]string{"paths", "/pets"}, false))
	assert.True(t, InComponents([]string{"definitions", "Pet", "properties"}, true))
	assert.False(t, InComponents([]string{"components", "schemas"}, false))
}

func TestIsBucket(t *testing.T) {
	assert.True(t, IsBucket("pathItems", false))
	assert.False(t, IsBucket("pathItems", true))
	assert.True(t, IsBucket("definitions", true))
	assert.False(t, IsBucket("definitions", false))
}

func TestPointerTokens(t *testing.T) {
	assert.Equal(t, "a~1b", EscapeToken("a/b"))
	assert.Equal(t, "a~0b", EscapeToken("a~b"))
	assert.Equal(t, "a/b", UnescapeToken("a~1b"))
	assert.Equal(t, "~1", UnescapeToken("~01"), "~0 must be decoded after ~1")
	assert.Equal(t, "application/json", UnescapeToken("application~1json"))
	assert.Equal(t, "my pet", UnescapeToken("my%20pet"))

	assert.Equal(t, "/paths/~1pets~1{id}/get", JoinPointer([]string{"paths", "/pets/{id}", "get"}))
	assert.Empty(t, JoinPointer(nil))

	assert.Equal(t, []string{"paths", "/pets/{id}", "get"}, SplitPointer("#/paths/~1pets~1{id}/get"))
	assert.Nil(t, SplitPointer("#"))
	assert.Nil(t, SplitPointer(""))
	assert.Equal(t, []string{"definitions", "Pet"}, SplitPointer("/definitions/Pet"))
}
