// Copyright 2024 Erraggy
// SPDX-License-Identifier: MIT

package pathutil

import "strings"

// Component bucket names.
const (
	BucketSchemas         = "schemas"
	BucketResponses       = "responses"
	BucketParameters      = "parameters"
	BucketExamples        = "examples"
	BucketRequestBodies   = "requestBodies"
	BucketHeaders         = "headers"
	BucketSecuritySchemes = "securitySchemes"
	BucketLinks           = "links"
	BucketCallbacks       = "callbacks"
	BucketPathItems       = "pathItems"

	// BucketDefinitions is the OAS 2.0 schema bucket.
	BucketDefinitions = "definitions"
	// BucketSecurityDefinitions is the OAS 2.0 security scheme bucket.
	BucketSecurityDefinitions = "securityDefinitions"
)

// OAS 2.0 reference prefixes
const (
	RefPrefixDefinitions         = "#/definitions/"
	RefPrefixParameters          = "#/parameters/"
	RefPrefixResponses           = "#/responses/"
	RefPrefixSecurityDefinitions = "#/securityDefinitions/"
)

// RefPrefixComponents prefixes every OAS 3.x component reference.
const RefPrefixComponents = "#/components/"

// Buckets3 lists the OAS 3.x component buckets in document order.
var Buckets3 = []string{
	BucketSchemas, BucketResponses, BucketParameters, BucketExamples, BucketRequestBodies,
	BucketHeaders, BucketSecuritySchemes, BucketLinks, BucketCallbacks, BucketPathItems,
}

// Buckets2 lists the OAS 2.0 root-level reusable buckets.
var Buckets2 = []string{
	BucketDefinitions, BucketParameters, BucketResponses, BucketSecurityDefinitions,
}

// IsBucket reports whether name is a component bucket for the given layout.
func IsBucket(name string, oas2 bool) bool {
	buckets := Buckets3
	if oas2 {
		buckets = Buckets2
	}
	for _, b := range buckets {
		if b == name {
			return true
		}
	}
	return false
}

// ComponentContainer returns the pointer tokens of the map holding a bucket:
// ["components", bucket] for OAS 3.x and [bucket] for OAS 2.0.
func ComponentContainer(bucket string, oas2 bool) []string {
	if oas2 {
		return []string{bucket}
	}
	return []string{"components", bucket}
}

// ComponentRef builds the reference to name within bucket.
// The name is escaped as a JSON Pointer token.
func ComponentRef(bucket, name string, oas2 bool) string {
	if oas2 {
		return "#/" + bucket + "/" + EscapeToken(name)
	}
	return RefPrefixComponents + bucket + "/" + EscapeToken(name)
}

// SchemaRef builds "#/components/schemas/{name}" (OAS 3.x).
func SchemaRef(name string) string {
	return ComponentRef(BucketSchemas, name, false)
}

// DefinitionRef builds "#/definitions/{name}" (OAS 2.0).
func DefinitionRef(name string) string {
	return ComponentRef(BucketDefinitions, name, true)
}

// ComponentSlot reports whether the pointer tokens address exactly one
// component entry, returning its bucket and name.
func ComponentSlot(tokens []string, oas2 bool) (bucket, name string, ok bool) {
	if oas2 {
		if len(tokens) == 2 && IsBucket(tokens[0], true) {
			return tokens[0], tokens[1], true
		}
		return "", "", false
	}
	if len(tokens) == 3 && tokens[0] == "components" && IsBucket(tokens[1], false) {
		return tokens[1], tokens[2], true
	}
	return "", "", false
}

// InComponents reports whether the pointer tokens lie inside the reusable
// component area of the given layout.
func InComponents(tokens []string, oas2 bool) bool {
	if oas2 {
		return len(tokens) >= 2 && IsBucket(tokens[0], true)
	}
	return len(tokens) >= 3 && tokens[0] == "components" && IsBucket(tokens[1], false)
}

// IsLocalRef reports whether ref points into the document it occurs in.
func IsLocalRef(ref string) bool {
	return strings.HasPrefix(ref, "#")
}
