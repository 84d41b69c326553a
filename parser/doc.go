// Package parser builds the document graph that the bundler and the contract
// engine operate on.
//
// A [FileSet] maps cleaned file names to decoded [Document] node trees. Nodes
// are plain Go values: map[string]any for objects, []any for arrays, and
// scalars. Edges are $ref strings; they are parsed into [Pointer] values that
// name a target file and a JSON Pointer fragment, so a node is addressed by
// the stable key "file#fragment".
//
// # Building a file set
//
//	fs, err := parser.NewFileSet(map[string][]byte{
//	    "openapi.yaml":     rootBytes,
//	    "schemas/pet.yaml": petBytes,
//	})
//
// YAML and JSON are both accepted. Objects with non-string keys, such as
// unquoted response codes, are normalized to string keys.
//
// # Structural validation
//
// [ValidateStructure] checks the top-level keys required by a document's
// declared version and reports failures as *oaserrors.ValidationError values
// whose messages are user-facing reasons.
//
// # Pointers
//
//	p := parser.ParseRef("../common.yaml#/components/schemas/Error", "api/openapi.yaml")
//	// p.File == "common.yaml", p.Fragment == "/components/schemas/Error"
package parser
