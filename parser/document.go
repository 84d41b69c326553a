package parser

import (
	"strconv"

	"github.com/erraggy/oasweave/oaserrors"
)

// Structural validation reasons.
const (
	ReasonMissingVersion = "Specification must contain a semantic version number of the OAS specification"
	ReasonMissingInfo    = "Specification must contain an Info Object for the meta-data of the API"
	ReasonMissingPaths   = "Specification must contain Paths Object for the available operational paths"
	ReasonUnsupported    = "Specification version is not supported"
)

// Document is one decoded file of a file set.
type Document struct {
	// Name is the cleaned file name within the set
	Name string
	// Content is the decoded node tree; objects are map[string]any
	Content any
	// Version is the declared specification series, Unknown for fragment files
	Version OASVersion
	// VersionString is the raw declared version
	VersionString string
}

// NewDocument wraps decoded content and detects its version.
func NewDocument(name string, content any) *Document {
	v, s := DetectVersion(content)
	return &Document{Name: name, Content: content, Version: v, VersionString: s}
}

// Object returns the top-level object, or nil if the file is not an object.
func (d *Document) Object() map[string]any {
	m, _ := d.Content.(map[string]any)
	return m
}

// IsSpec reports whether the file declares "openapi" or "swagger".
func (d *Document) IsSpec() bool {
	return d.VersionString != ""
}

// Lookup resolves a fragment ("/a/b") within the document.
func (d *Document) Lookup(fragment string) (any, bool) {
	return Lookup(d.Content, SplitFragment(fragment))
}

// ValidateStructure checks the top-level keys required by the declared
// version. It returns nil or a *oaserrors.ValidationError whose message is
// suitable as a user-facing reason.
func ValidateStructure(d *Document) error {
	obj := d.Object()
	if obj == nil || d.VersionString == "" {
		return &oaserrors.ValidationError{Path: d.Name, Field: "openapi", Message: ReasonMissingVersion}
	}
	if !d.Version.IsValid() {
		return &oaserrors.ValidationError{Path: d.Name, Field: "openapi", Value: d.VersionString, Message: ReasonUnsupported}
	}
	if _, ok := obj["info"].(map[string]any); !ok {
		return &oaserrors.ValidationError{Path: d.Name, Field: "info", Message: ReasonMissingInfo}
	}
	if d.Version == OASVersion20 || d.Version == OASVersion30 {
		if _, ok := obj["paths"].(map[string]any); !ok {
			return &oaserrors.ValidationError{Path: d.Name, Field: "paths", Message: ReasonMissingPaths}
		}
		return nil
	}
	// 3.1 and later accept paths, components or webhooks.
	for _, key := range []string{"paths", "components", "webhooks"} {
		if _, ok := obj[key].(map[string]any); ok {
			return nil
		}
	}
	return &oaserrors.ValidationError{Path: d.Name, Field: "paths", Message: ReasonMissingPaths}
}

// Lookup walks node by tokens: object keys for maps, decimal indices for arrays.
func Lookup(node any, tokens []string) (any, bool) {
	cur := node
	for _, tok := range tokens {
		switch n := cur.(type) {
		case map[string]any:
			next, ok := n[tok]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(tok)
			if err != nil || i < 0 || i >= len(n) {
				return nil, false
			}
			cur = n[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// Clone deep-copies a node tree of maps, slices and scalars.
func Clone(node any) any {
	switch n := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, v := range n {
			out[k] = Clone(v)
		}
		return out
	case []any:
		out := make([]any, len(n))
		for i, v := range n {
			out[i] = Clone(v)
		}
		return out
	default:
		return node
	}
}
