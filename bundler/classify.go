package bundler

import (
	"slices"

	"github.com/erraggy/oasweave/internal/pathutil"
	"github.com/erraggy/oasweave/parser"
)

// Placement says what the bundler does with the target of a $ref.
type Placement int

const (
	// PlaceInline copies the target over the $ref object.
	PlaceInline Placement = iota
	// PlaceRelocate moves the target into a component bucket under a generated key.
	PlaceRelocate
	// PlaceInPlace fills the component slot holding the $ref with the target.
	PlaceInPlace
)

func (p Placement) String() string {
	switch p {
	case PlaceRelocate:
		return "relocate"
	case PlaceInPlace:
		return "in-place"
	default:
		return "inline"
	}
}

// Classification is the decision for one $ref occurrence.
type Classification struct {
	Placement Placement
	// Path is the classification path; Path[0] is the bucket.
	// For PlaceInPlace it is [bucket, name]. Empty for PlaceInline.
	Path []string
}

// Bucket returns the target bucket, or "" when the target stays inline.
func (c Classification) Bucket() string {
	if len(c.Path) == 0 {
		return ""
	}
	return c.Path[0]
}

// Classifier decides where the target of a $ref belongs once bundled, from
// the trace of container keys leading to the $ref occurrence. One variant
// exists per specification series.
type Classifier interface {
	Classify(trace []string) Classification
	// OAS2 reports whether buckets live at the document root (Swagger 2.0)
	// rather than under "components".
	OAS2() bool
}

// ClassifierFor returns the strategy for a specification series.
func ClassifierFor(v parser.OASVersion) Classifier {
	switch v {
	case parser.OASVersion20:
		return oas20Classifier
	case parser.OASVersion30:
		return oas30Classifier
	default:
		return OAS31Classifier{}
	}
}

func inPlace(trace []string, oas2 bool) (Classification, bool) {
	bucket, name, ok := pathutil.ComponentSlot(trace, oas2)
	if !ok {
		return Classification{}, false
	}
	return Classification{Placement: PlaceInPlace, Path: []string{bucket, name}}, true
}

// OAS31Classifier implements the lookahead walk used for 3.1 documents,
// where components may be synthesized from any nested location.
//
// The trace is walked from the closest container outwards. Each key is first
// rewritten by the structural rules (allOf, items, schema... become schemas;
// example becomes examples; requestBody becomes requestBodies). The key's
// container then forces the bucket, in this priority: links, paths and
// webhooks (pathItems), properties (schemas). Next, a key naming a bucket
// ends the walk. Last come responses, headers and callbacks containers.
// A walk that never reaches a bucket leaves the target inline.
type OAS31Classifier struct{}

var structural31 = map[string]string{
	"allOf":                "schemas",
	"oneOf":                "schemas",
	"anyOf":                "schemas",
	"not":                  "schemas",
	"additionalProperties": "schemas",
	"items":                "schemas",
	"schema":               "schemas",
	"example":              "examples",
	"requestBody":          "requestBodies",
}

type lookahead struct {
	container string
	bucket    string
}

var (
	leadingLookahead = []lookahead{
		{"links", pathutil.BucketLinks},
		{"paths", pathutil.BucketPathItems},
		{"webhooks", pathutil.BucketPathItems},
		{"properties", pathutil.BucketSchemas},
	}
	trailingLookahead = []lookahead{
		{"responses", pathutil.BucketResponses},
		{"headers", pathutil.BucketHeaders},
		{"callbacks", pathutil.BucketCallbacks},
	}
)

// OAS2 implements Classifier.
func (OAS31Classifier) OAS2() bool { return false }

// Classify implements Classifier.
func (OAS31Classifier) Classify(trace []string) Classification {
	if c, ok := inPlace(trace, false); ok {
		return c
	}

	rev := slices.Clone(trace)
	slices.Reverse(rev)

	acc := make([]string, 0, len(rev))
	for i, key := range rev {
		item := key
		if b, ok := structural31[key]; ok {
			item = b
		}
		container := ""
		if i+1 < len(rev) {
			container = rev[i+1]
		}

		if b, ok := matchLookahead(leadingLookahead, container); ok {
			return matched(acc, b)
		}
		if pathutil.IsBucket(item, false) {
			return matched(acc, item)
		}
		if b, ok := matchLookahead(trailingLookahead, container); ok {
			return matched(acc, b)
		}
		acc = append(acc, item)
	}
	return Classification{}
}

func matchLookahead(rules []lookahead, container string) (string, bool) {
	for _, r := range rules {
		if r.container == container {
			return r.bucket, true
		}
	}
	return "", false
}

func matched(acc []string, bucket string) Classification {
	path := append(acc, bucket)
	slices.Reverse(path)
	return Classification{Placement: PlaceRelocate, Path: path}
}

// directClassifier maps the immediate slot of a $ref onto a bucket. It serves
// 2.0 and 3.0 documents, whose reusable definitions only live under fixed
// lookup paths.
type directClassifier struct {
	oas2 bool
	// schemaBucket receives children of "properties".
	schemaBucket string
	// slots maps the key holding the $ref onto a bucket.
	slots map[string]string
	// children maps the container of the $ref onto a bucket.
	children map[string]string
}

var oas30Classifier = &directClassifier{
	schemaBucket: pathutil.BucketSchemas,
	slots: map[string]string{
		"schema":               pathutil.BucketSchemas,
		"items":                pathutil.BucketSchemas,
		"not":                  pathutil.BucketSchemas,
		"additionalProperties": pathutil.BucketSchemas,
		"requestBody":          pathutil.BucketRequestBodies,
	},
	children: map[string]string{
		"allOf":      pathutil.BucketSchemas,
		"oneOf":      pathutil.BucketSchemas,
		"anyOf":      pathutil.BucketSchemas,
		"parameters": pathutil.BucketParameters,
		"responses":  pathutil.BucketResponses,
		"headers":    pathutil.BucketHeaders,
		"examples":   pathutil.BucketExamples,
		"links":      pathutil.BucketLinks,
		"callbacks":  pathutil.BucketCallbacks,
	},
}

var oas20Classifier = &directClassifier{
	oas2:         true,
	schemaBucket: pathutil.BucketDefinitions,
	slots: map[string]string{
		"schema":               pathutil.BucketDefinitions,
		"items":                pathutil.BucketDefinitions,
		"additionalProperties": pathutil.BucketDefinitions,
	},
	children: map[string]string{
		"allOf":      pathutil.BucketDefinitions,
		"parameters": pathutil.BucketParameters,
		"responses":  pathutil.BucketResponses,
	},
}

// OAS2 implements Classifier.
func (d *directClassifier) OAS2() bool { return d.oas2 }

// Classify implements Classifier.
func (d *directClassifier) Classify(trace []string) Classification {
	if c, ok := inPlace(trace, d.oas2); ok {
		return c
	}
	if len(trace) == 0 {
		return Classification{}
	}
	last := trace[len(trace)-1]
	container := ""
	if len(trace) > 1 {
		container = trace[len(trace)-2]
	}

	bucket := ""
	switch {
	case container == "properties" || container == "patternProperties":
		bucket = d.schemaBucket
	case d.slots[last] != "":
		bucket = d.slots[last]
	case d.children[container] != "":
		bucket = d.children[container]
	default:
		return Classification{}
	}
	return Classification{Placement: PlaceRelocate, Path: []string{bucket}}
}
