package bundler

import (
	"errors"

	"github.com/erraggy/oasweave/oaserrors"
	"github.com/erraggy/oasweave/parser"
)

// Result is the outcome of bundling one file set.
//
// Malformed input is reported here rather than as a Go error: Success is
// false, Reason holds a user-facing message and Failure the typed error
// from package oaserrors. Document is nil on failure; partial output is
// never returned.
type Result struct {
	Success bool
	Reason  string
	Failure error

	// RootFile is the entry point the bundle was built from
	RootFile string
	// Version is the root document's specification series
	Version parser.OASVersion

	// Document is the canonical single-file document
	Document map[string]any
	// Components maps bucket to key to definition. The maps are the ones
	// held by Document, not copies.
	Components map[string]map[string]any

	// Relocations lists every target moved into the component namespace,
	// in discovery order
	Relocations []Relocation
	// CircularRefs lists canonical refs that close a cycle
	CircularRefs []string
	// Warnings are non-fatal findings (unreachable files, remote refs,
	// verification problems)
	Warnings []string

	Stats Stats
}

// Relocation records one target moved into the component namespace.
type Relocation struct {
	// From is the target as "file#fragment"
	From string `json:"from"`
	// To is the canonical intra-document ref
	To string `json:"to"`
	// Bucket is the component bucket
	Bucket string `json:"bucket"`
	// InPlace is true when the target filled the component slot that referenced it
	InPlace bool `json:"inPlace,omitempty"`
}

// Stats counts bundling work.
type Stats struct {
	NodesVisited int `json:"nodesVisited"`
	Relocated    int `json:"relocated"`
	Shared       int `json:"shared"`
	Inlined      int `json:"inlined"`
}

func failed(err error) *Result {
	reason := err.Error()
	var re *oaserrors.RootError
	if errors.As(err, &re) && !re.Multiple {
		reason = re.Detail()
	}
	return &Result{Reason: reason, Failure: err}
}
