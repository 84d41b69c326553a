package bundler

import (
	"slices"

	"github.com/erraggy/oasweave/oaserrors"
	"github.com/erraggy/oasweave/parser"
)

// RootInfo describes the entry point of a file set.
type RootInfo struct {
	// Root is the selected root file
	Root string
	// FromHint is true when the root was declared rather than detected
	FromHint bool
	// Unreachable lists files no pointer chain from Root reaches
	Unreachable []string
}

// DetectRoot selects the single file that no other file points to.
//
// It fails with a *oaserrors.RootError when every file is referenced by
// another one (ambiguous) or when more than one file is unreferenced
// (multiple). A single root hint overrides detection; several hints are
// treated as multiple roots. The result does not depend on map iteration
// order.
func DetectRoot(fs *parser.FileSet) (*RootInfo, error) {
	edges := fs.FileEdges()

	if hints := fs.RootHints(); len(hints) > 0 {
		if len(hints) > 1 {
			return nil, &oaserrors.RootError{Candidates: slices.Sorted(slices.Values(hints)), Multiple: true}
		}
		return &RootInfo{
			Root:        hints[0],
			FromHint:    true,
			Unreachable: unreachable(fs.Names(), edges, hints[0]),
		}, nil
	}

	referenced := make(map[string]bool, fs.Len())
	for _, targets := range edges {
		for _, t := range targets {
			referenced[t] = true
		}
	}

	var candidates []string
	for _, name := range fs.Names() {
		if !referenced[name] {
			candidates = append(candidates, name)
		}
	}

	switch len(candidates) {
	case 0:
		return nil, &oaserrors.RootError{}
	case 1:
		return &RootInfo{
			Root:        candidates[0],
			Unreachable: unreachable(fs.Names(), edges, candidates[0]),
		}, nil
	default:
		return nil, &oaserrors.RootError{Candidates: candidates, Multiple: true}
	}
}

func unreachable(names []string, edges map[string][]string, root string) []string {
	seen := map[string]bool{root: true}
	queue := []string{root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range edges[cur] {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	var out []string
	for _, n := range names {
		if !seen[n] {
			out = append(out, n)
		}
	}
	return out
}
