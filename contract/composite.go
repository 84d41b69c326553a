package contract

import "strings"

// branchResult is the outcome of comparing a value against one branch of a
// composite schema.
type branchResult struct {
	index      int
	root       string
	mismatches []Mismatch
}

func (b branchResult) passed() bool { return len(b.mismatches) == 0 }

// rootTypeMatched reports whether the value had the branch's type, i.e. the
// branch failed on content rather than on shape.
func (b branchResult) rootTypeMatched() bool {
	for _, m := range b.mismatches {
		if m.Kind == KindTypeMismatch && m.Path == b.root {
			return false
		}
	}
	return true
}

// maxDepth is the depth of the deepest mismatch path.
func (b branchResult) maxDepth() int {
	depth := 0
	for _, m := range b.mismatches {
		if d := pathDepth(m.Path); d > depth {
			depth = d
		}
	}
	return depth
}

func pathDepth(p string) int {
	if p == "" {
		return 0
	}
	return 1 + strings.Count(p, ".") + strings.Count(p, "[")
}

// outcome is what a composite contributes to the enclosing comparison.
type outcome struct {
	report []Mismatch
	// ambiguous is set when more than one oneOf branch passed
	ambiguous bool
}

// compositeStrategy combines branch results of one composite keyword.
type compositeStrategy interface {
	keyword() string
	combine(results []branchResult) outcome
}

// strategies in evaluation order.
var strategies = []compositeStrategy{allOfStrategy{}, anyOfStrategy{}, oneOfStrategy{}}

// allOfStrategy requires every branch to pass and reports every failure.
type allOfStrategy struct{}

func (allOfStrategy) keyword() string { return "allOf" }

func (allOfStrategy) combine(results []branchResult) outcome {
	var out outcome
	for _, r := range results {
		out.report = append(out.report, r.mismatches...)
	}
	return out
}

// anyOfStrategy requires at least one passing branch.
type anyOfStrategy struct{}

func (anyOfStrategy) keyword() string { return "anyOf" }

func (anyOfStrategy) combine(results []branchResult) outcome {
	for _, r := range results {
		if r.passed() {
			return outcome{}
		}
	}
	return outcome{report: mostSpecific(results)}
}

// oneOfStrategy requires exactly one passing branch.
type oneOfStrategy struct{}

func (oneOfStrategy) keyword() string { return "oneOf" }

func (oneOfStrategy) combine(results []branchResult) outcome {
	passing := 0
	for _, r := range results {
		if r.passed() {
			passing++
		}
	}
	switch passing {
	case 0:
		return outcome{report: mostSpecific(results)}
	case 1:
		return outcome{}
	default:
		return outcome{ambiguous: true}
	}
}

// mostSpecific picks the failures of the branch closest to passing: a branch
// whose type matched the value beats one that did not, then fewer
// mismatches win, then the deepest mismatch path, then the earlier branch.
func mostSpecific(results []branchResult) []Mismatch {
	if len(results) == 0 {
		return nil
	}
	best := results[0]
	for _, r := range results[1:] {
		if moreSpecific(r, best) {
			best = r
		}
	}
	return best.mismatches
}

func moreSpecific(a, b branchResult) bool {
	if at, bt := a.rootTypeMatched(), b.rootTypeMatched(); at != bt {
		return at
	}
	if len(a.mismatches) != len(b.mismatches) {
		return len(a.mismatches) < len(b.mismatches)
	}
	if ad, bd := a.maxDepth(), b.maxDepth(); ad != bd {
		return ad > bd
	}
	return a.index < b.index
}
