package parser

import (
	"slices"
	"strconv"
)

// RefSite is one $ref occurrence in a document.
type RefSite struct {
	// Ref is the raw $ref value
	Ref string
	// Trace is the path of container keys from the document root to the
	// object holding the $ref
	Trace []string
}

// CollectRefs returns every $ref in node in deterministic order
// (object keys sorted, arrays by index).
func CollectRefs(node any) []RefSite {
	var sites []RefSite
	var trace []string
	var walk func(n any)
	walk = func(n any) {
		switch v := n.(type) {
		case map[string]any:
			if ref, ok := v["$ref"].(string); ok {
				sites = append(sites, RefSite{Ref: ref, Trace: slices.Clone(trace)})
			}
			for _, k := range SortedKeys(v) {
				if k == "$ref" {
					continue
				}
				trace = append(trace, k)
				walk(v[k])
				trace = trace[:len(trace)-1]
			}
		case []any:
			for i, child := range v {
				trace = append(trace, strconv.Itoa(i))
				walk(child)
				trace = trace[:len(trace)-1]
			}
		}
	}
	walk(node)
	return sites
}

// FileEdges returns, for every file of the set, the sorted distinct other
// files of the set that its pointers target. Remote refs and targets outside
// the set produce no edge.
func (fs *FileSet) FileEdges() map[string][]string {
	edges := make(map[string][]string, len(fs.names))
	for _, name := range fs.names {
		seen := map[string]bool{}
		for _, site := range CollectRefs(fs.files[name].Content) {
			p := ParseRef(site.Ref, name)
			if p.Remote || p.File == name || seen[p.File] {
				continue
			}
			if _, ok := fs.files[p.File]; !ok {
				continue
			}
			seen[p.File] = true
			edges[name] = append(edges[name], p.File)
		}
		slices.Sort(edges[name])
	}
	return edges
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
