package contract

import (
	"net/url"
	"slices"
	"strings"
)

// matcher maps transactions onto operations.
type matcher struct {
	byMethod map[string][]*Operation
	basePath string
	strict   bool
}

func newMatcher(ops []*Operation, basePath string, strict bool) *matcher {
	m := &matcher{byMethod: make(map[string][]*Operation), basePath: basePath, strict: strict}
	for _, op := range ops {
		m.byMethod[op.Method] = append(m.byMethod[op.Method], op)
	}
	return m
}

type candidate struct {
	op *Operation
	templateMatch
}

// match returns the best operation for method and path segments, or nil.
//
// Candidates are templates of the same method whose segments all match.
// With strict matching, a candidate is dropped when one of its variable
// segments takes a value that another matching template of the method
// declares as a literal at the same position. The remaining candidates rank by literal
// segment count (descending), then variable count (ascending), then template.
func (m *matcher) match(method string, parts []string) (*Operation, map[string]string) {
	ops := m.byMethod[strings.ToUpper(method)]
	var cands []candidate
	for _, op := range ops {
		if tm, ok := op.tmpl.match(parts); ok {
			if m.strict && m.shadowed(op, ops, parts) {
				continue
			}
			cands = append(cands, candidate{op: op, templateMatch: tm})
		}
	}
	if len(cands) == 0 {
		return nil, nil
	}
	best := slices.MinFunc(cands, func(a, b candidate) int {
		if a.literals != b.literals {
			return b.literals - a.literals
		}
		if a.variables != b.variables {
			return a.variables - b.variables
		}
		return strings.Compare(a.op.Path, b.op.Path)
	})
	return best.op, best.params
}

// shadowed reports whether a variable segment of op would absorb a literal
// of another template that also matches parts.
func (m *matcher) shadowed(op *Operation, ops []*Operation, parts []string) bool {
	for _, other := range ops {
		if other == op || len(other.tmpl.segments) != len(parts) {
			continue
		}
		if _, ok := other.tmpl.match(parts); !ok {
			continue
		}
		for i, seg := range op.tmpl.segments {
			if seg.isLiteral() {
				continue
			}
			if o := other.tmpl.segments[i]; o.isLiteral() && o.literal == parts[i] {
				return true
			}
		}
	}
	return false
}

// requestTarget splits a transaction path into template-comparable segments
// and the query parameters it carries.
//
// A leading "{{variable}}" (such as {{baseUrl}}) and any scheme and host are
// dropped, then the base path is stripped. Segments are percent-decoded.
func (m *matcher) requestTarget(raw string) ([]string, map[string]string) {
	if strings.HasPrefix(raw, "{{") {
		if i := strings.Index(raw, "}}"); i >= 0 {
			raw = raw[i+2:]
		}
	}
	if _, rest, ok := strings.Cut(raw, "://"); ok {
		i := strings.IndexAny(rest, "/?")
		if i == -1 {
			rest = ""
		} else {
			rest = rest[i:]
		}
		raw = rest
	}
	raw, _, _ = strings.Cut(raw, "#")
	p, rawQuery, _ := strings.Cut(raw, "?")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if m.basePath != "" && (p == m.basePath || strings.HasPrefix(p, m.basePath+"/")) {
		p = p[len(m.basePath):]
	}

	parts := splitPath(p)
	for i, part := range parts {
		if decoded, err := url.PathUnescape(part); err == nil {
			parts[i] = decoded
		}
	}

	var query map[string]string
	if rawQuery != "" {
		values, _ := url.ParseQuery(rawQuery)
		query = make(map[string]string, len(values))
		for k, v := range values {
			if len(v) > 0 {
				query[k] = v[0]
			}
		}
	}
	return parts, query
}
