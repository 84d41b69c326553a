package contract

import (
	"fmt"
	"regexp"
	"strings"
)

// segment is one "/"-separated part of a path template.
type segment struct {
	// literal is the fixed text of a literal segment
	literal string
	// params names the variables of a variable or mixed segment
	params []string
	// re matches mixed segments such as "{name}.json"
	re *regexp.Regexp
}

func (s segment) isLiteral() bool { return len(s.params) == 0 }

// pathTemplate is a compiled OpenAPI path template like "/pets/{petId}".
type pathTemplate struct {
	template string
	segments []segment
}

// compileTemplate parses a path template into segments.
//
// Returns an error if the template is malformed (unclosed braces, empty or
// duplicate parameter names).
func compileTemplate(template string) (*pathTemplate, error) {
	if template == "" {
		return nil, fmt.Errorf("path template cannot be empty")
	}

	seen := make(map[string]bool)
	var segments []segment
	for _, part := range splitPath(template) {
		if !strings.ContainsAny(part, "{}") {
			segments = append(segments, segment{literal: part})
			continue
		}

		var pattern strings.Builder
		pattern.WriteString("^")
		var names []string
		i := 0
		for i < len(part) {
			if part[i] != '{' {
				pattern.WriteString(regexp.QuoteMeta(part[i : i+1]))
				i++
				continue
			}
			end := strings.IndexByte(part[i:], '}')
			if end == -1 {
				return nil, fmt.Errorf("unclosed path parameter in template %q", template)
			}
			name := part[i+1 : i+end]
			if name == "" {
				return nil, fmt.Errorf("empty path parameter in template %q", template)
			}
			if seen[name] {
				return nil, fmt.Errorf("duplicate path parameter %q in template %q", name, template)
			}
			seen[name] = true
			names = append(names, name)
			pattern.WriteString("(.+?)")
			i += end + 1
		}
		pattern.WriteString("$")

		seg := segment{params: names}
		if len(names) != 1 || part != "{"+names[0]+"}" {
			re, err := regexp.Compile(pattern.String())
			if err != nil {
				return nil, fmt.Errorf("failed to compile path segment %q of template %q: %w", part, template, err)
			}
			seg.re = re
		}
		segments = append(segments, seg)
	}
	return &pathTemplate{template: template, segments: segments}, nil
}

// templateMatch is the outcome of matching one template.
type templateMatch struct {
	params    map[string]string
	literals  int
	variables int
}

// match compares request path segments against the template. A request
// segment that is itself a placeholder ("{{id}}" or ":id") only matches a
// variable segment.
func (t *pathTemplate) match(parts []string) (templateMatch, bool) {
	if len(parts) != len(t.segments) {
		return templateMatch{}, false
	}
	m := templateMatch{params: make(map[string]string)}
	for i, seg := range t.segments {
		part := parts[i]
		switch {
		case seg.isLiteral():
			if isPlaceholder(part) || part != seg.literal {
				return templateMatch{}, false
			}
			m.literals++
		case seg.re == nil:
			if part == "" {
				return templateMatch{}, false
			}
			m.params[seg.params[0]] = part
			m.variables++
		default:
			if isPlaceholder(part) {
				for _, name := range seg.params {
					m.params[name] = part
				}
				m.variables++
				continue
			}
			sub := seg.re.FindStringSubmatch(part)
			if sub == nil {
				return templateMatch{}, false
			}
			for j, name := range seg.params {
				m.params[name] = sub[j+1]
			}
			m.variables++
		}
	}
	return m, true
}

// splitPath splits a path into segments, ignoring leading and trailing
// slashes. "/" has no segments.
func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

var variablePattern = regexp.MustCompile(`^\{\{[^{}]+\}\}$`)

// isVariable reports whether s is an unsubstituted "{{name}}" variable.
func isVariable(s string) bool {
	return variablePattern.MatchString(s)
}

func isPlaceholder(s string) bool {
	return isVariable(s) || (len(s) > 1 && s[0] == ':')
}
