package contract

import (
	"fmt"
	"slices"
	"strings"

	"github.com/erraggy/oasweave/internal/pathutil"
	"github.com/erraggy/oasweave/parser"
)

// maxRefHops bounds a chain of $ref objects pointing at each other.
const maxRefHops = 32

// methods in the order operations are listed.
var methods = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"}

// Operation is a (method, path template) pair of the document together with
// the schemas a transaction is compared against.
type Operation struct {
	// Method is upper-case
	Method      string
	Path        string
	OperationID string
	// Parameters merges path-level and operation-level parameters; the
	// operation wins on (name, in)
	Parameters  []*Parameter
	RequestBody *RequestBody
	// Responses is keyed by status code, "NXX" range or "default"
	Responses map[string]*ResponseSpec

	tmpl *pathTemplate
}

// Endpoint returns "METHOD /path".
func (o *Operation) Endpoint() string {
	return o.Method + " " + o.Path
}

// Parameter is a path, query or header parameter, or a response header.
type Parameter struct {
	Name     string
	In       string
	Required bool
	Schema   any
}

// RequestBody maps media types onto schemas.
type RequestBody struct {
	Required bool
	Content  map[string]any
}

// ResponseSpec is one declared response.
type ResponseSpec struct {
	Content map[string]any
	Headers []*Parameter
}

// resolver follows intra-document refs lazily.
type resolver struct {
	doc map[string]any
}

// deref follows $ref chains and returns the target object, or nil when the
// node is not an object or a ref cannot be resolved.
func (r resolver) deref(node any) map[string]any {
	for range maxRefHops {
		m, ok := node.(map[string]any)
		if !ok {
			return nil
		}
		ref, ok := m["$ref"].(string)
		if !ok || !pathutil.IsLocalRef(ref) {
			return m
		}
		target, found := parser.Lookup(r.doc, pathutil.SplitPointer(ref))
		if !found {
			return nil
		}
		node = target
	}
	return nil
}

// Operations extracts the operations of a bundled document in path order.
// Operations whose path template is malformed are skipped and reported as
// warnings.
func Operations(doc map[string]any) ([]*Operation, []string) {
	r := resolver{doc: doc}
	version, _ := parser.DetectVersion(doc)
	oas2 := version.IsOAS2()

	paths, _ := doc["paths"].(map[string]any)
	var ops []*Operation
	var warnings []string
	for _, template := range parser.SortedKeys(paths) {
		item := r.deref(paths[template])
		if item == nil {
			continue
		}
		tmpl, err := compileTemplate(template)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("skipping path %s: %v", template, err))
			continue
		}
		shared := item["parameters"]
		for _, method := range methods {
			raw := r.deref(item[method])
			if raw == nil {
				continue
			}
			op := &Operation{
				Method:    strings.ToUpper(method),
				Path:      template,
				Responses: make(map[string]*ResponseSpec),
				tmpl:      tmpl,
			}
			op.OperationID, _ = raw["operationId"].(string)
			r.parameters(op, shared, raw["parameters"], doc, raw, oas2)
			if !oas2 {
				op.RequestBody = r.requestBody(raw["requestBody"])
			}
			r.responses(op, raw["responses"], doc, raw, oas2)
			ops = append(ops, op)
		}
	}
	return ops, warnings
}

func (r resolver) parameters(op *Operation, shared, own any, doc, raw map[string]any, oas2 bool) {
	type key struct{ name, in string }
	merged := make(map[key]map[string]any)
	var order []key
	for _, list := range []any{shared, own} {
		items, _ := list.([]any)
		for _, item := range items {
			p := r.deref(item)
			if p == nil {
				continue
			}
			name, _ := p["name"].(string)
			in, _ := p["in"].(string)
			k := key{name, in}
			if _, ok := merged[k]; !ok {
				order = append(order, k)
			}
			merged[k] = p
		}
	}

	var form *formBody
	for _, k := range order {
		p := merged[k]
		required, _ := p["required"].(bool)
		switch {
		case oas2 && k.in == "body":
			op.RequestBody = &RequestBody{
				Required: required,
				Content:  map[string]any{mediaType(doc, raw, "consumes"): p["schema"]},
			}
		case oas2 && k.in == "formData":
			if form == nil {
				form = newFormBody(doc, raw)
			}
			form.add(k.name, oas2Schema(p), required)
		case k.in == "path" || k.in == "query" || k.in == "header":
			param := &Parameter{Name: k.name, In: k.in, Required: required || k.in == "path"}
			if oas2 {
				param.Schema = oas2Schema(p)
			} else {
				param.Schema = r.contentSchema(p)
			}
			op.Parameters = append(op.Parameters, param)
		}
	}
	if form != nil && op.RequestBody == nil {
		op.RequestBody = form.body()
	}
}

// contentSchema returns a 3.x parameter's schema, or the schema of its first
// content entry.
func (r resolver) contentSchema(p map[string]any) any {
	if s, ok := p["schema"]; ok {
		return s
	}
	content, _ := p["content"].(map[string]any)
	for _, mt := range parser.SortedKeys(content) {
		if m := r.deref(content[mt]); m != nil {
			return m["schema"]
		}
	}
	return nil
}

func (r resolver) requestBody(node any) *RequestBody {
	rb := r.deref(node)
	if rb == nil {
		return nil
	}
	required, _ := rb["required"].(bool)
	return &RequestBody{Required: required, Content: r.content(rb["content"])}
}

func (r resolver) content(node any) map[string]any {
	content, _ := node.(map[string]any)
	out := make(map[string]any, len(content))
	for mt, media := range content {
		m := r.deref(media)
		if m == nil {
			continue
		}
		out[strings.ToLower(mt)] = m["schema"]
	}
	return out
}

func (r resolver) responses(op *Operation, node any, doc, raw map[string]any, oas2 bool) {
	responses, _ := node.(map[string]any)
	for code, v := range responses {
		resp := r.deref(v)
		if resp == nil {
			continue
		}
		spec := &ResponseSpec{}
		if oas2 {
			if s, ok := resp["schema"]; ok {
				spec.Content = map[string]any{mediaType(doc, raw, "produces"): s}
			}
		} else {
			spec.Content = r.content(resp["content"])
		}
		headers, _ := resp["headers"].(map[string]any)
		for _, name := range parser.SortedKeys(headers) {
			h := r.deref(headers[name])
			if h == nil {
				continue
			}
			param := &Parameter{Name: name, In: "header"}
			if oas2 {
				param.Schema = oas2Schema(h)
			} else {
				param.Required, _ = h["required"].(bool)
				param.Schema = r.contentSchema(h)
			}
			spec.Headers = append(spec.Headers, param)
		}
		op.Responses[strings.ToUpper(code)] = spec
	}
}

// schemaKeywords are the 2.0 parameter fields that describe the value.
var schemaKeywords = []string{
	"type", "format", "items", "enum", "default",
	"minimum", "maximum", "exclusiveMinimum", "exclusiveMaximum", "multipleOf",
	"minLength", "maxLength", "pattern", "minItems", "maxItems", "uniqueItems",
}

// oas2Schema lifts the value keywords of a 2.0 parameter or header into a
// schema object.
func oas2Schema(p map[string]any) map[string]any {
	s := make(map[string]any)
	for _, k := range schemaKeywords {
		if v, ok := p[k]; ok {
			s[k] = v
		}
	}
	if s["type"] == "file" {
		delete(s, "type")
	}
	return s
}

// mediaType returns the first of an operation's or document's
// consumes/produces, or application/json.
func mediaType(doc, op map[string]any, field string) string {
	for _, src := range []map[string]any{op, doc} {
		if list, ok := src[field].([]any); ok && len(list) > 0 {
			if s, ok := list[0].(string); ok {
				return strings.ToLower(s)
			}
		}
	}
	return "application/json"
}

// formBody collects 2.0 formData parameters into one object schema.
type formBody struct {
	mediaType  string
	properties map[string]any
	required   []any
}

func newFormBody(doc, op map[string]any) *formBody {
	mt := mediaType(doc, op, "consumes")
	if mt == "application/json" {
		mt = "application/x-www-form-urlencoded"
	}
	return &formBody{mediaType: mt, properties: make(map[string]any)}
}

func (f *formBody) add(name string, schema map[string]any, required bool) {
	f.properties[name] = schema
	if required {
		f.required = append(f.required, name)
	}
}

func (f *formBody) body() *RequestBody {
	schema := map[string]any{"type": "object", "properties": f.properties}
	if len(f.required) > 0 {
		schema["required"] = f.required
	}
	return &RequestBody{Required: len(f.required) > 0, Content: map[string]any{f.mediaType: schema}}
}

// BasePath returns the path prefix requests carry before the templates:
// the path of the first server URL (3.x) or basePath (2.0), without a
// trailing slash.
func BasePath(doc map[string]any) string {
	var base string
	if bp, ok := doc["basePath"].(string); ok {
		base = bp
	} else if servers, ok := doc["servers"].([]any); ok && len(servers) > 0 {
		if s, ok := servers[0].(map[string]any); ok {
			raw, _ := s["url"].(string)
			base = urlPath(raw)
		}
	}
	return strings.TrimRight(base, "/")
}

func urlPath(raw string) string {
	if _, rest, ok := strings.Cut(raw, "://"); ok {
		// hosts may hold server variables, so the URL is not parsed
		i := strings.IndexByte(rest, '/')
		if i == -1 {
			return ""
		}
		p, _, _ := strings.Cut(rest[i:], "?")
		return p
	}
	if strings.HasPrefix(raw, "/") {
		return raw
	}
	return ""
}

// sortedKeys returns map keys in order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
