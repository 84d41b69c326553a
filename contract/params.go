package contract

import (
	"fmt"
	"mime"
	"slices"
	"strconv"
	"strings"
)

// ignoredHeaders are described by the operation itself, not by parameters.
var ignoredHeaders = []string{"accept", "content-type", "authorization"}

// request compares the request half of a transaction against op.
func (c *comparator) request(op *Operation, pathParams, query map[string]string, req Request) []Mismatch {
	out := []Mismatch{}
	declaredQuery := make(map[string]bool)

	for _, p := range op.Parameters {
		var (
			raw string
			ok  bool
			loc Location
		)
		switch p.In {
		case "path":
			raw, ok = pathParams[p.Name]
			loc = LocationPath
		case "query":
			declaredQuery[p.Name] = true
			raw, ok = query[p.Name]
			loc = LocationQuery
		case "header":
			if slices.Contains(ignoredHeaders, strings.ToLower(p.Name)) {
				continue
			}
			raw, ok = header(req.Headers, p.Name)
			loc = LocationHeader
		default:
			continue
		}
		if !ok {
			if p.Required {
				out = append(out, Mismatch{
					Kind:     KindMissingInRequest,
					Location: loc,
					Path:     p.Name,
					Reason:   reason(loc, p.Name, "must be present"),
				})
			}
			continue
		}
		if loc == LocationPath && strings.HasPrefix(raw, ":") {
			// collection path variable without a recorded value
			continue
		}
		out = append(out, c.param(loc, p, raw)...)
	}

	if c.cfg.ShowMissingInSchemaErrors {
		for _, name := range sortedKeys(query) {
			if !declaredQuery[name] {
				out = append(out, Mismatch{
					Kind:     KindMissingInSchema,
					Location: LocationQuery,
					Path:     name,
					Reason:   reason(LocationQuery, name, "is not defined in the schema"),
				})
			}
		}
	}

	var content map[string]any
	required := false
	if op.RequestBody != nil {
		content = op.RequestBody.Content
		required = op.RequestBody.Required
	}
	ct, _ := header(req.Headers, "Content-Type")
	return append(out, c.body(LocationRequestBody, content, required, ct, decodeBody(req.Body, req.RawBody))...)
}

// response compares one recorded response against op.
func (c *comparator) response(op *Operation, resp Response) []Mismatch {
	spec := lookupResponse(op.Responses, resp.Status)
	if spec == nil {
		return []Mismatch{{
			Kind:     KindUndocumentedResponse,
			Location: LocationResponse,
			Reason:   reason(LocationResponse, "", fmt.Sprintf("status %d is not documented", resp.Status)),
		}}
	}

	out := []Mismatch{}
	for _, h := range spec.Headers {
		if strings.EqualFold(h.Name, "Content-Type") {
			continue
		}
		raw, ok := header(resp.Headers, h.Name)
		if !ok {
			if h.Required {
				out = append(out, Mismatch{
					Kind:     KindMissingInRequest,
					Location: LocationResponseHeader,
					Path:     h.Name,
					Reason:   reason(LocationResponseHeader, h.Name, "must be present"),
				})
			}
			continue
		}
		out = append(out, c.param(LocationResponseHeader, h, raw)...)
	}

	ct, _ := header(resp.Headers, "Content-Type")
	return append(out, c.body(LocationResponseBody, spec.Content, false, ct, decodeBody(resp.Body, resp.RawBody))...)
}

// lookupResponse tries the exact status, then its "NXX" range, then default.
func lookupResponse(responses map[string]*ResponseSpec, status int) *ResponseSpec {
	for _, key := range []string{strconv.Itoa(status), strconv.Itoa(status/100) + "XX", "DEFAULT"} {
		if spec, ok := responses[key]; ok {
			return spec
		}
	}
	return nil
}

// param compares one parameter value, coerced from its string form.
func (c *comparator) param(loc Location, p *Parameter, raw string) []Mismatch {
	k := c.newCheck(loc)
	k.path.Push(p.Name)
	k.value(c.coerce(raw, p.Schema), p.Schema, nil)
	return k.done()
}

// coerce converts a serialized parameter value according to its schema type.
// Arrays use the simple/form comma style. Values that do not parse stay
// strings and fail the type check.
func (c *comparator) coerce(raw string, node any) any {
	s := c.r.deref(node)
	if s == nil || isVariable(raw) {
		return raw
	}
	switch primaryType(s) {
	case "integer":
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	case "number":
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	case "boolean":
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
	case "array":
		parts := strings.Split(raw, ",")
		items := make([]any, len(parts))
		for i, part := range parts {
			items[i] = c.coerce(part, s["items"])
		}
		return items
	}
	return raw
}

// body compares a payload against the schema of the matching media type.
func (c *comparator) body(loc Location, content map[string]any, required bool, contentType string, pl payload) []Mismatch {
	if len(content) == 0 {
		if pl.present && c.cfg.ShowMissingInSchemaErrors {
			return []Mismatch{{
				Kind:     KindMissingInSchema,
				Location: loc,
				Reason:   reason(loc, "", "is not defined in the schema"),
			}}
		}
		return nil
	}
	if !pl.present {
		if required {
			return []Mismatch{{Kind: KindMissingInRequest, Location: loc, Reason: reason(loc, "", "must be present")}}
		}
		return nil
	}

	mt, schema := pickMedia(content, contentType)
	if schema == nil {
		return nil
	}
	value := pl.value
	if pl.raw != "" {
		if isJSON(mt) {
			if strings.Contains(pl.raw, "{{") {
				if c.cfg.IgnoreUnresolvedVariables {
					return nil
				}
				return []Mismatch{{Kind: KindUnresolvedVariable, Location: loc, Reason: reason(loc, "", "contains unresolved variables")}}
			}
			return []Mismatch{{Kind: KindInvalidBody, Location: loc, Reason: reason(loc, "", "must be valid JSON")}}
		}
		value = pl.raw
	}

	k := c.newCheck(loc)
	if c.cfg.DetailedBlobValidation {
		k.value(value, schema, nil)
	} else {
		k.shallow(value, schema)
	}
	return k.done()
}

// pickMedia selects the content entry for a Content-Type: exact, then
// "type/*", then "*/*". Without a usable Content-Type a JSON entry is
// preferred, then the first in order.
func pickMedia(content map[string]any, contentType string) (string, any) {
	if contentType != "" {
		mt, _, err := mime.ParseMediaType(contentType)
		if err == nil {
			if s, ok := content[mt]; ok {
				return mt, s
			}
			if typ, _, ok := strings.Cut(mt, "/"); ok {
				if s, ok := content[typ+"/*"]; ok {
					return mt, s
				}
			}
			if s, ok := content["*/*"]; ok {
				return mt, s
			}
		}
	}
	keys := sortedKeys(content)
	for _, k := range keys {
		if isJSON(k) {
			return k, content[k]
		}
	}
	return keys[0], content[keys[0]]
}

func isJSON(mediaType string) bool {
	return strings.Contains(mediaType, "json") || mediaType == "*/*"
}
