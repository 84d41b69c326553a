package contract

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"net/mail"
	"net/netip"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/erraggy/oasweave/internal/pathutil"
	lru "github.com/hashicorp/golang-lru/v2"
)

// maxSchemaDepth bounds schema nesting that does not descend into the value,
// such as an allOf that refers back to its own schema.
const maxSchemaDepth = 64

// comparator compares transaction values against operation schemas.
type comparator struct {
	cfg      *config
	r        resolver
	patterns *lru.Cache[string, *regexp.Regexp]
}

func newComparator(cfg *config, doc map[string]any) (*comparator, error) {
	cache, err := lru.New[string, *regexp.Regexp](cfg.PatternCacheSize)
	if err != nil {
		return nil, err
	}
	return &comparator{cfg: cfg, r: resolver{doc: doc}, patterns: cache}, nil
}

// check carries the state of one comparison.
type check struct {
	c     *comparator
	loc   Location
	path  *pathutil.PathBuilder
	out   []Mismatch
	depth int
}

func (c *comparator) newCheck(loc Location) *check {
	return &check{c: c, loc: loc, path: pathutil.Get()}
}

// done releases the check and returns its findings.
func (k *check) done() []Mismatch {
	pathutil.Put(k.path)
	k.path = nil
	return k.out
}

func (k *check) report(kind Kind, msg string, schema map[string]any, actual any) {
	p := k.path.String()
	k.reportAt(kind, p, p, msg, schema, actual)
}

// reportAt records a mismatch whose path differs from the path named in the
// reason, as for a missing required property.
func (k *check) reportAt(kind Kind, path, reasonPath, msg string, schema map[string]any, actual any) {
	m := Mismatch{Kind: kind, Location: k.loc, Path: path, Reason: reason(k.loc, reasonPath, msg)}
	if k.c.cfg.SuggestAvailableFixes && schema != nil {
		if v, ok := k.c.cfg.ExampleFunc(schema); ok {
			m.SuggestedFix = &SuggestedFix{Key: path, Actual: actual, Suggested: v}
		}
	}
	k.out = append(k.out, m)
}

// value compares v against the schema node recursively. extra names
// properties declared by sibling composite branches.
func (k *check) value(v any, node any, extra map[string]bool) {
	if b, ok := node.(bool); ok {
		if !b {
			k.report(KindInvalidValue, "must NOT be present", nil, v)
		}
		return
	}
	s := k.c.r.deref(node)
	if s == nil || k.depth >= maxSchemaDepth {
		return
	}
	k.depth++
	defer func() { k.depth-- }()

	if k.unresolved(v) {
		return
	}
	types := schemaTypes(s)
	if v == nil {
		if !nullable(s, types) {
			k.report(KindTypeMismatch, "must be "+strings.Join(types, ","), s, v)
		}
		return
	}
	if len(types) > 0 && !typeAllowed(v, types) {
		k.report(KindTypeMismatch, "must be "+strings.Join(types, ","), s, v)
		return
	}

	k.enum(v, s)
	switch d := v.(type) {
	case string:
		k.str(d, s)
	case []any:
		k.array(d, s)
	case map[string]any:
		k.object(d, s, extra)
	case bool:
	default:
		if f, ok := toFloat(d); ok {
			k.number(f, s)
		}
	}
	k.composites(v, s, extra)
}

// shallow checks presence-level properties only: the root type and the
// top-level required properties.
func (k *check) shallow(v any, node any) {
	s := k.c.r.deref(node)
	if s == nil || k.unresolved(v) {
		return
	}
	types := schemaTypes(s)
	if v == nil {
		if !nullable(s, types) {
			k.report(KindTypeMismatch, "must be "+strings.Join(types, ","), s, v)
		}
		return
	}
	if len(types) > 0 && !typeAllowed(v, types) {
		k.report(KindTypeMismatch, "must be "+strings.Join(types, ","), s, v)
		return
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return
	}
	for _, name := range k.c.required(s, 0) {
		if _, present := obj[name]; !present {
			k.missingProperty(name, k.c.propertySchema(s, name, 0))
		}
	}
}

// unresolved reports whether v is an unsubstituted variable, recording a
// mismatch unless those are ignored.
func (k *check) unresolved(v any) bool {
	s, ok := v.(string)
	if !ok || !isVariable(s) {
		return false
	}
	if !k.c.cfg.IgnoreUnresolvedVariables {
		k.report(KindUnresolvedVariable, "contains unresolved variable "+s, nil, v)
	}
	return true
}

func (k *check) missingProperty(name string, propSchema any) {
	k.reportAt(KindMissingRequiredProperty, k.path.Child(name), k.path.String(),
		fmt.Sprintf("must have required property %q", name), k.c.r.deref(propSchema), nil)
}

func (k *check) enum(v any, s map[string]any) {
	if allowed, ok := s["enum"].([]any); ok && len(allowed) > 0 {
		found := false
		for _, a := range allowed {
			if valuesEqual(v, a) {
				found = true
				break
			}
		}
		if !found {
			k.report(KindEnumViolation, "must be equal to one of the allowed values", s, v)
		}
	}
	if c, ok := s["const"]; ok && !valuesEqual(v, c) {
		k.report(KindEnumViolation, "must be equal to constant", s, v)
	}
}

func (k *check) number(f float64, s map[string]any) {
	if lo, ok := toFloat(s["minimum"]); ok {
		if exclusive, _ := s["exclusiveMinimum"].(bool); exclusive {
			if f <= lo {
				k.report(KindRangeViolation, "must be > "+formatNumber(lo), s, f)
			}
		} else if f < lo {
			k.report(KindRangeViolation, "must be >= "+formatNumber(lo), s, f)
		}
	}
	if lo, ok := toFloat(s["exclusiveMinimum"]); ok && f <= lo {
		k.report(KindRangeViolation, "must be > "+formatNumber(lo), s, f)
	}
	if hi, ok := toFloat(s["maximum"]); ok {
		if exclusive, _ := s["exclusiveMaximum"].(bool); exclusive {
			if f >= hi {
				k.report(KindRangeViolation, "must be < "+formatNumber(hi), s, f)
			}
		} else if f > hi {
			k.report(KindRangeViolation, "must be <= "+formatNumber(hi), s, f)
		}
	}
	if hi, ok := toFloat(s["exclusiveMaximum"]); ok && f >= hi {
		k.report(KindRangeViolation, "must be < "+formatNumber(hi), s, f)
	}
	if m, ok := toFloat(s["multipleOf"]); ok && m > 0 {
		q := f / m
		if math.Abs(q-math.Round(q)) > 1e-9 {
			k.report(KindRangeViolation, "must be multiple of "+formatNumber(m), s, f)
		}
	}
}

func (k *check) str(v string, s map[string]any) {
	n := utf8.RuneCountInString(v)
	if lo, ok := toInt(s["minLength"]); ok && n < lo {
		k.report(KindInvalidValue, fmt.Sprintf("must NOT have fewer than %d characters", lo), s, v)
	}
	if hi, ok := toInt(s["maxLength"]); ok && n > hi {
		k.report(KindInvalidValue, fmt.Sprintf("must NOT have more than %d characters", hi), s, v)
	}
	if pattern, ok := s["pattern"].(string); ok && pattern != "" {
		if re := k.c.pattern(pattern); re != nil && !re.MatchString(v) {
			k.report(KindInvalidValue, fmt.Sprintf("must match pattern %q", pattern), s, v)
		}
	}
	if format, ok := s["format"].(string); ok && !formatValid(format, v) {
		k.report(KindInvalidValue, fmt.Sprintf("must match format %q", format), s, v)
	}
}

func (k *check) array(arr []any, s map[string]any) {
	if lo, ok := toInt(s["minItems"]); ok && len(arr) < lo {
		k.report(KindInvalidValue, fmt.Sprintf("must NOT have fewer than %d items", lo), s, arr)
	}
	if hi, ok := toInt(s["maxItems"]); ok && len(arr) > hi {
		k.report(KindInvalidValue, fmt.Sprintf("must NOT have more than %d items", hi), s, arr)
	}
	if unique, _ := s["uniqueItems"].(bool); unique && hasDuplicates(arr) {
		k.report(KindInvalidValue, "must NOT have duplicate items", s, arr)
	}

	prefix, _ := s["prefixItems"].([]any)
	tuple, isTuple := s["items"].([]any)
	for i, item := range arr {
		var itemSchema any
		switch {
		case i < len(prefix):
			itemSchema = prefix[i]
		case isTuple && i < len(tuple):
			itemSchema = tuple[i]
		case isTuple:
			itemSchema = s["additionalItems"]
		default:
			itemSchema = s["items"]
		}
		if itemSchema == nil {
			continue
		}
		k.path.PushIndex(i)
		k.value(item, itemSchema, nil)
		k.path.Pop()
	}
}

func (k *check) object(obj map[string]any, s map[string]any, extra map[string]bool) {
	props, _ := s["properties"].(map[string]any)
	for _, name := range stringList(s["required"]) {
		if _, ok := obj[name]; !ok {
			k.missingProperty(name, props[name])
		}
	}
	if lo, ok := toInt(s["minProperties"]); ok && len(obj) < lo {
		k.report(KindInvalidValue, fmt.Sprintf("must NOT have fewer than %d properties", lo), s, obj)
	}
	if hi, ok := toInt(s["maxProperties"]); ok && len(obj) > hi {
		k.report(KindInvalidValue, fmt.Sprintf("must NOT have more than %d properties", hi), s, obj)
	}

	declared := k.c.declared(s, 0)
	patterns, _ := s["patternProperties"].(map[string]any)
	for _, name := range sortedKeys(obj) {
		val := obj[name]
		k.path.Push(name)
		switch {
		case props[name] != nil:
			k.value(val, props[name], nil)
		case k.patternProperty(name, val, patterns):
		case declared[name] || extra[name]:
		default:
			k.additional(name, val, s, props != nil || len(declared) > 0)
		}
		k.path.Pop()
	}
}

// patternProperty compares val against every patternProperties schema
// whose pattern matches name.
func (k *check) patternProperty(name string, val any, patterns map[string]any) bool {
	matched := false
	for _, p := range sortedKeys(patterns) {
		if re := k.c.pattern(p); re != nil && re.MatchString(name) {
			matched = true
			k.value(val, patterns[p], nil)
		}
	}
	return matched
}

// additional handles a property the schema does not declare.
func (k *check) additional(name string, val any, s map[string]any, hasDeclared bool) {
	switch ap := s["additionalProperties"].(type) {
	case bool:
		if !ap {
			k.report(KindMissingInSchema, "is not allowed by the schema", nil, val)
			return
		}
	case map[string]any:
		k.value(val, ap, nil)
		return
	}
	if k.c.cfg.ShowMissingInSchemaErrors && hasDeclared {
		k.report(KindMissingInSchema, "is not defined in the schema", nil, val)
	}
}

func (k *check) composites(v any, s map[string]any, extra map[string]bool) {
	var siblings map[string]bool
	for _, strat := range strategies {
		branches, ok := s[strat.keyword()].([]any)
		if !ok || len(branches) == 0 {
			continue
		}
		if siblings == nil {
			siblings = k.c.declared(s, 0)
			for name := range extra {
				siblings[name] = true
			}
		}
		results := make([]branchResult, len(branches))
		for i, b := range branches {
			results[i] = branchResult{index: i, root: k.path.String(), mismatches: k.branch(v, b, siblings)}
		}
		out := strat.combine(results)
		if out.ambiguous {
			k.report(KindInvalidValue, "must match exactly one schema in oneOf", nil, v)
		}
		k.out = append(k.out, out.report...)
	}
	if not, ok := s["not"]; ok && len(k.branch(v, not, nil)) == 0 {
		k.report(KindInvalidValue, "must NOT be valid", nil, v)
	}
}

// branch compares v against node in isolation and returns its findings.
func (k *check) branch(v any, node any, extra map[string]bool) []Mismatch {
	saved := k.out
	k.out = nil
	k.value(v, node, extra)
	found := k.out
	k.out = saved
	return found
}

// declared collects the property names a schema declares directly and
// through its composite branches.
func (c *comparator) declared(s map[string]any, depth int) map[string]bool {
	names := make(map[string]bool)
	if s == nil || depth > maxSchemaDepth {
		return names
	}
	if props, ok := s["properties"].(map[string]any); ok {
		for name := range props {
			names[name] = true
		}
	}
	for _, kw := range []string{"allOf", "anyOf", "oneOf"} {
		branches, _ := s[kw].([]any)
		for _, b := range branches {
			for name := range c.declared(c.r.deref(b), depth+1) {
				names[name] = true
			}
		}
	}
	return names
}

// required collects required names of s and its allOf branches.
func (c *comparator) required(s map[string]any, depth int) []string {
	if s == nil || depth > maxSchemaDepth {
		return nil
	}
	names := stringList(s["required"])
	branches, _ := s["allOf"].([]any)
	for _, b := range branches {
		names = append(names, c.required(c.r.deref(b), depth+1)...)
	}
	return names
}

// propertySchema finds the schema of a property in s or its allOf branches.
func (c *comparator) propertySchema(s map[string]any, name string, depth int) any {
	if s == nil || depth > maxSchemaDepth {
		return nil
	}
	if props, ok := s["properties"].(map[string]any); ok && props[name] != nil {
		return props[name]
	}
	branches, _ := s["allOf"].([]any)
	for _, b := range branches {
		if p := c.propertySchema(c.r.deref(b), name, depth+1); p != nil {
			return p
		}
	}
	return nil
}

// pattern returns the compiled pattern, or nil when it does not compile.
func (c *comparator) pattern(p string) *regexp.Regexp {
	if re, ok := c.patterns.Get(p); ok {
		return re
	}
	re, err := regexp.Compile(p)
	if err != nil {
		c.cfg.Logger.Debug("ignoring invalid pattern", "pattern", p, "error", err)
		return nil
	}
	c.patterns.Add(p, re)
	return re
}

// schemaTypes returns the declared type set; 3.1 allows an array.
func schemaTypes(s map[string]any) []string {
	switch t := s["type"].(type) {
	case string:
		return []string{t}
	case []any:
		return stringList(t)
	}
	return nil
}

func nullable(s map[string]any, types []string) bool {
	if len(types) == 0 {
		return true
	}
	if n, _ := s["nullable"].(bool); n {
		return true
	}
	if n, _ := s["x-nullable"].(bool); n {
		return true
	}
	for _, t := range types {
		if t == "null" {
			return true
		}
	}
	return false
}

// dataType returns the JSON type of a decoded value. Whole numbers are
// integers regardless of their Go type.
func dataType(v any) string {
	switch d := v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	case json.Number:
		return numberLiteralType(d)
	default:
		f, ok := toFloat(d)
		if !ok {
			return "unknown"
		}
		if f == math.Trunc(f) && !math.IsInf(f, 0) {
			return "integer"
		}
		return "number"
	}
}

// numberLiteralType classifies a number kept as its literal text, such as
// an integer beyond int64 or a decimal with more precision than float64.
func numberLiteralType(n json.Number) string {
	lit := n.String()
	if !strings.ContainsAny(lit, ".eE") {
		if _, ok := new(big.Int).SetString(lit, 10); ok {
			return "integer"
		}
		return "unknown"
	}
	f, _, err := big.ParseFloat(lit, 10, 256, big.ToNearestEven)
	if err != nil {
		return "unknown"
	}
	if f.IsInt() {
		return "integer"
	}
	return "number"
}

// typeAllowed is a member-of check of the value's type against the set.
func typeAllowed(v any, types []string) bool {
	dt := dataType(v)
	for _, t := range types {
		if t == dt || (t == "number" && dt == "integer") {
			return true
		}
	}
	return false
}

func primaryType(s map[string]any) string {
	for _, t := range schemaTypes(s) {
		if t != "null" {
			return t
		}
	}
	return ""
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func toInt(v any) (int, bool) {
	f, ok := toFloat(v)
	return int(f), ok
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func stringList(v any) []string {
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// valuesEqual compares decoded values, treating numbers by value.
func valuesEqual(a, b any) bool {
	fa, aNum := toFloat(a)
	fb, bNum := toFloat(b)
	if aNum || bNum {
		return aNum && bNum && fa == fb
	}
	am, aMap := a.(map[string]any)
	bm, bMap := b.(map[string]any)
	if aMap && bMap {
		if len(am) != len(bm) {
			return false
		}
		for k, v := range am {
			if w, ok := bm[k]; !ok || !valuesEqual(v, w) {
				return false
			}
		}
		return true
	}
	as, aArr := a.([]any)
	bs, bArr := b.([]any)
	if aArr && bArr {
		if len(as) != len(bs) {
			return false
		}
		for i := range as {
			if !valuesEqual(as[i], bs[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}

func hasDuplicates(arr []any) bool {
	for i := range arr {
		for j := i + 1; j < len(arr); j++ {
			if valuesEqual(arr[i], arr[j]) {
				return true
			}
		}
	}
	return false
}

var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// formatValid checks the formats with an unambiguous definition. Unknown
// formats pass.
func formatValid(format, s string) bool {
	switch format {
	case "date":
		_, err := time.Parse(time.DateOnly, s)
		return err == nil
	case "date-time":
		_, err := time.Parse(time.RFC3339, s)
		return err == nil
	case "uuid":
		return uuidPattern.MatchString(s)
	case "email":
		addr, err := mail.ParseAddress(s)
		return err == nil && addr.Address == s
	case "uri":
		u, err := url.Parse(s)
		return err == nil && u.IsAbs()
	case "ipv4":
		a, err := netip.ParseAddr(s)
		return err == nil && a.Is4()
	case "ipv6":
		a, err := netip.ParseAddr(s)
		return err == nil && a.Is6()
	}
	return true
}
