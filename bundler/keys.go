package bundler

import (
	"path"
	"strconv"
	"strings"
	"unicode"

	"github.com/erraggy/oasweave/parser"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// keyGenerator hands out collision-free component keys per bucket.
type keyGenerator struct {
	taken map[string]map[string]bool
}

func newKeyGenerator() *keyGenerator {
	return &keyGenerator{taken: make(map[string]map[string]bool)}
}

// reserve marks a key as used, e.g. for components already in the root file.
func (g *keyGenerator) reserve(bucket, key string) {
	m := g.taken[bucket]
	if m == nil {
		m = make(map[string]bool)
		g.taken[bucket] = m
	}
	m[key] = true
}

func (g *keyGenerator) free(bucket, key string) bool {
	return !g.taken[bucket][key]
}

// generate derives a key for the target of p: the last fragment token (or
// the file stem when the pointer addresses a whole file), then a
// file-qualified key, then numeric suffixes.
func (g *keyGenerator) generate(bucket string, p parser.Pointer) string {
	preferred := sanitizeKey(preferredName(p))
	if g.free(bucket, preferred) {
		g.reserve(bucket, preferred)
		return preferred
	}

	qualified := sanitizeKey(qualifiedName(p))
	if g.free(bucket, qualified) {
		g.reserve(bucket, qualified)
		return qualified
	}

	for i := 2; ; i++ {
		k := qualified + "_" + strconv.Itoa(i)
		if g.free(bucket, k) {
			g.reserve(bucket, k)
			return k
		}
	}
}

func fileStem(file string) string {
	base := path.Base(file)
	return strings.TrimSuffix(base, path.Ext(base))
}

func preferredName(p parser.Pointer) string {
	tokens := p.Tokens()
	if len(tokens) == 0 {
		return fileStem(p.File)
	}
	last := tokens[len(tokens)-1]
	if isIndex(last) && len(tokens) > 1 {
		return tokens[len(tokens)-2] + "_" + last
	}
	return last
}

func qualifiedName(p parser.Pointer) string {
	parts := []string{strings.TrimSuffix(p.File, path.Ext(p.File))}
	parts = append(parts, p.Tokens()...)
	return strings.Join(parts, "_")
}

func isIndex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// sanitizeKey reduces s to the characters allowed in component keys
// ([A-Za-z0-9._-]). Accents are stripped first so "Categoría" becomes
// "Categoria" rather than "Categor_a".
func sanitizeKey(s string) string {
	// Transformers carry state; build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(t, s); err == nil {
		s = stripped
	}

	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '-'):
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
			}
			lastUnderscore = true
		}
	}
	out := strings.TrimRight(b.String(), "_")
	if out == "" {
		return "definition"
	}
	return out
}
