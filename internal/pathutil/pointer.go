// Copyright 2024 Erraggy
// SPDX-License-Identifier: MIT

package pathutil

import (
	"net/url"
	"strings"
)

var (
	tokenEscaper   = strings.NewReplacer("~", "~0", "/", "~1")
	tokenUnescaper = strings.NewReplacer("~1", "/", "~0", "~")
)

// EscapeToken escapes a single JSON Pointer reference token.
func EscapeToken(token string) string {
	return tokenEscaper.Replace(token)
}

// UnescapeToken decodes a single JSON Pointer reference token.
// Percent-encoded sequences are decoded first, as $ref fragments are URI fragments.
func UnescapeToken(token string) string {
	if strings.Contains(token, "%") {
		if decoded, err := url.PathUnescape(token); err == nil {
			token = decoded
		}
	}
	return tokenUnescaper.Replace(token)
}

// JoinPointer builds a JSON Pointer ("/a/b") from unescaped tokens.
// An empty token list yields the empty pointer, which addresses the whole document.
func JoinPointer(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	var b strings.Builder
	for _, t := range tokens {
		b.WriteByte('/')
		b.WriteString(EscapeToken(t))
	}
	return b.String()
}

// SplitPointer decodes a JSON Pointer into unescaped tokens.
// Both "" and "/" prefixed pointers are accepted; a leading "#" is ignored.
func SplitPointer(pointer string) []string {
	pointer = strings.TrimPrefix(pointer, "#")
	if pointer == "" || pointer == "/" {
		return nil
	}
	pointer = strings.TrimPrefix(pointer, "/")
	parts := strings.Split(pointer, "/")
	for i, p := range parts {
		parts[i] = UnescapeToken(p)
	}
	return parts
}
