package parser

import (
	"net/url"
	"path"
	"strings"

	"github.com/erraggy/oasweave/internal/pathutil"
)

// Pointer is a parsed $ref: the file it targets and the fragment within it.
// File is resolved against the file the $ref occurs in, so two pointers with
// equal Key address the same node.
type Pointer struct {
	// Raw is the $ref value as written
	Raw string
	// File is the cleaned target file name; empty for remote refs
	File string
	// Fragment is the canonical JSON Pointer ("" for the whole file)
	Fragment string
	// Remote is true for refs with a URL scheme
	Remote bool
}

// ParseRef resolves ref as it appears in baseFile.
func ParseRef(ref, baseFile string) Pointer {
	p := Pointer{Raw: ref}
	filePart, fragment, _ := strings.Cut(ref, "#")
	p.Fragment = CanonicalFragment(fragment)

	if filePart == "" {
		p.File = baseFile
		return p
	}
	if strings.Contains(filePart, "://") {
		p.Remote = true
		return p
	}
	if decoded, err := url.PathUnescape(filePart); err == nil {
		filePart = decoded
	}
	if !path.IsAbs(filePart) {
		filePart = path.Join(path.Dir(baseFile), filePart)
	}
	p.File = CleanName(filePart)
	return p
}

// Key returns a stable identifier of the addressed node.
func (p Pointer) Key() string {
	return p.File + "#" + p.Fragment
}

// Tokens returns the unescaped fragment tokens.
func (p Pointer) Tokens() []string {
	return SplitFragment(p.Fragment)
}

// IsLocalTo reports whether the pointer targets file.
func (p Pointer) IsLocalTo(file string) bool {
	return !p.Remote && p.File == file
}

// String renders the pointer as "file#fragment".
func (p Pointer) String() string {
	if p.Remote {
		return p.Raw
	}
	return p.Key()
}

// SplitFragment decodes a fragment into tokens.
func SplitFragment(fragment string) []string {
	return pathutil.SplitPointer(fragment)
}

// CanonicalFragment re-encodes a fragment so that equivalent spellings
// (percent-encoded or not, with or without a trailing "/") compare equal.
func CanonicalFragment(fragment string) string {
	return pathutil.JoinPointer(pathutil.SplitPointer(fragment))
}
