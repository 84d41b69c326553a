package parser

import (
	"strconv"
	"strings"
)

// OASVersion identifies the OpenAPI Specification series a document declares.
// Bundling rules differ per series, patch releases do not matter.
type OASVersion int

const (
	// Unknown represents a missing or unsupported version
	Unknown OASVersion = iota
	// OASVersion20 OpenAPI Specification Version 2.0 (Swagger)
	OASVersion20
	// OASVersion30 OpenAPI Specification Version 3.0.x
	OASVersion30
	// OASVersion31 OpenAPI Specification Version 3.1.x
	OASVersion31
	// OASVersion32 OpenAPI Specification Version 3.2.x
	OASVersion32
)

var versionToString = map[OASVersion]string{
	OASVersion20: "2.0",
	OASVersion30: "3.0",
	OASVersion31: "3.1",
	OASVersion32: "3.2",
}

func (v OASVersion) String() string {
	if s, ok := versionToString[v]; ok {
		return s
	}
	return "unknown"
}

// IsValid returns true if this is a supported version.
func (v OASVersion) IsValid() bool {
	_, ok := versionToString[v]
	return ok
}

// IsOAS2 reports whether v is Swagger 2.0.
func (v OASVersion) IsOAS2() bool {
	return v == OASVersion20
}

// IsOAS3 reports whether v is any 3.x series.
func (v OASVersion) IsOAS3() bool {
	return v >= OASVersion30
}

// ParseVersion maps a version string such as "2.0", "3.0.3" or "3.1.0-rc1"
// onto its series. Returns false if the series is not supported.
func ParseVersion(s string) (OASVersion, bool) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "-+"); i >= 0 {
		s = s[:i]
	}
	parts := strings.Split(s, ".")
	if len(parts) < 2 {
		return Unknown, false
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return Unknown, false
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return Unknown, false
	}
	switch {
	case major == 2 && minor == 0 && len(parts) == 2:
		return OASVersion20, true
	case major == 3 && minor == 0:
		return OASVersion30, true
	case major == 3 && minor == 1:
		return OASVersion31, true
	case major == 3 && minor == 2:
		return OASVersion32, true
	}
	return Unknown, false
}

// DetectVersion reads the "swagger" or "openapi" field of a decoded document.
// The raw version string is returned alongside the series; both are zero
// when the document declares neither field.
func DetectVersion(content any) (OASVersion, string) {
	m, ok := content.(map[string]any)
	if !ok {
		return Unknown, ""
	}
	for _, key := range []string{"openapi", "swagger"} {
		raw, ok := m[key]
		if !ok {
			continue
		}
		s := versionString(raw)
		v, _ := ParseVersion(s)
		return v, s
	}
	return Unknown, ""
}

// versionString renders unquoted YAML versions (swagger: 2.0 decodes as float).
func versionString(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case float64:
		s := strconv.FormatFloat(v, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	case int:
		return strconv.Itoa(v) + ".0"
	default:
		return ""
	}
}
