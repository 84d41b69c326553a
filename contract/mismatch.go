package contract

// Kind classifies a mismatch.
type Kind string

// Mismatch kinds.
const (
	KindMissingRequiredProperty Kind = "missing-required-property"
	KindTypeMismatch            Kind = "type-mismatch"
	KindEnumViolation           Kind = "enum-violation"
	KindRangeViolation          Kind = "range-violation"
	KindMissingInSchema         Kind = "missing-in-schema"
	KindUnresolvedVariable      Kind = "unresolved-variable"
	// KindMissingInRequest is a required parameter or body absent from the transaction.
	KindMissingInRequest Kind = "missing-in-request"
	// KindInvalidValue covers string, array and object constraints and oneOf ambiguity.
	KindInvalidValue Kind = "invalid-value"
	// KindInvalidBody is a body that could not be decoded.
	KindInvalidBody Kind = "invalid-body"
	// KindUndocumentedResponse is a response status the operation does not declare.
	KindUndocumentedResponse Kind = "undocumented-response"
)

// Location says where in the transaction a mismatch was found.
type Location string

// Location constants.
const (
	LocationPath           Location = "path"
	LocationQuery          Location = "query"
	LocationHeader         Location = "header"
	LocationRequestBody    Location = "requestBody"
	LocationResponse       Location = "response"
	LocationResponseHeader Location = "responseHeader"
	LocationResponseBody   Location = "responseBody"
)

// label is the human wording used in reasons.
func (l Location) label() string {
	switch l {
	case LocationPath:
		return "path variable"
	case LocationQuery:
		return "query parameter"
	case LocationHeader:
		return "header"
	case LocationRequestBody:
		return "request body"
	case LocationResponseHeader:
		return "response header"
	case LocationResponseBody:
		return "response body"
	default:
		return "response"
	}
}

// isBody reports whether paths at l address properties of a payload.
func (l Location) isBody() bool {
	return l == LocationRequestBody || l == LocationResponseBody
}

// Mismatch is one discrepancy between a transaction and its operation.
// Mismatches are never modified after they are reported.
type Mismatch struct {
	Kind     Kind     `json:"kind"`
	Location Location `json:"location"`
	// Path is the location within the payload ("owner.tags[0]"), or the
	// parameter name for parameters. Empty for the payload root.
	Path   string `json:"path,omitempty"`
	Reason string `json:"reason"`
	// SuggestedFix is set when fix suggestions are enabled and a value could
	// be derived from the schema.
	SuggestedFix *SuggestedFix `json:"suggestedFix,omitempty"`
}

// SuggestedFix proposes a replacement value.
type SuggestedFix struct {
	Key       string `json:"key"`
	Actual    any    `json:"actual"`
	Suggested any    `json:"suggested"`
}

// reason renders "The <location>[ property "<path>"] <msg>".
func reason(loc Location, path, msg string) string {
	switch {
	case path == "":
		return "The " + loc.label() + " " + msg
	case loc.isBody():
		return "The " + loc.label() + " property \"" + path + "\" " + msg
	default:
		return "The " + loc.label() + " \"" + path + "\" " + msg
	}
}
