package contract

import (
	"strings"

	"github.com/ohler55/ojg/oj"
)

// Transaction is a recorded request with its responses.
type Transaction struct {
	ID        string     `json:"id" yaml:"id"`
	Name      string     `json:"name,omitempty" yaml:"name,omitempty"`
	Request   Request    `json:"request" yaml:"request"`
	Responses []Response `json:"responses,omitempty" yaml:"responses,omitempty"`
}

// Request is the request half of a transaction.
//
// Path may be a bare path ("/pets/1?limit=2"), a full URL, or a collection
// URL with a leading variable ("{{baseUrl}}/pets/:id"). Body holds an
// already decoded payload; RawBody is decoded as JSON when Body is nil.
type Request struct {
	Method  string            `json:"method" yaml:"method"`
	Path    string            `json:"path" yaml:"path"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Query   map[string]string `json:"query,omitempty" yaml:"query,omitempty"`
	Body    any               `json:"body,omitempty" yaml:"body,omitempty"`
	RawBody string            `json:"rawBody,omitempty" yaml:"rawBody,omitempty"`
}

// Response is one recorded response.
type Response struct {
	ID      string            `json:"id,omitempty" yaml:"id,omitempty"`
	Status  int               `json:"status" yaml:"status"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body    any               `json:"body,omitempty" yaml:"body,omitempty"`
	RawBody string            `json:"rawBody,omitempty" yaml:"rawBody,omitempty"`
}

// payload is a decoded body.
type payload struct {
	value   any
	present bool
	// raw is set when the body could not be decoded as JSON
	raw string
}

func decodeBody(body any, raw string) payload {
	if body != nil {
		return payload{value: body, present: true}
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return payload{}
	}
	v, err := oj.ParseString(trimmed)
	if err != nil {
		return payload{present: true, raw: raw}
	}
	return payload{value: v, present: true}
}

// header looks up a header case-insensitively.
func header(headers map[string]string, name string) (string, bool) {
	if v, ok := headers[name]; ok {
		return v, true
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}
