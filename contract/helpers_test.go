package contract

import (
	"context"
	"testing"

	"github.com/erraggy/oasweave/parser"
	"github.com/stretchr/testify/require"
)

func loadDoc(t *testing.T, src string) map[string]any {
	t.Helper()
	content, err := parser.Decode("openapi.yaml", []byte(src))
	require.NoError(t, err)
	doc, ok := content.(map[string]any)
	require.True(t, ok)
	return doc
}

func validate(t *testing.T, src string, txs []Transaction, opts ...Option) *Result {
	t.Helper()
	opts = append([]Option{WithDocument(loadDoc(t, src))}, opts...)
	res, err := Validate(context.Background(), txs, opts...)
	require.NoError(t, err)
	return res
}

func get(path string) Transaction {
	return Transaction{Request: Request{Method: "GET", Path: path}}
}

func post(path, body string) Transaction {
	return Transaction{Request: Request{Method: "POST", Path: path, RawBody: body}}
}

func kinds(ms []Mismatch) []Kind {
	out := make([]Kind, len(ms))
	for i, m := range ms {
		out[i] = m.Kind
	}
	return out
}

const petsDoc = `openapi: 3.0.3
info: {title: Pets, version: "1"}
servers:
  - url: https://api.example.com/v1
paths:
  /pets:
    get:
      parameters:
        - name: limit
          in: query
          schema: {type: integer, maximum: 100}
      responses:
        "200":
          description: OK
          content:
            application/json:
              schema:
                type: array
                items: {$ref: "#/components/schemas/Pet"}
    post:
      requestBody:
        required: true
        content:
          application/json:
            schema: {$ref: "#/components/schemas/Pet"}
      responses:
        "201": {description: Created}
        default: {description: Error}
  /pets/{id}:
    parameters:
      - name: id
        in: path
        required: true
        schema: {type: integer}
    get:
      responses:
        "200":
          description: OK
          headers:
            X-Rate-Limit:
              required: true
              schema: {type: integer}
          content:
            application/json:
              schema: {$ref: "#/components/schemas/Pet"}
        4XX: {description: Client error}
  /pets/mine:
    get:
      responses:
        "200": {description: OK}
components:
  schemas:
    Pet:
      type: object
      required: [id, name]
      properties:
        id: {type: integer}
        name: {type: string, minLength: 1}
        kind: {type: string, enum: [cat, dog]}
`
