package bundler

import (
	"context"
	"encoding/json"

	"github.com/erraggy/oasweave/parser"
	"github.com/getkin/kin-openapi/openapi3"
)

// verifyDocument loads a bundled OAS 3.0 document with kin-openapi and
// returns its problems as warnings. Other versions are skipped.
func verifyDocument(ctx context.Context, doc map[string]any, v parser.OASVersion) []string {
	if v != parser.OASVersion30 {
		return []string{"verification skipped: only OAS 3.0 documents are verified"}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return []string{"verification failed: " + err.Error()}
	}

	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = false
	loader.Context = ctx
	t, err := loader.LoadFromData(data)
	if err != nil {
		return []string{"verification failed: " + err.Error()}
	}
	if err := t.Validate(ctx); err != nil {
		return []string{"verification failed: " + err.Error()}
	}
	return nil
}
