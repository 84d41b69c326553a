// Package oasweave bundles multi-file OpenAPI specifications into one
// canonical document and validates recorded HTTP traffic against it.
//
// All packages support the following OpenAPI Specification versions:
//   - OAS 2.0 (Swagger): https://spec.openapis.org/oas/v2.0.html
//   - OAS 3.0.x: https://spec.openapis.org/oas/v3.0.3.html
//   - OAS 3.1.x: https://spec.openapis.org/oas/v3.1.0.html
//
// # Overview
//
// The library consists of three primary packages:
//
//   - parser: decode a set of files into a document graph of node trees
//     joined by $ref pointers
//   - bundler: detect the root file, classify every pointer and relocate
//     its target into the component namespace of one document
//   - contract: match recorded transactions to operations of a bundled
//     document and report typed mismatches
//
// Expected failures are data, not Go errors: a bundle that cannot be built
// returns a Result with Success=false and a user-facing Reason, and
// validation findings are Mismatch values. Go errors are reserved for
// invalid options and cancellation. Typed errors live in package oaserrors.
//
// # Installation
//
//	go get github.com/erraggy/oasweave
//
// # Quick Start
//
// Bundle a multi-file specification:
//
//	fs, err := parser.NewFileSet(map[string][]byte{
//		"openapi.yaml":     rootBytes,
//		"schemas/pet.yaml": petBytes,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	res, err := bundler.Bundle(ctx, fs)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if !res.Success {
//		log.Fatal(res.Reason)
//	}
//
// Validate recorded traffic against the bundle:
//
//	report, err := contract.Validate(ctx, transactions,
//		contract.WithBundleResult(res),
//		contract.WithDetailedBlobValidation(true))
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, id := range report.Order {
//		for _, m := range report.Transactions[id].All() {
//			fmt.Println(m.Reason)
//		}
//	}
//
// # Command line
//
// The oasweave binary wraps the same packages:
//
//	oasweave root ./api
//	oasweave bundle ./api -o bundled.yaml
//	oasweave validate ./api --traffic traffic.json --detailed
//	oasweave watch ./api -o bundled.yaml
//	oasweave mcp
//
// Defaults are read from oasweave.yaml, OASWEAVE_* environment variables and
// a .env file.
package oasweave
