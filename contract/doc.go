// Package contract validates recorded API traffic against a bundled OpenAPI
// document.
//
// Each [Transaction] is first matched to an [Operation] by method and path
// template, then its parameters, body and responses are compared with the
// operation's schemas. Findings are [Mismatch] values with a kind, a payload
// path and a reason such as:
//
//	The request body property "objectType" must be > 10
//
// Nothing in a transaction is treated as a Go error. Unmatched transactions
// have Matched set to false, and declared operations that no transaction
// exercised are listed in Result.MissingEndpoints as "METHOD /path".
//
// # Matching
//
// Literal template segments must equal the request segment; variable
// segments ("{id}") take any non-empty value and mixed segments
// ("{name}.json") use a per-segment pattern. The candidate with the most
// literal segments wins. Config.StrictRequestMatching refuses to let a
// variable segment absorb a value another template of the same method
// declares as a literal.
//
// # Composite schemas
//
// allOf, anyOf and oneOf are evaluated by separate strategies. A failing
// anyOf or oneOf reports the failures of the branch that came closest to
// passing instead of a generic message.
package contract
