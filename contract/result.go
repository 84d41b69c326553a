package contract

// Result is the outcome of validating a batch of transactions.
type Result struct {
	// Transactions holds one entry per transaction, keyed by transaction id
	Transactions map[string]*TransactionResult `json:"transactions"`
	// Order lists transaction ids in input order
	Order []string `json:"order"`
	// MissingEndpoints lists declared operations no transaction matched
	MissingEndpoints []MissingEndpoint `json:"missingEndpoints"`
	// Warnings are problems with the document itself, such as malformed
	// path templates; the affected operations are skipped
	Warnings []string `json:"warnings,omitempty"`
}

// TransactionResult holds the findings for one transaction.
type TransactionResult struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	// Matched is true when an operation matched the request
	Matched bool `json:"matched"`
	// Endpoint is the matched operation as "METHOD /template"
	Endpoint string `json:"endpoint,omitempty"`
	// Mismatches found in the request, in discovery order
	Mismatches []Mismatch `json:"mismatches"`
	// Responses holds findings per response, keyed by response id
	Responses map[string]*ResponseResult `json:"responses,omitempty"`
}

// ResponseResult holds the findings for one recorded response.
type ResponseResult struct {
	ID         string     `json:"id"`
	Status     int        `json:"status"`
	Mismatches []Mismatch `json:"mismatches"`
}

// MissingEndpoint is a declared operation without any matching transaction.
type MissingEndpoint struct {
	Endpoint string `json:"endpoint"`
}

// Valid reports whether every transaction matched with no mismatches.
func (r *Result) Valid() bool {
	for _, tr := range r.Transactions {
		if !tr.Matched || tr.MismatchCount() > 0 {
			return false
		}
	}
	return true
}

// MismatchCount counts request and response mismatches.
func (tr *TransactionResult) MismatchCount() int {
	n := len(tr.Mismatches)
	for _, rr := range tr.Responses {
		n += len(rr.Mismatches)
	}
	return n
}

// All returns the request mismatches followed by response mismatches in
// response id order.
func (tr *TransactionResult) All() []Mismatch {
	out := append([]Mismatch(nil), tr.Mismatches...)
	for _, id := range sortedKeys(tr.Responses) {
		out = append(out, tr.Responses[id].Mismatches...)
	}
	return out
}
