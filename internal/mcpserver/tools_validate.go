package mcpserver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/erraggy/oasweave/bundler"
	"github.com/erraggy/oasweave/contract"
	"github.com/erraggy/oasweave/internal/loader"
	"github.com/erraggy/oasweave/internal/options"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type validateTrafficInput struct {
	Spec                      specInput              `json:"spec"                                  jsonschema:"The OAS document the traffic is validated against"`
	Transactions              []contract.Transaction `json:"transactions,omitempty"                jsonschema:"Recorded transactions: a request plus the responses observed for it"`
	TrafficFile               string                 `json:"traffic_file,omitempty"                jsonschema:"Path to a JSON or YAML file holding recorded transactions"`
	Strict                    *bool                  `json:"strict,omitempty"                      jsonschema:"Match requests against declared path templates only (no lenient fallback)"`
	Detailed                  *bool                  `json:"detailed,omitempty"                    jsonschema:"Validate body contents against schemas rather than presence only"`
	ShowMissingInSchema       *bool                  `json:"show_missing_in_schema,omitempty"      jsonschema:"Report body properties the schema does not declare"`
	IgnoreUnresolvedVariables *bool                  `json:"ignore_unresolved_variables,omitempty" jsonschema:"Do not report {{variable}} placeholders left in recorded values"`
	SuggestFixes              *bool                  `json:"suggest_fixes,omitempty"               jsonschema:"Attach suggested values to fixable mismatches"`
	Offset                    int                    `json:"offset,omitempty"                      jsonschema:"Skip the first N mismatches (for pagination)"`
	Limit                     int                    `json:"limit,omitempty"                       jsonschema:"Maximum number of mismatches to return (default 100)"`
}

type trafficMismatch struct {
	Transaction  string                 `json:"transaction"`
	Endpoint     string                 `json:"endpoint,omitempty"`
	Kind         contract.Kind          `json:"kind"`
	Location     contract.Location      `json:"location"`
	Path         string                 `json:"path,omitempty"`
	Reason       string                 `json:"reason"`
	SuggestedFix *contract.SuggestedFix `json:"suggested_fix,omitempty"`
}

type validateTrafficOutput struct {
	Valid            bool              `json:"valid"`
	TransactionCount int               `json:"transaction_count"`
	Unmatched        []string          `json:"unmatched,omitempty"`
	MismatchCount    int               `json:"mismatch_count"`
	Returned         int               `json:"returned"`
	Mismatches       []trafficMismatch `json:"mismatches,omitempty"`
	MissingEndpoints []string          `json:"missing_endpoints,omitempty"`
	Warnings         []string          `json:"warnings,omitempty"`
}

func handleValidateTraffic(ctx context.Context, _ *mcp.CallToolRequest, input validateTrafficInput) (*mcp.CallToolResult, validateTrafficOutput, error) {
	txs, err := input.transactions()
	if err != nil {
		return errResult(err), validateTrafficOutput{}, nil
	}
	fs, err := input.Spec.resolve()
	if err != nil {
		return errResult(err), validateTrafficOutput{}, nil
	}

	bundled, err := bundler.Bundle(ctx, fs, cfg.Settings.BundlerOptions(logger())...)
	if err != nil {
		return errResult(err), validateTrafficOutput{}, nil
	}
	if !bundled.Success {
		return errResult(fmt.Errorf("bundling specification: %s", bundled.Reason)), validateTrafficOutput{}, nil
	}

	v, err := contract.New(append(cfg.Settings.ContractOptions(logger()), input.options(bundled)...)...)
	if err != nil {
		return errResult(err), validateTrafficOutput{}, nil
	}
	res, err := v.Validate(ctx, txs)
	if err != nil {
		return errResult(err), validateTrafficOutput{}, nil
	}

	output := validateTrafficOutput{
		Valid:            res.Valid(),
		TransactionCount: len(res.Order),
		Warnings:         res.Warnings,
	}
	var all []trafficMismatch
	for _, id := range res.Order {
		tr := res.Transactions[id]
		if !tr.Matched {
			output.Unmatched = append(output.Unmatched, id)
		}
		for _, m := range tr.All() {
			all = append(all, trafficMismatch{
				Transaction:  id,
				Endpoint:     tr.Endpoint,
				Kind:         m.Kind,
				Location:     m.Location,
				Path:         m.Path,
				Reason:       m.Reason,
				SuggestedFix: m.SuggestedFix,
			})
		}
	}
	output.MismatchCount = len(all)
	output.Mismatches = paginate(all, input.Offset, input.Limit)
	output.Returned = len(output.Mismatches)

	output.MissingEndpoints = makeSlice[string](len(res.MissingEndpoints))
	for _, me := range res.MissingEndpoints {
		output.MissingEndpoints = append(output.MissingEndpoints, me.Endpoint)
	}
	return nil, output, nil
}

// transactions returns the inline transactions or those read from
// TrafficFile.
func (in validateTrafficInput) transactions() ([]contract.Transaction, error) {
	source, err := options.SingleSource("traffic",
		options.Source{Name: "transactions", Set: len(in.Transactions) > 0},
		options.Source{Name: "traffic_file", Set: in.TrafficFile != ""},
	)
	if err != nil {
		return nil, err
	}
	if source == "traffic_file" {
		abs, err := filepath.Abs(in.TrafficFile)
		if err != nil {
			return nil, fmt.Errorf("resolving traffic file path: %w", err)
		}
		if _, err := os.Stat(abs); err != nil {
			return nil, err
		}
		return loader.LoadTransactions(osfs.New(filepath.Dir(abs)), "/"+filepath.Base(abs))
	}
	return in.Transactions, nil
}

// options layers the per-call overrides on top of the configured defaults.
func (in validateTrafficInput) options(bundled *bundler.Result) []contract.Option {
	opts := []contract.Option{contract.WithBundleResult(bundled)}
	if in.Strict != nil {
		opts = append(opts, contract.WithStrictRequestMatching(*in.Strict))
	}
	if in.Detailed != nil {
		opts = append(opts, contract.WithDetailedBlobValidation(*in.Detailed))
	}
	if in.ShowMissingInSchema != nil {
		opts = append(opts, contract.WithShowMissingInSchemaErrors(*in.ShowMissingInSchema))
	}
	if in.IgnoreUnresolvedVariables != nil {
		opts = append(opts, contract.WithIgnoreUnresolvedVariables(*in.IgnoreUnresolvedVariables))
	}
	if in.SuggestFixes != nil {
		opts = append(opts, contract.WithSuggestAvailableFixes(*in.SuggestFixes))
	}
	return opts
}
