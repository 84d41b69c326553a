package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/erraggy/oasweave/contract"
	"github.com/erraggy/oasweave/internal/cliutil"
	"github.com/erraggy/oasweave/internal/loader"
)

// Report formats.
const (
	ReportText = "text"
	ReportJSON = "json"
	ReportYAML = "yaml"
)

// errContractMismatch is returned when traffic does not match the contract;
// the report has already been printed.
var errContractMismatch = errors.New("traffic does not match the contract")

func newValidateCommand(a *app) *cobra.Command {
	var traffic, report string

	cmd := &cobra.Command{
		Use:   "validate [dir]",
		Short: "Validate recorded traffic against an OpenAPI document",
		Long: `Bundle the specification files under dir and compare every recorded
transaction with the operation it matches. The traffic file is JSON or YAML
holding a list of transactions, or an object with a "transactions" list.

Example:
  oasweave validate ./api -t traffic.json
  oasweave validate ./api -t traffic.yaml --detailed --show-missing
  oasweave validate ./api -t traffic.json --report json | jq '.missingEndpoints'

Exit Codes:
  0    Every transaction matched an operation without mismatches
  1    Mismatches, unmatched transactions, or an error`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateReportFormat(report); err != nil {
				return err
			}
			txs, err := loadTraffic(traffic)
			if err != nil {
				return err
			}
			bundled, err := a.bundleDir(cmd.Context(), specDir(args))
			if err != nil {
				return err
			}
			if !bundled.Success {
				cliutil.Writef(cmd.ErrOrStderr(), "%s\n", bundled.Reason)
				return errBundleFailed
			}
			printWarnings(cmd.ErrOrStderr(), bundled.Warnings)

			v, err := contract.New(append(a.settings.ContractOptions(a.log), contract.WithBundleResult(bundled))...)
			if err != nil {
				return err
			}
			res, err := v.Validate(cmd.Context(), txs)
			if err != nil {
				return err
			}

			if report == ReportText {
				printReport(cmd.OutOrStdout(), res)
			} else {
				tree, err := jsonTree(res)
				if err != nil {
					return err
				}
				data, err := cliutil.Marshal(tree, report)
				if err != nil {
					return err
				}
				if _, err := cmd.OutOrStdout().Write(data); err != nil {
					return err
				}
			}
			if !res.Valid() {
				return errContractMismatch
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&traffic, "traffic", "t", "", "JSON or YAML file of recorded transactions (required)")
	flags.StringVar(&report, "report", ReportText, "report format: text, json, or yaml")
	flags.Bool("strict", false, "match requests against declared path templates only")
	flags.Bool("detailed", false, "compare bodies recursively instead of presence only")
	flags.Bool("show-missing", false, "report body properties the schema does not declare")
	flags.Bool("ignore-variables", false, "do not report {{variable}} placeholders left in recorded values")
	flags.Bool("suggest-fixes", false, "attach suggested values to fixable mismatches")
	_ = cmd.MarkFlagRequired("traffic")
	a.bind("strict", "contract.strict")
	a.bind("detailed", "contract.detailedBlobValidation")
	a.bind("show-missing", "contract.showMissingInSchemaErrors")
	a.bind("ignore-variables", "contract.ignoreUnresolvedVariables")
	a.bind("suggest-fixes", "contract.suggestAvailableFixes")
	return cmd
}

func validateReportFormat(format string) error {
	switch format {
	case ReportText, ReportJSON, ReportYAML:
		return nil
	}
	return fmt.Errorf("invalid report format '%s'. Valid formats: %s, %s, %s", format, ReportText, ReportJSON, ReportYAML)
}

// loadTraffic reads the transactions file at name.
func loadTraffic(name string) ([]contract.Transaction, error) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", name, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, err
	}
	return loader.LoadTransactions(osfs.New(filepath.Dir(abs)), "/"+filepath.Base(abs))
}

// jsonTree converts v to plain maps and slices so that YAML output uses the
// same field names as JSON output.
func jsonTree(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding report: %w", err)
	}
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("encoding report: %w", err)
	}
	return tree, nil
}

// printReport writes a human-readable validation report.
func printReport(w io.Writer, res *contract.Result) {
	failed, mismatches := 0, 0
	for _, id := range res.Order {
		tr := res.Transactions[id]
		label := id
		if tr.Name != "" {
			label += " (" + tr.Name + ")"
		}
		if !tr.Matched {
			failed++
			cliutil.Writef(w, "✗ %s: no operation matched\n", label)
			continue
		}
		all := tr.All()
		if len(all) == 0 {
			cliutil.Writef(w, "✓ %s: %s\n", label, tr.Endpoint)
			continue
		}
		failed++
		mismatches += len(all)
		cliutil.Writef(w, "✗ %s: %s\n", label, tr.Endpoint)
		for _, m := range all {
			cliutil.Writef(w, "    [%s] %s\n", m.Kind, m.Reason)
			if fix := m.SuggestedFix; fix != nil {
				cliutil.Writef(w, "      suggested %s: %v\n", fix.Key, fix.Suggested)
			}
		}
	}
	for _, msg := range res.Warnings {
		cliutil.Writef(w, "warning: %s\n", msg)
	}
	if len(res.MissingEndpoints) > 0 {
		cliutil.Writef(w, "\nEndpoints without traffic (%d):\n", len(res.MissingEndpoints))
		for _, me := range res.MissingEndpoints {
			cliutil.Writef(w, "  %s\n", me.Endpoint)
		}
	}

	cliutil.Writef(w, "\n")
	if failed == 0 {
		cliutil.Writef(w, "✓ Validation passed: %d transaction(s)\n", len(res.Order))
		return
	}
	cliutil.Writef(w, "✗ Validation failed: %d of %d transaction(s), %d mismatch(es)\n", failed, len(res.Order), mismatches)
}
