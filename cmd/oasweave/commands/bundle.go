package commands

import (
	"github.com/spf13/cobra"

	"github.com/erraggy/oasweave/internal/cliutil"
)

func newBundleCommand(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "bundle [dir]",
		Short: "Bundle a multi-file OpenAPI document into one document",
		Long: `Bundle the specification files under dir (default: the working directory)
into one canonical document. References into other files are moved into the
components (or definitions) namespace; the result has no external references.

Example:
  oasweave bundle ./api                       # Print the bundled document
  oasweave bundle ./api -o openapi.json       # Write JSON (picked from the extension)
  oasweave bundle ./api --root main.yaml      # Skip root detection
  oasweave bundle ./api --verify              # Check 3.0 output with kin-openapi`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.bundleDir(cmd.Context(), specDir(args))
			if err != nil {
				return err
			}
			if !res.Success {
				cliutil.Writef(cmd.ErrOrStderr(), "%s\n", res.Reason)
				return errBundleFailed
			}
			printWarnings(cmd.ErrOrStderr(), res.Warnings)

			if output == "" {
				return writeDocument(cmd.OutOrStdout(), res.Document, a.settings.Format)
			}
			if err := writeFile(output, res.Document, a.settings.Format); err != nil {
				return err
			}
			cliutil.Writef(cmd.ErrOrStderr(), "bundled %s (%s) into %s: %d relocated, %d shared, %d inlined\n",
				res.RootFile, res.Version, output, res.Stats.Relocated, res.Stats.Shared, res.Stats.Inlined)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().Bool("verify", false, "load bundled OAS 3.0 output with kin-openapi and report problems")
	a.bind("verify", "bundle.verify")
	return cmd
}
