package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/erraggy/oasweave/bundler"
	"github.com/erraggy/oasweave/internal/cliutil"
	"github.com/erraggy/oasweave/oaserrors"
)

func newRootDetectCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "root [dir]",
		Short: "Show the root file of a multi-file OpenAPI document",
		Long: `Detect the root file: the one specification file no other file references.
Files the root cannot reach are listed; they would be left out of a bundle.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := a.loadFileSet(specDir(args))
			if err != nil {
				return err
			}
			info, err := bundler.DetectRoot(fs)
			if err != nil {
				var re *oaserrors.RootError
				if errors.As(err, &re) {
					for _, c := range re.Candidates {
						cliutil.Writef(cmd.ErrOrStderr(), "candidate: %s\n", c)
					}
				}
				return err
			}

			cliutil.Writef(cmd.OutOrStdout(), "%s\n", info.Root)
			for _, f := range info.Unreachable {
				cliutil.Writef(cmd.ErrOrStderr(), "warning: file %s is not reachable from root %s\n", f, info.Root)
			}
			return nil
		},
	}
}
