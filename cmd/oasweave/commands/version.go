package commands

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/erraggy/oasweave"
	"github.com/erraggy/oasweave/internal/cliutil"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version information",
		Long:  `Print the version, commit hash, build time, and Go version.`,
		Args:  cobra.NoArgs,
		// Version needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			cliutil.Writef(w, "oasweave %s\n", oasweave.Version())
			cliutil.Writef(w, "  Commit:     %s\n", oasweave.Commit())
			cliutil.Writef(w, "  Build Time: %s\n", oasweave.BuildTime())
			cliutil.Writef(w, "  Go Version: %s\n", oasweave.GoVersion())
			cliutil.Writef(w, "  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}
