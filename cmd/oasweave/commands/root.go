// Package commands provides the cobra command tree for the oasweave CLI.
package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/erraggy/oasweave/internal/config"
	"github.com/erraggy/oasweave/parser"
)

// app carries the state shared by every command of one invocation.
type app struct {
	cfgFile  string
	settings *config.Config
	log      parser.Logger

	// overrides maps a flag name to the configuration key it sets when
	// the flag is given on the command line
	overrides map[string]string
}

// NewRootCommand builds the oasweave command tree.
func NewRootCommand() *cobra.Command {
	a := &app{overrides: make(map[string]string)}

	cmd := &cobra.Command{
		Use:   "oasweave",
		Short: "Bundle multi-file OpenAPI documents and validate traffic against them",
		Long: `oasweave merges a multi-file OpenAPI 2.0, 3.0 or 3.1 document into one
canonical document and validates recorded HTTP traffic against it.

Settings are read from oasweave.yaml, OASWEAVE_* environment variables
(a .env file is loaded first) and command-line flags, in increasing order
of precedence.

Example:
  oasweave root ./api                        # Show the detected root file
  oasweave bundle ./api -o openapi.yaml      # Bundle into one document
  oasweave validate ./api -t traffic.json    # Validate recorded traffic
  oasweave watch ./api -o openapi.yaml       # Re-bundle on every change
  oasweave mcp                               # Serve MCP tools over stdio`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default: oasweave.yaml in the working directory)")
	flags.StringP("format", "f", "", "document output format: yaml, json (default: yaml)")
	flags.String("root", "", "root file name, skipping root detection")
	flags.StringSlice("include", nil, "glob patterns selecting specification files")
	flags.StringSlice("exclude", nil, "glob patterns excluding files or directories")
	flags.BoolP("verbose", "v", false, "enable debug logging")
	a.bind("format", "format")
	a.bind("root", "root")
	a.bind("include", "include")
	a.bind("exclude", "exclude")
	a.bind("verbose", "verbose")

	cmd.AddCommand(
		newBundleCommand(a),
		newRootDetectCommand(a),
		newValidateCommand(a),
		newWatchCommand(a),
		newMCPCommand(a),
		newVersionCommand(),
	)
	return cmd
}

// bind records that flag sets the configuration key when given.
func (a *app) bind(flag, key string) {
	a.overrides[flag] = key
}

// load resolves the configuration for cmd and installs the logger.
func (a *app) load(cmd *cobra.Command) error {
	overrides := make(map[string]any)
	for name, key := range a.overrides {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if f.Value.Type() == "stringSlice" {
			v, err := cmd.Flags().GetStringSlice(name)
			if err != nil {
				return err
			}
			overrides[key] = v
			continue
		}
		overrides[key] = f.Value.String()
	}

	settings, err := config.Load(config.Source{File: a.cfgFile, Overrides: overrides})
	if err != nil {
		return err
	}
	a.settings = settings

	level := slog.LevelWarn
	if settings.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	a.log = parser.NewSlogAdapter(logger)
	return nil
}
