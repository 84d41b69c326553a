package mcpserver

import (
	"context"
	"fmt"
	"os"

	"github.com/erraggy/oasweave/bundler"
	"github.com/erraggy/oasweave/internal/cliutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type bundleInput struct {
	Spec            specInput `json:"spec"                       jsonschema:"The multi-file OAS document to bundle"`
	Verify          *bool     `json:"verify,omitempty"           jsonschema:"Load bundled OAS 3.0 output with kin-openapi and report problems as warnings"`
	IncludeDocument *bool     `json:"include_document,omitempty" jsonschema:"Return the bundled document inline (default true; ignored when output is set)"`
	Format          string    `json:"format,omitempty"           jsonschema:"Document format: yaml or json (default from configuration, or the output file extension)"`
	Output          string    `json:"output,omitempty"           jsonschema:"File path to write the bundled document to instead of returning it inline"`
}

type bundleOutput struct {
	Success      bool                 `json:"success"`
	Reason       string               `json:"reason,omitempty"`
	Root         string               `json:"root,omitempty"`
	Version      string               `json:"version,omitempty"`
	Relocations  []bundler.Relocation `json:"relocations,omitempty"`
	CircularRefs []string             `json:"circular_refs,omitempty"`
	Warnings     []string             `json:"warnings,omitempty"`
	Stats        bundler.Stats        `json:"stats"`
	Document     string               `json:"document,omitempty"`
	WrittenTo    string               `json:"written_to,omitempty"`
}

func handleBundle(ctx context.Context, _ *mcp.CallToolRequest, input bundleInput) (*mcp.CallToolResult, bundleOutput, error) {
	fs, err := input.Spec.resolve()
	if err != nil {
		return errResult(err), bundleOutput{}, nil
	}

	settings := *cfg.Settings
	if input.Verify != nil {
		settings.Bundle.Verify = *input.Verify
	}
	res, err := bundler.Bundle(ctx, fs, settings.BundlerOptions(logger())...)
	if err != nil {
		return errResult(err), bundleOutput{}, nil
	}
	if !res.Success {
		// An unbundlable document is an answer, not a tool failure.
		return nil, bundleOutput{Reason: res.Reason}, nil
	}

	output := bundleOutput{
		Success:      true,
		Root:         res.RootFile,
		Version:      res.Version.String(),
		Relocations:  res.Relocations,
		CircularRefs: res.CircularRefs,
		Warnings:     res.Warnings,
		Stats:        res.Stats,
	}

	format := input.Format
	if format == "" {
		format = cliutil.FormatFor(input.Output, settings.Format)
	}
	if input.Output == "" && input.IncludeDocument != nil && !*input.IncludeDocument {
		return nil, output, nil
	}
	data, err := cliutil.Marshal(res.Document, format)
	if err != nil {
		return errResult(err), bundleOutput{}, nil
	}
	if input.Output != "" {
		if err := os.WriteFile(input.Output, data, 0o644); err != nil { //nolint:gosec // G306: bundled specs are not secrets
			return errResult(fmt.Errorf("writing output: %w", err)), bundleOutput{}, nil
		}
		output.WrittenTo = input.Output
		return nil, output, nil
	}
	output.Document = string(data)
	return nil, output, nil
}
