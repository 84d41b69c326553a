// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes oasweave capabilities as MCP tools over stdio.
package mcpserver

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/erraggy/oasweave"
	"github.com/erraggy/oasweave/internal/config"
	"github.com/erraggy/oasweave/parser"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `oasweave MCP server: bundles multi-file OpenAPI documents into one canonical document and validates recorded HTTP traffic against them.

Workflow: call detect_root first when unsure which file is the entry point, then bundle to inspect the merged document, then validate_traffic to compare recorded transactions against it.

Specs can be given as a file (the root file; its directory is loaded so relative refs resolve), a dir, an inline files map (name to content) or inline content.

Configuration: shared settings come from oasweave.yaml and OASWEAVE_* environment variables (include/exclude globs, limits, contract defaults). MCP-only settings:
- OASWEAVE_MCP_CACHE_ENABLED (default: true): cache loaded file sets
- OASWEAVE_MCP_CACHE_TTL (default: 15m): cache entry lifetime
- OASWEAVE_MCP_RESULT_LIMIT (default: 100): default page size for mismatches
- OASWEAVE_MCP_MAX_INLINE_SIZE (default: 10MiB): cap on inline content`

// Run starts the MCP server over stdio and blocks until the client disconnects
// or the context is cancelled. Non-nil settings replace the ones loaded from
// the working directory at startup.
func Run(ctx context.Context, settings *config.Config) error {
	if settings != nil {
		cfg.Settings = settings
	}
	server := mcp.NewServer(
		&mcp.Implementation{Name: "oasweave", Version: oasweave.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "detect_root",
		Description: "Detect the root document of a multi-file OpenAPI specification: the single file no other file references. Returns the root, whether it came from a hint, and the files the root cannot reach. When detection fails the reason and candidate roots are returned instead.",
	}, handleDetectRoot)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "bundle",
		Description: "Bundle a multi-file OpenAPI 2.0, 3.0 or 3.1 specification into one canonical document. External references are moved into the components (or definitions) namespace under stable keys; cycles stay as references. Returns relocations, circular refs, warnings and stats. Set include_document=false on large specs, or output to write the document to a file.",
	}, handleBundle)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_traffic",
		Description: "Validate recorded HTTP transactions (request plus responses) against an OpenAPI specification. Reports per-transaction mismatches (missing required properties, type, enum and range violations, undocumented responses) and the endpoints no transaction exercised. Provide transactions inline or via traffic_file. Use offset/limit to page through mismatches.",
	}, handleValidateTraffic)
}

// logger returns the parser logger tool handlers pass to the engines.
func logger() parser.Logger {
	return parser.NewSlogAdapter(slog.Default())
}

// paginate applies offset/limit pagination to a slice, returning the
// requested page. A non-positive limit defaults to cfg.ResultLimit.
func paginate[T any](items []T, offset, limit int) []T {
	if limit <= 0 {
		limit = cfg.ResultLimit
	}
	if limit > cfg.MaxLimit {
		limit = cfg.MaxLimit
	}
	if offset < 0 || offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end < offset || end > len(items) { // overflow or beyond slice
		end = len(items)
	}
	return items[offset:end]
}

// makeSlice returns nil when n is 0 (preserving omitempty JSON semantics),
// otherwise returns make([]T, 0, n) for pre-allocated appending.
func makeSlice[T any](n int) []T {
	if n == 0 {
		return nil
	}
	return make([]T, 0, n)
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}
