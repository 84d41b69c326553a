package mcpserver

import (
	"context"
	"errors"

	"github.com/erraggy/oasweave/bundler"
	"github.com/erraggy/oasweave/oaserrors"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type detectRootInput struct {
	Spec specInput `json:"spec" jsonschema:"The multi-file OAS document to inspect"`
}

type detectRootOutput struct {
	Found       bool     `json:"found"`
	Root        string   `json:"root,omitempty"`
	FromHint    bool     `json:"from_hint,omitempty"`
	FileCount   int      `json:"file_count"`
	Unreachable []string `json:"unreachable,omitempty"`
	Reason      string   `json:"reason,omitempty"`
	Candidates  []string `json:"candidates,omitempty"`
}

func handleDetectRoot(_ context.Context, _ *mcp.CallToolRequest, input detectRootInput) (*mcp.CallToolResult, detectRootOutput, error) {
	fs, err := input.Spec.resolve()
	if err != nil {
		return errResult(err), detectRootOutput{}, nil
	}

	output := detectRootOutput{FileCount: fs.Len()}
	info, err := bundler.DetectRoot(fs)
	if err != nil {
		// Root ambiguity is an answer, not a tool failure.
		var re *oaserrors.RootError
		if !errors.As(err, &re) {
			return errResult(err), detectRootOutput{}, nil
		}
		output.Reason = re.Error()
		output.Candidates = re.Candidates
		return nil, output, nil
	}

	output.Found = true
	output.Root = info.Root
	output.FromHint = info.FromHint
	output.Unreachable = info.Unreachable
	return nil, output, nil
}
