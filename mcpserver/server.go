package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	r2pipe "github.com/wagiedev/r2pipe-go"
)

const (
	serverName    = "r2pipe"
	serverVersion = "0.1.0"
)

// Server exposes one radare2 pipe as Model Context Protocol tools.
//
// Two tools are registered: r2_cmd runs a command and returns its text
// response, and r2_cmd_json runs a JSON-producing command, optionally
// extracting a single value with a gjson path. The underlying pipe supports
// one in-flight command, so the server serializes tool calls with a mutex.
type Server struct {
	log  *slog.Logger
	pipe r2pipe.Pipe
	mu   sync.Mutex
}

// New creates an MCP server over an already-spawned pipe.
// The caller retains ownership of the pipe and closes it after Run returns.
func New(log *slog.Logger, pipe r2pipe.Pipe) *Server {
	return &Server{
		log:  log.With("component", "mcp_server"),
		pipe: pipe,
	}
}

// Run serves the tools over stdio until ctx is done or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)

	server.AddTool(cmdTool(), s.handleCmd)
	server.AddTool(cmdJSONTool(), s.handleCmdJSON)

	s.log.Info("Serving radare2 tools over stdio")

	return server.Run(ctx, &mcp.StdioTransport{})
}

// cmdTool describes the plain-text command tool.
func cmdTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "r2_cmd",
		Description: "Run a radare2 command against the loaded binary and return its text output.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"command": {
					Type:        "string",
					Description: "radare2 command to run (e.g. \"pd 10\", \"afl\")",
				},
			},
			Required: []string{"command"},
		},
		Annotations: &mcp.ToolAnnotations{
			ReadOnlyHint: true,
		},
	}
}

// cmdJSONTool describes the JSON command tool.
func cmdJSONTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "r2_cmd_json",
		Description: "Run a JSON-producing radare2 command (the \"j\" suffixed ones) and return the decoded result, optionally narrowed to a gjson path.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"command": {
					Type:        "string",
					Description: "radare2 command to run (e.g. \"ij\", \"aflj\")",
				},
				"path": {
					Type:        "string",
					Description: "optional gjson path to extract from the response (e.g. \"bin.arch\")",
				},
			},
			Required: []string{"command"},
		},
		Annotations: &mcp.ToolAnnotations{
			ReadOnlyHint: true,
		},
	}
}

// handleCmd implements the r2_cmd tool.
func (s *Server) handleCmd(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	command, _, err := parseArguments(req)
	if err != nil {
		return errorResult(err.Error()), nil
	}

	s.log.Debug("Tool call", "tool", "r2_cmd", "command", command)

	s.mu.Lock()
	out, err := s.pipe.Cmd(ctx, command)
	s.mu.Unlock()

	if err != nil {
		return errorResult(fmt.Sprintf("command failed: %v", err)), nil
	}

	return textResult(out), nil
}

// handleCmdJSON implements the r2_cmd_json tool.
func (s *Server) handleCmdJSON(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	command, path, err := parseArguments(req)
	if err != nil {
		return errorResult(err.Error()), nil
	}

	s.log.Debug("Tool call", "tool", "r2_cmd_json", "command", command, "path", path)

	s.mu.Lock()
	defer s.mu.Unlock()

	if path != "" {
		result, err := s.pipe.CmdjPath(ctx, command, path)
		if err != nil {
			return errorResult(fmt.Sprintf("command failed: %v", err)), nil
		}

		return textResult(result.Raw), nil
	}

	value, err := s.pipe.Cmdj(ctx, command)
	if err != nil {
		return errorResult(fmt.Sprintf("command failed: %v", err)), nil
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return errorResult(fmt.Sprintf("encode result: %v", err)), nil
	}

	return textResult(string(encoded)), nil
}

// parseArguments extracts the command and optional path from a tool request.
func parseArguments(req *mcp.CallToolRequest) (command, path string, err error) {
	if req == nil || req.Params == nil || len(req.Params.Arguments) == 0 {
		return "", "", fmt.Errorf("missing arguments")
	}

	var args struct {
		Command string `json:"command"`
		Path    string `json:"path"`
	}

	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return "", "", fmt.Errorf("failed to unmarshal arguments: %w", err)
	}

	if args.Command == "" {
		return "", "", fmt.Errorf("missing required argument: command")
	}

	return args.Command, args.Path, nil
}

// textResult creates a CallToolResult with text content.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// errorResult creates a CallToolResult indicating an error.
func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: message},
		},
		IsError: true,
	}
}
