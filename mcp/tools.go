package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/henrikbykvist/fpl-feed-raakens-disipler/feed/fetch"
	"github.com/henrikbykvist/fpl-feed-raakens-disipler/feed/snapshot"
	"github.com/henrikbykvist/fpl-feed-raakens-disipler/feed/validate"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
)

var argValidator = validator.New()

func InitTools(root string) []server.ServerTool {
	tools := []server.ServerTool{}

	tools = append(tools, newServerTool(ValidateSnapshot(root)))
	tools = append(tools, newServerTool(SnapshotSection(root)))

	return tools
}

// resolvePath returns the snapshot path for a tool argument
func resolvePath(root, path string) string {
	if path == "" {
		path = validate.DefaultPath
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

func ValidateSnapshot(root string) (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool(
			"validate_snapshot",
			mcp.WithDescription("Check that an FPL feed snapshot has the required top-level and fpl keys"),
			mcp.WithString("path", mcp.Description("Snapshot path (default data/latest.json)")),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			type ToolArguments struct {
				Path string `json:"path" validate:"omitempty"`
			}
			var args ToolArguments
			if err := mapstructure.Decode(req.Params.Arguments, &args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if err := argValidator.StructCtx(ctx, args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			path := resolvePath(root, args.Path)
			var out bytes.Buffer
			code := validate.Run(path, &out)

			type ValidationInfo struct {
				Path     string `json:"path"`
				OK       bool   `json:"ok"`
				Message  string `json:"message"`
				ExitCode int    `json:"exit_code"`
			}
			b, err := fetch.MarshalUnescaped(ValidationInfo{
				Path:     path,
				OK:       code == 0,
				Message:  strings.TrimSuffix(out.String(), "\n"),
				ExitCode: code,
			})
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			return mcp.NewToolResultText(string(b)), nil
		}
}

func SnapshotSection(root string) (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool(
			"snapshot_section",
			mcp.WithDescription("Return one top-level section of an FPL feed snapshot as JSON"),
			mcp.WithString("section", mcp.Required(), mcp.Description("Section name: "+strings.Join(snapshot.Sections, ", "))),
			mcp.WithString("path", mcp.Description("Snapshot path (default data/latest.json)")),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			type ToolArguments struct {
				Section string `json:"section" validate:"required,oneof=fpl set_pieces injuries elite odds _fetched_at_utc _note"`
				Path    string `json:"path" validate:"omitempty"`
			}
			var args ToolArguments
			if err := mapstructure.Decode(req.Params.Arguments, &args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if err := argValidator.StructCtx(ctx, args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			path := resolvePath(root, args.Path)
			raw, err := os.ReadFile(path)
			if err != nil {
				return mcp.NewToolResultError("Missing: " + path), nil
			}
			var doc map[string]json.RawMessage
			if err := json.Unmarshal(raw, &doc); err != nil {
				return mcp.NewToolResultError("Invalid JSON: " + path + ": " + err.Error()), nil
			}
			section, ok := doc[args.Section]
			if !ok {
				return mcp.NewToolResultError("Missing top-level key: " + args.Section), nil
			}

			return mcp.NewToolResultText(string(section)), nil
		}
}
