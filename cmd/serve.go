package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/ui5-tools/odatasync/api"
	"github.com/ui5-tools/odatasync/internal/editor"
	"github.com/ui5-tools/odatasync/internal/sync"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose generate/remove as MCP tools over stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := server.NewMCPServer("odatasync", "1.0.0")

		s.AddTool(mcp.NewTool("generate_service",
			mcp.WithDescription("Add or update an OData service binding in a UI5 project"),
			mcp.WithString("base_path", mcp.Required(), mcp.Description("Project base path")),
			mcp.WithString("descriptor", mcp.Required(), mcp.Description("Service descriptor as JSON")),
		), handleSync(sync.Generate))

		s.AddTool(mcp.NewTool("remove_service",
			mcp.WithDescription("Remove an OData service binding from a UI5 project"),
			mcp.WithString("base_path", mcp.Required(), mcp.Description("Project base path")),
			mcp.WithString("descriptor", mcp.Required(), mcp.Description("Service descriptor as JSON")),
		), handleSync(sync.Remove))

		return server.ServeStdio(s)
	},
}

func handleSync(run func(string, *api.ServiceDescriptor, *editor.Editor) (*editor.Editor, error)) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		base, err := req.RequireString("base_path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		raw, err := req.RequireString("descriptor")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		var desc api.ServiceDescriptor
		if err := json.Unmarshal([]byte(raw), &desc); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("parse descriptor: %v", err)), nil
		}

		ed, err := run(base, &desc, nil)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		staged := len(ed.StagedFiles()) + len(ed.DeletedFiles())
		if err := ed.Commit(); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("synchronized %s (%d files changed)", desc.Name, staged)), nil
	}
}
