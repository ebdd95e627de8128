package main

import (
	"github.com/spf13/cobra"

	"github.com/hyperengineering/moltbook/internal/commands"
	moltbookmcp "github.com/hyperengineering/moltbook/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for coding agent integration",
	Long: `Start a Model Context Protocol (MCP) server over stdio.

Every menu command is exposed as a tool named moltbook_<command>, for
example moltbook_me or moltbook_create_post. Responses are returned as
JSON with API keys masked.

Configuration for an MCP client:

  {
    "mcpServers": {
      "moltbook": {
        "command": "moltbook",
        "args": ["mcp"],
        "env": {
          "MOLTBOOK_API_KEY": "moltbook_..."
        }
      }
    }
  }

The key is read from the credentials file or MOLTBOOK_API_KEY; the server
never prompts, because stdin carries the protocol. A key issued by
moltbook_register is saved to the credentials file, and registration is
refused while that file holds a working key.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context(), cmd, nil, appOptions{key: keyOptional, stderrOnly: true})
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.client.HasKey() {
		printWarning(a.out, "No API key found; only moltbook_register will work.")
	}

	// The client persists for the server lifetime.
	server := moltbookmcp.NewServer(a.client, commands.Default(), version, moltbookmcp.WithCredentialStore(a.store))
	return server.Run()
}
