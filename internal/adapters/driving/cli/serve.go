package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ptsearch/internal/adapters/driving/mcp"
	"github.com/custodia-labs/ptsearch/internal/config"
)

var (
	flagTransport string
	flagHost      string
	flagPort      int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP search server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

By default, the server communicates over stdio using JSON-RPC and can
be used with Claude Desktop and other MCP-compatible AI assistants.

Use --transport sse to start an HTTP server with a server-sent events
channel instead, which enables remote access and concurrent clients.

Examples:
  # Stdio mode (default, for Claude Desktop)
  ptsearch serve

  # SSE mode
  ptsearch serve --transport sse --host 127.0.0.1 --port 8000

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "pytorch-docs": {
        "command": "/path/to/ptsearch",
        "args": ["serve", "--data-dir", "/path/to/data"]
      }
    }
  }`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagTransport, "transport", "", "transport binding: stdio or sse")
	serveCmd.Flags().StringVar(&flagHost, "host", "", "listen address for the sse transport")
	serveCmd.Flags().IntVar(&flagPort, "port", 0, "listen port for the sse transport")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Fail fast on configuration and data problems before any
	// transport binds.
	rt, err := buildRuntime(true)
	if err != nil {
		return err
	}
	defer rt.Close() //nolint:errcheck

	if flagTransport != "" {
		rt.cfg.Transport = flagTransport
	}
	if flagHost != "" {
		rt.cfg.Host = flagHost
	}
	if flagPort != 0 {
		rt.cfg.Port = flagPort
	}
	if err := rt.cfg.Validate(); err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{Search: rt.search})
	if err != nil {
		return err
	}

	if rt.cfg.Transport == config.TransportSSE {
		addr := fmt.Sprintf("%s:%d", rt.cfg.Host, rt.cfg.Port)
		return server.RunSSE(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
