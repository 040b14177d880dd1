package commands

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/Chrisc1124/statpad/internal/logger"
	"github.com/Chrisc1124/statpad/internal/server"
	"github.com/Chrisc1124/statpad/pkg/statpad"
)

var (
	mcpTransport   string
	mcpAddr        string
	mcpSSEEndpoint string
)

// MCPCmd starts a standalone MCP server for editor and agent integration.
var MCPCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server (stdio by default)",
	Long: `Start an MCP server exposing the statpad tools.

The default stdio transport is what editor and agent clients spawn; all
logging stays on stderr so stdout carries only the protocol. The SSE
transport serves the same tools on an HTTP listener without the REST API;
to host REST and MCP together use 'statpad serve --mcp-sse'.

Examples:
  statpad mcp                          # stdio transport
  statpad mcp --transport sse          # SSE on :8080/sse
  statpad mcp --transport sse --addr :9000`,
	RunE: runMCP,
}

func init() {
	MCPCmd.Flags().StringVar(&mcpTransport, "transport", "stdio", "Transport to use: stdio or sse")
	MCPCmd.Flags().StringVar(&mcpAddr, "addr", ":8080", "Address to listen on when using SSE transport")
	MCPCmd.Flags().StringVar(&mcpSSEEndpoint, "sse-endpoint", "/sse", "SSE endpoint path when using SSE transport")
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := initRuntime(cfg); err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signalContext()
	defer stop()

	svc, err := statpad.New(ctx, statpad.FromAppConfig(cfg))
	if err != nil {
		return err
	}
	defer svc.Close()

	mcpServer := server.NewMCPServer(svc)
	switch mcpTransport {
	case "stdio":
		return mcpServer.Run(ctx)
	case "sse":
		return mcpServer.RunSSE(ctx, mcpAddr, mcpSSEEndpoint)
	default:
		return errors.Newf("unknown transport %q (expected stdio or sse)", mcpTransport)
	}
}
