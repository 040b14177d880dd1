package commands

import (
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/Chrisc1124/statpad/internal/httpapi"
	"github.com/Chrisc1124/statpad/internal/logger"
	"github.com/Chrisc1124/statpad/internal/server"
	"github.com/Chrisc1124/statpad/pkg/statpad"
)

var (
	serveAddr   string
	serveMCPSSE bool
)

// ServeCmd starts the HTTP API, optionally hosting the SSE MCP endpoint.
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the REST API server.

With --mcp-sse (or server.mcp_sse in config) the MCP SSE endpoint is hosted
on the same listener, so REST clients and MCP agents share one address.

Examples:
  statpad serve                  # REST on :8000
  statpad serve --addr :9000     # REST on :9000
  statpad serve --mcp-sse        # REST plus MCP at /sse`,
	RunE: runServe,
}

func init() {
	ServeCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
	ServeCmd.Flags().BoolVar(&serveMCPSSE, "mcp-sse", false, "Host the MCP SSE endpoint on the same listener")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if cmd.Flags().Changed("mcp-sse") {
		cfg.Server.MCPSSE = serveMCPSSE
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

	api := httpapi.New(svc, cfg.Server)
	if cfg.Server.MCPSSE {
		mcpServer := server.NewMCPServer(svc)
		api.Mount(cfg.Server.MCPSSEEndpoint, mcpServer.SSEHandler())
		pterm.Info.Printf("MCP SSE endpoint at %s%s\n", cfg.Server.Addr, cfg.Server.MCPSSEEndpoint)
	}

	// connection pool gauges while the server runs
	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				svc.PoolStats()
			}
		}
	}()

	pterm.Info.Printf("statpad API listening on %s\n", cfg.Server.Addr)
	pterm.Info.Println("Press Ctrl+C to stop")

	if err := api.Run(ctx); err != nil {
		return err
	}
	pterm.Success.Println("Server stopped cleanly")
	return nil
}
