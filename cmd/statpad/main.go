package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Chrisc1124/statpad/cmd/statpad/commands"
)

var rootCmd = &cobra.Command{
	Use:   "statpad",
	Short: "statpad - natural-language basketball statistics server",
	Long: `statpad answers natural-language basketball statistics questions from a
libSQL-backed store and serves the answers over HTTP and MCP.

Available commands:
  serve   - Start the HTTP API (optionally hosting the SSE MCP endpoint)
  mcp     - Start an MCP server on stdio for editor and agent integration
  seed    - Create the schema and seed the reference seasons and teams
  import  - Import season stats from the configured source
  ask     - Run one query from the terminal and print the result envelope
  version - Show build information

Examples:
  statpad seed                       # Prepare a fresh local database
  statpad import --seasons 2023-24   # Pull one season from the source
  statpad ask compare Lakers and Warriors in 2023-24
  statpad serve --mcp-sse            # REST plus /sse MCP on one listener
  statpad mcp                        # stdio MCP for a local agent`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&commands.ConfigFile, "config", "", "Path to an explicit config file (default: search ./config.yaml)")

	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.MCPCmd)
	rootCmd.AddCommand(commands.SeedCmd)
	rootCmd.AddCommand(commands.ImportCmd)
	rootCmd.AddCommand(commands.AskCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
