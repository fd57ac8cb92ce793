package main

import (
	"github.com/aretw0/consult/internal/cli"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Exposes the library and stored sessions as a JSON API over HTTP, with
server-sent events for session changes and Prometheus metrics on /metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cli.LoadConfig(globalOpts)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.HTTP.Port, _ = cmd.Flags().GetInt("port")
		}
		if cmd.Flags().Changed("metrics") {
			cfg.HTTP.Metrics, _ = cmd.Flags().GetBool("metrics")
		}
		watch, _ := cmd.Flags().GetBool("watch")

		app, err := cli.NewApp(cfg, globalOpts.Debug, false, cfg.HTTP.Metrics)
		if err != nil {
			return err
		}
		defer app.Close()

		return cli.RunServe(cmd.Context(), app, cfg.HTTP.Port, watch, cmd.OutOrStdout())
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes tree walking as MCP tools, so AI agents can start sessions,
answer questions and read drug monographs.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		// Logs go to stderr so they never corrupt JSON-RPC on stdout.
		return withApp(false, func(app *cli.App) error {
			return cli.RunMCP(cmd.Context(), app, transport, port)
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, mcpCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().Bool("metrics", true, "Expose Prometheus metrics on /metrics")
	serveCmd.Flags().BoolP("watch", "w", false, "Reload the content directory when it changes")

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
