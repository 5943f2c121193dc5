// Command reddit-mcp serves the Reddit tools over the Model Context Protocol
// on stdin and stdout. Logs go to stderr.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	graw "github.com/jamesprial/go-reddit-session"
	"github.com/jamesprial/go-reddit-session/internal/config"
)

func main() {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "reddit-mcp",
		Short: "MCP server for reading and writing Reddit without API keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			logger := cfg.Logger(os.Stderr)

			client, err := graw.NewClient(cfg.ClientConfig(logger))
			if err != nil {
				return err
			}

			logger.Info("starting server", "name", serverName, "version", serverVersion, "session", client.SessionPath())
			server := newServer(graw.NewOperations(client), logger)
			return server.Run(cmd.Context(), &mcp.StdioTransport{})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default ~/.config/reddit-mcp/config.yaml)")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
