package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/makhatib/mcp-microsoft365/internal/mcpserver"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve MCP over stdio",
	Long: `Serve starts the MCP server on stdin/stdout. Tool invocations are
validated, dispatched to Microsoft Graph, and answered as text results.
Logs go to stderr.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		log := newLogger(cfg)

		reg, err := buildRegistry(cfg, log)
		if err != nil {
			return err
		}

		srv, err := mcpserver.New(reg, version, log)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return srv.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
