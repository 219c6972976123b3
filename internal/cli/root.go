// Package cli implements the mcp-microsoft365 command line interface.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/makhatib/mcp-microsoft365/internal/config"
	"github.com/makhatib/mcp-microsoft365/internal/graph"
	"github.com/makhatib/mcp-microsoft365/internal/logger"
	"github.com/makhatib/mcp-microsoft365/internal/tools"
	"github.com/makhatib/mcp-microsoft365/internal/tools/calendar"
	"github.com/makhatib/mcp-microsoft365/internal/tools/chat"
	"github.com/makhatib/mcp-microsoft365/internal/tools/directory"
	"github.com/makhatib/mcp-microsoft365/internal/tools/files"
	"github.com/makhatib/mcp-microsoft365/internal/tools/mail"
	"github.com/makhatib/mcp-microsoft365/internal/tools/tasks"
)

var (
	// version is set by goreleaser ldflags via SetVersion.
	version = "dev"

	configPath string
	logLevel   string
	debug      bool
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "mcp-microsoft365",
	Short: "MCP gateway for Microsoft 365",
	Long: `mcp-microsoft365 exposes Microsoft 365 mail, calendar, files, tasks,
chat, and directory operations as MCP tools, backed by application
(client-credentials) access to Microsoft Graph.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string for the CLI.
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.mcp-microsoft365/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging with a pretty console writer")
}

// loadConfig loads configuration and applies command line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if debug {
		cfg.Debug = true
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// newLogger builds the process logger from the resolved configuration.
func newLogger(cfg *config.Config) zerolog.Logger {
	return logger.New(cfg.LogLevel, cfg.Debug)
}

// buildRegistry wires the gateway core and registers every domain's
// operations. Registration order is the listing order shown to callers.
func buildRegistry(cfg *config.Config, log zerolog.Logger) (*tools.Registry, error) {
	tokens := graph.NewTokenManager(cfg.TenantID, cfg.ClientID, cfg.ClientSecret,
		graph.WithTokenLogger(log))
	client := graph.NewClient(tokens, graph.WithLogger(log))

	reg := tools.NewRegistry(log)
	if err := mail.Register(reg, client, cfg.DefaultUser); err != nil {
		return nil, err
	}
	if err := calendar.Register(reg, client, cfg.DefaultUser); err != nil {
		return nil, err
	}
	if err := files.Register(reg, client, cfg.DefaultUser); err != nil {
		return nil, err
	}
	if err := tasks.Register(reg, client, cfg.DefaultUser); err != nil {
		return nil, err
	}
	if err := chat.Register(reg, client, cfg.DefaultUser); err != nil {
		return nil, err
	}
	if err := directory.Register(reg, client); err != nil {
		return nil, err
	}
	return reg, nil
}
