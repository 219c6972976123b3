package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the operations this gateway exposes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Listing needs no credentials; skip config validation.
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		reg, err := buildRegistry(cfg, zerolog.Nop())
		if err != nil {
			return err
		}

		for _, def := range reg.Definitions() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-28s %s\n", def.Name, def.Description)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}
