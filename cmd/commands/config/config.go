package config

import (
	"boshladle/internal/config"

	"github.com/spf13/cobra"
)

// NewCommand returns the "config" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage bosh-ladle configuration",
		Long: "View and modify persistent bosh-ladle settings.\n\n" +
			"Configuration is stored at ~/.config/bosh-ladle/config.json.\n" +
			"Environment variables (AWS_REGION, BOSH_LITE_AMI) take precedence.\n\n" +
			config.KeysHelp(),
	}

	cmd.AddCommand(SetCommand())
	cmd.AddCommand(GetCommand())

	return cmd
}
