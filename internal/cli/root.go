package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	configPath string
	serverURL  string
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envConfig := os.Getenv("CONFIG_PATH")

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cmd := &cobra.Command{
		Use:   "brainup",
		Short: "Console clients for the BrainUp live quiz",
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.PersistentFlags().StringVar(&serverURL, "server", "", "override the quiz server base URL")
	cmd.AddCommand(NewAdminCmd(&configPath, &serverURL))
	cmd.AddCommand(NewPlayCmd(&configPath, &serverURL))
	return cmd
}
