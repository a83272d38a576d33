package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/estatehub/estate-service/internal/cli"
)

func main() {
	_ = godotenv.Load()
	rootCmd := &cobra.Command{
		Use:           "estatectl",
		Short:         "Estate service administration tool",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(
		cli.MigrateCmd(),
		cli.SweepPresenceCmd(),
		cli.SweepLogsCmd(),
		cli.CreateAdminCmd(),
		cli.MailWorkerCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
