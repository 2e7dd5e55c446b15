package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/orris-inc/paypoint/internal/interfaces/cli/callbacks"
	"github.com/orris-inc/paypoint/internal/interfaces/cli/migrate"
	"github.com/orris-inc/paypoint/internal/interfaces/cli/server"
	"github.com/orris-inc/paypoint/internal/shared/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "paypoint",
		Short: "PayPoint - payment confirmation service",
		Long:  `PayPoint initiates hosted payments and applies verified gateway confirmations to orders.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		callbacks.NewCommand(),
		&cobra.Command{
			Use:   "version",
			Short: "Print build information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Println(version.String())
			},
		},
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
