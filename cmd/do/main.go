package main

import (
	"os"

	"github.com/mindtab/mindtab/cmd/do/cmd"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "do",
		Short: "Operator tools for a MindTab server",
	}

	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.CleanupCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
