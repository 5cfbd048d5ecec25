package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/mindtab/mindtab/cmd/mindtab/cmd"
	"github.com/spf13/cobra"
)

func main() {
	opts := &cmd.Options{}

	rootCmd := &cobra.Command{
		Use:          "mindtab",
		Short:        "MindTab goals and preferences from the terminal",
		SilenceUsage: true,
		PersistentPreRun: func(c *cobra.Command, args []string) {
			opts.Setup()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.Server, "server", os.Getenv("MINDTAB_URL"), "MindTab server URL (env MINDTAB_URL)")
	flags.StringVar(&opts.Token, "token", os.Getenv("MINDTAB_TOKEN"), "API token (env MINDTAB_TOKEN)")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(cmd.LoginCmd(opts))
	rootCmd.AddCommand(cmd.GoalsCmd(opts))
	rootCmd.AddCommand(cmd.PrefsCmd(opts))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
