package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	slogctx "github.com/veqryn/slog-context"
)

// BuildVersion is set by the build system.
var BuildVersion = "1.0.0"

func rootCmd() *cobra.Command {
	var envFile string

	serve := serveCmd(&envFile)
	cmd := &cobra.Command{
		Use:   "keyverify",
		Short: "Key verification service",
		Long:  `keyverify validates client keys against an in-memory allow-list, keeps a bounded verification log and serves a management console.`,
		RunE:  serve.RunE,
	}
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	cmd.AddCommand(
		serve,
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), BuildVersion)
				return err
			},
		},
	)
	return cmd
}

func main() {
	ctx, cancelOnSignal := signal.NotifyContext(
		context.Background(),
		os.Interrupt, syscall.SIGTERM,
	)
	defer cancelOnSignal()

	err := rootCmd().ExecuteContext(ctx)
	if err != nil {
		slogctx.Error(ctx, "Failed to start the application", "error", err)
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
