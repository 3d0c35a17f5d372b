package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0"
	appName = "proposely"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{}
	err := rootCmd(a).ExecuteContext(ctx)
	if closeErr := a.close(); closeErr != nil {
		fmt.Fprintf(os.Stderr, "Ошибка закрытия хранилища: %v\n", closeErr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %s\n", errorMessage(err))
		os.Exit(1)
	}
}

func rootCmd(a *app) *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Генерация коммерческих предложений через бэкенд Proposely",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context(), logLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Уровень логов (debug, info, warn, error); по умолчанию LOG_LEVEL")

	cmd.AddCommand(
		loginCmd(a),
		signupCmd(a),
		logoutCmd(a),
		meCmd(a),
		generateCmd(a),
		previewCmd(a),
		saveCmd(a),
		listCmd(a),
		remoteListCmd(a),
		remoteDeleteCmd(a),
		showCmd(a),
		useCmd(a),
		downloadCmd(a),
		clearCmd(a),
		settingsCmd(a),
		healthCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Версия клиента",
			PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
				return nil
			},
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)

	return cmd
}
