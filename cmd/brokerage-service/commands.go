package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal"
	"github.com/Inferno271/RealEstateAssistantPro-sub003/internal/configs"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "brokerage-service",
		Short:         "Бронирования и подбор объектов для клиентов агентства",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("env", "", "path to .env file (default: ./.env)")

	rootCmd.AddCommand(
		serveCmd(),
		sweepCmd(),
		migrateCmd(),
	)
	return rootCmd
}

func loadConfig(cmd *cobra.Command) (*configs.AppConfig, error) {
	envPath, _ := cmd.Flags().GetString("env")
	if envPath == "" {
		return configs.LoadConfig()
	}
	return configs.LoadConfig(envPath)
}

func newApp(cmd *cobra.Command, mode internal.Mode) (*internal.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app, err := internal.NewApp(cfg, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	return app, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API, event stream and background sweeps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd, internal.ModeServe)
			if err != nil {
				return err
			}
			return app.Run()
		},
	}
}

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run a single booking status sweep and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd, internal.ModeSweep)
			if err != nil {
				return err
			}
			defer app.Close()

			result, err := app.RunSweepOnce(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "scanned: %d, updated: %d, skipped: %d, failed: %d\n", result.Scanned, result.Updated, result.Skipped, result.Failed)
			for status, n := range result.Changes {
				fmt.Fprintf(cmd.OutOrStdout(), "  -> %s: %d\n", status, n)
			}
			return err
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd, internal.ModeMigrate)
			if err != nil {
				return err
			}
			defer app.Close()
			return app.Migrate(cmd.Context())
		},
	}
}
