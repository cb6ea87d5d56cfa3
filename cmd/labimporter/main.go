package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"LabRateImporter/internal/app"
	"LabRateImporter/internal/config"
	"LabRateImporter/internal/logging"
)

func main() {
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "labimporter",
		Short:         "Import laboratory rate lists into the test catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config (defaults to $LAB_IMPORTER_CONFIG)")

	root.AddCommand(
		importCmd(&configPath),
		parseCmd(&configPath),
		migrateCmd(&configPath),
		serveCmd(&configPath),
	)
	return root
}

func importCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Parse a rate list and store its tests",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, logger, err := setup(*configPath)
			if err != nil {
				return err
			}

			report, err := application.Import(cmd.Context(), fileArg(args))
			if err == nil || report.Lines > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Parsed %d tests from the file\n", report.Parsed)
			}
			if err != nil {
				logger.Error("import failed", "error", err, "persisted", report.Persisted)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully imported %d tests into the database\n", report.Persisted)
			return nil
		},
	}
}

func parseCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "parse [file]",
		Short: "Print the classified tests of a rate list as YAML without storing them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, logger, err := setup(*configPath)
			if err != nil {
				return err
			}

			tests, _, err := application.Preview(cmd.Context(), fileArg(args))
			if err != nil {
				logger.Error("parse failed", "error", err)
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(tests); err != nil {
				return fmt.Errorf("encode tests: %w", err)
			}
			return enc.Close()
		},
	}
}

func migrateCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, logger, err := setup(*configPath)
			if err != nil {
				return err
			}

			applied, err := application.Migrate(cmd.Context())
			if err != nil {
				logger.Error("migrate failed", "error", err)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migrations\n", applied)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, logger, err := setup(*configPath)
			if err != nil {
				return err
			}

			statuses, err := application.MigrationStatus(cmd.Context())
			if err != nil {
				logger.Error("migration status failed", "error", err)
				return err
			}
			for _, s := range statuses {
				state := "pending"
				if s.Applied {
					state = "applied"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%03d  %-8s %s\n", s.Version, state, s.Name)
			}
			return nil
		},
	})
	return cmd
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the stored catalog over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, logger, err := setup(*configPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := application.Serve(ctx); err != nil {
				logger.Error("server stopped", "error", err)
				return err
			}
			return nil
		},
	}
}

func setup(configPath string) (*app.Application, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, err
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		return nil, nil, err
	}
	return application, logger, nil
}

func fileArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
