package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"garmenthr/internal/app/server"
	"garmenthr/internal/platform/config"
	"garmenthr/internal/platform/db"
	"garmenthr/internal/platform/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "garmenthr",
		Short:         "Garment factory HR and payroll service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
	cmd.AddCommand(newServeCmd(), newMigrateCmd(), newSeedCmd(), newPayrollCmd())
	return cmd
}

// loadConfig reads and validates configuration and installs the logger.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	logger.Setup(cfg.LogLevel, cfg.IsDevelopment())
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return server.Run(ctx, cfg)
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			pool, err := db.Connect(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := db.Migrate(cmd.Context(), pool, db.Migrations()); err != nil {
				return err
			}
			log.Info().Msg("migrations up to date")
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the admin user and default task types",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			cfg.RunSeed = false
			app, err := server.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer app.Close()
			return app.Seed(cmd.Context())
		},
	}
}

type payrollOptions struct {
	Month int
	Year  int
	User  string
}

func newPayrollCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payroll",
		Short: "Payroll operations",
	}

	var opts payrollOptions
	generate := &cobra.Command{
		Use:   "generate --month <1-12> --year <yyyy> --user <email|id>",
		Short: "Generate payroll for every active employee in a period",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.User == "" {
				return fmt.Errorf("--user is required")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			cfg.RunSeed = false
			app, err := server.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			actor, err := app.Users.ResolveActor(cmd.Context(), opts.User)
			if err != nil {
				return fmt.Errorf("resolve user %q: %w", opts.User, err)
			}
			result, err := app.Payroll.Generate(cmd.Context(), actor.ID, opts.Month, opts.Year)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			return nil
		},
	}
	generate.Flags().IntVar(&opts.Month, "month", 0, "payroll month (1-12)")
	generate.Flags().IntVar(&opts.Year, "year", 0, "payroll year")
	generate.Flags().StringVar(&opts.User, "user", "", "email or id of the user recorded as generator")
	_ = generate.MarkFlagRequired("month")
	_ = generate.MarkFlagRequired("year")
	_ = generate.MarkFlagRequired("user")

	cmd.AddCommand(generate)
	return cmd
}
