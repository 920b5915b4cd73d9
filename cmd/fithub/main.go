package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"fithub/internal/app"
	"fithub/internal/catalog"
	"fithub/internal/config"
	"fithub/internal/planner"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	logLevel  string
	logFormat string

	application *app.App
	closeStore  = func() error { return nil }

	rootCmd = &cobra.Command{
		Use:               "fithub",
		Short:             "Plan a day of meals from the FitHub recipe catalog",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")

	rootCmd.AddCommand(recipesCmd())
	rootCmd.AddCommand(planCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:])
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run executes the command line and closes the store on every path, since
// cobra skips post-run hooks when a command fails.
func run(ctx context.Context, args []string) error {
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	if cerr := closeStore(); cerr != nil && err == nil {
		err = fmt.Errorf("failed to close store: %w", cerr)
	}
	return err
}

func setup(cmd *cobra.Command, _ []string) error {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	logger, err := app.NewLogger(os.Stderr, logLevel, logFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	cfg, err := config.NewFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	store, closeFn, err := app.OpenStore(cfg)
	if err != nil {
		return err
	}
	closeStore = closeFn

	catalogClient := catalog.NewClient(cfg)
	engine := planner.NewEngine(catalogClient,
		planner.WithLogger(logger),
		planner.WithPageSize(cfg.PageSize),
	)
	plans := planner.NewPlanRepository(store, "")

	application = app.NewApp(engine, catalogClient, plans, cmd.OutOrStdout())
	return nil
}
