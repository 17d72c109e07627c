// Command wrapped is the operator CLI: schema migrations, legacy imports,
// static data processing and graph inspection.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jjckrbbt/wrapped/internal/config"
	"github.com/jjckrbbt/wrapped/internal/connections"
	"github.com/jjckrbbt/wrapped/internal/logger"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "wrapped",
	Short: "Operate the wrapped statistics backend",
	Long: `wrapped manages the database behind the statistics API.

Usage:
  wrapped migrate
  wrapped import --sqlite wrapped.db --year 2025
  wrapped process --year 2025 --publish
  wrapped graph --year 2025 --mode pair`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		stop()
		os.Exit(1)
	}
}

// env is the state shared by commands that talk to the database.
type env struct {
	cfg    *config.Config
	db     *connections.Client
	logger *slog.Logger
}

func setup() (*env, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	// stdout is reserved for command output
	appLogger := logger.New(cfg.AppEnv, os.Stderr)
	slog.SetDefault(appLogger)

	db, err := connections.ConnectDB(cfg.DatabaseURL, appLogger.With("component", "database_connector"))
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, db: db, logger: appLogger}, nil
}

func (e *env) Close() {
	e.db.Close()
}

func (e *env) profiles() (*config.Profiles, error) {
	return config.LoadProfiles(e.cfg.ProfilesDir)
}

// runWithEnv wraps a command body with setup and teardown.
func runWithEnv(fn func(ctx context.Context, e *env) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()
		return fn(cmd.Context(), e)
	}
}
