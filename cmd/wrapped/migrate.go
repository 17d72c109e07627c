package main

import (
	"context"

	"github.com/jjckrbbt/wrapped/internal/migrations"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Args:  cobra.NoArgs,
	RunE: runWithEnv(func(ctx context.Context, e *env) error {
		return migrations.Up(ctx, e.db.Pool, e.logger.With("component", "migrations"))
	}),
}
