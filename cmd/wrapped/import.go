package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jjckrbbt/wrapped/internal/ingestion"
	"github.com/spf13/cobra"
)

var (
	importSQLite string
	importYear   int
)

func init() {
	importCmd.Flags().StringVar(&importSQLite, "sqlite", "", "Path to the legacy wrapped.db export")
	importCmd.Flags().IntVar(&importYear, "year", 0, "Year to import")
	importCmd.MarkFlagRequired("sqlite")
	importCmd.MarkFlagRequired("year")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Replace a year's data with a legacy SQLite export",
	Long: `Replace a year's users, messages and attachments with the rows of a
legacy SQLite export. Likes and processed static data are left untouched;
run "wrapped process" afterwards to rebuild charts and word usage.`,
	Args: cobra.NoArgs,
	RunE: runWithEnv(func(ctx context.Context, e *env) error {
		importer := ingestion.NewImporter(e.db.Pool, e.logger)
		summary, err := importer.Import(ctx, importSQLite, importYear)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d in %s: %s users, %s messages, %s attachments\n",
			summary.Year, summary.Duration.Round(time.Millisecond),
			humanize.Comma(summary.Rows["users"]),
			humanize.Comma(summary.Rows["messages"]),
			humanize.Comma(summary.Rows["attachments"]),
		)
		return nil
	}),
}
