// Package ingestion moves data in and out of the service: it imports legacy
// SQLite exports into Postgres and publishes JSON snapshots to GCS.
package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jjckrbbt/wrapped/internal/repository"
)

// ImportSummary counts the rows copied per table.
type ImportSummary struct {
	Year     int
	Rows     map[string]int64
	Duration time.Duration
}

// Importer replaces a year's users, messages and attachments with the
// contents of a legacy export.
type Importer struct {
	dbpool *pgxpool.Pool
	logger *slog.Logger
}

func NewImporter(dbpool *pgxpool.Pool, logger *slog.Logger) *Importer {
	return &Importer{
		dbpool: dbpool,
		logger: logger.With("component", "legacy_importer"),
	}
}

// Import reads year from the SQLite file at path and swaps it in within a
// single transaction.
func (i *Importer) Import(ctx context.Context, path string, year int) (ImportSummary, error) {
	started := time.Now()
	importLogger := i.logger.With("year", year, "source", path)
	importLogger.InfoContext(ctx, "Starting legacy import")

	legacy, err := OpenLegacy(path)
	if err != nil {
		return ImportSummary{}, err
	}
	defer legacy.Close()

	data := make(map[string][][]any, len(legacyTables))
	for _, t := range legacyTables {
		rows, err := legacy.readRows(ctx, t, year)
		if err != nil {
			return ImportSummary{}, err
		}
		importLogger.DebugContext(ctx, "Read legacy table", "table", t.name, "rows", len(rows))
		data[t.name] = rows
	}

	tx, err := i.dbpool.Begin(ctx)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	qtx := repository.New(tx)
	for name, del := range map[string]func(context.Context, int32) (int64, error){
		"users":       qtx.DeleteUsersForYear,
		"messages":    qtx.DeleteMessagesForYear,
		"attachments": qtx.DeleteAttachmentsForYear,
	} {
		deleted, err := del(ctx, int32(year))
		if err != nil {
			return ImportSummary{}, fmt.Errorf("failed to clear %s: %w", name, err)
		}
		importLogger.DebugContext(ctx, "Cleared existing rows", "table", name, "rows", deleted)
	}

	summary := ImportSummary{Year: year, Rows: make(map[string]int64, len(legacyTables))}
	for _, t := range legacyTables {
		copied, err := tx.CopyFrom(ctx, pgx.Identifier{t.name}, t.columnNames(), pgx.CopyFromRows(data[t.name]))
		if err != nil {
			return ImportSummary{}, fmt.Errorf("failed to copy %s: %w", t.name, err)
		}
		summary.Rows[t.name] = copied
	}

	if err := tx.Commit(ctx); err != nil {
		return ImportSummary{}, fmt.Errorf("failed to commit transaction: %w", err)
	}

	summary.Duration = time.Since(started)
	importLogger.InfoContext(ctx, "Legacy import completed",
		"users", summary.Rows["users"], "messages", summary.Rows["messages"],
		"attachments", summary.Rows["attachments"], "duration", summary.Duration)
	return summary, nil
}
