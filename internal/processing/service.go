package processing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jjckrbbt/wrapped/internal/mentiongraph"
	"github.com/jjckrbbt/wrapped/internal/repository"
	"github.com/jjckrbbt/wrapped/internal/stats"
)

const (
	jobTimeout    = 15 * time.Minute
	progressEvery = 500
)

// ErrNoPublisher is returned when publishing is requested without a bucket.
var ErrNoPublisher = errors.New("snapshot publishing requires GCS_BUCKET_NAME")

// Summary describes a finished processing job.
type Summary struct {
	Year      int
	Messages  int
	Days      int
	Words     int64
	Published []string
	Duration  time.Duration
}

// Service computes and stores the static chart and word data of a year.
type Service struct {
	dbpool    *pgxpool.Pool
	queries   repository.Querier
	stats     *stats.Service
	publisher Publisher
	logger    *slog.Logger
}

// NewService creates the processor. publisher may be nil.
func NewService(dbpool *pgxpool.Pool, queries repository.Querier, statsService *stats.Service, publisher Publisher, logger *slog.Logger) *Service {
	return &Service{
		dbpool:    dbpool,
		queries:   queries,
		stats:     statsService,
		publisher: publisher,
		logger:    logger.With("component", "static_processor"),
	}
}

// RunJob rebuilds the year's static data and optionally publishes snapshots.
func (s *Service) RunJob(ctx context.Context, year int, publish bool) (Summary, error) {
	jobCtx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	started := time.Now()
	procLogger := s.logger.With("year", year)
	procLogger.InfoContext(jobCtx, "Starting static data processing job")

	if publish && s.publisher == nil {
		return Summary{}, ErrNoPublisher
	}

	result, err := s.compute(jobCtx, year, procLogger)
	if err != nil {
		procLogger.ErrorContext(jobCtx, "Failed to compute static data", "error", err)
		return Summary{}, err
	}

	words, err := s.save(jobCtx, year, result)
	if err != nil {
		procLogger.ErrorContext(jobCtx, "Failed to save static data to database", "error", err)
		return Summary{}, err
	}

	summary := Summary{
		Year:     year,
		Messages: result.Messages,
		Days:     len(result.Charts.MessageBuckets),
		Words:    words,
	}

	if publish {
		published, err := s.publish(jobCtx, year, result.Charts)
		if err != nil {
			procLogger.ErrorContext(jobCtx, "Failed to publish snapshots", "error", err)
			return Summary{}, err
		}
		summary.Published = published
	}

	summary.Duration = time.Since(started)
	procLogger.InfoContext(jobCtx, "Static data processing job completed",
		"messages", summary.Messages, "days", summary.Days, "words", summary.Words, "duration", summary.Duration)
	return summary, nil
}

func (s *Service) compute(ctx context.Context, year int, procLogger *slog.Logger) (Result, error) {
	rows, err := s.queries.ListBucketMessages(ctx, int32(year))
	if err != nil {
		return Result{}, fmt.Errorf("failed to load messages: %w", err)
	}
	procLogger.InfoContext(ctx, "Loaded messages", "count", len(rows))

	agg := NewAggregator()
	for i, row := range rows {
		if i%progressEvery == 0 {
			procLogger.DebugContext(ctx, "Processing messages", "done", i+1, "total", len(rows))
		}
		if err := agg.Add(row); err != nil {
			return Result{}, fmt.Errorf("message %d of %d: %w", i+1, len(rows), err)
		}
	}
	return agg.Result(), nil
}

// save replaces the year's buckets and word usage in one transaction.
func (s *Service) save(ctx context.Context, year int, result Result) (int64, error) {
	tx, err := s.dbpool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	qtx := repository.New(tx)

	for key, buckets := range map[string]stats.Buckets{
		stats.KeyMessageBuckets:  result.Charts.MessageBuckets,
		stats.KeyReactionBuckets: result.Charts.ReactionBuckets,
		stats.KeyMentionBuckets:  result.Charts.MentionBuckets,
	} {
		value, err := json.Marshal(buckets)
		if err != nil {
			return 0, fmt.Errorf("failed to encode %s: %w", key, err)
		}
		if err := qtx.UpsertStatic(ctx, repository.UpsertStaticParams{Key: key, Year: int32(year), Value: value}); err != nil {
			return 0, fmt.Errorf("failed to upsert %s: %w", key, err)
		}
	}

	if _, err := qtx.DeleteWordUsageForYear(ctx, int32(year)); err != nil {
		return 0, fmt.Errorf("failed to clear word usage: %w", err)
	}
	if err := qtx.CreateTempWordUsageStagingTable(ctx); err != nil {
		return 0, fmt.Errorf("failed to create temp staging table: %w", err)
	}

	rows, err := wordUsageRows(year, result.Words)
	if err != nil {
		return 0, err
	}
	if _, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{repository.WordUsageStagingTable},
		[]string{"word", "year", "data"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return 0, fmt.Errorf("failed to copy data to staging table: %w", err)
	}

	upserted, err := qtx.UpsertWordUsageFromStaging(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert word usage from staging table: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return upserted, nil
}

// wordUsageRows encodes the word map as staging rows. data holds
// {total, buckets}; the word itself is its own column.
func wordUsageRows(year int, words map[string]*stats.WordUsage) ([][]any, error) {
	rows := make([][]any, 0, len(words))
	for w, usage := range words {
		data, err := json.Marshal(struct {
			Total   int64         `json:"total"`
			Buckets stats.Buckets `json:"buckets"`
		}{usage.Total, usage.Buckets})
		if err != nil {
			return nil, fmt.Errorf("failed to encode usage of %q: %w", w, err)
		}
		rows = append(rows, []any{w, int32(year), data})
	}
	return rows, nil
}

func (s *Service) publish(ctx context.Context, year int, charts stats.Charts) ([]string, error) {
	graph, err := s.stats.MentionGraph(ctx, year, mentiongraph.ModeDirectional)
	if err != nil {
		return nil, fmt.Errorf("failed to build mention graph: %w", err)
	}

	snapshots := []struct {
		name  string
		value any
	}{
		{fmt.Sprintf("%d/charts.json", year), charts},
		{fmt.Sprintf("%d/mention-graph.json", year), graph},
	}
	published := make([]string, 0, len(snapshots))
	for _, snap := range snapshots {
		if err := s.publisher.Publish(ctx, snap.name, snap.value); err != nil {
			return published, fmt.Errorf("failed to publish %s: %w", snap.name, err)
		}
		published = append(published, snap.name)
	}
	return published, nil
}
