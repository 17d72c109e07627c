package main

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"github.com/dustin/go-humanize"
	"github.com/jjckrbbt/wrapped/internal/ingestion"
	"github.com/jjckrbbt/wrapped/internal/processing"
	"github.com/jjckrbbt/wrapped/internal/repository"
	"github.com/jjckrbbt/wrapped/internal/stats"
	"github.com/spf13/cobra"
)

var (
	processYear    int
	processPublish bool
	processPrefix  string
)

func init() {
	processCmd.Flags().IntVar(&processYear, "year", 0, "Year to process")
	processCmd.Flags().BoolVar(&processPublish, "publish", false, "Upload charts and mention graph snapshots to GCS_BUCKET_NAME")
	processCmd.Flags().StringVar(&processPrefix, "prefix", "snapshots", "Object prefix for published snapshots")
	processCmd.MarkFlagRequired("year")
	rootCmd.AddCommand(processCmd)
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Rebuild daily charts and word usage for a year",
	Args:  cobra.NoArgs,
	RunE: runWithEnv(func(ctx context.Context, e *env) error {
		profiles, err := e.profiles()
		if err != nil {
			return err
		}
		queries := repository.New(e.db.Pool)
		statsService := stats.NewService(queries, profiles, e.logger)

		var publisher processing.Publisher
		if processPublish {
			if e.cfg.GCSBucketName == "" {
				return processing.ErrNoPublisher
			}
			gcsClient, err := storage.NewClient(ctx)
			if err != nil {
				return fmt.Errorf("failed to create GCS client: %w", err)
			}
			defer gcsClient.Close()
			publisher = ingestion.NewGCSPublisher(gcsClient, e.cfg.GCSBucketName, processPrefix, e.logger)
		}

		service := processing.NewService(e.db.Pool, queries, statsService, publisher, e.logger)
		summary, err := service.RunJob(ctx, processYear, processPublish)
		if err != nil {
			return err
		}
		fmt.Printf("Processed %s messages over %d days, %s distinct words in %s\n",
			humanize.Comma(int64(summary.Messages)), summary.Days,
			humanize.Comma(summary.Words), summary.Duration.Round(time.Millisecond))
		for _, name := range summary.Published {
			fmt.Printf("Published gs://%s/%s/%s\n", e.cfg.GCSBucketName, processPrefix, name)
		}
		return nil
	}),
}
