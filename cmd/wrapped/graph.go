package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/jjckrbbt/wrapped/internal/mentiongraph"
	"github.com/jjckrbbt/wrapped/internal/repository"
	"github.com/jjckrbbt/wrapped/internal/stats"
	"github.com/spf13/cobra"
)

var (
	graphYear int
	graphMode string
)

func init() {
	graphCmd.Flags().IntVar(&graphYear, "year", 0, "Year to build the graph for")
	graphCmd.Flags().StringVar(&graphMode, "mode", string(mentiongraph.ModeDirectional), "Edge merge mode (directional, pair)")
	graphCmd.MarkFlagRequired("year")
	rootCmd.AddCommand(graphCmd)
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the mention graph of a year as JSON",
	Args:  cobra.NoArgs,
	RunE: runWithEnv(func(ctx context.Context, e *env) error {
		mode, err := mentiongraph.ParseMode(graphMode)
		if err != nil {
			return err
		}
		profiles, err := e.profiles()
		if err != nil {
			return err
		}
		statsService := stats.NewService(repository.New(e.db.Pool), profiles, e.logger)
		graph, err := statsService.MentionGraph(ctx, graphYear, mode)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(graph)
	}),
}
