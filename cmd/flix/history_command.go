package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/nemroff/flix-scripts/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded export runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDataDir(); err != nil {
				return err
			}

			store, err := history.Open(cfg.HistoryDBPath())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if runID != "" {
				return printRunShots(cmd, store, runID)
			}
			return printRuns(cmd, store, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum runs to list")
	cmd.Flags().StringVar(&runID, "run", "", "Show per-shot results for one run id")
	return cmd
}

func printRuns(cmd *cobra.Command, store *history.Store, limit int) error {
	runs, err := store.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		finished := "-"
		if run.HasFinished {
			finished = run.FinishedAt.Local().Format(time.DateTime)
		}
		rows = append(rows, []string{
			run.ID,
			run.SequenceName,
			strconv.FormatInt(run.Revision, 10),
			run.Status,
			run.StartedAt.Local().Format(time.DateTime),
			finished,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Run", "Sequence", "Revision", "Status", "Started", "Finished"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
	))
	return nil
}

func printRunShots(cmd *cobra.Command, store *history.Store, runID string) error {
	shots, err := store.RunShots(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if len(shots) == 0 {
		return fmt.Errorf("no shots recorded for run %s", runID)
	}

	rows := make([][]string, 0, len(shots))
	for _, shot := range shots {
		media := "-"
		if shot.MediaObjectID > 0 {
			media = strconv.FormatInt(shot.MediaObjectID, 10)
		}
		rows = append(rows, []string{
			shot.Name,
			strconv.Itoa(shot.PanelCount),
			strconv.FormatInt(shot.ChainID, 10),
			shot.Status,
			media,
			shot.Error,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Shot", "Panels", "Chain", "Status", "Media Object", "Error"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignRight, alignLeft},
	))
	return nil
}
