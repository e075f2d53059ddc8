package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/nemroff/flix-scripts/internal/app"
	"github.com/nemroff/flix-scripts/internal/prefs"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var (
		showID     int64
		episodeID  int64
		sequenceID int64
		revision   int
		dialogue   bool
		plain      bool
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export each shot of a sequence revision as a quicktime",
		Long: `Export splits a sequence revision into shots by its markers and submits
one quicktime export per shot, watching each render to completion. Without
markers the whole sequence exports as a single job.

By default a TUI tracks progress; --plain runs to completion and prints a
summary table instead. The last used show and sequence are remembered, so
--show and --sequence can be omitted on repeat runs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			userPrefs := prefs.Load(ctx.prefsPath())
			if showID == 0 {
				showID = userPrefs.LastShowID
			}
			if sequenceID == 0 {
				sequenceID = userPrefs.LastSequenceID
			}
			if showID == 0 || sequenceID == 0 {
				return fmt.Errorf("no remembered export target; pass --show and --sequence")
			}

			includeDialogue := cfg.IncludeDialogue
			if cmd.Flags().Changed("dialogue") {
				includeDialogue = dialogue
			}

			runCtx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				runCtx, cancel = context.WithTimeout(runCtx, timeout)
				defer cancel()
			}

			report, err := app.Run(runCtx, app.Options{
				ConfigPath:      ctx.configPath(),
				PrefsPath:       ctx.prefsPath(),
				ShowID:          showID,
				EpisodeID:       episodeID,
				SequenceID:      sequenceID,
				Revision:        revision,
				IncludeDialogue: includeDialogue,
				Plain:           plain,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderReport(report))
			if failed := report.Failed(); failed > 0 {
				return fmt.Errorf("%d of %d shots failed", failed, len(report.Shots))
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&showID, "show", 0, "Show id")
	cmd.Flags().Int64Var(&episodeID, "episode", 0, "Episode id (episodic shows)")
	cmd.Flags().Int64Var(&sequenceID, "sequence", 0, "Sequence id")
	cmd.Flags().IntVar(&revision, "revision", 0, "Sequence revision number (default latest)")
	cmd.Flags().BoolVar(&dialogue, "dialogue", false, "Burn dialogue into the exported quicktimes")
	cmd.Flags().BoolVar(&plain, "plain", false, "Run without the TUI")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Abort the run after this long (0 means no limit)")
	return cmd
}

func renderReport(report app.RunReport) string {
	rows := make([][]string, 0, len(report.Shots))
	for _, shot := range report.Shots {
		status := "completed"
		detail := ""
		media := strconv.FormatInt(shot.MediaObjectID, 10)
		if shot.Err != nil {
			status = "failed"
			detail = shot.Err.Error()
			media = "-"
		}
		rows = append(rows, []string{
			shot.Name,
			strconv.Itoa(shot.PanelCount),
			strconv.FormatInt(shot.ChainID, 10),
			status,
			media,
			detail,
		})
	}
	return renderTable(
		[]string{"Shot", "Panels", "Chain", "Status", "Media Object", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignRight, alignLeft},
	)
}
