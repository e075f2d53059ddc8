package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nemroff/flix-scripts/internal/flix"
)

func newShowsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "shows",
		Short: "List shows on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd.Context(), func(client *flix.Client) error {
				shows, err := client.Shows(cmd.Context())
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(shows))
				for _, show := range shows {
					rows = append(rows, []string{
						strconv.FormatInt(show.ID, 10),
						show.TrackingCode,
						show.Title,
						yesNo(show.Episodic),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Tracking Code", "Title", "Episodic"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
}

func newEpisodesCommand(ctx *commandContext) *cobra.Command {
	var showID int64

	cmd := &cobra.Command{
		Use:   "episodes",
		Short: "List episodes of a show",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd.Context(), func(client *flix.Client) error {
				episodes, err := client.Episodes(cmd.Context(), showID)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(episodes))
				for _, ep := range episodes {
					rows = append(rows, []string{
						strconv.FormatInt(ep.ID, 10),
						ep.TrackingCode,
						ep.Title,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Tracking Code", "Title"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&showID, "show", 0, "Show id")
	_ = cmd.MarkFlagRequired("show")
	return cmd
}

func newSequencesCommand(ctx *commandContext) *cobra.Command {
	var showID, episodeID int64

	cmd := &cobra.Command{
		Use:   "sequences",
		Short: "List sequences of a show or episode",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd.Context(), func(client *flix.Client) error {
				sequences, err := client.Sequences(cmd.Context(), showID, episodeID)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(sequences))
				for _, seq := range sequences {
					rows = append(rows, []string{
						strconv.FormatInt(seq.ID, 10),
						seq.TrackingCode,
						seq.Description,
						strconv.Itoa(seq.RevisionsCount),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Tracking Code", "Description", "Revisions"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&showID, "show", 0, "Show id")
	cmd.Flags().Int64Var(&episodeID, "episode", 0, "Episode id (episodic shows)")
	_ = cmd.MarkFlagRequired("show")
	return cmd
}

func newPanelsCommand(ctx *commandContext) *cobra.Command {
	var showID, sequenceID int64
	var revision int

	cmd := &cobra.Command{
		Use:   "panels",
		Short: "List panels of a sequence revision",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd.Context(), func(client *flix.Client) error {
				panels, err := client.Panels(cmd.Context(), showID, sequenceID, revision)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(panels))
				for _, p := range panels {
					assetID := "-"
					if p.Asset != nil {
						assetID = strconv.FormatInt(p.Asset.AssetID, 10)
					}
					rows = append(rows, []string{
						strconv.FormatInt(p.PanelID, 10),
						strconv.Itoa(p.RevisionNumber),
						strconv.Itoa(p.Duration),
						assetID,
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Panel", "Revision", "Duration", "Asset"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignRight, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&showID, "show", 0, "Show id")
	cmd.Flags().Int64Var(&sequenceID, "sequence", 0, "Sequence id")
	cmd.Flags().IntVar(&revision, "revision", 0, "Sequence revision number")
	_ = cmd.MarkFlagRequired("show")
	_ = cmd.MarkFlagRequired("sequence")
	_ = cmd.MarkFlagRequired("revision")
	return cmd
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
