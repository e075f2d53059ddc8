package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nemroff/flix-scripts/internal/flix"
)

func newPullCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pull <media-object-id> <dest>",
		Short: "Download a media object to a local file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mediaObjectID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("media object id %q is not a number", args[0])
			}
			dest := args[1]

			return ctx.withClient(cmd.Context(), func(client *flix.Client) error {
				if err := client.DownloadMediaObject(cmd.Context(), mediaObjectID, dest); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "downloaded media object %d to %s\n", mediaObjectID, dest)
				return nil
			})
		},
	}
	return cmd
}
