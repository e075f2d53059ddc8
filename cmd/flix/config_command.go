package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			password := "(unset)"
			if cfg.Password != "" {
				password = "(set)"
			}
			rows := [][]string{
				{"hostname", cfg.Hostname},
				{"username", cfg.Username},
				{"password", password},
				{"data_dir", cfg.DataDir},
				{"poll_seconds", strconv.Itoa(cfg.PollSeconds)},
				{"include_dialogue", yesNo(cfg.IncludeDialogue)},
				{"history_db", cfg.HistoryDBPath()},
				{"log_file", cfg.LogPath()},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Setting", "Value"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
	return cmd
}
