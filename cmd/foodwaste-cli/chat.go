package main

import (
	"fmt"
	"strings"

	"foodwaste/internal/cli"

	"github.com/spf13/cobra"
)

func (a *app) chatCmd() *cobra.Command {
	var showStage bool
	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Ask the food waste assistant",
		Example: `  foodwaste-cli chat "What is my total waste?"
  foodwaste-cli chat --chat-mode offline how can I reduce waste`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.openBackend(cmd)
			if err != nil {
				return err
			}
			defer closeBackend(b)

			reply, err := b.Service.ChatReply(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
			if showStage {
				fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render("answered by: "+string(reply.Stage)))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showStage, "stage", false, "print which stage produced the answer")
	return cmd
}
