package main

import (
	"github.com/aretw0/consult/internal/cli"
	"github.com/spf13/cobra"
)

var walkCmd = &cobra.Command{
	Use:   "walk <tree>",
	Short: "Walk a decision tree interactively",
	Long: `Starts an interactive walk on the entry node of a tree.

Number keys answer questions, enter continues, b goes back and q quits.
With --session the walk is persisted and resumed on the next run.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		plain, _ := cmd.Flags().GetBool("plain")

		return withApp(true, func(app *cli.App) error {
			return cli.RunWalk(cmd.Context(), app, cli.WalkOptions{
				TreeID:    args[0],
				SessionID: sessionID,
				Plain:     plain,
			}, cmd.InOrStdin(), cmd.OutOrStdout())
		})
	},
}

func init() {
	rootCmd.AddCommand(walkCmd)

	walkCmd.Flags().StringP("session", "s", "", "Persist the walk under this session id")
	walkCmd.Flags().Bool("plain", false, "Print raw Markdown without colours")
}
