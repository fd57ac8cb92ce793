package main

import (
	"github.com/aretw0/consult/internal/cli"
	"github.com/spf13/cobra"
)

var treesCmd = &cobra.Command{
	Use:   "trees",
	Short: "List the decision trees of the library",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(false, func(app *cli.App) error {
			return cli.ListTrees(app, cmd.OutOrStdout())
		})
	},
}

var graphCmd = &cobra.Command{
	Use:   "graph <tree>",
	Short: "Export a tree as a Mermaid flowchart",
	Long: `Outputs a Mermaid diagram (graph TD) of the tree, one subgraph per module.
With --session the visited path and current node are highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")
		return withApp(false, func(app *cli.App) error {
			return cli.PrintGraph(cmd.Context(), app, args[0], sessionID, cmd.OutOrStdout())
		})
	},
}

var drugCmd = &cobra.Command{
	Use:   "drug <id>",
	Short: "Show a drug monograph",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hint, _ := cmd.Flags().GetString("hint")
		plain, _ := cmd.Flags().GetBool("plain")
		return withApp(false, func(app *cli.App) error {
			return cli.PrintDrug(app, args[0], hint, plain, cmd.OutOrStdout())
		})
	},
}

var calcCmd = &cobra.Command{
	Use:   "calc [id]",
	Short: "List the risk calculators or fill one in",
	Long: `Without an id, lists the calculators of the library. With an id, prompts
for every criterion and prints the score with its interpretation band.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plain, _ := cmd.Flags().GetBool("plain")
		return withApp(false, func(app *cli.App) error {
			if len(args) == 0 {
				return cli.ListCalculators(app, cmd.OutOrStdout())
			}
			return cli.RunCalc(cmd.Context(), app, args[0], plain, cmd.InOrStdin(), cmd.OutOrStdout())
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <tree> <node>",
	Short: "Render a single node as Markdown or HTML",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		asHTML, _ := cmd.Flags().GetBool("html")
		return withApp(false, func(app *cli.App) error {
			return cli.Export(cmd.Context(), app, args[0], args[1], asHTML, cmd.OutOrStdout())
		})
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Lint the content library",
	Long: `Checks every tree for dangling edges, unreachable nodes, unresolved inline
references and missing citations. With --watch the library is re-checked on every change.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		watch, _ := cmd.Flags().GetBool("watch")
		cfg, err := cli.LoadConfig(globalOpts)
		if err != nil {
			return err
		}
		logger := cli.NewLogger(cfg, globalOpts.Debug, false)
		return cli.RunValidate(cmd.Context(), cfg.Content, watch, cmd.OutOrStdout(), logger)
	},
}

func init() {
	rootCmd.AddCommand(treesCmd, graphCmd, drugCmd, calcCmd, exportCmd, validateCmd)

	graphCmd.Flags().String("session", "", "Highlight the path of a stored session")
	drugCmd.Flags().String("hint", "", "Indication used to narrow the dosing section")
	drugCmd.Flags().Bool("plain", false, "Print raw Markdown")
	calcCmd.Flags().Bool("plain", false, "Print raw Markdown")
	exportCmd.Flags().Bool("html", false, "Render a standalone HTML page")
	validateCmd.Flags().BoolP("watch", "w", false, "Re-validate whenever the content changes")
}
