package main

import (
	"fmt"
	"os"

	"github.com/aretw0/consult/internal/cli"
	"github.com/spf13/cobra"
)

var globalOpts cli.Options

var rootCmd = &cobra.Command{
	Use:   "consult",
	Short: "consult walks clinical decision trees",
	Long: `consult walks clinical decision trees authored as YAML: questions, inputs,
info pages and drug monographs linked by inline references.

Without --content it serves the bundled library.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalOpts.ContentDir, "content", "", "Directory containing the content library (default: bundled)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.ConfigPath, "config", "", "Config file (default: ./consult.yaml when present)")
	rootCmd.PersistentFlags().BoolVar(&globalOpts.Debug, "debug", false, "Log engine events to stderr")
}

// newApp loads the configuration and builds the engine for a command.
// The caller must Close the returned app.
func newApp(interactive, metrics bool) (*cli.App, error) {
	cfg, err := cli.LoadConfig(globalOpts)
	if err != nil {
		return nil, err
	}
	return cli.NewApp(cfg, globalOpts.Debug, interactive, metrics)
}

// withApp runs fn with a freshly built app and closes it afterwards.
func withApp(interactive bool, fn func(app *cli.App) error) error {
	app, err := newApp(interactive, false)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}
