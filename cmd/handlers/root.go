package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"scentlab/internal/config"
)

var cfgFile string

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "scentlab",
		Short: "Scentlab manages a fragrance collection with blind-test battles and layered search.",
		Long: `Scentlab is a fragrance preference tester. It keeps a classified
collection, finds new fragrances through a chain of lookup sources, runs
category battles ("which of these is your daily driver?"), and derives
preference insights and AI recommendations from the results.`,
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.scentlab.yaml)")

	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewSearchCmd())
	rootCmd.AddCommand(NewAddCmd())
	rootCmd.AddCommand(NewSeedCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if _, err := config.Load(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
}
