package main

import (
	"fmt"

	"github.com/Harshitk-cp/ghostprotocol/internal/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	output  string
	verbose bool
	seed    uint64

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "ghostctl",
	Short: "Inspect and drive the Ghost Protocol personality engine",
	Long: color.CyanString("ghostctl") + ` samples agent DNA, runs offline network simulations
and triggers maintenance jobs against a live database.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = config.Load()
		switch output {
		case formatTable, formatJSON, formatYAML:
		default:
			return fmt.Errorf("unknown output format %q (table, json, yaml)", output)
		}
		if !verbose {
			return nil
		}
		l, err := config.NewLogger(true)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", formatTable, "Output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log engine activity to stderr")
	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", 0, "Random seed; 0 seeds from the clock")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(dnaCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(eventsCmd)
}
