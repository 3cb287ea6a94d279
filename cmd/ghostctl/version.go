package main

import (
	"fmt"

	"github.com/Harshitk-cp/ghostprotocol/internal/buildconfig"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		if output != formatTable {
			return writeStructured(cmd.OutOrStdout(), buildconfig.VersionInfo())
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "ghostctl %s\n", buildconfig.String())
		return err
	},
}
