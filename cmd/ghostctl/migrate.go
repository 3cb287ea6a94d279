package main

import (
	"fmt"

	"github.com/Harshitk-cp/ghostprotocol/internal/config"
	"github.com/Harshitk-cp/ghostprotocol/internal/store"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply SQL migrations to the configured database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		dir := config.MigrationsPath()
		if err := store.Migrate(ctx, db, dir, logger); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), accentColor.Sprint("migrations applied from "+dir))
		return nil
	},
}
