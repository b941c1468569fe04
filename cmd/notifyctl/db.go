package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database maintenance",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create missing tables and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, closeFn, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()
		if err := st.Migrate(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
		return nil
	},
}
