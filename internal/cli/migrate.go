package cli

import (
	"github.com/spf13/cobra"

	"github.com/Jgaps7/curriculos-saas/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log := setup()

		db, err := config.InitDatabase(cfg, log)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
