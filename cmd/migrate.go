package cmd

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	config "task-assign.com/task-assign/internal/configs"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			log.Println(".env file not found, using environment variables")
		}

		cfg := config.Load()

		db, err := config.OpenDatabase(cfg.DatabaseDriver, cfg.DatabaseDSN)
		if err != nil {
			return err
		}
		if err := config.Migrate(db); err != nil {
			return err
		}

		log.Printf("schema migrated on %s", cfg.DatabaseDriver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
