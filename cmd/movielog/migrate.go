package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/varoOP/movielog/internal/database"
	"github.com/varoOP/movielog/internal/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database schema migrations",
	Long: `Migrate opens the movie database, applies any pending schema
migrations, and exits. The serve command migrates on startup as well,
so this is mainly useful for upgrading a database ahead of a deploy.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir := viper.GetString("data_dir")
		if dataDir == "" {
			dataDir = "."
		}

		log := logger.NewLogger()

		db, err := database.NewDB(dataDir, log)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		defer db.Close()

		log.Info().Str("data_dir", dataDir).Msg("Database schema is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
