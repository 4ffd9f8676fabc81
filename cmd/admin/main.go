package main

import (
	"os"

	"github.com/pavangundu/ai-helper/internal/config"
	"github.com/pavangundu/ai-helper/internal/database"
	"github.com/pavangundu/ai-helper/pkg/logger"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "admin",
	Short: "Maintenance commands for the AI Helper database",
	// The admin commands never issue tokens, so JWT_SECRET is not required here.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(".env")
		if err != nil {
			return err
		}
		config.AppConfig = cfg
		logger.Init(cfg.Env)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Database URL (overrides DATABASE_URL); sqlite:<path> for SQLite")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(streakResetCmd)
	rootCmd.AddCommand(countsCmd)
}

// openDB connects using --db, falling back to the configured DATABASE_URL.
func openDB(cmd *cobra.Command) (*gorm.DB, error) {
	dsn := config.AppConfig.DatabaseURL
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		dsn = p
	}
	return database.Open(dsn)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
