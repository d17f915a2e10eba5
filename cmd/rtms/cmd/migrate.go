package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/raptorfin/rtms/internal/infrastructure/trading/models"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the schema and seed the fixed reference data",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	db, err := gorm.Open(postgres.Open(cfg.Postgres.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}
	if err := models.Migrate(db); err != nil {
		return err
	}
	if err := models.Seed(db); err != nil {
		return err
	}
	logger.Info("schema migrated and reference data seeded")
	return nil
}
