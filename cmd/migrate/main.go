package main

import (
	"os"

	"policygen/internal/config"
	"policygen/internal/model"
	"policygen/pkg/database"

	"github.com/fatih/color"
)

func main() {
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, true)
	if err != nil {
		color.Red("Error: Failed to connect to database: %v", err)
		os.Exit(1)
	}

	color.Cyan("Starting GORM migration...")

	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
	}
	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			color.Yellow("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	models := model.All()
	color.Yellow("Running AutoMigrate for %d tables", len(models))
	if err := db.AutoMigrate(models...); err != nil {
		color.Red("Error: AutoMigrate failed: %v", err)
		os.Exit(1)
	}

	// Partial and composite indexes AutoMigrate does not express
	postMigrationSQL := []string{
		`CREATE INDEX IF NOT EXISTS idx_projects_user_created ON projects (user_id, created_at DESC) WHERE deleted_at IS NULL;`,
		`CREATE INDEX IF NOT EXISTS idx_generation_logs_session ON generation_logs (session_id, created_at);`,
	}
	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			color.Yellow("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	color.Green("Success: database migration completed.")
}
