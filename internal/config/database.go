package config

import (
	"github.com/blaisecz/sleep-ai/internal/domain"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func NewDatabase(cfg *Config) (*gorm.DB, error) {
	logLevel := gormlogger.Silent
	if cfg.LogLevel == "debug" {
		logLevel = gormlogger.Info
	}

	return gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logLevel),
		TranslateError: true,
	})
}

// Migrate creates or updates the tables for all persisted models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.User{}, &domain.SleepLog{}, &domain.SleepGoal{}, &domain.AdviceTrace{})
}
