package db

import (
	"posapp/internal/config"
	"posapp/internal/domain/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(cfg config.Config) (*gorm.DB, error) {
	level := gormlogger.Warn
	if cfg.AppEnv == "prod" {
		level = gormlogger.Error
	}
	return gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
}

// Migrate はテーブルを作る（制約込み）
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Transaction{},
		&model.LineItem{},
		&model.InventoryAdjustment{},
	)
}
