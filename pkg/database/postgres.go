package database

import (
	"errors"
	"fmt"
	"time"

	"digitalwill-backend/internal/config"
	"digitalwill-backend/internal/types"
	dw_logger "digitalwill-backend/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresConnection 创建PostgreSQL数据库连接
func NewPostgresConnection(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		dw_logger.Error("NewPostgresConnection Error: ", errors.New("failed to connect to database"), "error: ", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		dw_logger.Error("NewPostgresConnection Error: ", errors.New("failed to get underlying sql.DB"), "error: ", err)
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// 设置连接池参数
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	dw_logger.Info("NewPostgresConnection: ", "host: ", cfg.Host, "port: ", cfg.Port, "user: ", cfg.User, "dbname: ", cfg.DBName, "sslmode: ", cfg.SSLMode)
	return db, nil
}

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&types.User{},
		&types.WillActivity{},
	)
	if err != nil {
		dw_logger.Error("AutoMigrate Error: ", errors.New("failed to migrate database"), "error: ", err)
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	dw_logger.Info("AutoMigrate: ", "database migration completed successfully")
	return nil
}
