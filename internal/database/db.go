package database

import (
	"fmt"
	"time"

	"acqplan/internal/config"
	"acqplan/internal/model"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every persisted entity in migration order.
func Models() []any {
	return []any{
		&model.DepartmentType{},
		&model.Department{},
		&model.User{},
		&model.ItemType{},
		&model.ItemCategory{},
		&model.Item{},
		&model.ItemExclusion{},
		&model.ContractType{},
		&model.AcquisitionTypeMaster{},
		&model.Request{},
		&model.RequestItem{},
		&model.RequestHistory{},
		&model.Notification{},
		&model.Sequence{},
		&model.Setting{},
		&model.AuditLog{},
	}
}

// GormLogLevel maps a configured level name to gorm's logger level.
func GormLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// NewConnection initializes a new connection pool using GORM
func NewConnection(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:  logger.Default.LogMode(GormLogLevel(cfg.LogLevel)),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if cfg.AutoMigrate {
		if err := Migrate(db); err != nil {
			log.Warn("failed to auto-migrate models", zap.Error(err))
		}
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
