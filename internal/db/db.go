package db

import (
	"fmt"

	"graphv/internal/models"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// memoryDSN is a private in-memory SQLite database. It lives as long as the
// single pooled connection does, so the pool is pinned to one connection.
const memoryDSN = ":memory:"

// Open connects to Postgres when dsn is set and to an in-memory SQLite
// database otherwise, then migrates the graph tables.
func Open(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	var (
		conn *gorm.DB
		err  error
	)
	if dsn == "" {
		conn, err = gorm.Open(sqlite.Open(memoryDSN), cfg)
	} else {
		conn, err = gorm.Open(postgres.Open(dsn), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if dsn == "" {
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, fmt.Errorf("database handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	}

	if err := conn.AutoMigrate(&models.Dataset{}, &models.Node{}, &models.Edge{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return conn, nil
}

// Init opens the process-wide engine handle and clears datasets left over
// from a previous run; they are not tracked by the new process.
func Init(dsn string, log *zap.Logger) error {
	conn, err := Open(dsn)
	if err != nil {
		return err
	}
	if dsn == "" {
		log.Info("database ready", zap.String("driver", "sqlite"), zap.String("dsn", memoryDSN))
	} else {
		log.Info("database ready", zap.String("driver", "postgres"))
	}

	if err := Purge(conn); err != nil {
		return err
	}
	DB = conn
	return nil
}

// Purge deletes every dataset with its nodes and edges.
func Purge(conn *gorm.DB) error {
	return conn.Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{&models.Edge{}, &models.Node{}, &models.Dataset{}} {
			if err := tx.Where("1 = 1").Delete(m).Error; err != nil {
				return fmt.Errorf("purge %T: %w", m, err)
			}
		}
		return nil
	})
}

// Close releases the engine handle.
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
