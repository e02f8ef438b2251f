// Package database provides the shared GORM connection helper for
// Postgres/TimescaleDB backends.
package database

import (
	"time"

	"github.com/EduLodi/trab-final-instrmed/internal/log"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// CreateConnection opens a GORM connection with logging routed through zap.
func CreateConnection(connectionString string) (*gorm.DB, error) {
	dbLogger := logger.New(
		zap.NewStdLog(log.GetZapLogger()),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: false,
			Colorful:                  false,
		},
	)

	return gorm.Open(postgres.Open(connectionString), &gorm.Config{Logger: dbLogger})
}
