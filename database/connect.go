package database

import (
	"fmt"
	"time"

	"event_hub/config"
	"event_hub/model"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens the PostgreSQL connection and migrates the schema.
func Connect(settings config.DatabaseSettings, log *zap.Logger) (*gorm.DB, error) {
	db, err := Open(settings.DSN(), log)
	if err != nil {
		return nil, err
	}
	log.Info("connection opened to database",
		zap.String("host", settings.Host),
		zap.Int("port", settings.Port),
		zap.String("name", settings.Name),
	)

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	log.Info("database migrated")

	return db, nil
}

// Open connects to dsn and checks the connection is alive. SQL statements
// are logged through log at warn level and above.
func Open(dsn string, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.New(zap.NewStdLog(log.Named("gorm")), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Event{},
		&model.Booking{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
