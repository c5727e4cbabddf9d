package database

import (
	"fmt"
	"notesboard/internal/utils"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Manager struct {
	DB *gorm.DB

	driver   string
	dsn      string
	logLevel logger.LogLevel
}

func NewDatabaseManager(driver, dsn string, logLevel logger.LogLevel) *Manager {
	return &Manager{
		driver:   driver,
		dsn:      dsn,
		logLevel: logLevel,
	}
}

func (dbm *Manager) Connect() error {
	if dbm.dsn == "" {
		return fmt.Errorf("database DSN not set")
	}

	var dialector gorm.Dialector
	switch dbm.driver {
	case DriverPostgres, "":
		dialector = postgres.Open(dbm.dsn)
	case DriverSQLite:
		dialector = sqlite.Open(dbm.dsn)
	default:
		return fmt.Errorf("unsupported database driver %q", dbm.driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(dbm.logLevel),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("open %s: %w", dbm.driver, err)
	}

	if err := db.AutoMigrate(&utils.User{}, &utils.Note{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	dbm.DB = db
	return nil
}

func (dbm *Manager) Store() *Store {
	return NewStore(dbm.DB)
}

func (dbm *Manager) Close() error {
	if dbm.DB == nil {
		return nil
	}
	db, err := dbm.DB.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

// ParseLogLevel maps a config string onto gorm's logger levels.
func ParseLogLevel(s string) logger.LogLevel {
	switch s {
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
