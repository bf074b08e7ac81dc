package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"timesheet/models"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// activeEntryIndexSQL allows one blocking (owner, date) entry at a time.
// Status values are package constants, never user input.
func activeEntryIndexSQL() string {
	quoted := make([]string, 0, 2)
	for _, s := range models.BlockingStatuses() {
		quoted = append(quoted, "'"+string(s)+"'")
	}
	return `CREATE UNIQUE INDEX IF NOT EXISTS idx_timesheet_entries_owner_date_active
ON timesheet_entries (owner_id, date)
WHERE status IN (` + strings.Join(quoted, ", ") + `)`
}

type Options struct {
	Driver   string
	DSN      string
	LogLevel string
	Logger   *logrus.Logger
}

// Open connects to postgres or sqlite. SQLite is limited to one connection so
// that ":memory:" databases are shared by every query.
func Open(opts Options) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case "postgres":
		dialector = postgres.Open(opts.DSN)
	case "sqlite":
		dialector = sqlite.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(opts.Logger, opts.LogLevel),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", opts.Driver, err)
	}

	if opts.Driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlite handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
		if err := db.Exec(`PRAGMA foreign_keys = ON`).Error; err != nil {
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	}

	return db, nil
}

// Migrate creates or updates the users and timesheet_entries tables.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&models.User{}, &models.TimesheetEntry{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.WithContext(ctx).Exec(activeEntryIndexSQL()).Error; err != nil {
		return fmt.Errorf("create active entry index: %w", err)
	}
	return nil
}

// Ping checks the underlying connection.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SeedAdmin creates the "admin" account when it is missing. An empty password
// disables seeding.
func SeedAdmin(ctx context.Context, db *gorm.DB, password string, log logrus.FieldLogger) error {
	if password == "" {
		return nil
	}

	var existing models.User
	err := db.WithContext(ctx).Where("username = ?", "admin").First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("look up admin: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := models.User{
		Username:     "admin",
		Name:         "Administrator",
		PasswordHash: string(hashedPassword),
		Role:         models.RoleAdmin,
	}
	if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	log.WithField("user_id", admin.ID).Info("default admin user created")
	return nil
}

func newGormLogger(log *logrus.Logger, level string) logger.Interface {
	if log == nil {
		return logger.Discard
	}
	return logger.New(log.WithField("component", "gorm"), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormLevel(level),
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

func gormLevel(level string) logger.LogLevel {
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
