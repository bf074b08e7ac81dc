// Package repository holds the persistence ports for users, timesheet entries
// and reports together with their gorm implementations. Every query binds its
// inputs as parameters.
package repository

import (
	"context"
	"errors"
	"time"

	"timesheet/models"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when no row matches the requested id or key.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
	// ErrStale is returned when a conditional write finds the row changed
	// since it was read.
	ErrStale = errors.New("record changed since it was read")
)

// UserRepository exposes the read side of the users table plus provisioning.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// EntryRepository persists timesheet entries. Mutations of an existing entry
// are conditioned on the updated_at value the caller read.
type EntryRepository interface {
	Create(ctx context.Context, entry *models.TimesheetEntry) error
	Get(ctx context.Context, id uint) (*models.TimesheetEntry, error)
	List(ctx context.Context, filter models.EntryFilter) ([]models.EntryWithOwner, error)
	HasActiveOnDate(ctx context.Context, ownerID uint, date time.Time, excludeID uint) (bool, error)
	UpdateIfUnchanged(ctx context.Context, entry *models.TimesheetEntry, readAt time.Time) error
	SetStatusIfPending(ctx context.Context, entry *models.TimesheetEntry, readAt time.Time) error
	DeleteIfUnchanged(ctx context.Context, id uint, readAt time.Time) error
}

// ReportRepository aggregates approved hours.
type ReportRepository interface {
	HoursByEmployee(ctx context.Context) ([]models.MonthlyHours, error)
	HoursByDateRange(ctx context.Context, start, end time.Time) ([]models.RangeHours, error)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}
